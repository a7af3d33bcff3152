package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"invoicing_backend/internal/config"
	"invoicing_backend/internal/locks"
	"invoicing_backend/internal/metrics"
	"invoicing_backend/internal/models"
	"invoicing_backend/internal/repositories"
	"invoicing_backend/pkg/utils"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const (
	importLockKey   = "items-import"
	importReference = "import"
	// maxReportedErrors is how many row errors an ImportSummary keeps.
	maxReportedErrors = 5
)

// ImportSummary reports the outcome of one bulk import.
type ImportSummary struct {
	SuccessCount int      `json:"success_count"`
	ErrorCount   int      `json:"error_count"`
	Created      int      `json:"created"`
	Updated      int      `json:"updated"`
	Errors       []string `json:"errors"`
}

// Message renders the summary the way it is shown to operators.
func (s *ImportSummary) Message() string {
	if s.ErrorCount > 0 {
		return fmt.Sprintf("Processed %d items successfully. %d errors: %s",
			s.SuccessCount, s.ErrorCount, strings.Join(s.Errors, "; "))
	}
	return fmt.Sprintf("Successfully imported %d items", s.SuccessCount)
}

func (s *ImportSummary) addError(err *RowProcessingError) {
	s.ErrorCount++
	if len(s.Errors) < maxReportedErrors {
		s.Errors = append(s.Errors, err.Error())
	}
}

// ImportService defines the interface for bulk item import and export.
type ImportService interface {
	ImportRows(ctx context.Context, headers []string, rows []map[string]string) (*ImportSummary, error)
	ImportXLSX(ctx context.Context, r io.Reader) (*ImportSummary, error)
	ExportXLSX(ctx context.Context, w io.Writer) error
}

type importService struct {
	db           *sqlx.DB
	itemRepo     repositories.ItemRepository
	movementRepo repositories.StockMovementRepository
	locker       locks.Locker
	mode         config.ReimportMode
	lockTTL      time.Duration
}

// NewImportService creates a new ImportService. locker may be nil when imports
// never run concurrently, e.g. in tests.
func NewImportService(db *sqlx.DB, itemRepo repositories.ItemRepository, movementRepo repositories.StockMovementRepository, locker locks.Locker, cfg config.ImportConfig) ImportService {
	mode := cfg.ReimportMode
	if mode == "" {
		mode = config.ReimportOverwrite
	}
	ttl := cfg.LockTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &importService{
		db:           db,
		itemRepo:     itemRepo,
		movementRepo: movementRepo,
		locker:       locker,
		mode:         mode,
		lockTTL:      ttl,
	}
}

func (s *importService) ImportXLSX(ctx context.Context, r io.Reader) (*ImportSummary, error) {
	headers, rows, err := ReadSpreadsheet(r)
	if err != nil {
		return nil, &ValidationError{Field: "file", Message: err.Error()}
	}
	return s.ImportRows(ctx, headers, rows)
}

// ImportRows validates every row on its own, then writes all valid rows in a
// single transaction. Invalid rows are reported and skipped. A failure while
// writing rolls back the whole batch.
func (s *importService) ImportRows(ctx context.Context, headers []string, rows []map[string]string) (*ImportSummary, error) {
	start := time.Now()
	if missing := missingColumns(headers); len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}

	if s.locker != nil {
		release, err := s.locker.Obtain(ctx, importLockKey, s.lockTTL)
		if err != nil {
			if errors.Is(err, locks.ErrNotObtained) {
				return nil, ErrImportInProgress
			}
			return nil, fmt.Errorf("failed to obtain import lock: %w", err)
		}
		defer func() {
			// The request may already be cancelled; the lock must still be freed.
			if err := release(context.WithoutCancel(ctx)); err != nil {
				utils.LogWarn("Failed to release import lock", map[string]interface{}{"error": err.Error()})
			}
		}()
	}

	summary := &ImportSummary{Errors: []string{}}
	parsed := make([]models.Item, 0, len(rows))
	for i, row := range rows {
		row = normalizeRowKeys(row)
		if isBlankRow(row) {
			continue
		}
		item, err := parseItemRow(row)
		if err != nil {
			summary.addError(&RowProcessingError{Row: i + 2, Err: err})
			continue
		}
		parsed = append(parsed, item)
	}

	if len(parsed) > 0 {
		if err := s.writeItems(ctx, parsed, summary); err != nil {
			return nil, err
		}
	}
	summary.SuccessCount = len(parsed)

	metrics.RecordImport(summary.SuccessCount, summary.ErrorCount, start)
	utils.Logger(ctx).Info().
		Int("success_count", summary.SuccessCount).
		Int("error_count", summary.ErrorCount).
		Int("created", summary.Created).
		Int("updated", summary.Updated).
		Str("mode", string(s.mode)).
		Msg("Item import finished")
	return summary, nil
}

func (s *importService) writeItems(ctx context.Context, items []models.Item, summary *ImportSummary) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	userID := utils.UserIDFromContext(ctx)
	for i := range items {
		item := &items[i]
		existing, err := s.itemRepo.GetBySNForUpdate(ctx, tx, item.SN)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("failed to look up item %q: %w", item.SN, err)
		}

		var delta decimal.Decimal
		if existing == nil {
			item.CurrentQuantity = item.OpeningQuantity
			if _, err := s.itemRepo.Create(ctx, tx, item); err != nil {
				return fmt.Errorf("failed to create item %q: %w", item.SN, err)
			}
			delta = item.CurrentQuantity
			summary.Created++
		} else {
			item.ID = existing.ID
			item.CurrentQuantity = s.reimportQuantity(existing, item.OpeningQuantity)
			if err := s.itemRepo.OverwriteFromImport(ctx, tx, item); err != nil {
				return fmt.Errorf("failed to update item %q: %w", item.SN, err)
			}
			delta = item.CurrentQuantity.Sub(existing.CurrentQuantity)
			summary.Updated++
		}

		if delta.IsZero() {
			continue
		}
		ref := importReference
		movement := models.StockMovement{
			ItemID:          item.ID,
			MovementType:    models.MovementTypeImport,
			QuantityChanged: delta,
			Reference:       &ref,
			UserID:          userID,
		}
		if _, err := s.movementRepo.CreateMovement(ctx, tx, &movement); err != nil {
			return fmt.Errorf("failed to record import movement for %q: %w", item.SN, err)
		}
		metrics.RecordStockMovement(models.MovementTypeImport)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}
	return nil
}

// reimportQuantity decides the current quantity of an item that already exists.
// Overwrite resets it to the sheet's opening quantity, discarding the effect of
// every sale and purchase since. Adjust shifts it by the change in opening quantity.
func (s *importService) reimportQuantity(existing *models.Item, newOpening decimal.Decimal) decimal.Decimal {
	if s.mode == config.ReimportAdjust {
		return existing.CurrentQuantity.Add(newOpening.Sub(existing.OpeningQuantity))
	}
	return newOpening
}

func (s *importService) ExportXLSX(ctx context.Context, w io.Writer) error {
	items, err := s.itemRepo.List(ctx, models.ItemFilters{})
	if err != nil {
		return fmt.Errorf("failed to load items for export: %w", err)
	}
	return WriteItemsSpreadsheet(w, items)
}

func missingColumns(headers []string) []string {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[normalizeColumn(h)] = true
	}
	var missing []string
	for _, c := range ItemColumns {
		if !present[c] {
			missing = append(missing, c)
		}
	}
	return missing
}

// normalizeColumn is how header names are matched: trimmed and lower-cased.
func normalizeColumn(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// normalizeRowKeys rekeys a row by normalizeColumn so cells are found under
// the same names the schema check accepted.
func normalizeRowKeys(row map[string]string) map[string]string {
	out := make(map[string]string, len(row))
	for k, v := range row {
		out[normalizeColumn(k)] = v
	}
	return out
}

func isBlankRow(row map[string]string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// parseItemRow turns one sheet row into an item. Money and quantities are
// rounded to two places as the columns store them.
func parseItemRow(row map[string]string) (models.Item, error) {
	item := models.Item{
		SN:       strings.TrimSpace(row["sn"]),
		Product:  strings.TrimSpace(row["product"]),
		Category: strings.TrimSpace(row["category"]),
		Brand:    strings.TrimSpace(row["brand"]),
		UOM:      strings.TrimSpace(row["uom"]),
	}
	if item.SN == "" {
		return item, errors.New("sn is required")
	}
	if item.Product == "" {
		return item, errors.New("product is required")
	}
	if item.UOM == "" {
		return item, errors.New("uom is required")
	}

	fields := []struct {
		name string
		dst  *decimal.Decimal
	}{
		{"cp", &item.CP},
		{"wholesale", &item.Wholesale},
		{"sp", &item.SP},
		{"opening_quantity", &item.OpeningQuantity},
	}
	for _, f := range fields {
		d, err := utils.ParseDecimal(row[f.name])
		if err != nil {
			return item, fmt.Errorf("%s: %v", f.name, err)
		}
		if d.IsNegative() {
			return item, fmt.Errorf("%s must not be negative", f.name)
		}
		*f.dst = utils.RoundMoney(d)
	}
	return item, nil
}

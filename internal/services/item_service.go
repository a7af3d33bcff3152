package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"invoicing_backend/internal/models"
	"invoicing_backend/internal/repositories"
	"invoicing_backend/pkg/utils"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// CreateItemRequest DTO. The new item starts with current = opening quantity.
type CreateItemRequest struct {
	SN              string          `json:"sn" binding:"required,max=50"`
	Product         string          `json:"product" binding:"required,max=100"`
	Category        string          `json:"category" binding:"max=50"`
	Brand           string          `json:"brand" binding:"max=50"`
	CP              decimal.Decimal `json:"cp" binding:"gte=0"`
	Wholesale       decimal.Decimal `json:"wholesale" binding:"gte=0"`
	SP              decimal.Decimal `json:"sp" binding:"gte=0"`
	UOM             string          `json:"uom" binding:"required,max=20"`
	OpeningQuantity decimal.Decimal `json:"opening_quantity" binding:"gte=0"`
}

// UpdateItemRequest DTO. Quantities cannot be edited; they move only through
// sales, purchases and imports.
type UpdateItemRequest struct {
	SN        string          `json:"sn" binding:"required,max=50"`
	Product   string          `json:"product" binding:"required,max=100"`
	Category  string          `json:"category" binding:"max=50"`
	Brand     string          `json:"brand" binding:"max=50"`
	CP        decimal.Decimal `json:"cp" binding:"gte=0"`
	Wholesale decimal.Decimal `json:"wholesale" binding:"gte=0"`
	SP        decimal.Decimal `json:"sp" binding:"gte=0"`
	UOM       string          `json:"uom" binding:"required,max=20"`
}

// ItemService defines the interface for item operations.
type ItemService interface {
	CreateItem(ctx context.Context, req CreateItemRequest) (*models.Item, error)
	GetItemByID(ctx context.Context, id int64) (*models.Item, error)
	GetItemBySN(ctx context.Context, sn string) (*models.Item, error)
	GetItems(ctx context.Context, filters models.ItemFilters) ([]models.Item, error)
	UpdateItem(ctx context.Context, id int64, req UpdateItemRequest) (*models.Item, error)
	DeleteItem(ctx context.Context, id int64) error
}

type itemService struct {
	db       *sqlx.DB
	itemRepo repositories.ItemRepository
}

// NewItemService creates a new instance of ItemService.
func NewItemService(db *sqlx.DB, itemRepo repositories.ItemRepository) ItemService {
	return &itemService{db: db, itemRepo: itemRepo}
}

func validatePrices(prices map[string]decimal.Decimal) error {
	for _, field := range []string{"cp", "wholesale", "sp", "opening_quantity"} {
		d, ok := prices[field]
		if !ok {
			continue
		}
		if d.IsNegative() {
			return newValidationError(field, "must not be negative")
		}
		if err := checkMoney(field, d); err != nil {
			return err
		}
	}
	return nil
}

func (s *itemService) CreateItem(ctx context.Context, req CreateItemRequest) (*models.Item, error) {
	if err := validatePrices(map[string]decimal.Decimal{
		"cp": req.CP, "wholesale": req.Wholesale, "sp": req.SP, "opening_quantity": req.OpeningQuantity,
	}); err != nil {
		return nil, err
	}
	item := &models.Item{
		SN:              strings.TrimSpace(req.SN),
		Product:         strings.TrimSpace(req.Product),
		Category:        strings.TrimSpace(req.Category),
		Brand:           strings.TrimSpace(req.Brand),
		CP:              req.CP,
		Wholesale:       req.Wholesale,
		SP:              req.SP,
		UOM:             strings.TrimSpace(req.UOM),
		OpeningQuantity: req.OpeningQuantity,
		CurrentQuantity: req.OpeningQuantity,
	}
	if item.SN == "" {
		return nil, newValidationError("sn", "cannot be empty")
	}
	if _, err := s.itemRepo.Create(ctx, s.db, item); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSerial, item.SN)
		}
		return nil, fmt.Errorf("failed to create item: %w", err)
	}
	utils.Logger(ctx).Info().Int64("item_id", item.ID).Str("sn", item.SN).Msg("Item created")
	return item, nil
}

func (s *itemService) GetItemByID(ctx context.Context, id int64) (*models.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, s.db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get item %d: %w", id, err)
	}
	return item, nil
}

// GetItemBySN is the quick lookup used by the sale and purchase forms.
func (s *itemService) GetItemBySN(ctx context.Context, sn string) (*models.Item, error) {
	item, err := s.itemRepo.GetBySN(ctx, s.db, strings.TrimSpace(sn))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get item %q: %w", sn, err)
	}
	return item, nil
}

func (s *itemService) GetItems(ctx context.Context, filters models.ItemFilters) ([]models.Item, error) {
	items, err := s.itemRepo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	return items, nil
}

func (s *itemService) UpdateItem(ctx context.Context, id int64, req UpdateItemRequest) (*models.Item, error) {
	if err := validatePrices(map[string]decimal.Decimal{"cp": req.CP, "wholesale": req.Wholesale, "sp": req.SP}); err != nil {
		return nil, err
	}
	item := &models.Item{
		ID:        id,
		SN:        strings.TrimSpace(req.SN),
		Product:   strings.TrimSpace(req.Product),
		Category:  strings.TrimSpace(req.Category),
		Brand:     strings.TrimSpace(req.Brand),
		CP:        req.CP,
		Wholesale: req.Wholesale,
		SP:        req.SP,
		UOM:       strings.TrimSpace(req.UOM),
	}
	if err := s.itemRepo.Update(ctx, s.db, item); err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return nil, ErrItemNotFound
		case errors.Is(err, repositories.ErrDuplicateKey):
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSerial, item.SN)
		}
		return nil, fmt.Errorf("failed to update item %d: %w", id, err)
	}
	return s.GetItemByID(ctx, id)
}

// DeleteItem refuses to remove items that sale or purchase lines still point at.
func (s *itemService) DeleteItem(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	refs, err := s.itemRepo.CountReferences(ctx, tx, id)
	if err != nil {
		return fmt.Errorf("failed to check references of item %d: %w", id, err)
	}
	if refs > 0 {
		return ErrItemInUse
	}
	if err := s.itemRepo.Delete(ctx, tx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrItemNotFound
		}
		return fmt.Errorf("failed to delete item %d: %w", id, err)
	}
	return tx.Commit()
}

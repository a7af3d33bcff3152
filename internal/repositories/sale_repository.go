package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"invoicing_backend/internal/models"

	"github.com/jmoiron/sqlx"
)

// SaleRepository defines the interface for sale-related database operations.
type SaleRepository interface {
	CreateSale(ctx context.Context, executor SQLExecutor, sale *models.Sale) (int64, error)
	CreateSaleItem(ctx context.Context, executor SQLExecutor, line *models.SaleItem) (int64, error)
	GetSaleByID(ctx context.Context, executor SQLExecutor, id int64) (*models.Sale, error)
	GetSaleItems(ctx context.Context, executor SQLExecutor, saleID int64) ([]models.SaleItem, error)
	DeleteSale(ctx context.Context, executor SQLExecutor, id int64) error

	ListSales(ctx context.Context, filters models.LedgerFilters) ([]models.Sale, int, error)
	RecentSales(ctx context.Context, limit int) ([]models.Sale, error)
	Count(ctx context.Context) (int, error)
}

type saleRepository struct {
	db *sqlx.DB
}

// NewSaleRepository creates a new instance of SaleRepository.
func NewSaleRepository(db *sqlx.DB) SaleRepository {
	return &saleRepository{db: db}
}

const saleSelect = `SELECT s.id, s.invoice_number, s.customer_id, s.total_amount, s.discount, s.tax_amount,
	s.final_amount, s.sale_date, s.notes, s.created_by, c.name AS customer_name
	FROM sales s
	LEFT JOIN customers c ON c.id = s.customer_id`

func (r *saleRepository) CreateSale(ctx context.Context, executor SQLExecutor, sale *models.Sale) (int64, error) {
	id, err := insertReturningID(ctx, executor,
		`INSERT INTO sales (invoice_number, customer_id, total_amount, discount, tax_amount, final_amount, sale_date, notes, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sale.InvoiceNumber, sale.CustomerID, sale.TotalAmount, sale.Discount, sale.TaxAmount, sale.FinalAmount,
		sale.SaleDate, sale.Notes, sale.CreatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: invoice number %s already used", ErrDuplicateKey, sale.InvoiceNumber)
		}
		return 0, fmt.Errorf("%w: creating sale: %v", ErrDatabaseError, err)
	}
	sale.ID = id
	return id, nil
}

func (r *saleRepository) CreateSaleItem(ctx context.Context, executor SQLExecutor, line *models.SaleItem) (int64, error) {
	id, err := insertReturningID(ctx, executor,
		`INSERT INTO sale_items (sale_id, item_id, quantity, unit_price, total_price) VALUES (?, ?, ?, ?, ?)`,
		line.SaleID, line.ItemID, line.Quantity, line.UnitPrice, line.TotalPrice,
	)
	if err != nil {
		return 0, fmt.Errorf("%w: creating sale item: %v", ErrDatabaseError, err)
	}
	line.ID = id
	return id, nil
}

// GetSaleByID returns the sale header together with its lines.
func (r *saleRepository) GetSaleByID(ctx context.Context, executor SQLExecutor, id int64) (*models.Sale, error) {
	var sale models.Sale
	if err := getOne(ctx, executor, &sale, saleSelect+" WHERE s.id = ?", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting sale %d: %v", ErrDatabaseError, id, err)
	}
	items, err := r.GetSaleItems(ctx, executor, id)
	if err != nil {
		return nil, err
	}
	sale.Items = items
	return &sale, nil
}

func (r *saleRepository) GetSaleItems(ctx context.Context, executor SQLExecutor, saleID int64) ([]models.SaleItem, error) {
	items := []models.SaleItem{}
	err := selectAll(ctx, executor, &items,
		`SELECT si.id, si.sale_id, si.item_id, si.quantity, si.unit_price, si.total_price,
		 i.sn AS item_sn, i.product AS item_product, i.uom AS item_uom
		 FROM sale_items si
		 LEFT JOIN items i ON i.id = si.item_id
		 WHERE si.sale_id = ?
		 ORDER BY si.id`,
		saleID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: getting items of sale %d: %v", ErrDatabaseError, saleID, err)
	}
	return items, nil
}

// DeleteSale removes the lines and then the header.
func (r *saleRepository) DeleteSale(ctx context.Context, executor SQLExecutor, id int64) error {
	if _, err := execAffecting(ctx, executor, "DELETE FROM sale_items WHERE sale_id = ?", id); err != nil {
		return fmt.Errorf("%w: deleting items of sale %d: %v", ErrDatabaseError, id, err)
	}
	affected, err := execAffecting(ctx, executor, "DELETE FROM sales WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("%w: deleting sale %d: %v", ErrDatabaseError, id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *saleRepository) ListSales(ctx context.Context, filters models.LedgerFilters) ([]models.Sale, int, error) {
	conditions, args, err := ledgerConditions("s.customer_id", "s.sale_date", filters)
	if err != nil {
		return nil, 0, err
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := getOne(ctx, r.db, &total, "SELECT COUNT(*) FROM sales s"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("%w: counting sales: %v", ErrDatabaseError, err)
	}

	limit, offset := normalizePage(filters.Page, filters.PageSize)
	sales := []models.Sale{}
	err = selectAll(ctx, r.db, &sales,
		saleSelect+where+" ORDER BY s.sale_date DESC, s.id DESC LIMIT ? OFFSET ?",
		append(args, limit, offset)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: listing sales: %v", ErrDatabaseError, err)
	}
	return sales, total, nil
}

func (r *saleRepository) RecentSales(ctx context.Context, limit int) ([]models.Sale, error) {
	sales := []models.Sale{}
	if err := selectAll(ctx, r.db, &sales, saleSelect+" ORDER BY s.sale_date DESC, s.id DESC LIMIT ?", limit); err != nil {
		return nil, fmt.Errorf("%w: listing recent sales: %v", ErrDatabaseError, err)
	}
	return sales, nil
}

func (r *saleRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := getOne(ctx, r.db, &count, "SELECT COUNT(*) FROM sales"); err != nil {
		return 0, fmt.Errorf("%w: counting sales: %v", ErrDatabaseError, err)
	}
	return count, nil
}

// ledgerConditions builds the WHERE fragments shared by sale and purchase listings.
// A date filter matches the whole UTC day.
func ledgerConditions(partyColumn, dateColumn string, filters models.LedgerFilters) ([]string, []interface{}, error) {
	var conditions []string
	var args []interface{}
	if filters.PartyID != nil {
		conditions = append(conditions, partyColumn+" = ?")
		args = append(args, *filters.PartyID)
	}
	if filters.Date != nil && *filters.Date != "" {
		day, err := time.Parse("2006-01-02", *filters.Date)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: date %q, expected YYYY-MM-DD", ErrInvalidFilter, *filters.Date)
		}
		conditions = append(conditions, dateColumn+" >= ? AND "+dateColumn+" < ?")
		args = append(args, day.UTC(), day.UTC().Add(24*time.Hour))
	}
	return conditions, args, nil
}

package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"invoicing_backend/internal/models"

	"github.com/jmoiron/sqlx"
)

// PurchaseRepository defines the interface for purchase-related database operations.
type PurchaseRepository interface {
	CreatePurchase(ctx context.Context, executor SQLExecutor, purchase *models.Purchase) (int64, error)
	CreatePurchaseItem(ctx context.Context, executor SQLExecutor, line *models.PurchaseItem) (int64, error)
	GetPurchaseByID(ctx context.Context, executor SQLExecutor, id int64) (*models.Purchase, error)
	GetPurchaseItems(ctx context.Context, executor SQLExecutor, purchaseID int64) ([]models.PurchaseItem, error)
	DeletePurchase(ctx context.Context, executor SQLExecutor, id int64) error

	ListPurchases(ctx context.Context, filters models.LedgerFilters) ([]models.Purchase, int, error)
	RecentPurchases(ctx context.Context, limit int) ([]models.Purchase, error)
	Count(ctx context.Context) (int, error)
}

type purchaseRepository struct {
	db *sqlx.DB
}

// NewPurchaseRepository creates a new instance of PurchaseRepository.
func NewPurchaseRepository(db *sqlx.DB) PurchaseRepository {
	return &purchaseRepository{db: db}
}

const purchaseSelect = `SELECT p.id, p.invoice_number, p.vendor_id, p.total_amount, p.discount, p.tax_amount,
	p.final_amount, p.purchase_date, p.notes, p.created_by, v.name AS vendor_name
	FROM purchases p
	LEFT JOIN vendors v ON v.id = p.vendor_id`

func (r *purchaseRepository) CreatePurchase(ctx context.Context, executor SQLExecutor, purchase *models.Purchase) (int64, error) {
	id, err := insertReturningID(ctx, executor,
		`INSERT INTO purchases (invoice_number, vendor_id, total_amount, discount, tax_amount, final_amount, purchase_date, notes, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		purchase.InvoiceNumber, purchase.VendorID, purchase.TotalAmount, purchase.Discount, purchase.TaxAmount, purchase.FinalAmount,
		purchase.PurchaseDate, purchase.Notes, purchase.CreatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: invoice number %s already used", ErrDuplicateKey, purchase.InvoiceNumber)
		}
		return 0, fmt.Errorf("%w: creating purchase: %v", ErrDatabaseError, err)
	}
	purchase.ID = id
	return id, nil
}

func (r *purchaseRepository) CreatePurchaseItem(ctx context.Context, executor SQLExecutor, line *models.PurchaseItem) (int64, error) {
	id, err := insertReturningID(ctx, executor,
		`INSERT INTO purchase_items (purchase_id, item_id, quantity, unit_price, total_price) VALUES (?, ?, ?, ?, ?)`,
		line.PurchaseID, line.ItemID, line.Quantity, line.UnitPrice, line.TotalPrice,
	)
	if err != nil {
		return 0, fmt.Errorf("%w: creating purchase item: %v", ErrDatabaseError, err)
	}
	line.ID = id
	return id, nil
}

// GetPurchaseByID returns the purchase header together with its lines.
func (r *purchaseRepository) GetPurchaseByID(ctx context.Context, executor SQLExecutor, id int64) (*models.Purchase, error) {
	var purchase models.Purchase
	if err := getOne(ctx, executor, &purchase, purchaseSelect+" WHERE p.id = ?", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting purchase %d: %v", ErrDatabaseError, id, err)
	}
	items, err := r.GetPurchaseItems(ctx, executor, id)
	if err != nil {
		return nil, err
	}
	purchase.Items = items
	return &purchase, nil
}

func (r *purchaseRepository) GetPurchaseItems(ctx context.Context, executor SQLExecutor, purchaseID int64) ([]models.PurchaseItem, error) {
	items := []models.PurchaseItem{}
	err := selectAll(ctx, executor, &items,
		`SELECT pi.id, pi.purchase_id, pi.item_id, pi.quantity, pi.unit_price, pi.total_price,
		 i.sn AS item_sn, i.product AS item_product, i.uom AS item_uom
		 FROM purchase_items pi
		 LEFT JOIN items i ON i.id = pi.item_id
		 WHERE pi.purchase_id = ?
		 ORDER BY pi.id`,
		purchaseID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: getting items of purchase %d: %v", ErrDatabaseError, purchaseID, err)
	}
	return items, nil
}

// DeletePurchase removes the lines and then the header.
func (r *purchaseRepository) DeletePurchase(ctx context.Context, executor SQLExecutor, id int64) error {
	if _, err := execAffecting(ctx, executor, "DELETE FROM purchase_items WHERE purchase_id = ?", id); err != nil {
		return fmt.Errorf("%w: deleting items of purchase %d: %v", ErrDatabaseError, id, err)
	}
	affected, err := execAffecting(ctx, executor, "DELETE FROM purchases WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("%w: deleting purchase %d: %v", ErrDatabaseError, id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *purchaseRepository) ListPurchases(ctx context.Context, filters models.LedgerFilters) ([]models.Purchase, int, error) {
	conditions, args, err := ledgerConditions("p.vendor_id", "p.purchase_date", filters)
	if err != nil {
		return nil, 0, err
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := getOne(ctx, r.db, &total, "SELECT COUNT(*) FROM purchases p"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("%w: counting purchases: %v", ErrDatabaseError, err)
	}

	limit, offset := normalizePage(filters.Page, filters.PageSize)
	purchases := []models.Purchase{}
	err = selectAll(ctx, r.db, &purchases,
		purchaseSelect+where+" ORDER BY p.purchase_date DESC, p.id DESC LIMIT ? OFFSET ?",
		append(args, limit, offset)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: listing purchases: %v", ErrDatabaseError, err)
	}
	return purchases, total, nil
}

func (r *purchaseRepository) RecentPurchases(ctx context.Context, limit int) ([]models.Purchase, error) {
	purchases := []models.Purchase{}
	if err := selectAll(ctx, r.db, &purchases, purchaseSelect+" ORDER BY p.purchase_date DESC, p.id DESC LIMIT ?", limit); err != nil {
		return nil, fmt.Errorf("%w: listing recent purchases: %v", ErrDatabaseError, err)
	}
	return purchases, nil
}

func (r *purchaseRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := getOne(ctx, r.db, &count, "SELECT COUNT(*) FROM purchases"); err != nil {
		return 0, fmt.Errorf("%w: counting purchases: %v", ErrDatabaseError, err)
	}
	return count, nil
}

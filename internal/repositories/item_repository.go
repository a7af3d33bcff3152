package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"invoicing_backend/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const itemColumns = `id, sn, product, category, brand, cp, wholesale, sp, uom,
	opening_quantity, current_quantity, created_at, updated_at`

// ItemRepository defines the interface for item-related database operations.
type ItemRepository interface {
	Create(ctx context.Context, executor SQLExecutor, item *models.Item) (int64, error)
	GetByID(ctx context.Context, executor SQLExecutor, id int64) (*models.Item, error)
	GetBySN(ctx context.Context, executor SQLExecutor, sn string) (*models.Item, error)
	GetBySNForUpdate(ctx context.Context, executor SQLExecutor, sn string) (*models.Item, error)
	Update(ctx context.Context, executor SQLExecutor, item *models.Item) error
	OverwriteFromImport(ctx context.Context, executor SQLExecutor, item *models.Item) error
	Delete(ctx context.Context, executor SQLExecutor, id int64) error
	LockForUpdate(ctx context.Context, executor SQLExecutor, ids []int64) (map[int64]*models.Item, error)
	SetQuantity(ctx context.Context, executor SQLExecutor, id int64, quantity decimal.Decimal) error
	CountReferences(ctx context.Context, executor SQLExecutor, id int64) (int, error)

	List(ctx context.Context, filters models.ItemFilters) ([]models.Item, error)
	LowStock(ctx context.Context, threshold decimal.Decimal, limit int) ([]models.Item, error)
	Count(ctx context.Context) (int, error)
}

type itemRepository struct {
	db *sqlx.DB
}

// NewItemRepository creates a new instance of ItemRepository.
func NewItemRepository(db *sqlx.DB) ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) Create(ctx context.Context, executor SQLExecutor, item *models.Item) (int64, error) {
	now := time.Now().UTC()
	id, err := insertReturningID(ctx, executor,
		`INSERT INTO items (sn, product, category, brand, cp, wholesale, sp, uom,
		 opening_quantity, current_quantity, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.SN, item.Product, item.Category, item.Brand, item.CP, item.Wholesale, item.SP, item.UOM,
		item.OpeningQuantity, item.CurrentQuantity, now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: item with SN %q already exists", ErrDuplicateKey, item.SN)
		}
		return 0, fmt.Errorf("%w: creating item: %v", ErrDatabaseError, err)
	}
	item.ID = id
	item.CreatedAt = now
	item.UpdatedAt = now
	return id, nil
}

func (r *itemRepository) GetByID(ctx context.Context, executor SQLExecutor, id int64) (*models.Item, error) {
	return r.getOne(ctx, executor, itemQuery("id = ?"), id)
}

func (r *itemRepository) GetBySN(ctx context.Context, executor SQLExecutor, sn string) (*models.Item, error) {
	return r.getOne(ctx, executor, itemQuery("sn = ?"), sn)
}

// GetBySNForUpdate reads the item and keeps its row locked until the
// executor's transaction ends.
func (r *itemRepository) GetBySNForUpdate(ctx context.Context, executor SQLExecutor, sn string) (*models.Item, error) {
	return r.getOne(ctx, executor, itemBySNForUpdateQuery(executor), sn)
}

func itemQuery(where string) string {
	return "SELECT " + itemColumns + " FROM items WHERE " + where
}

func itemBySNForUpdateQuery(executor SQLExecutor) string {
	return itemQuery("sn = ?") + lockClause(executor)
}

func (r *itemRepository) getOne(ctx context.Context, executor SQLExecutor, query string, arg interface{}) (*models.Item, error) {
	var item models.Item
	err := getOne(ctx, executor, &item, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting item: %v", ErrDatabaseError, err)
	}
	return &item, nil
}

// Update changes descriptive and price fields. Quantities are left alone.
func (r *itemRepository) Update(ctx context.Context, executor SQLExecutor, item *models.Item) error {
	item.UpdatedAt = time.Now().UTC()
	affected, err := execAffecting(ctx, executor,
		`UPDATE items SET sn = ?, product = ?, category = ?, brand = ?, cp = ?, wholesale = ?, sp = ?, uom = ?, updated_at = ?
		 WHERE id = ?`,
		item.SN, item.Product, item.Category, item.Brand, item.CP, item.Wholesale, item.SP, item.UOM, item.UpdatedAt, item.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: item with SN %q already exists", ErrDuplicateKey, item.SN)
		}
		return fmt.Errorf("%w: updating item %d: %v", ErrDatabaseError, item.ID, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// OverwriteFromImport replaces every mutable field of the item matched by SN,
// including both quantities.
func (r *itemRepository) OverwriteFromImport(ctx context.Context, executor SQLExecutor, item *models.Item) error {
	item.UpdatedAt = time.Now().UTC()
	affected, err := execAffecting(ctx, executor,
		`UPDATE items SET product = ?, category = ?, brand = ?, cp = ?, wholesale = ?, sp = ?, uom = ?,
		 opening_quantity = ?, current_quantity = ?, updated_at = ?
		 WHERE sn = ?`,
		item.Product, item.Category, item.Brand, item.CP, item.Wholesale, item.SP, item.UOM,
		item.OpeningQuantity, item.CurrentQuantity, item.UpdatedAt, item.SN,
	)
	if err != nil {
		return fmt.Errorf("%w: overwriting item %q: %v", ErrDatabaseError, item.SN, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *itemRepository) Delete(ctx context.Context, executor SQLExecutor, id int64) error {
	affected, err := execAffecting(ctx, executor, "DELETE FROM items WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("%w: deleting item %d: %v", ErrDatabaseError, id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// LockForUpdate loads the given items, locking their rows in ascending id order.
// Ids that do not exist are simply absent from the returned map.
func (r *itemRepository) LockForUpdate(ctx context.Context, executor SQLExecutor, ids []int64) (map[int64]*models.Item, error) {
	locked := make(map[int64]*models.Item, len(ids))
	if len(ids) == 0 {
		return locked, nil
	}

	sorted := append([]int64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	query, args, err := sqlx.In("SELECT "+itemColumns+" FROM items WHERE id IN (?) ORDER BY id"+lockClause(executor), sorted)
	if err != nil {
		return nil, fmt.Errorf("%w: building lock query: %v", ErrDatabaseError, err)
	}
	var items []models.Item
	if err := selectAll(ctx, executor, &items, query, args...); err != nil {
		return nil, fmt.Errorf("%w: locking items: %v", ErrDatabaseError, err)
	}
	for i := range items {
		locked[items[i].ID] = &items[i]
	}
	return locked, nil
}

// SetQuantity writes an absolute current quantity computed by the caller.
func (r *itemRepository) SetQuantity(ctx context.Context, executor SQLExecutor, id int64, quantity decimal.Decimal) error {
	affected, err := execAffecting(ctx, executor,
		"UPDATE items SET current_quantity = ?, updated_at = ? WHERE id = ?",
		quantity, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("%w: setting quantity of item %d: %v", ErrDatabaseError, id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountReferences reports how many sale and purchase lines point at the item.
func (r *itemRepository) CountReferences(ctx context.Context, executor SQLExecutor, id int64) (int, error) {
	var count int
	err := getOne(ctx, executor, &count,
		`SELECT (SELECT COUNT(*) FROM sale_items WHERE item_id = ?) + (SELECT COUNT(*) FROM purchase_items WHERE item_id = ?)`,
		id, id,
	)
	if err != nil {
		return 0, fmt.Errorf("%w: counting references to item %d: %v", ErrDatabaseError, id, err)
	}
	return count, nil
}

func (r *itemRepository) List(ctx context.Context, filters models.ItemFilters) ([]models.Item, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString("SELECT " + itemColumns + " FROM items")

	var conditions []string
	var args []interface{}
	if filters.InStockOnly {
		conditions = append(conditions, "current_quantity > 0")
	}
	if filters.Search != nil && strings.TrimSpace(*filters.Search) != "" {
		pattern := "%" + strings.ToLower(strings.TrimSpace(*filters.Search)) + "%"
		conditions = append(conditions, "(LOWER(sn) LIKE ? OR LOWER(product) LIKE ?)")
		args = append(args, pattern, pattern)
	}
	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY product, sn")

	items := []models.Item{}
	if err := selectAll(ctx, r.db, &items, queryBuilder.String(), args...); err != nil {
		return nil, fmt.Errorf("%w: listing items: %v", ErrDatabaseError, err)
	}
	return items, nil
}

func (r *itemRepository) LowStock(ctx context.Context, threshold decimal.Decimal, limit int) ([]models.Item, error) {
	items := []models.Item{}
	err := selectAll(ctx, r.db, &items,
		"SELECT "+itemColumns+" FROM items WHERE current_quantity < ? ORDER BY current_quantity, id LIMIT ?",
		threshold, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: listing low stock items: %v", ErrDatabaseError, err)
	}
	return items, nil
}

func (r *itemRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := getOne(ctx, r.db, &count, "SELECT COUNT(*) FROM items"); err != nil {
		return 0, fmt.Errorf("%w: counting items: %v", ErrDatabaseError, err)
	}
	return count, nil
}

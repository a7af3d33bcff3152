package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"invoicing_backend/internal/models"

	"github.com/jmoiron/sqlx"
)

// StockMovementRepository defines the interface for stock movement-related database operations.
type StockMovementRepository interface {
	CreateMovement(ctx context.Context, executor SQLExecutor, movement *models.StockMovement) (int64, error)
	GetMovements(ctx context.Context, filters models.StockMovementFilters) ([]models.StockMovement, int, error)
}

type stockMovementRepository struct {
	db *sqlx.DB
}

// NewStockMovementRepository creates a new instance of StockMovementRepository.
func NewStockMovementRepository(db *sqlx.DB) StockMovementRepository {
	return &stockMovementRepository{db: db}
}

func (r *stockMovementRepository) CreateMovement(ctx context.Context, executor SQLExecutor, movement *models.StockMovement) (int64, error) {
	if movement.MovementDate.IsZero() { // Default movement_date to current time if not provided
		movement.MovementDate = time.Now().UTC()
	}
	id, err := insertReturningID(ctx, executor,
		`INSERT INTO stock_movements (item_id, movement_type, quantity_changed, reference, user_id, movement_date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		movement.ItemID, movement.MovementType, movement.QuantityChanged, movement.Reference, movement.UserID, movement.MovementDate,
	)
	if err != nil {
		return 0, fmt.Errorf("%w: creating stock movement: %v", ErrDatabaseError, err)
	}
	movement.ID = id
	return id, nil
}

func (r *stockMovementRepository) GetMovements(ctx context.Context, filters models.StockMovementFilters) ([]models.StockMovement, int, error) {
	var conditions []string
	var args []interface{}
	if filters.ItemID != nil {
		conditions = append(conditions, "sm.item_id = ?")
		args = append(args, *filters.ItemID)
	}
	if filters.MovementType != nil && *filters.MovementType != "" {
		conditions = append(conditions, "sm.movement_type = ?")
		args = append(args, *filters.MovementType)
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := getOne(ctx, r.db, &total, "SELECT COUNT(*) FROM stock_movements sm"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("%w: counting stock movements: %v", ErrDatabaseError, err)
	}

	limit, offset := normalizePage(filters.Page, filters.PageSize)
	movements := []models.StockMovement{}
	err := selectAll(ctx, r.db, &movements,
		`SELECT sm.id, sm.item_id, sm.movement_type, sm.quantity_changed, sm.reference, sm.user_id, sm.movement_date,
		 i.sn AS item_sn, i.product AS item_product
		 FROM stock_movements sm
		 LEFT JOIN items i ON i.id = sm.item_id`+where+`
		 ORDER BY sm.movement_date DESC, sm.id DESC LIMIT ? OFFSET ?`,
		append(args, limit, offset)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: getting stock movements: %v", ErrDatabaseError, err)
	}
	return movements, total, nil
}

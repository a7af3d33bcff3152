package services

import (
	"context"
	"fmt"
	"sort"

	"invoicing_backend/internal/metrics"
	"invoicing_backend/internal/models"
	"invoicing_backend/internal/repositories"
	"invoicing_backend/pkg/utils"

	"github.com/shopspring/decimal"
)

// LedgerKind distinguishes the two transaction types that move stock.
type LedgerKind string

const (
	KindSale     LedgerKind = "sale"
	KindPurchase LedgerKind = "purchase"
)

// Direction says whether a transaction is being recorded or undone.
type Direction int

const (
	Apply Direction = iota
	Reverse
)

func (d Direction) String() string {
	if d == Reverse {
		return "reverse"
	}
	return "apply"
}

// StockLine is the item/quantity part of a sale or purchase line.
type StockLine struct {
	ItemID   int64
	Quantity decimal.Decimal
}

// InventoryAdjuster is the only writer of items.current_quantity outside the importer.
type InventoryAdjuster interface {
	// Adjust applies or reverses the stock effect of lines inside the caller's
	// transaction. Applying a sale fails with *InsufficientStockError when the
	// cumulative quantity for an item exceeds what is on hand; nothing is
	// written in that case.
	Adjust(ctx context.Context, tx repositories.SQLExecutor, kind LedgerKind, dir Direction, reference string, lines []StockLine) error
}

type inventoryAdjuster struct {
	itemRepo     repositories.ItemRepository
	movementRepo repositories.StockMovementRepository
}

// NewInventoryAdjuster creates a new InventoryAdjuster.
func NewInventoryAdjuster(itemRepo repositories.ItemRepository, movementRepo repositories.StockMovementRepository) InventoryAdjuster {
	return &inventoryAdjuster{itemRepo: itemRepo, movementRepo: movementRepo}
}

// movementFor maps a kind and direction to the movement type and whether stock goes down.
func movementFor(kind LedgerKind, dir Direction) (movementType string, decrease bool) {
	switch {
	case kind == KindSale && dir == Apply:
		return models.MovementTypeSale, true
	case kind == KindSale:
		return models.MovementTypeSaleReversal, false
	case dir == Apply:
		return models.MovementTypePurchase, false
	default:
		return models.MovementTypePurchaseReversal, true
	}
}

func (a *inventoryAdjuster) Adjust(ctx context.Context, tx repositories.SQLExecutor, kind LedgerKind, dir Direction, reference string, lines []StockLine) error {
	totals := make(map[int64]decimal.Decimal, len(lines))
	for _, line := range lines {
		totals[line.ItemID] = totals[line.ItemID].Add(line.Quantity)
	}
	ids := make([]int64, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	locked, err := a.itemRepo.LockForUpdate(ctx, tx, ids)
	if err != nil {
		return fmt.Errorf("failed to lock items: %w", err)
	}

	movementType, decrease := movementFor(kind, dir)
	deltas := make(map[int64]decimal.Decimal, len(ids))
	newQuantities := make(map[int64]decimal.Decimal, len(ids))

	// Check everything before writing anything.
	for _, id := range ids {
		item, ok := locked[id]
		if !ok {
			return fmt.Errorf("%w: item ID %d", ErrItemNotFound, id)
		}
		requested := totals[id]
		if kind == KindSale && dir == Apply && requested.GreaterThan(item.CurrentQuantity) {
			metrics.InsufficientStockCounter.Inc()
			return &InsufficientStockError{
				ItemID:    id,
				Product:   item.Product,
				Requested: requested,
				Available: item.CurrentQuantity,
			}
		}
		delta := requested
		if decrease {
			delta = delta.Neg()
		}
		deltas[id] = delta
		newQuantities[id] = item.CurrentQuantity.Add(delta)
	}

	userID := utils.UserIDFromContext(ctx)
	for _, id := range ids {
		newQty := newQuantities[id]
		if newQty.IsNegative() {
			utils.Logger(ctx).Warn().
				Int64("item_id", id).
				Str("movement_type", movementType).
				Str("reference", reference).
				Str("new_quantity", newQty.String()).
				Msg("Stock reversal drove quantity below zero")
		}
		if err := a.itemRepo.SetQuantity(ctx, tx, id, newQty); err != nil {
			return fmt.Errorf("failed to update stock for item %d: %w", id, err)
		}

		ref := reference
		movement := models.StockMovement{
			ItemID:          id,
			MovementType:    movementType,
			QuantityChanged: deltas[id],
			Reference:       &ref,
			UserID:          userID,
		}
		if _, err := a.movementRepo.CreateMovement(ctx, tx, &movement); err != nil {
			return fmt.Errorf("failed to record stock movement for item %d: %w", id, err)
		}
		metrics.RecordStockMovement(movementType)
	}

	utils.Logger(ctx).Debug().
		Str("kind", string(kind)).
		Str("direction", dir.String()).
		Str("reference", reference).
		Int("items", len(ids)).
		Msg("Stock adjusted")
	return nil
}

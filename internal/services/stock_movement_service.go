package services

import (
	"context"

	"invoicing_backend/internal/models"
	"invoicing_backend/internal/repositories"
)

// StockMovementService exposes the stock movement history written by the adjuster and the importer.
type StockMovementService interface {
	GetMovements(ctx context.Context, filters models.StockMovementFilters) ([]models.StockMovement, int, error)
}

type stockMovementService struct {
	movementRepo repositories.StockMovementRepository
}

// NewStockMovementService creates a new StockMovementService.
func NewStockMovementService(movementRepo repositories.StockMovementRepository) StockMovementService {
	return &stockMovementService{movementRepo: movementRepo}
}

func (s *stockMovementService) GetMovements(ctx context.Context, filters models.StockMovementFilters) ([]models.StockMovement, int, error) {
	if filters.MovementType != nil {
		switch *filters.MovementType {
		case models.MovementTypeSale, models.MovementTypeSaleReversal,
			models.MovementTypePurchase, models.MovementTypePurchaseReversal,
			models.MovementTypeImport:
		default:
			return nil, 0, newValidationError("movement_type", "unknown movement type %q", *filters.MovementType)
		}
	}
	return s.movementRepo.GetMovements(ctx, filters)
}

package handlers

import (
	"invoicing_backend/internal/models"
	"invoicing_backend/internal/repositories"
	"invoicing_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// StockMovementHandler serves the stock movement history.
type StockMovementHandler struct {
	movementService services.StockMovementService
}

// NewStockMovementHandler creates a new StockMovementHandler.
func NewStockMovementHandler(ms services.StockMovementService) *StockMovementHandler {
	return &StockMovementHandler{movementService: ms}
}

// GetStockMovements lists movements, filterable by ?item_id= and ?movement_type=.
func (h *StockMovementHandler) GetStockMovements(c *gin.Context) {
	var filters models.StockMovementFilters
	if !bindQuery(c, &filters) {
		return
	}
	movements, total, err := h.movementService.GetMovements(c.Request.Context(), filters)
	if err != nil {
		respondServiceError(c, err, "retrieve stock movements")
		return
	}
	page, pageSize := repositories.ClampPage(filters.Page, filters.PageSize)
	paginated(c, movements, total, page, pageSize)
}

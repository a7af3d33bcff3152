package handlers

import (
	"net/http"

	"invoicing_backend/internal/models"
	"invoicing_backend/internal/repositories"
	"invoicing_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// PurchaseHandler holds the purchase service.
type PurchaseHandler struct {
	purchaseService services.PurchaseService
}

// NewPurchaseHandler creates a new PurchaseHandler.
func NewPurchaseHandler(ps services.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchaseService: ps}
}

// CreatePurchase records a purchase and increments stock for every line in one transaction.
func (h *PurchaseHandler) CreatePurchase(c *gin.Context) {
	var req services.CreatePurchaseRequest
	if !bindJSON(c, &req) {
		return
	}
	purchase, err := h.purchaseService.CreatePurchase(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "create purchase")
		return
	}
	c.JSON(http.StatusCreated, purchase)
}

// GetPurchases lists purchases filtered by ?party_id= and ?date=YYYY-MM-DD, newest first.
func (h *PurchaseHandler) GetPurchases(c *gin.Context) {
	var filters models.LedgerFilters
	if !bindQuery(c, &filters) {
		return
	}
	purchases, total, err := h.purchaseService.GetPurchases(c.Request.Context(), filters)
	if err != nil {
		respondServiceError(c, err, "retrieve purchases")
		return
	}
	page, pageSize := repositories.ClampPage(filters.Page, filters.PageSize)
	paginated(c, purchases, total, page, pageSize)
}

func (h *PurchaseHandler) GetPurchaseByID(c *gin.Context) {
	id, ok := pathID(c, "purchase")
	if !ok {
		return
	}
	purchase, err := h.purchaseService.GetPurchaseByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "retrieve purchase")
		return
	}
	c.JSON(http.StatusOK, purchase)
}

// DeletePurchase removes a purchase and takes its quantities back out of stock.
func (h *PurchaseHandler) DeletePurchase(c *gin.Context) {
	id, ok := pathID(c, "purchase")
	if !ok {
		return
	}
	if err := h.purchaseService.DeletePurchase(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "delete purchase")
		return
	}
	c.Status(http.StatusNoContent)
}

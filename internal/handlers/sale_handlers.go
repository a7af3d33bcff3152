package handlers

import (
	"net/http"

	"invoicing_backend/internal/models"
	"invoicing_backend/internal/repositories"
	"invoicing_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// SaleHandler holds the sale service.
type SaleHandler struct {
	saleService services.SaleService
}

// NewSaleHandler creates a new SaleHandler.
func NewSaleHandler(ss services.SaleService) *SaleHandler {
	return &SaleHandler{saleService: ss}
}

// CreateSale records a sale and decrements stock for every line in one transaction.
func (h *SaleHandler) CreateSale(c *gin.Context) {
	var req services.CreateSaleRequest
	if !bindJSON(c, &req) {
		return
	}
	sale, err := h.saleService.CreateSale(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "create sale")
		return
	}
	c.JSON(http.StatusCreated, sale)
}

// GetSales lists sales filtered by ?party_id= and ?date=YYYY-MM-DD, newest first.
func (h *SaleHandler) GetSales(c *gin.Context) {
	var filters models.LedgerFilters
	if !bindQuery(c, &filters) {
		return
	}
	sales, total, err := h.saleService.GetSales(c.Request.Context(), filters)
	if err != nil {
		respondServiceError(c, err, "retrieve sales")
		return
	}
	page, pageSize := repositories.ClampPage(filters.Page, filters.PageSize)
	paginated(c, sales, total, page, pageSize)
}

func (h *SaleHandler) GetSaleByID(c *gin.Context) {
	id, ok := pathID(c, "sale")
	if !ok {
		return
	}
	sale, err := h.saleService.GetSaleByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "retrieve sale")
		return
	}
	c.JSON(http.StatusOK, sale)
}

// DeleteSale removes a sale and returns its quantities to stock.
func (h *SaleHandler) DeleteSale(c *gin.Context) {
	id, ok := pathID(c, "sale")
	if !ok {
		return
	}
	if err := h.saleService.DeleteSale(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "delete sale")
		return
	}
	c.Status(http.StatusNoContent)
}

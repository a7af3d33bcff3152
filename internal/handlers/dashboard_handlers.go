package handlers

import (
	"net/http"

	"invoicing_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// DashboardHandler serves the dashboard summary.
type DashboardHandler struct {
	dashboardService services.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(ds services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: ds}
}

// GetSummary returns entity counts, recent sales and purchases and low-stock items.
func (h *DashboardHandler) GetSummary(c *gin.Context) {
	summary, err := h.dashboardService.GetSummary(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "load dashboard")
		return
	}
	c.JSON(http.StatusOK, summary)
}

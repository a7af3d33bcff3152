package services

import (
	"context"
	"fmt"

	"invoicing_backend/internal/models"
	"invoicing_backend/internal/repositories"

	"github.com/shopspring/decimal"
)

const dashboardListSize = 5

// DashboardService builds the landing page summary.
type DashboardService interface {
	GetSummary(ctx context.Context) (*models.DashboardSummary, error)
}

type dashboardService struct {
	customerRepo      repositories.CustomerRepository
	vendorRepo        repositories.VendorRepository
	itemRepo          repositories.ItemRepository
	saleRepo          repositories.SaleRepository
	purchaseRepo      repositories.PurchaseRepository
	lowStockThreshold decimal.Decimal
}

// NewDashboardService creates a new DashboardService. Items whose current
// quantity is below lowStockThreshold are reported as low stock.
func NewDashboardService(
	customerRepo repositories.CustomerRepository,
	vendorRepo repositories.VendorRepository,
	itemRepo repositories.ItemRepository,
	saleRepo repositories.SaleRepository,
	purchaseRepo repositories.PurchaseRepository,
	lowStockThreshold decimal.Decimal,
) DashboardService {
	return &dashboardService{
		customerRepo:      customerRepo,
		vendorRepo:        vendorRepo,
		itemRepo:          itemRepo,
		saleRepo:          saleRepo,
		purchaseRepo:      purchaseRepo,
		lowStockThreshold: lowStockThreshold,
	}
}

func (s *dashboardService) GetSummary(ctx context.Context) (*models.DashboardSummary, error) {
	var summary models.DashboardSummary
	var err error

	if summary.TotalCustomers, err = s.customerRepo.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}
	if summary.TotalVendors, err = s.vendorRepo.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count vendors: %w", err)
	}
	if summary.TotalItems, err = s.itemRepo.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count items: %w", err)
	}
	if summary.TotalSales, err = s.saleRepo.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count sales: %w", err)
	}
	if summary.TotalPurchases, err = s.purchaseRepo.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count purchases: %w", err)
	}
	if summary.RecentSales, err = s.saleRepo.RecentSales(ctx, dashboardListSize); err != nil {
		return nil, fmt.Errorf("failed to get recent sales: %w", err)
	}
	if summary.RecentPurchases, err = s.purchaseRepo.RecentPurchases(ctx, dashboardListSize); err != nil {
		return nil, fmt.Errorf("failed to get recent purchases: %w", err)
	}
	if summary.LowStockItems, err = s.itemRepo.LowStock(ctx, s.lowStockThreshold, dashboardListSize); err != nil {
		return nil, fmt.Errorf("failed to get low stock items: %w", err)
	}
	return &summary, nil
}

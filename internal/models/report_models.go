package models

// DashboardSummary holds the counters and short lists shown on the dashboard.
type DashboardSummary struct {
	TotalCustomers  int        `json:"total_customers"`
	TotalVendors    int        `json:"total_vendors"`
	TotalItems      int        `json:"total_items"`
	TotalSales      int        `json:"total_sales"`
	TotalPurchases  int        `json:"total_purchases"`
	RecentSales     []Sale     `json:"recent_sales"`
	RecentPurchases []Purchase `json:"recent_purchases"`
	LowStockItems   []Item     `json:"low_stock_items"`
}

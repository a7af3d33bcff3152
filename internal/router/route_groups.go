package router

import (
	"invoicing_backend/internal/handlers"
	"invoicing_backend/internal/middleware"
	"invoicing_backend/internal/models"

	"github.com/gin-gonic/gin"
)

func SetupPublicAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.POST("/login", authHandler.LoginUser)
}

func SetupAuthenticatedAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.POST("/logout", authHandler.LogoutUser)
	group.GET("/me", authHandler.GetCurrentUser)
}

// SetupItemRoutes sets up item CRUD and spreadsheet routes. Import and delete are admin only.
func SetupItemRoutes(authenticatedGroup *gin.RouterGroup, itemHandler *handlers.ItemHandler) {
	itemRoutes := authenticatedGroup.Group("/items")
	itemRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleStaff))
	{
		itemRoutes.POST("", itemHandler.CreateItem)
		itemRoutes.GET("", itemHandler.GetItems)
		itemRoutes.GET("/export", itemHandler.ExportItems)
		itemRoutes.GET("/sn/:sn", itemHandler.GetItemBySN)
		itemRoutes.GET("/:id", itemHandler.GetItemByID)
		itemRoutes.PUT("/:id", itemHandler.UpdateItem)

		adminRoutes := itemRoutes.Group("")
		adminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
		adminRoutes.POST("/import", itemHandler.ImportItems)
		adminRoutes.DELETE("/:id", itemHandler.DeleteItem)
	}
}

// SetupCustomerRoutes sets up the customer routes.
func SetupCustomerRoutes(authenticatedGroup *gin.RouterGroup, customerHandler *handlers.CustomerHandler) {
	customerRoutes := authenticatedGroup.Group("/customers")
	customerRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleStaff))
	{
		customerRoutes.POST("", customerHandler.CreateCustomer)
		customerRoutes.GET("", customerHandler.GetCustomers)
		customerRoutes.GET("/:id", customerHandler.GetCustomerByID)
		customerRoutes.PUT("/:id", customerHandler.UpdateCustomer)
		customerRoutes.DELETE("/:id", customerHandler.DeleteCustomer)
	}
}

// SetupVendorRoutes sets up the vendor routes.
func SetupVendorRoutes(authenticatedGroup *gin.RouterGroup, vendorHandler *handlers.VendorHandler) {
	vendorRoutes := authenticatedGroup.Group("/vendors")
	vendorRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleStaff))
	{
		vendorRoutes.POST("", vendorHandler.CreateVendor)
		vendorRoutes.GET("", vendorHandler.GetVendors)
		vendorRoutes.GET("/:id", vendorHandler.GetVendorByID)
		vendorRoutes.PUT("/:id", vendorHandler.UpdateVendor)
		vendorRoutes.DELETE("/:id", vendorHandler.DeleteVendor)
	}
}

// SetupSaleRoutes sets up the sale routes.
func SetupSaleRoutes(authenticatedGroup *gin.RouterGroup, saleHandler *handlers.SaleHandler) {
	saleRoutes := authenticatedGroup.Group("/sales")
	saleRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleStaff))
	{
		saleRoutes.POST("", saleHandler.CreateSale)
		saleRoutes.GET("", saleHandler.GetSales)
		saleRoutes.GET("/:id", saleHandler.GetSaleByID)
		saleRoutes.DELETE("/:id", saleHandler.DeleteSale)
	}
}

// SetupPurchaseRoutes sets up the purchase routes.
func SetupPurchaseRoutes(authenticatedGroup *gin.RouterGroup, purchaseHandler *handlers.PurchaseHandler) {
	purchaseRoutes := authenticatedGroup.Group("/purchases")
	purchaseRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleStaff))
	{
		purchaseRoutes.POST("", purchaseHandler.CreatePurchase)
		purchaseRoutes.GET("", purchaseHandler.GetPurchases)
		purchaseRoutes.GET("/:id", purchaseHandler.GetPurchaseByID)
		purchaseRoutes.DELETE("/:id", purchaseHandler.DeletePurchase)
	}
}

func SetupStockMovementRoutes(authenticatedGroup *gin.RouterGroup, movementHandler *handlers.StockMovementHandler) {
	authenticatedGroup.GET("/stock-movements", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleStaff), movementHandler.GetStockMovements)
}

func SetupDashboardRoutes(authenticatedGroup *gin.RouterGroup, dashboardHandler *handlers.DashboardHandler) {
	authenticatedGroup.GET("/dashboard/summary", dashboardHandler.GetSummary)
}

package router

import (
	"net/http"

	"invoicing_backend/internal/config"
	"invoicing_backend/internal/handlers"
	"invoicing_backend/internal/locks"
	"invoicing_backend/internal/metrics"
	"invoicing_backend/internal/middleware"
	"invoicing_backend/internal/repositories"
	"invoicing_backend/internal/services"
	"invoicing_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// Setup wires repositories, services and handlers and registers every route on engine.
func Setup(engine *gin.Engine, db *sqlx.DB, cfg *config.Config, locker locks.Locker, jwt *utils.JWTManager) {
	// Repositories
	userRepo := repositories.NewUserRepository(db)
	itemRepo := repositories.NewItemRepository(db)
	customerRepo := repositories.NewCustomerRepository(db)
	vendorRepo := repositories.NewVendorRepository(db)
	saleRepo := repositories.NewSaleRepository(db)
	purchaseRepo := repositories.NewPurchaseRepository(db)
	movementRepo := repositories.NewStockMovementRepository(db)

	// Services
	adjuster := services.NewInventoryAdjuster(itemRepo, movementRepo)
	builder := services.NewTransactionBuilder(db, adjuster, services.NewInvoiceNumberGenerator(nil))

	authService := services.NewAuthService(db, userRepo, jwt)
	itemService := services.NewItemService(db, itemRepo)
	importService := services.NewImportService(db, itemRepo, movementRepo, locker, cfg.Import)
	customerService := services.NewCustomerService(db, customerRepo, cfg.DefaultPhoneRegion)
	vendorService := services.NewVendorService(db, vendorRepo, cfg.DefaultPhoneRegion)
	saleService := services.NewSaleService(db, builder, saleRepo, customerRepo)
	purchaseService := services.NewPurchaseService(db, builder, purchaseRepo, vendorRepo)
	movementService := services.NewStockMovementService(movementRepo)
	dashboardService := services.NewDashboardService(customerRepo, vendorRepo, itemRepo, saleRepo, purchaseRepo,
		decimal.NewFromInt(int64(cfg.LowStockThreshold)))

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	itemHandler := handlers.NewItemHandler(itemService, importService)
	customerHandler := handlers.NewCustomerHandler(customerService)
	vendorHandler := handlers.NewVendorHandler(vendorService)
	saleHandler := handlers.NewSaleHandler(saleService)
	purchaseHandler := handlers.NewPurchaseHandler(purchaseService)
	movementHandler := handlers.NewStockMovementHandler(movementService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	engine.GET("/metrics", metrics.Handler())

	apiV1 := engine.Group("/api/v1")
	SetupPublicAuthRoutes(apiV1.Group("/auth"), authHandler)

	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware(jwt))
	{
		SetupAuthenticatedAuthRoutes(authenticated.Group("/auth"), authHandler)
		SetupItemRoutes(authenticated, itemHandler)
		SetupCustomerRoutes(authenticated, customerHandler)
		SetupVendorRoutes(authenticated, vendorHandler)
		SetupSaleRoutes(authenticated, saleHandler)
		SetupPurchaseRoutes(authenticated, purchaseHandler)
		SetupStockMovementRoutes(authenticated, movementHandler)
		SetupDashboardRoutes(authenticated, dashboardHandler)
	}
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"invoicing_backend/internal/config"
	"invoicing_backend/internal/database"
	"invoicing_backend/internal/locks"
	"invoicing_backend/internal/metrics"
	"invoicing_backend/internal/middleware"
	"invoicing_backend/internal/repositories"
	"invoicing_backend/internal/router"
	"invoicing_backend/internal/services"
	"invoicing_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.InitLogger("info", true)
		utils.LogError(err, "Invalid configuration")
		os.Exit(1)
	}
	utils.InitLogger(cfg.LogLevel, cfg.IsDevelopment())
	utils.RegisterDecimalValidation()

	ctx := context.Background()

	db, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		utils.LogError(err, "Failed to connect to database")
		os.Exit(1)
	}
	defer db.Close()

	if err := database.ApplySchemaFile(ctx, db, cfg.DB.SchemaPath); err != nil {
		utils.LogError(err, "Failed to apply schema file")
		os.Exit(1)
	}
	if err := database.Migrate(ctx, db); err != nil {
		utils.LogError(err, "Failed to migrate database")
		os.Exit(1)
	}

	// Imports serialise across instances through Redis when it is configured.
	var locker locks.Locker = locks.NewLocalLocker()
	if cfg.RedisAddress != "" {
		rdb, err := locks.Connect(ctx, cfg.RedisAddress)
		if err != nil {
			utils.LogError(err, "Failed to connect to Redis")
			os.Exit(1)
		}
		defer rdb.Close()
		locker = locks.NewRedisLocker(rdb)
	}

	jwt := utils.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	if cfg.Auth.AdminPassword != "" {
		authService := services.NewAuthService(db, repositories.NewUserRepository(db), jwt)
		if err := authService.EnsureAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
			utils.LogError(err, "Failed to seed admin user")
			os.Exit(1)
		}
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(utils.GinLogger())
	engine.Use(metrics.GinMiddleware())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.AllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{"Content-Disposition", middleware.RequestIDHeader}
	corsConfig.AllowCredentials = true
	engine.Use(cors.New(corsConfig))

	router.Setup(engine, db, cfg, locker, jwt)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.LogInfo("Server starting", map[string]interface{}{"port": cfg.Server.Port, "env": cfg.Server.Env})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			utils.LogError(err, "Failed to start server")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.LogError(err, "Server forced to shutdown")
	}
	utils.LogInfo("Server exited")
}

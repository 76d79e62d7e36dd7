package main

import (
	"inventory-service/internal/handler"
	"inventory-service/internal/middleware"
	"inventory-service/internal/tenant"
	"inventory-service/pkg/config"
	"inventory-service/pkg/database"
	"inventory-service/pkg/jwtutil"
	"inventory-service/pkg/logger"
	"inventory-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting inventory service...", zap.String("environment", cfg.Server.Env))

	// Initialize Prometheus metrics first: later init steps already report
	// into the gauges
	prometheus.InitMetrics(cfg)
	log.Info("Prometheus metrics initialized")

	// Initialize store connection management
	database.Initialize(cfg)
	log.Info("Store connection manager initialized")

	// Initialize tenant directory
	tenant.Initialize(cfg)
	prometheus.UpdateActiveTenants(len(tenant.GetDirectory().List()))
	log.Info("Tenant directory loaded", zap.String("file", cfg.Tenant.DirectoryFile))

	// Initialize JWT utility
	jwtutil.Initialize(&cfg.JWT)
	log.Info("JWT utility initialized")

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	// Authentication routes - these don't belong under /api since they're for getting access to the API
	auth := e.Group("/auth")
	auth.POST("/login", handler.Login)

	// Tenant administration - protected by the shared admin secret, not user tokens
	tenants := e.Group("/tenants")
	tenants.Use(middleware.TenantAdminMiddleware(cfg.Tenant.AdminSecret))
	tenants.GET("", handler.ListTenants)
	tenants.POST("", handler.CreateTenant)
	tenants.DELETE("/:code", handler.DeleteTenant)
	tenants.POST("/:code/reset", handler.ResetTenant)

	// API routes - all require authentication and bind the caller's store
	api := e.Group("/api")
	api.Use(middleware.AuthMiddleware)

	api.POST("/auth/logout", handler.Logout)

	// Profile
	profile := api.Group("/profile")
	profile.GET("", handler.GetProfile)
	profile.PATCH("", handler.UpdateProfile)
	profile.POST("/change-password", handler.ChangePassword)

	// Dashboard
	api.GET("/dashboard", handler.Dashboard)

	// Products - mutations are admin only
	products := api.Group("/products")
	products.GET("", handler.ListProducts)
	products.GET("/:id", handler.GetProduct)
	products.POST("", handler.CreateProduct, middleware.RequireAdmin)
	products.PUT("/:id", handler.UpdateProduct, middleware.RequireAdmin)
	products.DELETE("/:id", handler.DeleteProduct, middleware.RequireAdmin)

	// Categories - mutations are admin only
	categories := api.Group("/categories")
	categories.GET("", handler.ListCategories)
	categories.POST("", handler.CreateCategory, middleware.RequireAdmin)
	categories.PUT("/:id", handler.UpdateCategory, middleware.RequireAdmin)
	categories.DELETE("/:id", handler.DeleteCategory, middleware.RequireAdmin)

	// Providers - mutations are admin only
	providers := api.Group("/providers")
	providers.GET("", handler.ListProviders)
	providers.GET("/:id", handler.GetProvider)
	providers.POST("", handler.CreateProvider, middleware.RequireAdmin)
	providers.PUT("/:id", handler.UpdateProvider, middleware.RequireAdmin)
	providers.DELETE("/:id", handler.DeleteProvider, middleware.RequireAdmin)

	// Stock movements - any authenticated user can record them
	movements := api.Group("/movements")
	movements.GET("", handler.ListMovements)
	movements.POST("", handler.CreateMovement)

	// User management - admin only
	users := api.Group("/users")
	users.Use(middleware.RequireAdmin)
	users.GET("", handler.ListUsers)
	users.POST("", handler.CreateUser)
	users.PUT("/:id", handler.UpdateUser)
	users.DELETE("/:id", handler.DeleteUser)

	// Audit trail - admin only
	api.GET("/logs", handler.ListLogs, middleware.RequireAdmin)

	// Reports
	reports := api.Group("/reports")
	reports.GET("/low-stock", handler.LowStockReport)
	reports.GET("/movements", handler.MovementReport)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}

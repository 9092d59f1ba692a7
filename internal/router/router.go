package router

import (
	"shopledger_backend/internal/cache"
	"shopledger_backend/internal/database"
	"shopledger_backend/internal/handlers"
	"shopledger_backend/internal/middleware"
	"shopledger_backend/internal/repositories"
	"shopledger_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// Setup initializes the routing for the application. All tenant-scoped
// routes sit behind AuthMiddleware; the tenant key in the JWT decides which
// shop store every request touches.
func Setup(engine *gin.Engine, dir *database.TenantDirectory, snapshots cache.SnapshotCache) {
	// Initialize Repositories
	authRepo := repositories.NewAuthRepository()
	productRepo := repositories.NewProductRepository()
	supplierRepo := repositories.NewSupplierRepository()
	customerRepo := repositories.NewCustomerRepository()
	inventoryRepo := repositories.NewInventoryRepository()
	transactionRepo := repositories.NewTransactionRepository()
	analyticsRepo := repositories.NewAnalyticsRepository()

	// Initialize Services
	authService := services.NewAuthService(authRepo, dir)
	productService := services.NewProductService(productRepo, dir)
	supplierService := services.NewSupplierService(supplierRepo, productRepo, dir)
	customerService := services.NewCustomerService(customerRepo, dir)
	inventoryService := services.NewInventoryService(inventoryRepo, productRepo, dir)
	transactionService := services.NewTransactionService(transactionRepo, customerRepo, supplierRepo, dir)
	analyticsService := services.NewAnalyticsService(analyticsRepo, dir, snapshots)

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(productService)
	supplierHandler := handlers.NewSupplierHandler(supplierService)
	customerHandler := handlers.NewCustomerHandler(customerService)
	inventoryHandler := handlers.NewInventoryHandler(inventoryService, analyticsService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, analyticsService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)

	apiV1 := engine.Group("/api/v1")

	// Public authentication routes
	SetupPublicAuthRoutes(apiV1.Group("/auth"), authHandler)

	// Authenticated, tenant-scoped routes
	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware())
	{
		SetupAuthenticatedAuthRoutes(authenticated.Group("/auth"), authHandler)
		SetupProductRoutes(authenticated, productHandler, supplierHandler, inventoryHandler)
		SetupSupplierRoutes(authenticated, supplierHandler)
		SetupCustomerRoutes(authenticated, customerHandler)
		SetupInventoryRoutes(authenticated, inventoryHandler)
		SetupTransactionRoutes(authenticated, transactionHandler)
		SetupAnalyticsRoutes(authenticated, analyticsHandler)
	}
}

// SetupPublicAuthRoutes registers registration and login, which run before
// any token exists.
func SetupPublicAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.POST("/register", authHandler.RegisterShop)
	group.POST("/login", authHandler.Login)
}

// SetupAuthenticatedAuthRoutes registers routes that need a valid token.
func SetupAuthenticatedAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.GET("/me", authHandler.GetProfile)
}

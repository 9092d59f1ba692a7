package router

import (
	"shopledger_backend/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupProductRoutes sets up the product catalog routes, plus the
// product-scoped supplier and stock lookups.
func SetupProductRoutes(
	authenticatedGroup *gin.RouterGroup,
	productHandler *handlers.ProductHandler,
	supplierHandler *handlers.SupplierHandler,
	inventoryHandler *handlers.InventoryHandler,
) {
	productRoutes := authenticatedGroup.Group("/products")
	{
		productRoutes.POST("", productHandler.CreateProduct)
		productRoutes.GET("", productHandler.GetProducts)
		productRoutes.GET("/barcode/:barcode", productHandler.GetProductByBarcode)
		productRoutes.GET("/:id", productHandler.GetProductByID)
		productRoutes.PUT("/:id", productHandler.UpdateProduct)
		productRoutes.DELETE("/:id", productHandler.DeleteProduct)
		productRoutes.GET("/:id/suppliers", supplierHandler.GetLinkedSuppliers)
		productRoutes.GET("/:id/stock", inventoryHandler.GetStockLevel)
	}
}

// SetupSupplierRoutes sets up the supplier catalog and link registry routes.
func SetupSupplierRoutes(authenticatedGroup *gin.RouterGroup, supplierHandler *handlers.SupplierHandler) {
	supplierRoutes := authenticatedGroup.Group("/suppliers")
	{
		supplierRoutes.POST("", supplierHandler.CreateSupplier)
		supplierRoutes.GET("", supplierHandler.GetSuppliers)
		supplierRoutes.GET("/:id", supplierHandler.GetSupplierByID)
		supplierRoutes.PUT("/:id", supplierHandler.UpdateSupplier)
		supplierRoutes.DELETE("/:id", supplierHandler.DeleteSupplier)
		supplierRoutes.GET("/:id/products", supplierHandler.GetLinkedProducts)
		supplierRoutes.POST("/:id/products/:product_id", supplierHandler.LinkProduct)
		supplierRoutes.PUT("/:id/products/:product_id/pricing", supplierHandler.UpdatePricing)
		supplierRoutes.DELETE("/:id/products/:product_id", supplierHandler.UnlinkProduct)
	}
}

// SetupCustomerRoutes sets up the customer routes.
func SetupCustomerRoutes(authenticatedGroup *gin.RouterGroup, customerHandler *handlers.CustomerHandler) {
	customerRoutes := authenticatedGroup.Group("/customers")
	{
		customerRoutes.POST("", customerHandler.CreateCustomer)
		customerRoutes.GET("", customerHandler.GetCustomers)
		customerRoutes.GET("/:id", customerHandler.GetCustomerByID)
		customerRoutes.PUT("/:id", customerHandler.UpdateCustomer)
		customerRoutes.DELETE("/:id", customerHandler.DeleteCustomer)
	}
}

// SetupInventoryRoutes sets up the batch and stock movement routes.
func SetupInventoryRoutes(authenticatedGroup *gin.RouterGroup, inventoryHandler *handlers.InventoryHandler) {
	inventoryRoutes := authenticatedGroup.Group("/inventory")
	{
		inventoryRoutes.POST("/batches", inventoryHandler.AddBatch)
		inventoryRoutes.GET("/batches", inventoryHandler.GetBatches)
		inventoryRoutes.POST("/reduce", inventoryHandler.ReduceStock)
		inventoryRoutes.GET("/movements", inventoryHandler.GetMovements)
	}
}

// SetupTransactionRoutes sets up the financial ledger routes.
func SetupTransactionRoutes(authenticatedGroup *gin.RouterGroup, transactionHandler *handlers.TransactionHandler) {
	transactionRoutes := authenticatedGroup.Group("/transactions")
	{
		transactionRoutes.POST("", transactionHandler.CreateTransaction)
		transactionRoutes.GET("", transactionHandler.GetTransactions)
		transactionRoutes.GET("/balance", transactionHandler.GetBalance)
		transactionRoutes.GET("/:id", transactionHandler.GetTransactionByID)
		transactionRoutes.PUT("/:id", transactionHandler.UpdateTransaction)
		transactionRoutes.DELETE("/:id", transactionHandler.DeleteTransaction)
	}
}

// SetupAnalyticsRoutes sets up the analytics routes.
func SetupAnalyticsRoutes(authenticatedGroup *gin.RouterGroup, analyticsHandler *handlers.AnalyticsHandler) {
	analyticsRoutes := authenticatedGroup.Group("/analytics")
	{
		analyticsRoutes.GET("/snapshot", analyticsHandler.GetSnapshot)
		analyticsRoutes.GET("/sales-trends", analyticsHandler.GetSalesTrends)
		analyticsRoutes.GET("/top-products", analyticsHandler.GetTopProducts)
		analyticsRoutes.GET("/turnover", analyticsHandler.GetInventoryTurnover)
		analyticsRoutes.GET("/profit-margin", analyticsHandler.GetProfitMargin)
		analyticsRoutes.GET("/low-stock", analyticsHandler.GetLowStock)
	}
}

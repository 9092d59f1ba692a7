package services

import (
	"testing"

	"shopledger_backend/internal/database"
	"shopledger_backend/internal/models"
	"shopledger_backend/internal/repositories"
)

const testTenant = "tenant-test"

type testEnv struct {
	dir          *database.TenantDirectory
	products     ProductService
	suppliers    SupplierService
	customers    CustomerService
	inventory    InventoryService
	transactions TransactionService
	analytics    AnalyticsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := database.NewTenantDirectory(t.TempDir())

	productRepo := repositories.NewProductRepository()
	supplierRepo := repositories.NewSupplierRepository()
	customerRepo := repositories.NewCustomerRepository()
	inventoryRepo := repositories.NewInventoryRepository()
	transactionRepo := repositories.NewTransactionRepository()
	analyticsRepo := repositories.NewAnalyticsRepository()

	return &testEnv{
		dir:          dir,
		products:     NewProductService(productRepo, dir),
		suppliers:    NewSupplierService(supplierRepo, productRepo, dir),
		customers:    NewCustomerService(customerRepo, dir),
		inventory:    NewInventoryService(inventoryRepo, productRepo, dir),
		transactions: NewTransactionService(transactionRepo, customerRepo, supplierRepo, dir),
		analytics:    NewAnalyticsService(analyticsRepo, dir, nil),
	}
}

func (e *testEnv) createProduct(t *testing.T, name string, price float64) *models.Product {
	t.Helper()
	product, err := e.products.CreateProduct(testTenant, CreateProductRequest{Name: name, Price: price})
	if err != nil {
		t.Fatalf("create product %q failed: %v", name, err)
	}
	return product
}

func (e *testEnv) createSupplier(t *testing.T, name string) *models.Supplier {
	t.Helper()
	supplier, err := e.suppliers.CreateSupplier(testTenant, CreateSupplierRequest{Name: name})
	if err != nil {
		t.Fatalf("create supplier %q failed: %v", name, err)
	}
	return supplier
}

func (e *testEnv) addBatch(t *testing.T, productID int64, purchasePrice, salePrice float64, quantity int) *models.InventoryBatch {
	t.Helper()
	batch, err := e.inventory.AddBatch(testTenant, AddBatchRequest{
		ProductID:     productID,
		PurchasePrice: &purchasePrice,
		SalePrice:     &salePrice,
		Quantity:      &quantity,
	})
	if err != nil {
		t.Fatalf("add batch failed: %v", err)
	}
	return batch
}

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }
func strPtr(s string) *string     { return &s }

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"shopledger_backend/internal/models"
)

func TestProfitMarginFromLedgerAndMovements(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct(t, "Coffee Beans", 10)
	env.addBatch(t, product.ID, 6, 10, 20)

	if _, err := env.inventory.ReduceStock(testTenant, ReduceStockRequest{
		ProductID: product.ID,
		Quantity:  intPtr(10),
	}); err != nil {
		t.Fatalf("reduce stock failed: %v", err)
	}
	createTransaction(t, env, CreateTransactionRequest{
		Type: models.TransactionSale, PaymentStatus: models.PaymentPaid, Amount: floatPtr(100),
	})

	start := time.Now().Add(-24 * time.Hour)
	end := time.Now().Add(24 * time.Hour)
	margin, err := env.analytics.GetProfitMargin(testTenant, start, end)
	if err != nil {
		t.Fatalf("profit margin failed: %v", err)
	}

	if margin.Revenue != 100 {
		t.Errorf("revenue = %v, want 100", margin.Revenue)
	}
	// 10 units drawn from a batch bought at 6 apiece.
	if margin.COGS != 60 {
		t.Errorf("cogs = %v, want 60", margin.COGS)
	}
	if margin.Profit != 40 {
		t.Errorf("profit = %v, want 40", margin.Profit)
	}
	if margin.MarginPercent != 40 {
		t.Errorf("margin percent = %v, want 40", margin.MarginPercent)
	}
}

func TestProfitMarginZeroRevenue(t *testing.T) {
	env := newTestEnv(t)

	start := time.Now().Add(-24 * time.Hour)
	end := time.Now().Add(24 * time.Hour)
	margin, err := env.analytics.GetProfitMargin(testTenant, start, end)
	if err != nil {
		t.Fatalf("profit margin failed: %v", err)
	}
	if margin.MarginPercent != 0 {
		t.Errorf("margin percent = %v, want 0 with no revenue", margin.MarginPercent)
	}

	if _, err := env.analytics.GetProfitMargin(testTenant, end, start); !errors.Is(err, ErrValidation) {
		t.Errorf("inverted range: expected ErrValidation, got %v", err)
	}
}

func TestSnapshotAssemblesAllSections(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct(t, "Green Tea", 5)
	env.addBatch(t, product.ID, 2, 5, 8)
	if _, err := env.inventory.ReduceStock(testTenant, ReduceStockRequest{
		ProductID: product.ID,
		Quantity:  intPtr(5),
	}); err != nil {
		t.Fatalf("reduce stock failed: %v", err)
	}
	createTransaction(t, env, CreateTransactionRequest{
		Type: models.TransactionSale, PaymentStatus: models.PaymentPaid, Amount: floatPtr(25),
	})
	createTransaction(t, env, CreateTransactionRequest{
		Type: models.TransactionSale, PaymentStatus: models.PaymentOwed, Amount: floatPtr(10),
	})

	snapshot := env.analytics.GetSnapshot(context.Background(), testTenant, 7, "Teahouse")

	if snapshot.UserID != 7 || snapshot.ShopName != "Teahouse" {
		t.Errorf("snapshot identity = (%d, %q), want (7, Teahouse)", snapshot.UserID, snapshot.ShopName)
	}
	if snapshot.GeneratedAt.IsZero() {
		t.Error("expected a generation timestamp on a successful snapshot")
	}
	if len(snapshot.SalesTrends) == 0 {
		t.Error("expected at least one sales trend bucket")
	}
	if len(snapshot.TopProducts) != 1 || snapshot.TopProducts[0].QuantitySold != 5 {
		t.Errorf("top products = %+v, want one entry with 5 units sold", snapshot.TopProducts)
	}
	// 3 units remain on hand, under the default threshold of 5.
	if len(snapshot.LowStock) != 1 || snapshot.LowStock[0].Quantity != 3 {
		t.Errorf("low stock = %+v, want one alert with quantity 3", snapshot.LowStock)
	}
	if snapshot.Payments.PaidTotal != 25 || snapshot.Payments.OwedTotal != 10 {
		t.Errorf("payments = %+v, want paid 25 owed 10", snapshot.Payments)
	}
	if snapshot.Valuation.TotalValue != 6 { // 3 on hand at purchase price 2
		t.Errorf("valuation total = %v, want 6", snapshot.Valuation.TotalValue)
	}
}

func TestSnapshotFallsBackToDefaultOnFailure(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct(t, "Apples", 1)
	env.addBatch(t, product.ID, 0.5, 1, 10)

	// Break the ledger schema in a way provisioning does not repair, so
	// every aggregate touching transactions fails.
	db, err := env.dir.Resolve(testTenant)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	_, err = db.Exec(`ALTER TABLE transactions RENAME COLUMN amount TO amount_old`)
	db.Close()
	if err != nil {
		t.Fatalf("altering schema failed: %v", err)
	}

	snapshot := env.analytics.GetSnapshot(context.Background(), testTenant, 3, "Broken Shop")

	want := models.DefaultSnapshot(3, "Broken Shop")
	if snapshot.UserID != want.UserID || snapshot.ShopName != want.ShopName {
		t.Errorf("snapshot identity = (%d, %q), want (%d, %q)",
			snapshot.UserID, snapshot.ShopName, want.UserID, want.ShopName)
	}
	if !snapshot.GeneratedAt.IsZero() {
		t.Error("default snapshot must not carry a generation timestamp")
	}
	if len(snapshot.SalesTrends) != 0 || len(snapshot.TopProducts) != 0 || len(snapshot.LowStock) != 0 {
		t.Errorf("default snapshot must be empty, got %+v", snapshot)
	}
	if snapshot.Margin.Revenue != 0 || snapshot.Payments.PaidCount != 0 {
		t.Errorf("default snapshot must be all-zero, got margin %+v payments %+v",
			snapshot.Margin, snapshot.Payments)
	}
}

func TestSalesTrendsRejectsUnknownPeriod(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.analytics.GetSalesTrends(testTenant, "hourly"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestLowStockHonoursThreshold(t *testing.T) {
	env := newTestEnv(t)
	scarce := env.createProduct(t, "Saffron", 50)
	plenty := env.createProduct(t, "Flour", 1)
	env.addBatch(t, scarce.ID, 30, 50, 2)
	env.addBatch(t, plenty.ID, 0.5, 1, 100)

	alerts, err := env.analytics.GetLowStock(testTenant, 5)
	if err != nil {
		t.Fatalf("low stock failed: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	if alerts[0].ProductID != scarce.ID || alerts[0].Quantity != 2 || alerts[0].Threshold != 5 {
		t.Errorf("alert = %+v, want product %d with quantity 2 under threshold 5", alerts[0], scarce.ID)
	}
}

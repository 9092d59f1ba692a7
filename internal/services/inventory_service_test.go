package services

import (
	"errors"
	"sync"
	"testing"

	"shopledger_backend/internal/models"
)

func TestReduceStockConsumesOldestBatchFirst(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct(t, "Flour", 3.0)

	batch1 := env.addBatch(t, product.ID, 1.0, 3.0, 5)
	batch2 := env.addBatch(t, product.ID, 1.2, 3.0, 5)

	reduced, err := env.inventory.ReduceStock(testTenant, ReduceStockRequest{
		ProductID: product.ID,
		Quantity:  intPtr(7),
	})
	if err != nil {
		t.Fatalf("reduce failed: %v", err)
	}

	if len(reduced) != 2 {
		t.Fatalf("expected 2 batches touched, got %d", len(reduced))
	}
	if reduced[0].BatchID != batch1.ID || reduced[0].Quantity != 5 {
		t.Fatalf("expected oldest batch drained of 5, got batch %d qty %d", reduced[0].BatchID, reduced[0].Quantity)
	}
	if reduced[1].BatchID != batch2.ID || reduced[1].Quantity != 2 {
		t.Fatalf("expected newer batch reduced by 2, got batch %d qty %d", reduced[1].BatchID, reduced[1].Quantity)
	}

	batches, err := env.inventory.GetBatches(testTenant, &product.ID)
	if err != nil {
		t.Fatalf("get batches failed: %v", err)
	}
	for _, b := range batches {
		switch b.ID {
		case batch1.ID:
			if b.Quantity != 0 {
				t.Errorf("oldest batch quantity = %d, want 0", b.Quantity)
			}
		case batch2.ID:
			if b.Quantity != 3 {
				t.Errorf("newer batch quantity = %d, want 3", b.Quantity)
			}
		}
	}

	level, err := env.inventory.GetStockLevel(testTenant, product.ID)
	if err != nil {
		t.Fatalf("stock level failed: %v", err)
	}
	if level != 3 {
		t.Fatalf("stock level = %d, want 3", level)
	}

	outType := models.MovementOut
	movements, err := env.inventory.GetMovements(testTenant, &product.ID, &outType)
	if err != nil {
		t.Fatalf("get movements failed: %v", err)
	}
	if len(movements) != 2 {
		t.Fatalf("expected 2 out movements, got %d", len(movements))
	}
	total := 0
	for _, m := range movements {
		total += m.Quantity
	}
	if total != 7 {
		t.Fatalf("out movements sum to %d, want 7", total)
	}
}

func TestReduceStockInsufficientLeavesStateUnchanged(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct(t, "Sugar", 2.0)
	env.addBatch(t, product.ID, 0.8, 2.0, 5)

	_, err := env.inventory.ReduceStock(testTenant, ReduceStockRequest{
		ProductID: product.ID,
		Quantity:  intPtr(7),
	})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	level, err := env.inventory.GetStockLevel(testTenant, product.ID)
	if err != nil {
		t.Fatalf("stock level failed: %v", err)
	}
	if level != 5 {
		t.Fatalf("stock level changed to %d after failed reduce, want 5", level)
	}

	outType := models.MovementOut
	movements, err := env.inventory.GetMovements(testTenant, &product.ID, &outType)
	if err != nil {
		t.Fatalf("get movements failed: %v", err)
	}
	if len(movements) != 0 {
		t.Fatalf("failed reduce left %d out movements in the audit trail", len(movements))
	}
}

// Concurrent reductions are not coordinated above the store: each request
// runs its own transaction and relies on the database serialising writers.
// The losing request fails (either as a busy/snapshot error or, when the
// transactions happen to run back to back, as insufficient stock); the
// store must never end up oversold and the audit trail must match what
// actually shipped. How callers should react to the busy error is still
// an open question; for now they retry.
func TestReduceStockConcurrentRequestsNeverOversell(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct(t, "Rice", 2.0)
	env.addBatch(t, product.ID, 1.0, 2.0, 10)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := range results {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			_, err := env.inventory.ReduceStock(testTenant, ReduceStockRequest{
				ProductID: product.ID,
				Quantity:  intPtr(6),
			})
			results[slot] = err
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		}
	}
	// 12 units against 10 on hand: both requests can never win.
	if succeeded > 1 {
		t.Fatalf("both concurrent reduces succeeded against insufficient stock")
	}

	level, err := env.inventory.GetStockLevel(testTenant, product.ID)
	if err != nil {
		t.Fatalf("stock level failed: %v", err)
	}
	if want := 10 - 6*succeeded; level != want {
		t.Fatalf("stock level = %d, want %d after %d successful reduce(s)", level, want, succeeded)
	}

	outType := models.MovementOut
	movements, err := env.inventory.GetMovements(testTenant, &product.ID, &outType)
	if err != nil {
		t.Fatalf("get movements failed: %v", err)
	}
	total := 0
	for _, m := range movements {
		total += m.Quantity
	}
	if total != 6*succeeded {
		t.Fatalf("out movements sum to %d, want %d", total, 6*succeeded)
	}
}

func TestReduceStockRejectsNonPositiveQuantity(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct(t, "Salt", 1.0)

	for _, qty := range []int{0, -3} {
		_, err := env.inventory.ReduceStock(testTenant, ReduceStockRequest{
			ProductID: product.ID,
			Quantity:  intPtr(qty),
		})
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("quantity %d: expected ErrValidation, got %v", qty, err)
		}
	}
}

func TestAddBatchWritesInboundMovement(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct(t, "Oil", 5.0)
	batch := env.addBatch(t, product.ID, 2.5, 5.0, 12)

	inType := models.MovementIn
	movements, err := env.inventory.GetMovements(testTenant, &product.ID, &inType)
	if err != nil {
		t.Fatalf("get movements failed: %v", err)
	}
	if len(movements) != 1 {
		t.Fatalf("expected 1 in movement, got %d", len(movements))
	}
	if movements[0].BatchID != batch.ID || movements[0].Quantity != 12 {
		t.Fatalf("in movement = batch %d qty %d, want batch %d qty 12", movements[0].BatchID, movements[0].Quantity, batch.ID)
	}
}

func TestAddBatchUnknownProduct(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.inventory.AddBatch(testTenant, AddBatchRequest{
		ProductID:     999,
		PurchasePrice: floatPtr(1.0),
		SalePrice:     floatPtr(2.0),
		Quantity:      intPtr(3),
	})
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestGetMovementsRejectsUnknownType(t *testing.T) {
	env := newTestEnv(t)

	badType := "Sideways"
	_, err := env.inventory.GetMovements(testTenant, nil, &badType)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

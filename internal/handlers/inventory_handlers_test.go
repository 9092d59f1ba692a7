package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"shopledger_backend/internal/database"
	"shopledger_backend/internal/middleware"
	"shopledger_backend/internal/models"
	"shopledger_backend/internal/repositories"
	"shopledger_backend/internal/services"
)

const handlerTestTenant = "tenant-handlers"

// recordingCache records invalidations so tests can assert cache hygiene.
type recordingCache struct {
	mu          sync.Mutex
	invalidated []string
}

func (r *recordingCache) Get(_ context.Context, _ string) (*models.AnalyticsSnapshot, bool, error) {
	return nil, false, nil
}

func (r *recordingCache) Set(_ context.Context, _ string, _ *models.AnalyticsSnapshot, _ time.Duration) error {
	return nil
}

func (r *recordingCache) Invalidate(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invalidated = append(r.invalidated, key)
	return nil
}

func (r *recordingCache) keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.invalidated...)
}

func newInventoryTestRouter(t *testing.T) (*gin.Engine, services.ProductService, *recordingCache) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := database.NewTenantDirectory(t.TempDir())

	productRepo := repositories.NewProductRepository()
	inventoryRepo := repositories.NewInventoryRepository()
	analyticsRepo := repositories.NewAnalyticsRepository()

	spy := &recordingCache{}
	productService := services.NewProductService(productRepo, dir)
	inventoryService := services.NewInventoryService(inventoryRepo, productRepo, dir)
	analyticsService := services.NewAnalyticsService(analyticsRepo, dir, spy)

	handler := NewInventoryHandler(inventoryService, analyticsService)

	engine := gin.New()
	engine.Use(func(c *gin.Context) { c.Set(middleware.ContextTenantKey, handlerTestTenant) })
	engine.POST("/inventory/batches", handler.AddBatch)
	engine.POST("/inventory/reduce", handler.ReduceStock)
	return engine, productService, spy
}

func postJSON(t *testing.T, engine *gin.Engine, path string, payload map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)
	return w
}

func TestStockMutationsInvalidateSnapshotCache(t *testing.T) {
	engine, products, spy := newInventoryTestRouter(t)

	product, err := products.CreateProduct(handlerTestTenant, services.CreateProductRequest{Name: "Candles", Price: 2})
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	w := postJSON(t, engine, "/inventory/batches", map[string]interface{}{
		"product_id": product.ID, "purchase_price": 1.0, "sale_price": 2.0, "quantity": 10,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("add batch status = %d, want 201: %s", w.Code, w.Body.String())
	}
	keys := spy.keys()
	if len(keys) != 1 {
		t.Fatalf("invalidations after add batch = %d, want 1", len(keys))
	}
	if !strings.Contains(keys[0], handlerTestTenant) {
		t.Errorf("invalidated key %q does not scope to the tenant", keys[0])
	}

	w = postJSON(t, engine, "/inventory/reduce", map[string]interface{}{
		"product_id": product.ID, "quantity": 4,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("reduce status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if got := len(spy.keys()); got != 2 {
		t.Fatalf("invalidations after reduce = %d, want 2", got)
	}

	// A rejected mutation changes nothing, so the cache stays warm.
	w = postJSON(t, engine, "/inventory/reduce", map[string]interface{}{
		"product_id": product.ID, "quantity": 100,
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("oversized reduce status = %d, want 409: %s", w.Code, w.Body.String())
	}
	if got := len(spy.keys()); got != 2 {
		t.Fatalf("invalidations after failed reduce = %d, want 2", got)
	}
}

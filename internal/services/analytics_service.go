package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"shopledger_backend/internal/cache"
	"shopledger_backend/internal/database"
	"shopledger_backend/internal/models"
	"shopledger_backend/internal/repositories"
	"shopledger_backend/pkg/utils"
)

const (
	defaultTopProductLimit   = 10
	defaultTurnoverWindow    = 30
	defaultLowStockThreshold = 5
	snapshotCacheTTL         = 5 * time.Minute
)

// --- AnalyticsService Interface ---
type AnalyticsService interface {
	// GetSnapshot never fails: any error anywhere in the fan-out yields the
	// all-zero default snapshot instead, so dashboards always render.
	GetSnapshot(ctx context.Context, tenantKey string, userID int64, shopName string) *models.AnalyticsSnapshot
	InvalidateSnapshot(ctx context.Context, tenantKey string)

	GetSalesTrends(tenantKey string, period string) ([]models.SalesTrendPoint, error)
	GetTopProducts(tenantKey string, limit int) ([]models.TopProduct, error)
	GetInventoryTurnover(tenantKey string, windowDays int) ([]models.ProductTurnover, error)
	GetProfitMargin(tenantKey string, start, end time.Time) (*models.ProfitMargin, error)
	GetLowStock(tenantKey string, threshold int) ([]models.LowStockAlert, error)
}

type analyticsService struct {
	analyticsRepo repositories.AnalyticsRepository
	dir           *database.TenantDirectory
	snapshots     cache.SnapshotCache
}

// NewAnalyticsService creates a new instance of AnalyticsService.
func NewAnalyticsService(
	ar repositories.AnalyticsRepository,
	dir *database.TenantDirectory,
	snapshots cache.SnapshotCache,
) AnalyticsService {
	if snapshots == nil {
		snapshots = cache.NoopSnapshotCache{}
	}
	return &analyticsService{
		analyticsRepo: ar,
		dir:           dir,
		snapshots:     snapshots,
	}
}

func snapshotCacheKey(tenantKey string) string {
	return "analytics:snapshot:" + tenantKey
}

// GetSnapshot fans out all aggregate queries concurrently and assembles the
// result. Every failure path collapses into models.DefaultSnapshot; callers
// treat an empty shop and a broken one identically.
func (s *analyticsService) GetSnapshot(ctx context.Context, tenantKey string, userID int64, shopName string) *models.AnalyticsSnapshot {
	if cached, hit, err := s.snapshots.Get(ctx, snapshotCacheKey(tenantKey)); err == nil && hit {
		return cached
	}

	db, err := s.dir.Resolve(tenantKey)
	if err != nil {
		utils.LogError(err, "analytics snapshot: resolving tenant store")
		return models.DefaultSnapshot(userID, shopName)
	}
	defer db.Close()

	snapshot, err := s.computeSnapshot(db)
	if err != nil {
		utils.LogError(err, "analytics snapshot: fan-out failed, serving default")
		return models.DefaultSnapshot(userID, shopName)
	}
	snapshot.UserID = userID
	snapshot.ShopName = shopName
	snapshot.GeneratedAt = time.Now()

	if err := s.snapshots.Set(ctx, snapshotCacheKey(tenantKey), snapshot, snapshotCacheTTL); err != nil {
		utils.LogError(err, "analytics snapshot: caching result")
	}
	return snapshot
}

// InvalidateSnapshot drops the cached snapshot after a ledger mutation.
func (s *analyticsService) InvalidateSnapshot(ctx context.Context, tenantKey string) {
	if err := s.snapshots.Invalidate(ctx, snapshotCacheKey(tenantKey)); err != nil {
		utils.LogError(err, "analytics snapshot: invalidating cache")
	}
}

// computeSnapshot runs the nine aggregates in parallel against one store
// handle and returns the first error any of them hit.
func (s *analyticsService) computeSnapshot(db *sql.DB) (*models.AnalyticsSnapshot, error) {
	snapshot := &models.AnalyticsSnapshot{}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	record := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	run := func(fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			record(fn())
		}()
	}

	run(func() error {
		trends, err := s.analyticsRepo.SalesTrends(db, "daily")
		snapshot.SalesTrends = trends
		return err
	})
	run(func() error {
		top, err := s.analyticsRepo.TopProducts(db, defaultTopProductLimit)
		snapshot.TopProducts = top
		return err
	})
	run(func() error {
		turnover, err := s.analyticsRepo.InventoryTurnover(db, defaultTurnoverWindow)
		snapshot.Turnover = turnover
		return err
	})
	run(func() error {
		margin, err := s.analyticsRepo.ProfitMargin(db, monthStart, now)
		if margin != nil {
			snapshot.Margin = finishMargin(*margin)
		}
		return err
	})
	run(func() error {
		alerts, err := s.analyticsRepo.LowStock(db, defaultLowStockThreshold)
		snapshot.LowStock = alerts
		return err
	})
	run(func() error {
		values, err := s.analyticsRepo.CustomerLifetimeValue(db)
		snapshot.CustomerValues = values
		return err
	})
	run(func() error {
		stats, err := s.analyticsRepo.SupplierPerformance(db)
		snapshot.SupplierStats = stats
		return err
	})
	run(func() error {
		valuation, err := s.analyticsRepo.InventoryValuation(db)
		if valuation != nil {
			snapshot.Valuation = *valuation
		}
		return err
	})
	run(func() error {
		payments, err := s.analyticsRepo.PaymentAnalysis(db)
		if payments != nil {
			snapshot.Payments = *payments
		}
		return err
	})

	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return snapshot, nil
}

// finishMargin derives profit and the margin percentage from the raw sums.
// Percentage is rounded to two decimal places; zero revenue means zero
// margin rather than a division error.
func finishMargin(margin models.ProfitMargin) models.ProfitMargin {
	revenue := decimal.NewFromFloat(margin.Revenue)
	cogs := decimal.NewFromFloat(margin.COGS)
	profit := revenue.Sub(cogs)

	margin.Profit = profit.InexactFloat64()
	if revenue.IsPositive() {
		margin.MarginPercent = profit.Div(revenue).
			Mul(decimal.NewFromInt(100)).
			Round(2).
			InexactFloat64()
	}
	return margin
}

func (s *analyticsService) GetSalesTrends(tenantKey string, period string) ([]models.SalesTrendPoint, error) {
	switch period {
	case "", "daily", "weekly", "monthly":
	default:
		return nil, fmt.Errorf("%w: period must be daily, weekly or monthly", ErrValidation)
	}

	db, err := s.dir.Resolve(tenantKey)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	trends, err := s.analyticsRepo.SalesTrends(db, period)
	if err != nil {
		return nil, fmt.Errorf("failed to compute sales trends: %w", err)
	}
	return trends, nil
}

func (s *analyticsService) GetTopProducts(tenantKey string, limit int) ([]models.TopProduct, error) {
	if limit <= 0 {
		limit = defaultTopProductLimit
	}

	db, err := s.dir.Resolve(tenantKey)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	top, err := s.analyticsRepo.TopProducts(db, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to compute top products: %w", err)
	}
	return top, nil
}

func (s *analyticsService) GetInventoryTurnover(tenantKey string, windowDays int) ([]models.ProductTurnover, error) {
	if windowDays <= 0 {
		windowDays = defaultTurnoverWindow
	}

	db, err := s.dir.Resolve(tenantKey)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	turnover, err := s.analyticsRepo.InventoryTurnover(db, windowDays)
	if err != nil {
		return nil, fmt.Errorf("failed to compute inventory turnover: %w", err)
	}
	return turnover, nil
}

func (s *analyticsService) GetProfitMargin(tenantKey string, start, end time.Time) (*models.ProfitMargin, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date precedes start date", ErrValidation)
	}

	db, err := s.dir.Resolve(tenantKey)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	margin, err := s.analyticsRepo.ProfitMargin(db, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to compute profit margin: %w", err)
	}
	finished := finishMargin(*margin)
	return &finished, nil
}

func (s *analyticsService) GetLowStock(tenantKey string, threshold int) ([]models.LowStockAlert, error) {
	if threshold <= 0 {
		threshold = defaultLowStockThreshold
	}

	db, err := s.dir.Resolve(tenantKey)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	alerts, err := s.analyticsRepo.LowStock(db, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to compute low stock alerts: %w", err)
	}
	return alerts, nil
}

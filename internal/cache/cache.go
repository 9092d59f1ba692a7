package cache

import (
	"context"
	"time"

	"shopledger_backend/internal/models"
)

// SnapshotCache stores computed analytics snapshots per tenant. Misses and
// cache failures are both reported as a miss so callers just recompute.
type SnapshotCache interface {
	Get(ctx context.Context, key string) (*models.AnalyticsSnapshot, bool, error)
	Set(ctx context.Context, key string, value *models.AnalyticsSnapshot, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// NoopSnapshotCache is the default when no cache backend is configured.
type NoopSnapshotCache struct{}

func (NoopSnapshotCache) Get(_ context.Context, _ string) (*models.AnalyticsSnapshot, bool, error) {
	return nil, false, nil
}

func (NoopSnapshotCache) Set(_ context.Context, _ string, _ *models.AnalyticsSnapshot, _ time.Duration) error {
	return nil
}

func (NoopSnapshotCache) Invalidate(_ context.Context, _ string) error {
	return nil
}

package ports

import (
	"context"
	"time"

	"riderpro/internal/features/analytics/domain"
)

// AnalyticsProvider is the primary port behind the dashboard endpoints.
type AnalyticsProvider interface {
	// Daily returns per-day rollups for a rider (or the whole fleet when
	// riderID is empty) inside [from, to).
	Daily(ctx context.Context, riderID string, from, to time.Time) ([]domain.DailyAggregate, error)
}

// AggregateRepository is the secondary port for analytics rollups.
type AggregateRepository interface {
	// Daily rolls up sessions and shipments per calendar day inside
	// [from, to). An empty riderID aggregates the whole fleet.
	Daily(ctx context.Context, riderID string, from, to time.Time) ([]domain.DailyAggregate, error)
}

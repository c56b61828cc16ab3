package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"riderpro/internal/core/cache"
	"riderpro/internal/core/logger"
	"riderpro/internal/features/analytics/domain"
	"riderpro/internal/features/analytics/ports"

	"go.uber.org/zap"
)

// Aggregator serves dashboard rollups. Results are cached briefly because
// every chart on an admin page asks the same question at once; cache
// failures degrade to a direct query, never to a request failure.
type Aggregator struct {
	repo  ports.AggregateRepository
	cache cache.Cache
	ttl   time.Duration
}

// NewAggregator creates a new Aggregator. A nil cache disables caching.
func NewAggregator(repo ports.AggregateRepository, c cache.Cache, ttl time.Duration) *Aggregator {
	return &Aggregator{
		repo:  repo,
		cache: c,
		ttl:   ttl,
	}
}

// Daily returns per-day rollups for a rider (or the fleet when riderID is
// empty) inside [from, to).
func (a *Aggregator) Daily(ctx context.Context, riderID string, from, to time.Time) ([]domain.DailyAggregate, error) {
	key := fmt.Sprintf("analytics:daily:%s:%d:%d", riderID, from.Unix(), to.Unix())

	if a.cache != nil {
		if data, err := a.cache.Get(ctx, key); err == nil {
			var cached []domain.DailyAggregate
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
		}
	}

	rows, err := a.repo.Daily(ctx, riderID, from, to)
	if err != nil {
		return nil, fmt.Errorf("service: failed to aggregate daily stats: %w", err)
	}
	if rows == nil {
		rows = []domain.DailyAggregate{}
	}

	if a.cache != nil {
		data, err := json.Marshal(rows)
		if err == nil {
			if err := a.cache.Set(ctx, key, data, a.ttl); err != nil {
				logger.Named("analytics").Debug("aggregate cache write failed", zap.Error(err))
			}
		}
	}
	return rows, nil
}

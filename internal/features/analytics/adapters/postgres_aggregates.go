package adapters

import (
	"context"
	"fmt"
	"time"

	"riderpro/internal/core/db"
	"riderpro/internal/features/analytics/domain"
)

// PostgresAggregateRepository rolls sessions and checkpoint samples up into
// per-day fleet stats. Fuel figures come from the efficiency and price
// snapshots frozen onto each session when it started, so historical days
// keep the prices that applied at the time.
type PostgresAggregateRepository struct {
	db db.Querier
}

// NewPostgresAggregateRepository creates a new PostgresAggregateRepository.
func NewPostgresAggregateRepository(q db.Querier) *PostgresAggregateRepository {
	return &PostgresAggregateRepository{db: q}
}

// Daily returns one row per calendar day (UTC) with a session started inside
// [from, to). An empty riderID aggregates the whole fleet.
func (r *PostgresAggregateRepository) Daily(ctx context.Context, riderID string, from, to time.Time) ([]domain.DailyAggregate, error) {
	rows, err := r.db.Query(ctx, `
		WITH daily_sessions AS (
			SELECT
				to_char(started_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day,
				COUNT(*)                          AS session_count,
				SUM(total_distance_m) / 1000.0    AS distance_km,
				SUM(active_seconds)               AS time_sec,
				SUM(CASE WHEN fuel_efficiency_kmpl > 0
					THEN (total_distance_m / 1000.0) / fuel_efficiency_kmpl
					ELSE 0 END)                   AS fuel_l,
				SUM(CASE WHEN fuel_efficiency_kmpl > 0
					THEN (total_distance_m / 1000.0) / fuel_efficiency_kmpl * fuel_price_per_litre
					ELSE 0 END)                   AS fuel_cost
			FROM route_sessions
			WHERE started_at >= $1 AND started_at < $2
			  AND ($3 = '' OR rider_id = $3)
			GROUP BY day
		),
		daily_shipments AS (
			SELECT date_bucket AS day,
				COUNT(DISTINCT shipment_id) AS shipments
			FROM tracking_samples
			WHERE event_type = 'checkpoint' AND shipment_id <> ''
			  AND recorded_at >= $1 AND recorded_at < $2
			  AND ($3 = '' OR rider_id = $3)
			GROUP BY day
		)
		SELECT s.day,
			COALESCE(s.distance_km, 0),
			COALESCE(s.time_sec, 0),
			COALESCE(s.fuel_l, 0),
			COALESCE(s.fuel_cost, 0),
			COALESCE(sh.shipments, 0),
			s.session_count
		FROM daily_sessions s
		LEFT JOIN daily_shipments sh ON sh.day = s.day
		ORDER BY s.day ASC
	`, from, to, riderID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to aggregate daily stats: %w", err)
	}
	defer rows.Close()

	var aggs []domain.DailyAggregate
	for rows.Next() {
		var a domain.DailyAggregate
		if err := rows.Scan(
			&a.Date, &a.TotalDistanceKm, &a.TotalTimeSec,
			&a.FuelConsumedL, &a.FuelCost,
			&a.ShipmentsCompleted, &a.SessionCount,
		); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan daily aggregate: %w", err)
		}
		aggs = append(aggs, a)
	}
	return aggs, rows.Err()
}

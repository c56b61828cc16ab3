package adapters

import (
	"context"
	"errors"
	"fmt"

	"riderpro/internal/core/db"
	"riderpro/internal/features/tracking/domain"

	"github.com/jackc/pgx/v5"
	"time"
)

// SessionColumns is the column list shared by every session query so scans
// stay in one place.
const SessionColumns = `id, rider_id, external_ref, status, started_at, ended_at,
	start_lat, start_lng, end_lat, end_lng,
	total_distance_m, active_seconds, avg_speed_kmh,
	last_sample_at, last_lat, last_lng, last_resumed_at,
	fuel_efficiency_kmpl, fuel_price_per_litre,
	battery_start, battery_end, battery_min, battery_drain_rate,
	charging_events, low_battery_warnings, last_charging,
	synced, sync_attempts, last_sync_at, sync_error`

// PostgresSessionRepository implements ports.SessionRepository on Postgres.
type PostgresSessionRepository struct {
	db db.Querier
}

// NewPostgresSessionRepository creates a new PostgresSessionRepository.
func NewPostgresSessionRepository(q db.Querier) *PostgresSessionRepository {
	return &PostgresSessionRepository{db: q}
}

// Create persists a new session row.
func (r *PostgresSessionRepository) Create(ctx context.Context, s *domain.RouteSession) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO route_sessions (`+SessionColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27,$28,$29,$30)
	`, sessionArgs(s)...)
	if err != nil {
		return fmt.Errorf("postgres: failed to insert session %s: %w", s.ID, err)
	}
	return nil
}

// GetByID returns a session or domain.ErrSessionNotFound.
func (r *PostgresSessionRepository) GetByID(ctx context.Context, id string) (*domain.RouteSession, error) {
	row := r.db.QueryRow(ctx, `SELECT `+SessionColumns+` FROM route_sessions WHERE id=$1`, id)
	s, err := ScanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to load session %s: %w", id, err)
	}
	return s, nil
}

// FindOpenByRider returns the rider's open session, or (nil, nil) when none.
func (r *PostgresSessionRepository) FindOpenByRider(ctx context.Context, riderID string) (*domain.RouteSession, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+SessionColumns+` FROM route_sessions
		WHERE rider_id=$1 AND status IN ('active','paused')
		ORDER BY started_at DESC LIMIT 1
	`, riderID)
	s, err := ScanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to find open session for rider %s: %w", riderID, err)
	}
	return s, nil
}

// Update persists mutated session state and aggregates.
func (r *PostgresSessionRepository) Update(ctx context.Context, s *domain.RouteSession) error {
	args := sessionArgs(s)
	_, err := r.db.Exec(ctx, `
		UPDATE route_sessions SET
			rider_id=$2, external_ref=$3, status=$4, started_at=$5, ended_at=$6,
			start_lat=$7, start_lng=$8, end_lat=$9, end_lng=$10,
			total_distance_m=$11, active_seconds=$12, avg_speed_kmh=$13,
			last_sample_at=$14, last_lat=$15, last_lng=$16, last_resumed_at=$17,
			fuel_efficiency_kmpl=$18, fuel_price_per_litre=$19,
			battery_start=$20, battery_end=$21, battery_min=$22, battery_drain_rate=$23,
			charging_events=$24, low_battery_warnings=$25, last_charging=$26,
			synced=$27, sync_attempts=$28, last_sync_at=$29, sync_error=$30
		WHERE id=$1
	`, args...)
	if err != nil {
		return fmt.Errorf("postgres: failed to update session %s: %w", s.ID, err)
	}
	return nil
}

// ListByRider returns sessions started inside [from, to), newest first.
// An empty riderID lists every rider.
func (r *PostgresSessionRepository) ListByRider(ctx context.Context, riderID string, from, to time.Time) ([]domain.RouteSession, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+SessionColumns+` FROM route_sessions
		WHERE ($1 = '' OR rider_id = $1) AND started_at >= $2 AND started_at < $3
		ORDER BY started_at DESC
	`, riderID, from, to)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.RouteSession
	for rows.Next() {
		s, err := ScanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan session: %w", err)
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

// sessionArgs flattens a session into the positional argument list matching
// SessionColumns.
func sessionArgs(s *domain.RouteSession) []any {
	var endLat, endLng *float64
	if s.EndPoint != nil {
		endLat, endLng = &s.EndPoint.Lat, &s.EndPoint.Lng
	}
	var lastLat, lastLng *float64
	if s.LastPoint != nil {
		lastLat, lastLng = &s.LastPoint.Lat, &s.LastPoint.Lng
	}
	return []any{
		s.ID, s.RiderID, s.ExternalRef, string(s.Status), s.StartedAt, s.EndedAt,
		s.StartPoint.Lat, s.StartPoint.Lng, endLat, endLng,
		s.TotalDistanceM, s.ActiveSeconds, s.AvgSpeedKmh,
		s.LastSampleAt, lastLat, lastLng, s.LastResumedAt,
		s.FuelEfficiencyKmpl, s.FuelPricePerLitre,
		s.Battery.StartLevel, s.Battery.EndLevel, s.Battery.MinLevel, s.Battery.DrainRatePerHour,
		s.Battery.ChargingEvents, s.Battery.LowBatteryWarnings, s.Battery.LastCharging,
		s.Sync.Synced, s.Sync.Attempts, s.Sync.LastAttemptAt, s.Sync.LastError,
	}
}

// ScanSession hydrates one session row.
func ScanSession(row pgx.Row) (*domain.RouteSession, error) {
	var (
		s                domain.RouteSession
		status           string
		endLat, endLng   *float64
		lastLat, lastLng *float64
	)
	err := row.Scan(
		&s.ID, &s.RiderID, &s.ExternalRef, &status, &s.StartedAt, &s.EndedAt,
		&s.StartPoint.Lat, &s.StartPoint.Lng, &endLat, &endLng,
		&s.TotalDistanceM, &s.ActiveSeconds, &s.AvgSpeedKmh,
		&s.LastSampleAt, &lastLat, &lastLng, &s.LastResumedAt,
		&s.FuelEfficiencyKmpl, &s.FuelPricePerLitre,
		&s.Battery.StartLevel, &s.Battery.EndLevel, &s.Battery.MinLevel, &s.Battery.DrainRatePerHour,
		&s.Battery.ChargingEvents, &s.Battery.LowBatteryWarnings, &s.Battery.LastCharging,
		&s.Sync.Synced, &s.Sync.Attempts, &s.Sync.LastAttemptAt, &s.Sync.LastError,
	)
	if err != nil {
		return nil, err
	}

	parsed, perr := domain.ParseSessionStatus(status)
	if perr != nil {
		return nil, perr
	}
	s.Status = parsed

	if endLat != nil && endLng != nil {
		s.EndPoint = &domain.Point{Lat: *endLat, Lng: *endLng}
	}
	if lastLat != nil && lastLng != nil {
		s.LastPoint = &domain.Point{Lat: *lastLat, Lng: *lastLng}
	}
	return &s, nil
}

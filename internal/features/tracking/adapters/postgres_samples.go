package adapters

import (
	"context"
	"errors"
	"fmt"

	"riderpro/internal/core/db"
	"riderpro/internal/features/tracking/domain"

	"github.com/jackc/pgx/v5"
)

const SampleColumns = `id, session_id, rider_id, lat, lng, accuracy_m, speed_kmh,
	recorded_at, received_at, event_type, shipment_id, date_bucket,
	fuel_efficiency_kmpl, fuel_price_per_litre,
	battery_level, charging, network_type, signal_strength,
	synced, sync_attempts, last_sync_at, sync_error`

// PostgresSampleRepository implements ports.SampleRepository on Postgres.
// Samples are append-only; the unique tuple constraint absorbs client
// retries without duplicate rows.
type PostgresSampleRepository struct {
	db db.Querier
}

// NewPostgresSampleRepository creates a new PostgresSampleRepository.
func NewPostgresSampleRepository(q db.Querier) *PostgresSampleRepository {
	return &PostgresSampleRepository{db: q}
}

// Insert appends a sample. Returns false when an identical
// (session_id, recorded_at, lat, lng) tuple is already stored.
func (r *PostgresSampleRepository) Insert(ctx context.Context, s *domain.TrackingSample) (bool, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO tracking_samples (
			session_id, rider_id, lat, lng, accuracy_m, speed_kmh,
			recorded_at, received_at, event_type, shipment_id, date_bucket,
			fuel_efficiency_kmpl, fuel_price_per_litre,
			battery_level, charging, network_type, signal_strength, synced
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,false)
		ON CONFLICT (session_id, recorded_at, lat, lng) DO NOTHING
		RETURNING id
	`,
		s.SessionID, s.RiderID, s.Lat, s.Lng, s.AccuracyM, s.SpeedKmh,
		s.RecordedAt, s.ReceivedAt, string(s.EventType), s.ShipmentID, s.DateBucket,
		s.FuelEfficiencyKmpl, s.FuelPricePerLitre,
		s.BatteryLevel, s.Charging, s.NetworkType, s.SignalStrength,
	)

	err := row.Scan(&s.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		// Conflict: the tuple is already stored, treat as idempotent success.
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("postgres: failed to insert sample for session %s: %w", s.SessionID, err)
	}
	return true, nil
}

// ListBySession returns every sample of a session in chronological order.
func (r *PostgresSampleRepository) ListBySession(ctx context.Context, sessionID string) ([]domain.TrackingSample, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+SampleColumns+` FROM tracking_samples
		WHERE session_id=$1
		ORDER BY recorded_at ASC, id ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list samples for session %s: %w", sessionID, err)
	}
	defer rows.Close()

	var samples []domain.TrackingSample
	for rows.Next() {
		s, err := ScanSample(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan sample: %w", err)
		}
		samples = append(samples, *s)
	}
	return samples, rows.Err()
}

func ScanSample(row pgx.Row) (*domain.TrackingSample, error) {
	var (
		s         domain.TrackingSample
		eventType string
	)
	err := row.Scan(
		&s.ID, &s.SessionID, &s.RiderID, &s.Lat, &s.Lng, &s.AccuracyM, &s.SpeedKmh,
		&s.RecordedAt, &s.ReceivedAt, &eventType, &s.ShipmentID, &s.DateBucket,
		&s.FuelEfficiencyKmpl, &s.FuelPricePerLitre,
		&s.BatteryLevel, &s.Charging, &s.NetworkType, &s.SignalStrength,
		&s.Sync.Synced, &s.Sync.Attempts, &s.Sync.LastAttemptAt, &s.Sync.LastError,
	)
	if err != nil {
		return nil, err
	}
	s.EventType = domain.EventType(eventType)
	return &s, nil
}

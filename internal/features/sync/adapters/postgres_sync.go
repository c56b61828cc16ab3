package adapters

import (
	"context"
	"fmt"
	"time"

	"riderpro/internal/core/db"
	"riderpro/internal/features/sync/domain"
	trackingadapters "riderpro/internal/features/tracking/adapters"
	tracking "riderpro/internal/features/tracking/domain"
)

// PostgresSyncRepository implements ports.SyncRepository over the session
// and sample tables. The synced/attempt columns written here are the
// durable pending-sync markers ingestion leaves behind, so a crash between
// "stored" and "synced" loses no work.
type PostgresSyncRepository struct {
	db db.Querier
}

// NewPostgresSyncRepository creates a new PostgresSyncRepository.
func NewPostgresSyncRepository(q db.Querier) *PostgresSyncRepository {
	return &PostgresSyncRepository{db: q}
}

// PendingSessions returns completed, unsynced sessions under the attempt
// cap, oldest attempt first so starved records drain eventually.
func (r *PostgresSyncRepository) PendingSessions(ctx context.Context, limit, maxAttempts int) ([]tracking.RouteSession, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+trackingadapters.SessionColumns+` FROM route_sessions
		WHERE status='completed' AND synced=false AND sync_attempts < $1
		ORDER BY last_sync_at ASC NULLS FIRST
		LIMIT $2
	`, maxAttempts, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to load pending sessions: %w", err)
	}
	defer rows.Close()

	var sessions []tracking.RouteSession
	for rows.Next() {
		s, err := trackingadapters.ScanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan pending session: %w", err)
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

// PendingSamples returns unsynced samples under the attempt cap.
func (r *PostgresSyncRepository) PendingSamples(ctx context.Context, limit, maxAttempts int) ([]tracking.TrackingSample, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+trackingadapters.SampleColumns+` FROM tracking_samples
		WHERE synced=false AND sync_attempts < $1
		ORDER BY last_sync_at ASC NULLS FIRST, id ASC
		LIMIT $2
	`, maxAttempts, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to load pending samples: %w", err)
	}
	defer rows.Close()

	var samples []tracking.TrackingSample
	for rows.Next() {
		s, err := trackingadapters.ScanSample(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan pending sample: %w", err)
		}
		samples = append(samples, *s)
	}
	return samples, rows.Err()
}

// MarkSessionSynced records a confirmed session push. Success is terminal:
// the error clears and retries stop.
func (r *PostgresSyncRepository) MarkSessionSynced(ctx context.Context, id, externalRef string, at time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE route_sessions
		SET synced=true, sync_error='', last_sync_at=$2,
		    external_ref = CASE WHEN $3 <> '' THEN $3 ELSE external_ref END
		WHERE id=$1
	`, id, at, externalRef)
	if err != nil {
		return fmt.Errorf("postgres: failed to mark session %s synced: %w", id, err)
	}
	return nil
}

// MarkSessionFailed increments the attempt counter and stores the error.
func (r *PostgresSyncRepository) MarkSessionFailed(ctx context.Context, id string, at time.Time, reason string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE route_sessions
		SET sync_attempts = sync_attempts + 1, sync_error=$3, last_sync_at=$2
		WHERE id=$1 AND synced=false
	`, id, at, reason)
	if err != nil {
		return fmt.Errorf("postgres: failed to mark session %s failed: %w", id, err)
	}
	return nil
}

// MarkSampleSynced records a confirmed sample push.
func (r *PostgresSyncRepository) MarkSampleSynced(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE tracking_samples
		SET synced=true, sync_error='', last_sync_at=$2
		WHERE id=$1
	`, id, at)
	if err != nil {
		return fmt.Errorf("postgres: failed to mark sample %d synced: %w", id, err)
	}
	return nil
}

// MarkSampleFailed increments the attempt counter and stores the error.
func (r *PostgresSyncRepository) MarkSampleFailed(ctx context.Context, id int64, at time.Time, reason string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE tracking_samples
		SET sync_attempts = sync_attempts + 1, sync_error=$3, last_sync_at=$2
		WHERE id=$1 AND synced=false
	`, id, at, reason)
	if err != nil {
		return fmt.Errorf("postgres: failed to mark sample %d failed: %w", id, err)
	}
	return nil
}

// Stats counts pending, synced and abandoned records in one round trip each.
func (r *PostgresSyncRepository) Stats(ctx context.Context, maxAttempts int) (*domain.Stats, error) {
	var stats domain.Stats

	row := r.db.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE synced=false AND sync_attempts < $1 AND status='completed'),
			COUNT(*) FILTER (WHERE synced=true),
			COUNT(*) FILTER (WHERE synced=false AND sync_attempts >= $1)
		FROM route_sessions
	`, maxAttempts)
	if err := row.Scan(&stats.PendingSessions, &stats.SyncedSessions, &stats.AbandonedSessions); err != nil {
		return nil, fmt.Errorf("postgres: failed to count session sync stats: %w", err)
	}

	row = r.db.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE synced=false AND sync_attempts < $1),
			COUNT(*) FILTER (WHERE synced=true),
			COUNT(*) FILTER (WHERE synced=false AND sync_attempts >= $1)
		FROM tracking_samples
	`, maxAttempts)
	if err := row.Scan(&stats.PendingSamples, &stats.SyncedSamples, &stats.AbandonedSamples); err != nil {
		return nil, fmt.Errorf("postgres: failed to count sample sync stats: %w", err)
	}

	return &stats, nil
}

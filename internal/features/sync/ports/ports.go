package ports

import (
	"context"
	"time"

	"riderpro/internal/features/sync/domain"
	tracking "riderpro/internal/features/tracking/domain"
)

// StatsProvider is the primary port behind the ops stats endpoint.
type StatsProvider interface {
	// Stats counts pending, synced and abandoned records.
	Stats(ctx context.Context) (*domain.Stats, error)
}

// SyncTarget is the external system of record. Implementations must bound
// each call with the context deadline; a timeout is a retryable failure.
type SyncTarget interface {
	// PushBatch delivers a group of records and reports per-record outcomes.
	PushBatch(ctx context.Context, records []domain.PushRecord) (*domain.PushResult, error)
}

// SyncRepository reads and marks the durable pending-sync state that
// ingestion leaves on sessions and samples.
type SyncRepository interface {
	// PendingSessions returns completed, unsynced sessions below the
	// attempt cap, oldest attempt first.
	PendingSessions(ctx context.Context, limit, maxAttempts int) ([]tracking.RouteSession, error)
	// PendingSamples returns unsynced samples below the attempt cap.
	PendingSamples(ctx context.Context, limit, maxAttempts int) ([]tracking.TrackingSample, error)

	// MarkSessionSynced records a confirmed session push, storing the
	// external id when the system of record issued one.
	MarkSessionSynced(ctx context.Context, id, externalRef string, at time.Time) error
	// MarkSessionFailed increments the session's attempt counter.
	MarkSessionFailed(ctx context.Context, id string, at time.Time, reason string) error
	// MarkSampleSynced records a confirmed sample push.
	MarkSampleSynced(ctx context.Context, id int64, at time.Time) error
	// MarkSampleFailed increments the sample's attempt counter.
	MarkSampleFailed(ctx context.Context, id int64, at time.Time, reason string) error

	// Stats counts pending, synced and abandoned records.
	Stats(ctx context.Context, maxAttempts int) (*domain.Stats, error)
}

package ports

import (
	"context"
	"time"

	"riderpro/internal/features/tracking/domain"
)

// SessionManager is the primary port driving the session lifecycle.
type SessionManager interface {
	// Start opens a new active session; a rider may hold at most one.
	Start(ctx context.Context, riderID string, start domain.Point) (*domain.RouteSession, error)
	// Get returns one session by id.
	Get(ctx context.Context, id string) (*domain.RouteSession, error)
	// List returns a rider's sessions started inside [from, to).
	List(ctx context.Context, riderID string, from, to time.Time) ([]domain.RouteSession, error)
	// Pause suspends time accounting. Idempotent.
	Pause(ctx context.Context, id string) (*domain.RouteSession, error)
	// Resume reactivates a paused session. Idempotent.
	Resume(ctx context.Context, id string) (*domain.RouteSession, error)
	// Stop completes the session and freezes its aggregates. Irreversible.
	Stop(ctx context.Context, id string, end domain.Point) (*domain.RouteSession, error)
}

// CoordinateIngestor is the primary port for location sample uploads.
type CoordinateIngestor interface {
	// IngestOne validates and persists a single sample.
	IngestOne(ctx context.Context, sessionID string, sample domain.TrackingSample) (*domain.IngestOutcome, error)
	// IngestBatch processes an offline backlog, each sample independently.
	IngestBatch(ctx context.Context, sessionID string, batch []domain.TrackingSample) (*domain.BatchResult, error)
}

// SessionRepository is the secondary port for durable route sessions.
type SessionRepository interface {
	// Create persists a new session.
	Create(ctx context.Context, session *domain.RouteSession) error
	// GetByID returns the session or domain.ErrSessionNotFound.
	GetByID(ctx context.Context, id string) (*domain.RouteSession, error)
	// FindOpenByRider returns the rider's active or paused session,
	// or (nil, nil) when the rider has none.
	FindOpenByRider(ctx context.Context, riderID string) (*domain.RouteSession, error)
	// Update persists mutated session state and aggregates.
	Update(ctx context.Context, session *domain.RouteSession) error
	// ListByRider returns sessions started inside [from, to), newest first.
	ListByRider(ctx context.Context, riderID string, from, to time.Time) ([]domain.RouteSession, error)
}

// SampleRepository is the secondary port for the append-only sample log.
type SampleRepository interface {
	// Insert appends a sample. Returns false without error when an
	// identical (session, recorded_at, lat, lng) tuple already exists,
	// so retried uploads stay idempotent.
	Insert(ctx context.Context, sample *domain.TrackingSample) (bool, error)
	// ListBySession returns all samples of a session ordered by client
	// timestamp, for recomputation and read APIs.
	ListBySession(ctx context.Context, sessionID string) ([]domain.TrackingSample, error)
}

// Deduper is the fast-path idempotency check consulted before storage.
// A miss is never an error: the durable unique constraint is the backstop.
type Deduper interface {
	// FirstSeen returns true the first time a key is offered within the TTL.
	FirstSeen(ctx context.Context, key string) (bool, error)
	// Forget releases a key claimed by FirstSeen. Called when the durable
	// insert behind a claim fails, so the client's retry is not absorbed
	// as a duplicate of a sample that was never stored.
	Forget(ctx context.Context, key string) error
}

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"riderpro/internal/core/config"
	"riderpro/internal/features/tracking/domain"
	"riderpro/internal/features/tracking/ports"

	"github.com/google/uuid"
)

// keyedLocks serializes mutations per session id. Sessions are the
// contention unit: ingestion for different sessions runs fully parallel.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedLocks) get(id string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	l, ok := k.locks[id]
	if !ok {
		l = &sync.Mutex{}
		k.locks[id] = l
	}
	return l
}

// release drops a session's entry so the table does not grow for the
// lifetime of the process. Only called once the session can no longer be
// mutated (completed, or the id does not exist): a waiter still holding
// the old mutex will only read and reject, so a fresh mutex handed to a
// later caller cannot race a mutation.
func (k *keyedLocks) release(id string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.locks, id)
}

// SessionService owns the route session state machine.
type SessionService struct {
	sessions ports.SessionRepository
	cfg      config.TrackingConfig
	locks    *keyedLocks
	now      func() time.Time
}

// NewSessionService creates a new SessionService.
func NewSessionService(sessions ports.SessionRepository, cfg config.TrackingConfig) *SessionService {
	return &SessionService{
		sessions: sessions,
		cfg:      cfg,
		locks:    newKeyedLocks(),
		now:      time.Now,
	}
}

// Start opens a new active session for the rider at the given point.
// A rider may hold at most one open (active or paused) session.
func (s *SessionService) Start(ctx context.Context, riderID string, start domain.Point) (*domain.RouteSession, error) {
	open, err := s.sessions.FindOpenByRider(ctx, riderID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to check open sessions: %w", err)
	}
	if open != nil {
		return nil, fmt.Errorf("%w: rider %s already has open session %s", domain.ErrSessionConflict, riderID, open.ID)
	}

	session := domain.NewRouteSession(uuid.NewString(), riderID, start, s.now())
	session.FuelEfficiencyKmpl = s.cfg.FuelEfficiencyKmpl
	session.FuelPricePerLitre = s.cfg.FuelPricePerLitre

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("service: failed to create session: %w", err)
	}
	return session, nil
}

// Get returns one session by id.
func (s *SessionService) Get(ctx context.Context, id string) (*domain.RouteSession, error) {
	return s.sessions.GetByID(ctx, id)
}

// List returns a rider's sessions started inside [from, to).
func (s *SessionService) List(ctx context.Context, riderID string, from, to time.Time) ([]domain.RouteSession, error) {
	return s.sessions.ListByRider(ctx, riderID, from, to)
}

// Pause suspends time accounting for the session. Idempotent.
func (s *SessionService) Pause(ctx context.Context, id string) (*domain.RouteSession, error) {
	return s.transition(ctx, id, func(session *domain.RouteSession) error {
		return session.Pause(s.now())
	})
}

// Resume reactivates a paused session. Idempotent.
func (s *SessionService) Resume(ctx context.Context, id string) (*domain.RouteSession, error) {
	return s.transition(ctx, id, func(session *domain.RouteSession) error {
		return session.Resume(s.now())
	})
}

// Stop completes the session at the given end point and freezes its
// aggregates. Stopping an unknown or already completed session fails with
// domain.ErrSessionNotFound; completion is irreversible.
func (s *SessionService) Stop(ctx context.Context, id string, end domain.Point) (*domain.RouteSession, error) {
	return s.transition(ctx, id, func(session *domain.RouteSession) error {
		return session.Complete(end, s.now())
	})
}

// transition applies a state change under the session lock, so a stop
// racing an in-flight sample can never reopen or double-mutate a session.
func (s *SessionService) transition(ctx context.Context, id string, apply func(*domain.RouteSession) error) (*domain.RouteSession, error) {
	lock := s.locks.get(id)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			s.locks.release(id)
		}
		return nil, err
	}

	if err := apply(session); err != nil {
		return nil, err
	}

	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("service: failed to update session %s: %w", id, err)
	}
	if !session.Status.Open() {
		s.locks.release(id)
	}
	return session, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"riderpro/internal/core/config"
	"riderpro/internal/core/logger"
	"riderpro/internal/features/tracking/domain"
	"riderpro/internal/features/tracking/ports"

	"go.uber.org/zap"
)

// IngestService is the coordinate ingestion pipeline: validate, dedupe,
// persist, fold into session aggregates.
type IngestService struct {
	sessions ports.SessionRepository
	samples  ports.SampleRepository
	dedup    ports.Deduper
	cfg      config.TrackingConfig
	locks    *keyedLocks
	now      func() time.Time
}

// NewIngestService creates an IngestService sharing the session lock table
// of the given SessionService, so sample folding and state transitions on
// one session are serialized against each other.
func NewIngestService(sessionSvc *SessionService, samples ports.SampleRepository, dedup ports.Deduper, cfg config.TrackingConfig) *IngestService {
	return &IngestService{
		sessions: sessionSvc.sessions,
		samples:  samples,
		dedup:    dedup,
		cfg:      cfg,
		locks:    sessionSvc.locks,
		now:      sessionSvc.now,
	}
}

// IngestOne validates and persists a single sample, updating the owning
// session's aggregates. Returns *domain.ValidationError for bad samples,
// domain.ErrSessionNotFound / domain.ErrSessionConflict for bad sessions.
func (s *IngestService) IngestOne(ctx context.Context, sessionID string, sample domain.TrackingSample) (*domain.IngestOutcome, error) {
	sample.SessionID = sessionID
	sample.Normalize(s.now())
	if verr := sample.Validate(s.now(), s.cfg.MaxFutureSkew()); verr != nil {
		return nil, verr
	}

	lock := s.locks.get(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			s.locks.release(sessionID)
		}
		return nil, err
	}
	if !session.Status.Open() {
		s.locks.release(sessionID)
		return nil, fmt.Errorf("%w: session %s is completed", domain.ErrSessionConflict, sessionID)
	}

	duplicate, outOfOrder, err := s.ingestLocked(ctx, session, &sample)
	if err != nil {
		return nil, err
	}
	if outOfOrder {
		if err := s.recompute(ctx, session); err != nil {
			return nil, err
		}
	}

	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("service: failed to update session %s: %w", sessionID, err)
	}
	return &domain.IngestOutcome{Sample: &sample, Duplicate: duplicate}, nil
}

// IngestBatch processes an offline backlog for one session. Samples are
// folded in client-timestamp order regardless of upload order; each sample
// succeeds or fails independently.
func (s *IngestService) IngestBatch(ctx context.Context, sessionID string, batch []domain.TrackingSample) (*domain.BatchResult, error) {
	result := &domain.BatchResult{
		Total:   len(batch),
		Results: make([]domain.BatchItemResult, len(batch)),
	}
	if len(batch) == 0 {
		return result, nil
	}

	// Sort indices by client timestamp so chronologically earlier samples
	// integrate against their true neighbors, not insertion order.
	order := make([]int, len(batch))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return batch[order[a]].RecordedAt.Before(batch[order[b]].RecordedAt)
	})

	lock := s.locks.get(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			s.locks.release(sessionID)
		}
		return nil, err
	}
	if !session.Status.Open() {
		s.locks.release(sessionID)
		return nil, fmt.Errorf("%w: session %s is completed", domain.ErrSessionConflict, sessionID)
	}

	now := s.now()
	needRecompute := false
	accepted := 0

	for _, idx := range order {
		sample := batch[idx]
		sample.SessionID = sessionID
		sample.Normalize(now)

		if verr := sample.Validate(now, s.cfg.MaxFutureSkew()); verr != nil {
			result.Results[idx] = domain.BatchItemResult{Index: idx, Reason: verr.Error()}
			result.Failed++
			continue
		}

		duplicate, outOfOrder, err := s.ingestLocked(ctx, session, &sample)
		if err != nil {
			result.Results[idx] = domain.BatchItemResult{Index: idx, Reason: "storage failure"}
			result.Failed++
			logger.Named("ingest").Error("batch sample insert failed",
				zap.String("session_id", sessionID),
				zap.Int("index", idx),
				zap.Error(err),
			)
			continue
		}

		needRecompute = needRecompute || outOfOrder
		result.Results[idx] = domain.BatchItemResult{Index: idx, Accepted: true, Duplicate: duplicate}
		result.Successful++
		accepted++
	}

	if accepted > 0 {
		if needRecompute {
			if err := s.recompute(ctx, session); err != nil {
				return nil, err
			}
		}
		if err := s.sessions.Update(ctx, session); err != nil {
			return nil, fmt.Errorf("service: failed to update session %s: %w", sessionID, err)
		}
	}
	return result, nil
}

// ingestLocked persists one validated sample and folds it into the session
// aggregates. Caller holds the session lock. Returns whether the sample was
// a stored duplicate and whether it arrived out of chronological order.
func (s *IngestService) ingestLocked(ctx context.Context, session *domain.RouteSession, sample *domain.TrackingSample) (duplicate, outOfOrder bool, err error) {
	sample.RiderID = session.RiderID
	if sample.FuelEfficiencyKmpl == 0 {
		sample.FuelEfficiencyKmpl = s.cfg.FuelEfficiencyKmpl
	}
	if sample.FuelPricePerLitre == 0 {
		sample.FuelPricePerLitre = s.cfg.FuelPricePerLitre
	}

	// Fast-path idempotency check. Redis being unavailable must not block
	// ingestion; the unique constraint below is the durable backstop.
	claimed := false
	if s.dedup != nil {
		first, derr := s.dedup.FirstSeen(ctx, sample.DedupKey())
		if derr != nil {
			logger.Named("ingest").Debug("dedup check unavailable", zap.Error(derr))
		} else if !first {
			return true, false, nil
		} else {
			claimed = true
		}
	}

	inserted, err := s.samples.Insert(ctx, sample)
	if err != nil {
		if claimed {
			// Release the claim: the sample was never stored, so the
			// client's retry must not be absorbed as a duplicate.
			if ferr := s.dedup.Forget(ctx, sample.DedupKey()); ferr != nil {
				logger.Named("ingest").Warn("failed to release dedup key",
					zap.String("key", sample.DedupKey()), zap.Error(ferr))
			}
		}
		return false, false, fmt.Errorf("service: failed to insert sample: %w", err)
	}
	if !inserted {
		return true, false, nil
	}

	session.Battery.Observe(sample.BatteryLevel, sample.Charging, s.cfg.LowBatteryThreshold)

	if session.LastSampleAt != nil && !sample.RecordedAt.After(*session.LastSampleAt) {
		// Late arrival: stored, but the online fold would misorder it.
		// The caller recomputes totals from the chronological sequence.
		return false, true, nil
	}

	prev := session.StartPoint
	if session.LastPoint != nil {
		prev = *session.LastPoint
	}
	session.TotalDistanceM += domain.DistanceMeters(prev, sample.Point())

	at := sample.RecordedAt
	pt := sample.Point()
	session.LastSampleAt = &at
	session.LastPoint = &pt
	return false, false, nil
}

// recompute rebuilds the session's distance total from the stored sample
// sequence. Deterministic: the same samples always produce the same total,
// so late-arriving batches converge with chronological delivery.
func (s *IngestService) recompute(ctx context.Context, session *domain.RouteSession) error {
	stored, err := s.samples.ListBySession(ctx, session.ID)
	if err != nil {
		return fmt.Errorf("service: failed to load samples for recompute: %w", err)
	}

	// The start point anchors the sequence, as it does for the online fold.
	seq := make([]domain.TrackingSample, 0, len(stored)+1)
	seq = append(seq, domain.TrackingSample{
		Lat:        session.StartPoint.Lat,
		Lng:        session.StartPoint.Lng,
		RecordedAt: session.StartedAt,
	})
	seq = append(seq, stored...)
	domain.SortByRecordedAt(seq)

	total, _ := domain.Cumulative(seq)
	session.TotalDistanceM = total

	last := seq[len(seq)-1]
	at := last.RecordedAt
	pt := last.Point()
	session.LastSampleAt = &at
	session.LastPoint = &pt
	return nil
}

// IsValidation reports whether an ingest error is a per-sample rejection.
func IsValidation(err error) bool {
	var verr *domain.ValidationError
	return errors.As(err, &verr)
}

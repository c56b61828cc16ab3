package service

import (
	"context"
	"fmt"
	"time"

	"riderpro/internal/core/config"
	"riderpro/internal/core/logger"
	"riderpro/internal/features/sync/domain"
	"riderpro/internal/features/sync/ports"
	tracking "riderpro/internal/features/tracking/domain"

	"go.uber.org/zap"
)

// maxBackoffShift caps the exponential backoff at base * 2^6.
const maxBackoffShift = 6

// Reconciler pushes pending local records to the external system of record
// with bounded retries. It runs as an independent background loop and never
// holds session locks: it snapshots pending rows, performs the network
// call, then applies results.
type Reconciler struct {
	repo   ports.SyncRepository
	target ports.SyncTarget
	cfg    config.SyncConfig
	log    *zap.Logger
	now    func() time.Time
}

// NewReconciler creates a new Reconciler.
func NewReconciler(repo ports.SyncRepository, target ports.SyncTarget, cfg config.SyncConfig) *Reconciler {
	return &Reconciler{
		repo:   repo,
		target: target,
		cfg:    cfg,
		log:    logger.Named("reconciler"),
		now:    time.Now,
	}
}

// Run drains pending records on a fixed interval until the context ends.
// Push failures are logged and retried on later ticks, never fatal.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.Interval())
	defer ticker.Stop()

	r.log.Info("reconciler started",
		zap.Duration("interval", r.cfg.Interval()),
		zap.Int("max_attempts", r.cfg.MaxAttempts),
	)

	for {
		select {
		case <-ctx.Done():
			r.log.Info("reconciler stopped")
			return
		case <-ticker.C:
			if pushed, err := r.RunOnce(ctx); err != nil {
				r.log.Warn("sync round failed", zap.Error(err))
			} else if pushed > 0 {
				r.log.Info("sync round complete", zap.Int("pushed", pushed))
			}
		}
	}
}

// RunOnce performs one drain round: snapshot pending records, push one
// batch, apply per-record outcomes. Returns how many records were pushed.
func (r *Reconciler) RunOnce(ctx context.Context) (int, error) {
	records, err := r.snapshot(ctx)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}

	pushCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout())
	result, err := r.target.PushBatch(pushCtx, records)
	cancel()

	now := r.now()
	if err != nil {
		// Includes timeouts: the call may or may not have landed, so every
		// member is retried; the external key keeps the redelivery idempotent.
		r.markAllFailed(ctx, records, now, err.Error())
		return 0, fmt.Errorf("push batch of %d: %w", len(records), err)
	}

	accepted := result.AcceptedSet()
	for _, record := range records {
		if accepted[record.Key] {
			r.markSynced(ctx, record, result.ExternalRefs[record.Key], now)
			continue
		}
		reason, rejected := result.Rejected[record.Key]
		if !rejected {
			reason = "missing from push response"
		}
		r.markFailed(ctx, record, now, reason)
	}
	return len(records), nil
}

// Stats exposes reconciliation counters for the ops endpoint.
func (r *Reconciler) Stats(ctx context.Context) (*domain.Stats, error) {
	return r.repo.Stats(ctx, r.cfg.MaxAttempts)
}

// snapshot collects the backoff-eligible pending records, sessions first,
// up to the configured batch size.
func (r *Reconciler) snapshot(ctx context.Context) ([]domain.PushRecord, error) {
	records := make([]domain.PushRecord, 0, r.cfg.BatchSize)

	sessions, err := r.repo.PendingSessions(ctx, r.cfg.BatchSize, r.cfg.MaxAttempts)
	if err != nil {
		return nil, fmt.Errorf("load pending sessions: %w", err)
	}
	for i := range sessions {
		if len(records) >= r.cfg.BatchSize {
			return records, nil
		}
		if r.eligible(sessions[i].Sync) {
			records = append(records, domain.SessionRecord(&sessions[i]))
		}
	}

	samples, err := r.repo.PendingSamples(ctx, r.cfg.BatchSize-len(records), r.cfg.MaxAttempts)
	if err != nil {
		return nil, fmt.Errorf("load pending samples: %w", err)
	}
	for i := range samples {
		if len(records) >= r.cfg.BatchSize {
			break
		}
		if r.eligible(samples[i].Sync) {
			records = append(records, domain.SampleRecord(&samples[i]))
		}
	}
	return records, nil
}

// eligible applies the exponential backoff window to a record's sync state.
func (r *Reconciler) eligible(state tracking.SyncState) bool {
	if state.Attempts == 0 || state.LastAttemptAt == nil {
		return true
	}
	shift := state.Attempts - 1
	if shift > maxBackoffShift {
		shift = maxBackoffShift
	}
	backoff := r.cfg.BackoffBase() * (1 << shift)
	return !r.now().Before(state.LastAttemptAt.Add(backoff))
}

func (r *Reconciler) markSynced(ctx context.Context, record domain.PushRecord, externalRef string, at time.Time) {
	var err error
	switch record.Kind {
	case domain.RecordKindSession:
		err = r.repo.MarkSessionSynced(ctx, record.Session.ID, externalRef, at)
	case domain.RecordKindSample:
		err = r.repo.MarkSampleSynced(ctx, record.Sample.ID, at)
	}
	if err != nil {
		r.log.Error("failed to mark record synced", zap.String("key", record.Key), zap.Error(err))
	}
}

func (r *Reconciler) markFailed(ctx context.Context, record domain.PushRecord, at time.Time, reason string) {
	var (
		err      error
		attempts int
	)
	switch record.Kind {
	case domain.RecordKindSession:
		err = r.repo.MarkSessionFailed(ctx, record.Session.ID, at, reason)
		attempts = record.Session.Sync.Attempts + 1
	case domain.RecordKindSample:
		err = r.repo.MarkSampleFailed(ctx, record.Sample.ID, at, reason)
		attempts = record.Sample.Sync.Attempts + 1
	}
	if err != nil {
		r.log.Error("failed to mark record failed", zap.String("key", record.Key), zap.Error(err))
		return
	}
	if attempts >= r.cfg.MaxAttempts {
		// Standing alert: the record is now visible only through Stats and
		// manual follow-up, automatic retries stop here.
		r.log.Error("sync record abandoned after max attempts",
			zap.String("key", record.Key),
			zap.Int("attempts", attempts),
			zap.String("last_error", reason),
		)
	}
}

func (r *Reconciler) markAllFailed(ctx context.Context, records []domain.PushRecord, at time.Time, reason string) {
	for _, record := range records {
		r.markFailed(ctx, record, at, reason)
	}
}

package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"riderpro/internal/features/tracking/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memSessionRepo is a stateful in-memory ports.SessionRepository. Ingestion
// tests need real read-mutate-write cycles, which call-expectation mocks
// model poorly.
type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]domain.RouteSession
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[string]domain.RouteSession)}
}

func (r *memSessionRepo) Create(_ context.Context, s *domain.RouteSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = *s
	return nil
}

func (r *memSessionRepo) GetByID(_ context.Context, id string) (*domain.RouteSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	copied := s
	return &copied, nil
}

func (r *memSessionRepo) FindOpenByRider(_ context.Context, riderID string) (*domain.RouteSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.RiderID == riderID && s.Status.Open() {
			copied := s
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memSessionRepo) Update(_ context.Context, s *domain.RouteSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = *s
	return nil
}

func (r *memSessionRepo) ListByRider(_ context.Context, riderID string, from, to time.Time) ([]domain.RouteSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.RouteSession
	for _, s := range r.sessions {
		if riderID != "" && s.RiderID != riderID {
			continue
		}
		if s.StartedAt.Before(from) || !s.StartedAt.Before(to) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// memSampleRepo mimics the append-only sample table, unique tuple included.
type memSampleRepo struct {
	mu       sync.Mutex
	nextID   int64
	samples  map[string][]domain.TrackingSample
	seen     map[string]bool
	failNext error
}

func newMemSampleRepo() *memSampleRepo {
	return &memSampleRepo{
		samples: make(map[string][]domain.TrackingSample),
		seen:    make(map[string]bool),
	}
}

func (r *memSampleRepo) Insert(_ context.Context, s *domain.TrackingSample) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext != nil {
		err := r.failNext
		r.failNext = nil
		return false, err
	}
	key := s.DedupKey()
	if r.seen[key] {
		return false, nil
	}
	r.seen[key] = true
	r.nextID++
	s.ID = r.nextID
	r.samples[s.SessionID] = append(r.samples[s.SessionID], *s)
	return true, nil
}

func (r *memSampleRepo) ListBySession(_ context.Context, sessionID string) ([]domain.TrackingSample, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.TrackingSample, len(r.samples[sessionID]))
	copy(out, r.samples[sessionID])
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].RecordedAt.Before(out[b].RecordedAt)
	})
	return out, nil
}

// memDeduper is a first-seen set standing in for the Redis fast path.
type memDeduper struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func newMemDeduper() *memDeduper {
	return &memDeduper{seen: make(map[string]bool)}
}

func (d *memDeduper) FirstSeen(_ context.Context, key string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return false, d.err
	}
	if d.seen[key] {
		return false, nil
	}
	d.seen[key] = true
	return true, nil
}

func (d *memDeduper) Forget(_ context.Context, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, key)
	return nil
}

type ingestFixture struct {
	sessions *memSessionRepo
	samples  *memSampleRepo
	dedup    *memDeduper
	sessSvc  *SessionService
	ingest   *IngestService
	now      time.Time
}

func newIngestFixture(t *testing.T) *ingestFixture {
	t.Helper()
	f := &ingestFixture{
		sessions: newMemSessionRepo(),
		samples:  newMemSampleRepo(),
		dedup:    newMemDeduper(),
		now:      time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
	}
	f.sessSvc = NewSessionService(f.sessions, testTrackingCfg)
	f.sessSvc.now = func() time.Time { return f.now }
	f.ingest = NewIngestService(f.sessSvc, f.samples, f.dedup, testTrackingCfg)
	return f
}

func (f *ingestFixture) startSession(t *testing.T, start domain.Point) *domain.RouteSession {
	t.Helper()
	session, err := f.sessSvc.Start(context.Background(), "rider-1", start)
	require.NoError(t, err)
	return session
}

func sampleAt(lat, lng float64, at time.Time) domain.TrackingSample {
	return domain.TrackingSample{Lat: lat, Lng: lng, RecordedAt: at}
}

func TestIngestService_IngestOne(t *testing.T) {
	ctx := context.Background()
	start := domain.Point{Lat: 12.9716, Lng: 77.5946}

	t.Run("FoldsDistance", func(t *testing.T) {
		f := newIngestFixture(t)
		session := f.startSession(t, start)

		// Each 0.001 degree of latitude is roughly 111 meters.
		out, err := f.ingest.IngestOne(ctx, session.ID, sampleAt(12.9726, 77.5946, f.now.Add(time.Minute)))
		require.NoError(t, err)
		assert.False(t, out.Duplicate)

		out, err = f.ingest.IngestOne(ctx, session.ID, sampleAt(12.9736, 77.5946, f.now.Add(2*time.Minute)))
		require.NoError(t, err)
		assert.False(t, out.Duplicate)

		stored, err := f.sessions.GetByID(ctx, session.ID)
		require.NoError(t, err)
		assert.InDelta(t, 222, stored.TotalDistanceM, 2)
		require.NotNil(t, stored.LastSampleAt)
		assert.Equal(t, f.now.Add(2*time.Minute), *stored.LastSampleAt)
		assert.Equal(t, domain.Point{Lat: 12.9736, Lng: 77.5946}, *stored.LastPoint)
	})

	t.Run("RejectsInvalid", func(t *testing.T) {
		f := newIngestFixture(t)
		session := f.startSession(t, start)

		_, err := f.ingest.IngestOne(ctx, session.ID, sampleAt(200, 77.5946, f.now.Add(time.Minute)))
		assert.True(t, IsValidation(err))

		listed, _ := f.samples.ListBySession(ctx, session.ID)
		assert.Empty(t, listed)
	})

	t.Run("DuplicateIsIdempotent", func(t *testing.T) {
		f := newIngestFixture(t)
		session := f.startSession(t, start)
		sample := sampleAt(12.9726, 77.5946, f.now.Add(time.Minute))

		first, err := f.ingest.IngestOne(ctx, session.ID, sample)
		require.NoError(t, err)
		assert.False(t, first.Duplicate)

		second, err := f.ingest.IngestOne(ctx, session.ID, sample)
		require.NoError(t, err)
		assert.True(t, second.Duplicate)

		stored, _ := f.sessions.GetByID(ctx, session.ID)
		assert.InDelta(t, 111, stored.TotalDistanceM, 2)
		listed, _ := f.samples.ListBySession(ctx, session.ID)
		assert.Len(t, listed, 1)
	})

	t.Run("DedupFailureFallsBackToStorage", func(t *testing.T) {
		f := newIngestFixture(t)
		f.dedup.err = context.DeadlineExceeded
		session := f.startSession(t, start)
		sample := sampleAt(12.9726, 77.5946, f.now.Add(time.Minute))

		first, err := f.ingest.IngestOne(ctx, session.ID, sample)
		require.NoError(t, err)
		assert.False(t, first.Duplicate)

		// The storage unique tuple still absorbs the retry.
		second, err := f.ingest.IngestOne(ctx, session.ID, sample)
		require.NoError(t, err)
		assert.True(t, second.Duplicate)
	})

	t.Run("RetryAfterInsertFailureIsStored", func(t *testing.T) {
		f := newIngestFixture(t)
		session := f.startSession(t, start)
		sample := sampleAt(12.9726, 77.5946, f.now.Add(time.Minute))

		f.samples.failNext = errors.New("connection reset by peer")
		_, err := f.ingest.IngestOne(ctx, session.ID, sample)
		require.Error(t, err)

		// The failed attempt must not leave a dedup claim behind: the
		// client's retry has to reach storage, not report a duplicate
		// of a sample that was never stored.
		out, err := f.ingest.IngestOne(ctx, session.ID, sample)
		require.NoError(t, err)
		assert.False(t, out.Duplicate)

		listed, _ := f.samples.ListBySession(ctx, session.ID)
		require.Len(t, listed, 1)
		stored, _ := f.sessions.GetByID(ctx, session.ID)
		assert.InDelta(t, 111, stored.TotalDistanceM, 2)
	})

	t.Run("LateSampleConverges", func(t *testing.T) {
		// The same three samples produce the same total whether they
		// arrive chronologically or with the middle one late.
		f1 := newIngestFixture(t)
		s1 := f1.startSession(t, start)
		for _, min := range []int{1, 2, 3} {
			_, err := f1.ingest.IngestOne(ctx, s1.ID, sampleAt(12.9716+float64(min)*0.001, 77.5946, f1.now.Add(time.Duration(min)*time.Minute)))
			require.NoError(t, err)
		}

		f2 := newIngestFixture(t)
		s2 := f2.startSession(t, start)
		for _, min := range []int{1, 3, 2} {
			_, err := f2.ingest.IngestOne(ctx, s2.ID, sampleAt(12.9716+float64(min)*0.001, 77.5946, f2.now.Add(time.Duration(min)*time.Minute)))
			require.NoError(t, err)
		}

		a, _ := f1.sessions.GetByID(ctx, s1.ID)
		b, _ := f2.sessions.GetByID(ctx, s2.ID)
		assert.InDelta(t, a.TotalDistanceM, b.TotalDistanceM, 0.001)
		assert.Equal(t, *a.LastSampleAt, *b.LastSampleAt)
	})

	t.Run("CompletedSessionRejects", func(t *testing.T) {
		f := newIngestFixture(t)
		session := f.startSession(t, start)
		_, err := f.sessSvc.Stop(ctx, session.ID, start)
		require.NoError(t, err)

		_, err = f.ingest.IngestOne(ctx, session.ID, sampleAt(12.9726, 77.5946, f.now.Add(time.Minute)))
		assert.ErrorIs(t, err, domain.ErrSessionConflict)
	})

	t.Run("UnknownSession", func(t *testing.T) {
		f := newIngestFixture(t)
		_, err := f.ingest.IngestOne(ctx, "nope", sampleAt(12.9726, 77.5946, f.now.Add(time.Minute)))
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("TracksBattery", func(t *testing.T) {
		f := newIngestFixture(t)
		session := f.startSession(t, start)

		levels := []struct {
			level    int
			charging bool
		}{
			{80, false},
			{15, false},
			{18, true},
		}
		for i, l := range levels {
			s := sampleAt(12.9716+float64(i+1)*0.001, 77.5946, f.now.Add(time.Duration(i+1)*time.Minute))
			lv := l.level
			s.BatteryLevel = &lv
			s.Charging = l.charging
			_, err := f.ingest.IngestOne(ctx, session.ID, s)
			require.NoError(t, err)
		}

		stored, _ := f.sessions.GetByID(ctx, session.ID)
		assert.Equal(t, 80, *stored.Battery.StartLevel)
		assert.Equal(t, 18, *stored.Battery.EndLevel)
		assert.Equal(t, 15, *stored.Battery.MinLevel)
		assert.Equal(t, 1, stored.Battery.ChargingEvents)
		assert.Equal(t, 2, stored.Battery.LowBatteryWarnings)
	})
}

func TestIngestService_IngestBatch(t *testing.T) {
	ctx := context.Background()
	start := domain.Point{Lat: 12.9716, Lng: 77.5946}

	t.Run("MixedBatch", func(t *testing.T) {
		f := newIngestFixture(t)
		session := f.startSession(t, start)

		batch := []domain.TrackingSample{
			sampleAt(12.9726, 77.5946, f.now.Add(time.Minute)),
			sampleAt(500, 77.5946, f.now.Add(2*time.Minute)),
			sampleAt(12.9736, 77.5946, f.now.Add(3*time.Minute)),
			sampleAt(12.9726, 77.5946, f.now.Add(time.Minute)), // duplicate of [0]
		}

		result, err := f.ingest.IngestBatch(ctx, session.ID, batch)
		require.NoError(t, err)
		assert.Equal(t, 4, result.Total)
		assert.Equal(t, 3, result.Successful)
		assert.Equal(t, 1, result.Failed)

		assert.True(t, result.Results[0].Accepted)
		assert.False(t, result.Results[1].Accepted)
		assert.Contains(t, result.Results[1].Reason, "lat")
		assert.True(t, result.Results[2].Accepted)
		assert.True(t, result.Results[3].Accepted)
		assert.True(t, result.Results[3].Duplicate)

		stored, _ := f.sessions.GetByID(ctx, session.ID)
		assert.InDelta(t, 222, stored.TotalDistanceM, 2)
	})

	t.Run("UploadOrderIrrelevant", func(t *testing.T) {
		chronological := func(at time.Time, min int) domain.TrackingSample {
			return sampleAt(12.9716+float64(min)*0.001, 77.5946, at.Add(time.Duration(min)*time.Minute))
		}

		f1 := newIngestFixture(t)
		s1 := f1.startSession(t, start)
		_, err := f1.ingest.IngestBatch(ctx, s1.ID, []domain.TrackingSample{
			chronological(f1.now, 1), chronological(f1.now, 2), chronological(f1.now, 3),
		})
		require.NoError(t, err)

		f2 := newIngestFixture(t)
		s2 := f2.startSession(t, start)
		_, err = f2.ingest.IngestBatch(ctx, s2.ID, []domain.TrackingSample{
			chronological(f2.now, 3), chronological(f2.now, 1), chronological(f2.now, 2),
		})
		require.NoError(t, err)

		a, _ := f1.sessions.GetByID(ctx, s1.ID)
		b, _ := f2.sessions.GetByID(ctx, s2.ID)
		assert.InDelta(t, a.TotalDistanceM, b.TotalDistanceM, 0.001)
	})

	t.Run("Empty", func(t *testing.T) {
		f := newIngestFixture(t)
		session := f.startSession(t, start)

		result, err := f.ingest.IngestBatch(ctx, session.ID, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, result.Total)
	})

	t.Run("CompletedSessionRejects", func(t *testing.T) {
		f := newIngestFixture(t)
		session := f.startSession(t, start)
		_, err := f.sessSvc.Stop(ctx, session.ID, start)
		require.NoError(t, err)

		_, err = f.ingest.IngestBatch(ctx, session.ID, []domain.TrackingSample{
			sampleAt(12.9726, 77.5946, f.now.Add(time.Minute)),
		})
		assert.ErrorIs(t, err, domain.ErrSessionConflict)
	})
}

func lockTableSize(f *ingestFixture) int {
	f.sessSvc.locks.mu.Lock()
	defer f.sessSvc.locks.mu.Unlock()
	return len(f.sessSvc.locks.locks)
}

// Completed and unknown sessions must not leave lock entries behind, or
// the table grows for the lifetime of the process.
func TestSessionLocks_PrunedAfterCompletion(t *testing.T) {
	ctx := context.Background()
	f := newIngestFixture(t)
	start := domain.Point{Lat: 12.9716, Lng: 77.5946}
	session := f.startSession(t, start)

	_, err := f.ingest.IngestOne(ctx, session.ID, sampleAt(12.9726, 77.5946, f.now.Add(time.Minute)))
	require.NoError(t, err)
	assert.Equal(t, 1, lockTableSize(f))

	_, err = f.sessSvc.Stop(ctx, session.ID, domain.Point{Lat: 12.9736, Lng: 77.5946})
	require.NoError(t, err)
	assert.Zero(t, lockTableSize(f))

	// Post-completion rejections do not repopulate the table.
	_, err = f.ingest.IngestOne(ctx, session.ID, sampleAt(12.9746, 77.5946, f.now.Add(2*time.Minute)))
	assert.ErrorIs(t, err, domain.ErrSessionConflict)
	assert.Zero(t, lockTableSize(f))

	// Neither do lookups of ids that never existed.
	_, err = f.ingest.IngestOne(ctx, "nope", sampleAt(12.9746, 77.5946, f.now.Add(2*time.Minute)))
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.Zero(t, lockTableSize(f))
}

func TestIngestService_ConcurrentSessions(t *testing.T) {
	ctx := context.Background()
	f := newIngestFixture(t)

	ids := make([]string, 4)
	for i := range ids {
		session := domain.NewRouteSession(
			"sess-"+string(rune('a'+i)), "rider-"+string(rune('a'+i)),
			domain.Point{Lat: 12.9716, Lng: 77.5946}, f.now,
		)
		require.NoError(t, f.sessions.Create(ctx, session))
		ids[i] = session.ID
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			// 20s steps keep every sample inside the future-skew window
			// against the fixture's fixed clock.
			for step := 1; step <= 10; step++ {
				_, err := f.ingest.IngestOne(ctx, id, sampleAt(
					12.9716+float64(step)*0.001, 77.5946,
					f.now.Add(time.Duration(step)*20*time.Second),
				))
				assert.NoError(t, err)
			}
		}(id)
	}
	wg.Wait()

	for _, id := range ids {
		stored, err := f.sessions.GetByID(ctx, id)
		require.NoError(t, err)
		assert.InDelta(t, 1110, stored.TotalDistanceM, 15)
	}
}

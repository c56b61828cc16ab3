package domain

import (
	"errors"
	"fmt"
	"time"
)

// SessionStatus represents the lifecycle state of a route session.
type SessionStatus string

const (
	// SessionStatusActive indicates the rider is on the road and samples count toward totals.
	SessionStatusActive SessionStatus = "active"
	// SessionStatusPaused indicates tracking is suspended; paused time is excluded from totals.
	SessionStatusPaused SessionStatus = "paused"
	// SessionStatusCompleted is terminal. No mutation is permitted afterwards.
	SessionStatusCompleted SessionStatus = "completed"
)

var (
	// ErrSessionNotFound is returned when the session does not exist or is already completed.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionConflict is returned when a rider already has an open session,
	// or when an operation is attempted against a completed session.
	ErrSessionConflict = errors.New("session conflict")
	// ErrInvalidStatus is returned for status strings outside the known set.
	// Unknown statuses are rejected, never coerced to a default.
	ErrInvalidStatus = errors.New("invalid session status")
)

// ParseSessionStatus validates a raw status string.
func ParseSessionStatus(raw string) (SessionStatus, error) {
	switch SessionStatus(raw) {
	case SessionStatusActive, SessionStatusPaused, SessionStatusCompleted:
		return SessionStatus(raw), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
}

// Open reports whether the session still accepts samples and transitions.
func (s SessionStatus) Open() bool {
	return s == SessionStatusActive || s == SessionStatusPaused
}

// CanTransitionTo reports whether the state machine permits the transition.
// Allowed: active <-> paused any number of times, then active|paused -> completed once.
func (s SessionStatus) CanTransitionTo(next SessionStatus) bool {
	switch s {
	case SessionStatusActive:
		return next == SessionStatusPaused || next == SessionStatusCompleted
	case SessionStatusPaused:
		return next == SessionStatusActive || next == SessionStatusCompleted
	default:
		return false
	}
}

// Point is a geographic coordinate pair.
type Point struct {
	// Lat is the latitude in decimal degrees.
	Lat float64 `json:"lat"`
	// Lng is the longitude in decimal degrees.
	Lng float64 `json:"lng"`
}

// BatteryTelemetry aggregates device battery observations over a session.
type BatteryTelemetry struct {
	// StartLevel is the first observed battery percentage.
	StartLevel *int `json:"start_level,omitempty"`
	// EndLevel is the most recent observed battery percentage.
	EndLevel *int `json:"end_level,omitempty"`
	// MinLevel is the lowest observed battery percentage.
	MinLevel *int `json:"min_level,omitempty"`
	// DrainRatePerHour is percentage points lost per active hour, set on completion.
	DrainRatePerHour float64 `json:"drain_rate_per_hour"`
	// ChargingEvents counts transitions from not-charging to charging.
	ChargingEvents int `json:"charging_events"`
	// LowBatteryWarnings counts samples observed below the configured threshold.
	LowBatteryWarnings int `json:"low_battery_warnings"`

	// LastCharging remembers the previous sample's charging flag so that a
	// continuous charge counts as one event. Persisted across requests.
	LastCharging bool `json:"-"`
}

// Observe folds one battery reading into the telemetry aggregates.
func (b *BatteryTelemetry) Observe(level *int, charging bool, lowThreshold int) {
	if level != nil {
		v := *level
		if b.StartLevel == nil {
			b.StartLevel = &v
		}
		lv := v
		b.EndLevel = &lv
		if b.MinLevel == nil || v < *b.MinLevel {
			mv := v
			b.MinLevel = &mv
		}
		if v < lowThreshold {
			b.LowBatteryWarnings++
		}
	}
	if charging && !b.LastCharging {
		b.ChargingEvents++
	}
	b.LastCharging = charging
}

// RouteSession is the durable record of one GPS-tracked delivery window.
// Aggregates are monotonic while the session is open and frozen on completion.
type RouteSession struct {
	// ID is the internal primary key (uuid).
	ID string `json:"id"`
	// RiderID identifies the rider; at most one open session per rider.
	RiderID string `json:"rider_id"`
	// ExternalRef is the optional id assigned by the external system of record.
	// Kept separate from ID so the two namespaces never mix.
	ExternalRef string `json:"external_ref,omitempty"`

	Status SessionStatus `json:"status"`

	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`

	StartPoint Point  `json:"start_point"`
	EndPoint   *Point `json:"end_point,omitempty"`

	// TotalDistanceM is the cumulative haversine distance over accepted samples.
	TotalDistanceM float64 `json:"total_distance_m"`
	// ActiveSeconds is time spent in the active state; paused time is excluded.
	ActiveSeconds int64 `json:"active_seconds"`
	// AvgSpeedKmh is total distance over active time, computed on completion.
	AvgSpeedKmh float64 `json:"avg_speed_kmh"`

	// LastSampleAt is the client timestamp of the chronologically latest
	// accepted sample. Samples older than this fold in via recomputation.
	LastSampleAt *time.Time `json:"last_sample_at,omitempty"`
	// LastPoint is the coordinate of that latest sample.
	LastPoint *Point `json:"last_point,omitempty"`

	// LastResumedAt marks when the session last entered the active state.
	LastResumedAt time.Time `json:"last_resumed_at"`

	// FuelEfficiencyKmpl is the efficiency snapshot frozen at session start,
	// used for session-level fuel estimates.
	FuelEfficiencyKmpl float64 `json:"fuel_efficiency_kmpl"`
	// FuelPricePerLitre is the fuel price snapshot frozen at session start.
	FuelPricePerLitre float64 `json:"fuel_price_per_litre"`

	Battery BatteryTelemetry `json:"battery"`

	Sync SyncState `json:"sync"`
}

// NewRouteSession creates a session in the active state at the given start point.
func NewRouteSession(id, riderID string, start Point, now time.Time) *RouteSession {
	return &RouteSession{
		ID:            id,
		RiderID:       riderID,
		Status:        SessionStatusActive,
		StartedAt:     now,
		StartPoint:    start,
		LastResumedAt: now,
	}
}

// Pause transitions the session to paused, banking the active interval.
// Pausing an already paused session is a no-op.
func (s *RouteSession) Pause(now time.Time) error {
	if s.Status == SessionStatusPaused {
		return nil
	}
	if !s.Status.CanTransitionTo(SessionStatusPaused) {
		return fmt.Errorf("%w: cannot pause %s session %s", ErrSessionConflict, s.Status, s.ID)
	}
	s.ActiveSeconds += activeDelta(s.LastResumedAt, now)
	s.Status = SessionStatusPaused
	return nil
}

// Resume transitions the session back to active.
// Resuming an already active session is a no-op.
func (s *RouteSession) Resume(now time.Time) error {
	if s.Status == SessionStatusActive {
		return nil
	}
	if !s.Status.CanTransitionTo(SessionStatusActive) {
		return fmt.Errorf("%w: cannot resume %s session %s", ErrSessionConflict, s.Status, s.ID)
	}
	s.Status = SessionStatusActive
	s.LastResumedAt = now
	return nil
}

// Complete freezes the session: banks remaining active time, records the end
// point, derives average speed and battery drain rate. Irreversible.
func (s *RouteSession) Complete(end Point, now time.Time) error {
	if !s.Status.CanTransitionTo(SessionStatusCompleted) {
		return fmt.Errorf("%w: session %s already completed", ErrSessionNotFound, s.ID)
	}
	if s.Status == SessionStatusActive {
		s.ActiveSeconds += activeDelta(s.LastResumedAt, now)
	}
	s.Status = SessionStatusCompleted
	s.EndedAt = &now
	s.EndPoint = &end

	activeHours := float64(s.ActiveSeconds) / 3600
	if activeHours > 0 {
		s.AvgSpeedKmh = (s.TotalDistanceM / 1000) / activeHours
		if s.Battery.StartLevel != nil && s.Battery.EndLevel != nil {
			s.Battery.DrainRatePerHour = float64(*s.Battery.StartLevel-*s.Battery.EndLevel) / activeHours
		}
	}
	return nil
}

// activeDelta guards against clocks that move backwards between transitions.
func activeDelta(from, to time.Time) int64 {
	d := int64(to.Sub(from).Seconds())
	if d < 0 {
		return 0
	}
	return d
}

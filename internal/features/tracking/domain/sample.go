package domain

import (
	"fmt"
	"time"
)

// EventType classifies what produced a tracking sample.
type EventType string

const (
	// EventTypeGPS is a periodic location reading.
	EventTypeGPS EventType = "gps"
	// EventTypeCheckpoint is an explicit rider action (pickup, drop-off).
	EventTypeCheckpoint EventType = "checkpoint"
)

// ValidationError describes why a sample was rejected. It is reported
// per sample and never aborts a batch.
type ValidationError struct {
	// Field is the offending sample field.
	Field string `json:"field"`
	// Reason is a human-readable rejection cause.
	Reason string `json:"reason"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid sample: %s %s", e.Field, e.Reason)
}

// TrackingSample is one immutable GPS/location reading belonging to a session.
// Samples are ordered by the client-reported RecordedAt, not arrival order,
// because offline clients upload backlogs out of order.
type TrackingSample struct {
	// ID is the storage-assigned sequence id.
	ID int64 `json:"id"`
	// SessionID is the owning session (foreign key).
	SessionID string `json:"session_id"`
	// RiderID denormalizes the session owner for partitioned queries.
	RiderID string `json:"rider_id"`

	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
	// AccuracyM is the reported GPS accuracy radius in meters.
	AccuracyM *float64 `json:"accuracy_m,omitempty"`
	// SpeedKmh is the device-reported instantaneous speed.
	SpeedKmh *float64 `json:"speed_kmh,omitempty"`

	// RecordedAt is the client clock reading, authoritative for ordering.
	RecordedAt time.Time `json:"recorded_at"`
	// ReceivedAt is the server receipt time, used for staleness detection.
	ReceivedAt time.Time `json:"received_at"`

	EventType EventType `json:"event_type"`
	// ShipmentID links the sample to a delivery, when known.
	ShipmentID string `json:"shipment_id,omitempty"`
	// DateBucket is RecordedAt truncated to a calendar day (YYYY-MM-DD),
	// the partition key for analytics rollups.
	DateBucket string `json:"date_bucket"`

	// FuelEfficiencyKmpl is the efficiency snapshot used for this sample's
	// cost estimate, frozen at ingest time so later tariff changes do not
	// rewrite history.
	FuelEfficiencyKmpl float64 `json:"fuel_efficiency_kmpl"`
	// FuelPricePerLitre is the fuel price snapshot at ingest time.
	FuelPricePerLitre float64 `json:"fuel_price_per_litre"`

	BatteryLevel *int `json:"battery_level,omitempty"`
	Charging     bool `json:"charging"`
	// NetworkType is an optional connectivity diagnostic (wifi, 4g, offline).
	NetworkType    string `json:"network_type,omitempty"`
	SignalStrength *int   `json:"signal_strength,omitempty"`

	Sync SyncState `json:"sync"`
}

// Normalize fills derived and defaulted fields before validation.
func (s *TrackingSample) Normalize(receivedAt time.Time) {
	s.ReceivedAt = receivedAt
	if s.EventType == "" {
		s.EventType = EventTypeGPS
	}
	if !s.RecordedAt.IsZero() {
		s.DateBucket = s.RecordedAt.UTC().Format("2006-01-02")
	}
}

// Validate checks geometry, clocks and telemetry ranges. It is pure: the
// sample is not mutated and no storage is touched.
func (s *TrackingSample) Validate(now time.Time, maxFutureSkew time.Duration) *ValidationError {
	if s.Lat < -90 || s.Lat > 90 {
		return &ValidationError{Field: "lat", Reason: fmt.Sprintf("out of range: %v", s.Lat)}
	}
	if s.Lng < -180 || s.Lng > 180 {
		return &ValidationError{Field: "lng", Reason: fmt.Sprintf("out of range: %v", s.Lng)}
	}
	if s.RecordedAt.IsZero() {
		return &ValidationError{Field: "recorded_at", Reason: "missing"}
	}
	if s.RecordedAt.After(now.Add(maxFutureSkew)) {
		return &ValidationError{Field: "recorded_at", Reason: "too far in the future"}
	}
	if s.AccuracyM != nil && *s.AccuracyM < 0 {
		return &ValidationError{Field: "accuracy_m", Reason: "negative"}
	}
	if s.BatteryLevel != nil && (*s.BatteryLevel < 0 || *s.BatteryLevel > 100) {
		return &ValidationError{Field: "battery_level", Reason: "outside 0-100"}
	}
	if s.SignalStrength != nil && (*s.SignalStrength < 0 || *s.SignalStrength > 100) {
		return &ValidationError{Field: "signal_strength", Reason: "outside 0-100"}
	}
	switch s.EventType {
	case EventTypeGPS, EventTypeCheckpoint:
	default:
		return &ValidationError{Field: "event_type", Reason: fmt.Sprintf("unknown: %q", s.EventType)}
	}
	return nil
}

// DedupKey identifies a sample for idempotent re-upload handling. Clients
// retrying after a timeout resend identical tuples.
func (s *TrackingSample) DedupKey() string {
	return fmt.Sprintf("%s:%d:%.6f:%.6f", s.SessionID, s.RecordedAt.UnixMilli(), s.Lat, s.Lng)
}

// Point returns the sample's coordinate pair.
func (s *TrackingSample) Point() Point {
	return Point{Lat: s.Lat, Lng: s.Lng}
}

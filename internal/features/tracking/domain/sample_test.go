package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackingSample_Validate(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	skew := 5 * time.Minute

	valid := func() TrackingSample {
		return TrackingSample{
			SessionID:  "s-1",
			Lat:        12.9,
			Lng:        77.6,
			RecordedAt: now.Add(-time.Minute),
			EventType:  EventTypeGPS,
		}
	}

	tests := []struct {
		name     string
		mutate   func(*TrackingSample)
		badField string
	}{
		{name: "Valid", mutate: func(s *TrackingSample) {}},
		{name: "Latitude Too High", mutate: func(s *TrackingSample) { s.Lat = 200 }, badField: "lat"},
		{name: "Latitude Too Low", mutate: func(s *TrackingSample) { s.Lat = -90.1 }, badField: "lat"},
		{name: "Longitude Too High", mutate: func(s *TrackingSample) { s.Lng = 180.5 }, badField: "lng"},
		{name: "Longitude Too Low", mutate: func(s *TrackingSample) { s.Lng = -181 }, badField: "lng"},
		{name: "Missing Timestamp", mutate: func(s *TrackingSample) { s.RecordedAt = time.Time{} }, badField: "recorded_at"},
		{name: "Future Timestamp", mutate: func(s *TrackingSample) { s.RecordedAt = now.Add(10 * time.Minute) }, badField: "recorded_at"},
		{name: "Within Skew Accepted", mutate: func(s *TrackingSample) { s.RecordedAt = now.Add(4 * time.Minute) }},
		{name: "Negative Accuracy", mutate: func(s *TrackingSample) { a := -1.0; s.AccuracyM = &a }, badField: "accuracy_m"},
		{name: "Battery Above 100", mutate: func(s *TrackingSample) { b := 150; s.BatteryLevel = &b }, badField: "battery_level"},
		{name: "Battery Negative", mutate: func(s *TrackingSample) { b := -5; s.BatteryLevel = &b }, badField: "battery_level"},
		{name: "Unknown Event Type", mutate: func(s *TrackingSample) { s.EventType = "teleport" }, badField: "event_type"},
		{name: "Checkpoint Accepted", mutate: func(s *TrackingSample) { s.EventType = EventTypeCheckpoint }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sample := valid()
			tt.mutate(&sample)

			verr := sample.Validate(now, skew)

			if tt.badField == "" {
				assert.Nil(t, verr)
			} else {
				require.NotNil(t, verr)
				assert.Equal(t, tt.badField, verr.Field)
				assert.Contains(t, verr.Error(), tt.badField)
			}
		})
	}
}

func TestTrackingSample_Normalize(t *testing.T) {
	received := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	s := TrackingSample{
		RecordedAt: time.Date(2026, 3, 9, 23, 45, 0, 0, time.UTC),
	}
	s.Normalize(received)

	assert.Equal(t, received, s.ReceivedAt)
	assert.Equal(t, EventTypeGPS, s.EventType)
	assert.Equal(t, "2026-03-09", s.DateBucket)

	// Explicit event type survives
	c := TrackingSample{EventType: EventTypeCheckpoint, RecordedAt: received}
	c.Normalize(received)
	assert.Equal(t, EventTypeCheckpoint, c.EventType)
}

func TestTrackingSample_DedupKey(t *testing.T) {
	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	a := TrackingSample{SessionID: "s-1", Lat: 12.9, Lng: 77.6, RecordedAt: at}
	b := TrackingSample{SessionID: "s-1", Lat: 12.9, Lng: 77.6, RecordedAt: at}
	assert.Equal(t, a.DedupKey(), b.DedupKey())

	c := TrackingSample{SessionID: "s-1", Lat: 12.9, Lng: 77.6, RecordedAt: at.Add(time.Second)}
	assert.NotEqual(t, a.DedupKey(), c.DedupKey())

	d := TrackingSample{SessionID: "s-2", Lat: 12.9, Lng: 77.6, RecordedAt: at}
	assert.NotEqual(t, a.DedupKey(), d.DedupKey())
}

func TestSyncState(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	var s SyncState
	s.MarkFailed(now, "connection refused")
	s.MarkFailed(now.Add(time.Minute), "timeout")

	assert.Equal(t, 2, s.Attempts)
	assert.Equal(t, "timeout", s.LastError)
	assert.False(t, s.Abandoned(3))
	assert.True(t, s.Abandoned(2))

	s.MarkSynced(now.Add(2 * time.Minute))
	assert.True(t, s.Synced)
	assert.Empty(t, s.LastError)
	assert.False(t, s.Abandoned(2))
}

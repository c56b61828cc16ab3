package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceMeters(t *testing.T) {
	// Bangalore city center to Whitefield, roughly 15.5 km great-circle.
	d := DistanceMeters(Point{Lat: 12.9716, Lng: 77.5946}, Point{Lat: 12.9698, Lng: 77.7500})
	assert.InDelta(t, 16870, d, 500)

	// Identical points are a valid stationary reading
	assert.Zero(t, DistanceMeters(Point{Lat: 12.9, Lng: 77.6}, Point{Lat: 12.9, Lng: 77.6}))

	// Symmetry
	a, b := Point{Lat: 12.90, Lng: 77.60}, Point{Lat: 12.91, Lng: 77.61}
	assert.InDelta(t, DistanceMeters(a, b), DistanceMeters(b, a), 1e-9)

	// Small delta sanity: ~0.001 degree of latitude is ~111 m
	d = DistanceMeters(Point{Lat: 12.900, Lng: 77.600}, Point{Lat: 12.901, Lng: 77.600})
	assert.InDelta(t, 111, d, 2)
}

func sampleAt(lat, lng float64, at time.Time) TrackingSample {
	return TrackingSample{Lat: lat, Lng: lng, RecordedAt: at}
}

func TestCumulative(t *testing.T) {
	t0 := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	samples := []TrackingSample{
		sampleAt(12.900, 77.600, t0),
		sampleAt(12.901, 77.601, t0.Add(60*time.Second)),
		sampleAt(12.902, 77.602, t0.Add(120*time.Second)),
	}

	total, segments := Cumulative(samples)

	// Two ~155 m diagonal segments (0.001 degrees of both lat and lng at
	// this latitude)
	assert.InDelta(t, 310.6, total, 5)
	require.Len(t, segments, 2)
	for _, seg := range segments {
		assert.InDelta(t, 60, seg.Seconds, 0.001)
		assert.InDelta(t, seg.DistanceM/60*3.6, seg.SpeedKmh, 0.01)
	}
}

func TestCumulative_EdgeCases(t *testing.T) {
	t0 := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	t.Run("Empty", func(t *testing.T) {
		total, segments := Cumulative(nil)
		assert.Zero(t, total)
		assert.Nil(t, segments)
	})

	t.Run("Single Point", func(t *testing.T) {
		total, segments := Cumulative([]TrackingSample{sampleAt(12.9, 77.6, t0)})
		assert.Zero(t, total)
		assert.Nil(t, segments)
	})

	t.Run("Stationary Pair", func(t *testing.T) {
		total, segments := Cumulative([]TrackingSample{
			sampleAt(12.9, 77.6, t0),
			sampleAt(12.9, 77.6, t0.Add(time.Minute)),
		})
		assert.Zero(t, total)
		require.Len(t, segments, 1)
		assert.Zero(t, segments[0].SpeedKmh)
	})

	t.Run("Zero Time Delta", func(t *testing.T) {
		total, segments := Cumulative([]TrackingSample{
			sampleAt(12.900, 77.600, t0),
			sampleAt(12.901, 77.600, t0),
		})
		assert.Positive(t, total)
		require.Len(t, segments, 1)
		// Speed remains finite via the epsilon floor
		assert.Less(t, segments[0].SpeedKmh, 1e9)
	})
}

// TestCumulative_OrderIndependence verifies that sorting out-of-order input
// reproduces the chronological total, the property batch recomputation
// relies on.
func TestCumulative_OrderIndependence(t *testing.T) {
	t0 := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	ordered := []TrackingSample{
		sampleAt(12.900, 77.600, t0),
		sampleAt(12.901, 77.601, t0.Add(1*time.Minute)),
		sampleAt(12.902, 77.602, t0.Add(2*time.Minute)),
		sampleAt(12.903, 77.603, t0.Add(3*time.Minute)),
		sampleAt(12.904, 77.604, t0.Add(4*time.Minute)),
	}
	wantTotal, _ := Cumulative(ordered)

	shuffled := []TrackingSample{ordered[3], ordered[0], ordered[4], ordered[2], ordered[1]}
	SortByRecordedAt(shuffled)
	gotTotal, _ := Cumulative(shuffled)

	assert.InDelta(t, wantTotal, gotTotal, 1e-9)
}

// TestCumulative_IncrementalEquivalence verifies that folding samples one at
// a time equals one batch pass over the same sequence.
func TestCumulative_IncrementalEquivalence(t *testing.T) {
	t0 := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	samples := []TrackingSample{
		sampleAt(12.900, 77.600, t0),
		sampleAt(12.9013, 77.6008, t0.Add(45*time.Second)),
		sampleAt(12.9027, 77.6019, t0.Add(95*time.Second)),
		sampleAt(12.9027, 77.6019, t0.Add(150*time.Second)), // idling
		sampleAt(12.9041, 77.6030, t0.Add(200*time.Second)),
	}

	incremental := 0.0
	for i := 1; i < len(samples); i++ {
		incremental += DistanceMeters(samples[i-1].Point(), samples[i].Point())
	}

	batch, _ := Cumulative(samples)
	assert.InDelta(t, incremental, batch, 1e-9)
}

func TestSegmentSpeedKmh(t *testing.T) {
	// 100 m in 10 s is 36 km/h
	assert.InDelta(t, 36.0, SegmentSpeedKmh(100, 10*time.Second), 0.001)
	// Zero delta stays finite
	assert.Less(t, SegmentSpeedKmh(100, 0), 1e9)
}

package domain

import (
	"math"
	"sort"
	"time"
)

// earthRadiusM is the mean Earth radius used by the haversine formula.
const earthRadiusM = 6371000.0

// minSegmentSeconds guards speed computation against zero time deltas.
const minSegmentSeconds = 0.001

// DistanceMeters returns the great-circle distance between two points.
// Identical points yield exactly zero.
func DistanceMeters(a, b Point) float64 {
	if a == b {
		return 0
	}

	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)

	return 2 * earthRadiusM * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Segment is the derived metric for one consecutive pair of samples.
type Segment struct {
	// DistanceM is the haversine distance of the segment.
	DistanceM float64
	// Seconds is the client-clock time between the two samples.
	Seconds float64
	// SpeedKmh is the derived segment speed.
	SpeedKmh float64
}

// Cumulative folds an ordered sample sequence into a total distance and
// per-segment speeds. The input must be sorted by RecordedAt; use
// SortByRecordedAt first when order is not guaranteed. Deterministic:
// equal input always yields equal output, so incremental ingestion and
// batch recomputation converge on the same total.
func Cumulative(samples []TrackingSample) (float64, []Segment) {
	if len(samples) < 2 {
		return 0, nil
	}

	total := 0.0
	segments := make([]Segment, 0, len(samples)-1)
	for i := 1; i < len(samples); i++ {
		d := DistanceMeters(samples[i-1].Point(), samples[i].Point())
		dt := samples[i].RecordedAt.Sub(samples[i-1].RecordedAt).Seconds()
		if dt < 0 {
			// Out-of-order pair in a sequence the caller claims is sorted;
			// contributes nothing rather than corrupting the total.
			continue
		}
		total += d
		segments = append(segments, Segment{
			DistanceM: d,
			Seconds:   dt,
			SpeedKmh:  d / math.Max(dt, minSegmentSeconds) * 3.6,
		})
	}
	return total, segments
}

// SortByRecordedAt orders samples by client timestamp, the authoritative
// ordering for offline batches. The sort is stable so equal timestamps
// keep their upload order.
func SortByRecordedAt(samples []TrackingSample) {
	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].RecordedAt.Before(samples[j].RecordedAt)
	})
}

// SegmentSpeedKmh derives the speed for a single incremental step.
func SegmentSpeedKmh(distanceM float64, dt time.Duration) float64 {
	return distanceM / math.Max(dt.Seconds(), minSegmentSeconds) * 3.6
}

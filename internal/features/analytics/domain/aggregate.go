package domain

// DailyAggregate is one day's rollup of a rider's (or the whole fleet's)
// tracked activity, the shape every dashboard chart and table consumes.
type DailyAggregate struct {
	// Date is the calendar day bucket (YYYY-MM-DD).
	Date string `json:"date"`
	// TotalDistanceKm is the summed session distance for the day.
	TotalDistanceKm float64 `json:"total_distance_km"`
	// TotalTimeSec is the summed active seconds.
	TotalTimeSec int64 `json:"total_time_sec"`
	// FuelConsumedL estimates litres burned from per-session efficiency snapshots.
	FuelConsumedL float64 `json:"fuel_consumed_l"`
	// FuelCost prices the consumed fuel with per-session price snapshots.
	FuelCost float64 `json:"fuel_cost"`
	// ShipmentsCompleted counts distinct shipments with checkpoint samples.
	ShipmentsCompleted int `json:"shipments_completed"`
	// SessionCount is how many sessions started that day.
	SessionCount int `json:"session_count"`
}

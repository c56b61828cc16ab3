package domain

// IngestOutcome reports what happened to a single accepted sample.
type IngestOutcome struct {
	// Sample is the persisted sample, or the stored twin when Duplicate.
	Sample *TrackingSample
	// Duplicate is true when an identical tuple was already stored and the
	// upload was absorbed idempotently.
	Duplicate bool
}

// BatchItemResult is the per-sample verdict of a batch upload, reported in
// the order the client sent the samples.
type BatchItemResult struct {
	Index     int    `json:"index"`
	Accepted  bool   `json:"accepted"`
	Duplicate bool   `json:"duplicate,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// BatchResult summarizes a batch upload. One invalid sample never aborts
// the rest.
type BatchResult struct {
	Total      int               `json:"total"`
	Successful int               `json:"successful"`
	Failed     int               `json:"failed"`
	Results    []BatchItemResult `json:"per_sample_results"`
}

package domain

import "time"

// SyncState tracks reconciliation of a local record against the external
// system of record. Embedded in sessions and samples rather than kept as a
// separate entity.
type SyncState struct {
	// Synced is set once the external push is confirmed. Terminal.
	Synced bool `json:"synced"`
	// Attempts counts failed pushes. It increments only on failure.
	Attempts int `json:"attempts"`
	// LastAttemptAt is when the last push was tried.
	LastAttemptAt *time.Time `json:"last_attempt_at,omitempty"`
	// LastError describes the most recent failure; cleared on success.
	LastError string `json:"last_error,omitempty"`
}

// MarkSynced records a confirmed push and clears any standing error.
func (s *SyncState) MarkSynced(now time.Time) {
	s.Synced = true
	s.LastError = ""
	s.LastAttemptAt = &now
}

// MarkFailed records one failed push attempt.
func (s *SyncState) MarkFailed(now time.Time, reason string) {
	s.Attempts++
	s.LastError = reason
	s.LastAttemptAt = &now
}

// Abandoned reports whether the record has exhausted its retry budget and
// must be surfaced for manual follow-up instead of retried.
func (s *SyncState) Abandoned(maxAttempts int) bool {
	return !s.Synced && s.Attempts >= maxAttempts
}

package domain

import (
	"fmt"

	tracking "riderpro/internal/features/tracking/domain"
)

// RecordKind distinguishes what a push record carries.
type RecordKind string

const (
	// RecordKindSession is a completed route session.
	RecordKindSession RecordKind = "session"
	// RecordKindSample is one tracking sample.
	RecordKindSample RecordKind = "sample"
)

// PushRecord is one unit of work for the external system of record. Key is
// the external-facing idempotency key: the endpoint must treat repeated
// pushes of the same key as one, because a timed-out push is always retried.
type PushRecord struct {
	Kind RecordKind `json:"kind"`
	Key  string     `json:"key"`

	Session *tracking.RouteSession   `json:"session,omitempty"`
	Sample  *tracking.TrackingSample `json:"sample,omitempty"`
}

// SessionRecord wraps a session for pushing.
func SessionRecord(s *tracking.RouteSession) PushRecord {
	return PushRecord{
		Kind:    RecordKindSession,
		Key:     "session:" + s.ID,
		Session: s,
	}
}

// SampleRecord wraps a sample for pushing. The key is derived from the
// immutable identity tuple, not the storage id, so re-inserts after a
// restore push under the same key.
func SampleRecord(s *tracking.TrackingSample) PushRecord {
	return PushRecord{
		Kind:   RecordKindSample,
		Key:    fmt.Sprintf("sample:%s:%d", s.SessionID, s.RecordedAt.UnixMilli()),
		Sample: s,
	}
}

// PushResult is the per-record outcome of a batch push. A key missing from
// both lists is treated as failed, never as silently succeeded.
type PushResult struct {
	// Accepted lists keys the external system confirmed.
	Accepted []string `json:"accepted"`
	// Rejected maps keys to rejection reasons.
	Rejected map[string]string `json:"rejected,omitempty"`
	// ExternalRefs maps accepted session keys to ids issued by the
	// external system, stored in the session's external_ref field.
	ExternalRefs map[string]string `json:"external_refs,omitempty"`
}

// AcceptedSet returns the accepted keys as a lookup set.
func (r *PushResult) AcceptedSet() map[string]bool {
	set := make(map[string]bool, len(r.Accepted))
	for _, key := range r.Accepted {
		set[key] = true
	}
	return set
}

// Stats summarizes reconciliation state for operators.
type Stats struct {
	PendingSessions int `json:"pending_sessions"`
	PendingSamples  int `json:"pending_samples"`
	SyncedSessions  int `json:"synced_sessions"`
	SyncedSamples   int `json:"synced_samples"`
	// Abandoned records exhausted their retry budget and need manual
	// follow-up; the reconciler never touches them again.
	AbandonedSessions int `json:"abandoned_sessions"`
	AbandonedSamples  int `json:"abandoned_samples"`
}

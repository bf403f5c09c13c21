// Package journal records the outcome of every transfer the gateway performs.
// It is an audit trail only: the object store stays the source of truth for
// which files exist, and journal failures never fail a request.
package journal

import "context"

// Operations recorded by the gateway.
const (
	OpUpload = "upload"
	OpDelete = "delete"
)

// Outcomes recorded by the gateway.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeNotFound = "not_found"
	OutcomeFailed   = "failed"
)

// Event is one transfer attempt on one object.
type Event struct {
	BatchID   string
	Operation string
	Key       string
	Bytes     int64
	Outcome   string
	Error     string
}

// Journal persists transfer events.
type Journal interface {
	Record(ctx context.Context, e Event) error
}

// Nop discards every event. Used when no database is configured.
type Nop struct{}

func (Nop) Record(context.Context, Event) error { return nil }

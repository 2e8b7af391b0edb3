package audit

import (
	"context"
	"time"
)

// Actions recorded by the search service.
const (
	ActionSearchExecuted = "search.executed"
	ActionSearchFailed   = "search.failed"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp  time.Time `json:"timestamp"`
	RequestID  string    `json:"request_id,omitempty"`
	Action     string    `json:"action"`
	ResultType string    `json:"result_type,omitempty"`
	Criteria   string    `json:"criteria,omitempty"`
	Results    int       `json:"results"`
	DurationMs int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
}

// Store persists audit events. Append-only.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

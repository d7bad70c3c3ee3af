// Package notify publishes job status changes to subscribers.
package notify

import (
	"context"

	"github.com/dgallion1/resumeparse/internal/resume"
)

// Event is one job status change.
type Event struct {
	JobID  string         `json:"job_id"`
	DocID  string         `json:"doc_id"`
	Status string         `json:"status"`
	Result *resume.Result `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Noop drops every event.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }

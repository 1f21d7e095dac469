// Package notify publishes the outcome of each newsletter run to interested
// listeners.
package notify

import (
	"context"
	"time"
)

// RunEvent describes one finished run.
type RunEvent struct {
	RunID       string     `json:"run_id"`
	Outcome     string     `json:"outcome"`
	ServiceDate string     `json:"service_date,omitempty"` // YYYY-MM-DD
	FailedStage string     `json:"failed_stage,omitempty"`
	Error       string     `json:"error,omitempty"`
	Unmatched   []string   `json:"unmatched_slots,omitempty"`
	TemplateID  string     `json:"template_id,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	DurationMS  int64      `json:"duration_ms"`
	Timestamp   time.Time  `json:"timestamp"`
}

// Notifier delivers run events.
type Notifier interface {
	Notify(ctx context.Context, event RunEvent) error
	Close() error
}

// Noop discards every event.
type Noop struct{}

func (Noop) Notify(context.Context, RunEvent) error { return nil }
func (Noop) Close() error                           { return nil }

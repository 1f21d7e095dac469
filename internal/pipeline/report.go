package pipeline

import (
	"fmt"
	"time"

	"git.home.luguber.info/inful/newsletter/internal/metrics"
	"git.home.luguber.info/inful/newsletter/internal/providers"
)

// Outcome is the terminal state of a run.
type Outcome string

const (
	OutcomeNotStarted Outcome = "not-started"
	OutcomePublished  Outcome = "published"
	OutcomePreviewed  Outcome = "previewed"
	OutcomeAborted    Outcome = "aborted"
)

// StageRecord is the result of one executed stage.
type StageRecord struct {
	Name       StageName           `json:"name"`
	DurationMS int64               `json:"duration_ms"`
	Result     metrics.ResultLabel `json:"result"`
	Error      string              `json:"error,omitempty"`
}

// Report summarizes a run. Stages holds only the stages that actually ran.
type Report struct {
	RunID        string                  `json:"run_id"`
	ServiceDate  time.Time               `json:"service_date"`
	Window       string                  `json:"window,omitempty"`
	NextWindow   string                  `json:"next_window,omitempty"`
	StartedAt    time.Time               `json:"started_at"`
	FinishedAt   time.Time               `json:"finished_at"`
	Outcome      Outcome                 `json:"outcome"`
	FailedStage  StageName               `json:"failed_stage,omitempty"`
	Error        string                  `json:"error,omitempty"`
	Retryable    bool                    `json:"retryable,omitempty"`
	Stages       []StageRecord           `json:"stages"`
	Slots        []string                `json:"slots,omitempty"`
	Unmatched    []string                `json:"unmatched_slots,omitempty"`
	Confirmation *providers.Confirmation `json:"confirmation,omitempty"`

	// Document is the composed template; only kept for previews.
	Document string `json:"-"`
}

func newReport(rc RunContext) *Report {
	return &Report{
		RunID:     rc.RunID,
		StartedAt: rc.StartedAt,
		Outcome:   OutcomeNotStarted,
		Stages:    []StageRecord{},
	}
}

func (r *Report) recordStage(name StageName, d time.Duration, result metrics.ResultLabel, err error) {
	rec := StageRecord{Name: name, DurationMS: d.Milliseconds(), Result: result}
	if err != nil {
		rec.Error = err.Error()
	}
	r.Stages = append(r.Stages, rec)
}

// Duration is the wall time of the run.
func (r *Report) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// StageDuration returns the duration recorded for name, if it ran.
func (r *Report) StageDuration(name StageName) (time.Duration, bool) {
	for _, s := range r.Stages {
		if s.Name == name {
			return time.Duration(s.DurationMS) * time.Millisecond, true
		}
	}
	return 0, false
}

// String summarizes a report on one line.
func (r *Report) String() string {
	if r.Outcome == OutcomeAborted {
		return fmt.Sprintf("run %s aborted at %s: %s", r.RunID, r.FailedStage, r.Error)
	}
	return fmt.Sprintf("run %s %s (%d stages, %d unmatched slots)", r.RunID, r.Outcome, len(r.Stages), len(r.Unmatched))
}

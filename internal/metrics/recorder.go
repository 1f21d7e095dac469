package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
)

// OutcomeLabel enumerates terminal run states.
type OutcomeLabel string

const (
	OutcomePublished OutcomeLabel = "published"
	OutcomePreviewed OutcomeLabel = "previewed"
	OutcomeAborted   OutcomeLabel = "aborted"
)

// Recorder defines observability hooks for run, stage and provider metrics.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	ObserveRunDuration(d time.Duration)
	IncRunOutcome(outcome OutcomeLabel)
	ObserveProviderCall(provider, operation string, d time.Duration, success bool)
	AddUnmatchedSlots(n int)
	IncRunRetry()
	SetLastPublished(t time.Time)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration)                {}
func (NoopRecorder) IncStageResult(string, ResultLabel)                        {}
func (NoopRecorder) ObserveRunDuration(time.Duration)                          {}
func (NoopRecorder) IncRunOutcome(OutcomeLabel)                                {}
func (NoopRecorder) ObserveProviderCall(string, string, time.Duration, bool) {}
func (NoopRecorder) AddUnmatchedSlots(int)                                     {}
func (NoopRecorder) IncRunRetry()                                              {}
func (NoopRecorder) SetLastPublished(time.Time)                                {}

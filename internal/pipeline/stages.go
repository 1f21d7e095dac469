package pipeline

import (
	"context"
	"errors"
	"time"

	nerrors "git.home.luguber.info/inful/newsletter/internal/errors"
	"git.home.luguber.info/inful/newsletter/internal/logfields"
	"git.home.luguber.info/inful/newsletter/internal/metrics"
)

// StageName identifies a pipeline stage.
type StageName string

const (
	StageResolveWindow            StageName = "ResolveWindow"
	StageBuildDirectory           StageName = "BuildDirectory"
	StageFetchScriptureReferences StageName = "FetchScriptureReferences"
	StageBuildScriptureFragments  StageName = "BuildScriptureFragments"
	StageBuildMusicFragment       StageName = "BuildMusicFragment"
	StageBuildCalendarsThisWeek   StageName = "BuildCalendarFragmentsThisWeek"
	StageBuildCalendarsNextWeek   StageName = "BuildCalendarFragmentsNextWeek"
	StageFetchTemplate            StageName = "FetchTemplate"
	StageCompose                  StageName = "Compose"
	StagePublish                  StageName = "Publish"
)

// StageDef binds a stage name to its implementation.
type StageDef struct {
	Name StageName
	Fn   func(ctx context.Context, rc RunContext, st *runState) error
}

// runStages executes stages in order, recording timing and stopping on the
// first failure. The returned error is always a stage-wrapped NewsletterError.
func (p *Pipeline) runStages(ctx context.Context, rc RunContext, st *runState, report *Report, stages []StageDef) error {
	for _, s := range stages {
		name := string(s.Name)
		if err := ctx.Err(); err != nil {
			wrapped := nerrors.StageFailed(name, err)
			report.recordStage(s.Name, 0, metrics.ResultCanceled, err)
			p.recorder.IncStageResult(name, metrics.ResultCanceled)
			report.FailedStage = s.Name
			return wrapped
		}

		rc.Logger.Info("Stage starting", logfields.Stage(name))
		t0 := time.Now()
		err := s.Fn(ctx, rc, st)
		dur := time.Since(t0)

		result := metrics.ResultSuccess
		if err != nil {
			result = metrics.ResultFatal
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				result = metrics.ResultCanceled
			}
		}
		report.recordStage(s.Name, dur, result, err)
		p.recorder.ObserveStageDuration(name, dur)
		p.recorder.IncStageResult(name, result)

		if err != nil {
			rc.Logger.Error("Stage failed",
				logfields.Stage(name),
				logfields.DurationMS(float64(dur.Microseconds())/1000),
				logfields.Error(err))
			report.FailedStage = s.Name
			return nerrors.StageFailed(name, err)
		}
		rc.Logger.Info("Stage complete",
			logfields.Stage(name),
			logfields.DurationMS(float64(dur.Microseconds())/1000))
	}
	return nil
}

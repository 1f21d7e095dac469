// Package pipeline runs one newsletter assembly end to end: it resolves the
// reporting window, builds every fragment from the collaborators, composes
// them into the source template and publishes the result. Stages run in a
// fixed order and the first failure ends the run without publishing.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/newsletter/internal/compose"
	"git.home.luguber.info/inful/newsletter/internal/config"
	nerrors "git.home.luguber.info/inful/newsletter/internal/errors"
	"git.home.luguber.info/inful/newsletter/internal/logfields"
	"git.home.luguber.info/inful/newsletter/internal/metrics"
	"git.home.luguber.info/inful/newsletter/internal/notify"
	"git.home.luguber.info/inful/newsletter/internal/providers"
	"git.home.luguber.info/inful/newsletter/internal/sequence"
)

// Pipeline assembles and publishes newsletters. It holds no per-run state and
// may be reused for any number of runs.
type Pipeline struct {
	cfg      *config.Config
	set      providers.Set
	composer *compose.Composer
	recorder metrics.Recorder
	notifier notify.Notifier
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithRecorder routes stage, run and provider metrics to rec.
func WithRecorder(rec metrics.Recorder) Option {
	return func(p *Pipeline) {
		if rec != nil {
			p.recorder = rec
		}
	}
}

// WithNotifier publishes a RunEvent after every run.
func WithNotifier(n notify.Notifier) Option {
	return func(p *Pipeline) {
		if n != nil {
			p.notifier = n
		}
	}
}

// WithLogger sets the base logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithClock overrides the time source used to resolve the service date.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithRunIDs overrides run id generation.
func WithRunIDs(newID func() string) Option {
	return func(p *Pipeline) { p.newID = newID }
}

// New validates cfg and set and returns a ready pipeline. No collaborator is
// called here. Passage lookups are routed through a single gate so at most one
// request is in flight, spaced by scripture.min_interval.
func New(cfg *config.Config, set providers.Set, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		return nil, nerrors.ConfigRequired("config")
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	if err := checkSet(set); err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:      cfg,
		recorder: metrics.NoopRecorder{},
		notifier: notify.Noop{},
		logger:   slog.Default(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, o := range opts {
		o(p)
	}

	set = providers.Instrument(set, p.recorder)
	set.Passages = providers.NewThrottledPassages(set.Passages, sequence.NewGate(cfg.Scripture.MinInterval))
	p.set = set

	p.composer = compose.New(cfg.Slots.Attribute)
	p.composer.Logger = p.logger
	return p, nil
}

func checkSet(set providers.Set) error {
	for _, c := range []struct {
		name    string
		missing bool
	}{
		{"directory", set.Directory == nil},
		{"calendars", set.Calendars == nil},
		{"passages", set.Passages == nil},
		{"playlists", set.Playlists == nil},
		{"templates", set.Templates == nil},
	} {
		if c.missing {
			return nerrors.ConfigRequired("providers." + c.name)
		}
	}
	return nil
}

// Run executes every stage including Publish. On failure the returned report
// has Outcome aborted and names the failed stage; nothing was published.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	return p.execute(ctx, true)
}

// Preview executes every stage except Publish and keeps the composed
// document in Report.Document.
func (p *Pipeline) Preview(ctx context.Context) (*Report, error) {
	return p.execute(ctx, false)
}

func (p *Pipeline) execute(ctx context.Context, publish bool) (*Report, error) {
	loc, err := p.cfg.Location()
	if err != nil {
		return nil, err
	}

	runID := p.newID()
	rc := RunContext{
		RunID:     runID,
		StartedAt: p.now(),
		Location:  loc,
		Publish:   publish,
		Logger:    p.logger.With(logfields.RunID(runID)),
	}
	report := newReport(rc)
	st := &runState{}

	rc.Logger.Info("Newsletter run starting", slog.Bool("publish", publish))
	runErr := p.runStages(ctx, rc, st, report, p.stages(publish))
	report.FinishedAt = p.now()
	p.finish(rc, st, report, runErr)

	p.recorder.ObserveRunDuration(report.Duration())
	switch report.Outcome {
	case OutcomePublished:
		p.recorder.IncRunOutcome(metrics.OutcomePublished)
		p.recorder.SetLastPublished(report.FinishedAt)
	case OutcomePreviewed:
		p.recorder.IncRunOutcome(metrics.OutcomePreviewed)
	default:
		p.recorder.IncRunOutcome(metrics.OutcomeAborted)
	}

	if err := p.notifier.Notify(context.WithoutCancel(ctx), eventFor(report)); err != nil {
		rc.Logger.Warn("Failed to publish run event", logfields.Error(err))
	}

	if runErr != nil {
		return report, runErr
	}
	return report, nil
}

func (p *Pipeline) finish(rc RunContext, st *runState, report *Report, runErr error) {
	if !st.window.ServiceDate.IsZero() {
		report.ServiceDate = st.window.ServiceDate
		report.Window = st.window.String()
		report.NextWindow = st.nextWindow.String()
	}
	if st.composed != nil {
		report.Slots = st.composed.Matched
		report.Unmatched = st.composed.Unmatched
	}

	if runErr != nil {
		report.Outcome = OutcomeAborted
		report.Error = runErr.Error()
		report.Retryable = nerrors.IsRetryable(runErr)
		rc.Logger.Error("Newsletter run aborted",
			logfields.Stage(string(report.FailedStage)),
			logfields.DurationMS(float64(report.Duration().Milliseconds())),
			logfields.Error(runErr))
		return
	}

	if rc.Publish {
		report.Outcome = OutcomePublished
		report.Confirmation = st.confirm
	} else {
		report.Outcome = OutcomePreviewed
		report.Document = st.composed.HTML
	}
	rc.Logger.Info("Newsletter run complete",
		logfields.Outcome(string(report.Outcome)),
		logfields.DurationMS(float64(report.Duration().Milliseconds())))
}

func eventFor(r *Report) notify.RunEvent {
	ev := notify.RunEvent{
		RunID:       r.RunID,
		Outcome:     string(r.Outcome),
		FailedStage: string(r.FailedStage),
		Error:       r.Error,
		Unmatched:   r.Unmatched,
		DurationMS:  r.Duration().Milliseconds(),
	}
	if !r.ServiceDate.IsZero() {
		ev.ServiceDate = r.ServiceDate.Format(time.DateOnly)
	}
	if r.Confirmation != nil {
		at := r.Confirmation.PublishedAt
		ev.TemplateID = r.Confirmation.TemplateID
		ev.PublishedAt = &at
	}
	return ev
}

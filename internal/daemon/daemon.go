// Package daemon runs the newsletter pipeline on a weekly schedule, retries
// runs that failed on a transient provider error, reloads its configuration
// when the file changes and exposes a small admin HTTP surface.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/newsletter/internal/config"
	nerrors "git.home.luguber.info/inful/newsletter/internal/errors"
	"git.home.luguber.info/inful/newsletter/internal/logfields"
	"git.home.luguber.info/inful/newsletter/internal/metrics"
	"git.home.luguber.info/inful/newsletter/internal/pipeline"
	"git.home.luguber.info/inful/newsletter/internal/retry"
	"git.home.luguber.info/inful/newsletter/internal/version"
)

// Runner executes one newsletter run.
type Runner interface {
	Run(ctx context.Context) (*pipeline.Report, error)
}

// Factory builds a Runner for a configuration, wiring rec into it.
type Factory func(cfg *config.Config, rec metrics.Recorder) (Runner, error)

// ErrRunInProgress is returned when a run is requested while one is active.
var ErrRunInProgress = nerrors.New(nerrors.CategoryDaemon, nerrors.SeverityWarning, "a run is already in progress")

const scheduledJobName = "weekly-newsletter"

// Daemon owns the scheduler, the config watcher and the admin server.
type Daemon struct {
	configPath string
	factory    Factory
	loader     func(string) (*config.Config, error)
	registry   *prom.Registry
	recorder   metrics.Recorder

	mu        sync.RWMutex // guards the fields below
	cfg       *config.Config
	runner    Runner
	policy    retry.Policy
	state     State
	startedAt time.Time
	jobID     string
	lastRunAt *time.Time
	last      *pipeline.Report
	held      bool   // runner is in use by the active run
	retired   Runner // replaced while held; closed when that run ends

	runActive atomic.Bool
	runs      atomic.Int64
	failures  atomic.Int64
	runWG     sync.WaitGroup

	scheduler *Scheduler
	watcher   *ConfigWatcher
	admin     *AdminServer
	runCtx    context.Context
	cancel    context.CancelFunc
}

// Option customizes a Daemon.
type Option func(*Daemon)

// WithLoader replaces config.Load for reloads.
func WithLoader(load func(string) (*config.Config, error)) Option {
	return func(d *Daemon) { d.loader = load }
}

// New builds a daemon for cfg, loaded from configPath. An empty configPath
// disables reloading.
func New(configPath string, cfg *config.Config, factory Factory, opts ...Option) (*Daemon, error) {
	if cfg == nil {
		return nil, nerrors.ConfigRequired("config")
	}
	if factory == nil {
		return nil, nerrors.InternalError("daemon requires a runner factory", nil)
	}

	reg := prom.NewRegistry()
	d := &Daemon{
		configPath: configPath,
		factory:    factory,
		loader:     config.Load,
		registry:   reg,
		recorder:   metrics.NewPrometheusRecorder(reg),
		state:      StateStopped,
	}
	for _, o := range opts {
		o(d)
	}

	runner, err := factory(cfg, d.recorder)
	if err != nil {
		return nil, err
	}
	d.cfg = cfg
	d.runner = runner
	d.policy = retry.FromConfig(cfg.Daemon.Retry)
	return d, nil
}

// Start schedules the weekly run and starts the watcher and admin server.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.state != StateStopped {
		d.mu.Unlock()
		return nerrors.New(nerrors.CategoryDaemon, nerrors.SeverityError, "daemon already started")
	}
	ctx, cancel := context.WithCancel(ctx)
	d.runCtx = ctx
	d.cancel = cancel
	cfg := d.cfg
	d.mu.Unlock()

	loc, err := cfg.Location()
	if err != nil {
		cancel()
		return err
	}
	sched, err := NewScheduler(loc)
	if err != nil {
		cancel()
		return nerrors.Wrap(err, nerrors.CategoryDaemon, nerrors.SeverityFatal, "failed to start scheduler")
	}
	jobID, err := sched.ScheduleCron(scheduledJobName, cfg.Daemon.Schedule, func() { d.scheduledRun(ctx) })
	if err != nil {
		cancel()
		return nerrors.Wrap(err, nerrors.CategoryDaemon, nerrors.SeverityFatal, "failed to schedule run").
			WithContext("schedule", cfg.Daemon.Schedule)
	}
	sched.Start(ctx)

	d.mu.Lock()
	d.scheduler = sched
	d.jobID = jobID
	d.state = StateRunning
	d.startedAt = time.Now()
	d.mu.Unlock()

	if d.configPath != "" {
		w, err := NewConfigWatcher(d.configPath, d.Reload)
		if err != nil {
			slog.Warn("Config watcher unavailable", logfields.Error(err))
		} else if err := w.Start(ctx); err != nil {
			slog.Warn("Config watcher unavailable", logfields.Error(err))
		} else {
			d.watcher = w
		}
	}

	if cfg.Daemon.AdminAddr != "" {
		d.admin = NewAdminServer(cfg.Daemon.AdminAddr, d)
		if err := d.admin.Start(); err != nil {
			_ = d.Stop(context.Background())
			return err
		}
	}

	slog.Info("Daemon started",
		logfields.Schedule(cfg.Daemon.Schedule),
		slog.String("admin_addr", cfg.Daemon.AdminAddr),
		slog.String("version", version.Version))

	if cfg.Daemon.RunOnStart {
		d.goRun(ctx)
	}
	return nil
}

// Stop halts scheduling, waits for an active run and shuts down the servers.
func (d *Daemon) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.state != StateRunning {
		d.mu.Unlock()
		return nil
	}
	d.state = StateStopping
	sched, watcher, admin, cancel := d.scheduler, d.watcher, d.admin, d.cancel
	d.mu.Unlock()

	var firstErr error
	if watcher != nil {
		_ = watcher.Stop(ctx)
	}
	if sched != nil {
		if err := sched.Stop(ctx); err != nil {
			firstErr = err
		}
	}
	if admin != nil {
		if err := admin.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		d.runWG.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		if firstErr == nil {
			firstErr = ctx.Err()
		}
	}

	d.mu.Lock()
	d.state = StateStopped
	runner := d.runner
	d.mu.Unlock()
	closeRunner(runner)
	slog.Info("Daemon stopped")
	return firstErr
}

// TriggerRun runs the pipeline now, under the retry supervisor, and waits for
// the outcome. It fails fast with ErrRunInProgress if a run is active.
func (d *Daemon) TriggerRun(ctx context.Context) (*pipeline.Report, error) {
	if !d.runActive.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	d.runWG.Add(1)
	defer d.runWG.Done()
	defer d.runActive.Store(false)
	return d.supervise(ctx)
}

// RunAsync starts a supervised run in the background on the daemon's
// context. It returns false if a run is already active.
func (d *Daemon) RunAsync() bool {
	d.mu.RLock()
	ctx := d.runCtx
	d.mu.RUnlock()
	if ctx == nil {
		ctx = context.Background()
	}
	return d.goRun(ctx)
}

func (d *Daemon) goRun(ctx context.Context) bool {
	if !d.runActive.CompareAndSwap(false, true) {
		return false
	}
	d.runWG.Add(1)
	go func() {
		defer d.runWG.Done()
		defer d.runActive.Store(false)
		_, _ = d.supervise(ctx)
	}()
	return true
}

func (d *Daemon) scheduledRun(ctx context.Context) {
	if _, err := d.TriggerRun(ctx); errors.Is(err, ErrRunInProgress) {
		slog.Warn("Skipping scheduled run; previous run still active")
	}
}

// supervise re-invokes the whole run while it fails with a retryable error
// and the policy allows another attempt.
func (d *Daemon) supervise(ctx context.Context) (*pipeline.Report, error) {
	d.mu.Lock()
	runner, policy := d.runner, d.policy
	d.held = true
	d.mu.Unlock()
	defer d.release()

	for attempt := 0; ; attempt++ {
		report, err := runner.Run(ctx)
		d.record(report, err)
		if err == nil {
			return report, nil
		}
		if !nerrors.IsRetryable(err) || attempt >= policy.MaxRetries || ctx.Err() != nil {
			return report, err
		}

		delay := policy.Delay(attempt + 1)
		slog.Warn("Run failed with a transient error; retrying",
			slog.Int("attempt", attempt+1),
			slog.Int("max_retries", policy.MaxRetries),
			slog.Duration("delay", delay),
			logfields.Error(err))
		d.recorder.IncRunRetry()
		if werr := policy.Wait(ctx, attempt+1); werr != nil {
			return report, err
		}
	}
}

// release ends the active run's hold on its runner, closing it if a reload
// replaced it meanwhile.
func (d *Daemon) release() {
	d.mu.Lock()
	retired := d.retired
	d.retired = nil
	d.held = false
	d.mu.Unlock()
	if retired != nil {
		closeRunner(retired)
	}
}

func (d *Daemon) record(report *pipeline.Report, err error) {
	d.runs.Add(1)
	if err != nil {
		d.failures.Add(1)
	}
	now := time.Now()
	d.mu.Lock()
	d.lastRunAt = &now
	if report != nil {
		d.last = report
	}
	d.mu.Unlock()
}

// Reload re-reads the configuration, rebuilds the runner and reschedules the
// weekly job if its expression changed. A bad file keeps the old setup.
func (d *Daemon) Reload(ctx context.Context) error {
	cfg, err := d.loader(d.configPath)
	if err != nil {
		return fmt.Errorf("reload config: %w", err)
	}
	runner, err := d.factory(cfg, d.recorder)
	if err != nil {
		return fmt.Errorf("rebuild runner: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	old, oldRunner := d.cfg, d.runner
	d.cfg = cfg
	d.runner = runner
	if d.held {
		d.retired = oldRunner
		d.held = false
	} else {
		closeRunner(oldRunner)
	}
	d.policy = retry.FromConfig(cfg.Daemon.Retry)

	if d.scheduler != nil && old.Daemon.Schedule != cfg.Daemon.Schedule {
		if err := d.scheduler.Remove(d.jobID); err != nil {
			slog.Warn("Failed to remove previous schedule", logfields.Error(err))
		}
		id, err := d.scheduler.ScheduleCron(scheduledJobName, cfg.Daemon.Schedule, func() { d.scheduledRun(ctx) })
		if err != nil {
			return fmt.Errorf("reschedule: %w", err)
		}
		d.jobID = id
	}
	slog.Info("Configuration reloaded", logfields.Schedule(cfg.Daemon.Schedule))
	return nil
}

// closeRunner releases resources held by runners that own any.
func closeRunner(r Runner) {
	if c, ok := r.(io.Closer); ok {
		if err := c.Close(); err != nil {
			slog.Warn("Failed to close runner", logfields.Error(err))
		}
	}
}

// Status returns a snapshot for the admin server.
func (d *Daemon) Status() Status {
	d.mu.RLock()
	defer d.mu.RUnlock()

	st := Status{
		State:      d.state,
		Version:    version.Version,
		ConfigFile: d.configPath,
		Schedule:   d.cfg.Daemon.Schedule,
		RunActive:  d.runActive.Load(),
		Runs:       d.runs.Load(),
		Failures:   d.failures.Load(),
		LastRunAt:  d.lastRunAt,
		LastReport: d.last,
	}
	if !d.startedAt.IsZero() {
		st.StartedAt = d.startedAt
		st.Uptime = time.Since(d.startedAt).Round(time.Second).String()
	}
	if d.scheduler != nil {
		if next := d.scheduler.NextRun(d.jobID); !next.IsZero() {
			st.NextRun = &next
		}
	}
	return st
}

// Registry exposes the daemon's metrics registry.
func (d *Daemon) Registry() *prom.Registry { return d.registry }

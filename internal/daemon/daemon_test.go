package daemon

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/newsletter/internal/config"
	nerrors "git.home.luguber.info/inful/newsletter/internal/errors"
	"git.home.luguber.info/inful/newsletter/internal/metrics"
	"git.home.luguber.info/inful/newsletter/internal/pipeline"
)

type scriptedRunner struct {
	mu    sync.Mutex
	calls int
	errs  []error // one per call; calls past the end succeed
	block chan struct{}
}

func (r *scriptedRunner) Run(ctx context.Context) (*pipeline.Report, error) {
	r.mu.Lock()
	n := r.calls
	r.calls++
	r.mu.Unlock()

	if r.block != nil {
		select {
		case <-r.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	report := &pipeline.Report{RunID: "run", Outcome: pipeline.OutcomePublished}
	if n < len(r.errs) && r.errs[n] != nil {
		report.Outcome = pipeline.OutcomeAborted
		return report, r.errs[n]
	}
	return report, nil
}

// closingRunner counts Close calls.
type closingRunner struct {
	scriptedRunner
	closes atomic.Int32
}

func (r *closingRunner) Close() error {
	r.closes.Add(1)
	return nil
}

func (r *scriptedRunner) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func testConfig(maxRetries int) *config.Config {
	return &config.Config{
		Timezone: "UTC",
		Daemon: config.DaemonConfig{
			Schedule: "0 6 * * 4",
			Retry: config.RetryConfig{
				Backoff:    config.RetryBackoffFixed,
				Initial:    time.Millisecond,
				Max:        time.Millisecond,
				MaxRetries: maxRetries,
			},
		},
	}
}

func newTestDaemon(t *testing.T, cfg *config.Config, runner Runner, opts ...Option) *Daemon {
	t.Helper()
	d, err := New("", cfg, func(*config.Config, metrics.Recorder) (Runner, error) { return runner, nil }, opts...)
	require.NoError(t, err)
	return d
}

func transient() error {
	return nerrors.ProviderFailed("passages", "getPassageMarkup", errors.New("503"))
}

func scrapeRegistry(t *testing.T, d *Daemon) string {
	t.Helper()
	srv := httptest.NewServer(metrics.HTTPHandler(d.Registry()))
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestNewRequiresConfigAndFactory(t *testing.T) {
	_, err := New("", nil, func(*config.Config, metrics.Recorder) (Runner, error) { return nil, nil })
	require.Error(t, err)
	assert.True(t, nerrors.IsCategory(err, nerrors.CategoryConfig))

	_, err = New("", testConfig(0), nil)
	require.Error(t, err)
}

func TestNewPropagatesFactoryError(t *testing.T) {
	boom := nerrors.ConfigRequired("providers.fixtures")
	_, err := New("", testConfig(0), func(*config.Config, metrics.Recorder) (Runner, error) { return nil, boom })
	require.ErrorIs(t, err, boom)
}

func TestTriggerRunRetriesTransientFailures(t *testing.T) {
	runner := &scriptedRunner{errs: []error{transient(), transient()}}
	d := newTestDaemon(t, testConfig(3), runner)

	report, err := d.TriggerRun(context.Background())
	require.NoError(t, err)
	assert.Equal(t, pipeline.OutcomePublished, report.Outcome)
	assert.Equal(t, 3, runner.Calls())

	st := d.Status()
	assert.Equal(t, int64(3), st.Runs)
	assert.Equal(t, int64(2), st.Failures)
	require.NotNil(t, st.LastReport)
	assert.Equal(t, pipeline.OutcomePublished, st.LastReport.Outcome)
	assert.Contains(t, scrapeRegistry(t, d), "newsletter_run_retries_total 2")
}

func TestTriggerRunDoesNotRetryPermanentFailures(t *testing.T) {
	runner := &scriptedRunner{errs: []error{nerrors.CompositionFailed(errors.New("bad template"))}}
	d := newTestDaemon(t, testConfig(3), runner)

	_, err := d.TriggerRun(context.Background())
	require.Error(t, err)
	assert.True(t, nerrors.IsCategory(err, nerrors.CategoryComposition))
	assert.Equal(t, 1, runner.Calls())
}

func TestTriggerRunGivesUpAfterMaxRetries(t *testing.T) {
	runner := &scriptedRunner{errs: []error{transient(), transient(), transient(), transient()}}
	d := newTestDaemon(t, testConfig(2), runner)

	report, err := d.TriggerRun(context.Background())
	require.Error(t, err)
	assert.True(t, nerrors.IsRetryable(err))
	assert.Equal(t, pipeline.OutcomeAborted, report.Outcome)
	assert.Equal(t, 3, runner.Calls())
}

func TestTriggerRunRejectsConcurrentRuns(t *testing.T) {
	runner := &scriptedRunner{block: make(chan struct{})}
	d := newTestDaemon(t, testConfig(0), runner)

	require.True(t, d.RunAsync())
	require.Eventually(t, func() bool { return runner.Calls() == 1 }, time.Second, 5*time.Millisecond)
	assert.True(t, d.Status().RunActive)

	_, err := d.TriggerRun(context.Background())
	require.ErrorIs(t, err, ErrRunInProgress)
	assert.False(t, d.RunAsync())

	close(runner.block)
	require.Eventually(t, func() bool { return !d.Status().RunActive }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, runner.Calls())
}

func TestStartStop(t *testing.T) {
	cfg := testConfig(0)
	cfg.Daemon.AdminAddr = "127.0.0.1:0"
	d := newTestDaemon(t, cfg, &scriptedRunner{})

	require.NoError(t, d.Start(context.Background()))
	var st Status
	require.Eventually(t, func() bool {
		st = d.Status()
		return st.NextRun != nil
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, StateRunning, st.State)
	assert.Equal(t, time.Thursday, st.NextRun.Weekday())
	assert.Equal(t, 6, st.NextRun.Hour())

	require.Error(t, d.Start(context.Background()), "second start")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, d.Stop(ctx))
	assert.Equal(t, StateStopped, d.Status().State)
	require.NoError(t, d.Stop(ctx), "stop is idempotent")
}

func TestRunOnStart(t *testing.T) {
	cfg := testConfig(0)
	cfg.Daemon.RunOnStart = true
	runner := &scriptedRunner{}
	d := newTestDaemon(t, cfg, runner)

	require.NoError(t, d.Start(context.Background()))
	t.Cleanup(func() { _ = d.Stop(context.Background()) })
	require.Eventually(t, func() bool { return d.Status().Runs == 1 }, 2*time.Second, 5*time.Millisecond)
}

func TestReloadSwapsRunnerAndSchedule(t *testing.T) {
	first := &scriptedRunner{}
	second := &scriptedRunner{}
	runners := []Runner{first, second}

	next := testConfig(0)
	next.Daemon.Schedule = "30 7 * * 5"

	d, err := New("", testConfig(0),
		func(*config.Config, metrics.Recorder) (Runner, error) {
			r := runners[0]
			runners = runners[1:]
			return r, nil
		},
		WithLoader(func(string) (*config.Config, error) { return next, nil }))
	require.NoError(t, err)

	require.NoError(t, d.Start(context.Background()))
	t.Cleanup(func() { _ = d.Stop(context.Background()) })

	require.NoError(t, d.Reload(context.Background()))
	assert.Equal(t, "30 7 * * 5", d.Status().Schedule)
	require.Eventually(t, func() bool {
		next := d.Status().NextRun
		return next != nil && next.Weekday() == time.Friday
	}, 2*time.Second, 10*time.Millisecond)

	_, err = d.TriggerRun(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, first.Calls())
	assert.Equal(t, 1, second.Calls())
}

func TestReloadDuringRunClosesReplacedRunnerAfterRun(t *testing.T) {
	first := &closingRunner{scriptedRunner: scriptedRunner{block: make(chan struct{})}}
	second := &closingRunner{}
	third := &closingRunner{}
	runners := []Runner{first, second, third}

	d, err := New("", testConfig(0),
		func(*config.Config, metrics.Recorder) (Runner, error) {
			r := runners[0]
			runners = runners[1:]
			return r, nil
		},
		WithLoader(func(string) (*config.Config, error) { return testConfig(0), nil }))
	require.NoError(t, err)

	require.True(t, d.RunAsync())
	require.Eventually(t, func() bool { return first.Calls() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, d.Reload(context.Background()))
	assert.Equal(t, int32(0), first.closes.Load(), "runner in use must stay open")

	// second was never used by a run, so a further reload closes it at once.
	require.NoError(t, d.Reload(context.Background()))
	assert.Equal(t, int32(1), second.closes.Load())

	close(first.block)
	require.Eventually(t, func() bool { return first.closes.Load() == 1 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return !d.Status().RunActive }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(0), third.closes.Load())

	_, err = d.TriggerRun(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, third.Calls())
	assert.Equal(t, int32(1), first.closes.Load(), "closed exactly once")
}

func TestReloadClosesIdleRunner(t *testing.T) {
	first := &closingRunner{}
	second := &closingRunner{}
	runners := []Runner{first, second}

	d, err := New("", testConfig(0),
		func(*config.Config, metrics.Recorder) (Runner, error) {
			r := runners[0]
			runners = runners[1:]
			return r, nil
		},
		WithLoader(func(string) (*config.Config, error) { return testConfig(0), nil }))
	require.NoError(t, err)

	require.NoError(t, d.Reload(context.Background()))
	assert.Equal(t, int32(1), first.closes.Load())
	assert.Equal(t, int32(0), second.closes.Load())
}

func TestReloadKeepsOldSetupOnBadConfig(t *testing.T) {
	runner := &scriptedRunner{}
	d := newTestDaemon(t, testConfig(0), runner,
		WithLoader(func(string) (*config.Config, error) { return nil, nerrors.ConfigRequired("template.source_id") }))

	err := d.Reload(context.Background())
	require.Error(t, err)
	assert.True(t, nerrors.IsCategory(err, nerrors.CategoryConfig))
	assert.Equal(t, "0 6 * * 4", d.Status().Schedule)

	_, err = d.TriggerRun(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, runner.Calls())
}

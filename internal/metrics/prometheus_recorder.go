package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "newsletter"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stageDuration *prom.HistogramVec
	stageResults  *prom.CounterVec
	runDuration   prom.Histogram
	runOutcome    *prom.CounterVec
	providerCalls *prom.HistogramVec
	unmatched     prom.Counter
	retries       prom.Counter
	lastPublished prom.Gauge
}

// NewPrometheusRecorder constructs the collectors and registers them with reg.
func NewPrometheusRecorder(reg prom.Registerer) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual pipeline stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		stageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"}),
		runDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Total pipeline run duration",
			Buckets:   prom.DefBuckets,
		}),
		runOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "run_outcomes_total",
			Help:      "Pipeline runs by terminal state",
		}, []string{"outcome"}),
		providerCalls: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_call_duration_seconds",
			Help:      "Duration of collaborator calls",
			Buckets:   prom.DefBuckets,
		}, []string{"provider", "operation", "result"}),
		unmatched: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "unmatched_slots_total",
			Help:      "Slot keys that matched no template element",
		}),
		retries: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "run_retries_total",
			Help:      "Whole-run retries issued by the daemon supervisor",
		}),
		lastPublished: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "last_published_timestamp_seconds",
			Help:      "Unix time of the last successful publish",
		}),
	}
	reg.MustRegister(pr.stageDuration, pr.stageResults, pr.runDuration, pr.runOutcome,
		pr.providerCalls, pr.unmatched, pr.retries, pr.lastPublished)
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncRunOutcome(outcome OutcomeLabel) {
	if p == nil {
		return
	}
	p.runOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObserveProviderCall(provider, operation string, d time.Duration, success bool) {
	if p == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.providerCalls.WithLabelValues(provider, operation, res).Observe(d.Seconds())
}

func (p *PrometheusRecorder) AddUnmatchedSlots(n int) {
	if p == nil || n <= 0 {
		return
	}
	p.unmatched.Add(float64(n))
}

func (p *PrometheusRecorder) IncRunRetry() {
	if p == nil {
		return
	}
	p.retries.Inc()
}

func (p *PrometheusRecorder) SetLastPublished(t time.Time) {
	if p == nil {
		return
	}
	p.lastPublished.Set(float64(t.Unix()))
}

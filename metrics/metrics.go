// Package metrics exports run verdicts to a Prometheus Pushgateway so
// alerting can fire on failed or missing runs.
package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/hairizuanbinnoorazman/synthetic-monitor/logger"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/runner"
)

const namespace = "synthetic_monitor"

// DefaultJob is the Pushgateway job label used when none is configured.
const DefaultJob = "synthetic_monitor"

// Pusher pushes the gauges of the latest run. Each push replaces the
// previous group, so the gateway always holds one run per profile kind.
type Pusher struct {
	url    string
	job    string
	logger logger.Logger

	registry     *prometheus.Registry
	success      prometheus.Gauge
	duration     prometheus.Gauge
	lastRun      prometheus.Gauge
	stepDuration *prometheus.GaugeVec
	stepSuccess  *prometheus.GaugeVec
}

var _ runner.Reporter = (*Pusher)(nil)

// NewPusher creates a Pusher for the Pushgateway at url.
func NewPusher(url, job string, log logger.Logger) *Pusher {
	if job == "" {
		job = DefaultJob
	}
	if log == nil {
		log = logger.Nop()
	}
	p := &Pusher{
		url:      url,
		job:      job,
		logger:   log,
		registry: prometheus.NewRegistry(),
		success: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "success",
			Help:      "1 if the last run passed every step, 0 otherwise.",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "duration_seconds",
			Help:      "Wall time of the last run.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run started.",
		}),
		stepDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Wall time of each executed step of the last run.",
		}, []string{"step"}),
		stepSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "step_success",
			Help:      "1 if the step passed in the last run, 0 otherwise.",
		}, []string{"step"}),
	}
	p.registry.MustRegister(p.success, p.duration, p.lastRun, p.stepDuration, p.stepSuccess)
	return p
}

// Registry exposes the collectors, for tests and local scraping.
func (p *Pusher) Registry() *prometheus.Registry {
	return p.registry
}

// Report implements runner.Reporter.
func (p *Pusher) Report(ctx context.Context, v runner.Verdict) error {
	p.observe(v)

	err := push.New(p.url, p.job).
		Gatherer(p.registry).
		Grouping("kind", string(v.Kind)).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("push metrics to %s: %w", p.url, err)
	}

	p.logger.Debug(ctx, "run metrics pushed", map[string]interface{}{
		"run_id":      v.RunID,
		"pushgateway": p.url,
		"job":         p.job,
	})
	return nil
}

func (p *Pusher) observe(v runner.Verdict) {
	if v.OK() {
		p.success.Set(1)
	} else {
		p.success.Set(0)
	}
	p.duration.Set(v.Elapsed.Seconds())
	p.lastRun.Set(float64(v.StartedAt.Unix()))

	p.stepDuration.Reset()
	p.stepSuccess.Reset()
	for _, s := range v.Steps {
		p.stepDuration.WithLabelValues(s.Name).Set(s.Duration.Seconds())
		ok := 0.0
		if s.Err == nil {
			ok = 1
		}
		p.stepSuccess.WithLabelValues(s.Name).Set(ok)
	}
}

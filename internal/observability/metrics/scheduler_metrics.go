package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	RunOutcomeOK      = "ok"
	RunOutcomeError   = "error"
	RunOutcomeDryRun  = "dry_run"
	RunOutcomeSkipped = "skipped"
)

const (
	EmailResultSent       = "sent"
	EmailResultSuppressed = "suppressed"
	EmailResultError      = "error"
)

// SchedulerMetrics captures daily alert run health signals.
type SchedulerMetrics struct {
	runs        *prometheus.CounterVec
	runDuration prometheus.Observer
	checked     prometheus.Counter
	triggered   prometheus.Counter
	emails      *prometheus.CounterVec
}

var (
	schedulerMetricsOnce sync.Once
	schedulerMetrics     *SchedulerMetrics
)

// Scheduler returns the singleton scheduler metrics registry.
func Scheduler() *SchedulerMetrics {
	return SchedulerWithConfig(Config{})
}

// SchedulerWithConfig returns the singleton scheduler metrics registry using config labels.
func SchedulerWithConfig(cfg Config) *SchedulerMetrics {
	schedulerMetricsOnce.Do(func() {
		schedulerMetrics = newSchedulerMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return schedulerMetrics
}

// ResetSchedulerMetricsForTest resets the scheduler metrics singleton for tests.
func ResetSchedulerMetricsForTest() {
	schedulerMetricsOnce = sync.Once{}
	schedulerMetrics = nil
}

func newSchedulerMetrics(registerer prometheus.Registerer, cfg Config) *SchedulerMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	labels := constLabels(cfg)

	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "alerts_scheduler_runs_total",
		Help:        "Daily alert evaluation runs by outcome.",
		ConstLabels: labels,
	}, []string{"outcome"})
	runDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:        "alerts_scheduler_run_duration_seconds",
		Help:        "Daily alert evaluation run latency.",
		Buckets:     []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		ConstLabels: labels,
	})
	checked := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "alerts_scheduler_checked_total",
		Help:        "Alerts checked against warehouse snapshots.",
		ConstLabels: labels,
	})
	triggered := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "alerts_scheduler_triggered_total",
		Help:        "Alerts whose trigger condition matched.",
		ConstLabels: labels,
	})
	emails := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "alerts_scheduler_emails_total",
		Help:        "Digest email outcomes by result.",
		ConstLabels: labels,
	}, []string{"result"})

	for _, collector := range []prometheus.Collector{runs, runDuration, checked, triggered, emails} {
		if err := registerer.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			panic(err)
		}
	}

	return &SchedulerMetrics{
		runs:        runs,
		runDuration: runDuration,
		checked:     checked,
		triggered:   triggered,
		emails:      emails,
	}
}

// ObserveRun records one finished run with its outcome and duration.
func (m *SchedulerMetrics) ObserveRun(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome = normalizeLabel(outcome)
	m.runs.WithLabelValues(outcome).Inc()
	m.runDuration.Observe(elapsed.Seconds())
}

// AddChecked records alerts checked during a run.
func (m *SchedulerMetrics) AddChecked(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.checked.Add(float64(count))
}

// AddTriggered records alerts triggered during a run.
func (m *SchedulerMetrics) AddTriggered(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.triggered.Add(float64(count))
}

// AddEmails records digest email outcomes.
func (m *SchedulerMetrics) AddEmails(result string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.emails.WithLabelValues(normalizeLabel(result)).Add(float64(count))
}

func normalizeLabel(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return "unknown"
	}
	return value
}

// Package metrics exposes Prometheus collectors for completion and claim runs.
//
// A nil *Metrics is valid and records nothing, so one-shot commands can run
// without a registry.
package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "mcagent"

// Metrics holds the collectors updated by the completion coordinator and the
// claim client.
type Metrics struct {
	runs           *prometheus.CounterVec
	runDuration    *prometheus.HistogramVec
	tasksCompleted *prometheus.CounterVec
	tasksFailed    *prometheus.CounterVec
	tasksSkipped   prometheus.Counter
	claims         *prometheus.CounterVec
}

// New registers the collectors with reg. A nil reg uses the default registerer.
// Collectors already registered under the same name are reused.
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Number of completed runs by command.",
		}, []string{"command"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a single run by command.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"command"}),
		tasksCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_completed_total",
			Help:      "Tasks moved to review, by summary source and extraction strategy.",
		}, []string{"source", "strategy"}),
		tasksFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_failed_total",
			Help:      "Tasks whose completion failed, by phase.",
		}, []string{"phase"}),
		tasksSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_skipped_total",
			Help:      "In-progress tasks skipped because they carry no session label.",
		}),
		claims: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "claims_total",
			Help:      "Tasks claimed by the poller, by source queue.",
		}, []string{"source"}),
	}

	var err error
	if m.runs, err = register(reg, m.runs); err != nil {
		return nil, err
	}
	if m.runDuration, err = register(reg, m.runDuration); err != nil {
		return nil, err
	}
	if m.tasksCompleted, err = register(reg, m.tasksCompleted); err != nil {
		return nil, err
	}
	if m.tasksFailed, err = register(reg, m.tasksFailed); err != nil {
		return nil, err
	}
	if m.tasksSkipped, err = register(reg, m.tasksSkipped); err != nil {
		return nil, err
	}
	if m.claims, err = register(reg, m.claims); err != nil {
		return nil, err
	}
	return m, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		var zero T
		return zero, fmt.Errorf("registering metric: %w", err)
	}
	return c, nil
}

// ObserveRun records one finished run of command.
func (m *Metrics) ObserveRun(command string, d time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(command).Inc()
	m.runDuration.WithLabelValues(command).Observe(d.Seconds())
}

// TaskCompleted records a task moved to review.
// strategy is empty when the default summary was used.
func (m *Metrics) TaskCompleted(source, strategy string) {
	if m == nil {
		return
	}
	if strategy == "" {
		strategy = "none"
	}
	m.tasksCompleted.WithLabelValues(source, strategy).Inc()
}

// TaskFailed records a completion failure in phase ("results" or "move").
func (m *Metrics) TaskFailed(phase string) {
	if m == nil {
		return
	}
	m.tasksFailed.WithLabelValues(phase).Inc()
}

// TaskSkipped records an unlabeled in-progress task.
func (m *Metrics) TaskSkipped() {
	if m == nil {
		return
	}
	m.tasksSkipped.Inc()
}

// Claimed records a successful claim from source ("ready" or "orphaned").
func (m *Metrics) Claimed(source string) {
	if m == nil {
		return
	}
	m.claims.WithLabelValues(source).Inc()
}

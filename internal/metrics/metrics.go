// Package metrics records deploy metrics and pushes them to a Prometheus
// Pushgateway, since a ranchup run is too short-lived to be scraped.
package metrics

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/imamik/ranchup/internal/upgrade"
)

const (
	namespace = "ranchup"
	subsystem = "deploy"
	// Job is the Pushgateway job name.
	Job = "ranchup"
)

// Recorder holds the metrics of one process in its own registry. The
// service is not a metric label: pushes are grouped by it instead.
type Recorder struct {
	registry *prometheus.Registry

	runsTotal      *prometheus.CounterVec
	runDuration    *prometheus.HistogramVec
	pollsTotal     *prometheus.CounterVec
	transitions    *prometheus.CounterVec
	lastSuccess    prometheus.Gauge
	notifyFailures prometheus.Counter

	mu      sync.Mutex
	service string
}

var _ upgrade.Notifier = (*Recorder)(nil)

// NewRecorder creates a recorder with all metrics registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "runs_total",
				Help:      "Total number of upgrade runs by result",
			},
			[]string{"result"},
		),
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "duration_seconds",
				Help:      "Duration of upgrade runs in seconds",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 12), // 1s to ~34min
			},
			[]string{"result"},
		),
		pollsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "polls_total",
				Help:      "Total number of service status polls by reported status",
			},
			[]string{"status"},
		),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "state_transitions_total",
				Help:      "Total number of state machine transitions by target state",
			},
			[]string{"state"},
		),
		lastSuccess: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "last_success_timestamp_seconds",
				Help:      "Unix time of the last successful upgrade",
			},
		),
		notifyFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "notification_failures_total",
				Help:      "Total number of notifications that could not be delivered",
			},
		),
	}
	r.registry.MustRegister(
		r.runsTotal,
		r.runDuration,
		r.pollsTotal,
		r.transitions,
		r.lastSuccess,
		r.notifyFailures,
	)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Notify implements upgrade.Notifier by recording the outcome.
func (r *Recorder) Notify(_ context.Context, outcome upgrade.Outcome) error {
	r.setService(outcome.Service)
	result := outcome.Kind.String()
	r.runsTotal.WithLabelValues(result).Inc()
	r.runDuration.WithLabelValues(result).Observe(outcome.Duration.Seconds())
	if outcome.Succeeded() {
		r.lastSuccess.Set(float64(outcome.Started.Add(outcome.Duration).Unix()))
	}
	return nil
}

// NotificationFailed counts an undeliverable notification.
func (r *Recorder) NotificationFailed() {
	r.notifyFailures.Inc()
}

// Observe returns an observer that forwards to next and counts polls and
// transitions.
func (r *Recorder) Observe(next upgrade.Observer) upgrade.Observer {
	return &observer{next: next, r: r}
}

// Push sends all metrics to the Pushgateway at url, grouped by service.
func (r *Recorder) Push(ctx context.Context, url string) error {
	pusher := push.New(url, Job).Gatherer(r.registry)
	if svc := r.currentService(); svc != "" {
		pusher = pusher.Grouping("service", svc)
	}
	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", url, err)
	}
	return nil
}

func (r *Recorder) setService(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.service = s
}

func (r *Recorder) currentService() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.service
}

type observer struct {
	next upgrade.Observer
	r    *Recorder
}

func (o *observer) Printf(format string, v ...any) {
	o.next.Printf(format, v...)
}

func (o *observer) Event(event upgrade.Event) {
	o.next.Event(event)
	switch event.Type {
	case upgrade.EventPoll:
		o.r.pollsTotal.WithLabelValues(event.Fields["status"]).Inc()
	case upgrade.EventStateChanged:
		o.r.transitions.WithLabelValues(string(event.State)).Inc()
	}
}

func (o *observer) WithFields(fields map[string]string) upgrade.Observer {
	return &observer{next: o.next.WithFields(fields), r: o.r}
}

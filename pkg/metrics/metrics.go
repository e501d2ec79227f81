// Package metrics handles processing and exposing scan metrics for
// Deckhand. One Metric is recorded per update session; gauges hold the
// last session's results and counters accumulate across the process
// lifetime, for scrape exposure in schedule mode.
package metrics

import (
	"errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metric holds data points from one update session.
type Metric struct {
	Scanned int // Accessories scanned.
	Stale   int // Accessories with an update available.
	Updated int // Accessories whose manifest was rewritten.
	Failed  int // Accessories whose rewrite failed.
	Unknown int // Accessories whose lookup could not be completed.
}

// Metrics registers and updates the Prometheus collectors for update
// sessions. Safe for concurrent use.
type Metrics struct {
	mu sync.Mutex

	scanned prometheus.Gauge
	stale   prometheus.Gauge
	updated prometheus.Gauge
	failed  prometheus.Gauge
	unknown prometheus.Gauge
	total   prometheus.Counter

	last Metric
}

// New creates a Metrics handler registered on the given registry.
func New(registry prometheus.Registerer) (*Metrics, error) {
	metrics := &Metrics{
		scanned: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "deckhand_accessories_scanned",
			Help: "Number of accessories scanned during the last session",
		}),
		stale: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "deckhand_accessories_stale",
			Help: "Number of accessories with an update available during the last session",
		}),
		updated: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "deckhand_accessories_updated",
			Help: "Number of accessories updated during the last session",
		}),
		failed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "deckhand_accessories_failed",
			Help: "Number of accessories whose manifest rewrite failed during the last session",
		}),
		unknown: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "deckhand_accessories_unknown",
			Help: "Number of accessories whose registry lookup failed during the last session",
		}),
		total: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "deckhand_sessions_total",
			Help: "Number of update sessions since deckhand started",
		}),
	}

	collectors := []prometheus.Collector{
		metrics.scanned,
		metrics.stale,
		metrics.updated,
		metrics.failed,
		metrics.unknown,
		metrics.total,
	}
	for _, collector := range collectors {
		if err := registry.Register(collector); err != nil {
			alreadyRegistered := &prometheus.AlreadyRegisteredError{}
			if !errors.As(err, alreadyRegistered) {
				return nil, fmt.Errorf("failed to register metric: %w", err)
			}
		}
	}

	return metrics, nil
}

// Record publishes one session's data points.
func (m *Metrics) Record(metric Metric) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.scanned.Set(float64(metric.Scanned))
	m.stale.Set(float64(metric.Stale))
	m.updated.Set(float64(metric.Updated))
	m.failed.Set(float64(metric.Failed))
	m.unknown.Set(float64(metric.Unknown))
	m.total.Inc()

	m.last = metric
}

// Last returns the most recently recorded session metric.
func (m *Metrics) Last() Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.last
}

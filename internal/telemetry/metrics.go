// Package telemetry exposes Prometheus counters for the orchestrator loop.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects orchestrator counters. A nil *Metrics is a valid no-op
// receiver so tests can skip registration.
type Metrics struct {
	EventsProcessed prometheus.Counter
	DeltasPublished prometheus.Counter
	TracksCompleted prometheus.Counter
	AutoplayPicks   prometheus.Counter
	ActiveSessions  prometheus.Gauge
}

// New registers the orchestrator metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		EventsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "breezehub_events_processed_total",
			Help: "Events consumed by the orchestrator loop.",
		}),
		DeltasPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "breezehub_deltas_published_total",
			Help: "State deltas fanned out to sessions.",
		}),
		TracksCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "breezehub_tracks_completed_total",
			Help: "Tracks that played to completion.",
		}),
		AutoplayPicks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "breezehub_autoplay_picks_total",
			Help: "Curated entries selected by autoplay.",
		}),
		ActiveSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "breezehub_active_sessions",
			Help: "Currently connected observer sessions.",
		}),
	}
}

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

func (m *Metrics) IncEvents() {
	if m != nil {
		m.EventsProcessed.Inc()
	}
}

func (m *Metrics) IncDeltas() {
	if m != nil {
		m.DeltasPublished.Inc()
	}
}

func (m *Metrics) IncTracksCompleted() {
	if m != nil {
		m.TracksCompleted.Inc()
	}
}

func (m *Metrics) IncAutoplayPicks() {
	if m != nil {
		m.AutoplayPicks.Inc()
	}
}

func (m *Metrics) SetSessions(n int) {
	if m != nil {
		m.ActiveSessions.Set(float64(n))
	}
}

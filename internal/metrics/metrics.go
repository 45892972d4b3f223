// Package metrics exposes the server's Prometheus collectors: tick
// duration, command-queue occupancy/drops, and datagram byte counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the collectors registered against a single registry.
type Metrics struct {
	registry *prometheus.Registry

	TickDuration   *prometheus.HistogramVec
	QueueOccupancy *prometheus.GaugeVec
	QueueOverflow  *prometheus.CounterVec
	CommandsDropped *prometheus.CounterVec
	DatagramsIn    prometheus.Counter
	DatagramsOut   prometheus.Counter
	BytesIn        prometheus.Counter
	BytesOut       prometheus.Counter
	LobbiesActive  prometheus.Gauge
	PlayersActive  prometheus.Gauge
}

// New builds and registers every collector against a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		TickDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "crossfire",
			Name:      "tick_duration_seconds",
			Help:      "Duration of one lobby tick.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"lobby"}),
		QueueOccupancy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "crossfire",
			Name:      "command_queue_occupancy",
			Help:      "Current number of staged commands in a lobby's ring buffer.",
		}, []string{"lobby"}),
		QueueOverflow: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crossfire",
			Name:      "command_queue_overflow_total",
			Help:      "Commands dropped because the ring buffer was full.",
		}, []string{"lobby"}),
		CommandsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crossfire",
			Name:      "commands_dropped_total",
			Help:      "Commands dropped, labeled by reason.",
		}, []string{"reason"}),
		DatagramsIn: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crossfire",
			Name:      "datagrams_in_total",
			Help:      "Inbound UDP datagrams received.",
		}),
		DatagramsOut: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crossfire",
			Name:      "datagrams_out_total",
			Help:      "Outbound UDP datagrams sent.",
		}),
		BytesIn: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crossfire",
			Name:      "bytes_in_total",
			Help:      "Inbound UDP bytes received.",
		}),
		BytesOut: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crossfire",
			Name:      "bytes_out_total",
			Help:      "Outbound UDP bytes sent.",
		}),
		LobbiesActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "crossfire",
			Name:      "lobbies_active",
			Help:      "Currently registered lobbies.",
		}),
		PlayersActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "crossfire",
			Name:      "players_active",
			Help:      "Currently connected players across all lobbies.",
		}),
	}
	reg.MustRegister(
		m.TickDuration, m.QueueOccupancy, m.QueueOverflow, m.CommandsDropped,
		m.DatagramsIn, m.DatagramsOut, m.BytesIn, m.BytesOut,
		m.LobbiesActive, m.PlayersActive,
	)
	return m
}

// Registry exposes the underlying Prometheus registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// LobbyTelemetry adapts a lobby's generic Add/Store telemetry calls
// (used by internal/tick's command buffer) onto this Metrics' per-lobby
// collectors. internal/tick knows nothing about Prometheus; it only calls
// Add(key, delta) / Store(key, value) with well-known key strings.
type LobbyTelemetry struct {
	lobby string
	m     *Metrics
}

// ForLobby returns a telemetry adapter scoped to one lobby code.
func (m *Metrics) ForLobby(code string) *LobbyTelemetry {
	return &LobbyTelemetry{lobby: code, m: m}
}

// Add implements the telemetryMetrics interface consumed by internal/tick.
func (t *LobbyTelemetry) Add(key string, delta uint64) {
	switch key {
	case "sim_command_buffer_overflow_total":
		t.m.QueueOverflow.WithLabelValues(t.lobby).Add(float64(delta))
	}
}

// Store implements the telemetryMetrics interface consumed by internal/tick.
func (t *LobbyTelemetry) Store(key string, value uint64) {
	switch key {
	case "sim_command_buffer_occupancy":
		t.m.QueueOccupancy.WithLabelValues(t.lobby).Set(float64(value))
	}
}

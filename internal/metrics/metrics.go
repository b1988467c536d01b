// Package metrics provides Prometheus metrics for the Angel interview
// backend: turn pipeline counters, sequence anomalies, and generator health.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once     sync.Once
	instance *Metrics
)

// Metrics holds all Prometheus metric collectors.
type Metrics struct {
	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Interview pipeline
	TurnsTotal            *prometheus.CounterVec // by kind: answer/command/checkpoint/transition
	SequenceAnomalies     *prometheus.CounterVec // by kind: forward_skip/backward_jump/cross_phase
	TaglessTurns          prometheus.Counter
	CheckpointsFired      prometheus.Counter
	PhaseTransitions      *prometheus.CounterVec // by phase completed
	CommandsTotal         *prometheus.CounterVec // by command kind
	CommandsRejected      *prometheus.CounterVec // by phase

	// Generator / research
	GenerationsTotal   *prometheus.CounterVec // by outcome: ok/error
	GenerationDuration prometheus.Histogram
	ResearchTotal      *prometheus.CounterVec // by outcome: ok/error/throttled

	// Realtime
	WebSocketConnections prometheus.Gauge
}

// Get returns the singleton metrics instance, registering collectors on
// first use.
func Get() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "angel_http_requests_total",
				Help: "Total HTTP requests by method, path, and status",
			}, []string{"method", "path", "status"}),
			HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "angel_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			}, []string{"method", "path"}),

			TurnsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "angel_interview_turns_total",
				Help: "Processed interview turns by kind",
			}, []string{"kind"}),
			SequenceAnomalies: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "angel_sequence_anomalies_total",
				Help: "Detected and corrected question-sequence anomalies",
			}, []string{"kind"}),
			TaglessTurns: promauto.NewCounter(prometheus.CounterOpts{
				Name: "angel_tagless_turns_total",
				Help: "Turns where the generator produced no usable question tag",
			}),
			CheckpointsFired: promauto.NewCounter(prometheus.CounterOpts{
				Name: "angel_checkpoints_fired_total",
				Help: "Section checkpoints inserted into the interview",
			}),
			PhaseTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "angel_phase_transitions_total",
				Help: "Phase transitions by completed phase",
			}, []string{"phase"}),
			CommandsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "angel_commands_total",
				Help: "Reserved commands processed by kind",
			}, []string{"command"}),
			CommandsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "angel_commands_rejected_total",
				Help: "Commands rejected by phase gating",
			}, []string{"phase"}),

			GenerationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "angel_generations_total",
				Help: "Generator calls by outcome",
			}, []string{"outcome"}),
			GenerationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "angel_generation_duration_seconds",
				Help:    "Generator call latency",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20},
			}),
			ResearchTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "angel_research_total",
				Help: "Research collaborator calls by outcome",
			}, []string{"outcome"}),

			WebSocketConnections: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "angel_websocket_connections",
				Help: "Currently connected realtime clients",
			}),
		}
	})
	return instance
}

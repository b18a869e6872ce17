package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector is a Prometheus-backed Sink exposing turn, routing and analysis
// counters. Construct one per process; promauto registers the metrics with
// the provided registerer.
type Collector struct {
	analysisRuns    *prometheus.CounterVec
	routingAttempts *prometheus.CounterVec
	fallbacks       prometheus.Counter
	turns           *prometheus.CounterVec
	anomalies       prometheus.Counter
	turnDuration    prometheus.Histogram
	hops            prometheus.Histogram
}

// NewCollector builds a Collector registering its metrics under namespace.
// A nil registerer falls back to the default Prometheus registry.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Collector{
		analysisRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_runs_total",
			Help:      "Conversation analyses performed, by current agent.",
		}, []string{"agent"}),
		routingAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "routing_attempts_total",
			Help:      "Routing extraction passes, by outcome.",
		}, []string{"outcome"}),
		fallbacks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallbacks_total",
			Help:      "Turns answered through the fallback executor.",
		}),
		turns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Completed turns, by terminal agent and success flag.",
		}, []string{"agent", "success"}),
		anomalies: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "anomalies_total",
			Help:      "Handoff anomalies (no resolvable target, hop budget exhausted).",
		}),
		turnDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_duration_seconds",
			Help:      "End-to-end turn processing latency.",
			Buckets:   prometheus.DefBuckets,
		}),
		hops: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_hops",
			Help:      "Agent hops taken per turn.",
			Buckets:   []float64{1, 2, 3, 4, 5},
		}),
	}
}

// Record implements Sink.
func (c *Collector) Record(rec Record) {
	switch rec.Kind {
	case KindAnalysis:
		c.analysisRuns.WithLabelValues(rec.Agent).Inc()
	case KindRouting:
		c.routingAttempts.WithLabelValues(rec.Outcome).Inc()
		if rec.FallbackUsed {
			c.fallbacks.Inc()
		}
	case KindTurn:
		success := "false"
		if rec.Success {
			success = "true"
		}
		c.turns.WithLabelValues(rec.Agent, success).Inc()
		c.turnDuration.Observe(rec.Duration.Seconds())
		c.hops.Observe(float64(rec.Hops))
	case KindAnomaly:
		c.anomalies.Inc()
	}
}

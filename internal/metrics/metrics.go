package metrics

import (
	"net/http"

	"card_assistant/pkg"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the assistant's collectors on a private registry
type Metrics struct {
	Registry *prometheus.Registry

	Utterances *prometheus.CounterVec
	Intents    *prometheus.CounterVec
	Confidence prometheus.Histogram
}

// New registers the collectors on a fresh registry
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		Registry: registry,
		Utterances: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardbot_utterances_total",
				Help: "Total number of utterances processed, by answering branch",
			},
			[]string{"branch"},
		),
		Intents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardbot_intents_total",
				Help: "Total number of classified utterances, by intent",
			},
			[]string{"intent"},
		),
		Confidence: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "cardbot_classification_confidence",
				Help:    "Confidence of classified intents",
				Buckets: []float64{0.3, 0.4, 0.5, 0.8, 0.85, 0.9, 0.95, 1},
			},
		),
	}
}

// ObserveUtterance counts one processed utterance
func (m *Metrics) ObserveUtterance(branch string) {
	if branch == "" {
		branch = "unknown"
	}
	m.Utterances.WithLabelValues(branch).Inc()
}

// ObserveIntent counts a classification and records its confidence
func (m *Metrics) ObserveIntent(intent pkg.ClassifiedIntent) {
	m.Intents.WithLabelValues(string(intent.IntentID)).Inc()
	m.Confidence.Observe(intent.Confidence)
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

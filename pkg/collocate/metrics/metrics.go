// Package metrics records batch-run statistics in a Prometheus registry and
// writes them in the text exposition format for a textfile collector.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors of one pipeline run.
type Metrics struct {
	registry *prometheus.Registry

	Documents        prometheus.Gauge
	SkippedDocuments prometheus.Gauge
	Tokens           prometheus.Gauge
	UniqueNGrams     *prometheus.GaugeVec
	ScorerDuration   *prometheus.HistogramVec
	Candidates       *prometheus.GaugeVec
	SkippedCands     *prometheus.CounterVec
	LastSuccess      prometheus.Gauge
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Documents: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "collocate_documents",
			Help: "Documents in the corpus.",
		}),
		SkippedDocuments: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "collocate_documents_skipped",
			Help: "Raw documents skipped during cleaning.",
		}),
		Tokens: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "collocate_tokens",
			Help: "Tokens in the corpus.",
		}),
		UniqueNGrams: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "collocate_ngrams_unique",
			Help: "Distinct n-grams per table.",
		}, []string{"n"}),
		ScorerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "collocate_scorer_duration_seconds",
			Help:    "Time spent ranking candidates.",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		}, []string{"method"}),
		Candidates: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "collocate_candidates_exported",
			Help: "Candidates written per method and list kind.",
		}, []string{"method", "kind"}),
		SkippedCands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "collocate_candidates_skipped_total",
			Help: "Candidates skipped because their score was undefined.",
		}, []string{"method"}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "collocate_last_success_timestamp_seconds",
			Help: "Unix time of the last completed phase.",
		}),
	}
	m.registry.MustRegister(
		m.Documents, m.SkippedDocuments, m.Tokens, m.UniqueNGrams,
		m.ScorerDuration, m.Candidates, m.SkippedCands, m.LastSuccess,
	)
	return m
}

// ObserveTable records the size of an n-gram table.
func (m *Metrics) ObserveTable(n, unique int) {
	m.UniqueNGrams.WithLabelValues(strconv.Itoa(n)).Set(float64(unique))
}

// ObserveScorer records one scorer run.
func (m *Metrics) ObserveScorer(method string, d time.Duration, skipped int, lists map[string]int) {
	m.ScorerDuration.WithLabelValues(method).Observe(d.Seconds())
	m.SkippedCands.WithLabelValues(method).Add(float64(skipped))
	for kind, n := range lists {
		m.Candidates.WithLabelValues(method, kind).Set(float64(n))
	}
}

// MarkSuccess stamps the completion time.
func (m *Metrics) MarkSuccess(t time.Time) {
	m.LastSuccess.Set(float64(t.Unix()))
}

// WriteTextfile writes the registry to path atomically. An empty path is a
// no-op.
func (m *Metrics) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}

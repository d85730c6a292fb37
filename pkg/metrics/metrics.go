// Package metrics defines the Prometheus metric collectors used across the
// pipeline and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the pipeline.
type Metrics struct {
	RecordsConsumedTotal *prometheus.CounterVec
	TokensRejectedTotal  prometheus.Counter
	DistinctTokens       prometheus.Gauge
	MergesTotal          prometheus.Counter
	BuildsTotal          *prometheus.CounterVec
	BuildDuration        prometheus.Histogram
	VocabularySize       *prometheus.GaugeVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
		RecordsConsumedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vocab_records_consumed_total",
				Help: "Total input records consumed, by outcome (observed, rejected, error).",
			},
			[]string{"outcome"},
		),
		TokensRejectedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "vocab_tokens_rejected_total",
				Help: "Tokens excluded by the validity rule (empty or containing a line terminator).",
			},
		),
		DistinctTokens: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "vocab_distinct_tokens",
				Help: "Distinct tokens accumulated so far across all shards.",
			},
		),
		MergesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "vocab_accumulator_merges_total",
				Help: "Partition-accumulator merge operations performed.",
			},
		),
		BuildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vocab_builds_total",
				Help: "Vocabulary builds by status (success, error).",
			},
			[]string{"status"},
		),
		BuildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "vocab_build_duration_seconds",
				Help:    "Wall time of the rank-and-write phase.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),
		VocabularySize: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "vocab_vocabulary_size",
				Help: "Entries in the last published vocabulary, by arm.",
			},
			[]string{"arm"},
		),
	}

	prometheus.MustRegister(
		m.RecordsConsumedTotal,
		m.TokensRejectedTotal,
		m.DistinctTokens,
		m.MergesTotal,
		m.BuildsTotal,
		m.BuildDuration,
		m.VocabularySize,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

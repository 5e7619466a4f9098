package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the catalog collectors. A nil *Metrics records nothing.
type Metrics struct {
	searches  *prometheus.CounterVec
	results   *prometheus.HistogramVec
	assistant *prometheus.CounterVec
	indexed   *prometheus.CounterVec
	reindexes *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_searches_total",
			Help: "Catalog searches by listing kind and sort key",
		}, []string{"kind", "sort"}),
		results: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "catalog_search_results",
			Help:    "Number of listings matching a catalog search",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 1000},
		}, []string{"kind"}),
		assistant: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_assistant_messages_total",
			Help: "Assistant messages by resolved action",
		}, []string{"action"}),
		indexed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_listings_indexed_total",
			Help: "Listings written to the catalog engine",
		}, []string{"source"}),
		reindexes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_reindex_runs_total",
			Help: "Full reindex runs by outcome",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.searches, m.results, m.assistant, m.indexed, m.reindexes)
	return m
}

func kindLabel(k string) string {
	if k == "" {
		return "all"
	}
	return k
}

func (m *Metrics) search(kind, sort string, total int) {
	if m == nil {
		return
	}
	m.searches.WithLabelValues(kindLabel(kind), sort).Inc()
	m.results.WithLabelValues(kindLabel(kind)).Observe(float64(total))
}

func (m *Metrics) assisted(action string) {
	if m == nil {
		return
	}
	m.assistant.WithLabelValues(action).Inc()
}

func (m *Metrics) indexedListings(source string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.indexed.WithLabelValues(source).Add(float64(n))
}

func (m *Metrics) reindexed(outcome string) {
	if m == nil {
		return
	}
	m.reindexes.WithLabelValues(outcome).Inc()
}

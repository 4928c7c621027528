package sls

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus metrics for query client observability.
type Metrics struct {
	QueriesTotal     prometheus.Counter // Total number of queries issued
	QueryErrorsTotal prometheus.Counter // Total number of failed queries
}

// NewMetrics creates Prometheus metrics for a query client instance.
// The registerer parameter allows flexible registration (global registry,
// test registry, or nil to disable registration). The logstore label enables
// multi-logstore metric tracking via ConstLabels.
func NewMetrics(reg prometheus.Registerer, logstore string) *Metrics {
	queriesTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "culprit_sls_queries_total",
		Help:        "Total number of log store queries issued",
		ConstLabels: prometheus.Labels{"logstore": logstore},
	})

	queryErrorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "culprit_sls_query_errors_total",
		Help:        "Total number of failed log store queries",
		ConstLabels: prometheus.Labels{"logstore": logstore},
	})

	if reg != nil {
		reg.MustRegister(queriesTotal)
		reg.MustRegister(queryErrorsTotal)
	}

	return &Metrics{
		QueriesTotal:     queriesTotal,
		QueryErrorsTotal: queryErrorsTotal,
	}
}

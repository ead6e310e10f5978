// Copyright 2025 The Alumap Authors
// SPDX-License-Identifier: Apache-2.0

// Package metrics holds the Prometheus instruments of the query engine and the
// HTTP API.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the query engine.
type Metrics struct {
	// Query latencies by operation
	QueryLatency *prometheus.HistogramVec

	// Number of items returned by operation
	QueryResults *prometheus.HistogramVec

	// Failed queries by operation
	QueryErrors *prometheus.CounterVec

	// Clusters produced by grouped queries
	ClustersBuilt prometheus.Counter

	// Requests where keyword and location phrase were both supplied
	KeywordLocationConflicts prometheus.Counter
}

// New creates a new Metrics instance registered in reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)

	return &Metrics{
		QueryLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "alumap_query_duration_seconds",
			Help:    "Duration of query engine operations, including the candidate fetch",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}), // operation: "list", "nearby", "grouped", ...

		QueryResults: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "alumap_query_results",
			Help:    "Number of items returned by query engine operations",
			Buckets: []float64{0, 1, 5, 10, 50, 100, 500, 1000, 5000},
		}, []string{"operation"}),

		QueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "alumap_query_errors_total",
			Help: "Total failed query engine operations",
		}, []string{"operation"}),

		ClustersBuilt: factory.NewCounter(prometheus.CounterOpts{
			Name: "alumap_clusters_built_total",
			Help: "Total virtual clusters produced by grouped queries",
		}),

		KeywordLocationConflicts: factory.NewCounter(prometheus.CounterOpts{
			Name: "alumap_keyword_location_conflicts_total",
			Help: "Total queries that supplied both a keyword and a location phrase",
		}),
	}
}

// ObserveQuery records the duration and result size of an operation.
func (m *Metrics) ObserveQuery(operation string, d time.Duration, results int) {
	if m != nil {
		m.QueryLatency.WithLabelValues(operation).Observe(d.Seconds())
		m.QueryResults.WithLabelValues(operation).Observe(float64(results))
	}
}

// IncrementErrors records a failed operation.
func (m *Metrics) IncrementErrors(operation string) {
	if m != nil {
		m.QueryErrors.WithLabelValues(operation).Inc()
	}
}

// AddClusters records the clusters produced by a grouped query.
func (m *Metrics) AddClusters(n int) {
	if m != nil {
		m.ClustersBuilt.Add(float64(n))
	}
}

// IncrementConflicts records a keyword and location phrase conflict.
func (m *Metrics) IncrementConflicts() {
	if m != nil {
		m.KeywordLocationConflicts.Inc()
	}
}

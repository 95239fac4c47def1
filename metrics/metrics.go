package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "marketsearch"

var (
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route", "status"},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	collectionQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "collection_query_duration_seconds",
			Help:      "Duration of a single collection query within a search",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"collection"},
	)

	collectionQueryFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collection_query_failures_total",
			Help:      "Collection queries that contributed no results because they failed",
		},
		[]string{"collection", "reason"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(collectionQueryDuration)
	prometheus.MustRegister(collectionQueryFailures)
}

const (
	reasonTimeout   = "timeout"
	reasonCancelled = "cancelled"
	reasonError     = "error"
)

// SearchObserver records per-collection query outcomes.
type SearchObserver struct{}

func (SearchObserver) ObserveCollectionQuery(collection string, duration time.Duration, err error) {
	collectionQueryDuration.WithLabelValues(collection).Observe(duration.Seconds())
	if err != nil {
		collectionQueryFailures.WithLabelValues(collection, failureReason(err)).Inc()
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return reasonTimeout
	case errors.Is(err, context.Canceled):
		return reasonCancelled
	default:
		return reasonError
	}
}

// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ClassificationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classification_requests_total",
			Help: "Total number of classification requests by outcome",
		},
		[]string{"status"},
	)

	ItemsClassified = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "items_classified_total",
			Help: "Total number of menu items classified by method tag",
		},
		[]string{"method"},
	)

	ClassificationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "classification_duration_seconds",
			Help: "Duration of classification request processing in seconds",
		},
		[]string{"status"},
	)

	OracleCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oracle_calls_total",
			Help: "Total number of judgment oracle calls by outcome",
		},
		[]string{"outcome"},
	)

	ReviewSessionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "review_sessions_open",
			Help: "Number of currently open review sessions",
		},
	)

	Corrections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_corrections_total",
			Help: "Total number of correction requests by outcome",
		},
		[]string{"status"},
	)
)

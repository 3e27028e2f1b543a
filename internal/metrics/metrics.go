// Package metrics registers the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealmatch_http_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dealmatch_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	MatchActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealmatch_match_actions_total",
			Help: "Match actions recorded by side and action",
		},
		[]string{"side", "action"},
	)

	DealsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dealmatch_deals_created_total",
			Help: "Deals created from mutually accepted matches",
		},
	)

	StageTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealmatch_deal_stage_transitions_total",
			Help: "Deal stage updates by target stage",
		},
		[]string{"stage"},
	)

	AIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealmatch_ai_requests_total",
			Help: "AI advisor calls by operation, mode (provider|degraded) and outcome",
		},
		[]string{"operation", "mode", "outcome"},
	)

	AIDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dealmatch_ai_request_duration_seconds",
			Help:    "AI provider call latency in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
		},
		[]string{"operation"},
	)

	RealtimeDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dealmatch_realtime_dropped_total",
			Help: "Realtime events dropped for slow websocket clients",
		},
	)
)

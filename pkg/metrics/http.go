package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Latency of the HTTP handlers, by route and status
	RequestLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reco_http_request_latency_seconds",
		Help:    "Latency of recommendation engine handlers",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "status"})

	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reco_http_requests_total",
		Help: "Total number of handled requests",
	}, []string{"route", "status"})

	// Recommendation results served, by strategy and cache outcome
	RecommendationsServed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reco_recommendations_served_total",
		Help: "Total number of recommendation results served",
	}, []string{"strategy", "cache"})
)

func init() {
	prometheus.MustRegister(
		RequestLatency,
		RequestsTotal,
		RecommendationsServed,
	)
}

func ObserveRequest(route string, status int, elapsed time.Duration) {
	code := strconv.Itoa(status)
	RequestLatency.WithLabelValues(route, code).Observe(elapsed.Seconds())
	RequestsTotal.WithLabelValues(route, code).Inc()
}

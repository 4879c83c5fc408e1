package copywriter

import "github.com/prometheus/client_golang/prometheus"

var (
	BreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "copy_breaker_state",
			Help: "Circuit breaker state of the copy service (0=closed, 1=half-open, 2=open).",
		},
		[]string{"breaker"},
	)

	BreakerRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copy_breaker_requests_total",
			Help: "Copy generation requests by breaker and result.",
		},
		[]string{"breaker", "result"},
	)
)

func init() {
	prometheus.MustRegister(BreakerState, BreakerRequestsTotal)
}

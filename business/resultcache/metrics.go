package resultcache

import "github.com/prometheus/client_golang/prometheus"

var CacheOperationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "result_cache_operations_total",
		Help: "Result cache operations by op (get, set, del) and result (hit, miss, ok, error).",
	},
	[]string{"op", "result"},
)

func init() {
	prometheus.MustRegister(CacheOperationsTotal)
}

package bandit

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	BanditDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bandit_decisions_total",
			Help: "Count of bandit decisions by scope, strategy, and mode.",
		},
		[]string{"scope", "strategy", "mode"},
	)

	BanditOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bandit_outcomes_total",
			Help: "Count of recorded bandit outcomes by scope, strategy, and result.",
		},
		[]string{"scope", "strategy", "result"},
	)
)

func init() {
	prometheus.MustRegister(BanditDecisionsTotal, BanditOutcomesTotal)
}

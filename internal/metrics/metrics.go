// Package metrics exposes prometheus instrumentation for the betting engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ActionsApplied counts successfully applied betting actions by type
	ActionsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cardroom",
		Name:      "betting_actions_total",
		Help:      "Number of successfully applied betting actions",
	}, []string{"type"})

	// ActionsRejected counts rejected betting actions by reason
	ActionsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cardroom",
		Name:      "betting_rejections_total",
		Help:      "Number of rejected betting actions",
	}, []string{"reason"})

	// ActiveRounds tracks the number of betting rounds currently in progress
	ActiveRounds = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "cardroom",
		Name:      "betting_active_rounds",
		Help:      "Number of betting rounds currently in progress",
	})

	// RoundsCompleted counts completed betting rounds
	RoundsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cardroom",
		Name:      "betting_rounds_completed_total",
		Help:      "Number of completed betting rounds",
	})
)

// rejection reason labels
const (
	ReasonIllegalAction     = "illegal_action"
	ReasonNotYourTurn       = "not_your_turn"
	ReasonInsufficientFunds = "insufficient_funds"
	ReasonUnknownRound      = "unknown_round"
)

// Handler returns the /metrics endpoint handler
func Handler() http.Handler {
	return promhttp.Handler()
}

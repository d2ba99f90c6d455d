// Package metrics exposes Prometheus collectors for game activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActionsApplied counts state transitions by action name.
	ActionsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mememadness_actions_applied_total",
		Help: "Number of game state transitions applied, by action.",
	}, []string{"action"})

	// JudgingRounds counts judging rounds by outcome (ok or error).
	JudgingRounds = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mememadness_judging_rounds_total",
		Help: "Number of judging rounds, by outcome.",
	}, []string{"outcome"})

	// JudgingDuration observes how long the external judge takes.
	JudgingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mememadness_judging_duration_seconds",
		Help:    "Latency of judging round round-trips.",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
	})
)

package explore

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// explorationsTotal counts explorations by outcome.
	explorationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kgexplore_explorations_total",
		Help: "Total explorations by result",
	}, []string{"result"})

	// expansionsTotal counts frontier-node expansions (remote round trips).
	expansionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kgexplore_expansions_total",
		Help: "Total frontier node expansions",
	})

	// prunedEdgesTotal counts candidate edges dropped below the relevance
	// threshold before entering a frontier.
	prunedEdgesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kgexplore_pruned_edges_total",
		Help: "Total candidate edges pruned by relevance",
	})

	// remoteErrorsTotal counts anchors abandoned after transport failures.
	remoteErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kgexplore_remote_errors_total",
		Help: "Total anchors abandoned after remote query failures",
	})

	// scorerFailuresTotal counts edges scored neutrally because the
	// relevance capability failed.
	scorerFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kgexplore_scorer_failures_total",
		Help: "Total edges falling back to the neutral score",
	})

	// explorationDuration tracks end-to-end exploration latency.
	explorationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "kgexplore_exploration_duration_seconds",
		Help:    "Exploration duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	})
)

package bot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/domino14/countdown/automatic"
)

const (
	resultExact   = "exact"
	resultClosest = "closest"
	resultTimeout = "timeout"
	resultCached  = "cached"
	resultError   = "error"
)

var (
	solvesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "countdown_solves_total",
		Help: "Solve requests by result",
	}, []string{"result"})

	solveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "countdown_solve_duration_seconds",
		Help:    "Time spent in the solver per uncached request",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
	})

	solveVisited = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "countdown_solve_visited_states",
		Help:    "States visited per uncached request",
		Buckets: prometheus.ExponentialBuckets(10, 10, 9),
	})
)

func observe(r *automatic.Result) {
	switch {
	case r.TimedOut:
		solvesTotal.WithLabelValues(resultTimeout).Inc()
	case r.Exact():
		solvesTotal.WithLabelValues(resultExact).Inc()
	default:
		solvesTotal.WithLabelValues(resultClosest).Inc()
	}
	solveDuration.Observe(r.Elapsed.Seconds())
	solveVisited.Observe(float64(r.Visited))
}

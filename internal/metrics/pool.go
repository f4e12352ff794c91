// Package metrics provides Prometheus metrics for pool slot accounting
// and execution outcomes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/smazurov/procex/internal/process"
)

var (
	poolActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "procex",
		Subsystem: "pool",
		Name:      "active",
		Help:      "Processes currently running in the pool",
	})

	poolQueued = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "procex",
		Subsystem: "pool",
		Name:      "queued",
		Help:      "Requests waiting for a pool slot",
	})

	poolCapacity = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "procex",
		Subsystem: "pool",
		Name:      "capacity",
		Help:      "Configured maximum concurrent processes",
	})

	executionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "procex",
		Subsystem: "exec",
		Name:      "executions_total",
		Help:      "Completed executions by outcome",
	}, []string{"outcome"})

	timeoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "procex",
		Subsystem: "exec",
		Name:      "timeouts_total",
		Help:      "Executions killed by their timeout",
	})

	killsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "procex",
		Subsystem: "exec",
		Name:      "kills_total",
		Help:      "Executions terminated via kill, timeouts included",
	})
)

// ObservePool records a pool accounting snapshot. Wire it to
// PoolOptions.OnStats.
func ObservePool(stats process.PoolStats, queued int) {
	poolActive.Set(float64(stats.Active))
	poolQueued.Set(float64(queued))
	poolCapacity.Set(float64(stats.Max))
}

// ObserveResult records the outcome of one completed execution.
func ObserveResult(res *process.Result) {
	if res == nil {
		return
	}
	executionsTotal.WithLabelValues(outcome(res)).Inc()
	if res.TimedOut {
		timeoutsTotal.Inc()
	}
	if res.Killed {
		killsTotal.Inc()
	}
}

func outcome(res *process.Result) string {
	switch {
	case res.TimedOut:
		return "timeout"
	case res.Killed:
		return "killed"
	case res.Ok():
		return "success"
	default:
		return "failure"
	}
}

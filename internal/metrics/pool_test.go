package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/smazurov/procex/internal/process"
)

func TestObservePool(t *testing.T) {
	ObservePool(process.PoolStats{Active: 2, Idle: 3, Max: 5}, 7)

	if got := testutil.ToFloat64(poolActive); got != 2 {
		t.Errorf("active = %v, want 2", got)
	}
	if got := testutil.ToFloat64(poolQueued); got != 7 {
		t.Errorf("queued = %v, want 7", got)
	}
	if got := testutil.ToFloat64(poolCapacity); got != 5 {
		t.Errorf("capacity = %v, want 5", got)
	}
}

func TestObserveResultOutcomes(t *testing.T) {
	zero := 0
	one := 1

	before := testutil.ToFloat64(executionsTotal.WithLabelValues("success"))
	ObserveResult(&process.Result{ExitCode: &zero})
	if got := testutil.ToFloat64(executionsTotal.WithLabelValues("success")); got != before+1 {
		t.Errorf("success count = %v, want %v", got, before+1)
	}

	beforeTimeouts := testutil.ToFloat64(timeoutsTotal)
	beforeKills := testutil.ToFloat64(killsTotal)
	ObserveResult(&process.Result{Signal: "SIGTERM", TimedOut: true, Killed: true})
	if got := testutil.ToFloat64(timeoutsTotal); got != beforeTimeouts+1 {
		t.Errorf("timeouts = %v, want %v", got, beforeTimeouts+1)
	}
	if got := testutil.ToFloat64(killsTotal); got != beforeKills+1 {
		t.Errorf("kills = %v, want %v", got, beforeKills+1)
	}

	beforeFailure := testutil.ToFloat64(executionsTotal.WithLabelValues("failure"))
	ObserveResult(&process.Result{ExitCode: &one})
	if got := testutil.ToFloat64(executionsTotal.WithLabelValues("failure")); got != beforeFailure+1 {
		t.Errorf("failure count = %v, want %v", got, beforeFailure+1)
	}

	// Nil results are ignored.
	ObserveResult(nil)
}

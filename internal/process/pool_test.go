package process

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

func testPool(maxConcurrent int) *Pool {
	return NewPool(&PoolOptions{MaxConcurrent: maxConcurrent, Logger: testLogger()})
}

func TestPoolExecuteSimple(t *testing.T) {
	pool := testPool(2)
	defer pool.Shutdown()

	res, err := pool.Execute("printf ok", testOptions())
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if string(res.Stdout) != "ok" || !res.Ok() {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestPoolBoundsConcurrency(t *testing.T) {
	const maxConcurrent = 2
	const total = 7

	var mu sync.Mutex
	maxActive := 0

	pool := NewPool(&PoolOptions{
		MaxConcurrent: maxConcurrent,
		Logger:        testLogger(),
		OnStats: func(stats PoolStats, _ int) {
			mu.Lock()
			if stats.Active > maxActive {
				maxActive = stats.Active
			}
			if stats.Active+stats.Idle != stats.Max {
				t.Errorf("stats invariant violated: %+v", stats)
			}
			mu.Unlock()
		},
	})
	defer pool.Shutdown()

	var wg sync.WaitGroup
	for i := 0; i < total; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := pool.Execute("sleep 0.05", testOptions()); err != nil {
				t.Errorf("Execute failed: %v", err)
			}
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if maxActive > maxConcurrent {
		t.Errorf("observed %d active, limit is %d", maxActive, maxConcurrent)
	}
	if maxActive == 0 {
		t.Error("expected some activity")
	}
}

func TestPoolQueueIsFIFO(t *testing.T) {
	pool := testPool(1)
	defer pool.Shutdown()

	// Occupy the single slot so later requests queue.
	blocker := make(chan struct{})
	go func() {
		_, _ = pool.Execute("sleep 0.2", testOptions())
		close(blocker)
	}()
	time.Sleep(50 * time.Millisecond)

	const queued = 4
	order := make(chan int, queued)
	var wg sync.WaitGroup
	for i := 0; i < queued; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := pool.Execute(fmt.Sprintf("echo %d", i), testOptions())
			if err != nil {
				t.Errorf("Execute failed: %v", err)
				return
			}
			got := 0
			fmt.Sscanf(strings.TrimSpace(string(res.Stdout)), "%d", &got)
			order <- got
		}(i)
		// Serialize submission so arrival order is deterministic.
		time.Sleep(20 * time.Millisecond)
	}
	wg.Wait()
	close(order)

	prev := -1
	for got := range order {
		if got != prev+1 {
			t.Errorf("completion out of order: got %d after %d", got, prev)
		}
		prev = got
	}
	<-blocker
}

func TestPoolSpawnFailsFastAtCapacity(t *testing.T) {
	pool := testPool(1)
	defer pool.Shutdown()

	h, err := pool.Spawn("sleep", []string{"10"}, testOptions())
	if err != nil {
		t.Fatalf("first Spawn failed: %v", err)
	}

	if _, err := pool.Spawn("true", nil, testOptions()); err != ErrPoolSaturated {
		t.Errorf("expected ErrPoolSaturated, got %v", err)
	}

	h.Kill(0)
	h.Wait()
}

func TestPoolSpawnReleasesSlotOnExit(t *testing.T) {
	pool := testPool(1)
	defer pool.Shutdown()

	h, err := pool.Spawn("true", nil, testOptions())
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}
	h.Wait()

	// The Wait above confirms exit; the slot release is asynchronous.
	deadline := time.After(time.Second)
	for pool.Stats().Active != 0 {
		select {
		case <-deadline:
			t.Fatalf("slot not released: %+v", pool.Stats())
		case <-time.After(10 * time.Millisecond):
		}
	}

	if _, err := pool.Spawn("true", nil, testOptions()); err != nil {
		t.Errorf("expected free slot after exit, got %v", err)
	}
}

func TestPoolStats(t *testing.T) {
	pool := testPool(3)
	defer pool.Shutdown()

	stats := pool.Stats()
	if stats.Active != 0 || stats.Idle != 3 || stats.Max != 3 {
		t.Errorf("unexpected idle stats: %+v", stats)
	}

	h, err := pool.Spawn("sleep", []string{"1"}, testOptions())
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}

	stats = pool.Stats()
	if stats.Active != 1 || stats.Idle != 2 {
		t.Errorf("unexpected running stats: %+v", stats)
	}
	if stats.Active+stats.Idle != stats.Max {
		t.Errorf("stats invariant violated: %+v", stats)
	}

	pids := pool.LivePids()
	if len(pids) != 1 || pids[0] != h.PID() {
		t.Errorf("LivePids = %v, want [%d]", pids, h.PID())
	}

	h.Kill(0)
	h.Wait()
}

func TestPoolShutdownDiscardsQueue(t *testing.T) {
	pool := testPool(1)

	go func() {
		_, _ = pool.Execute("sleep 0.3", testOptions())
	}()
	time.Sleep(50 * time.Millisecond)

	queuedErr := make(chan error, 1)
	go func() {
		_, err := pool.Execute("echo never-runs", testOptions())
		queuedErr <- err
	}()
	time.Sleep(50 * time.Millisecond)

	if pool.Queued() != 1 {
		t.Fatalf("expected 1 queued request, got %d", pool.Queued())
	}

	pool.Shutdown()

	select {
	case err := <-queuedErr:
		if err != ErrPoolClosed {
			t.Errorf("expected ErrPoolClosed for discarded request, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("discarded request was never released")
	}

	if _, err := pool.Execute("true", testOptions()); err != ErrPoolClosed {
		t.Errorf("expected ErrPoolClosed after shutdown, got %v", err)
	}
	if _, err := pool.Spawn("true", nil, testOptions()); err != ErrPoolClosed {
		t.Errorf("expected ErrPoolClosed from Spawn after shutdown, got %v", err)
	}
}

func TestPoolShutdownAbandonsRunning(t *testing.T) {
	pool := testPool(1)

	done := make(chan *Result, 1)
	go func() {
		res, err := pool.Execute("printf survived", testOptions())
		if err != nil {
			t.Errorf("running Execute failed: %v", err)
		}
		done <- res
	}()
	time.Sleep(50 * time.Millisecond)

	// Shutdown returns without waiting; the running request still
	// completes normally for its caller.
	pool.Shutdown()

	select {
	case res := <-done:
		if res != nil && string(res.Stdout) != "survived" {
			t.Errorf("stdout = %q", res.Stdout)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("running request did not complete")
	}
}

func TestPoolShutdownIdempotent(t *testing.T) {
	pool := testPool(1)
	pool.Shutdown()
	pool.Shutdown()
}

func TestPoolHandlerForwarded(t *testing.T) {
	var mu sync.Mutex
	var streamed strings.Builder

	pool := NewPool(&PoolOptions{
		MaxConcurrent: 1,
		Logger:        testLogger(),
		Handler: OutputFunc(func(source string, chunk []byte) {
			if source == "stdout" {
				mu.Lock()
				streamed.Write(chunk)
				mu.Unlock()
			}
		}),
	})
	defer pool.Shutdown()

	if _, err := pool.Execute("printf streamed", testOptions()); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if streamed.String() != "streamed" {
		t.Errorf("streamed = %q", streamed.String())
	}
}

func TestNewPoolDefaults(t *testing.T) {
	pool := NewPool(nil)
	defer pool.Shutdown()
	if stats := pool.Stats(); stats.Max != DefaultMaxConcurrent {
		t.Errorf("default max = %d, want %d", stats.Max, DefaultMaxConcurrent)
	}
}

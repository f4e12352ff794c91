package process

import (
	"errors"
	"sync"

	"github.com/smazurov/procex/internal/logging"
)

// DefaultMaxConcurrent bounds the pool when PoolOptions leaves it unset.
const DefaultMaxConcurrent = 5

// Pool errors surfaced to callers. These are synchronous faults, unlike
// launch failures which are normalized into Results.
var (
	// ErrPoolSaturated is returned by Spawn when every slot is busy.
	// Spawn never queues; callers wanting queued behavior use Execute.
	ErrPoolSaturated = errors.New("process pool at capacity")

	// ErrPoolClosed is returned for requests after Shutdown, including
	// queued requests discarded by it.
	ErrPoolClosed = errors.New("process pool shut down")
)

// PoolStats is a snapshot of slot accounting. Active+Idle == Max at
// every observation point.
type PoolStats struct {
	Active int
	Idle   int
	Max    int
}

// PoolOptions configures a new Pool.
type PoolOptions struct {
	// MaxConcurrent bounds simultaneously running processes. Zero or
	// negative means DefaultMaxConcurrent.
	MaxConcurrent int

	// Handler receives output chunks from every launch (optional).
	Handler OutputHandler

	// OnStats is invoked after every accounting change with the new
	// snapshot and the queue depth (optional; used for metrics export).
	OnStats func(stats PoolStats, queued int)

	// Logger for pool operations. Nil means the package logger.
	Logger logging.Logger
}

// Pool multiplexes execution requests over a bounded number of
// concurrently running processes. Excess Execute calls queue FIFO and
// are dispatched as slots free; Spawn fails fast instead of queueing.
type Pool struct {
	max     int
	handler OutputHandler
	onStats func(PoolStats, int)
	logger  logging.Logger

	mu      sync.Mutex
	active  int
	queue   []*poolRequest
	running map[*Handle]struct{}
	closed  bool
}

// poolRequest is the queued form of an Execute call: plain data plus the
// dispatch gate, no live resources until promoted.
type poolRequest struct {
	launch   chan struct{}
	rejected bool
}

// NewPool creates a pool with the given options. A nil opts gets all
// defaults.
func NewPool(opts *PoolOptions) *Pool {
	o := PoolOptions{}
	if opts != nil {
		o = *opts
	}
	if o.MaxConcurrent <= 0 {
		o.MaxConcurrent = DefaultMaxConcurrent
	}
	if o.Logger == nil {
		o.Logger = logging.GetLogger("pool")
	}
	return &Pool{
		max:     o.MaxConcurrent,
		handler: o.Handler,
		onStats: o.OnStats,
		logger:  o.Logger,
		running: make(map[*Handle]struct{}),
	}
}

// Execute runs a command through the pool, queueing FIFO when all slots
// are busy, and returns its Result. The timeout clock starts at launch,
// not at enqueue: a request can wait in the queue indefinitely. Returns
// ErrPoolClosed if the pool shuts down first.
func (p *Pool) Execute(command string, opts *Options) (*Result, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	if p.active < p.max {
		p.active++
		p.notifyStatsLocked()
		p.mu.Unlock()
	} else {
		req := &poolRequest{launch: make(chan struct{})}
		p.queue = append(p.queue, req)
		p.notifyStatsLocked()
		p.mu.Unlock()

		<-req.launch
		if req.rejected {
			return nil, ErrPoolClosed
		}
		// The releasing side already claimed our slot.
	}
	defer p.release()

	o := opts.withDefaults()
	h, err := SpawnCommand(command, &o, p.handler)
	if err != nil {
		return nil, err
	}

	p.track(h)
	defer p.untrack(h)

	res := h.Wait()
	res.truncateTo(o.MaxOutput)
	return res, nil
}

// Spawn launches immediately and returns the Handle, or fails fast with
// ErrPoolSaturated when no slot is free. The slot is released when the
// process exits, whether or not the caller Waits.
func (p *Pool) Spawn(program string, args []string, opts *Options) (*Handle, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	if p.active >= p.max {
		p.mu.Unlock()
		return nil, ErrPoolSaturated
	}
	p.active++
	p.notifyStatsLocked()
	p.mu.Unlock()

	h, err := Spawn(program, args, opts, p.handler)
	if err != nil {
		p.release()
		return nil, err
	}

	p.track(h)
	go func() {
		h.Wait()
		p.untrack(h)
		p.release()
	}()
	return h, nil
}

// Stats reports current slot accounting.
func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PoolStats{Active: p.active, Idle: p.max - p.active, Max: p.max}
}

// Queued reports the number of requests waiting for a slot.
func (p *Pool) Queued() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// LivePids returns the pids of currently running processes, for callers
// that want to reap the tree on host shutdown.
func (p *Pool) LivePids() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	pids := make([]int, 0, len(p.running))
	for h := range p.running {
		if pid := h.PID(); pid > 0 {
			pids = append(pids, pid)
		}
	}
	return pids
}

// Shutdown discards all queued requests (they are never launched; their
// callers get ErrPoolClosed) and returns without waiting for running
// processes, which are abandoned rather than killed: the host is
// expected to be tearing itself down, and callers that want the children
// reaped can KillTree the LivePids themselves.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	discarded := p.queue
	p.queue = nil
	p.notifyStatsLocked()
	p.mu.Unlock()

	for _, req := range discarded {
		req.rejected = true
		close(req.launch)
	}
	p.logger.Info("Pool shut down", "discarded", len(discarded))
}

// release frees a slot and promotes queued requests in arrival order,
// draining as many as fit.
func (p *Pool) release() {
	p.mu.Lock()
	p.active--
	for p.active < p.max && len(p.queue) > 0 {
		req := p.queue[0]
		p.queue = p.queue[1:]
		p.active++
		close(req.launch)
	}
	p.notifyStatsLocked()
	p.mu.Unlock()
}

func (p *Pool) track(h *Handle) {
	p.mu.Lock()
	p.running[h] = struct{}{}
	p.mu.Unlock()
}

func (p *Pool) untrack(h *Handle) {
	p.mu.Lock()
	delete(p.running, h)
	p.mu.Unlock()
}

// notifyStatsLocked invokes the OnStats callback; the caller holds mu.
func (p *Pool) notifyStatsLocked() {
	if p.onStats != nil {
		p.onStats(PoolStats{Active: p.active, Idle: p.max - p.active, Max: p.max}, len(p.queue))
	}
}

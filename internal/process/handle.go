package process

import (
	"io"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/smazurov/procex/internal/logging"
)

// OutputHandler receives output chunks from a subprocess as they arrive.
// Implementations can forward chunks to an event bus, a terminal, etc.
// Chunks from stdout and stderr are each delivered in pipe order, but the
// two streams are not interleaved relative to each other.
type OutputHandler interface {
	HandleChunk(source string, chunk []byte)
}

// OutputFunc adapts a function to the OutputHandler interface.
type OutputFunc func(source string, chunk []byte)

// HandleChunk implements OutputHandler.
func (f OutputFunc) HandleChunk(source string, chunk []byte) { f(source, chunk) }

// Handle wraps one live OS process: its pid, its stdin pipe, and the
// accumulated output that becomes the eventual Result. A Handle
// transitions to done exactly once; after that Kill is a no-op and Wait
// returns the cached Result.
type Handle struct {
	pid     int
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	opts    Options
	logger  logging.Logger
	handler OutputHandler
	started time.Time
	timer   *time.Timer

	mu       sync.Mutex
	stdout   []byte
	stderr   []byte
	killed   bool
	timedOut bool
	finished bool

	done   chan struct{}
	result *Result
}

// PID returns the OS process identifier, 0 if the launch failed.
func (h *Handle) PID() int {
	return h.pid
}

// Stdin returns the child's input stream. It is closed automatically
// once the process exits; nil when the launch failed.
func (h *Handle) Stdin() io.WriteCloser {
	return h.stdin
}

// Done returns a channel closed when the terminal notification has been
// delivered, for select-based callers.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Kill requests termination of the process and its descendants with the
// given signal; sig 0 means the configured KillSignal. The return value
// reports whether the request was accepted, not whether the process has
// died: termination is asynchronous and confirmed only by Wait. Calling
// Kill after exit is a no-op returning false.
func (h *Handle) Kill(sig syscall.Signal) bool {
	h.mu.Lock()
	if h.finished || h.pid == 0 {
		h.mu.Unlock()
		return false
	}
	h.killed = true
	h.mu.Unlock()

	if sig == 0 {
		sig = h.opts.KillSignal
	}
	h.logger.Debug("Killing process", "pid", h.pid, "signal", unix.SignalName(sig))
	KillTree(h.pid, sig)
	return true
}

// Wait blocks until the process exits or errors and returns the Result.
// It resolves exactly once; later calls return the same Result.
func (h *Handle) Wait() *Result {
	<-h.done
	return h.result
}

// markTimedOut flags the eventual result before the timeout kill fires.
func (h *Handle) markTimedOut() {
	h.mu.Lock()
	if !h.finished {
		h.timedOut = true
	}
	h.mu.Unlock()
}

// appendOutput accumulates a chunk and re-publishes it to the streaming
// handler. The accumulators feed the eventual Result; streaming consumers
// get their own copy.
func (h *Handle) appendOutput(source string, chunk []byte) {
	h.mu.Lock()
	if source == "stdout" {
		h.stdout = append(h.stdout, chunk...)
	} else {
		h.stderr = append(h.stderr, chunk...)
	}
	h.mu.Unlock()

	if h.handler != nil {
		copied := make([]byte, len(chunk))
		copy(copied, chunk)
		h.handler.HandleChunk(source, copied)
	}
}

// finish delivers the terminal notification. Called exactly once per
// launch, from the monitor goroutine.
func (h *Handle) finish(waitErr error) {
	if h.timer != nil {
		h.timer.Stop()
	}

	h.mu.Lock()
	h.finished = true
	res := &Result{
		Stdout:   h.stdout,
		Stderr:   h.stderr,
		Duration: time.Since(h.started),
		Killed:   h.killed,
		TimedOut: h.timedOut,
	}
	h.mu.Unlock()

	res.classifyExit(waitErr)
	h.result = res
	close(h.done)
}

// Package signals provides a process-wide registry of shutdown handlers
// that run before an OS termination signal's default action proceeds.
//
// The coordinator inserts a cleanup phase, it never suppresses
// termination: once every handler for a signal has run, the signal is
// re-raised against the process with its default disposition restored.
package signals

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/smazurov/procex/internal/logging"
)

// Handler is a cleanup hook. Its error is logged, never propagated: one
// failing handler cannot block the others or the re-raise.
type Handler func() error

// watchable is the set of termination signals the coordinator installs
// listeners for.
var watchable = map[syscall.Signal]bool{
	syscall.SIGINT:  true,
	syscall.SIGTERM: true,
	syscall.SIGHUP:  true,
}

type registration struct {
	fn      Handler
	removed bool
}

// Coordinator dispatches registered handlers, in registration order, when
// the process receives a watched signal. Create one per process at the
// composition root and inject it into subsystems that hold resources.
type Coordinator struct {
	logger logging.Logger

	mu        sync.Mutex
	handlers  map[syscall.Signal][]*registration
	listening map[syscall.Signal]chan os.Signal

	// raise re-raises the signal after the cleanup phase. Tests replace
	// it so they are not killed.
	raise func(sig syscall.Signal)
}

// NewCoordinator creates a signal coordinator. Registrations accumulate
// for the life of the process; there is no teardown.
func NewCoordinator(logger logging.Logger) *Coordinator {
	if logger == nil {
		logger = logging.GetLogger("signals")
	}
	return &Coordinator{
		logger:    logger,
		handlers:  make(map[syscall.Signal][]*registration),
		listening: make(map[syscall.Signal]chan os.Signal),
		raise: func(sig syscall.Signal) {
			_ = unix.Kill(os.Getpid(), sig)
		},
	}
}

// OnSignal registers a handler for one signal and returns an unregister
// function. The first registration for a signal installs the single real
// OS listener for it.
func (c *Coordinator) OnSignal(sig syscall.Signal, fn Handler) func() {
	if !watchable[sig] {
		panic(fmt.Sprintf("signals: %s is not a watched signal", unix.SignalName(sig)))
	}

	c.mu.Lock()
	reg := &registration{fn: fn}
	c.handlers[sig] = append(c.handlers[sig], reg)
	c.ensureListenerLocked(sig)
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		reg.removed = true
		c.mu.Unlock()
	}
}

// OnShutdown registers the same handler for SIGINT and SIGTERM. The
// returned function unregisters both.
func (c *Coordinator) OnShutdown(fn Handler) func() {
	unregInt := c.OnSignal(syscall.SIGINT, fn)
	unregTerm := c.OnSignal(syscall.SIGTERM, fn)
	return func() {
		unregInt()
		unregTerm()
	}
}

// ensureListenerLocked installs the OS listener for sig once.
func (c *Coordinator) ensureListenerLocked(sig syscall.Signal) {
	if _, ok := c.listening[sig]; ok {
		return
	}
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sig)
	c.listening[sig] = ch

	go func() {
		for range ch {
			c.dispatch(sig)
		}
	}()
}

// dispatch runs the cleanup phase for sig and then re-raises it so the
// default OS disposition still occurs. Handlers run sequentially in
// registration order, so later handlers may assume earlier cleanup has
// finished.
func (c *Coordinator) dispatch(sig syscall.Signal) {
	name := unix.SignalName(sig)
	c.logger.Info("Signal received, running shutdown handlers", "signal", name)

	c.mu.Lock()
	regs := make([]*registration, 0, len(c.handlers[sig]))
	for _, reg := range c.handlers[sig] {
		if !reg.removed {
			regs = append(regs, reg)
		}
	}
	c.mu.Unlock()

	for _, reg := range regs {
		c.runHandler(name, reg.fn)
	}

	c.logger.Info("Shutdown handlers complete, re-raising signal", "signal", name)
	signal.Reset(sig)
	c.raise(sig)
}

// runHandler isolates one handler: errors and panics are logged so the
// remaining handlers and the re-raise still happen.
func (c *Coordinator) runHandler(signalName string, fn Handler) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Shutdown handler panicked", "signal", signalName, "panic", r)
		}
	}()
	if err := fn(); err != nil {
		c.logger.Error("Shutdown handler failed", "signal", signalName, "error", err)
	}
}

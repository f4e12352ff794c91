package events

// Event type constants for kelindar/event.
const (
	TypeProcessStarted uint32 = iota + 1
	TypeProcessOutput
	TypeProcessExited
	TypeSignalReceived
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// ProcessStartedEvent is published when a subprocess has been launched.
type ProcessStartedEvent struct {
	PID     int    `json:"pid"`
	Command string `json:"command"`
}

// Type returns the event type identifier for ProcessStartedEvent.
func (e ProcessStartedEvent) Type() uint32 { return TypeProcessStarted }

// ProcessOutputEvent carries one chunk of subprocess output. Source is
// "stdout" or "stderr". Chunks are delivered in the order read from each
// pipe; the two streams are independent of each other.
type ProcessOutputEvent struct {
	PID    int    `json:"pid"`
	Source string `json:"source"`
	Chunk  string `json:"chunk"`
}

// Type returns the event type identifier for ProcessOutputEvent.
func (e ProcessOutputEvent) Type() uint32 { return TypeProcessOutput }

// ProcessExitedEvent is published exactly once per launched subprocess,
// whether it exited, was killed, or failed to start.
type ProcessExitedEvent struct {
	PID      int    `json:"pid"`
	ExitCode int    `json:"exit_code"`
	Signal   string `json:"signal,omitempty"`
	TimedOut bool   `json:"timed_out"`
	Killed   bool   `json:"killed"`
}

// Type returns the event type identifier for ProcessExitedEvent.
func (e ProcessExitedEvent) Type() uint32 { return TypeProcessExited }

// SignalReceivedEvent is published when the host process receives a
// watched OS signal, before shutdown handlers run.
type SignalReceivedEvent struct {
	Signal string `json:"signal"`
}

// Type returns the event type identifier for SignalReceivedEvent.
func (e SignalReceivedEvent) Type() uint32 { return TypeSignalReceived }

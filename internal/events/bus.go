// Package events provides a typed in-process event bus for subprocess
// lifecycle and output notifications, built on kelindar/event.
package events

import (
	"github.com/kelindar/event"
)

// Bus wraps a kelindar/event dispatcher for event broadcasting.
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus.
func New() *Bus {
	return &Bus{dispatcher: event.NewDispatcher()}
}

// Publish publishes an event to all subscribers.
// Usage: bus.Publish(ProcessExitedEvent{...})
func (b *Bus) Publish(ev Event) {
	// kelindar/event dispatches on the concrete type, so the generic
	// Publish must be called with the right static type.
	switch e := ev.(type) {
	case ProcessStartedEvent:
		event.Publish(b.dispatcher, e)
	case ProcessOutputEvent:
		event.Publish(b.dispatcher, e)
	case ProcessExitedEvent:
		event.Publish(b.dispatcher, e)
	case SignalReceivedEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe registers a handler function; its parameter type selects the
// events it receives. Returns an unsubscribe function.
// Usage: unsub := bus.Subscribe(func(e ProcessOutputEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(ProcessStartedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(ProcessOutputEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(ProcessExitedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(SignalReceivedEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		return func() {}
	}
}

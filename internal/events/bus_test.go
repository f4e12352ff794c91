package events

import (
	"sync"
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	bus := New()

	var mu sync.Mutex
	var got []ProcessOutputEvent
	done := make(chan struct{}, 1)

	unsub := bus.Subscribe(func(e ProcessOutputEvent) {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
		select {
		case done <- struct{}{}:
		default:
		}
	})
	defer unsub()

	bus.Publish(ProcessOutputEvent{PID: 42, Source: "stdout", Chunk: "hello"})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event delivery")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0].PID != 42 || got[0].Chunk != "hello" {
		t.Errorf("unexpected events: %v", got)
	}
}

func TestSubscriberTypeIsolation(t *testing.T) {
	bus := New()

	exited := make(chan ProcessExitedEvent, 1)
	unsub := bus.Subscribe(func(e ProcessExitedEvent) {
		exited <- e
	})
	defer unsub()

	// Output events must not reach the exited-event subscriber.
	bus.Publish(ProcessOutputEvent{PID: 1, Source: "stderr", Chunk: "x"})
	bus.Publish(ProcessExitedEvent{PID: 1, ExitCode: 3})

	select {
	case e := <-exited:
		if e.ExitCode != 3 {
			t.Errorf("expected exit code 3, got %d", e.ExitCode)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for exited event")
	}
}

func TestUnsubscribe(t *testing.T) {
	bus := New()

	received := make(chan struct{}, 2)
	unsub := bus.Subscribe(func(ProcessStartedEvent) {
		received <- struct{}{}
	})

	bus.Publish(ProcessStartedEvent{PID: 1, Command: "true"})
	select {
	case <-received:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for first event")
	}

	unsub()
	bus.Publish(ProcessStartedEvent{PID: 2, Command: "true"})

	select {
	case <-received:
		t.Error("received event after unsubscribe")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSubscribeUnknownHandlerType(t *testing.T) {
	bus := New()
	unsub := bus.Subscribe(func(int) {})
	// Unknown handler types get a no-op unsubscribe.
	unsub()
}

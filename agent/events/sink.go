package events

import "sync"

// Sink consumes lifecycle events. Implementations must tolerate being called
// from the orchestrator goroutine; ordering is the emit order.
type Sink interface {
	OnEvent(event Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(event Event)

// OnEvent implements Sink.
func (f SinkFunc) OnEvent(event Event) { f(event) }

// Discard is a Sink that drops every event.
var Discard = SinkFunc(func(Event) {})

// Stream is a channel-backed Sink for streaming transports. Events are
// buffered; Close is idempotent and must be called by the producer once the
// terminal event has been sent.
type Stream struct {
	ch        chan Event
	closeOnce sync.Once
}

// NewStream creates a stream with the given buffer size.
func NewStream(buffer int) *Stream {
	if buffer < 1 {
		buffer = 1
	}
	return &Stream{ch: make(chan Event, buffer)}
}

// OnEvent implements Sink. It blocks when the buffer is full so event order
// is preserved under backpressure.
func (s *Stream) OnEvent(event Event) {
	s.ch <- event
}

// Events returns the receive side of the stream.
func (s *Stream) Events() <-chan Event {
	return s.ch
}

// Close ends the stream. No OnEvent calls may follow.
func (s *Stream) Close() {
	s.closeOnce.Do(func() { close(s.ch) })
}

// Collector is a Sink that records every event, for tests and for callers
// that want the final response without streaming.
type Collector struct {
	mu     sync.Mutex
	events []Event
}

// OnEvent implements Sink.
func (c *Collector) OnEvent(event Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

// Events returns a copy of the recorded events in emit order.
func (c *Collector) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Event{}, c.events...)
}

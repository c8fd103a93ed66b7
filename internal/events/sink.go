package events

import (
	"context"
	"sync"
)

// Event describes a content mutation handed off for live delivery.
// The core does not specify delivery, only the hand-off.
type Event struct {
	ContentType string `json:"content_type"` // "post", "comment", "reaction"
	ContentID   int64  `json:"content_id"`
	ActorID     int64  `json:"actor_id"`
	OwnerID     int64  `json:"owner_id"`
}

// Sink receives post-mutation events. Implementations are fire-and-forget;
// a failed publish must not fail the mutation that produced it. Handlers
// receive a Sink explicitly rather than reaching into process-global state.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// NoopSink discards every event. Used when no real-time transport is
// configured.
type NoopSink struct{}

// Publish implements Sink
func (NoopSink) Publish(ctx context.Context, event Event) error {
	return nil
}

// MemorySink records events in memory for tests
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

// Publish implements Sink
func (s *MemorySink) Publish(ctx context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// Events returns a copy of the recorded events
func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

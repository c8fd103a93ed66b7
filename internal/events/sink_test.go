package events

import (
	"context"
	"testing"
)

func TestMemorySink(t *testing.T) {
	sink := &MemorySink{}

	events := []Event{
		{ContentType: "reaction", ContentID: 1, ActorID: 2, OwnerID: 3},
		{ContentType: "comment", ContentID: 4, ActorID: 2, OwnerID: 3},
	}
	for _, e := range events {
		if err := sink.Publish(context.Background(), e); err != nil {
			t.Fatalf("Publish() error: %v", err)
		}
	}

	got := sink.Events()
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0] != events[0] || got[1] != events[1] {
		t.Errorf("events recorded out of order: %v", got)
	}

	// Returned slice is a copy
	got[0].ContentID = 99
	if sink.Events()[0].ContentID != 1 {
		t.Error("Events() should return a copy")
	}
}

func TestNoopSink(t *testing.T) {
	var sink NoopSink
	if err := sink.Publish(context.Background(), Event{}); err != nil {
		t.Errorf("NoopSink.Publish() error: %v", err)
	}
}

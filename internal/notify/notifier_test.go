package notify

import (
	"context"
	"testing"

	"github.com/murmurapp/murmur/internal/events"
	"github.com/murmurapp/murmur/internal/models"
)

func TestNotifySkipsSelfActions(t *testing.T) {
	sink := &events.MemorySink{}
	// repo stays nil: a self-action must return before any store access
	n := &Notifier{sink: sink}

	if err := n.Notify(context.Background(), models.NotifyTypeReaction, "reaction", 5, 5, 10); err != nil {
		t.Fatalf("Notify() error: %v", err)
	}
	if len(sink.Events()) != 0 {
		t.Error("self-action should not publish an event")
	}
}

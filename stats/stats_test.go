package stats

import (
	"context"
	"errors"
	"testing"
)

func TestCollector(t *testing.T) {
	collector := NewCollector()
	events := make(chan Event, 16)

	events <- Event{Type: EventTypeConversation}
	events <- Event{Type: EventTypeConversation}
	events <- Event{Type: EventTypeConversationSkipped}
	events <- Event{Type: EventTypeConversationFailed, Err: errors.New("boom")}
	events <- Event{Type: EventTypeMessages, Count: 120}
	events <- Event{Type: EventTypeMessagesDropped, Count: 7}
	events <- Event{Type: EventTypePairsKept, Count: 40}
	events <- Event{Type: EventTypePairsFiltered, Count: 5}
	close(events)

	collector.Run(context.Background(), events)
	summary := collector.Snapshot()

	if summary.Conversations != 2 {
		t.Errorf("Conversations = %d, want 2", summary.Conversations)
	}
	if summary.ConversationsSkipped != 1 {
		t.Errorf("ConversationsSkipped = %d, want 1", summary.ConversationsSkipped)
	}
	if summary.ConversationsFailed != 1 {
		t.Errorf("ConversationsFailed = %d, want 1", summary.ConversationsFailed)
	}
	if summary.Messages != 120 {
		t.Errorf("Messages = %d, want 120", summary.Messages)
	}
	if summary.MessagesDropped != 7 {
		t.Errorf("MessagesDropped = %d, want 7", summary.MessagesDropped)
	}
	if summary.PairsKept != 40 {
		t.Errorf("PairsKept = %d, want 40", summary.PairsKept)
	}
	if summary.PairsFiltered != 5 {
		t.Errorf("PairsFiltered = %d, want 5", summary.PairsFiltered)
	}
	if summary.LastError == nil {
		t.Error("LastError not recorded")
	}
}

func TestCollector_StopsOnContextCancel(t *testing.T) {
	collector := NewCollector()
	events := make(chan Event)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		collector.Run(ctx, events)
		close(done)
	}()
	<-done
}

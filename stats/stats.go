package stats

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

type Stage string

const (
	StageArchive Stage = "archive"
	StageExtract Stage = "extract"
	StageClean   Stage = "clean"
	StagePairs   Stage = "pairs"
)

type EventType string

const (
	EventTypeConversation        EventType = "conversation"
	EventTypeConversationSkipped EventType = "conversation_skipped"
	EventTypeConversationFailed  EventType = "conversation_failed"
	EventTypeMessages            EventType = "messages"
	EventTypeMessagesDropped     EventType = "messages_dropped"
	EventTypePairsKept           EventType = "pairs_kept"
	EventTypePairsFiltered       EventType = "pairs_filtered"
)

type Event struct {
	Stage        Stage
	Type         EventType
	Conversation string
	Count        int
	Err          error
}

type Summary struct {
	Conversations        int
	ConversationsSkipped int
	ConversationsFailed  int
	Messages             int
	MessagesDropped      int
	PairsKept            int
	PairsFiltered        int
	LastError            error
}

func (s Summary) LogAttrs() []any {
	attrs := []any{
		"conversations", s.Conversations,
		"conversationsSkipped", s.ConversationsSkipped,
		"conversationsFailed", s.ConversationsFailed,
		"messages", s.Messages,
		"messagesDropped", s.MessagesDropped,
		"pairsKept", s.PairsKept,
		"pairsFiltered", s.PairsFiltered,
	}
	if s.LastError != nil {
		attrs = append(attrs, "lastError", s.LastError.Error())
	}
	return attrs
}

type Collector struct {
	mu      sync.Mutex
	summary Summary
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Run(ctx context.Context, events <-chan Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			c.apply(evt)
		}
	}
}

func (c *Collector) Snapshot() Summary {
	c.mu.Lock()
	summary := c.summary
	c.mu.Unlock()
	return summary
}

func (c *Collector) apply(evt Event) {
	// Count zero means "one occurrence"; batch events set it explicitly.
	count := evt.Count
	if count == 0 {
		count = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	switch evt.Type {
	case EventTypeConversation:
		c.summary.Conversations += count
	case EventTypeConversationSkipped:
		c.summary.ConversationsSkipped += count
	case EventTypeConversationFailed:
		c.summary.ConversationsFailed += count
		if evt.Err != nil {
			c.summary.LastError = evt.Err
		}
	case EventTypeMessages:
		c.summary.Messages += count
	case EventTypeMessagesDropped:
		c.summary.MessagesDropped += count
	case EventTypePairsKept:
		c.summary.PairsKept += count
	case EventTypePairsFiltered:
		c.summary.PairsFiltered += count
	}
}

type EventStream interface {
	SubscribeStats(name string, fn func(context.Context, <-chan Event) error)
}

type Reporter struct {
	collector *Collector
	logger    *slog.Logger
	started   time.Time
}

func NewReporter(stream EventStream, logger *slog.Logger) *Reporter {
	reporter := &Reporter{
		collector: NewCollector(),
		logger:    logger,
		started:   time.Now(),
	}
	stream.SubscribeStats("stats-reporter", reporter.consume)
	return reporter
}

func (r *Reporter) consume(ctx context.Context, events <-chan Event) error {
	r.collector.Run(ctx, events)
	summary := r.collector.Snapshot()
	attrs := append(summary.LogAttrs(), "duration", time.Since(r.started))
	if ctx.Err() != nil {
		if r.logger != nil {
			r.logger.Debug("stats collection stopped", append(attrs, "err", ctx.Err())...)
		}
		return ctx.Err()
	}
	if r.logger != nil {
		r.logger.Info("stats summary", attrs...)
	}
	return nil
}

func (r *Reporter) Summary() Summary {
	return r.collector.Snapshot()
}

// PrettyPrintTop prints the top N most frequent items in a map.
func PrettyPrintTop(m map[string]int, limit int) {
	type pair struct {
		Key   string
		Value int
	}

	var pairs []pair
	for k, v := range m {
		pairs = append(pairs, pair{k, v})
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].Value > pairs[j].Value
	})

	for i := 0; i < limit && i < len(pairs); i++ {
		fmt.Printf("%d. %s (%d)\n", i+1, pairs[i].Key, pairs[i].Value)
	}
}

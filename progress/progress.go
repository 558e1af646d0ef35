package progress

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pterm/pterm"

	"github.com/slgero/talk-with-me/stats"
)

// Bar manages a progress bar that advances once per finished conversation.
type Bar struct {
	pb      *pterm.ProgressbarPrinter
	total   int
	mu      sync.Mutex
	enabled bool
}

// New creates a progress bar across all conversations. Disabled bars are
// safe no-ops so callers never branch on --no-progress themselves.
func New(total int, enabled bool) *Bar {
	bar := &Bar{
		total:   total,
		enabled: enabled && total > 0,
	}

	if bar.enabled {
		pb, _ := pterm.DefaultProgressbar.
			WithTotal(total).
			WithTitle("Processing conversations").
			Start()
		bar.pb = pb

		pterm.Info.Printf("Conversations in archive: %d\n", total)
		pterm.Println()
	}

	return bar
}

// Update advances the bar on conversation-level events.
func (b *Bar) Update(evt stats.Event) {
	if !b.enabled || b.pb == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	switch evt.Type {
	case stats.EventTypeConversation, stats.EventTypeConversationSkipped:
		b.pb.Increment()
		if evt.Conversation != "" {
			b.pb.UpdateTitle("Processed: " + evt.Conversation)
		}
	case stats.EventTypeConversationFailed:
		b.pb.Increment()
		if evt.Err != nil {
			pterm.Error.Printf("Conversation %s: %v\n", evt.Conversation, evt.Err)
		}
	}
}

// Stop finalizes the progress bar.
func (b *Bar) Stop() {
	if !b.enabled || b.pb == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pb.Current < b.total {
		b.pb.Current = b.total
	}

	b.pb.Stop()
	pterm.Success.Println("Processing complete!")
}

// Subscriber creates a stats subscriber function that updates the progress
// bar.
func (b *Bar) Subscriber(ctx context.Context, events <-chan stats.Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-events:
			if !ok {
				return nil
			}
			b.Update(evt)
		}
	}
}

// Reporter pairs the bar with a stats collector and prints a final summary
// once the event stream closes.
type Reporter struct {
	bar       *Bar
	collector *stats.Collector
	logger    *slog.Logger
	started   time.Time
}

func NewReporter(stream stats.EventStream, bar *Bar, logger *slog.Logger) *Reporter {
	reporter := &Reporter{
		bar:       bar,
		collector: stats.NewCollector(),
		logger:    logger,
		started:   time.Now(),
	}

	if bar != nil && bar.enabled {
		stream.SubscribeStats("progress-bar", bar.Subscriber)
		stream.SubscribeStats("progress-stats", reporter.collectStats)
	}

	return reporter
}

func (r *Reporter) collectStats(ctx context.Context, events <-chan stats.Event) error {
	r.collector.Run(ctx, events)

	summary := r.collector.Snapshot()
	duration := time.Since(r.started)

	pterm.Println()
	pterm.DefaultSection.Println("Summary Statistics")
	pterm.Info.Printf("Duration: %v\n", duration)
	pterm.Info.Printf("Conversations: %d\n", summary.Conversations)
	pterm.Info.Printf("Skipped (too short): %d\n", summary.ConversationsSkipped)
	pterm.Info.Printf("Failed: %d\n", summary.ConversationsFailed)
	pterm.Info.Printf("Messages extracted: %d\n", summary.Messages)
	pterm.Info.Printf("Messages dropped by cleaning: %d\n", summary.MessagesDropped)
	pterm.Info.Printf("Pairs kept: %d\n", summary.PairsKept)
	pterm.Info.Printf("Pairs filtered by length: %d\n", summary.PairsFiltered)
	if summary.LastError != nil {
		pterm.Error.Printf("Last error: %v\n", summary.LastError)
	}

	return nil
}

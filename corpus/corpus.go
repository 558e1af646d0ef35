// Package corpus drives the whole pipeline: it walks the archive, runs each
// conversation through extraction, cleaning and (in dialogue mode) turn
// assembly, and aggregates the per-conversation results. Conversations are
// independent units of work, so they run on a bounded worker pool; results
// are sorted by conversation id afterwards to keep the output
// deterministic.
package corpus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"

	"github.com/slgero/talk-with-me/archive"
	"github.com/slgero/talk-with-me/cleaner"
	"github.com/slgero/talk-with-me/dialogue"
	"github.com/slgero/talk-with-me/extract"
	"github.com/slgero/talk-with-me/model"
	"github.com/slgero/talk-with-me/stats"
)

// Mode selects the corpus shape: a flat per-conversation message list for
// text generation, or (prompt, response) pairs for a dialogue model.
type Mode string

const (
	ModeTextGeneration Mode = "text-generation"
	ModeDialoguePairs  Mode = "dialogue-pairs"
)

type Options struct {
	Root          string
	Mode          Mode
	MinPages      int
	MaxTurnLength int
	Workers       int
}

// Corpus holds the aggregated output. Conversations is populated in
// text-generation mode, Pairs in dialogue-pairs mode.
type Corpus struct {
	Conversations []model.Conversation
	Pairs         []model.Pair
}

type Builder struct {
	opts   Options
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	subMu sync.Mutex
	subs  []chan stats.Event

	statsWG         sync.WaitGroup
	closeEventsOnce sync.Once
}

func New(opts Options, logger *slog.Logger) (*Builder, error) {
	if opts.Root == "" {
		return nil, fmt.Errorf("archive root is empty")
	}
	if opts.MinPages < 1 {
		return nil, fmt.Errorf("min pages must be at least 1")
	}
	if opts.MaxTurnLength < 1 {
		return nil, fmt.Errorf("max turn length must be at least 1")
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	switch opts.Mode {
	case ModeTextGeneration, ModeDialoguePairs:
	default:
		return nil, fmt.Errorf("unknown mode: %s", opts.Mode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Builder{
		opts:   opts,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// SubscribeStats runs fn against its own copy of the event stream until the
// stream closes. Every subscriber sees every event.
func (b *Builder) SubscribeStats(name string, fn func(context.Context, <-chan stats.Event) error) {
	events := make(chan stats.Event, 128)
	b.subMu.Lock()
	b.subs = append(b.subs, events)
	b.subMu.Unlock()

	b.statsWG.Add(1)
	go func() {
		defer b.statsWG.Done()
		if err := fn(b.ctx, events); err != nil && !errors.Is(err, context.Canceled) {
			if b.logger != nil {
				b.logger.Error("stats subscriber failed", "name", name, "err", err)
			}
		}
		// Keep draining if fn returned before the stream closed, so a
		// full channel can never block the workers behind EmitEvent.
		for range events {
		}
	}()
}

func (b *Builder) EmitEvent(evt stats.Event) {
	b.subMu.Lock()
	subs := b.subs
	b.subMu.Unlock()

	for _, events := range subs {
		select {
		case <-b.ctx.Done():
			return
		case events <- evt:
		}
	}
}

// ConversationCount returns how many valid conversation folders the archive
// holds, for progress sizing.
func (b *Builder) ConversationCount() int {
	return len(archive.ListConversations(b.opts.Root, b.logger))
}

// Run processes every conversation and returns the aggregated corpus. A
// failing conversation is logged, counted and omitted; it never aborts the
// rest of the archive.
func (b *Builder) Run() (*Corpus, error) {
	defer func() {
		b.closeEvents()
		b.statsWG.Wait()
		b.cancel()
	}()

	folders := archive.ListConversations(b.opts.Root, b.logger)

	jobs := make(chan string)
	results := make(chan model.Result, len(folders))

	var workWG sync.WaitGroup
	for i := 0; i < b.opts.Workers; i++ {
		workWG.Add(1)
		go func() {
			defer workWG.Done()
			for id := range jobs {
				results <- b.process(id)
			}
		}()
	}

	for _, id := range folders {
		jobs <- id
	}
	close(jobs)
	workWG.Wait()
	close(results)

	var completed []model.Result
	for result := range results {
		switch {
		case result.Err != nil:
			if b.logger != nil {
				b.logger.Error("conversation failed", "id", result.ID, "err", result.Err)
			}
			b.EmitEvent(stats.Event{Stage: stats.StageArchive, Type: stats.EventTypeConversationFailed, Conversation: result.ID, Err: result.Err})
		case result.Skipped:
			b.EmitEvent(stats.Event{Stage: stats.StageArchive, Type: stats.EventTypeConversationSkipped, Conversation: result.ID})
		default:
			b.EmitEvent(stats.Event{Stage: stats.StageArchive, Type: stats.EventTypeConversation, Conversation: result.ID})
			completed = append(completed, result)
		}
	}

	// Worker completion order is nondeterministic; the corpus order is not.
	sort.Slice(completed, func(i, j int) bool {
		return completed[i].ID < completed[j].ID
	})

	corpus := &Corpus{}
	for _, result := range completed {
		if b.opts.Mode == ModeTextGeneration {
			corpus.Conversations = append(corpus.Conversations, model.Conversation{ID: result.ID, Messages: result.Messages})
		} else {
			corpus.Pairs = append(corpus.Pairs, result.Pairs...)
		}
	}
	return corpus, nil
}

func (b *Builder) process(id string) model.Result {
	folder := filepath.Join(b.opts.Root, id)

	pages, err := archive.ListPages(folder, b.opts.MinPages)
	if err != nil {
		return model.Result{ID: id, Err: err}
	}
	if len(pages) == 0 {
		return model.Result{ID: id, Skipped: true}
	}

	if b.opts.Mode == ModeTextGeneration {
		return b.processFlat(id, folder, pages)
	}
	return b.processPairs(id, folder, pages)
}

// processFlat cleans every message body and keeps the survivors in
// chronological order.
func (b *Builder) processFlat(id, folder string, pages []archive.Page) model.Result {
	raws, err := extract.Extract(folder, pages, extract.ModeStripAuthor)
	if err != nil {
		return model.Result{ID: id, Err: err}
	}
	b.EmitEvent(stats.Event{Stage: stats.StageExtract, Type: stats.EventTypeMessages, Conversation: id, Count: len(raws)})

	var messages []string
	for _, raw := range raws {
		if cleaned := cleaner.Clean(raw.Text); cleaned != "" {
			messages = append(messages, cleaned)
		}
	}
	if dropped := len(raws) - len(messages); dropped > 0 {
		b.EmitEvent(stats.Event{Stage: stats.StageClean, Type: stats.EventTypeMessagesDropped, Conversation: id, Count: dropped})
	}

	return model.Result{ID: id, Messages: messages}
}

// processPairs merges the stream into turns and emits length-filtered
// (prompt, response) pairs.
func (b *Builder) processPairs(id, folder string, pages []archive.Page) model.Result {
	raws, err := extract.Extract(folder, pages, extract.ModeRetainAuthor)
	if err != nil {
		return model.Result{ID: id, Err: err}
	}
	b.EmitEvent(stats.Event{Stage: stats.StageExtract, Type: stats.EventTypeMessages, Conversation: id, Count: len(raws)})

	turns := dialogue.MergeTurns(raws)
	pairs := dialogue.BuildPairs(turns)
	kept, err := dialogue.FilterPairs(pairs, b.opts.MaxTurnLength)
	if err != nil {
		return model.Result{ID: id, Err: err}
	}

	if len(kept) > 0 {
		b.EmitEvent(stats.Event{Stage: stats.StagePairs, Type: stats.EventTypePairsKept, Conversation: id, Count: len(kept)})
	}
	if filtered := len(pairs) - len(kept); filtered > 0 {
		b.EmitEvent(stats.Event{Stage: stats.StagePairs, Type: stats.EventTypePairsFiltered, Conversation: id, Count: filtered})
	}

	return model.Result{ID: id, Pairs: kept}
}

func (b *Builder) closeEvents() {
	b.closeEventsOnce.Do(func() {
		b.subMu.Lock()
		defer b.subMu.Unlock()
		for _, events := range b.subs {
			close(events)
		}
	})
}

// Package engine drives the resumable batch workflow: fetch a page of
// bookmarks, get advisory suggestions, wait for the reviewer's decisions,
// apply them, checkpoint, repeat until the collection is exhausted.
//
// The engine owns the session lifecycle. Collaborators are injected behind
// small interfaces so the whole loop is testable without network or terminal.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"riptide/internal/domain"
	"riptide/internal/log"
	"riptide/internal/pubsub"
	"riptide/internal/state"
)

// ErrInterrupted reports that the session was stopped by the reviewer or by
// context cancellation. Progress up to the interruption is checkpointed.
var ErrInterrupted = errors.New("session interrupted")

// maxPages bounds the page loop so a pathological API response cannot spin
// the engine forever.
const maxPages = 1000

// Source pages through a collection's bookmarks. FetchPage returns the page's
// bookmarks newest first plus the collection's total bookmark count.
type Source interface {
	FetchPage(ctx context.Context, collectionID int64, page int) ([]domain.Bookmark, int, error)
}

// Advisor produces per-bookmark suggestions for a batch. A failed or partial
// response is not fatal: missing suggestions degrade to fallback decisions.
type Advisor interface {
	Suggest(ctx context.Context, batch []domain.Bookmark, collections []domain.Collection, current domain.CollectionRef) (map[int64]domain.Suggestion, error)
}

// Executor applies one finalized decision against the bookmark service.
type Executor interface {
	Apply(ctx context.Context, d domain.Decision) error
}

// ReviewRequest is everything the reviewer needs to present one batch.
type ReviewRequest struct {
	BatchNum    int
	Batch       []domain.Bookmark
	Suggestions map[int64]domain.Suggestion
	Collection  domain.CollectionRef
	Stats       domain.Stats
}

// ReviewResponse carries the reviewer's verdict for one batch.
type ReviewResponse struct {
	// Overrides replaces the suggestion for specific bookmark ids.
	Overrides map[int64]domain.Override
	// SkipBatch marks the whole batch processed without applying anything.
	SkipBatch bool
	// Quit interrupts the session after a forced checkpoint.
	Quit bool
}

// Reviewer presents a batch and blocks until the human decides. Returning an
// error (including context cancellation) interrupts the session.
type Reviewer interface {
	Review(ctx context.Context, req ReviewRequest) (ReviewResponse, error)
}

// Progress is the payload of engine events published on the broker.
type Progress struct {
	Phase      Phase
	BatchNum   int
	Page       int
	Collection domain.CollectionRef
	Stats      domain.Stats
	Total      int
	Message    string
}

// Options tunes a run. Zero values are valid except BatchSize.
type Options struct {
	BatchSize int
	// DryRun previews decisions without calling the executor.
	DryRun bool
	// MilestoneInterval publishes a milestone event every N processed
	// bookmarks. 0 disables milestones.
	MilestoneInterval int
	// CheckpointPerRecord commits after every record instead of per batch.
	CheckpointPerRecord bool
	// RetainState keeps the session file after exhaustion.
	RetainState bool
}

// Engine runs one collection's cleanup session.
type Engine struct {
	source   Source
	advisor  Advisor
	executor Executor
	reviewer Reviewer
	store    *state.Store
	session  *state.Session

	collections []domain.Collection
	current     domain.CollectionRef
	opts        Options
	broker      *pubsub.Broker[Progress]

	batchNum    int
	total       int
	lastAccrual time.Time
}

// New creates an engine for one session. The session may be fresh or loaded
// from a checkpoint; the engine does not care which.
func New(source Source, advisor Advisor, executor Executor, reviewer Reviewer, store *state.Store, session *state.Session, collections []domain.Collection, opts Options) (*Engine, error) {
	if opts.BatchSize < 1 {
		return nil, fmt.Errorf("batch size must be at least 1, got %d", opts.BatchSize)
	}

	return &Engine{
		source:   source,
		advisor:  advisor,
		executor: executor,
		reviewer: reviewer,
		store:    store,
		session:  session,
		collections: collections,
		current: domain.CollectionRef{
			ID:   session.CollectionID,
			Name: session.CollectionName,
		},
		opts:   opts,
		broker: pubsub.NewBroker[Progress](),
	}, nil
}

// Events returns the broker carrying progress, milestone, and checkpoint
// events for this run.
func (e *Engine) Events() *pubsub.Broker[Progress] {
	return e.broker
}

// Session exposes the live session, mainly for final reporting.
func (e *Engine) Session() *state.Session {
	return e.session
}

// Run processes the collection until exhaustion or interruption. On
// interruption it forces a checkpoint and returns ErrInterrupted; the next
// run resumes from the committed state. Per-record failures are counted and
// skipped over, they never stop the session.
func (e *Engine) Run(ctx context.Context) error {
	e.lastAccrual = time.Now()
	log.Info(log.CatEngine, "session started",
		"collection", e.current.Name,
		"resumeCursor", e.session.Cursor,
		"alreadyProcessed", len(e.session.ProcessedIDs))

	for e.session.Cursor < maxPages {
		if err := ctx.Err(); err != nil {
			return e.interrupt("context cancelled")
		}

		e.publish(pubsub.ProgressEvent, PhaseFetching, "")
		bookmarks, total, err := e.source.FetchPage(ctx, e.current.ID, e.session.Cursor)
		if err != nil {
			// A dead source means nothing further can happen; preserve
			// progress and surface the failure.
			if cerr := e.checkpoint(); cerr != nil {
				log.ErrorErr(log.CatEngine, "checkpoint after source failure", cerr)
			}
			return fmt.Errorf("fetching page %d: %w", e.session.Cursor, err)
		}
		e.total = total

		if len(bookmarks) == 0 {
			return e.exhausted()
		}

		unprocessed := e.session.FilterUnprocessed(bookmarks)
		if len(unprocessed) == 0 {
			log.Debug(log.CatEngine, "page fully processed, advancing", "page", e.session.Cursor)
			e.session.Cursor++
			if err := e.checkpoint(); err != nil {
				return err
			}
			continue
		}

		for start := 0; start < len(unprocessed); start += e.opts.BatchSize {
			end := min(start+e.opts.BatchSize, len(unprocessed))
			if err := e.runBatch(ctx, unprocessed[start:end]); err != nil {
				return err
			}
		}

		e.session.Cursor++
		if err := e.checkpoint(); err != nil {
			return err
		}
	}

	log.Warn(log.CatEngine, "page limit reached", "pages", maxPages)
	return e.exhausted()
}

// runBatch takes one batch through advising, review, apply, and checkpoint.
func (e *Engine) runBatch(ctx context.Context, batch []domain.Bookmark) error {
	if err := ctx.Err(); err != nil {
		return e.interrupt("context cancelled")
	}

	e.batchNum++
	log.Info(log.CatEngine, "batch started", "batch", e.batchNum, "size", len(batch))

	e.publish(pubsub.ProgressEvent, PhaseAdvising, "")
	suggestions, err := e.advisor.Suggest(ctx, batch, e.collections, e.current)
	if err != nil {
		if ctx.Err() != nil {
			return e.interrupt("context cancelled")
		}
		// Advisory outage degrades to fallback decisions, it never halts.
		log.ErrorErr(log.CatAdvisor, "advisory failed, falling back", err, "batch", e.batchNum)
		suggestions = nil
	}

	e.publish(pubsub.ProgressEvent, PhaseAwaitingDecisions, "")
	resp, err := e.reviewer.Review(ctx, ReviewRequest{
		BatchNum:    e.batchNum,
		Batch:       batch,
		Suggestions: suggestions,
		Collection:  e.current,
		Stats:       e.session.Stats,
	})
	if err != nil {
		return e.interrupt(fmt.Sprintf("review aborted: %v", err))
	}
	if resp.Quit {
		return e.interrupt("reviewer quit")
	}

	if resp.SkipBatch {
		for _, b := range batch {
			e.session.MarkProcessed(b.ID)
		}
		e.session.Stats.RecordSkipped(len(batch))
		log.Info(log.CatEngine, "batch skipped", "batch", e.batchNum, "size", len(batch))
		return e.checkpoint()
	}

	e.publish(pubsub.ProgressEvent, PhaseApplying, "")
	decisions := domain.ResolveBatch(batch, suggestions, resp.Overrides, e.current)
	for _, d := range decisions {
		// Cancellation between records leaves the remainder unprocessed for
		// the next run instead of miscounting them as mutation failures.
		if ctx.Err() != nil {
			return e.interrupt("context cancelled")
		}

		var applyErr error
		if d.Action.Mutates() && !e.opts.DryRun {
			applyErr = e.executor.Apply(ctx, d)
			if applyErr != nil {
				if errors.Is(applyErr, context.Canceled) || errors.Is(applyErr, context.DeadlineExceeded) {
					return e.interrupt("context cancelled")
				}
				// Count it and keep going: one broken bookmark must not
				// strand the rest of the batch.
				log.ErrorErr(log.CatEngine, "apply failed", applyErr, "bookmark", d.BookmarkID, "action", d.Action)
			}
		}

		e.session.Stats.RecordOutcome(d, applyErr)
		e.session.MarkProcessed(d.BookmarkID)

		if e.opts.CheckpointPerRecord {
			if err := e.checkpoint(); err != nil {
				return err
			}
		}
		e.milestone()
	}

	return e.checkpoint()
}

// checkpoint commits the session atomically and announces it.
func (e *Engine) checkpoint() error {
	e.accrueActive()
	e.publish(pubsub.ProgressEvent, PhaseCheckpointing, "")
	if err := e.store.Commit(e.session); err != nil {
		return fmt.Errorf("checkpointing session: %w", err)
	}
	e.publish(pubsub.CheckpointEvent, PhaseCheckpointing, "")
	return nil
}

// interrupt forces a checkpoint and reports the interruption. The checkpoint
// failure is logged but never masks ErrInterrupted.
func (e *Engine) interrupt(reason string) error {
	log.Info(log.CatEngine, "session interrupted", "reason", reason, "processed", e.session.Stats.Processed)
	if err := e.checkpoint(); err != nil {
		log.ErrorErr(log.CatEngine, "checkpoint on interrupt", err)
	}
	e.publish(pubsub.ProgressEvent, PhaseInterrupted, reason)
	return ErrInterrupted
}

// exhausted finishes the collection: commit or delete state per options.
func (e *Engine) exhausted() error {
	log.Info(log.CatEngine, "collection exhausted",
		"collection", e.current.Name,
		"processed", e.session.Stats.Processed)

	if e.opts.RetainState {
		if err := e.checkpoint(); err != nil {
			return err
		}
	} else {
		path := e.store.Path(e.session.CollectionID, e.session.CollectionName)
		if err := e.store.Delete(path); err != nil {
			return fmt.Errorf("cleaning up session file: %w", err)
		}
	}

	e.publish(pubsub.ProgressEvent, PhaseExhausted, "")
	return nil
}

// milestone publishes a notification every MilestoneInterval processed
// bookmarks.
func (e *Engine) milestone() {
	interval := e.opts.MilestoneInterval
	if interval <= 0 || e.session.Stats.Processed == 0 {
		return
	}
	if e.session.Stats.Processed%interval != 0 {
		return
	}
	msg := fmt.Sprintf("%d bookmarks processed", e.session.Stats.Processed)
	log.Info(log.CatEngine, "milestone", "processed", e.session.Stats.Processed)
	e.publish(pubsub.MilestoneEvent, PhaseApplying, msg)
}

// accrueActive folds wall-clock time since the last accrual into the session.
func (e *Engine) accrueActive() {
	now := time.Now()
	e.session.ActiveSeconds += int64(now.Sub(e.lastAccrual).Seconds())
	e.lastAccrual = now
}

func (e *Engine) publish(eventType pubsub.EventType, phase Phase, msg string) {
	e.broker.Publish(eventType, Progress{
		Phase:      phase,
		BatchNum:   e.batchNum,
		Page:       e.session.Cursor,
		Collection: e.current,
		Stats:      e.session.Stats,
		Total:      e.total,
		Message:    msg,
	})
}

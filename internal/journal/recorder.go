package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/roach88/scorebridge/internal/config"
	"github.com/roach88/scorebridge/internal/queue"
	"github.com/roach88/scorebridge/internal/render"
	"github.com/roach88/scorebridge/internal/score"
)

var _ render.Observer = (*Recorder)(nil)

type entryOp uint8

const (
	opBegin entryOp = iota
	opCommand
	opFinish
)

// entry is one pending journal write, in render order.
type entry struct {
	op      entryOp
	runID   string
	cmd     Command
	outcome render.Outcome
}

// Recorder journals applied commands through the render.Observer hook.
//
// Thread-safety model:
//   - Observer methods: called on the render goroutine; push and return
//   - Run(): one goroutine per Recorder
//   - Flush(), Pending(), Written(), Dropped(): safe from any goroutine
//
// Entries are written in the order the render goroutine produced them, so
// a run row always precedes its commands.
type Recorder struct {
	store     *Store
	pending   *queue.Queue[entry]
	wake      chan struct{}
	interval  time.Duration
	batchSize int
	logger    *slog.Logger

	mu      sync.Mutex // serializes flushes
	written atomic.Int64
	dropped atomic.Int64
}

// NewRecorder creates a recorder writing to store with the flush interval
// and batch size of cfg.
func NewRecorder(store *Store, cfg config.Journal, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	interval := cfg.FlushInterval
	if interval <= 0 {
		interval = config.Default().Journal.FlushInterval
	}
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = config.Default().Journal.BatchSize
	}
	return &Recorder{
		store:     store,
		pending:   queue.New[entry](),
		wake:      make(chan struct{}, 1),
		interval:  interval,
		batchSize: batch,
		logger:    logger,
	}
}

// RunStarted implements render.Observer.
func (r *Recorder) RunStarted(runID string) {
	r.push(entry{op: opBegin, runID: runID})
}

// EventApplied implements render.Observer. The event's fields are owned by
// the event and never reused, so they are kept without copying.
func (r *Recorder) EventApplied(runID string, block, seq int64, ev score.Event) {
	r.push(entry{op: opCommand, runID: runID, cmd: Command{
		RunID:  runID,
		Seq:    seq,
		Block:  block,
		Kind:   KindEvent,
		Opcode: ev.Opcode,
		Fields: ev.Fields,
	}})
}

// TextApplied implements render.Observer.
func (r *Recorder) TextApplied(runID string, block, seq int64, text score.Text) {
	r.push(entry{op: opCommand, runID: runID, cmd: Command{
		RunID: runID,
		Seq:   seq,
		Block: block,
		Kind:  KindText,
		Text:  string(text),
	}})
}

// RunFinished implements render.Observer.
func (r *Recorder) RunFinished(out render.Outcome) {
	r.push(entry{op: opFinish, runID: out.RunID, outcome: out})
}

// push never blocks: the wake-up signal is dropped if one is already pending.
func (r *Recorder) push(e entry) {
	r.pending.Push(e)
	if r.pending.Len() >= r.batchSize || e.op == opFinish {
		select {
		case r.wake <- struct{}{}:
		default:
		}
	}
}

// Pending returns the approximate number of entries not yet written.
func (r *Recorder) Pending() int {
	return r.pending.Len()
}

// Written returns the number of entries committed so far.
func (r *Recorder) Written() int64 {
	return r.written.Load()
}

// Dropped returns the number of entries that could not be written even
// on their own.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// Run flushes pending entries every flush interval, when a batch fills,
// and when a run finishes. Blocks until ctx is cancelled, then performs a
// final flush. Returns the error of the final flush, if any.
func (r *Recorder) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Debug("journal recorder started", "flush_interval", r.interval, "batch_size", r.batchSize)
	for {
		select {
		case <-ctx.Done():
			_, err := r.Flush(context.WithoutCancel(ctx))
			r.logger.Debug("journal recorder stopped", "written", r.written.Load(), "dropped", r.dropped.Load())
			return err
		case <-ticker.C:
		case <-r.wake:
		}
		if _, err := r.Flush(ctx); err != nil && !errors.Is(err, context.Canceled) {
			r.logger.Error("journal flush failed", "error", err)
		}
	}
}

// Flush writes every pending entry, one transaction per batch.
// Returns the number of entries written.
//
// A batch that fails to commit is retried one entry per transaction, so a
// bad entry costs only itself. During the retry a command whose run row is
// missing gets one created. Entries that still fail are dropped and
// counted; the remaining batches are still attempted.
func (r *Recorder) Flush(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		total int
		errs  []error
	)
	batch := make([]entry, 0, r.batchSize)
	for {
		batch = batch[:0]
		for len(batch) < r.batchSize {
			e, ok := r.pending.Pop()
			if !ok {
				break
			}
			batch = append(batch, e)
		}
		if len(batch) == 0 {
			break
		}

		err := r.writeBatch(ctx, batch, false)
		if err == nil {
			r.written.Add(int64(len(batch)))
			total += len(batch)
			continue
		}
		r.logger.Warn("journal batch failed, retrying entries one by one",
			"entries", len(batch), "error", err)

		for i := range batch {
			if err := r.writeBatch(ctx, batch[i:i+1], true); err != nil {
				r.dropped.Add(1)
				errs = append(errs, err)
				continue
			}
			r.written.Add(1)
			total++
		}
	}
	return total, errors.Join(errs...)
}

// writeBatch writes entries in one transaction. With ensureRun set, every
// command first creates its run row if it is missing.
func (r *Recorder) writeBatch(ctx context.Context, batch []entry, ensureRun bool) error {
	tx, err := r.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("journal batch: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	for _, e := range batch {
		switch e.op {
		case opBegin:
			err = beginRun(ctx, tx, e.runID)
		case opCommand:
			if ensureRun {
				err = beginRun(ctx, tx, e.runID)
			}
			if err == nil {
				err = writeCommand(ctx, tx, e.cmd)
			}
		case opFinish:
			err = finishRun(ctx, tx, e.outcome)
		}
		if err != nil {
			return fmt.Errorf("journal batch: run %s: %w", e.runID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("journal batch: commit: %w", err)
	}
	return nil
}

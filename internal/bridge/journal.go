package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/scorebridge/internal/config"
	"github.com/roach88/scorebridge/internal/journal"
)

// recording is a journal store and the recorder goroutine writing to it.
type recording struct {
	store    *journal.Store
	recorder *journal.Recorder
	cancel   context.CancelFunc
	done     chan error // receives the recorder's final flush error
}

// Open validates cfg and creates a bridge from it. When cfg.Journal.Path
// is set, the bridge opens the journal there and records every run into
// it until Close. Later options override cfg.
func Open(cfg config.Config, opts ...Option) (*Bridge, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("bridge: %w", err)
	}
	b := New(append([]Option{WithConfig(cfg)}, opts...)...)

	path := b.cfg.Journal.Path
	if path == "" {
		return b, nil
	}
	st, err := journal.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrJournal, err)
	}

	rec := journal.NewRecorder(st, b.cfg.Journal, b.logger)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- rec.Run(ctx) }()

	b.rec = &recording{store: st, recorder: rec, cancel: cancel, done: done}
	b.observers = append(b.observers, rec)
	b.logger.Info("journal opened", "path", path)
	return b, nil
}

// Journal returns the store opened by Open, or nil when journaling is off.
// The store is closed by Close.
func (b *Bridge) Journal() *journal.Store {
	if b.rec == nil {
		return nil
	}
	return b.rec.store
}

// Recorder returns the recorder feeding Journal, or nil when journaling is
// off.
func (b *Bridge) Recorder() *journal.Recorder {
	if b.rec == nil {
		return nil
	}
	return b.rec.recorder
}

// close stops the recorder, which flushes what is pending, then closes
// the store. The render goroutine must already have exited.
func (r *recording) close(logger *slog.Logger) error {
	r.cancel()
	flushErr := <-r.done
	closeErr := r.store.Close()
	logger.Debug("journal closed",
		"written", r.recorder.Written(), "dropped", r.recorder.Dropped())

	if err := errors.Join(flushErr, closeErr); err != nil {
		return fmt.Errorf("%w: %w", ErrJournal, err)
	}
	return nil
}

package bridge

import (
	"log/slog"
	"os"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/roach88/scorebridge/internal/config"
	"github.com/roach88/scorebridge/internal/queue"
	"github.com/roach88/scorebridge/internal/render"
	"github.com/roach88/scorebridge/internal/score"
	"github.com/roach88/scorebridge/internal/synth"
)

// handle boxes the bound engine so it can be swapped atomically.
type handle struct {
	engine synth.Engine
}

// run is one render goroutine and its loop.
type run struct {
	id   string
	loop *render.Loop
	done chan struct{} // closed when the render goroutine has exited
}

// Bridge is the asynchronous bridge between caller goroutines and the
// render goroutine.
type Bridge struct {
	handle atomic.Pointer[handle]
	events *queue.Queue[score.Event]
	texts  *queue.Queue[score.Text]

	// mu serializes BindEngine, Start, Stop and Close. The render goroutine
	// never takes it.
	mu     sync.Mutex
	closed bool

	cur     atomic.Pointer[run]            // active or finished-but-unjoined run
	last    atomic.Pointer[run]            // most recently started run
	outcome atomic.Pointer[render.Outcome] // outcome of the last finished run
	running atomic.Bool

	discarded atomic.Int64 // commands dropped by Close

	cfg       config.Config
	hasCfg    bool
	logger    *slog.Logger
	observers []render.Observer
	ids       RunIDGenerator
	rec       *recording // journal opened by Open, nil otherwise
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the logger. Default: slog.Default(), or a stderr logger
// at the configured level when WithConfig is used.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) {
		b.logger = logger
	}
}

// WithObserver installs a render observer (e.g. a journal recorder) on
// every run. Observers are notified in the order they were installed.
func WithObserver(o render.Observer) Option {
	return func(b *Bridge) {
		if o != nil {
			b.observers = append(b.observers, o)
		}
	}
}

// WithRunIDs sets the run ID generator. Default: UUIDv7Generator.
func WithRunIDs(g RunIDGenerator) Option {
	return func(b *Bridge) {
		b.ids = g
	}
}

// WithConfig applies a loaded configuration.
func WithConfig(cfg config.Config) Option {
	return func(b *Bridge) {
		b.cfg = cfg
		b.hasCfg = true
	}
}

// New creates an unbound, stopped bridge.
func New(opts ...Option) *Bridge {
	b := &Bridge{
		events: queue.New[score.Event](),
		texts:  queue.New[score.Text](),
		cfg:    config.Default(),
		ids:    UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		if b.hasCfg {
			b.logger = b.cfg.Logger(os.Stderr)
		} else {
			b.logger = slog.Default()
		}
	}
	return b
}

// BindEngine associates the bridge with an engine. Passing nil unbinds it.
//
// Returns ErrRunning while a render goroutine is active and ErrClosed
// after Close. A run that already ended on its own is joined first.
func (b *Bridge) BindEngine(e synth.Engine) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}
	if b.running.Load() {
		return ErrRunning
	}
	b.joinLocked()

	if e == nil {
		b.handle.Store(nil)
		b.logger.Debug("engine unbound")
		return nil
	}
	b.handle.Store(&handle{engine: e})
	b.logger.Debug("engine bound")
	return nil
}

// Start spawns the render goroutine and returns immediately.
//
// Returns ErrEngineUnavailable if no engine is bound. Starting while a run
// is active is a no-op that returns nil; at most one render goroutine
// exists at any time.
func (b *Bridge) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	h := b.handle.Load()
	if b.closed || h == nil {
		return ErrEngineUnavailable
	}
	if b.running.Load() {
		if r := b.cur.Load(); r != nil {
			b.logger.Debug("start ignored: render loop already running", "run_id", r.id)
		}
		return nil
	}
	b.joinLocked()

	opts := []render.Option{
		render.WithLogger(b.logger),
		render.WithAnnounce(b.cfg.Announce),
	}
	switch len(b.observers) {
	case 0:
	case 1:
		opts = append(opts, render.WithObserver(b.observers[0]))
	default:
		opts = append(opts, render.WithObserver(fanout(b.observers)))
	}

	r := &run{
		id:   b.ids.Generate(),
		loop: render.New(h.engine, b.events, b.texts, opts...),
		done: make(chan struct{}),
	}
	b.cur.Store(r)
	b.last.Store(r)
	b.running.Store(true)

	go b.render(r)
	return nil
}

// render is the body of the render goroutine.
func (b *Bridge) render(r *run) {
	defer close(r.done)
	if b.cfg.LockOSThread {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
	}

	out, err := r.loop.Run(r.id)
	if err != nil {
		// Each run gets a fresh loop, so this only fires on a programming error.
		b.logger.Error("render loop refused to run", "run_id", r.id, "error", err)
		out = render.Outcome{RunID: r.id, Reason: render.ReasonStopped}
	}
	b.outcome.Store(&out)
	b.running.Store(false)
}

// Stop requests the render goroutine to exit and blocks until it has.
// The wait is bounded by one in-flight block. Safe to call when not
// running, when unbound, and repeatedly.
func (b *Bridge) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopLocked()
}

func (b *Bridge) stopLocked() {
	r := b.cur.Load()
	if r == nil {
		return
	}
	r.loop.RequestStop()
	<-r.done
	b.cur.Store(nil)
}

// joinLocked reaps a run that has already exited on its own.
func (b *Bridge) joinLocked() {
	if r := b.cur.Load(); r != nil {
		<-r.done
		b.cur.Store(nil)
	}
}

// Wait blocks until the current run ends, either because the engine
// finished or because Stop was called. Returns immediately when idle.
func (b *Bridge) Wait() {
	if r := b.cur.Load(); r != nil {
		<-r.done
	}
}

// Close stops the render goroutine, discards every queued command and
// unbinds the engine. A journal opened by Open is flushed and closed, and
// its errors are returned. Idempotent. After Close, submits return
// ErrEngineUnavailable and nothing queued is ever applied.
func (b *Bridge) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.stopLocked()
	b.closed = true
	b.handle.Store(nil)

	// No render goroutine exists past this point, so Close is the only consumer.
	n := b.events.Drain(nil) + b.texts.Drain(nil)
	b.discarded.Add(int64(n))
	b.logger.Debug("bridge closed", "discarded", n)

	if b.rec == nil {
		return nil
	}
	return b.rec.close(b.logger)
}

// SubmitScoreEvent queues one score event for the next block boundary.
// The fields are copied; the caller may reuse its buffer immediately.
// Returns ErrEngineUnavailable if no engine is bound. Never blocks.
func (b *Bridge) SubmitScoreEvent(op score.Opcode, fields ...float64) error {
	if b.handle.Load() == nil {
		return ErrEngineUnavailable
	}
	b.events.Push(score.NewEvent(op, fields...))
	return nil
}

// SubmitScoreText queues score-language text for the engine's score reader
// at the next block boundary. Returns ErrEngineUnavailable if no engine is
// bound. Never blocks.
func (b *Bridge) SubmitScoreText(text string) error {
	if b.handle.Load() == nil {
		return ErrEngineUnavailable
	}
	b.texts.Push(score.Text(text))
	return nil
}

// IsRunning reports whether a render goroutine is active.
// Becomes false as soon as the loop exits for any reason.
func (b *Bridge) IsRunning() bool {
	return b.running.Load()
}

// Outcome returns the outcome of the most recent finished run.
func (b *Bridge) Outcome() (render.Outcome, bool) {
	out := b.outcome.Load()
	if out == nil {
		return render.Outcome{}, false
	}
	return *out, true
}

// FinishedCode returns the last engine status of the most recent finished
// run, or -1 if no run has finished yet.
func (b *Bridge) FinishedCode() int {
	out := b.outcome.Load()
	if out == nil {
		return -1
	}
	return out.Code
}

// Stats returns the counters of the current or most recent run. Discarded
// also includes commands dropped by Close.
func (b *Bridge) Stats() render.Stats {
	var st render.Stats
	if r := b.last.Load(); r != nil {
		st = r.loop.Stats()
	}
	st.Discarded += b.discarded.Load()
	return st
}

func (b *Bridge) engine() synth.Engine {
	h := b.handle.Load()
	if h == nil {
		return nil
	}
	return h.engine
}

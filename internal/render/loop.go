package render

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/roach88/scorebridge/internal/queue"
	"github.com/roach88/scorebridge/internal/score"
	"github.com/roach88/scorebridge/internal/synth"
)

// State is the lifecycle state of a Loop.
type State int32

const (
	// StateIdle means Run has not been called yet.
	StateIdle State = iota
	// StateRunning means the loop is rendering blocks.
	StateRunning
	// StateStopping means a stop was requested and the loop has not exited yet.
	StateStopping
	// StateStopped means Run has returned.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Observer receives notifications from the render goroutine.
//
// CRITICAL: every method runs on the render goroutine between blocks.
// Implementations must return quickly and must never block; a slow
// observer delays the next block.
type Observer interface {
	RunStarted(runID string)
	EventApplied(runID string, block, seq int64, ev score.Event)
	TextApplied(runID string, block, seq int64, text score.Text)
	RunFinished(out Outcome)
}

// Stats is a snapshot of a loop's counters.
type Stats struct {
	Blocks        int64
	EventsApplied int64
	TextsApplied  int64
	// Rejected counts commands the engine returned a non-zero status for.
	Rejected int64
	// Discarded counts commands drained unapplied when the run ended.
	Discarded int64
	// LastSeq is the seq number of the most recently applied command.
	LastSeq int64
}

// Loop drives one performance of an engine.
//
// Thread-safety model:
//   - Run(): called from exactly one goroutine, at most once
//   - RequestStop(), State(), Stats(): safe from any goroutine
//
// The loop owns no queue; it is the single consumer of the queues it is
// given for the duration of Run.
type Loop struct {
	engine   synth.Performer
	events   *queue.Queue[score.Event]
	texts    *queue.Queue[score.Text]
	observer Observer
	logger   *slog.Logger
	announce bool
	clock    *Clock

	state atomic.Int32
	stop  atomic.Bool

	blocks    atomic.Int64
	evApplied atomic.Int64
	txApplied atomic.Int64
	rejected  atomic.Int64
	discarded atomic.Int64
}

// Option configures a Loop.
type Option func(*Loop)

// WithObserver installs an observer for applied commands and run boundaries.
func WithObserver(o Observer) Option {
	return func(l *Loop) {
		l.observer = o
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithAnnounce posts start and stop messages to the engine console.
func WithAnnounce(enabled bool) Option {
	return func(l *Loop) {
		l.announce = enabled
	}
}

// New creates an idle loop over the given engine and command queues.
func New(engine synth.Performer, events *queue.Queue[score.Event], texts *queue.Queue[score.Text], opts ...Option) *Loop {
	l := &Loop{
		engine: engine,
		events: events,
		texts:  texts,
		logger: slog.Default(),
		clock:  NewClock(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// State returns the current lifecycle state.
func (l *Loop) State() State {
	return State(l.state.Load())
}

// RequestStop asks the loop to exit at the next block boundary.
// Non-blocking and idempotent. A stop requested before Run starts makes Run
// exit without rendering any block.
func (l *Loop) RequestStop() {
	l.stop.Store(true)
	l.state.CompareAndSwap(int32(StateRunning), int32(StateStopping))
}

// StopRequested reports whether RequestStop has been called.
func (l *Loop) StopRequested() bool {
	return l.stop.Load()
}

// Stats returns a snapshot of the loop's counters.
func (l *Loop) Stats() Stats {
	return Stats{
		Blocks:        l.blocks.Load(),
		EventsApplied: l.evApplied.Load(),
		TextsApplied:  l.txApplied.Load(),
		Rejected:      l.rejected.Load(),
		Discarded:     l.discarded.Load(),
		LastSeq:       l.clock.Current(),
	}
}

// Run renders blocks until the engine finishes or a stop is requested.
// Blocks the calling goroutine for the whole performance.
//
// The returned error is non-nil only for misuse (ErrAlreadyRunning,
// ErrTerminated). How the performance itself ended is reported in the
// Outcome; engine failures never escape as panics.
func (l *Loop) Run(runID string) (Outcome, error) {
	if !l.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		if l.State() == StateStopped {
			return Outcome{}, ErrTerminated
		}
		return Outcome{}, ErrAlreadyRunning
	}
	if l.stop.Load() {
		l.state.CompareAndSwap(int32(StateRunning), int32(StateStopping))
	}

	l.logger.Info("render loop starting", "run_id", runID)
	if l.observer != nil {
		l.observer.RunStarted(runID)
	}

	out := l.perform(runID)

	// Ownership of anything still queued ends here.
	if n := l.discardPending(); n > 0 {
		l.logger.Info("discarded queued commands", "run_id", runID, "count", n)
	}

	if l.announce {
		l.message(runID, "render loop stopped\n")
	}
	if l.observer != nil {
		l.observer.RunFinished(out)
	}

	l.state.Store(int32(StateStopped))
	l.logger.Info("render loop stopped",
		"run_id", runID,
		"reason", string(out.Reason),
		"code", out.Code,
		"blocks", out.Blocks,
		"stop_requested", l.stop.Load(),
	)
	return out, nil
}

// perform is the block loop. Any panic from an engine call is converted
// into an engine-error outcome.
func (l *Loop) perform(runID string) (out Outcome) {
	out.RunID = runID
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("engine call panicked",
				"run_id", runID,
				"block", l.blocks.Load(),
				"panic", fmt.Sprint(r),
			)
			out.Reason = ReasonEngineError
			out.Code = CodeEngineFault
			out.Blocks = l.blocks.Load()
		}
	}()

	if l.announce {
		l.engine.Message("render loop running\n")
	}

	for {
		if l.stop.Load() {
			out.Reason = ReasonStopped
			break
		}

		block := l.blocks.Load()
		l.applyEvents(runID, block)
		l.applyTexts(runID, block)

		code := l.engine.PerformBlock()
		l.blocks.Add(1)
		if code != 0 {
			out.Reason = reasonFor(code)
			out.Code = code
			break
		}
	}

	out.Blocks = l.blocks.Load()
	return out
}

// applyEvents drains the event queue into the engine in FIFO order.
// Pops directly rather than through Drain so the hot path allocates nothing.
func (l *Loop) applyEvents(runID string, block int64) {
	for {
		ev, ok := l.events.Pop()
		if !ok {
			return
		}
		seq := l.clock.Next()
		if l.engine.ScoreEvent(byte(ev.Opcode), ev.Fields) != 0 {
			l.rejected.Add(1)
		}
		l.evApplied.Add(1)
		if l.observer != nil {
			l.observer.EventApplied(runID, block, seq, ev)
		}
	}
}

// applyTexts drains the text queue into the engine's score reader in FIFO order.
func (l *Loop) applyTexts(runID string, block int64) {
	for {
		text, ok := l.texts.Pop()
		if !ok {
			return
		}
		seq := l.clock.Next()
		if l.engine.ReadScore(string(text)) != 0 {
			l.rejected.Add(1)
		}
		l.txApplied.Add(1)
		if l.observer != nil {
			l.observer.TextApplied(runID, block, seq, text)
		}
	}
}

// discardPending drains both queues without applying anything.
func (l *Loop) discardPending() int {
	n := l.events.Drain(nil) + l.texts.Drain(nil)
	l.discarded.Add(int64(n))
	return n
}

// message posts to the engine console outside the block loop, where a
// panic would otherwise escape Run.
func (l *Loop) message(runID, text string) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("engine message panicked", "run_id", runID, "panic", fmt.Sprint(r))
		}
	}()
	l.engine.Message(text)
}

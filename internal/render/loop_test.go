package render

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/scorebridge/internal/queue"
	"github.com/roach88/scorebridge/internal/score"
	"github.com/roach88/scorebridge/internal/testutil"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	engine *testutil.FakeEngine
	events *queue.Queue[score.Event]
	texts  *queue.Queue[score.Text]
}

func newFixture(opts ...testutil.FakeOption) *fixture {
	return &fixture{
		engine: testutil.NewFakeEngine(opts...),
		events: queue.New[score.Event](),
		texts:  queue.New[score.Text](),
	}
}

func (f *fixture) loop(opts ...Option) *Loop {
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	return New(f.engine, f.events, f.texts, opts...)
}

// recordingObserver captures observer callbacks.
type recordingObserver struct {
	mu       sync.Mutex
	started  []string
	applied  []string
	seqs     []int64
	finished []Outcome
}

func (o *recordingObserver) RunStarted(runID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started = append(o.started, runID)
}

func (o *recordingObserver) EventApplied(runID string, block, seq int64, ev score.Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.applied = append(o.applied, ev.String())
	o.seqs = append(o.seqs, seq)
}

func (o *recordingObserver) TextApplied(runID string, block, seq int64, text score.Text) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.applied = append(o.applied, string(text))
	o.seqs = append(o.seqs, seq)
}

func (o *recordingObserver) RunFinished(out Outcome) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finished = append(o.finished, out)
}

func TestLoop_AppliesQueuedEventsInOrderBeforeFirstBlock(t *testing.T) {
	f := newFixture(testutil.WithFinishAfter(1, 1))
	for i := 0; i < 5; i++ {
		f.events.Push(score.NewEvent(score.OpInstrument, 1, float64(i), 1))
	}

	out, err := f.loop().Run("run-1")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"[0] event i 1 0 1",
		"[0] event i 1 1 1",
		"[0] event i 1 2 1",
		"[0] event i 1 3 1",
		"[0] event i 1 4 1",
		"[0] perform -> 1",
	}, f.engine.Trace())
	assert.Equal(t, int64(1), out.Blocks)
}

func TestLoop_EventsBeforeTextWithinOneBoundary(t *testing.T) {
	f := newFixture(testutil.WithFinishAfter(1, 1))
	// Text pushed first still applies after events.
	f.texts.Push("i1 0 1")
	f.events.Push(score.NewEvent(score.OpInstrument, 2, 0, 1))

	_, err := f.loop().Run("run-1")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"[0] event i 2 0 1",
		`[0] score "i1 0 1"`,
		"[0] perform -> 1",
	}, f.engine.Trace())
}

func TestLoop_ScoreTextRoundTrip(t *testing.T) {
	f := newFixture(testutil.WithFinishAfter(1, 1))
	f.texts.Push("i1 0 1")

	_, err := f.loop().Run("run-1")
	require.NoError(t, err)

	scores := f.engine.CallsOf(testutil.CallScore)
	require.Len(t, scores, 1, "exactly one score-read call")
	assert.Equal(t, "i1 0 1", scores[0].Text)

	calls := f.engine.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, testutil.CallScore, calls[0].Kind, "score read must precede the block")
	assert.Equal(t, testutil.CallPerform, calls[1].Kind)
}

func TestLoop_CommandsQueuedDuringBlockWaitForNextBoundary(t *testing.T) {
	var f *fixture
	f = newFixture(
		testutil.WithFinishAfter(3, 1),
		testutil.WithBlockHook(func(block int64) {
			if block == 0 {
				f.events.Push(score.NewEvent(score.OpInstrument, 9, 0, 1))
			}
		}),
	)

	_, err := f.loop().Run("run-1")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"[0] perform -> 0",
		"[1] event i 9 0 1",
		"[1] perform -> 0",
		"[2] perform -> 1",
	}, f.engine.Trace())
}

func TestLoop_EngineCompletion(t *testing.T) {
	f := newFixture(testutil.WithFinishAfter(4, 2))
	l := f.loop()

	out, err := l.Run("run-done")
	require.NoError(t, err)

	assert.Equal(t, ReasonCompleted, out.Reason)
	assert.Equal(t, 2, out.Code)
	assert.Equal(t, int64(4), out.Blocks)
	assert.Equal(t, StateStopped, l.State())

	var te *TerminatedError
	require.True(t, errors.As(out.Err(), &te))
	assert.Equal(t, "run-done", te.RunID)
	assert.False(t, IsEngineError(out.Err()))
}

func TestLoop_EngineErrorStatus(t *testing.T) {
	f := newFixture(testutil.WithFinishAfter(2, -3))

	out, err := f.loop().Run("run-err")
	require.NoError(t, err)

	assert.Equal(t, ReasonEngineError, out.Reason)
	assert.Equal(t, -3, out.Code)
	assert.True(t, IsEngineError(out.Err()))
}

func TestLoop_EnginePanicBecomesStatus(t *testing.T) {
	f := newFixture(testutil.WithPanicAt(1))
	f.events.Push(score.NewEvent(score.OpInstrument, 1, 0, 1))
	l := f.loop()

	var out Outcome
	var err error
	require.NotPanics(t, func() {
		out, err = l.Run("run-panic")
	})
	require.NoError(t, err)

	assert.Equal(t, ReasonEngineError, out.Reason)
	assert.Equal(t, CodeEngineFault, out.Code)
	assert.Equal(t, int64(1), out.Blocks)
	assert.Equal(t, StateStopped, l.State())
}

func TestLoop_StopBeforeRun_RendersNothingAndDiscards(t *testing.T) {
	f := newFixture()
	f.events.Push(score.NewEvent(score.OpInstrument, 1, 0, 1))
	f.texts.Push("i2 0 1")
	l := f.loop()

	l.RequestStop()
	out, err := l.Run("run-stopped")
	require.NoError(t, err)

	assert.Equal(t, ReasonStopped, out.Reason)
	assert.Equal(t, int64(0), out.Blocks)
	assert.Empty(t, f.engine.Calls(), "discarded commands must not reach the engine")
	assert.Equal(t, int64(2), l.Stats().Discarded)
	assert.Equal(t, 0, f.events.Len())
	assert.Equal(t, 0, f.texts.Len())
	assert.NoError(t, out.Err(), "explicit stop is not an error")
}

func TestLoop_RequestStopFromAnotherGoroutine(t *testing.T) {
	f := newFixture(testutil.WithBlockDelay(time.Millisecond))
	l := f.loop()

	done := make(chan Outcome, 1)
	go func() {
		out, _ := l.Run("run-live")
		done <- out
	}()

	require.Eventually(t, func() bool { return f.engine.Blocks() >= 3 }, 2*time.Second, time.Millisecond)
	l.RequestStop()

	select {
	case out := <-done:
		assert.Equal(t, ReasonStopped, out.Reason)
		assert.Equal(t, 0, out.Code)
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop")
	}
	assert.Equal(t, StateStopped, l.State())
	assert.True(t, l.StopRequested())
}

func TestLoop_RunTwice(t *testing.T) {
	f := newFixture(testutil.WithFinishAfter(1, 1))
	l := f.loop()

	_, err := l.Run("first")
	require.NoError(t, err)

	_, err = l.Run("second")
	assert.ErrorIs(t, err, ErrTerminated)
}

func TestLoop_ConcurrentRunRejected(t *testing.T) {
	f := newFixture(testutil.WithBlockDelay(time.Millisecond))
	l := f.loop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = l.Run("owner")
	}()
	require.Eventually(t, func() bool { return l.State() == StateRunning }, 2*time.Second, time.Millisecond)

	_, err := l.Run("intruder")
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	l.RequestStop()
	<-done
}

func TestLoop_StateTransitions(t *testing.T) {
	f := newFixture(testutil.WithBlockDelay(time.Millisecond))
	l := f.loop()
	assert.Equal(t, StateIdle, l.State())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = l.Run("states")
	}()
	require.Eventually(t, func() bool { return l.State() == StateRunning }, 2*time.Second, time.Millisecond)

	l.RequestStop()
	state := l.State()
	assert.True(t, state == StateStopping || state == StateStopped, "got %s", state)

	<-done
	assert.Equal(t, StateStopped, l.State())
}

func TestLoop_ObserverSeesOrderedSeqs(t *testing.T) {
	f := newFixture(testutil.WithFinishAfter(1, 1))
	f.events.Push(score.NewEvent(score.OpInstrument, 1, 0, 1))
	f.events.Push(score.NewEvent(score.OpInstrument, 2, 0, 1))
	f.texts.Push("i3 0 1")
	obs := &recordingObserver{}

	_, err := f.loop(WithObserver(obs)).Run("observed")
	require.NoError(t, err)

	assert.Equal(t, []string{"observed"}, obs.started)
	assert.Equal(t, []string{"i 1 0 1", "i 2 0 1", "i3 0 1"}, obs.applied)
	assert.Equal(t, []int64{1, 2, 3}, obs.seqs)
	require.Len(t, obs.finished, 1)
	assert.Equal(t, ReasonCompleted, obs.finished[0].Reason)
}

func TestLoop_StatsCountRejected(t *testing.T) {
	f := newFixture(testutil.WithFinishAfter(2, 1), testutil.WithRejectOpcode('q'))
	f.events.Push(score.NewEvent(score.OpInstrument, 1, 0, 1))
	f.events.Push(score.NewEvent(score.OpQuiet, 1, 0))
	f.texts.Push("i1 0 1")
	l := f.loop()

	_, err := l.Run("stats")
	require.NoError(t, err)

	assert.Equal(t, Stats{
		Blocks:        2,
		EventsApplied: 2,
		TextsApplied:  1,
		Rejected:      1,
		LastSeq:       3,
	}, l.Stats())
}

func TestLoop_Announce(t *testing.T) {
	f := newFixture(testutil.WithFinishAfter(1, 1))

	_, err := f.loop(WithAnnounce(true)).Run("loud")
	require.NoError(t, err)

	assert.Equal(t, []string{
		`[0] message "render loop running\n"`,
		"[0] perform -> 1",
		`[1] message "render loop stopped\n"`,
	}, f.engine.Trace())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "stopping", StateStopping.String())
	assert.Equal(t, "stopped", StateStopped.String())
	assert.Equal(t, "state(9)", State(9).String())
}

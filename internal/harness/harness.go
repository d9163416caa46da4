package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/roach88/scorebridge/internal/bridge"
	"github.com/roach88/scorebridge/internal/config"
	"github.com/roach88/scorebridge/internal/journal"
	"github.com/roach88/scorebridge/internal/render"
	"github.com/roach88/scorebridge/internal/score"
	"github.com/roach88/scorebridge/internal/testutil"
)

// runTimeout bounds a scenario whose engine never finishes.
const runTimeout = 10 * time.Second

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if the expect clause and every assertion matched.
	Pass bool

	// Outcome is how the run ended.
	Outcome render.Outcome

	// Stats are the render loop counters.
	Stats render.Stats

	// Trace is the engine call trace, one line per call.
	Trace []string

	// Calls are the raw engine calls behind Trace.
	Calls []testutil.Call

	// Journal holds the commands the recorder captured, in seq order.
	Journal []journal.Command

	// Errors contains validation error messages. Empty if Pass is true.
	Errors []string
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh fake engine, bridge and in-memory
// journal. The returned error reports harness failures; expectation
// mismatches are recorded in Result.Errors.
func Run(s *Scenario) (*Result, error) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	runID := s.RunID
	if runID == "" {
		runID = DefaultRunID
	}

	cfg := config.Default()
	cfg.Announce = false
	cfg.LockOSThread = false
	cfg.Journal.Path = ":memory:"

	b, err := bridge.Open(cfg,
		bridge.WithLogger(logger),
		bridge.WithRunIDs(testutil.NewSequentialRunIDs(runID)),
	)
	if err != nil {
		return nil, fmt.Errorf("open bridge: %w", err)
	}
	defer b.Close()

	var pre []Step
	timed := make(map[int64][]Step)
	hookErr := make(chan error, 1)
	for _, step := range s.Steps {
		if step.AtBlock == nil {
			pre = append(pre, step)
			continue
		}
		timed[*step.AtBlock] = append(timed[*step.AtBlock], step)
	}

	engine := testutil.NewFakeEngine(engineOptions(s, func(block int64) {
		for _, step := range timed[block] {
			if err := submit(b, step); err != nil {
				select {
				case hookErr <- fmt.Errorf("block %d: %w", block, err):
				default:
				}
			}
		}
	})...)

	if err := b.BindEngine(engine); err != nil {
		return nil, fmt.Errorf("bind engine: %w", err)
	}
	for i, step := range pre {
		if err := submit(b, step); err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
	}
	if err := b.Start(); err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}

	done := make(chan struct{})
	go func() {
		b.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(runTimeout):
		b.Stop()
		return nil, fmt.Errorf("scenario %s: performance did not end within %s", s.Name, runTimeout)
	}

	select {
	case err := <-hookErr:
		return nil, fmt.Errorf("timed step: %w", err)
	default:
	}

	if _, err := b.Recorder().Flush(ctx); err != nil {
		return nil, fmt.Errorf("flush journal: %w", err)
	}
	cmds, err := b.Journal().ReadCommands(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}

	out, _ := b.Outcome()
	result := &Result{
		Pass:    true,
		Outcome: out,
		Stats:   b.Stats(),
		Trace:   engine.Trace(),
		Calls:   engine.Calls(),
		Journal: cmds,
	}
	checkExpect(s.Expect, result)
	for _, a := range s.Assertions {
		if err := evaluateAssertion(result.Trace, result.Calls, a); err != nil {
			result.AddError(err.Error())
		}
	}
	return result, nil
}

func engineOptions(s *Scenario, hook func(block int64)) []testutil.FakeOption {
	code := 1
	if s.FinishCode != nil {
		code = *s.FinishCode
	}
	opts := []testutil.FakeOption{testutil.WithBlockHook(hook)}
	if s.FinishAfter > 0 {
		opts = append(opts, testutil.WithFinishAfter(s.FinishAfter, code))
	}
	if s.PanicAt != nil {
		opts = append(opts, testutil.WithPanicAt(*s.PanicAt))
	}
	if s.RejectOpcode != "" {
		opts = append(opts, testutil.WithRejectOpcode(score.Opcode(s.RejectOpcode[0])))
	}
	return opts
}

func submit(b *bridge.Bridge, step Step) error {
	if step.Event != nil {
		ev := step.Event.Event()
		return b.SubmitScoreEvent(ev.Opcode, ev.Fields...)
	}
	return b.SubmitScoreText(*step.Text)
}

func checkExpect(e *ExpectClause, r *Result) {
	if e == nil {
		return
	}
	if e.Reason != "" && e.Reason != r.Outcome.Reason {
		r.AddError(fmt.Sprintf("expect.reason: expected %s, got %s", e.Reason, r.Outcome.Reason))
	}
	if e.Code != nil && *e.Code != r.Outcome.Code {
		r.AddError(fmt.Sprintf("expect.code: expected %d, got %d", *e.Code, r.Outcome.Code))
	}
	if e.Blocks != nil && *e.Blocks != r.Outcome.Blocks {
		r.AddError(fmt.Sprintf("expect.blocks: expected %d, got %d", *e.Blocks, r.Outcome.Blocks))
	}
	if e.Applied != nil {
		applied := r.Stats.EventsApplied + r.Stats.TextsApplied
		if *e.Applied != applied {
			r.AddError(fmt.Sprintf("expect.applied: expected %d, got %d", *e.Applied, applied))
		}
	}
}

// Snapshot renders a result as deterministic text for golden comparison.
func (r *Result) Snapshot(name string) []byte {
	var buf strings.Builder
	fmt.Fprintf(&buf, "scenario: %s\n", name)
	fmt.Fprintf(&buf, "run: %s\n", r.Outcome.RunID)
	fmt.Fprintf(&buf, "outcome: %s code=%d blocks=%d\n", r.Outcome.Reason, r.Outcome.Code, r.Outcome.Blocks)
	buf.WriteString("trace:\n")
	for _, line := range r.Trace {
		fmt.Fprintf(&buf, "  %s\n", line)
	}
	buf.WriteString("journal:\n")
	for _, c := range r.Journal {
		switch c.Kind {
		case journal.KindEvent:
			fmt.Fprintf(&buf, "  %d @%d %s\n", c.Seq, c.Block, c.Event())
		case journal.KindText:
			fmt.Fprintf(&buf, "  %d @%d text %q\n", c.Seq, c.Block, c.Text)
		}
	}
	return []byte(buf.String())
}

package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/scorebridge/internal/journal"
	"github.com/roach88/scorebridge/internal/render"
)

func strPtr(s string) *string { return &s }
func int64Ptr(n int64) *int64 { return &n }
func intPtr(n int) *int       { return &n }

func event(op string, fields ...float64) Step {
	return Step{Event: &EventStep{Opcode: op, Fields: fields}}
}

func TestRun_ExpectMatches(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "expect",
		Description: "expect",
		RunID:       "run-expect",
		FinishAfter: 2,
		Steps:       []Step{event("i", 1, 0, 1), {Text: strPtr("i2 0 1")}},
		Expect: &ExpectClause{
			Reason:  render.ReasonCompleted,
			Code:    intPtr(1),
			Blocks:  int64Ptr(2),
			Applied: int64Ptr(2),
		},
	})
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, "run-expect", result.Outcome.RunID)
	assert.Equal(t, render.Stats{Blocks: 2, EventsApplied: 1, TextsApplied: 1, LastSeq: 2}, result.Stats)
}

func TestRun_ExpectMismatchRecorded(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "mismatch",
		Description: "mismatch",
		FinishAfter: 1,
		Expect: &ExpectClause{
			Reason:  render.ReasonStopped,
			Code:    intPtr(0),
			Blocks:  int64Ptr(5),
			Applied: int64Ptr(1),
		},
	})
	require.NoError(t, err)

	assert.False(t, result.Pass)
	assert.Equal(t, []string{
		"expect.reason: expected stopped, got completed",
		"expect.code: expected 0, got 1",
		"expect.blocks: expected 5, got 1",
		"expect.applied: expected 1, got 0",
	}, result.Errors)
}

func TestRun_JournalMatchesTrace(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "journal",
		Description: "journal",
		FinishAfter: 3,
		Steps: []Step{
			event("i", 1, 0, 1),
			{Event: &EventStep{Opcode: "i", Fields: []float64{2, 0, 1}}, AtBlock: int64Ptr(1)},
		},
	})
	require.NoError(t, err)

	require.Len(t, result.Journal, 2)
	assert.Equal(t, journal.KindEvent, result.Journal[0].Kind)
	assert.Equal(t, int64(0), result.Journal[0].Block)
	assert.Equal(t, int64(2), result.Journal[1].Block)
	assert.Equal(t, "i 2 0 1", result.Journal[1].Event().String())
}

func TestRun_AssertionFailuresRecorded(t *testing.T) {
	result, err := Run(&Scenario{
		Name:        "assertions",
		Description: "assertions",
		FinishAfter: 1,
		Steps:       []Step{event("i", 1, 0, 1)},
		Assertions: []Assertion{
			{Type: AssertTraceContains, Line: "[0] event i 7 0 1"},
			{Type: AssertTraceOrder, Lines: []string{"[0] perform -> 1", "[0] event i 1 0 1"}},
			{Type: AssertTraceCount, Kind: "event", Count: 2},
		},
	})
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0], "Assertion failed: trace_contains")
	assert.Contains(t, result.Errors[1], "should be before")
	assert.Contains(t, result.Errors[2], "1 calls")
}

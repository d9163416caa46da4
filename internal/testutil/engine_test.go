package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeEngine_RecordsCallsWithBlockIndex(t *testing.T) {
	e := NewFakeEngine()

	e.ScoreEvent('i', []float64{1, 0, 1})
	e.ReadScore("i1 0 1")
	require.Equal(t, 0, e.PerformBlock())
	e.ScoreEvent('e', nil)

	assert.Equal(t, []string{
		`[0] event i 1 0 1`,
		`[0] score "i1 0 1"`,
		`[0] perform -> 0`,
		`[1] event e`,
	}, e.Trace())
	assert.Equal(t, int64(1), e.Blocks())
}

func TestFakeEngine_FinishAfter(t *testing.T) {
	e := NewFakeEngine(WithFinishAfter(2, 7))

	assert.Equal(t, 0, e.PerformBlock())
	assert.Equal(t, 7, e.PerformBlock())
}

func TestFakeEngine_PanicAt(t *testing.T) {
	e := NewFakeEngine(WithPanicAt(1))

	e.PerformBlock()
	assert.Panics(t, func() { e.PerformBlock() })
}

func TestFakeEngine_Tables(t *testing.T) {
	e := NewFakeEngine(WithTable(1, []float64{0, 0.5, 1}))

	assert.Equal(t, 3, e.TableLength(1))
	assert.Equal(t, -1, e.TableLength(2))

	e.TableSet(1, 1, 0.25)
	assert.Equal(t, 0.25, e.TableGet(1, 1))
	assert.Equal(t, 0.0, e.TableGet(1, 99), "out of range reads return 0")
}

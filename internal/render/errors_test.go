package render

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutcome_Err(t *testing.T) {
	tests := []struct {
		name    string
		out     Outcome
		wantErr bool
		engine  bool
	}{
		{"stopped", Outcome{Reason: ReasonStopped}, false, false},
		{"never ran", Outcome{}, false, false},
		{"completed", Outcome{Reason: ReasonCompleted, Code: 1}, true, false},
		{"engine error", Outcome{Reason: ReasonEngineError, Code: -1}, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.out.Err()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.Equal(t, tt.engine, IsEngineError(err))
		})
	}
}

func TestTerminatedError_Message(t *testing.T) {
	err := &TerminatedError{RunID: "r1", Reason: ReasonCompleted, Code: 1, Blocks: 10}
	assert.Equal(t, "engine terminated: completed (code=1, blocks=10, run=r1)", err.Error())

	anon := &TerminatedError{Reason: ReasonEngineError, Code: -1, Blocks: 0}
	assert.Equal(t, "engine terminated: engine_error (code=-1, blocks=0)", anon.Error())
}

func TestIsEngineError_Wrapped(t *testing.T) {
	err := fmt.Errorf("render run: %w", &TerminatedError{Reason: ReasonEngineError, Code: -5})
	assert.True(t, IsEngineError(err))
	assert.False(t, IsEngineError(fmt.Errorf("plain")))
	assert.False(t, IsEngineError(nil))
}

func TestReasonFor(t *testing.T) {
	assert.Equal(t, ReasonCompleted, reasonFor(1))
	assert.Equal(t, ReasonCompleted, reasonFor(2))
	assert.Equal(t, ReasonEngineError, reasonFor(-1))
}

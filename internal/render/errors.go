package render

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyRunning is returned when Run is called on a loop that is running.
	ErrAlreadyRunning = errors.New("render: loop is already running")

	// ErrTerminated is returned when Run is called on a loop that has already run.
	// A Loop performs exactly one run; create a new Loop to render again.
	ErrTerminated = errors.New("render: loop has already terminated")
)

// Reason categorizes why a run ended.
type Reason string

const (
	// ReasonStopped means the stop flag was observed at a block boundary.
	ReasonStopped Reason = "stopped"

	// ReasonCompleted means the engine reported the end of the performance.
	ReasonCompleted Reason = "completed"

	// ReasonEngineError means the engine reported an error status, or an
	// engine call panicked.
	ReasonEngineError Reason = "engine_error"
)

// CodeEngineFault is the status recorded when an engine call panics.
const CodeEngineFault = -1

// Outcome is the terminal state of one run.
type Outcome struct {
	// RunID identifies the run.
	RunID string

	// Reason says why the run ended.
	Reason Reason

	// Code is the last status returned by PerformBlock (0 when stopped).
	Code int

	// Blocks is the number of blocks rendered.
	Blocks int64
}

// Err converts the outcome into an error value.
// Returns nil for an explicit stop, and a *TerminatedError when the engine
// ended the run. The error is informational: it is recorded, never raised
// on the render goroutine.
func (o Outcome) Err() error {
	if o.Reason == ReasonStopped || o.Reason == "" {
		return nil
	}
	return &TerminatedError{RunID: o.RunID, Reason: o.Reason, Code: o.Code, Blocks: o.Blocks}
}

// TerminatedError reports that the engine, not the caller, ended a run.
type TerminatedError struct {
	RunID  string
	Reason Reason
	Code   int
	Blocks int64
}

// Error implements the error interface.
func (e *TerminatedError) Error() string {
	if e.RunID != "" {
		return fmt.Sprintf("engine terminated: %s (code=%d, blocks=%d, run=%s)", e.Reason, e.Code, e.Blocks, e.RunID)
	}
	return fmt.Sprintf("engine terminated: %s (code=%d, blocks=%d)", e.Reason, e.Code, e.Blocks)
}

// IsEngineError returns true if err is a TerminatedError caused by an
// engine error status or fault. Uses errors.As to handle wrapped errors.
func IsEngineError(err error) bool {
	var te *TerminatedError
	if errors.As(err, &te) {
		return te.Reason == ReasonEngineError
	}
	return false
}

func reasonFor(code int) Reason {
	if code < 0 {
		return ReasonEngineError
	}
	return ReasonCompleted
}

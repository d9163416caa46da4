package bridge

import "errors"

var (
	// ErrEngineUnavailable is returned when no engine is bound.
	ErrEngineUnavailable = errors.New("bridge: no engine bound")

	// ErrRunning is returned when an operation requires the render
	// goroutine to be stopped first.
	ErrRunning = errors.New("bridge: render loop is running")

	// ErrClosed is returned by BindEngine after Close.
	ErrClosed = errors.New("bridge: closed")

	// ErrJournal wraps failures of the journal opened by Open.
	ErrJournal = errors.New("bridge: journal")
)

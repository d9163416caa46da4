// Package synth declares the synthesis engine the bridge drives.
//
// The engine is an opaque collaborator. The bridge never looks inside it;
// it only forwards commands, advances it one block at a time, and passes
// accessor calls through. Interfaces are split by concern so that each
// consumer depends on the smallest surface it needs: the render loop only
// needs a Performer.
//
// Thread-safety: implementations decide. The render goroutine is the only
// caller of Performer.PerformBlock. Every other method may be called from
// arbitrary goroutines while a block is being rendered; whether that is
// safe is the implementation's contract, not the bridge's.
package synth

// Performer is the part of the engine the render loop drives.
type Performer interface {
	// ScoreEvent schedules one real-time score event. Returns 0 on success.
	ScoreEvent(opcode byte, fields []float64) int

	// ReadScore parses and schedules score-language text. Returns 0 on success.
	ReadScore(text string) int

	// PerformBlock renders exactly one block (ksmps sample frames).
	// Returns 0 while the performance continues. A positive value means
	// the score has finished; a negative value is an engine error.
	PerformBlock() int

	// Message writes text to the engine's message console.
	Message(text string)
}

// Channels exposes the named software bus.
type Channels interface {
	ControlChannel(name string) float64
	SetControlChannel(name string, value float64)
	StringChannel(name string) string
	SetStringChannel(name, value string)
}

// Tables exposes function tables.
type Tables interface {
	TableGet(table, index int) float64
	TableSet(table, index int, value float64)
	// TableLength returns the table size, or a negative value if the table does not exist.
	TableLength(table int) int
}

// Timing exposes performance parameters and clock state.
type Timing interface {
	SampleRate() int
	Ksmps() int
	Nchnls() int
	NchnlsInput() int
	ZeroDBFS() float64
	CurrentTimeSamples() int64
	ScoreTime() float64
	ScoreOffsetSeconds() float64
	SetScoreOffsetSeconds(seconds float64)
	IsScorePending() int
	SetScorePending(pending bool)
	Version() int
	APIVersion() int
	OutputName() string
}

// Compiler compiles orchestra and score sources. Return codes are the
// engine's own and are passed through untouched.
type Compiler interface {
	CompileCsd(path string) int
	CompileCsdText(text string) int
	CompileOrc(text string) int
	EvalCode(text string) float64
}

// Control covers engine configuration and host-level state.
type Control interface {
	Start() int
	Reset()
	RewindScore()
	SetOption(option string) int
	SetInput(name string)
	SetOutput(name, fileType, format string)
	Env(name string) string
	SetGlobalEnv(name, value string) int
	RunUtility(name string, args []string) int
	// IsRunning reports whether the engine's own host considers it running.
	IsRunning() bool
}

// Engine is the full collaborator surface the bridge can bind to.
type Engine interface {
	Performer
	Channels
	Tables
	Timing
	Compiler
	Control
}

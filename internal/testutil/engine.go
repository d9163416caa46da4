package testutil

import (
	"fmt"
	"sync"
	"time"

	"github.com/roach88/scorebridge/internal/score"
	"github.com/roach88/scorebridge/internal/synth"
)

var _ synth.Engine = (*FakeEngine)(nil)

// CallKind identifies a recorded engine call.
type CallKind string

const (
	CallEvent   CallKind = "event"
	CallScore   CallKind = "score"
	CallPerform CallKind = "perform"
	CallMessage CallKind = "message"
)

// Call is one recorded call into a FakeEngine.
type Call struct {
	Kind   CallKind
	Block  int64 // blocks performed before this call
	Opcode score.Opcode
	Fields []float64
	Text   string
	Code   int // PerformBlock return value
}

// String renders the call as one deterministic trace line.
func (c Call) String() string {
	switch c.Kind {
	case CallEvent:
		return fmt.Sprintf("[%d] event %s", c.Block, score.Event{Opcode: c.Opcode, Fields: c.Fields})
	case CallScore:
		return fmt.Sprintf("[%d] score %q", c.Block, c.Text)
	case CallPerform:
		return fmt.Sprintf("[%d] perform -> %d", c.Block, c.Code)
	case CallMessage:
		return fmt.Sprintf("[%d] message %q", c.Block, c.Text)
	}
	return fmt.Sprintf("[%d] %s", c.Block, c.Kind)
}

// FakeEngine is an in-memory synth.Engine that records every call.
//
// It renders nothing. Blocks advance a counter, channels and tables live in
// maps, and the performance can be made to finish, fail or panic at a
// chosen block.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
// Block hooks run without the mutex held, so they may call back into the
// engine or submit commands to a bridge.
type FakeEngine struct {
	mu sync.Mutex

	calls  []Call
	blocks int64

	finishAfter int64
	finishCode  int
	panicAt     int64
	blockDelay  time.Duration
	onBlock     func(block int64)
	rejectOp    score.Opcode

	sr, ksmps, nchnls, nchnlsIn int
	zeroDBFS                    float64
	scoreOffset                 float64
	scorePending                bool
	running                     bool

	controls map[string]float64
	strs     map[string]string
	tables   map[int][]float64
	env      map[string]string
	options  []string
	compiled []string
	resets   int
	rewinds  int
}

// FakeOption configures a FakeEngine.
type FakeOption func(*FakeEngine)

// WithFinishAfter makes PerformBlock return code once n blocks have been rendered.
func WithFinishAfter(n int64, code int) FakeOption {
	return func(e *FakeEngine) {
		e.finishAfter = n
		e.finishCode = code
	}
}

// WithPanicAt makes PerformBlock panic when asked to render block index n.
func WithPanicAt(n int64) FakeOption {
	return func(e *FakeEngine) {
		e.panicAt = n
	}
}

// WithBlockDelay makes every block take at least d, like a real-time device.
func WithBlockDelay(d time.Duration) FakeOption {
	return func(e *FakeEngine) {
		e.blockDelay = d
	}
}

// WithBlockHook runs fn after each block renders, on the render goroutine.
func WithBlockHook(fn func(block int64)) FakeOption {
	return func(e *FakeEngine) {
		e.onBlock = fn
	}
}

// WithRejectOpcode makes ScoreEvent return 1 for op.
func WithRejectOpcode(op score.Opcode) FakeOption {
	return func(e *FakeEngine) {
		e.rejectOp = op
	}
}

// WithTable preloads function table n.
func WithTable(n int, data []float64) FakeOption {
	return func(e *FakeEngine) {
		e.tables[n] = append([]float64(nil), data...)
	}
}

// NewFakeEngine creates a fake engine at 48 kHz, ksmps 32, stereo.
func NewFakeEngine(opts ...FakeOption) *FakeEngine {
	e := &FakeEngine{
		panicAt:  -1,
		sr:       48000,
		ksmps:    32,
		nchnls:   2,
		nchnlsIn: 1,
		zeroDBFS: 1,
		controls: make(map[string]float64),
		strs:     make(map[string]string),
		tables:   make(map[int][]float64),
		env:      make(map[string]string),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Calls returns a copy of the recorded calls.
func (e *FakeEngine) Calls() []Call {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Call, len(e.calls))
	copy(out, e.calls)
	return out
}

// CallsOf returns the recorded calls of one kind.
func (e *FakeEngine) CallsOf(kind CallKind) []Call {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []Call
	for _, c := range e.calls {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// Trace returns the recorded calls as trace lines.
func (e *FakeEngine) Trace() []string {
	calls := e.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = c.String()
	}
	return lines
}

// Blocks returns the number of blocks rendered.
func (e *FakeEngine) Blocks() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.blocks
}

func (e *FakeEngine) record(c Call) {
	c.Block = e.blocks
	e.calls = append(e.calls, c)
}

// ScoreEvent implements synth.Performer.
func (e *FakeEngine) ScoreEvent(opcode byte, fields []float64) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record(Call{Kind: CallEvent, Opcode: score.Opcode(opcode), Fields: append([]float64(nil), fields...)})
	if e.rejectOp != 0 && score.Opcode(opcode) == e.rejectOp {
		return 1
	}
	return 0
}

// ReadScore implements synth.Performer.
func (e *FakeEngine) ReadScore(text string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record(Call{Kind: CallScore, Text: text})
	return 0
}

// PerformBlock implements synth.Performer.
func (e *FakeEngine) PerformBlock() int {
	e.mu.Lock()
	block := e.blocks
	if e.panicAt >= 0 && block == e.panicAt {
		e.mu.Unlock()
		panic(fmt.Sprintf("fake engine fault at block %d", block))
	}
	e.blocks++
	code := 0
	if e.finishAfter > 0 && e.blocks >= e.finishAfter {
		code = e.finishCode
	}
	e.calls = append(e.calls, Call{Kind: CallPerform, Block: block, Code: code})
	delay, hook := e.blockDelay, e.onBlock
	e.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if hook != nil {
		hook(block)
	}
	return code
}

// Message implements synth.Performer.
func (e *FakeEngine) Message(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record(Call{Kind: CallMessage, Text: text})
}

func (e *FakeEngine) ControlChannel(name string) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.controls[name]
}

func (e *FakeEngine) SetControlChannel(name string, value float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.controls[name] = value
}

func (e *FakeEngine) StringChannel(name string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.strs[name]
}

func (e *FakeEngine) SetStringChannel(name, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.strs[name] = value
}

func (e *FakeEngine) TableGet(table, index int) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	t := e.tables[table]
	if index < 0 || index >= len(t) {
		return 0
	}
	return t[index]
}

func (e *FakeEngine) TableSet(table, index int, value float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t := e.tables[table]
	if index < 0 || index >= len(t) {
		return
	}
	t[index] = value
}

func (e *FakeEngine) TableLength(table int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.tables[table]
	if !ok {
		return -1
	}
	return len(t)
}

func (e *FakeEngine) SampleRate() int  { return e.sr }
func (e *FakeEngine) Ksmps() int       { return e.ksmps }
func (e *FakeEngine) Nchnls() int      { return e.nchnls }
func (e *FakeEngine) NchnlsInput() int { return e.nchnlsIn }
func (e *FakeEngine) ZeroDBFS() float64 {
	return e.zeroDBFS
}

func (e *FakeEngine) CurrentTimeSamples() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.blocks * int64(e.ksmps)
}

func (e *FakeEngine) ScoreTime() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return float64(e.blocks*int64(e.ksmps)) / float64(e.sr)
}

func (e *FakeEngine) ScoreOffsetSeconds() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scoreOffset
}

func (e *FakeEngine) SetScoreOffsetSeconds(seconds float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scoreOffset = seconds
}

func (e *FakeEngine) IsScorePending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.scorePending {
		return 1
	}
	return 0
}

func (e *FakeEngine) SetScorePending(pending bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scorePending = pending
}

func (e *FakeEngine) Version() int       { return 6180 }
func (e *FakeEngine) APIVersion() int    { return 400 }
func (e *FakeEngine) OutputName() string { return "dac" }

func (e *FakeEngine) CompileCsd(path string) int {
	return e.compile("csd:" + path)
}

func (e *FakeEngine) CompileCsdText(text string) int {
	return e.compile("csdtext:" + text)
}

func (e *FakeEngine) CompileOrc(text string) int {
	return e.compile("orc:" + text)
}

func (e *FakeEngine) EvalCode(text string) float64 {
	e.compile("eval:" + text)
	return float64(len(text))
}

func (e *FakeEngine) compile(src string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.compiled = append(e.compiled, src)
	return 0
}

// Compiled returns the sources passed to the compile methods, prefixed by kind.
func (e *FakeEngine) Compiled() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.compiled...)
}

func (e *FakeEngine) Start() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = true
	return 0
}

func (e *FakeEngine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resets++
	e.running = false
}

func (e *FakeEngine) RewindScore() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rewinds++
}

func (e *FakeEngine) SetOption(option string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.options = append(e.options, option)
	return 0
}

// Options returns the options set through SetOption, SetInput and SetOutput.
func (e *FakeEngine) Options() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.options...)
}

func (e *FakeEngine) SetInput(name string) {
	e.SetOption("-i" + name)
}

func (e *FakeEngine) SetOutput(name, fileType, format string) {
	e.SetOption(fmt.Sprintf("-o%s:%s:%s", name, fileType, format))
}

func (e *FakeEngine) Env(name string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.env[name]
}

func (e *FakeEngine) SetGlobalEnv(name, value string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.env[name] = value
	return 0
}

func (e *FakeEngine) RunUtility(name string, args []string) int {
	return e.compile(fmt.Sprintf("utility:%s %v", name, args))
}

func (e *FakeEngine) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// ResetCount returns how many times Reset and RewindScore were called.
func (e *FakeEngine) ResetCount() (resets, rewinds int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.resets, e.rewinds
}

package script

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/roach88/scorebridge/internal/score"
)

// ModuleName is the name scripts pass to require.
const ModuleName = "bridge"

// Host is the bridge surface scripts can reach. *bridge.Bridge satisfies it.
type Host interface {
	SubmitScoreEvent(op score.Opcode, fields ...float64) error
	SubmitScoreText(text string) error
	Start() error
	Stop()
	IsRunning() bool

	ControlChannel(name string) float64
	SetControlChannel(name string, value float64)
	StringChannel(name string) string
	SetStringChannel(name, value string)

	TableGet(table, index int) float64
	TableSet(table, index int, value float64)
	TableLength(table int) int

	ScoreTime() float64
	SampleRate() int
	Ksmps() int
	Message(text string)
}

// Runner executes Lua against a Host.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type Runner struct {
	mu     sync.Mutex
	state  *lua.LState
	host   Host
	logger *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a Lua state with the standard libraries and the
// bridge module preloaded.
func NewRunner(host Host, opts ...Option) *Runner {
	r := &Runner{
		state:  lua.NewState(),
		host:   host,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.state.PreloadModule(ModuleName, r.loader)
	return r
}

// DoString runs a Lua chunk.
func (r *Runner) DoString(src string) error {
	return r.DoStringContext(context.Background(), src)
}

// DoStringContext runs a Lua chunk, aborting it when ctx is cancelled.
func (r *Runner) DoStringContext(ctx context.Context, src string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state.SetContext(ctx)
	defer r.state.RemoveContext()

	if err := r.state.DoString(src); err != nil {
		r.logger.Debug("lua chunk failed", "error", err)
		return fmt.Errorf("lua: %w", err)
	}
	return nil
}

// DoFile runs a Lua file.
func (r *Runner) DoFile(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.state.DoFile(path); err != nil {
		return fmt.Errorf("lua %s: %w", path, err)
	}
	return nil
}

// Global returns a global variable of the Lua state.
func (r *Runner) Global(name string) lua.LValue {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.GetGlobal(name)
}

// Close releases the Lua state. The host is not touched.
func (r *Runner) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Close()
}

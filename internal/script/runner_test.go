package script

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/scorebridge/internal/bridge"
	"github.com/roach88/scorebridge/internal/config"
	"github.com/roach88/scorebridge/internal/testutil"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newBridge(t *testing.T, engine *testutil.FakeEngine) *bridge.Bridge {
	t.Helper()
	cfg := config.Default()
	cfg.Announce = false
	b := bridge.New(
		bridge.WithConfig(cfg),
		bridge.WithLogger(quietLogger()),
		bridge.WithRunIDs(testutil.NewSequentialRunIDs()),
	)
	t.Cleanup(func() { _ = b.Close() })
	if engine != nil {
		require.NoError(t, b.BindEngine(engine))
	}
	return b
}

func newRunner(t *testing.T, host Host) *Runner {
	t.Helper()
	r := NewRunner(host, WithLogger(quietLogger()))
	t.Cleanup(r.Close)
	return r
}

func TestRunner_SubmitAndStart(t *testing.T) {
	engine := testutil.NewFakeEngine(testutil.WithFinishAfter(1, 1))
	b := newBridge(t, engine)
	r := newRunner(t, b)

	require.NoError(t, r.DoString(`
		local b = require("bridge")
		b.score_event("i", 1, 0, 2)
		b.read_score("i2 0.5 1")
		b.start()
	`))
	b.Wait()

	assert.Equal(t, []string{
		"[0] event i 1 0 2",
		`[0] score "i2 0.5 1"`,
		"[0] perform -> 1",
	}, engine.Trace())
}

func TestRunner_Accessors(t *testing.T) {
	engine := testutil.NewFakeEngine(testutil.WithTable(1, []float64{0.5, 0.25}))
	r := newRunner(t, newBridge(t, engine))

	require.NoError(t, r.DoString(`
		local b = require("bridge")
		b.set_channel("amp", 0.75)
		b.set_string_channel("label", "drone")
		b.table_set(1, 1, 0.125)
		amp = b.get_channel("amp")
		label = b.get_string_channel("label")
		second = b.table_get(1, 1)
		len = b.table_length(1)
		sr = b.sr()
		ksmps = b.ksmps()
		t = b.score_time()
		running = b.is_running()
		b.message("hello\n")
	`))

	assert.Equal(t, lua.LNumber(0.75), r.Global("amp"))
	assert.Equal(t, lua.LString("drone"), r.Global("label"))
	assert.Equal(t, lua.LNumber(0.125), r.Global("second"))
	assert.Equal(t, lua.LNumber(2), r.Global("len"))
	assert.Equal(t, lua.LNumber(48000), r.Global("sr"))
	assert.Equal(t, lua.LNumber(32), r.Global("ksmps"))
	assert.Equal(t, lua.LNumber(0), r.Global("t"))
	assert.Equal(t, lua.LFalse, r.Global("running"))

	assert.Equal(t, 0.75, engine.ControlChannel("amp"))
	assert.Equal(t, []string{`[0] message "hello\n"`}, engine.Trace())
}

func TestRunner_UnboundRaises(t *testing.T) {
	r := newRunner(t, newBridge(t, nil))

	tests := []struct {
		name string
		src  string
	}{
		{"score_event", `require("bridge").score_event("i", 1, 0, 1)`},
		{"read_score", `require("bridge").read_score("i1 0 1")`},
		{"start", `require("bridge").start()`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.DoString(tt.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), bridge.ErrEngineUnavailable.Error())
		})
	}
}

func TestRunner_ErrorsCatchableInLua(t *testing.T) {
	r := newRunner(t, newBridge(t, nil))

	require.NoError(t, r.DoString(`
		ok, err = pcall(function() require("bridge").read_score("i1 0 1") end)
	`))
	assert.Equal(t, lua.LFalse, r.Global("ok"))
	assert.Contains(t, r.Global("err").String(), "no engine bound")
}

func TestRunner_InvalidOpcode(t *testing.T) {
	r := newRunner(t, newBridge(t, testutil.NewFakeEngine()))

	for _, src := range []string{
		`require("bridge").score_event("x", 1)`,
		`require("bridge").score_event("ii", 1)`,
		`require("bridge").score_event("i", "not a number")`,
	} {
		assert.Error(t, r.DoString(src), src)
	}
}

func TestRunner_UnboundSentinels(t *testing.T) {
	r := newRunner(t, newBridge(t, nil))

	require.NoError(t, r.DoString(`
		local b = require("bridge")
		sr = b.sr()
		amp = b.get_channel("amp")
		len = b.table_length(1)
	`))
	assert.Equal(t, lua.LNumber(-1), r.Global("sr"))
	assert.Equal(t, lua.LNumber(-1), r.Global("amp"))
	assert.Equal(t, lua.LNumber(-1), r.Global("len"))
}

func TestRunner_StartStop(t *testing.T) {
	engine := testutil.NewFakeEngine()
	b := newBridge(t, engine)
	r := newRunner(t, b)

	require.NoError(t, r.DoString(`
		local b = require("bridge")
		b.start()
		was_running = b.is_running()
		b.stop()
		now_running = b.is_running()
	`))
	assert.Equal(t, lua.LTrue, r.Global("was_running"))
	assert.Equal(t, lua.LFalse, r.Global("now_running"))
}

func TestRunner_DoFile(t *testing.T) {
	engine := testutil.NewFakeEngine(testutil.WithFinishAfter(1, 1))
	b := newBridge(t, engine)
	r := newRunner(t, b)

	path := filepath.Join(t.TempDir(), "phrase.lua")
	require.NoError(t, os.WriteFile(path, []byte(`
		local b = require("bridge")
		for i = 0, 2 do
			b.score_event("i", 1, i * 0.5, 0.5)
		end
	`), 0o644))

	require.NoError(t, r.DoFile(path))
	require.NoError(t, b.Start())
	b.Wait()

	assert.Equal(t, []string{
		"[0] event i 1 0 0.5",
		"[0] event i 1 0.5 0.5",
		"[0] event i 1 1 0.5",
		"[0] perform -> 1",
	}, engine.Trace())
}

func TestRunner_ContextCancel(t *testing.T) {
	r := newRunner(t, newBridge(t, testutil.NewFakeEngine()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, r.DoStringContext(ctx, `while true do end`))
}

func TestRunner_ConcurrentRunnersShareBridge(t *testing.T) {
	const runners, perRunner = 4, 50

	engine := testutil.NewFakeEngine(testutil.WithFinishAfter(1, 1))
	b := newBridge(t, engine)

	var g errgroup.Group
	for i := 0; i < runners; i++ {
		r := newRunner(t, b)
		g.Go(func() error {
			return r.DoString(`
				local b = require("bridge")
				for n = 1, 50 do b.score_event("i", 1, n, 1) end
			`)
		})
	}
	require.NoError(t, g.Wait())

	require.NoError(t, b.Start())
	b.Wait()
	assert.Len(t, engine.CallsOf(testutil.CallEvent), runners*perRunner)
}

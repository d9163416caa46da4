package script

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/roach88/scorebridge/internal/score"
)

// loader builds the bridge module table.
func (r *Runner) loader(L *lua.LState) int {
	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"score_event":        r.scoreEvent,
		"read_score":         r.readScore,
		"start":              r.start,
		"stop":               r.stop,
		"is_running":         r.isRunning,
		"get_channel":        r.getChannel,
		"set_channel":        r.setChannel,
		"get_string_channel": r.getStringChannel,
		"set_string_channel": r.setStringChannel,
		"table_get":          r.tableGet,
		"table_set":          r.tableSet,
		"table_length":       r.tableLength,
		"score_time":         r.scoreTime,
		"sr":                 r.sampleRate,
		"ksmps":              r.ksmps,
		"message":            r.message,
	})
	L.Push(mod)
	return 1
}

// score_event(op, p1, p2, ...)
func (r *Runner) scoreEvent(L *lua.LState) int {
	opName := L.CheckString(1)
	if len(opName) != 1 || !score.Opcode(opName[0]).Valid() {
		L.ArgError(1, "invalid opcode "+opName)
		return 0
	}

	top := L.GetTop()
	fields := make([]float64, 0, top-1)
	for i := 2; i <= top; i++ {
		fields = append(fields, float64(L.CheckNumber(i)))
	}

	if err := r.host.SubmitScoreEvent(score.Opcode(opName[0]), fields...); err != nil {
		L.RaiseError("%s", err.Error())
	}
	return 0
}

// read_score(text)
func (r *Runner) readScore(L *lua.LState) int {
	if err := r.host.SubmitScoreText(L.CheckString(1)); err != nil {
		L.RaiseError("%s", err.Error())
	}
	return 0
}

func (r *Runner) start(L *lua.LState) int {
	if err := r.host.Start(); err != nil {
		L.RaiseError("%s", err.Error())
	}
	return 0
}

func (r *Runner) stop(L *lua.LState) int {
	r.host.Stop()
	return 0
}

func (r *Runner) isRunning(L *lua.LState) int {
	L.Push(lua.LBool(r.host.IsRunning()))
	return 1
}

func (r *Runner) getChannel(L *lua.LState) int {
	L.Push(lua.LNumber(r.host.ControlChannel(L.CheckString(1))))
	return 1
}

func (r *Runner) setChannel(L *lua.LState) int {
	r.host.SetControlChannel(L.CheckString(1), float64(L.CheckNumber(2)))
	return 0
}

func (r *Runner) getStringChannel(L *lua.LState) int {
	L.Push(lua.LString(r.host.StringChannel(L.CheckString(1))))
	return 1
}

func (r *Runner) setStringChannel(L *lua.LState) int {
	r.host.SetStringChannel(L.CheckString(1), L.CheckString(2))
	return 0
}

func (r *Runner) tableGet(L *lua.LState) int {
	L.Push(lua.LNumber(r.host.TableGet(L.CheckInt(1), L.CheckInt(2))))
	return 1
}

func (r *Runner) tableSet(L *lua.LState) int {
	r.host.TableSet(L.CheckInt(1), L.CheckInt(2), float64(L.CheckNumber(3)))
	return 0
}

func (r *Runner) tableLength(L *lua.LState) int {
	L.Push(lua.LNumber(r.host.TableLength(L.CheckInt(1))))
	return 1
}

func (r *Runner) scoreTime(L *lua.LState) int {
	L.Push(lua.LNumber(r.host.ScoreTime()))
	return 1
}

func (r *Runner) sampleRate(L *lua.LState) int {
	L.Push(lua.LNumber(r.host.SampleRate()))
	return 1
}

func (r *Runner) ksmps(L *lua.LState) int {
	L.Push(lua.LNumber(r.host.Ksmps()))
	return 1
}

func (r *Runner) message(L *lua.LState) int {
	r.host.Message(L.CheckString(1))
	return 0
}

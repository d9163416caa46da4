package bridge

// Engine handle adapter.
//
// Every method forwards to the bound engine through one atomic load and
// nothing else. With no engine bound, numeric getters return -1, string
// getters return "", and setters do nothing.

// ControlChannel returns the value of a named control channel, or -1 when
// unbound.
func (b *Bridge) ControlChannel(name string) float64 {
	if e := b.engine(); e != nil {
		return e.ControlChannel(name)
	}
	return -1
}

// SetControlChannel sets a named control channel. No-op when unbound.
func (b *Bridge) SetControlChannel(name string, value float64) {
	if e := b.engine(); e != nil {
		e.SetControlChannel(name, value)
	}
}

// StringChannel returns the value of a named string channel, or "" when
// unbound.
func (b *Bridge) StringChannel(name string) string {
	if e := b.engine(); e != nil {
		return e.StringChannel(name)
	}
	return ""
}

// SetStringChannel sets a named string channel. No-op when unbound.
func (b *Bridge) SetStringChannel(name, value string) {
	if e := b.engine(); e != nil {
		e.SetStringChannel(name, value)
	}
}

// TableGet returns one value of a function table, or -1 when unbound.
func (b *Bridge) TableGet(table, index int) float64 {
	if e := b.engine(); e != nil {
		return e.TableGet(table, index)
	}
	return -1
}

// TableSet writes one value of a function table. No-op when unbound.
func (b *Bridge) TableSet(table, index int, value float64) {
	if e := b.engine(); e != nil {
		e.TableSet(table, index, value)
	}
}

// TableLength returns the size of a function table. Returns -1 when unbound
// and a negative value when the table does not exist.
func (b *Bridge) TableLength(table int) int {
	if e := b.engine(); e != nil {
		return e.TableLength(table)
	}
	return -1
}

// TableSnapshot copies a whole function table. Returns nil when unbound or
// when the table does not exist. The copy is not atomic with respect to a
// block rendering concurrently.
func (b *Bridge) TableSnapshot(table int) []float64 {
	e := b.engine()
	if e == nil {
		return nil
	}
	n := e.TableLength(table)
	if n < 0 {
		return nil
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = e.TableGet(table, i)
	}
	return out
}

// SampleRate returns the engine sample rate, or -1 when unbound.
func (b *Bridge) SampleRate() int {
	if e := b.engine(); e != nil {
		return e.SampleRate()
	}
	return -1
}

// Ksmps returns the number of sample frames per block, or -1 when unbound.
func (b *Bridge) Ksmps() int {
	if e := b.engine(); e != nil {
		return e.Ksmps()
	}
	return -1
}

// Nchnls returns the number of output channels, or -1 when unbound.
func (b *Bridge) Nchnls() int {
	if e := b.engine(); e != nil {
		return e.Nchnls()
	}
	return -1
}

// NchnlsInput returns the number of input channels, or -1 when unbound.
func (b *Bridge) NchnlsInput() int {
	if e := b.engine(); e != nil {
		return e.NchnlsInput()
	}
	return -1
}

// ZeroDBFS returns the amplitude of 0 dB full scale, or -1 when unbound.
func (b *Bridge) ZeroDBFS() float64 {
	if e := b.engine(); e != nil {
		return e.ZeroDBFS()
	}
	return -1
}

// CurrentTimeSamples returns the performance position in sample frames, or
// -1 when unbound.
func (b *Bridge) CurrentTimeSamples() int64 {
	if e := b.engine(); e != nil {
		return e.CurrentTimeSamples()
	}
	return -1
}

// ScoreTime returns the engine's current score time in seconds, or -1 when
// unbound.
func (b *Bridge) ScoreTime() float64 {
	if e := b.engine(); e != nil {
		return e.ScoreTime()
	}
	return -1
}

// ScoreOffsetSeconds returns the score start offset, or -1 when unbound.
func (b *Bridge) ScoreOffsetSeconds() float64 {
	if e := b.engine(); e != nil {
		return e.ScoreOffsetSeconds()
	}
	return -1
}

// SetScoreOffsetSeconds moves the score start offset. No-op when unbound.
func (b *Bridge) SetScoreOffsetSeconds(seconds float64) {
	if e := b.engine(); e != nil {
		e.SetScoreOffsetSeconds(seconds)
	}
}

// IsScorePending returns 1 if score events are being performed, 0 if the
// score is paused, or -1 when unbound.
func (b *Bridge) IsScorePending() int {
	if e := b.engine(); e != nil {
		return e.IsScorePending()
	}
	return -1
}

// SetScorePending pauses or resumes score events. No-op when unbound.
func (b *Bridge) SetScorePending(pending bool) {
	if e := b.engine(); e != nil {
		e.SetScorePending(pending)
	}
}

// Version returns the engine version number, or -1 when unbound.
func (b *Bridge) Version() int {
	if e := b.engine(); e != nil {
		return e.Version()
	}
	return -1
}

// APIVersion returns the engine API version, or -1 when unbound.
func (b *Bridge) APIVersion() int {
	if e := b.engine(); e != nil {
		return e.APIVersion()
	}
	return -1
}

// OutputName returns the audio output name, or "" when unbound.
func (b *Bridge) OutputName() string {
	if e := b.engine(); e != nil {
		return e.OutputName()
	}
	return ""
}

// CompileCsd compiles a CSD file. Returns the engine status, or -1 when
// unbound.
func (b *Bridge) CompileCsd(path string) int {
	if e := b.engine(); e != nil {
		return e.CompileCsd(path)
	}
	return -1
}

// CompileCsdText compiles CSD source text. Returns the engine status, or -1
// when unbound.
func (b *Bridge) CompileCsdText(text string) int {
	if e := b.engine(); e != nil {
		return e.CompileCsdText(text)
	}
	return -1
}

// CompileOrc compiles orchestra code into the running engine. Returns the
// engine status, or -1 when unbound.
func (b *Bridge) CompileOrc(text string) int {
	if e := b.engine(); e != nil {
		return e.CompileOrc(text)
	}
	return -1
}

// EvalCode evaluates orchestra code and returns its result, or -1 when
// unbound.
func (b *Bridge) EvalCode(text string) float64 {
	if e := b.engine(); e != nil {
		return e.EvalCode(text)
	}
	return -1
}

// StartEngine calls the engine's own start routine. It does not spawn a
// render goroutine; see Start. Returns the engine status, or -1 when unbound.
func (b *Bridge) StartEngine() int {
	if e := b.engine(); e != nil {
		return e.Start()
	}
	return -1
}

// Reset returns the engine to its pre-compiled state. No-op when unbound.
func (b *Bridge) Reset() {
	if e := b.engine(); e != nil {
		e.Reset()
	}
}

// RewindScore restarts the score from the beginning. No-op when unbound.
func (b *Bridge) RewindScore() {
	if e := b.engine(); e != nil {
		e.RewindScore()
	}
}

// SetOption passes one command-line option to the engine. Returns the engine
// status, or -1 when unbound.
func (b *Bridge) SetOption(option string) int {
	if e := b.engine(); e != nil {
		return e.SetOption(option)
	}
	return -1
}

// SetInput selects the audio input. No-op when unbound.
func (b *Bridge) SetInput(name string) {
	if e := b.engine(); e != nil {
		e.SetInput(name)
	}
}

// SetOutput selects the audio output and its file format. No-op when unbound.
func (b *Bridge) SetOutput(name, fileType, format string) {
	if e := b.engine(); e != nil {
		e.SetOutput(name, fileType, format)
	}
}

// Env returns an engine environment variable, or "" when unbound.
func (b *Bridge) Env(name string) string {
	if e := b.engine(); e != nil {
		return e.Env(name)
	}
	return ""
}

// SetGlobalEnv sets an engine environment variable. Returns the engine
// status, or -1 when unbound.
func (b *Bridge) SetGlobalEnv(name, value string) int {
	if e := b.engine(); e != nil {
		return e.SetGlobalEnv(name, value)
	}
	return -1
}

// RunUtility runs a named engine utility. Returns its status, or -1 when
// unbound.
func (b *Bridge) RunUtility(name string, args []string) int {
	if e := b.engine(); e != nil {
		return e.RunUtility(name, args)
	}
	return -1
}

// IsPlaying reports the engine host's own running flag, which is distinct
// from IsRunning (the render goroutine). False when unbound.
func (b *Bridge) IsPlaying() bool {
	if e := b.engine(); e != nil {
		return e.IsRunning()
	}
	return false
}

// Message writes text to the engine's message console. No-op when unbound.
func (b *Bridge) Message(text string) {
	if e := b.engine(); e != nil {
		e.Message(text)
	}
}

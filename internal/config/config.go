// Package config holds the bridge's library configuration.
//
// Configuration is plain data: a YAML document decoded over defaults and
// validated against an embedded CUE schema. There is no flag parsing and no
// settings surface; hosts load a document and pass the result in.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Config configures a bridge and its optional journal.
type Config struct {
	// LockOSThread pins the render goroutine to one OS thread for the
	// duration of a run.
	LockOSThread bool `yaml:"lock_os_thread" json:"lock_os_thread"`

	// Announce posts start/stop messages to the engine console.
	Announce bool `yaml:"announce" json:"announce"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	Journal Journal `yaml:"journal" json:"journal"`
}

// Journal configures the command journal.
type Journal struct {
	// Path is the SQLite database bridge.Open journals every run into.
	// Empty disables journaling.
	Path string `yaml:"path" json:"path"`

	// FlushInterval is how often pending records are written.
	FlushInterval time.Duration `yaml:"flush_interval" json:"flush_interval"`

	// BatchSize triggers an early flush once this many records are pending.
	BatchSize int `yaml:"batch_size" json:"batch_size"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		LockOSThread: true,
		Announce:     true,
		LogLevel:     "info",
		Journal: Journal{
			FlushInterval: 50 * time.Millisecond,
			BatchSize:     256,
		},
	}
}

// Load decodes a YAML document over the defaults and validates the result.
// Unknown keys are rejected.
func Load(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile reads and loads a YAML config file.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Load(data)
}

// Validate checks the configuration against the embedded CUE schema.
func (c Config) Validate() error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	def := schema.LookupPath(cue.ParsePath("#Config"))
	v := def.Unify(ctx.Encode(c.schemaInput()))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// schemaInput mirrors Config under its schema field names, with
// durations as integer nanoseconds.
func (c Config) schemaInput() map[string]any {
	return map[string]any{
		"lock_os_thread": c.LockOSThread,
		"announce":       c.Announce,
		"log_level":      c.LogLevel,
		"journal": map[string]any{
			"path":           c.Journal.Path,
			"flush_interval": int64(c.Journal.FlushInterval),
			"batch_size":     c.Journal.BatchSize,
		},
	}
}

// Level maps LogLevel to a slog level. Unknown values map to info.
func (c Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Logger builds a text logger writing to w at the configured level.
func (c Config) Logger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: c.Level()}))
}

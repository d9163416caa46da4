package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/scorebridge/internal/render"
	"github.com/roach88/scorebridge/internal/score"
)

// DefaultRunID is used when a scenario does not pin its run ID.
const DefaultRunID = "test-run-default"

// Scenario defines one scripted performance.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// RunID is a fixed run ID for deterministic golden output.
	RunID string `yaml:"run_id,omitempty"`

	// FinishAfter is the number of blocks after which the fake engine
	// reports the end of the performance. Zero means never.
	FinishAfter int64 `yaml:"finish_after"`

	// FinishCode is the status returned when the performance finishes.
	// Defaults to 1.
	FinishCode *int `yaml:"finish_code,omitempty"`

	// PanicAt makes the fake engine fault when asked to render this block.
	PanicAt *int64 `yaml:"panic_at,omitempty"`

	// RejectOpcode makes the fake engine return a failure status for events
	// with this opcode.
	RejectOpcode string `yaml:"reject_opcode,omitempty"`

	// Steps are the commands to submit.
	Steps []Step `yaml:"steps"`

	// Expect checks the outcome of the run.
	Expect *ExpectClause `yaml:"expect,omitempty"`

	// Assertions validate the engine trace.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step submits exactly one of Event or Text.
type Step struct {
	Event *EventStep `yaml:"event,omitempty"`
	Text  *string    `yaml:"text,omitempty"`

	// AtBlock submits the step from inside the given block instead of
	// before Start.
	AtBlock *int64 `yaml:"at_block,omitempty"`
}

// EventStep is a score event in scenario form.
type EventStep struct {
	Opcode string    `yaml:"opcode"`
	Fields []float64 `yaml:"fields"`
}

// Event converts the step to a score event.
func (e EventStep) Event() score.Event {
	return score.NewEvent(score.Opcode(e.Opcode[0]), e.Fields...)
}

// ExpectClause specifies the expected outcome. Nil fields are not checked.
type ExpectClause struct {
	Reason  render.Reason `yaml:"reason"`
	Code    *int          `yaml:"code,omitempty"`
	Blocks  *int64        `yaml:"blocks,omitempty"`
	Applied *int64        `yaml:"applied,omitempty"`
}

// Assertion validates the engine trace.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_contains": Check a trace line is present
	// - "trace_order": Check trace lines appear in order
	// - "trace_count": Check how many calls of a kind were made
	Type string `yaml:"type"`

	// Line is the expected trace line (used by trace_contains).
	Line string `yaml:"line,omitempty"`

	// Lines is the expected line order (used by trace_order).
	Lines []string `yaml:"lines,omitempty"`

	// Kind is the call kind: event, score, perform or message (used by trace_count).
	Kind string `yaml:"kind,omitempty"`

	// Count is the expected number of calls (used by trace_count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields, or fails validation.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.FinishAfter < 0 {
		return fmt.Errorf("finish_after must be non-negative")
	}
	if s.FinishAfter == 0 && s.PanicAt == nil {
		return fmt.Errorf("finish_after or panic_at is required so the performance ends")
	}
	if s.PanicAt != nil && *s.PanicAt < 0 {
		return fmt.Errorf("panic_at must be non-negative")
	}
	if s.RejectOpcode != "" && !validOpcode(s.RejectOpcode) {
		return fmt.Errorf("reject_opcode: invalid opcode %q", s.RejectOpcode)
	}

	for i, step := range s.Steps {
		if (step.Event == nil) == (step.Text == nil) {
			return fmt.Errorf("steps[%d]: exactly one of event or text is required", i)
		}
		if step.Event != nil && !validOpcode(step.Event.Opcode) {
			return fmt.Errorf("steps[%d].event: invalid opcode %q", i, step.Event.Opcode)
		}
		if step.AtBlock != nil && *step.AtBlock < 0 {
			return fmt.Errorf("steps[%d]: at_block must be non-negative", i)
		}
	}

	if s.Expect != nil {
		switch s.Expect.Reason {
		case render.ReasonStopped, render.ReasonCompleted, render.ReasonEngineError, "":
		default:
			return fmt.Errorf("expect: unknown reason %q", s.Expect.Reason)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

func validOpcode(op string) bool {
	return len(op) == 1 && score.Opcode(op[0]).Valid()
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Line == "" {
			return fmt.Errorf("assertions[%d]: line is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Lines) == 0 {
			return fmt.Errorf("assertions[%d]: lines list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

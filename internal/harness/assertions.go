package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/scorebridge/internal/testutil"
)

// AssertionError is returned when an assertion fails.
// It includes the full trace to help debug the failure.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, line := range e.Trace {
		fmt.Fprintf(&buf, "  %s\n", line)
	}
	return buf.String()
}

func evaluateAssertion(trace []string, calls []testutil.Call, a Assertion) error {
	switch a.Type {
	case AssertTraceContains:
		return assertTraceContains(trace, a)
	case AssertTraceOrder:
		return assertTraceOrder(trace, a)
	case AssertTraceCount:
		return assertTraceCount(trace, calls, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// assertTraceContains checks the trace contains the line exactly.
func assertTraceContains(trace []string, a Assertion) error {
	for _, line := range trace {
		if line == a.Line {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: a.Line,
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks lines appear in the given order.
// Lines don't need to be consecutive.
func assertTraceOrder(trace []string, a Assertion) error {
	positions := make(map[string]int)
	for i, line := range trace {
		if _, seen := positions[line]; !seen {
			positions[line] = i + 1 // 1-indexed for readability
		}
	}

	for _, line := range a.Lines {
		if positions[line] == 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all lines present: %q", a.Lines),
				Actual:   fmt.Sprintf("missing line: %s", line),
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(a.Lines); i++ {
		prev, curr := a.Lines[i-1], a.Lines[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("lines in order: %q", a.Lines),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}
	return nil
}

// assertTraceCount checks the number of engine calls of one kind.
func assertTraceCount(trace []string, calls []testutil.Call, a Assertion) error {
	count := 0
	for _, c := range calls {
		if string(c.Kind) == a.Kind {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d %s calls", a.Count, a.Kind),
			Actual:   fmt.Sprintf("%d calls", count),
			Trace:    trace,
		}
	}
	return nil
}

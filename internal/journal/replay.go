package journal

import (
	"context"
	"fmt"

	"github.com/roach88/scorebridge/internal/score"
)

// Submitter accepts commands for a render goroutine. *bridge.Bridge
// satisfies it.
type Submitter interface {
	SubmitScoreEvent(op score.Opcode, fields ...float64) error
	SubmitScoreText(text string) error
}

// Replay submits a recorded run in seq order.
//
// Order is kept within each kind only. Block alignment is not reproduced:
// commands applied across several boundaries may land on one, and the
// render loop applies every queued event before any queued text at a
// boundary. A text recorded in an earlier block than an event therefore
// replays after that event.
//
// Returns the number of commands submitted. Stops at the first submit
// error or when ctx is cancelled.
func Replay(ctx context.Context, s *Store, runID string, sub Submitter) (int, error) {
	cmds, err := s.ReadCommands(ctx, runID)
	if err != nil {
		return 0, fmt.Errorf("replay %s: %w", runID, err)
	}

	for i, c := range cmds {
		if err := ctx.Err(); err != nil {
			return i, fmt.Errorf("replay %s: %w", runID, err)
		}
		switch c.Kind {
		case KindEvent:
			err = sub.SubmitScoreEvent(c.Opcode, c.Fields...)
		case KindText:
			err = sub.SubmitScoreText(c.Text)
		default:
			err = fmt.Errorf("unknown command kind %q", c.Kind)
		}
		if err != nil {
			return i, fmt.Errorf("replay %s: seq %d: %w", runID, c.Seq, err)
		}
	}
	return len(cmds), nil
}

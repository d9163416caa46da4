package journal

import (
	"github.com/roach88/scorebridge/internal/render"
	"github.com/roach88/scorebridge/internal/score"
)

// Kind identifies which queue a command came from.
type Kind string

const (
	KindEvent Kind = "event"
	KindText  Kind = "text"
)

// Command is one journaled command as applied by the render goroutine.
type Command struct {
	ID     string
	RunID  string
	Seq    int64 // logical clock value; strictly increasing within a run
	Block  int64 // block boundary the command was applied at
	Kind   Kind
	Opcode score.Opcode // KindEvent only
	Fields []float64    // KindEvent only
	Text   string       // KindText only
}

// Run is one journaled render run.
type Run struct {
	ID       string
	Reason   render.Reason // empty until the run finishes
	Code     int
	Blocks   int64
	Finished bool
}

// Outcome converts a finished run back into a render outcome.
func (r Run) Outcome() render.Outcome {
	return render.Outcome{RunID: r.ID, Reason: r.Reason, Code: r.Code, Blocks: r.Blocks}
}

// Event rebuilds the score event of a KindEvent command.
func (c Command) Event() score.Event {
	return score.NewEvent(c.Opcode, c.Fields...)
}

package score

import (
	"strconv"
	"strings"
)

// Opcode is the single-character statement tag of a score event.
type Opcode byte

const (
	// OpInstrument schedules an instrument instance ("i").
	OpInstrument Opcode = 'i'
	// OpTable generates a function table ("f").
	OpTable Opcode = 'f'
	// OpEnd marks the end of the score ("e").
	OpEnd Opcode = 'e'
	// OpQuiet mutes or unmutes an instrument ("q").
	OpQuiet Opcode = 'q'
	// OpAdvance skips score time ("a").
	OpAdvance Opcode = 'a'
)

// Valid reports whether op is one of the statements the engine accepts as
// a real-time event.
func (op Opcode) Valid() bool {
	switch op {
	case OpInstrument, OpTable, OpEnd, OpQuiet, OpAdvance:
		return true
	}
	return false
}

func (op Opcode) String() string {
	return string(rune(op))
}

// Event is one score event: an opcode and an ordered list of p-fields.
//
// An Event is immutable after it has been submitted. Use NewEvent to build
// one from a caller-owned buffer; it copies the fields.
type Event struct {
	Opcode Opcode
	Fields []float64
}

// NewEvent builds an Event that owns a private copy of fields.
func NewEvent(op Opcode, fields ...float64) Event {
	var owned []float64
	if len(fields) > 0 {
		owned = make([]float64, len(fields))
		copy(owned, fields)
	}
	return Event{Opcode: op, Fields: owned}
}

// Clone returns a deep copy of e.
func (e Event) Clone() Event {
	return NewEvent(e.Opcode, e.Fields...)
}

// String renders the event in score syntax, e.g. "i 1 0 0.5".
func (e Event) String() string {
	var b strings.Builder
	b.WriteByte(byte(e.Opcode))
	for _, f := range e.Fields {
		b.WriteByte(' ')
		b.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	}
	return b.String()
}

// Text is a score text directive: one or more score statements in the
// engine's native score language, read verbatim by the engine.
type Text string

// String returns the directive unchanged.
func (t Text) String() string {
	return string(t)
}

// Package score defines the commands carried into the render goroutine.
//
// Two kinds of command exist:
//   - Event: one timed synthesis instruction (an opcode plus numeric p-fields)
//   - Text: raw score-language statements for the engine's score reader
//
// Both are plain values. Once submitted they are never mutated again; the
// producer hands ownership to the command queue, the queue hands it to the
// render loop, and the render loop drops it after applying it to the engine.
package score

// Package journal records what the render goroutine actually applied.
//
// Every score event and score text drained into the engine is appended to
// a SQLite log together with the run it belonged to, its logical sequence
// number and the block boundary it was applied at. A recorded run can be
// listed, read back in deterministic order, and replayed into any
// Submitter.
//
// Recording happens through Recorder, a render.Observer. Its callbacks run
// on the render goroutine and only push onto an in-memory queue; a
// separate goroutine (Recorder.Run) batches the queue into SQLite.
//
// Command identity is content-addressed: SHA-256 over a canonical encoding
// of the command with a versioned domain prefix. Writing the same command
// twice is a no-op.
package journal

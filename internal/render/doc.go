// Package render implements the render loop that drives a synthesis engine
// one block at a time.
//
// ARCHITECTURE:
//
// Single Render Goroutine:
// Exactly one goroutine runs Loop.Run. It is the sole caller of
// PerformBlock and the sole consumer of both command queues. Producers on
// any goroutine push into the queues; nothing they do ever blocks the loop.
//
// Block Processing Flow:
//  1. Check the stop flag; once set, no further block is rendered
//  2. Drain the event queue, applying each event with ScoreEvent
//  3. Drain the text queue, applying each directive with ReadScore
//  4. Render exactly one block with PerformBlock
//  5. A non-zero status ends the run; otherwise repeat
//
// When the loop exits for any reason, whatever is still queued is drained
// and discarded. Nothing queued during one run is applied by a later run
// unless it was pushed after this run ended.
//
// SCHEDULING GRANULARITY:
//
// Commands are applied at block boundaries. Everything queued before a
// block begins is applied before that block renders; anything queued while
// a block renders waits for the next boundary. Timing is therefore
// block-accurate (ksmps frames), not sample-accurate. Within one boundary
// all events are applied before any text directive.
//
// CANCELLATION:
//
// Stop is cooperative. RequestStop sets a flag that the loop checks once per
// block, so the latency is bounded by the duration of one PerformBlock call.
// There is no way to abort a block in flight.
package render

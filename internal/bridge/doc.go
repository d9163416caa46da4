// Package bridge connects arbitrary caller goroutines to a single render
// goroutine that drives a synthesis engine block by block.
//
// A Bridge owns two command queues (score events and score text), the
// lifecycle of the render goroutine, and a pass-through adapter over the
// bound engine.
//
// New builds a bridge from options. Open builds one from a config.Config
// and, when the config names a journal path, records every run into a
// journal.Store until Close.
//
// Thread-safety model:
//   - SubmitScoreEvent(), SubmitScoreText(): safe from any goroutine, never block
//   - Start(): safe from any goroutine, never blocks
//   - Stop(), Close(): safe from any goroutine; block until the render
//     goroutine has exited (at most one in-flight block)
//   - IsRunning(), Status(), accessors: safe from any goroutine, lock-free
//
// Stop, Close and BindEngine must not be called from the render goroutine
// itself (an Observer or a block hook); they would wait on themselves.
//
// SHARED ENGINE CAVEAT:
//
// The render goroutine is the only goroutine that advances the engine.
// Accessors (channels, tables, timing, compile) are forwarded to the engine
// directly, without any locking at this layer, and may run while a block is
// rendering. Whether that is safe is decided by the engine implementation.
// Callers must not assume atomicity across several accessor calls.
package bridge

package render

import "sync/atomic"

// Clock is a monotonic logical clock stamping applied commands.
//
// Every command the loop applies gets the next seq number, so the order in
// which the engine saw commands is explicit and survives journaling and
// replay. Wall-clock time is never used for ordering.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations),
// although only the render goroutine calls Next.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}

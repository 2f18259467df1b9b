package dispatch

import "sync/atomic"

// Clock is the monotonic logical clock that stamps callback
// invocations.
//
// Every invocation gets a strictly increasing seq number from this
// clock, never a wall-clock reading. This keeps firing-log order
// deterministic and makes golden traces byte-stable.
//
// Clock is safe for concurrent use (atomic operations), though the
// session model means a single goroutine typically calls Next().
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a new clock starting at a specific sequence
// number. Used to resume after loading an existing firing log.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
// Each call returns a unique, increasing value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}

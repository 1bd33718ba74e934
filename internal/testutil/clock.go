// Package testutil holds deterministic stand-ins for the clock and key
// generation used by tests and the conformance harness.
package testutil

import (
	"sync"
	"time"
)

// DeterministicClock hands out instants from a fixed start, advancing by a
// fixed step per call. It replaces time.Now wherever a test needs stable
// timestamps (e.g. pinning a demo task's due date).
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

// NewDeterministicClock returns a clock whose first Now() is start.
func NewDeterministicClock(start time.Time, step time.Duration) *DeterministicClock {
	return &DeterministicClock{now: start, step: step}
}

// Now returns the current instant and advances the clock by one step.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now
	c.now = c.now.Add(c.step)
	return now
}

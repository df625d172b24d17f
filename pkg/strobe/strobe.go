// Package strobe provides a one-bit, coalescing event flag shared between a
// single producer (a timer interrupt) and a single consumer (the main loop).
package strobe

import "sync/atomic"

// Strobe is a pending-event flag. Any number of Set calls before a Take
// collapse into a single pending event.
type Strobe struct {
	pending atomic.Bool
}

// Set marks the event as pending. Called from the interrupt side only.
func (s *Strobe) Set() {
	s.pending.Store(true)
}

// Take reports whether the event was pending and clears it in the same step.
// Called from the loop side only.
func (s *Strobe) Take() bool {
	return s.pending.Swap(false)
}

// Pending reports the flag without clearing it.
func (s *Strobe) Pending() bool {
	return s.pending.Load()
}

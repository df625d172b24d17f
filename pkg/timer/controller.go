package timer

import "sync/atomic"

var _ Interrupts = (*Controller)(nil)

// Controller is an in-memory interrupt controller for the two timers.
type Controller struct {
	pending [numTimers]atomic.Bool
	raised  [numTimers]atomic.Uint64
	cleared [numTimers]atomic.Uint64
}

// NewController creates a controller with no pending interrupts.
func NewController() *Controller {
	return &Controller{}
}

// Raise latches a timeout interrupt.
func (c *Controller) Raise(id ID) {
	c.pending[id].Store(true)
	c.raised[id].Add(1)
}

// Clear acknowledges a timeout interrupt.
func (c *Controller) Clear(id ID) {
	c.pending[id].Store(false)
	c.cleared[id].Add(1)
}

// Pending reports whether the interrupt is latched and not yet acknowledged.
func (c *Controller) Pending(id ID) bool {
	return c.pending[id].Load()
}

// Raised returns how many times the interrupt fired.
func (c *Controller) Raised(id ID) uint64 {
	return c.raised[id].Load()
}

// Cleared returns how many times the interrupt was acknowledged.
func (c *Controller) Cleared(id ID) uint64 {
	return c.cleared[id].Load()
}

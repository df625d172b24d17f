package heartbeat

import "sync"

// FakePin records every level written to it.
type FakePin struct {
	mu     sync.Mutex
	levels []bool

	// SetError, if set, will be returned by Set.
	SetError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakePin creates a FakePin with no recorded writes.
func NewFakePin() *FakePin {
	return &FakePin{}
}

// Set records the level.
func (f *FakePin) Set(level bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.levels = append(f.levels, level)
	return f.SetError
}

// Close marks the pin as closed.
func (f *FakePin) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// Levels returns a copy of the recorded levels.
func (f *FakePin) Levels() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]bool, len(f.levels))
	copy(out, f.levels)
	return out
}

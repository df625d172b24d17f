// Package heartbeat drives the liveness LED. The blink level is owned by the
// component and written to an output pin on every toggle.
package heartbeat

import (
	"fmt"
	"sync"
)

// Pin is a digital output.
type Pin interface {
	// Set drives the pin high (true) or low (false).
	Set(level bool) error
	// Close releases the pin.
	Close() error
}

// Heartbeat toggles a pin once per call.
type Heartbeat struct {
	pin Pin

	mu      sync.Mutex
	level   bool
	toggles uint64
}

// New creates a heartbeat starting with the pin low.
func New(pin Pin) *Heartbeat {
	if pin == nil {
		pin = NopPin{}
	}
	return &Heartbeat{pin: pin}
}

// Toggle inverts the level and writes it to the pin. The level advances even
// when the write fails, the error is only returned for logging.
func (h *Heartbeat) Toggle() (bool, error) {
	h.mu.Lock()
	h.level = !h.level
	h.toggles++
	level := h.level
	h.mu.Unlock()

	if err := h.pin.Set(level); err != nil {
		return level, fmt.Errorf("set heartbeat pin: %w", err)
	}
	return level, nil
}

// Level returns the current level.
func (h *Heartbeat) Level() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.level
}

// Toggles returns how many times the heartbeat has toggled.
func (h *Heartbeat) Toggles() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.toggles
}

// Close drives the pin low and releases it.
func (h *Heartbeat) Close() error {
	h.mu.Lock()
	h.level = false
	h.mu.Unlock()

	if err := h.pin.Set(false); err != nil {
		h.pin.Close()
		return fmt.Errorf("reset heartbeat pin: %w", err)
	}
	return h.pin.Close()
}

// NopPin discards writes.
type NopPin struct{}

func (NopPin) Set(bool) error { return nil }
func (NopPin) Close() error   { return nil }

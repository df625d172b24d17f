// Package timer arms the two free-running periodic timers that pace the main
// loop. Timer expiry only acknowledges the interrupt and raises a strobe; all
// work happens later in the loop.
package timer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/itohio/tivatemp/pkg/strobe"
)

const (
	// DefaultClockHz is the system clock when running straight from the 16 MHz crystal.
	DefaultClockHz = 16000000
	// DefaultHeartbeatHz is the timer 0 rate.
	DefaultHeartbeatHz = 1
	// DefaultSampleHz is the timer 1 rate.
	DefaultSampleHz = 10
)

// ErrInvalidRate is returned by Configure for a rate of zero or one faster than the clock.
var ErrInvalidRate = errors.New("invalid timer rate")

// ID identifies one of the two periodic timers.
type ID int

const (
	Heartbeat ID = iota // timer 0, 1 Hz
	Sample              // timer 1, 10 Hz
	numTimers
)

func (id ID) String() string {
	switch id {
	case Heartbeat:
		return "heartbeat"
	case Sample:
		return "sample"
	default:
		return fmt.Sprintf("timer(%d)", int(id))
	}
}

// Interrupts is the interrupt controller seen by the timer service.
type Interrupts interface {
	// Raise latches the timeout interrupt for the timer.
	Raise(id ID)
	// Clear acknowledges the timeout interrupt for the timer.
	Clear(id ID)
}

// Timer is one armed periodic timer.
type Timer struct {
	ID     ID
	Load   uint32        // countdown ticks per period
	Period time.Duration // Load expressed as wall time
}

// LoadValue returns the countdown load for a timer firing hz times per second.
func LoadValue(clockHz, hz uint32) (uint32, error) {
	if hz == 0 || clockHz == 0 || hz > clockHz {
		return 0, fmt.Errorf("%w: %d Hz with %d Hz clock", ErrInvalidRate, hz, clockHz)
	}
	return clockHz / hz, nil
}

// Period converts a load value back to wall time.
func Period(clockHz, load uint32) time.Duration {
	if clockHz == 0 {
		return 0
	}
	return time.Duration(uint64(load) * uint64(time.Second) / uint64(clockHz))
}

// Service owns both timers and their strobes.
type Service struct {
	irq    Interrupts
	flags  [numTimers]*strobe.Strobe
	timers [numTimers]Timer

	mu         sync.Mutex
	clockHz    uint32
	configured bool
}

// New creates a timer service raising heartbeat and sample on expiry.
func New(irq Interrupts, heartbeat, sample *strobe.Strobe) *Service {
	return &Service{
		irq:   irq,
		flags: [numTimers]*strobe.Strobe{heartbeat, sample},
	}
}

// Configure arms both timers from the clock frequency.
func (s *Service) Configure(clockHz, heartbeatHz, sampleHz uint32) error {
	hbLoad, err := LoadValue(clockHz, heartbeatHz)
	if err != nil {
		return fmt.Errorf("configure %s timer: %w", Heartbeat, err)
	}
	smpLoad, err := LoadValue(clockHz, sampleHz)
	if err != nil {
		return fmt.Errorf("configure %s timer: %w", Sample, err)
	}

	hbPeriod, smpPeriod := Period(clockHz, hbLoad), Period(clockHz, smpLoad)
	if hbPeriod <= 0 {
		return fmt.Errorf("configure %s timer: %w: period below 1ns", Heartbeat, ErrInvalidRate)
	}
	if smpPeriod <= 0 {
		return fmt.Errorf("configure %s timer: %w: period below 1ns", Sample, ErrInvalidRate)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.clockHz = clockHz
	s.timers[Heartbeat] = Timer{ID: Heartbeat, Load: hbLoad, Period: hbPeriod}
	s.timers[Sample] = Timer{ID: Sample, Load: smpLoad, Period: smpPeriod}
	s.configured = true
	return nil
}

// Timer returns the armed timer with the given ID.
func (s *Service) Timer(id ID) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timers[id]
}

// OnExpire is the interrupt handler body for timer id. The pending interrupt
// must be cleared first, otherwise it re-fires immediately.
func (s *Service) OnExpire(id ID) {
	s.irq.Clear(id)
	s.flags[id].Set()
}

// Start runs both timers until ctx is cancelled. The returned channel is closed
// once both timer goroutines have exited.
func (s *Service) Start(ctx context.Context) (<-chan struct{}, error) {
	s.mu.Lock()
	if !s.configured {
		s.mu.Unlock()
		return nil, errors.New("timer service not configured")
	}
	timers := s.timers
	s.mu.Unlock()

	var wg sync.WaitGroup
	for _, t := range timers {
		wg.Add(1)
		go func(t Timer) {
			defer wg.Done()
			s.run(ctx, t)
		}(t)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	return done, nil
}

func (s *Service) run(ctx context.Context, t Timer) {
	ticker := time.NewTicker(t.Period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.irq.Raise(t.ID)
			s.OnExpire(t.ID)
		}
	}
}

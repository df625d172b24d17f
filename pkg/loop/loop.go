// Package loop is the single-threaded polling loop. Timer interrupts only set
// strobes; the loop consumes them and runs the heartbeat and the
// acquire-convert-report cycle synchronously.
package loop

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/itohio/tivatemp/pkg/adc"
	"github.com/itohio/tivatemp/pkg/publish"
	"github.com/itohio/tivatemp/pkg/strobe"
	"github.com/itohio/tivatemp/pkg/temperature"
)

// DefaultReportSequence is the sequence whose sample is reported.
const DefaultReportSequence = 2

// State is what the loop is currently doing.
type State int32

const (
	Idle State = iota
	ProcessHeartbeat
	ProcessSample
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case ProcessHeartbeat:
		return "heartbeat"
	case ProcessSample:
		return "sample"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Toggler is the heartbeat output.
type Toggler interface {
	Toggle() (bool, error)
}

// Acquirer samples every conversion sequence.
type Acquirer interface {
	SampleAll(ctx context.Context) (adc.Samples, error)
}

// Reporter emits a reading. It must not block on delivery confirmation.
type Reporter interface {
	Report(r temperature.Reading)
}

// Options wires the loop to its collaborators.
type Options struct {
	Heartbeat Toggler
	Acquirer  Acquirer
	Reporter  Reporter
	Publisher publish.Publisher // optional

	// ReportSequence selects which of the acquired samples is converted and reported.
	ReportSequence int
	// Idle is slept between iterations; zero yields the processor and spins.
	Idle time.Duration
}

// Stats is a snapshot of loop counters.
type Stats struct {
	State      State
	Iterations uint64
	Toggles    uint64
	Reports    uint64
	Timeouts   uint64
}

// Loop polls the heartbeat and sample strobes.
type Loop struct {
	heartbeat *strobe.Strobe
	sample    *strobe.Strobe
	opts      Options
	now       func() time.Time

	state      atomic.Int32
	iterations atomic.Uint64
	toggles    atomic.Uint64
	reports    atomic.Uint64
	timeouts   atomic.Uint64
}

// New creates a loop consuming heartbeat and sample.
func New(heartbeat, sample *strobe.Strobe, opts Options) (*Loop, error) {
	if opts.Heartbeat == nil || opts.Acquirer == nil || opts.Reporter == nil {
		return nil, errors.New("loop: heartbeat, acquirer and reporter are required")
	}
	if opts.ReportSequence < 0 || opts.ReportSequence >= adc.NumSequences {
		return nil, fmt.Errorf("loop: report sequence %d out of range", opts.ReportSequence)
	}
	if opts.Publisher == nil {
		opts.Publisher = publish.Nop{}
	}

	return &Loop{
		heartbeat: heartbeat,
		sample:    sample,
		opts:      opts,
		now:       time.Now,
	}, nil
}

// Step runs one iteration: the heartbeat strobe is checked first, then the
// sample strobe. Only context cancellation is returned as an error.
func (l *Loop) Step(ctx context.Context) error {
	l.iterations.Add(1)

	if l.heartbeat.Take() {
		l.state.Store(int32(ProcessHeartbeat))
		if _, err := l.opts.Heartbeat.Toggle(); err != nil {
			log.Printf("Heartbeat: %v", err)
		}
		l.toggles.Add(1)
		l.state.Store(int32(Idle))
	}

	if l.sample.Take() {
		l.state.Store(int32(ProcessSample))
		err := l.cycle(ctx)
		l.state.Store(int32(Idle))
		if err != nil {
			return err
		}
	}

	return nil
}

// cycle acquires all sequences, converts the selected one and reports it.
func (l *Loop) cycle(ctx context.Context) error {
	samples, err := l.opts.Acquirer.SampleAll(ctx)
	if err != nil {
		if errors.Is(err, adc.ErrTimeout) {
			l.timeouts.Add(1)
			log.Printf("Acquisition failed, skipping report: %v", err)
			return nil
		}
		return fmt.Errorf("acquire: %w", err)
	}

	reading := temperature.Convert(samples[l.opts.ReportSequence])
	l.opts.Reporter.Report(reading)
	l.reports.Add(1)

	event := publish.Event{
		Timestamp: l.now(),
		Reading:   reading,
		Raw:       samples,
		Sequence:  l.opts.ReportSequence,
	}
	if err := l.opts.Publisher.Publish(event); err != nil {
		log.Printf("Publish error: %v", err)
	}

	return nil
}

// Run polls until ctx is cancelled. There is no other exit.
func (l *Loop) Run(ctx context.Context) error {
	var idle *time.Timer
	if l.opts.Idle > 0 {
		idle = time.NewTimer(l.opts.Idle)
		defer idle.Stop()
	}

	for {
		if err := l.Step(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		if idle == nil {
			if ctx.Err() != nil {
				return nil
			}
			runtime.Gosched()
			continue
		}

		select {
		case <-ctx.Done():
			return nil
		case <-idle.C:
			idle.Reset(l.opts.Idle)
		}
	}
}

// Stats returns the current counters.
func (l *Loop) Stats() Stats {
	return Stats{
		State:      State(l.state.Load()),
		Iterations: l.iterations.Load(),
		Toggles:    l.toggles.Load(),
		Reports:    l.reports.Load(),
		Timeouts:   l.timeouts.Load(),
	}
}

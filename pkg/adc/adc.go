// Package adc runs the three-sequence acquisition protocol against an analog
// front-end: trigger, wait for completion, clear, read, one sequence at a time.
package adc

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"
)

const (
	// NumSequences is the number of conversion sequences sampled per cycle.
	NumSequences = 3
	// Resolution is the converter width in bits.
	Resolution = 12
	// MaxCode is the largest raw code the converter produces.
	MaxCode = 1<<Resolution - 1
)

// ErrTimeout is matched by every completion timeout.
var ErrTimeout = errors.New("conversion timeout")

// RawSample is one 12-bit conversion result.
type RawSample uint16

// Samples holds one result per sequence, indexed by sequence number.
type Samples [NumSequences]RawSample

// Sequencer is the analog front-end as seen by the engine.
type Sequencer interface {
	// Trigger starts a software-triggered conversion on seq.
	Trigger(seq int)
	// Done reports whether seq has signalled completion.
	Done(seq int) bool
	// Clear acknowledges the completion flag of seq.
	Clear(seq int)
	// Read returns the result register of seq.
	Read(seq int) RawSample
}

// TimeoutError reports a sequence that never signalled completion.
type TimeoutError struct {
	Sequence int
	After    time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("sequence %d: %v after %v", e.Sequence, ErrTimeout, e.After)
}

func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// Engine samples all sequences in order, blocking until each completes.
type Engine struct {
	seq     Sequencer
	timeout time.Duration
	now     func() time.Time
}

// NewEngine creates an engine. A zero timeout waits forever for completion,
// so a stalled sequence hangs the caller.
func NewEngine(seq Sequencer, timeout time.Duration) *Engine {
	return &Engine{
		seq:     seq,
		timeout: timeout,
		now:     time.Now,
	}
}

// Timeout returns the per-sequence completion timeout.
func (e *Engine) Timeout() time.Duration {
	return e.timeout
}

// SampleAll converts sequences 0, 1 and 2 one after another and returns every
// result. On error the samples read so far are returned with it.
func (e *Engine) SampleAll(ctx context.Context) (Samples, error) {
	var out Samples
	for i := 0; i < NumSequences; i++ {
		e.seq.Trigger(i)
		if err := e.wait(ctx, i); err != nil {
			return out, err
		}
		e.seq.Clear(i)
		out[i] = e.seq.Read(i)
	}
	return out, nil
}

func (e *Engine) wait(ctx context.Context, seq int) error {
	var deadline time.Time
	if e.timeout > 0 {
		deadline = e.now().Add(e.timeout)
	}

	for !e.seq.Done(seq) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if !deadline.IsZero() && e.now().After(deadline) {
			return &TimeoutError{Sequence: seq, After: e.timeout}
		}
		runtime.Gosched()
	}
	return nil
}

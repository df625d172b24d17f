package adc

import (
	"math"
	"sync"

	"github.com/itohio/tivatemp/pkg/config"
)

var _ Sequencer = (*Mock)(nil)

// Mock simulates the analog front-end of a linear temperature sensor.
type Mock struct {
	cfg *config.MockConfig

	mu      sync.Mutex
	busy    [NumSequences]bool
	polls   [NumSequences]int
	done    [NumSequences]bool
	result  [NumSequences]RawSample
	stalled [NumSequences]bool

	triggers [NumSequences]int
	reads    [NumSequences]int
	samples  int // conversions completed, drives the noise phase
	ambient  float64
}

// NewMock creates a simulated front-end.
func NewMock(cfg *config.MockConfig) *Mock {
	if cfg == nil {
		cfg = &config.MockConfig{
			Ambient:       23.75,
			NoiseLevel:    0.0,
			LatencySpins:  4,
			StallSequence: -1,
		}
	}

	m := &Mock{
		cfg:     cfg,
		ambient: cfg.Ambient,
	}
	if cfg.StallSequence >= 0 && cfg.StallSequence < NumSequences {
		m.stalled[cfg.StallSequence] = true
	}
	return m
}

// Trigger starts a conversion. The result is latched when it completes.
func (m *Mock) Trigger(seq int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.triggers[seq]++
	m.busy[seq] = true
	m.done[seq] = false
	m.polls[seq] = 0
}

// Done reports completion once the configured latency has elapsed.
func (m *Mock) Done(seq int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.done[seq] {
		return true
	}
	if !m.busy[seq] || m.stalled[seq] {
		return false
	}

	m.polls[seq]++
	if m.polls[seq] < m.cfg.LatencySpins {
		return false
	}

	m.busy[seq] = false
	m.done[seq] = true
	m.result[seq] = m.convert(seq)
	m.samples++
	return true
}

// Clear acknowledges the completion flag.
func (m *Mock) Clear(seq int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.done[seq] = false
}

// Read returns the last latched result.
func (m *Mock) Read(seq int) RawSample {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads[seq]++
	return m.result[seq]
}

// SetAmbient changes the simulated sensor temperature (°C).
func (m *Mock) SetAmbient(celsius float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ambient = celsius
}

// Stall makes seq never signal completion until Resume is called.
func (m *Mock) Stall(seq int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stalled[seq] = true
}

// Resume clears a stall injected on seq.
func (m *Mock) Resume(seq int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stalled[seq] = false
}

// Triggers returns how many conversions were started on seq.
func (m *Mock) Triggers(seq int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.triggers[seq]
}

// Reads returns how many times the result register of seq was read.
func (m *Mock) Reads(seq int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads[seq]
}

// convert produces the code for the current simulated temperature.
func (m *Mock) convert(seq int) RawSample {
	celsius := m.ambient + m.cfg.Offsets[seq]

	if m.cfg.NoiseLevel > 0 {
		phase := float64(m.samples)
		noise := (math.Sin(phase*0.7) + math.Cos(phase*1.3)) * m.cfg.NoiseLevel * 0.5
		celsius += noise
	}

	return CodeFor(celsius)
}

// CodeFor returns the raw code a sensor at celsius produces, the inverse of
// the conversion formula, clamped to the 12-bit range.
func CodeFor(celsius float64) RawSample {
	val := (147.5 - celsius) * 4096 / (75.0 * 3.3)
	if val < 0 {
		val = 0
	} else if val > MaxCode {
		val = MaxCode
	}
	return RawSample(val)
}

package trend

import (
	"sync"
	"time"

	"github.com/itohio/tivatemp/pkg/config"
	"github.com/itohio/tivatemp/pkg/temperature"
)

var _ Tracker = (*Trend)(nil)

// Point is one timestamped reading received by the monitor.
type Point struct {
	Timestamp time.Time
	Reading   temperature.Reading
}

// Excursion is a run of consecutive rates beyond the threshold in one direction.
type Excursion struct {
	StartIndex int       // Start point index in buffer
	EndIndex   int       // End point index in buffer (updated while the excursion continues)
	StartTime  time.Time // Start timestamp
	EndTime    time.Time // End timestamp
	Rising     bool      // Temperature increasing
	PeakRate   float64   // Largest absolute rate seen (°C/s)
}

// Duration returns the excursion length.
func (e Excursion) Duration() time.Duration {
	return e.EndTime.Sub(e.StartTime)
}

// Summary describes the readings currently in the window.
type Summary struct {
	Count int
	Min   int
	Max   int
	Mean  float64
	Rate  float64 // Latest rate of change (°C/s)
}

// Tracker consumes readings and keeps a time-windowed history.
type Tracker interface {
	ProcessReadings(input <-chan temperature.Reading)
	Points() []Point
	Rates() []float64
	Excursions() []Excursion
	Summary() Summary
	OnUpdate(func(points []Point, rates []float64, excursions []Excursion))
}

// Trend implements Tracker.
//
// Points and rates are FIFO buffers ordered oldest first. Points leave the
// buffer by timestamp, not count. rate[i] is the change from point[i] to
// point[i+1], so n points carry n-1 rates.
type Trend struct {
	points     []Point
	rates      []float64
	excursions []Excursion
	mu         sync.RWMutex

	callbacks []func(points []Point, rates []float64, excursions []Excursion)
	cbMu      sync.RWMutex

	window       time.Duration
	threshold    float64
	minExcursion time.Duration

	now func() time.Time

	// Set when the input channel closes; no callbacks are sent afterwards.
	shutdown bool
}

// New creates a tracker from the monitor configuration.
func New(cfg *config.MonitorConfig) *Trend {
	return &Trend{
		window:       time.Duration(cfg.WindowSeconds * float64(time.Second)),
		threshold:    cfg.RateThreshold,
		minExcursion: time.Duration(cfg.MinExcursion * float64(time.Second)),
		now:          time.Now,
	}
}

// ProcessReadings stamps and adds readings from input until it closes.
func (t *Trend) ProcessReadings(input <-chan temperature.Reading) {
	for r := range input {
		t.Add(Point{Timestamp: t.now(), Reading: r})
	}
	t.mu.Lock()
	t.shutdown = true
	t.mu.Unlock()
}

// Add appends a point, drops points outside the window and updates
// rates and excursions. Points must arrive in timestamp order.
func (t *Trend) Add(p Point) {
	t.mu.Lock()
	t.points = append(t.points, p)
	t.evict(p.Timestamp.Add(-t.window))

	if n := len(t.points); n >= 2 {
		prev := t.points[n-2]
		dt := p.Timestamp.Sub(prev.Timestamp).Seconds()
		if dt > 0 {
			rate := float64(p.Reading.Celsius-prev.Reading.Celsius) / dt
			t.rates = append(t.rates, rate)
			if len(t.rates) > n-1 {
				t.rates = t.rates[1:]
			}
			t.updateExcursions(rate)
		}
	}

	notify := !t.shutdown
	t.mu.Unlock()

	if notify {
		t.notifyCallbacks()
	}
}

// evict removes points at or before cutoff along with their rates.
func (t *Trend) evict(cutoff time.Time) {
	cut := 0
	for cut < len(t.points)-1 && !t.points[cut].Timestamp.After(cutoff) {
		cut++
	}
	if cut == 0 {
		return
	}

	t.points = t.points[cut:]
	if cut <= len(t.rates) {
		t.rates = t.rates[cut:]
	} else {
		t.rates = t.rates[:0]
	}

	kept := t.excursions[:0]
	for _, e := range t.excursions {
		e.StartIndex -= cut
		e.EndIndex -= cut
		if e.EndIndex < 0 {
			continue
		}
		if e.StartIndex < 0 {
			e.StartIndex = 0
			e.StartTime = t.points[0].Timestamp
		}
		kept = append(kept, e)
	}
	t.excursions = kept
}

func (t *Trend) updateExcursions(rate float64) {
	last := len(t.points) - 1
	rising := rate > 0
	abs := rate
	if abs < 0 {
		abs = -abs
	}

	if abs <= t.threshold {
		t.prune()
		return
	}

	if n := len(t.excursions); n > 0 {
		e := &t.excursions[n-1]
		if e.EndIndex == last-1 && e.Rising == rising {
			e.EndIndex = last
			e.EndTime = t.points[last].Timestamp
			if abs > e.PeakRate {
				e.PeakRate = abs
			}
			return
		}
	}

	t.prune()
	t.excursions = append(t.excursions, Excursion{
		StartIndex: last - 1,
		EndIndex:   last,
		StartTime:  t.points[last-1].Timestamp,
		EndTime:    t.points[last].Timestamp,
		Rising:     rising,
		PeakRate:   abs,
	})
}

// prune drops the latest excursion when it ended shorter than the minimum.
func (t *Trend) prune() {
	n := len(t.excursions)
	if n == 0 {
		return
	}
	e := t.excursions[n-1]
	if e.EndIndex < len(t.points)-1 && e.Duration() < t.minExcursion {
		t.excursions = t.excursions[:n-1]
	}
}

// Points returns a copy of the current points buffer.
func (t *Trend) Points() []Point {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make([]Point, len(t.points))
	copy(result, t.points)
	return result
}

// Rates returns a copy of the current rates buffer.
func (t *Trend) Rates() []float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make([]float64, len(t.rates))
	copy(result, t.rates)
	return result
}

// Excursions returns a copy of the detected excursions within the window.
func (t *Trend) Excursions() []Excursion {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make([]Excursion, len(t.excursions))
	copy(result, t.excursions)
	return result
}

// Summary returns min, max and mean Celsius over the window.
func (t *Trend) Summary() Summary {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s := Summary{Count: len(t.points)}
	if s.Count == 0 {
		return s
	}

	s.Min = t.points[0].Reading.Celsius
	s.Max = s.Min
	sum := 0
	for _, p := range t.points {
		c := p.Reading.Celsius
		if c < s.Min {
			s.Min = c
		}
		if c > s.Max {
			s.Max = c
		}
		sum += c
	}
	s.Mean = float64(sum) / float64(s.Count)
	if len(t.rates) > 0 {
		s.Rate = t.rates[len(t.rates)-1]
	}
	return s
}

// OnUpdate registers a callback invoked after each added point.
// The callback receives copies and should return quickly.
func (t *Trend) OnUpdate(callback func(points []Point, rates []float64, excursions []Excursion)) {
	t.cbMu.Lock()
	defer t.cbMu.Unlock()
	t.callbacks = append(t.callbacks, callback)
}

// ResetShutdown allows callbacks again after the input channel closed.
func (t *Trend) ResetShutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.shutdown = false
}

func (t *Trend) notifyCallbacks() {
	points, rates, excursions := t.Points(), t.Rates(), t.Excursions()

	t.cbMu.RLock()
	callbacks := make([]func(points []Point, rates []float64, excursions []Excursion), len(t.callbacks))
	copy(callbacks, t.callbacks)
	t.cbMu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(points, rates, excursions)
		}
	}
}

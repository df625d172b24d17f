package trend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/tivatemp/pkg/config"
	"github.com/itohio/tivatemp/pkg/temperature"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newTrend(window, threshold, minExcursion float64) *Trend {
	return New(&config.MonitorConfig{
		WindowSeconds: window,
		RateThreshold: threshold,
		MinExcursion:  minExcursion,
	})
}

// feed adds one reading per second starting at epoch.
func feed(tr *Trend, celsius ...int) {
	for i, c := range celsius {
		tr.Add(Point{
			Timestamp: epoch.Add(time.Duration(i) * time.Second),
			Reading:   temperature.Reading{Celsius: c, Fahrenheit: temperature.Fahrenheit(c)},
		})
	}
}

func TestTrend_WindowEviction(t *testing.T) {
	tr := newTrend(10, 100, 0)
	feed(tr, make([]int, 15)...)

	points := tr.Points()
	require.Len(t, points, 10)
	assert.Equal(t, epoch.Add(5*time.Second), points[0].Timestamp)
	assert.Equal(t, epoch.Add(14*time.Second), points[9].Timestamp)
	assert.Len(t, tr.Rates(), 9, "n points carry n-1 rates")
}

func TestTrend_Rates(t *testing.T) {
	tr := newTrend(60, 100, 0)
	feed(tr, 20, 22, 21)

	assert.Equal(t, []float64{2, -1}, tr.Rates())
}

func TestTrend_Excursion(t *testing.T) {
	tr := newTrend(60, 0.5, 1)
	feed(tr, 20, 20, 21, 22, 23, 23, 23)

	ex := tr.Excursions()
	require.Len(t, ex, 1)
	assert.True(t, ex[0].Rising)
	assert.Equal(t, 1, ex[0].StartIndex)
	assert.Equal(t, 4, ex[0].EndIndex)
	assert.Equal(t, 3*time.Second, ex[0].Duration())
	assert.Equal(t, 1.0, ex[0].PeakRate)
}

func TestTrend_ShortExcursionDropped(t *testing.T) {
	tr := newTrend(60, 0.5, 2)
	feed(tr, 20, 21, 21)

	assert.Empty(t, tr.Excursions())
}

func TestTrend_DirectionChangeStartsNewExcursion(t *testing.T) {
	tr := newTrend(60, 0.5, 0)
	feed(tr, 20, 22, 20)

	ex := tr.Excursions()
	require.Len(t, ex, 2)
	assert.True(t, ex[0].Rising)
	assert.False(t, ex[1].Rising)
	assert.Equal(t, 1, ex[1].StartIndex)
	assert.Equal(t, 2, ex[1].EndIndex)
	assert.Equal(t, 2.0, ex[1].PeakRate)
}

func TestTrend_ExcursionShiftedOnEviction(t *testing.T) {
	tr := newTrend(3, 0.5, 0)
	feed(tr, 20, 21, 22, 22, 22)

	points := tr.Points()
	require.Len(t, points, 3)

	ex := tr.Excursions()
	require.Len(t, ex, 1)
	assert.Equal(t, 0, ex[0].StartIndex)
	assert.Equal(t, 0, ex[0].EndIndex)
	assert.Equal(t, points[0].Timestamp, ex[0].StartTime)
}

func TestTrend_Summary(t *testing.T) {
	tr := newTrend(60, 100, 0)
	assert.Equal(t, Summary{}, tr.Summary())

	feed(tr, 20, 24, 22)

	s := tr.Summary()
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, 20, s.Min)
	assert.Equal(t, 24, s.Max)
	assert.Equal(t, 22.0, s.Mean)
	assert.Equal(t, -2.0, s.Rate)
}

func TestTrend_ProcessReadings_NoCallbacksAfterClose(t *testing.T) {
	tr := newTrend(60, 100, 0)
	tick := epoch
	tr.now = func() time.Time {
		tick = tick.Add(100 * time.Millisecond)
		return tick
	}

	calls := 0
	tr.OnUpdate(func(points []Point, rates []float64, excursions []Excursion) {
		calls++
	})

	input := make(chan temperature.Reading, 3)
	for _, c := range []int{23, 24, 25} {
		input <- temperature.Reading{Celsius: c}
	}
	close(input)
	tr.ProcessReadings(input)

	assert.Equal(t, 3, calls)
	assert.Len(t, tr.Points(), 3)
	assert.InDelta(t, 10.0, tr.Summary().Rate, 1e-9)

	tr.Add(Point{Timestamp: tick.Add(time.Second), Reading: temperature.Reading{Celsius: 25}})
	assert.Equal(t, 3, calls, "no callbacks after input closed")

	tr.ResetShutdown()
	tr.Add(Point{Timestamp: tick.Add(2 * time.Second), Reading: temperature.Reading{Celsius: 25}})
	assert.Equal(t, 4, calls)
}

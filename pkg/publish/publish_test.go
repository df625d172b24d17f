package publish

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/itohio/tivatemp/pkg/adc"
	"github.com/itohio/tivatemp/pkg/temperature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPayload(t *testing.T) {
	event := Event{
		Timestamp: time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC),
		Reading:   temperature.Reading{Celsius: 23, Fahrenheit: 73},
		Raw:       adc.Samples{1000, 2000, 2048},
		Sequence:  2,
	}

	payload, err := FormatPayload(event)
	require.NoError(t, err)

	var parsed Payload
	require.NoError(t, json.Unmarshal(payload, &parsed))

	assert.Equal(t, "2026-02-02T22:18:12Z", parsed.Temperature.Timestamp)
	assert.Equal(t, 23, parsed.Temperature.Celsius)
	assert.Equal(t, 73, parsed.Temperature.Fahrenheit)
	assert.Equal(t, 2, parsed.Temperature.Sequence)
	assert.Equal(t, []uint16{1000, 2000, 2048}, parsed.Temperature.Raw)
}

func TestFormatPayload_LocalTimeIsUTC(t *testing.T) {
	loc := time.FixedZone("EET", 2*60*60)
	event := Event{Timestamp: time.Date(2026, 2, 3, 0, 18, 12, 0, loc)}

	payload, err := FormatPayload(event)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"timestamp":"2026-02-02T22:18:12Z"`)
}

func TestFake_Publish(t *testing.T) {
	f := NewFake()
	event := Event{Reading: temperature.Reading{Celsius: 24, Fahrenheit: 75}}

	require.NoError(t, f.Publish(event))
	assert.Equal(t, 1, f.Count())
	assert.Len(t, f.Payloads, 1)

	f.PublishError = errors.New("broker down")
	assert.Error(t, f.Publish(event))
	assert.Equal(t, 1, f.Count())

	require.NoError(t, f.Close())
	assert.True(t, f.Closed)
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(Event{}))
	assert.NoError(t, p.Close())
}

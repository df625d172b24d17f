// Package publish sends temperature readings to an MQTT broker.
package publish

import (
	"encoding/json"
	"time"

	"github.com/itohio/tivatemp/pkg/adc"
	"github.com/itohio/tivatemp/pkg/temperature"
)

// Event is one reporting cycle.
type Event struct {
	Timestamp time.Time
	Reading   temperature.Reading
	Raw       adc.Samples
	Sequence  int // sequence the reading was converted from
}

// Publisher publishes reporting cycles.
type Publisher interface {
	// Publish sends one event. Errors must not stop the caller.
	Publish(event Event) error

	// Close disconnects from the broker.
	Close() error
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Temperature TemperaturePayload `json:"temperature"`
}

// TemperaturePayload contains the reading details.
type TemperaturePayload struct {
	Timestamp  string   `json:"timestamp"`
	Celsius    int      `json:"celsius"`
	Fahrenheit int      `json:"fahrenheit"`
	Sequence   int      `json:"sequence"`
	Raw        []uint16 `json:"raw"`
}

// FormatPayload creates the JSON payload for an event.
func FormatPayload(event Event) ([]byte, error) {
	raw := make([]uint16, len(event.Raw))
	for i, code := range event.Raw {
		raw[i] = uint16(code)
	}

	payload := Payload{
		Temperature: TemperaturePayload{
			Timestamp:  event.Timestamp.UTC().Format(time.RFC3339Nano),
			Celsius:    event.Reading.Celsius,
			Fahrenheit: event.Reading.Fahrenheit,
			Sequence:   event.Sequence,
			Raw:        raw,
		},
	}
	return json.Marshal(payload)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(Event) error { return nil }
func (Nop) Close() error        { return nil }

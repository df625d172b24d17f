// Package temperature converts raw 12-bit sensor codes into whole-degree
// Celsius and Fahrenheit values.
package temperature

import (
	"github.com/chewxy/math32"

	"github.com/itohio/tivatemp/pkg/adc"
)

const (
	// Offset is the temperature at code 0 (°C).
	Offset = 147.5
	// Slope is the sensor gain in °C per volt.
	Slope = 75.0
	// VRef is the converter reference voltage.
	VRef = 3.3
	// FullScale is the code count of the 12-bit converter.
	FullScale = 4096.0
)

// Reading is one converted temperature.
type Reading struct {
	Celsius    int
	Fahrenheit int
}

// Celsius converts a raw code using single precision arithmetic and truncates
// the result toward zero. Codes above adc.MaxCode are clamped. The float32
// evaluation is what matters; Trunc behaves exactly like the int conversion.
func Celsius(raw adc.RawSample) int {
	if raw > adc.MaxCode {
		raw = adc.MaxCode
	}
	c := Offset - (Slope*VRef*float32(raw))/FullScale
	return int(math32.Trunc(c))
}

// Fahrenheit converts whole degrees Celsius with integer division, so the
// result truncates toward zero.
func Fahrenheit(celsius int) int {
	return (celsius*9 + 160) / 5
}

// Convert maps a raw code to both scales.
func Convert(raw adc.RawSample) Reading {
	c := Celsius(raw)
	return Reading{
		Celsius:    c,
		Fahrenheit: Fahrenheit(c),
	}
}

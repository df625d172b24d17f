// Package board describes the pin assignment brought up before the loop
// starts: analog inputs, the heartbeat LED and the UART used for reports.
package board

import (
	"errors"
	"fmt"
	"sort"
)

// Function is what a pin is configured as.
type Function string

const (
	Analog Function = "analog"
	Output Function = "gpio-out"
	UARTRx Function = "uart-rx"
	UARTTx Function = "uart-tx"
)

// NumAnalog is the number of analog inputs on the part.
const NumAnalog = 12

// Pin is one configured pin.
type Pin struct {
	Port     byte     // 'A'..'F'
	Number   int      // 0..7
	Function Function
	Channel  int // analog input number for Analog pins, -1 otherwise
}

func (p Pin) String() string {
	if p.Function == Analog {
		return fmt.Sprintf("P%c%d (AIN%d)", p.Port, p.Number, p.Channel)
	}
	return fmt.Sprintf("P%c%d (%s)", p.Port, p.Number, p.Function)
}

// Board is a complete pin and clock assignment.
type Board struct {
	Name        string
	CrystalHz   uint32
	UARTClockHz uint32
	BaudRate    int
	Pins        []Pin
	// Sequences maps each conversion sequence to the analog input it samples.
	Sequences [3]int
}

// Default returns the assignment of the reference board: all twelve analog
// inputs enabled, LED on PF2, UART0 on PA0/PA1.
func Default() Board {
	return Board{
		Name:        "tm4c123",
		CrystalHz:   16000000,
		UARTClockHz: 16000000,
		BaudRate:    115200,
		Pins: []Pin{
			{Port: 'E', Number: 3, Function: Analog, Channel: 0},
			{Port: 'E', Number: 2, Function: Analog, Channel: 1},
			{Port: 'E', Number: 1, Function: Analog, Channel: 2},
			{Port: 'E', Number: 0, Function: Analog, Channel: 3},
			{Port: 'D', Number: 3, Function: Analog, Channel: 4},
			{Port: 'D', Number: 2, Function: Analog, Channel: 5},
			{Port: 'D', Number: 1, Function: Analog, Channel: 6},
			{Port: 'D', Number: 0, Function: Analog, Channel: 7},
			{Port: 'E', Number: 5, Function: Analog, Channel: 8},
			{Port: 'E', Number: 4, Function: Analog, Channel: 9},
			{Port: 'B', Number: 4, Function: Analog, Channel: 10},
			{Port: 'B', Number: 5, Function: Analog, Channel: 11},
			{Port: 'F', Number: 2, Function: Output, Channel: -1},
			{Port: 'A', Number: 0, Function: UARTRx, Channel: -1},
			{Port: 'A', Number: 1, Function: UARTTx, Channel: -1},
		},
		Sequences: [3]int{0, 1, 2},
	}
}

// AnalogChannels returns the enabled analog inputs in channel order.
func (b Board) AnalogChannels() []Pin {
	var out []Pin
	for _, p := range b.Pins {
		if p.Function == Analog {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Channel < out[j].Channel })
	return out
}

// Heartbeat returns the LED pin.
func (b Board) Heartbeat() (Pin, bool) {
	for _, p := range b.Pins {
		if p.Function == Output {
			return p, true
		}
	}
	return Pin{}, false
}

// Validate checks that no pin is assigned twice, every analog input is
// enabled exactly once and every sequence samples an enabled input.
func (b Board) Validate() error {
	var errs []error

	type key struct {
		port byte
		num  int
	}
	seenPin := make(map[key]Pin)
	seenChan := make(map[int]bool)

	for _, p := range b.Pins {
		if p.Port < 'A' || p.Port > 'F' || p.Number < 0 || p.Number > 7 {
			errs = append(errs, fmt.Errorf("pin %s out of range", p))
			continue
		}
		k := key{p.Port, p.Number}
		if prev, ok := seenPin[k]; ok {
			errs = append(errs, fmt.Errorf("pin %s already assigned as %s", p, prev.Function))
		}
		seenPin[k] = p

		if p.Function != Analog {
			continue
		}
		if p.Channel < 0 || p.Channel >= NumAnalog {
			errs = append(errs, fmt.Errorf("pin %s: analog input out of range", p))
			continue
		}
		if seenChan[p.Channel] {
			errs = append(errs, fmt.Errorf("analog input AIN%d enabled twice", p.Channel))
		}
		seenChan[p.Channel] = true
	}

	if len(seenChan) != NumAnalog {
		errs = append(errs, fmt.Errorf("%d analog inputs enabled, want %d", len(seenChan), NumAnalog))
	}
	if _, ok := b.Heartbeat(); !ok {
		errs = append(errs, errors.New("no heartbeat output"))
	}
	for seq, ch := range b.Sequences {
		if !seenChan[ch] {
			errs = append(errs, fmt.Errorf("sequence %d samples AIN%d which is not enabled", seq, ch))
		}
	}

	return errors.Join(errs...)
}

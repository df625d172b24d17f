//go:build tinygo

// TinyGo has no TM4C123 target, so the firmware runs on a XIAO with the
// roles of board.Default() mapped onto its pins (see pins.go).
//
//go:generate tinygo flash -target=xiao

package main

import (
	"context"
	"machine"
	"time"

	"github.com/itohio/tivatemp/pkg/adc"
	"github.com/itohio/tivatemp/pkg/report/line"
	"github.com/itohio/tivatemp/pkg/strobe"
	"github.com/itohio/tivatemp/pkg/temperature"
	"github.com/itohio/tivatemp/pkg/timer"
)

var (
	sequences [adc.NumSequences]machine.ADC
	uart      = machine.UART0

	heartbeatFlag strobe.Strobe
	sampleFlag    strobe.Strobe
)

func main() {
	PIN_HEARTBEAT.Configure(machine.PinConfig{Mode: machine.PinOutput})
	PIN_HEARTBEAT.Low()

	machine.InitADC()
	adcConfig := machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: ADC_RESOLUTION,
	}
	for i, pin := range []machine.Pin{PIN_SEQ0, PIN_SEQ1, PIN_SEQ2} {
		pin.Configure(machine.PinConfig{Mode: machine.PinInput})
		sequences[i] = machine.ADC{Pin: pin}
		sequences[i].Configure(adcConfig)
	}

	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	timers := timer.New(timer.NewController(), &heartbeatFlag, &sampleFlag)
	if err := timers.Configure(CLOCK_HZ, HEARTBEAT_HZ, SAMPLE_HZ); err != nil {
		println("timer:", err.Error())
		return
	}
	if _, err := timers.Start(context.Background()); err != nil {
		println("timer:", err.Error())
		return
	}

	// Main loop
	for {
		if heartbeatFlag.Take() {
			toggleHeartbeat()
		}

		if sampleFlag.Take() {
			samples := sampleAll()
			r := temperature.Convert(samples[REPORT_SEQUENCE])
			uart.Write([]byte(line.Format(r)))
		}

		// Yield to the timer goroutines
		time.Sleep(100 * time.Microsecond)
	}
}

// toggleHeartbeat reads the heartbeat pin and writes its inverse.
func toggleHeartbeat() {
	PIN_HEARTBEAT.Set(!PIN_HEARTBEAT.Get())
}

// sampleAll converts every sequence in order. machine.ADC.Get blocks until the
// conversion is done and returns a left-aligned 16-bit value.
func sampleAll() adc.Samples {
	var out adc.Samples
	for i := range sequences {
		out[i] = adc.RawSample(sequences[i].Get() >> (16 - ADC_RESOLUTION))
	}
	return out
}

//go:build tinygo

package main

import "machine"

const (
	// Clock the timer loads are computed from. The loop paces itself from
	// TinyGo's scheduler, so this only sets the reported load values.
	CLOCK_HZ = 16000000

	HEARTBEAT_HZ = 1  // Heartbeat flag rate
	SAMPLE_HZ    = 10 // Acquisition flag rate

	// ADC configuration
	ADC_REFERENCE_MV = 3300 // Reference voltage in millivolts (3.3V)
	ADC_RESOLUTION   = 12   // ADC resolution in bits (12-bit = 0-4095)

	// Sequence whose sample is converted and reported
	REPORT_SEQUENCE = 2

	// Heartbeat pin, PF2 in board.Default()
	PIN_HEARTBEAT = machine.LED

	// Analog inputs, one per conversion sequence, triggered in order.
	// board.Default().Sequences samples AIN0, AIN1, AIN2 (PE3, PE2, PE1).
	PIN_SEQ0 = machine.A0 // AIN0
	PIN_SEQ1 = machine.A1 // AIN1
	PIN_SEQ2 = machine.A2 // AIN2

	// Serial configuration, UART0 on PA0/PA1 in board.Default()
	// "Temperature = -99*C or -146*F\r" is at most 32 bytes.
	// 10 lines/sec * 32 bytes = 320 bytes/sec, well inside 115200 8N1.
	UART_BAUD_RATE = 115200
)

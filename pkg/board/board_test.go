package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Valid(t *testing.T) {
	b := Default()
	require.NoError(t, b.Validate())
	assert.Equal(t, uint32(16000000), b.CrystalHz)
	assert.Equal(t, 115200, b.BaudRate)
}

func TestAnalogChannels(t *testing.T) {
	chans := Default().AnalogChannels()
	require.Len(t, chans, NumAnalog)
	for i, p := range chans {
		assert.Equal(t, i, p.Channel)
		assert.Equal(t, Analog, p.Function)
	}
	assert.Equal(t, "PE3 (AIN0)", chans[0].String())
	assert.Equal(t, "PE5 (AIN8)", chans[8].String())
	assert.Equal(t, "PB5 (AIN11)", chans[11].String())
}

func TestHeartbeat(t *testing.T) {
	p, ok := Default().Heartbeat()
	require.True(t, ok)
	assert.Equal(t, "PF2 (gpio-out)", p.String())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Board)
		wantErr string
	}{
		{
			name:    "duplicate pin",
			mutate:  func(b *Board) { b.Pins[13] = Pin{Port: 'F', Number: 2, Function: UARTRx, Channel: -1} },
			wantErr: "already assigned",
		},
		{
			name:    "missing analog input",
			mutate:  func(b *Board) { b.Pins = b.Pins[1:] },
			wantErr: "11 analog inputs enabled",
		},
		{
			name:    "analog input twice",
			mutate:  func(b *Board) { b.Pins[1].Channel = 0 },
			wantErr: "AIN0 enabled twice",
		},
		{
			name:    "pin out of range",
			mutate:  func(b *Board) { b.Pins[0].Number = 9 },
			wantErr: "out of range",
		},
		{
			name: "no heartbeat",
			mutate: func(b *Board) {
				b.Pins[12].Function = UARTRx
				b.Pins[12].Channel = -1
			},
			wantErr: "no heartbeat output",
		},
		{
			name:    "sequence on disabled input",
			mutate:  func(b *Board) { b.Sequences[2] = 15 },
			wantErr: "sequence 2 samples AIN15",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Default()
			tt.mutate(&b)
			err := b.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

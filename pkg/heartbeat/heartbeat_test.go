package heartbeat

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeartbeat_TogglePeriodTwo(t *testing.T) {
	pin := NewFakePin()
	h := New(pin)
	assert.False(t, h.Level())

	var got []bool
	for i := 0; i < 6; i++ {
		level, err := h.Toggle()
		require.NoError(t, err)
		got = append(got, level)
	}

	want := []bool{true, false, true, false, true, false}
	assert.Equal(t, want, got)
	assert.Equal(t, want, pin.Levels())
	assert.Equal(t, uint64(6), h.Toggles())
}

func TestHeartbeat_PinErrorStillAdvances(t *testing.T) {
	pin := NewFakePin()
	pin.SetError = errors.New("line busy")
	h := New(pin)

	level, err := h.Toggle()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "line busy")
	assert.True(t, level)
	assert.True(t, h.Level())

	pin.SetError = nil
	level, err = h.Toggle()
	require.NoError(t, err)
	assert.False(t, level)
}

func TestHeartbeat_NilPin(t *testing.T) {
	h := New(nil)
	level, err := h.Toggle()
	require.NoError(t, err)
	assert.True(t, level)
	assert.NoError(t, h.Close())
}

func TestHeartbeat_Close(t *testing.T) {
	pin := NewFakePin()
	h := New(pin)

	_, err := h.Toggle()
	require.NoError(t, err)

	require.NoError(t, h.Close())
	assert.True(t, pin.Closed)
	assert.False(t, h.Level())
	assert.Equal(t, []bool{true, false}, pin.Levels())
}

func TestHeartbeat_CloseSetError(t *testing.T) {
	pin := NewFakePin()
	h := New(pin)
	pin.SetError = errors.New("gone")

	assert.Error(t, h.Close())
	assert.True(t, pin.Closed, "pin must be released even when reset fails")
}

package timer

import (
	"context"
	"testing"
	"time"

	"github.com/itohio/tivatemp/pkg/strobe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadValue(t *testing.T) {
	tests := []struct {
		name    string
		clockHz uint32
		hz      uint32
		want    uint32
		wantErr bool
	}{
		{name: "1 Hz at 16 MHz", clockHz: 16000000, hz: 1, want: 16000000},
		{name: "10 Hz at 16 MHz", clockHz: 16000000, hz: 10, want: 1600000},
		{name: "rate equals clock", clockHz: 1000, hz: 1000, want: 1},
		{name: "zero rate", clockHz: 16000000, hz: 0, wantErr: true},
		{name: "zero clock", clockHz: 0, hz: 1, wantErr: true},
		{name: "rate above clock", clockHz: 100, hz: 1000, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadValue(tt.clockHz, tt.hz)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRate)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPeriod(t *testing.T) {
	assert.Equal(t, time.Second, Period(16000000, 16000000))
	assert.Equal(t, 100*time.Millisecond, Period(16000000, 1600000))
	assert.Equal(t, time.Duration(0), Period(0, 100))
}

func TestService_Configure(t *testing.T) {
	s := New(NewController(), &strobe.Strobe{}, &strobe.Strobe{})
	require.NoError(t, s.Configure(DefaultClockHz, DefaultHeartbeatHz, DefaultSampleHz))

	hb := s.Timer(Heartbeat)
	assert.Equal(t, Heartbeat, hb.ID)
	assert.Equal(t, uint32(16000000), hb.Load)
	assert.Equal(t, time.Second, hb.Period)

	smp := s.Timer(Sample)
	assert.Equal(t, Sample, smp.ID)
	assert.Equal(t, uint32(1600000), smp.Load)
	assert.Equal(t, 100*time.Millisecond, smp.Period)
}

func TestService_ConfigureInvalid(t *testing.T) {
	s := New(NewController(), &strobe.Strobe{}, &strobe.Strobe{})
	err := s.Configure(DefaultClockHz, 0, DefaultSampleHz)
	assert.ErrorIs(t, err, ErrInvalidRate)
	assert.Contains(t, err.Error(), "heartbeat")

	err = s.Configure(DefaultClockHz, DefaultHeartbeatHz, 0)
	assert.ErrorIs(t, err, ErrInvalidRate)
	assert.Contains(t, err.Error(), "sample")
}

func TestService_ConfigureSubNanosecondPeriod(t *testing.T) {
	s := New(NewController(), &strobe.Strobe{}, &strobe.Strobe{})

	// 2 GHz clock with a load of 1 is half a nanosecond.
	err := s.Configure(2000000000, DefaultHeartbeatHz, 2000000000)
	assert.ErrorIs(t, err, ErrInvalidRate)
	assert.Contains(t, err.Error(), "sample")

	_, err = s.Start(context.Background())
	assert.Error(t, err, "a rejected configuration must leave the service unarmed")
}

func TestService_OnExpireAcknowledgesAndSets(t *testing.T) {
	irq := NewController()
	hb, smp := &strobe.Strobe{}, &strobe.Strobe{}
	s := New(irq, hb, smp)

	irq.Raise(Heartbeat)
	require.True(t, irq.Pending(Heartbeat))

	s.OnExpire(Heartbeat)
	assert.False(t, irq.Pending(Heartbeat), "interrupt must be acknowledged")
	assert.True(t, hb.Pending())
	assert.False(t, smp.Pending())

	irq.Raise(Sample)
	s.OnExpire(Sample)
	assert.False(t, irq.Pending(Sample))
	assert.True(t, smp.Pending())
	assert.Equal(t, uint64(1), irq.Cleared(Sample))
}

func TestService_OnExpireCoalesces(t *testing.T) {
	irq := NewController()
	hb := &strobe.Strobe{}
	s := New(irq, hb, &strobe.Strobe{})

	for i := 0; i < 3; i++ {
		irq.Raise(Heartbeat)
		s.OnExpire(Heartbeat)
	}
	assert.Equal(t, uint64(3), irq.Raised(Heartbeat))
	assert.True(t, hb.Take())
	assert.False(t, hb.Take())
}

func TestService_StartNotConfigured(t *testing.T) {
	s := New(NewController(), &strobe.Strobe{}, &strobe.Strobe{})
	_, err := s.Start(context.Background())
	assert.Error(t, err)
}

// TestService_GracefulShutdown checks that both timers fire and the done
// channel closes once the context is cancelled.
func TestService_GracefulShutdown(t *testing.T) {
	irq := NewController()
	hb, smp := &strobe.Strobe{}, &strobe.Strobe{}
	s := New(irq, hb, smp)
	// 1 kHz clock: 100 Hz heartbeat, 500 Hz sample
	require.NoError(t, s.Configure(1000, 100, 500))

	ctx, cancel := context.WithCancel(context.Background())
	done, err := s.Start(ctx)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return irq.Raised(Heartbeat) > 0 && irq.Raised(Sample) > 0
	}, 2*time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timer goroutines did not exit")
	}

	assert.False(t, irq.Pending(Heartbeat))
	assert.False(t, irq.Pending(Sample))
	assert.True(t, hb.Pending())
	assert.True(t, smp.Pending())
}

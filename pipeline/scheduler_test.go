package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerDropsWhileBusy(t *testing.T) {

	s := NewScheduler(clock.NewMock(), 0)
	ran := 0

	err := s.TryRun(func() error {
		ran++
		assert.True(t, s.Busy())

		// a frame arriving mid run is dropped, not queued
		assert.ErrorIs(t, s.TryRun(func() error {
			ran++
			return nil
		}), ErrBusy)

		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, ran)
	assert.False(t, s.Busy())

	// idle again so the next frame runs
	require.NoError(t, s.TryRun(func() error { ran++; return nil }))
	assert.Equal(t, 2, ran)
}

func TestSchedulerThrottle(t *testing.T) {

	clk := clock.NewMock()
	s := NewScheduler(clk, 300*time.Millisecond)
	noop := func() error { return nil }

	require.NoError(t, s.TryRun(noop))

	clk.Add(299 * time.Millisecond)
	assert.ErrorIs(t, s.TryRun(noop), ErrThrottled)

	// measured from the last run that started, not the throttled attempt
	clk.Add(time.Millisecond)
	assert.NoError(t, s.TryRun(noop))

	clk.Add(100 * time.Millisecond)
	assert.ErrorIs(t, s.TryRun(noop), ErrThrottled)
	assert.False(t, s.Busy())
}

func TestSchedulerReleasesOnErrorAndPanic(t *testing.T) {

	s := NewScheduler(clock.NewMock(), 0)
	errFrame := errors.New("bad frame")

	assert.ErrorIs(t, s.TryRun(func() error { return errFrame }), errFrame)
	assert.False(t, s.Busy())

	err := s.TryRun(func() error {
		panic("decoder blew up")
	})

	assert.ErrorIs(t, err, ErrPanic)
	assert.Contains(t, err.Error(), "decoder blew up")
	assert.False(t, s.Busy())

	assert.NoError(t, s.TryRun(func() error { return nil }))
}

func TestMetrics(t *testing.T) {

	m := NewMetrics(4)
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	assert.Zero(t, m.FPS())
	assert.Zero(t, m.Latency())

	for i := 0; i < 4; i++ {
		m.Record(start.Add(time.Duration(i)*100*time.Millisecond),
			time.Duration(i+1)*10*time.Millisecond)
	}

	assert.InDelta(t, 10, m.FPS(), 1e-9)
	assert.Equal(t, 25*time.Millisecond, m.Latency())
	assert.Equal(t, int64(4), m.Frames())

	// the oldest frame drops out of the window
	m.Record(start.Add(400*time.Millisecond), 50*time.Millisecond)

	assert.InDelta(t, 10, m.FPS(), 1e-9)
	assert.Equal(t, 35*time.Millisecond, m.Latency())
	assert.Equal(t, int64(5), m.Frames())
	assert.Equal(t, "FPS: 10.0\nLatency: 35ms", m.String())
}

func TestMetricsDefaultWindow(t *testing.T) {

	window := DefaultParams().MetricsWindow
	m := NewMetrics(window)
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < window+10; i++ {
		m.Record(start.Add(time.Duration(i)*100*time.Millisecond),
			time.Duration(i)*time.Millisecond)
	}

	// only the last window frames count
	assert.InDelta(t, 10, m.FPS(), 1e-9)
	assert.Equal(t, time.Duration(float64(10+window+9)/2*float64(time.Millisecond)), m.Latency())
	assert.Equal(t, int64(window+10), m.Frames())
}

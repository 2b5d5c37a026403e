package internal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockClockSleepAdvances(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMockClock(start)

	require.NoError(t, c.Sleep(context.Background(), 250*time.Millisecond))
	require.NoError(t, c.Sleep(context.Background(), 250*time.Millisecond))

	assert.Equal(t, start.Add(500*time.Millisecond), c.Now())
	assert.Equal(t, 2, c.Sleeps())
}

func TestMockClockSleepHonoursCancel(t *testing.T) {
	c := NewMockClock(time.Time{})
	before := c.Now()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, c.Sleep(ctx, time.Second), context.Canceled)
	assert.Equal(t, before, c.Now())
	assert.Zero(t, c.Sleeps())
}

func TestMockClockDefaultStart(t *testing.T) {
	assert.Equal(t, time.Unix(1000000000, 0), NewMockClock(time.Time{}).Now())
}

func TestMockClockAdvanceNegativePanics(t *testing.T) {
	c := NewMockClock(time.Time{})
	assert.Panics(t, func() { c.Advance(-time.Nanosecond) })
}

func TestMonotonicClockSleep(t *testing.T) {
	var c MonotonicClock
	start := c.Now()
	require.NoError(t, c.Sleep(context.Background(), 5*time.Millisecond))
	assert.GreaterOrEqual(t, c.Now().Sub(start), 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.Sleep(ctx, time.Hour), context.Canceled)
}

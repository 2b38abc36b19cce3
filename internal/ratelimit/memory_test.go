package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiterRejectsAfterMax(t *testing.T) {
	l := NewMemoryLimiter(100, 15*time.Minute)
	now := time.Now()
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		ok, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		require.True(t, ok, "request %d", i+1)
	}

	ok, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok)

	// other clients are unaffected
	ok, err = l.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryLimiterHoldsForWholeWindow(t *testing.T) {
	l := NewMemoryLimiter(100, 15*time.Minute)
	start := time.Now()
	now := start
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		ok, _ := l.Allow(ctx, "10.0.0.1")
		require.True(t, ok, "request %d", i+1)
	}

	for _, at := range []time.Duration{10 * time.Second, 7 * time.Minute, 14*time.Minute + 59*time.Second} {
		now = start.Add(at)
		ok, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.False(t, ok, "request at +%s", at)
	}

	now = start.Add(15 * time.Minute)
	ok, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryLimiterAdmitsAtMostMaxPerWindow(t *testing.T) {
	l := NewMemoryLimiter(100, 15*time.Minute)
	start := time.Now()
	now := start
	l.now = func() time.Time { return now }
	ctx := context.Background()

	admitted := 0
	for now.Before(start.Add(15 * time.Minute)) {
		for i := 0; i < 5; i++ {
			if ok, _ := l.Allow(ctx, "10.0.0.1"); ok {
				admitted++
			}
		}
		now = now.Add(10 * time.Second)
	}
	assert.Equal(t, 100, admitted)
}

func TestMemoryLimiterEvictsClosedWindows(t *testing.T) {
	l := NewMemoryLimiter(1, time.Minute)
	now := time.Now()
	l.now = func() time.Time { return now }
	ctx := context.Background()

	_, _ = l.Allow(ctx, "a")
	_, _ = l.Allow(ctx, "b")
	assert.Len(t, l.windows, 2)

	now = now.Add(2 * time.Minute)
	ok, _ := l.Allow(ctx, "c")
	assert.True(t, ok)
	assert.Len(t, l.windows, 1)
}

func TestMemoryLimiterDefaults(t *testing.T) {
	l := NewMemoryLimiter(0, 0)
	assert.Equal(t, DefaultMax, l.max)
	assert.Equal(t, DefaultWindow, l.length)
}

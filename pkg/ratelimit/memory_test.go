package ratelimit_test

import (
	"context"
	"rightfit/pkg/ratelimit"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemory_FixedWindow(t *testing.T) {
	m := ratelimit.NewMemory()
	defer m.Close()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	m.SetClock(func() time.Time { return now })
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		d := m.Allow(ctx, "ip:1", 3, time.Minute)
		require.True(t, d.Allowed)
		require.Equal(t, i, d.Count)
		require.Equal(t, 3-i, d.Remaining())
	}

	d := m.Allow(ctx, "ip:1", 3, time.Minute)
	require.False(t, d.Allowed)
	require.Equal(t, now.Add(time.Minute), d.ResetAt)
	require.Equal(t, 0, d.Remaining())

	// other keys are independent
	require.True(t, m.Allow(ctx, "ip:2", 3, time.Minute).Allowed)

	// the window resets
	now = now.Add(time.Minute)
	d = m.Allow(ctx, "ip:1", 3, time.Minute)
	require.True(t, d.Allowed)
	require.Equal(t, 1, d.Count)
}

func TestMemory_Unlimited(t *testing.T) {
	m := ratelimit.NewMemory()
	defer m.Close()

	for range 100 {
		require.True(t, m.Allow(context.Background(), "k", 0, time.Minute).Allowed)
	}
	require.Equal(t, 0, m.Len())
}

func TestMemory_Sweep(t *testing.T) {
	m := ratelimit.NewMemory()
	defer m.Close()

	now := time.Now()
	m.SetClock(func() time.Time { return now })
	m.Allow(context.Background(), "a", 1, time.Second)
	m.Allow(context.Background(), "b", 1, time.Hour)
	require.Equal(t, 2, m.Len())

	now = now.Add(2 * time.Second)
	m.Sweep()
	require.Equal(t, 1, m.Len())

	require.NoError(t, m.Close())
	require.NoError(t, m.Close(), "close is idempotent")
}

package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitSpacesSamePlatform(t *testing.T) {
	limiter := New(50*time.Millisecond, nil)
	ctx := context.Background()

	start := time.Now()
	require.NoError(t, limiter.Wait(ctx, "Greenhouse"))
	assert.Less(t, time.Since(start), 25*time.Millisecond, "first request should not wait")

	require.NoError(t, limiter.Wait(ctx, "greenhouse"))
	require.NoError(t, limiter.Wait(ctx, "GREENHOUSE "))
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestWaitDoesNotCouplePlatforms(t *testing.T) {
	limiter := New(200*time.Millisecond, nil)
	ctx := context.Background()

	require.NoError(t, limiter.Wait(ctx, "Greenhouse"))
	start := time.Now()
	require.NoError(t, limiter.Wait(ctx, "Lever"))
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestOverridesAndDisabled(t *testing.T) {
	limiter := New(time.Second, map[string]time.Duration{"Ashby": 800 * time.Millisecond, "fixture": 0})

	assert.Equal(t, 800*time.Millisecond, limiter.Interval("ashby"))
	assert.Equal(t, time.Second, limiter.Interval("Lever"))

	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, limiter.Wait(ctx, "fixture"))
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestOverrideKeysIgnoreSeparators(t *testing.T) {
	limiter := New(time.Second, map[string]time.Duration{
		"smart-recruiters": 10 * time.Millisecond,
		"Green House":      20 * time.Millisecond,
	})

	assert.Equal(t, 10*time.Millisecond, limiter.Interval("SmartRecruiters"))
	assert.Equal(t, 10*time.Millisecond, limiter.Interval("smart_recruiters"))
	assert.Equal(t, 20*time.Millisecond, limiter.Interval("greenhouse"))

	ctx := context.Background()
	require.NoError(t, limiter.Wait(ctx, "SmartRecruiters"))
	start := time.Now()
	require.NoError(t, limiter.Wait(ctx, "smart-recruiters"))
	assert.Less(t, time.Since(start), 500*time.Millisecond, "override interval should apply, not the 1s default")
}

func TestWaitHonorsCancellation(t *testing.T) {
	limiter := New(time.Hour, nil)
	require.NoError(t, limiter.Wait(context.Background(), "Lever"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, limiter.Wait(ctx, "Lever"))
}

func TestWaitConcurrentCallers(t *testing.T) {
	limiter := New(20*time.Millisecond, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	start := time.Now()
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, limiter.Wait(ctx, "Greenhouse"))
		}()
	}
	wg.Wait()
	assert.GreaterOrEqual(t, time.Since(start), 55*time.Millisecond)
}

package concurrency

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSemaphore_AcquireRelease(t *testing.T) {
	s := NewSemaphore(2)

	require.NoError(t, s.Acquire(context.Background()))
	require.NoError(t, s.Acquire(context.Background()))
	assert.Equal(t, 2, s.Current())
	assert.Equal(t, 0, s.Available())

	s.Release()
	assert.Equal(t, 1, s.Current())
	assert.Equal(t, 1, s.Available())
}

func TestSemaphore_TryAcquire(t *testing.T) {
	s := NewSemaphore(1)

	assert.True(t, s.TryAcquire())
	assert.False(t, s.TryAcquire())

	s.Release()
	assert.True(t, s.TryAcquire())
}

func TestSemaphore_AcquireRespectsContext(t *testing.T) {
	s := NewSemaphore(1)
	require.NoError(t, s.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := s.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, s.Current())
}

func TestSemaphore_ReleaseUnheldIsNoop(t *testing.T) {
	s := NewSemaphore(1)
	s.Release()
	assert.Equal(t, 0, s.Current())
	assert.Equal(t, 1, s.Available())
}

func TestRateLimiter_TryAcquire(t *testing.T) {
	r := NewRateLimiter(2)

	assert.True(t, r.TryAcquire())
	assert.True(t, r.TryAcquire())
	assert.False(t, r.TryAcquire())
}

func TestRateLimiter_WindowSlides(t *testing.T) {
	r := NewRateLimiter(1)
	base := time.Now()
	current := base
	r.now = func() time.Time { return current }

	assert.True(t, r.TryAcquire())
	assert.False(t, r.TryAcquire())

	// One window later the slot is free again.
	current = base.Add(61 * time.Second)
	assert.True(t, r.TryAcquire())
}

func TestRateLimiter_WaitUnderLimit(t *testing.T) {
	r := NewRateLimiter(3)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	require.NoError(t, r.Wait(ctx))
	require.NoError(t, r.Wait(ctx))
}

func TestRateLimiter_WaitRespectsContext(t *testing.T) {
	r := NewRateLimiter(1)
	require.True(t, r.TryAcquire())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := r.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

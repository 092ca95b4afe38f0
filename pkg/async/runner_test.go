package async

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"quixellMarket/pkg/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunnerRunsTasksAndReportsFailures(t *testing.T) {
	var mu sync.Mutex
	failed := map[string]string{}

	r := NewRunner(2, time.Second, func(name string, err error) {
		mu.Lock()
		defer mu.Unlock()
		failed[name] = err.Error()
	})

	var ran atomic.Int32
	require.NoError(t, r.Go("ok", func(ctx context.Context) error {
		ran.Add(1)
		return nil
	}))
	require.NoError(t, r.Go("broken", func(ctx context.Context) error {
		return errors.New("insert failed")
	}))
	require.NoError(t, r.Go("panicky", func(ctx context.Context) error {
		panic("boom")
	}))

	require.NoError(t, r.Shutdown(context.Background()))

	assert.Equal(t, int32(1), ran.Load())
	assert.Equal(t, "insert failed", failed["broken"])
	assert.Contains(t, failed["panicky"], "boom")
	assert.NotContains(t, failed, "ok")
}

func TestRunnerRejectsAfterShutdown(t *testing.T) {
	r := NewRunner(1, time.Second, nil)
	require.NoError(t, r.Shutdown(context.Background()))

	err := r.Go("late", func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrRunnerClosed)
}

func TestRunnerShutdownHonorsDeadline(t *testing.T) {
	r := NewRunner(1, time.Second, nil)
	release := make(chan struct{})
	require.NoError(t, r.Go("slow", func(ctx context.Context) error {
		<-release
		return nil
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Shutdown(ctx), context.DeadlineExceeded)

	close(release)
	require.NoError(t, r.Shutdown(context.Background()))
}

func TestRunnerRetriesTransientFailures(t *testing.T) {
	var failures atomic.Int32
	r := NewRunner(1, time.Second, func(string, error) { failures.Add(1) },
		WithRetry(retry.Policy{MaxRetries: 3, BaseBackoff: time.Millisecond}))

	var attempts atomic.Int32
	require.NoError(t, r.Go("flaky", func(ctx context.Context) error {
		if attempts.Add(1) == 1 {
			return errors.New("transient: connection reset")
		}
		return nil
	}))
	require.NoError(t, r.Shutdown(context.Background()))

	assert.Equal(t, int32(2), attempts.Load())
	assert.Zero(t, failures.Load())
}

func TestRunnerRetryStopsAtTaskTimeout(t *testing.T) {
	failed := make(chan error, 1)
	r := NewRunner(1, 30*time.Millisecond, func(_ string, err error) { failed <- err },
		WithRetry(retry.Policy{MaxRetries: 100, BaseBackoff: 10 * time.Millisecond}))

	var attempts atomic.Int32
	require.NoError(t, r.Go("down", func(ctx context.Context) error {
		attempts.Add(1)
		return errors.New("db down")
	}))
	require.NoError(t, r.Shutdown(context.Background()))

	err := <-failed
	assert.Contains(t, err.Error(), "db down")
	assert.Less(t, attempts.Load(), int32(100))
}

func TestRunnerDoesNotRetryPanics(t *testing.T) {
	var failures atomic.Int32
	r := NewRunner(1, time.Second, func(string, error) { failures.Add(1) },
		WithRetry(retry.Policy{MaxRetries: 3, BaseBackoff: time.Millisecond}))

	var attempts atomic.Int32
	require.NoError(t, r.Go("panicky", func(ctx context.Context) error {
		attempts.Add(1)
		panic("boom")
	}))
	require.NoError(t, r.Shutdown(context.Background()))

	assert.Equal(t, int32(1), attempts.Load())
	assert.Equal(t, int32(1), failures.Load())
}

func TestRunnerGoRacingShutdown(t *testing.T) {
	r := NewRunner(4, time.Second, nil)

	var wg sync.WaitGroup
	var accepted, ran atomic.Int32
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := r.Go("tick", func(ctx context.Context) error {
				ran.Add(1)
				return nil
			})
			if err == nil {
				accepted.Add(1)
			} else {
				assert.ErrorIs(t, err, ErrRunnerClosed)
			}
		}()
	}
	require.NoError(t, r.Shutdown(context.Background()))
	wg.Wait()

	assert.Equal(t, accepted.Load(), ran.Load())
}

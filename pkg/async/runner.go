// Package async runs fire-and-forget background tasks with bounded concurrency.
package async

import (
	"context"
	"errors"
	"sync"
	"time"

	"quixellMarket/pkg/logger"
	"quixellMarket/pkg/retry"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
)

var ErrRunnerClosed = errors.New("background runner is closed")

// Task is a unit of background work. Its context is detached from the caller.
type Task func(ctx context.Context) error

type Option func(*Runner)

// WithRetry retries failed tasks under the policy until they succeed or the
// task timeout expires, which makes delivery at-least-once. Tasks must
// tolerate running more than once.
func WithRetry(p retry.Policy) Option {
	return func(r *Runner) { r.retry = p }
}

type Runner struct {
	mu          sync.RWMutex
	closed      bool
	wg          conc.WaitGroup
	sem         chan struct{}
	taskTimeout time.Duration
	retry       retry.Policy
	onFailure   func(name string, err error)
}

func NewRunner(maxConcurrent int, taskTimeout time.Duration, onFailure func(name string, err error), opts ...Option) *Runner {
	if maxConcurrent <= 0 {
		maxConcurrent = 8
	}
	if taskTimeout <= 0 {
		taskTimeout = 5 * time.Second
	}

	r := &Runner{
		sem:         make(chan struct{}, maxConcurrent),
		taskTimeout: taskTimeout,
		onFailure:   onFailure,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Go schedules the task and returns immediately. Failures and panics are
// logged and reported through onFailure, never to the caller.
func (r *Runner) Go(name string, task Task) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return ErrRunnerClosed
	}

	r.wg.Go(func() {
		r.sem <- struct{}{}
		defer func() { <-r.sem }()

		ctx, cancel := context.WithTimeout(context.Background(), r.taskTimeout)
		defer cancel()

		attempts := 0
		err := retry.Do(ctx, r.retry, isRetryable, func(ctx context.Context) error {
			attempts++
			if attempts > 1 {
				logger.Warn("retrying background task", "task", name, "attempt", attempts)
			}
			return runCatching(ctx, task)
		})

		if err != nil {
			logger.Error("background task failed", "task", name, "attempts", attempts, "error", err)
			if r.onFailure != nil {
				r.onFailure(name, err)
			}
		}
	})

	return nil
}

type panicError struct {
	err error
}

func (e *panicError) Error() string { return e.err.Error() }
func (e *panicError) Unwrap() error { return e.err }

func runCatching(ctx context.Context, task Task) error {
	var err error
	var pc panics.Catcher
	pc.Try(func() { err = task(ctx) })
	if rec := pc.Recovered(); rec != nil {
		return &panicError{err: rec.AsError()}
	}
	return err
}

// panics are not retried
func isRetryable(err error) bool {
	var pe *panicError
	return !errors.As(err, &pe)
}

// Shutdown stops accepting tasks and waits for in-flight ones until ctx expires.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

package service

import (
	"context"
	"time"

	"github.com/maggie-r-m-88/commonscapes/internal/logger"
)

// SleepFunc injects the backoff delay, so tests can observe the schedule
// without waiting for it.
type SleepFunc func(ctx context.Context, d time.Duration)

// sleepContext waits for d or until the context is done.
func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

// retryTransient runs fn up to maxRetries+1 times, retrying only transient
// faults. The Nth retry waits base x N before running, so pressure on a
// rate-limited service eases with every attempt. Non-transient errors and
// exhausted retries propagate unchanged.
func retryTransient(ctx context.Context, maxRetries int, base time.Duration, sleep SleepFunc, fn func() error) error {
	if sleep == nil {
		sleep = sleepContext
	}

	var err error
	for attempt := 1; ; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !IsTransient(err) || attempt > maxRetries {
			return err
		}
		if ctx.Err() != nil {
			return err
		}

		delay := base * time.Duration(attempt)
		logger.CtxWarn(ctx, "Transient enrichment fault, retrying in %s: attempt=%d, error=%v", delay, attempt, err)
		sleep(ctx, delay)
	}
}

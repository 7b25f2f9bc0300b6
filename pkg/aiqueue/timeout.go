package aiqueue

import (
	"context"
	"time"
)

// RunWithTimeout races task against budget. On timeout the result is
// discarded and a *TimeoutError returned; the task itself keeps running
// until it returns on its own.
func RunWithTimeout(ctx context.Context, label string, budget time.Duration, task Task) (any, error) {
	if budget <= 0 {
		return task(ctx)
	}

	done := make(chan result, 1)
	go func() {
		v, err := safeCall(ctx, task)
		done <- result{val: v, err: err}
	}()

	timer := time.NewTimer(budget)
	defer timer.Stop()

	select {
	case r := <-done:
		return r.val, r.err
	case <-timer.C:
		return nil, &TimeoutError{Label: label}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

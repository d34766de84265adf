package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/c2fo/pilot"
)

var errBudgetExhausted = errors.New("poll budget exhausted")

// Probe fetches the current state of a job. done reports whether polling should stop.
type Probe[T any] func(ctx context.Context) (value T, done bool, err error)

// Until calls probe until it reports done, waiting policy.NextBackOff() between calls.
//
// The loop ends with a *pilot.TimeoutError when timeout (if positive) elapses or the policy
// returns backoff.Stop, and with the context error when ctx ends first. Probe errors are
// returned as they are; nothing is retried.
func Until[T any](ctx context.Context, op string, policy backoff.BackOff, timeout time.Duration, probe Probe[T]) (T, error) {
	var zero T
	start := time.Now()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, timeout, errBudgetExhausted)
		defer cancel()
	}

	policy.Reset()
	for {
		v, done, err := probe(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return zero, stopped(ctx, op, timeout)
			}
			return zero, err
		}
		if done {
			return v, nil
		}

		delay := policy.NextBackOff()
		if delay == backoff.Stop {
			return zero, &pilot.TimeoutError{Op: op, After: time.Since(start).Round(time.Millisecond)}
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, stopped(ctx, op, timeout)
		case <-timer.C:
		}
	}
}

func stopped(ctx context.Context, op string, timeout time.Duration) error {
	if errors.Is(context.Cause(ctx), errBudgetExhausted) {
		return &pilot.TimeoutError{Op: op, After: timeout}
	}
	return fmt.Errorf("%s: %w", op, ctx.Err())
}

// Package retry wraps provider calls in a bounded randomized-exponential
// backoff policy.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy bounds the retry behavior for a call: at most MaxAttempts total
// attempts, with randomized exponential delays between MinDelay and
// MaxDelay.
type Policy struct {
	MaxAttempts uint64
	MinDelay    time.Duration
	MaxDelay    time.Duration
}

// DefaultPolicy matches the provider wrapper's historical settings.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 6, MinDelay: time.Second, MaxDelay: 20 * time.Second}
}

// Do runs op under the policy and returns its value. The last error is
// returned once attempts are exhausted or the context is done.
func Do[T any](ctx context.Context, p Policy, op func() (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.MinDelay
	b.MaxInterval = p.MaxDelay
	b.MaxElapsedTime = 0 // attempts bound the loop, not wall time

	var policy backoff.BackOff = b
	if p.MaxAttempts > 0 {
		policy = backoff.WithMaxRetries(b, p.MaxAttempts-1)
	}

	return backoff.RetryWithData(op, backoff.WithContext(policy, ctx))
}

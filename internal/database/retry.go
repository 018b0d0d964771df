package database

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"inkwell/internal/observability"

	"github.com/cenkalti/backoff/v5"
)

// RetryPolicy bounds how store operations react to contention.
type RetryPolicy struct {
	// MaxRetries is the number of extra attempts after a busy failure.
	MaxRetries int
	// Timeout caps a whole operation including retries. Zero disables it.
	Timeout time.Duration
	// InitialInterval is the first backoff delay.
	InitialInterval time.Duration
}

// DefaultRetryPolicy is used until Connect installs the configured one.
var DefaultRetryPolicy = RetryPolicy{
	MaxRetries:      5,
	Timeout:         5 * time.Second,
	InitialInterval: 10 * time.Millisecond,
}

var policy atomic.Pointer[RetryPolicy]

func init() {
	p := DefaultRetryPolicy
	policy.Store(&p)
}

// SetRetryPolicy replaces the process-wide retry policy.
func SetRetryPolicy(p RetryPolicy) {
	if p.InitialInterval <= 0 {
		p.InitialInterval = DefaultRetryPolicy.InitialInterval
	}
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	policy.Store(&p)
}

// CurrentRetryPolicy returns the active retry policy.
func CurrentRetryPolicy() RetryPolicy {
	return *policy.Load()
}

// WithRetry runs op under the active policy's timeout, retrying with
// exponential backoff while the store reports it is busy. Any other error,
// including context cancellation, is returned immediately.
func WithRetry[T any](ctx context.Context, name string, op func(ctx context.Context) (T, error)) (T, error) {
	p := CurrentRetryPolicy()
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	start := time.Now()
	defer func() {
		observability.DatabaseQueryLatency.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = 500 * time.Millisecond

	return backoff.Retry(ctx, func() (T, error) {
		res, err := op(ctx)
		if err == nil {
			return res, nil
		}
		if !IsBusy(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return res, backoff.Permanent(err)
		}
		observability.StoreRetries.WithLabelValues(name).Inc()
		return res, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(p.MaxRetries)+1),
	)
}

// Exec is WithRetry for operations that only return an error.
func Exec(ctx context.Context, name string, op func(ctx context.Context) error) error {
	_, err := WithRetry(ctx, name, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

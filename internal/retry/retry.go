package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

var ErrAttemptsExhausted = errors.New("retry attempts exhausted")

// Policy is a fixed-delay retry policy. MaxAttempts of zero means unbounded.
type Policy struct {
	Delay       time.Duration
	MaxAttempts int
}

// NotifyFunc is called after every failed attempt that will be retried.
type NotifyFunc func(attempt int, err error, next time.Duration)

func Fixed(delay time.Duration) Policy {
	return Policy{Delay: delay}
}

func (p Policy) WithMaxAttempts(n int) Policy {
	p.MaxAttempts = n
	return p
}

// Do runs op until it returns nil. It returns ctx.Err() if the context is
// cancelled first, and an error wrapping both ErrAttemptsExhausted and the
// last failure once MaxAttempts attempts have failed.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error, notify NotifyFunc) error {
	var b backoff.BackOff = backoff.NewConstantBackOff(p.Delay)
	if p.MaxAttempts > 0 {
		b = backoff.WithMaxRetries(b, uint64(p.MaxAttempts-1))
	}

	attempt := 0
	err := backoff.RetryNotify(func() error {
		attempt++
		return op(ctx)
	}, backoff.WithContext(b, ctx), func(err error, next time.Duration) {
		if notify != nil {
			notify(attempt, err, next)
		}
	})
	if err == nil {
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrAttemptsExhausted, attempt, err)
}

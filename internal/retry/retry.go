// Package retry wraps fallible remote operations with bounded retry and
// exponential backoff. The ticket store lives in an external spreadsheet, so
// every append and read crosses the network; transient API hiccups should not
// surface as user-facing errors on the first blip.
package retry

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// Policy configures retry behavior for a sequence of attempts. A Policy is
// immutable once constructed, holds no per-call state and is safe to share
// across concurrent callers.
type Policy struct {
	// MaxAttempts is the total number of attempts including the first.
	MaxAttempts int

	// BaseDelay is the wait before the second attempt. Each subsequent
	// wait doubles, capped at MaxDelay.
	BaseDelay time.Duration

	// MaxDelay bounds any single wait, before jitter.
	MaxDelay time.Duration

	// JitterMax is the exclusive upper bound of the uniform random jitter
	// added to every wait, desynchronizing callers that fail together.
	JitterMax time.Duration
}

// DefaultPolicy provides sensible defaults for spreadsheet API calls.
var DefaultPolicy = Policy{
	MaxAttempts: 5,
	BaseDelay:   500 * time.Millisecond,
	MaxDelay:    8 * time.Second,
	JitterMax:   200 * time.Millisecond,
}

// Validate checks policy values.
func (p Policy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1")
	}
	if p.BaseDelay <= 0 {
		return fmt.Errorf("base delay must be positive")
	}
	if p.MaxDelay <= 0 {
		return fmt.Errorf("max delay must be positive")
	}
	if p.JitterMax < 0 {
		return fmt.Errorf("jitter max must be non-negative")
	}
	return nil
}

// Do executes op, retrying on any error until it succeeds or MaxAttempts is
// exhausted. The error from the final attempt is returned verbatim: Do never
// wraps or reclassifies it, so errors.Is/As against the underlying failure
// keep working at the call site.
//
// Every error is treated as retryable. The spreadsheet client gives us no
// reliable way to tell a rate limit from a revoked credential, so a bad
// credential burns the whole backoff budget before failing.
//
// Waits happen only between attempts, never before the first or after the
// last. Cancelling ctx during a wait aborts the sequence with ctx.Err().
// Do performs no logging of its own; observability belongs to the caller.
func (p Policy) Do(ctx context.Context, op func() error) error {
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		err := op()
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == p.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.delay(attempt)):
		}
	}
	return lastErr
}

// DoValue is Do for operations that produce a value. On exhaustion the zero
// value is returned alongside the final attempt's error.
func DoValue[T any](ctx context.Context, p Policy, op func() (T, error)) (T, error) {
	var result T
	err := p.Do(ctx, func() error {
		v, err := op()
		if err != nil {
			return err
		}
		result = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

// delay is the jittered wait after the given failed attempt (1-based).
func (p Policy) delay(attempt int) time.Duration {
	d := p.scheduledDelay(attempt)
	if p.JitterMax > 0 {
		d += time.Duration(rand.Int63n(int64(p.JitterMax)))
	}
	return d
}

// scheduledDelay is the pre-jitter wait after the given failed attempt:
// BaseDelay doubled per attempt, capped at MaxDelay. Kept separate from
// delay so the schedule is testable without sleeping.
func (p Policy) scheduledDelay(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

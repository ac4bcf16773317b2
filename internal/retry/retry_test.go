package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testPolicy(maxAttempts int) Policy {
	return Policy{
		MaxAttempts: maxAttempts,
		BaseDelay:   time.Millisecond,
		MaxDelay:    8 * time.Millisecond,
		JitterMax:   time.Millisecond,
	}
}

func TestPolicy_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		policy  Policy
		wantErr string
	}{
		{
			name:   "defaults are valid",
			policy: DefaultPolicy,
		},
		{
			name: "single attempt is valid",
			policy: Policy{
				MaxAttempts: 1,
				BaseDelay:   time.Second,
				MaxDelay:    time.Second,
			},
		},
		{
			name: "zero attempts",
			policy: Policy{
				MaxAttempts: 0,
				BaseDelay:   time.Second,
				MaxDelay:    time.Second,
			},
			wantErr: "max attempts",
		},
		{
			name: "zero base delay",
			policy: Policy{
				MaxAttempts: 3,
				MaxDelay:    time.Second,
			},
			wantErr: "base delay",
		},
		{
			name: "negative jitter",
			policy: Policy{
				MaxAttempts: 3,
				BaseDelay:   time.Second,
				MaxDelay:    time.Second,
				JitterMax:   -time.Millisecond,
			},
			wantErr: "jitter",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.policy.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPolicy_Do_AttemptCounts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		maxAttempts   int
		succeedOn     int // 0 = never
		wantErr       bool
		wantCallCount int
	}{
		{
			name:          "success on first attempt",
			maxAttempts:   3,
			succeedOn:     1,
			wantCallCount: 1,
		},
		{
			name:          "success on second attempt",
			maxAttempts:   3,
			succeedOn:     2,
			wantCallCount: 2,
		},
		{
			name:          "success on last attempt",
			maxAttempts:   3,
			succeedOn:     3,
			wantCallCount: 3,
		},
		{
			name:          "all attempts fail",
			maxAttempts:   4,
			wantErr:       true,
			wantCallCount: 4,
		},
		{
			name:          "single attempt no retry on failure",
			maxAttempts:   1,
			wantErr:       true,
			wantCallCount: 1,
		},
		{
			name:          "single attempt success",
			maxAttempts:   1,
			succeedOn:     1,
			wantCallCount: 1,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			calls := 0
			err := testPolicy(tt.maxAttempts).Do(context.Background(), func() error {
				calls++
				if tt.succeedOn != 0 && calls >= tt.succeedOn {
					return nil
				}
				return errors.New("transient error")
			})

			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, tt.wantCallCount, calls)
		})
	}
}

func TestPolicy_Do_PropagatesFinalErrorVerbatim(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("permission denied by remote store")
	calls := 0
	err := testPolicy(3).Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("different earlier error")
		}
		return sentinel
	})

	// The last attempt's error comes back untouched, not wrapped.
	require.Equal(t, 3, calls)
	require.Same(t, sentinel, err)
}

func TestPolicy_Do_SingleAttemptPropagatesImmediately(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("boom")
	start := time.Now()
	err := Policy{
		MaxAttempts: 1,
		BaseDelay:   time.Minute,
		MaxDelay:    time.Minute,
	}.Do(context.Background(), func() error { return sentinel })

	require.Same(t, sentinel, err)
	require.Less(t, time.Since(start), time.Second, "no wait after the final attempt")
}

func TestPolicy_Do_ContextCancelledDuringWait(t *testing.T) {
	t.Parallel()

	p := Policy{
		MaxAttempts: 5,
		BaseDelay:   time.Minute,
		MaxDelay:    time.Minute,
	}
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- p.Do(ctx, func() error {
			calls++
			return errors.New("transient error")
		})
	}()

	time.Sleep(20 * time.Millisecond) // let the first attempt fail and the wait begin
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
		require.Equal(t, 1, calls)
	case <-time.After(5 * time.Second):
		t.Fatal("Do did not return after cancellation")
	}
}

func TestDoValue(t *testing.T) {
	t.Parallel()

	t.Run("returns result from succeeding attempt", func(t *testing.T) {
		t.Parallel()

		calls := 0
		got, err := DoValue(context.Background(), testPolicy(3), func() (string, error) {
			calls++
			if calls < 3 {
				return "", errors.New("transient error")
			}
			return "ok", nil
		})

		require.NoError(t, err)
		require.Equal(t, "ok", got)
		require.Equal(t, 3, calls)
	})

	t.Run("returns zero value on exhaustion", func(t *testing.T) {
		t.Parallel()

		sentinel := errors.New("still down")
		got, err := DoValue(context.Background(), testPolicy(2), func() (int, error) {
			return 42, sentinel
		})

		require.Same(t, sentinel, err)
		require.Zero(t, got)
	})
}

func TestPolicy_ScheduledDelay(t *testing.T) {
	t.Parallel()

	p := Policy{
		MaxAttempts: 10,
		BaseDelay:   time.Second,
		MaxDelay:    8 * time.Second,
	}

	want := []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		8 * time.Second,
		8 * time.Second,
	}
	var got []time.Duration
	for attempt := 1; attempt <= len(want); attempt++ {
		got = append(got, p.scheduledDelay(attempt))
	}
	require.Equal(t, want, got)

	// Monotonically non-decreasing and bounded by the cap, even far out.
	prev := time.Duration(0)
	for attempt := 1; attempt <= 64; attempt++ {
		d := p.scheduledDelay(attempt)
		require.GreaterOrEqual(t, d, prev)
		require.LessOrEqual(t, d, p.MaxDelay)
		prev = d
	}
}

func TestPolicy_ScheduledDelay_BaseAboveCap(t *testing.T) {
	t.Parallel()

	p := Policy{
		MaxAttempts: 3,
		BaseDelay:   10 * time.Second,
		MaxDelay:    2 * time.Second,
	}
	require.Equal(t, 2*time.Second, p.scheduledDelay(1))
}

func TestPolicy_Delay_JitterBounds(t *testing.T) {
	t.Parallel()

	p := Policy{
		MaxAttempts: 5,
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    time.Second,
		JitterMax:   50 * time.Millisecond,
	}

	for attempt := 1; attempt <= 4; attempt++ {
		scheduled := p.scheduledDelay(attempt)
		for i := 0; i < 200; i++ {
			d := p.delay(attempt)
			require.GreaterOrEqual(t, d, scheduled)
			require.Less(t, d, scheduled+p.JitterMax)
		}
	}
}

func TestPolicy_Delay_NoJitter(t *testing.T) {
	t.Parallel()

	p := Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    8 * time.Second,
	}
	require.Equal(t, time.Second, p.delay(1))
	require.Equal(t, 2*time.Second, p.delay(2))
}

func TestPolicy_Do_ConcurrentCallers(t *testing.T) {
	t.Parallel()

	p := testPolicy(3)
	const goroutines = 50
	errCh := make(chan error, goroutines)

	for i := 0; i < goroutines; i++ {
		go func() {
			calls := 0
			errCh <- p.Do(context.Background(), func() error {
				calls++
				if calls < 2 {
					return errors.New("transient error")
				}
				return nil
			})
		}()
	}

	for i := 0; i < goroutines; i++ {
		require.NoError(t, <-errCh)
	}
}

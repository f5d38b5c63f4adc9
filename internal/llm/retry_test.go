package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// testPolicy disables real sleeping and fixes jitter at zero so delays are
// deterministic.
func testPolicy(slept *[]time.Duration) backoffPolicy {
	p := defaultBackoffPolicy()
	p.sleep = func(_ context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		return nil
	}
	p.random = func() float64 { return 0 }
	return p
}

func TestRetrySucceedsAfterRateLimits(t *testing.T) {
	var slept []time.Duration
	p := testPolicy(&slept)

	calls := 0
	err := p.run(context.Background(), nil, func() error {
		calls++
		if calls < 3 {
			return fmt.Errorf("%w: slow down", ErrRateLimited)
		}
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 3, calls)
	require.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, slept)
}

func TestRetryExhaustsBudget(t *testing.T) {
	var slept []time.Duration
	p := testPolicy(&slept)

	calls := 0
	err := p.run(context.Background(), nil, func() error {
		calls++
		return fmt.Errorf("%w: always", ErrRateLimited)
	})

	require.ErrorIs(t, err, ErrRateLimited)
	require.Equal(t, maxAttempts, calls)
	require.Len(t, slept, maxAttempts-1)
}

func TestRetryDelayCappedAtMax(t *testing.T) {
	var slept []time.Duration
	p := testPolicy(&slept)

	_ = p.run(context.Background(), nil, func() error {
		return fmt.Errorf("%w: always", ErrRateLimited)
	})

	// 2s, 4s, 8s, 16s with multiplier 2; none exceed the 60s cap here, but
	// every recorded delay must respect it regardless of tuning changes.
	for _, d := range slept {
		require.LessOrEqual(t, d, maxBackoff)
	}
	require.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second}, slept)
}

func TestRetryAppliesJitter(t *testing.T) {
	var slept []time.Duration
	p := testPolicy(&slept)
	p.random = func() float64 { return 1 }

	calls := 0
	_ = p.run(context.Background(), nil, func() error {
		calls++
		if calls == 1 {
			return fmt.Errorf("%w: once", ErrRateLimited)
		}
		return nil
	})

	// Full jitter adds 10% of the base delay.
	require.Equal(t, []time.Duration{2200 * time.Millisecond}, slept)
}

func TestRetryDoesNotRetryOtherErrors(t *testing.T) {
	var slept []time.Duration
	p := testPolicy(&slept)

	boom := &HTTPError{Status: 500, Body: "internal"}
	calls := 0
	err := p.run(context.Background(), nil, func() error {
		calls++
		return boom
	})

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, 1, calls)
	require.Empty(t, slept)
}

func TestRetryStopsOnContextCancel(t *testing.T) {
	p := defaultBackoffPolicy()
	p.random = func() float64 { return 0 }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.run(ctx, nil, func() error {
		return fmt.Errorf("%w: always", ErrRateLimited)
	})

	require.ErrorIs(t, err, context.Canceled)
}

func TestRetryNotifiesObserver(t *testing.T) {
	var slept []time.Duration
	p := testPolicy(&slept)

	var attempts []int
	calls := 0
	err := p.run(context.Background(), func(attempt int, _ time.Duration) {
		attempts = append(attempts, attempt)
	}, func() error {
		calls++
		if calls < 3 {
			return fmt.Errorf("%w: slow down", ErrRateLimited)
		}
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, []int{1, 2}, attempts)
}

func TestHTTPErrorMessage(t *testing.T) {
	err := &HTTPError{Status: 503, Body: "overloaded"}
	require.Equal(t, "provider returned status 503: overloaded", err.Error())
	require.False(t, errors.Is(err, ErrRateLimited))
}

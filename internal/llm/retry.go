package llm

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// Rate-limit retry tuning shared by both HTTP providers.
const (
	maxAttempts       = 5
	initialBackoff    = 2 * time.Second
	maxBackoff        = 60 * time.Second
	backoffMultiplier = 2.0
	jitterFraction    = 0.1
)

// backoffPolicy is a bounded retry state machine: attempt, and on a
// rate-limit error sleep with exponentially growing, jittered, capped delay
// before the next attempt. Any other error propagates immediately; an
// exhausted budget re-surfaces the last rate-limit error. The sleep and
// jitter sources are injectable so tests run without waiting.
type backoffPolicy struct {
	attempts   int
	initial    time.Duration
	max        time.Duration
	multiplier float64
	jitter     float64
	sleep      func(context.Context, time.Duration) error
	random     func() float64
}

func defaultBackoffPolicy() backoffPolicy {
	return backoffPolicy{
		attempts:   maxAttempts,
		initial:    initialBackoff,
		max:        maxBackoff,
		multiplier: backoffMultiplier,
		jitter:     jitterFraction,
		sleep:      sleepContext,
		random:     rand.Float64,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// run executes fn up to the attempt budget. onRetry, when non-nil, observes
// each scheduled retry with the attempt number and the delay about to be
// slept.
func (p backoffPolicy) run(ctx context.Context, onRetry func(attempt int, delay time.Duration), fn func() error) error {
	backoff := p.initial
	var lastErr error

	for attempt := 1; attempt <= p.attempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrRateLimited) {
			return err
		}
		lastErr = err

		if attempt == p.attempts {
			break
		}

		delay := backoff + time.Duration(p.random()*p.jitter*float64(backoff))
		if delay > p.max {
			delay = p.max
		}
		if onRetry != nil {
			onRetry(attempt, delay)
		}
		if err := p.sleep(ctx, delay); err != nil {
			return err
		}

		backoff = time.Duration(float64(backoff) * p.multiplier)
		if backoff > p.max {
			backoff = p.max
		}
	}

	return lastErr
}

package connection

import (
	"fmt"
	"time"
)

// DefaultReconnectDelay is the fixed pause between a closure and the next attempt.
const DefaultReconnectDelay = 5 * time.Second

// ReconnectPolicy decides what happens after the attempt-th consecutive closure
// (attempt starts at 1 and resets once a connection opens). ok=false means give up.
type ReconnectPolicy func(attempt int) (delay time.Duration, ok bool)

// FixedDelay retries forever with the same delay.
func FixedDelay(d time.Duration) ReconnectPolicy {
	return func(int) (time.Duration, bool) {
		return d, true
	}
}

// ExponentialBackoff doubles the delay on every consecutive failure, capped at max.
func ExponentialBackoff(base, max time.Duration) ReconnectPolicy {
	return func(attempt int) (time.Duration, bool) {
		wait := base
		for i := 1; i < attempt; i++ {
			wait *= 2
			if wait >= max || wait <= 0 {
				return max, true
			}
		}
		if wait > max {
			wait = max
		}
		return wait, true
	}
}

// WithMaxAttempts stops p after n consecutive attempts. n <= 0 leaves p unbounded.
func WithMaxAttempts(p ReconnectPolicy, n int) ReconnectPolicy {
	if n <= 0 {
		return p
	}
	return func(attempt int) (time.Duration, bool) {
		if attempt > n {
			return 0, false
		}
		return p(attempt)
	}
}

// NewPolicy builds a policy from its configuration form.
func NewPolicy(strategy string, delay, maxDelay time.Duration, maxAttempts int) (ReconnectPolicy, error) {
	var p ReconnectPolicy
	switch strategy {
	case "", "fixed":
		p = FixedDelay(delay)
	case "exponential":
		p = ExponentialBackoff(delay, maxDelay)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
	return WithMaxAttempts(p, maxAttempts), nil
}

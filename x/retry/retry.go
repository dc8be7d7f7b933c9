// Package retry makes transport retry behavior an explicit, injectable
// policy instead of inline control flow.
package retry

import (
	"context"
	"time"
)

// Policy bounds repeated attempts at a transient operation.
type Policy struct {
	MaxAttempts int           // total attempts, minimum 1
	Backoff     time.Duration // fixed wait between attempts
}

// DefaultPolicy matches the capture loop defaults: a handful of retries
// with a short backoff.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 5, Backoff: 15 * time.Millisecond}
}

func (p Policy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Do runs fn up to MaxAttempts times, waiting Backoff between attempts.
// It returns nil on the first success, the last error on exhaustion, and
// ctx.Err() if the context ends while backing off.
func (p Policy) Do(ctx context.Context, fn func(context.Context) error) error {
	var err error
	for i := 0; i < p.attempts(); i++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if i == p.attempts()-1 {
			break
		}
		if p.Backoff > 0 {
			t := time.NewTimer(p.Backoff)
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		} else if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return err
}

// Counter tracks consecutive failures across independent attempts, for
// loops where a failed tick is tolerated and retried on the next tick
// rather than inline.
type Counter struct {
	limit int
	n     int
}

// NewCounter returns a counter that exhausts after limit consecutive
// failures. limit < 1 is coerced to 1.
func NewCounter(limit int) *Counter {
	if limit < 1 {
		limit = 1
	}
	return &Counter{limit: limit}
}

// Fail records a failure and reports whether the limit is now exhausted.
func (c *Counter) Fail() bool {
	c.n++
	return c.n >= c.limit
}

// OK resets the consecutive failure count.
func (c *Counter) OK() { c.n = 0 }

// Failures returns the current consecutive failure count.
func (c *Counter) Failures() int { return c.n }

// Package retry runs an operation a bounded number of times.
//
// The decision of whether to try again is a pure function of the attempt
// number, the bound and the outcome, so it can be tested without running
// anything.
package retry

import (
	"context"
	"fmt"
)

// Decision is the outcome of one attempt.
type Decision int

const (
	// Stop means the attempt succeeded.
	Stop Decision = iota
	// Retry means the attempt failed and attempts remain.
	Retry
	// Exhausted means the attempt failed and it was the last permitted one.
	Exhausted
)

// String implements fmt.Stringer.
func (d Decision) String() string {
	switch d {
	case Stop:
		return "stop"
	case Retry:
		return "retry"
	case Exhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

// Decide classifies attempt (1-based) out of maxAttempts given its error.
// A bound below 1 is treated as 1.
func Decide(attempt, maxAttempts int, err error) Decision {
	if err == nil {
		return Stop
	}

	if attempt < max(maxAttempts, 1) {
		return Retry
	}

	return Exhausted
}

// Do calls fn until it succeeds or maxAttempts calls have failed.
// onRetry, when set, is called after each failed attempt that will be retried.
// The error of the final attempt is returned unchanged.
func Do(ctx context.Context, maxAttempts int, fn func(ctx context.Context, attempt int) error, onRetry func(attempt int, err error)) error {
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx, attempt)

		switch Decide(attempt, maxAttempts, err) {
		case Stop:
			return nil
		case Retry:
			if onRetry != nil {
				onRetry(attempt, err)
			}
		case Exhausted:
			return err
		}
	}
}

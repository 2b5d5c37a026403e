package scenario

import (
	"context"
	"time"

	"github.com/thesyncim/burger-e2e/pkg/scenario/internal"
)

// check inspects the page once. It returns whether the condition holds and a
// description of what was actually observed, used in the failure message.
type check func(ctx context.Context) (ok bool, actual string, err error)

// poller retries checks until they pass or their timeout elapses.
type poller struct {
	clock    internal.Clock
	interval time.Duration
}

// until runs c every interval until it passes or timeout elapses. Errors from
// c are retried like failed conditions since the DOM may simply not be ready.
func (p poller) until(ctx context.Context, step, expected string, timeout time.Duration, c check) error {
	deadline := p.clock.Now().Add(timeout)
	var (
		actual  string
		lastErr error
	)
	for {
		ok, got, err := c(ctx)
		if err == nil && ok {
			return nil
		}
		actual, lastErr = got, err
		if actual == "" {
			actual = "nothing"
		}

		if !p.clock.Now().Before(deadline) {
			return &AssertionError{Step: step, Expected: expected, Actual: actual, Timeout: timeout, Err: lastErr}
		}
		if err := p.clock.Sleep(ctx, p.interval); err != nil {
			return &AssertionError{Step: step, Expected: expected, Actual: actual, Timeout: timeout, Err: err}
		}
	}
}

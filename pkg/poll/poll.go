// Package poll runs a check on a fixed interval until it reports completion,
// the attempt budget runs out, or the context is cancelled.
package poll

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// ErrExhausted is returned when every attempt ran without the check reporting done.
var ErrExhausted = errors.New("poll attempts exhausted")

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// CheckFunc is invoked once per attempt (attempt starts at 1).
type CheckFunc func(ctx context.Context, attempt int) (done bool, err error)

// Poller sleeps Interval before each attempt, up to MaxAttempts attempts.
type Poller struct {
	Interval    time.Duration
	MaxAttempts int
	Sleep       Sleeper
}

// New returns a Poller using the real clock.
func New(interval time.Duration, maxAttempts int) (p Poller) {
	p = Poller{
		Interval:    interval,
		MaxAttempts: maxAttempts,
		Sleep:       SleepContext,
	}
	return p
}

// Until runs check until it returns done, returns an error, or attempts run out.
func (p Poller) Until(ctx context.Context, check CheckFunc) (attempts int, err error) {
	sleep := p.Sleep
	if sleep == nil {
		sleep = SleepContext
	}

	for attempts < p.MaxAttempts {
		err = sleep(ctx, p.Interval)
		if err != nil {
			err = errors.Wrap(err, "polling cancelled")
			return attempts, err
		}

		attempts++

		var done bool
		done, err = check(ctx, attempts)
		if err != nil {
			return attempts, err
		}
		if done {
			return attempts, err
		}
	}

	err = ErrExhausted
	return attempts, err
}

// SleepContext waits for d, returning early with ctx.Err() on cancellation.
func SleepContext(ctx context.Context, d time.Duration) (err error) {
	if d <= 0 {
		err = ctx.Err()
		return err
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		err = ctx.Err()
	case <-timer.C:
	}

	return err
}

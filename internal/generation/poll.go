package generation

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout is returned when a poll budget is exhausted.
var ErrTimeout = errors.New("generation timed out")

// Budget bounds a polling loop by a fixed delay and attempt count.
type Budget struct {
	Interval time.Duration
	Attempts int
}

// Ceiling is the longest time a poll with this budget may wait.
func (b Budget) Ceiling() time.Duration {
	return b.Interval * time.Duration(b.Attempts)
}

// Poll waits Interval before each attempt and calls check until it reports
// done, fails, or the attempts run out.
func Poll[T any](ctx context.Context, b Budget, check func(ctx context.Context) (T, bool, error)) (T, error) {
	var zero T

	for attempt := 0; attempt < b.Attempts; attempt++ {
		timer := time.NewTimer(b.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}

		v, done, err := check(ctx)
		if err != nil {
			return zero, err
		}
		if done {
			return v, nil
		}
	}
	return zero, ErrTimeout
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

package util

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// Retry calls f until f returns false, at most limit times, waiting interval
// between the calls. When the limit is reached, the last error of f is
// returned.
func Retry(ctx context.Context, f func(attempt int) (bool, error), limit int, interval time.Duration) error {
	var lerr error

	for attempt := 0; attempt < limit; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return errors.WithStack(ctx.Err())
			case <-time.After(interval):
			}
		}

		if err := ctx.Err(); err != nil {
			return errors.WithStack(err)
		}

		keep, err := f(attempt)
		if !keep {
			return err
		}

		lerr = err
	}

	if lerr != nil {
		return lerr
	}

	return errors.Errorf("stop retrying; over limit")
}

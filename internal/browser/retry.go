// internal/browser/retry.go
package browser

import (
	"context"
	"time"
)

// Retry runs fn once plus up to extra more times, sleeping delay between
// attempts. It returns nil on the first success, otherwise the last error and
// the number of attempts made. Context cancellation stops retrying.
func Retry(ctx context.Context, extra int, delay time.Duration, fn func(context.Context) error) (int, error) {
	if extra < 0 {
		extra = 0
	}
	var lastErr error
	for attempt := 1; attempt <= extra+1; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr == nil {
				lastErr = err
			}
			return attempt - 1, lastErr
		}
		lastErr = fn(ctx)
		if lastErr == nil {
			return attempt, nil
		}
		if attempt == extra+1 {
			return attempt, lastErr
		}
		if err := Sleep(ctx, delay); err != nil {
			return attempt, lastErr
		}
	}
	return extra + 1, lastErr
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

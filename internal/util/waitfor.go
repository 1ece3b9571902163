package util

import (
	"context"
	"time"
)

// WaitFor pauses for d or until the context is cancelled, whichever comes
// first. A zero or negative duration returns immediately.
func WaitFor(ctx context.Context, d time.Duration) error {
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

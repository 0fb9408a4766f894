package notify

import (
	"context"
	"time"

	"github.com/Uri-do/monitoringgrid/internal/config"
)

// retry executes fn with exponential backoff until it succeeds, the
// retry budget is spent, or the context is cancelled. Any non-nil error
// is treated as retryable; webhook targets give no better signal.
func retry(ctx context.Context, policy config.NotifyPolicy, fn func() error) error {
	backoff := policy.BaseBackoff

	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if attempt >= policy.MaxRetries {
			return err
		}

		delay := backoff + backoff/2 // 50% jitter headroom
		if delay > policy.MaxBackoff {
			delay = policy.MaxBackoff
		}

		select {
		case <-time.After(delay):
			backoff *= 2
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

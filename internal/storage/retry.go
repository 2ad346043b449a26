package storage

import (
	"context"
	"time"

	"vaultSwap/internal/model"
)

// WithRetry calls fn until it succeeds or maxRetries retries have failed,
// doubling the delay between attempts.
func WithRetry(ctx context.Context, maxRetries int, baseDelay time.Duration, fn func(context.Context) error) error {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}

	delay := baseDelay
	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= maxRetries {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
	}
}

// Retrying wraps a journal so each batch is retried with backoff.
type Retrying struct {
	Journal    Journal
	MaxRetries int
	BaseDelay  time.Duration
}

func (r Retrying) PutReceipts(ctx context.Context, receipts []model.Receipt) error {
	return WithRetry(ctx, r.MaxRetries, r.BaseDelay, func(ctx context.Context) error {
		return r.Journal.PutReceipts(ctx, receipts)
	})
}

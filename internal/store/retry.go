package store

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const maxSetRetries = 4

// SetWithRetry retries a failed write with exponential backoff. Quota and
// access errors show up here as plain write failures; after exhaustion the
// error is surfaced to the caller, who treats it as a non-fatal notice rather
// than letting it abort the tick loop.
func SetWithRetry(ctx context.Context, s Store, key string, value interface{}) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 100 * time.Millisecond
	bo.MaxInterval = 2 * time.Second
	bo.MaxElapsedTime = 0 // attempt count is the bound, not elapsed time

	op := func() error {
		return s.Set(ctx, key, value)
	}

	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, maxSetRetries), ctx))
	if err != nil {
		return fmt.Errorf("write for %q exhausted retries: %w", key, err)
	}
	return nil
}

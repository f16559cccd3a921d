package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	transitionRetryAttempts = 3
	retryBaseDelay          = 100 * time.Millisecond
)

// retryable reports whether err is a transient write race worth retrying:
// a Postgres serialization failure or deadlock, or our own
// ErrConcurrentModification surfaced by a compare-and-swap miss.
func retryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return errors.Is(err, ErrConcurrentModification)
}

// withRetry runs op up to attempts times with linear backoff, retrying only
// write races. Every attempt re-runs op from scratch, so op must re-read
// current state rather than reuse values captured before the conflict.
func withRetry(ctx context.Context, attempts int, op func() error) error {
	var last error
	for attempt := 1; attempt <= attempts; attempt++ {
		last = op()
		if last == nil || !retryable(last) {
			return last
		}
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * retryBaseDelay):
		}
	}
	return fmt.Errorf("%w: gave up after %d attempts: %v", ErrConcurrentModification, attempts, last)
}

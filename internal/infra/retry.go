package infra

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// RetryConfig holds configuration for retry logic
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DefaultRetryConfig returns a sensible default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
	}
}

// WithRetry executes a function with exponential backoff retry logic
func WithRetry(ctx context.Context, cfg RetryConfig, fn func() error) error {
	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err

		// Don't retry on context cancellation
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		// Last attempt, don't wait
		if attempt == cfg.MaxAttempts {
			break
		}

		// Wait with exponential backoff
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		// Increase delay for next attempt
		delay = time.Duration(float64(delay) * cfg.Multiplier)
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	return lastErr
}

// WithAuthRetry runs fn and, if it fails with an expired-credential signal,
// refreshes the credential and runs fn exactly once more. Any other failure,
// a refresh failure, or a second auth failure propagates unchanged.
func WithAuthRetry(ctx context.Context, refresh func(context.Context) error, fn func(context.Context) error) error {
	err := fn(ctx)
	if err == nil || !IsAuthExpired(err) {
		return err
	}
	if rerr := refresh(ctx); rerr != nil {
		return rerr
	}
	return fn(ctx)
}

// IsRetryableHTTPStatus returns true if the HTTP status code is retryable
func IsRetryableHTTPStatus(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests ||
		statusCode == http.StatusServiceUnavailable ||
		statusCode == http.StatusGatewayTimeout ||
		statusCode >= 500
}

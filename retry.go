package bingo

import (
	"context"
	"errors"
	"time"
)

// RetryConfig controls RetryableTranslator.
type RetryConfig struct {
	MaxRetries int           // Attempts after the first one
	BaseDelay  time.Duration // Delay before the first retry, doubled each time
	MaxDelay   time.Duration // Upper bound for a single delay
}

// DefaultRetryConfig returns the retry settings used by the CLI.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 2,
		BaseDelay:  500 * time.Millisecond,
		MaxDelay:   10 * time.Second,
	}
}

// backoff returns the delay before retry number attempt (0-based).
func (c RetryConfig) backoff(attempt int) time.Duration {
	d := c.BaseDelay << attempt
	if d <= 0 || (c.MaxDelay > 0 && d > c.MaxDelay) {
		return c.MaxDelay
	}
	return d
}

// WithRetry calls fn until it succeeds, returns a non-retryable error, or
// the retries are used up.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		// Check context before each attempt
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		// Give up on permanent errors, and don't sleep after the last attempt
		if !IsRetryable(err) || attempt == cfg.MaxRetries {
			break
		}

		timer := time.NewTimer(cfg.backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	return zero, lastErr
}

// IsRetryable reports whether a failed translation may succeed when tried
// again. A rejected session is retryable since the session cache has been
// cleared and the next call fetches a new one.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	// Cancellation is the caller's decision, never retry it
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// Check for UpstreamError with Retryable flag or a rejected session
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return upstream.Retryable || upstream.SessionExpired
	}
	return false
}

// RetryableTranslator retries failed translations with exponential backoff.
type RetryableTranslator struct {
	next   Translator
	config RetryConfig
}

// NewRetryableTranslator wraps next with retry logic.
func NewRetryableTranslator(next Translator, cfg RetryConfig) *RetryableTranslator {
	return &RetryableTranslator{next: next, config: cfg}
}

// Translate implements Translator.
func (t *RetryableTranslator) Translate(ctx context.Context, text, from, to string) (*TranslationResult, error) {
	return WithRetry(ctx, t.config, func() (*TranslationResult, error) {
		return t.next.Translate(ctx, text, from, to)
	})
}

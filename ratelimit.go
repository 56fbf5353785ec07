package bingo

import (
	"context"
	"sync"
	"time"
)

// RateLimitConfig configures a token bucket.
type RateLimitConfig struct {
	RequestsPerMinute int // Sustained rate; 0 means 60
	BurstSize         int // Bucket size; 0 means RequestsPerMinute
}

// RateLimiter is a token bucket shared by concurrent callers.
type RateLimiter struct {
	mu         sync.Mutex
	tokens     float64
	capacity   float64
	perSecond  float64 // refill rate
	lastRefill time.Time
}

// NewRateLimiter creates a limiter with a full bucket.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	rpm := float64(cfg.RequestsPerMinute)
	if rpm <= 0 {
		rpm = 60 // Default: 60 RPM
	}
	burst := float64(cfg.BurstSize)
	if burst <= 0 {
		burst = rpm // Default burst = RPM
	}

	return &RateLimiter{
		tokens:     burst, // Start with full bucket
		capacity:   burst,
		perSecond:  rpm / 60, // Convert to tokens per second
		lastRefill: time.Now(),
	}
}

// Wait blocks until a token is taken or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		wait, ok := r.reserve()
		if ok {
			return nil
		}

		// Sleep until the next token should be available, then try again
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// TryAcquire takes a token if one is available.
func (r *RateLimiter) TryAcquire() bool {
	_, ok := r.reserve()
	return ok
}

// reserve takes a token, or returns how long until the next one.
func (r *RateLimiter) reserve() (time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refill()
	if r.tokens >= 1 {
		r.tokens--
		return 0, true
	}

	// Time until the fractional remainder grows into a whole token
	missing := 1 - r.tokens
	return time.Duration(missing / r.perSecond * float64(time.Second)), false
}

// refill must be called with r.mu held.
func (r *RateLimiter) refill() {
	now := time.Now()
	r.tokens += now.Sub(r.lastRefill).Seconds() * r.perSecond
	// Never exceed the burst size
	if r.tokens > r.capacity {
		r.tokens = r.capacity
	}
	r.lastRefill = now
}

// Available returns the current number of tokens.
func (r *RateLimiter) Available() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refill()
	return r.tokens
}

// RateLimitedTranslator throttles calls to the wrapped Translator.
type RateLimitedTranslator struct {
	next    Translator
	limiter *RateLimiter
}

// NewRateLimitedTranslator wraps next with a token bucket.
func NewRateLimitedTranslator(next Translator, cfg RateLimitConfig) *RateLimitedTranslator {
	return &RateLimitedTranslator{next: next, limiter: NewRateLimiter(cfg)}
}

// Translate implements Translator.
func (t *RateLimitedTranslator) Translate(ctx context.Context, text, from, to string) (*TranslationResult, error) {
	// Wait for rate limit
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, &TranslationError{Message: "rate limit wait cancelled", Cause: err}
	}
	return t.next.Translate(ctx, text, from, to)
}

// Limiter returns the underlying limiter.
func (t *RateLimitedTranslator) Limiter() *RateLimiter {
	return t.limiter
}

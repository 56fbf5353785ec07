package bingo

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRateLimiter_TryAcquire(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: 60, // 1 per second
		BurstSize:         3,
	})

	// Should be able to acquire burst size tokens immediately
	for i := 0; i < 3; i++ {
		if !limiter.TryAcquire() {
			t.Errorf("Expected to acquire token %d", i)
		}
	}

	// Next acquire should fail (bucket empty)
	if limiter.TryAcquire() {
		t.Error("Expected fourth acquire to fail")
	}
}

func TestRateLimiter_Refill(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: 600, // 10 per second
		BurstSize:         1,
	})

	// Drain the bucket
	limiter.TryAcquire()
	if limiter.TryAcquire() {
		t.Error("Expected acquire to fail after drain")
	}

	// Wait for refill (100ms per token at 10/s)
	time.Sleep(150 * time.Millisecond)

	if !limiter.TryAcquire() {
		t.Error("Expected acquire to succeed after refill")
	}
}

func TestRateLimiter_Wait(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: 600,
		BurstSize:         1,
	})
	limiter.TryAcquire() // Drain the bucket

	start := time.Now()
	if err := limiter.Wait(context.Background()); err != nil {
		t.Errorf("Wait failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("Wait returned too quickly: %v", elapsed)
	}
}

func TestRateLimiter_WaitCancelled(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: 1,
		BurstSize:         1,
	})
	limiter.TryAcquire()

	// Next token is a minute away, so the deadline hits first
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := limiter.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}
}

func TestRateLimiter_Available(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: 60,
		BurstSize:         5,
	})

	if available := limiter.Available(); available != 5 {
		t.Errorf("Expected 5 available, got %f", available)
	}

	limiter.TryAcquire()
	limiter.TryAcquire()

	if available := limiter.Available(); available < 2.9 || available > 3.1 {
		t.Errorf("Expected ~3 available, got %f", available)
	}
}

func TestRateLimiter_Concurrent(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: 60,
		BurstSize:         10,
	})

	// 20 goroutines race for 10 tokens
	var wg sync.WaitGroup
	var acquired atomic.Int64
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.TryAcquire() {
				acquired.Add(1)
			}
		}()
	}
	wg.Wait()

	if n := acquired.Load(); n != 10 {
		t.Errorf("Expected 10 acquired, got %d", n)
	}
}

func TestRateLimitedTranslator(t *testing.T) {
	var calls atomic.Int64
	inner := translatorFunc(func(ctx context.Context, text, from, to string) (*TranslationResult, error) {
		calls.Add(1)
		return &TranslationResult{Text: text, TranslatedText: text, From: from, To: to}, nil
	})

	tr := NewRateLimitedTranslator(inner, RateLimitConfig{
		RequestsPerMinute: 600,
		BurstSize:         2,
	})
	ctx := context.Background()

	// First two requests use the burst
	for _, text := range []string{"a", "b"} {
		if _, err := tr.Translate(ctx, text, "en", "de"); err != nil {
			t.Errorf("Translate(%q) failed: %v", text, err)
		}
	}

	// Third request should wait for a refill
	start := time.Now()
	if _, err := tr.Translate(ctx, "c", "en", "de"); err != nil {
		t.Errorf("Third translate failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("Expected rate limit wait, but returned in %v", elapsed)
	}
	if calls.Load() != 3 {
		t.Errorf("Expected 3 calls, got %d", calls.Load())
	}
}

func TestRateLimitedTranslator_Cancelled(t *testing.T) {
	inner := translatorFunc(func(ctx context.Context, text, from, to string) (*TranslationResult, error) {
		t.Error("inner translator should not be called")
		return nil, nil
	})

	tr := NewRateLimitedTranslator(inner, RateLimitConfig{RequestsPerMinute: 1, BurstSize: 1})
	tr.Limiter().TryAcquire() // Drain the bucket

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tr.Translate(ctx, "a", "en", "de")
	var terr *TranslationError
	if !errors.As(err, &terr) || !errors.Is(err, context.Canceled) {
		t.Errorf("Expected TranslationError wrapping context.Canceled, got %v", err)
	}
}

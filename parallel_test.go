package bingo

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// slowTranslator simulates a slow engine and tracks concurrency
type slowTranslator struct {
	delay    time.Duration
	calls    atomic.Int64
	inFlight atomic.Int64
	peak     atomic.Int64
	failOn   string
}

func (s *slowTranslator) Translate(ctx context.Context, text, from, to string) (*TranslationResult, error) {
	s.calls.Add(1)
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}

	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if text == s.failOn {
		return nil, &UpstreamError{Message: "boom", StatusCode: 500}
	}
	return &TranslationResult{
		Text:           text,
		TranslatedText: strings.ToUpper(text) + "@" + to,
		From:           from,
		To:             to,
	}, nil
}

func TestTranslateMany_Order(t *testing.T) {
	tr := &slowTranslator{delay: 5 * time.Millisecond}
	jobs := []Job{
		{Text: "one", From: "en", To: "de"},
		{Text: "two", From: "en", To: "de"},
		{Text: "three", From: "en", To: "fr"},
	}

	results, err := TranslateMany(context.Background(), tr, jobs, 2)
	if err != nil {
		t.Fatalf("TranslateMany failed: %v", err)
	}

	want := []string{"ONE@de", "TWO@de", "THREE@fr"}
	for i, w := range want {
		if results[i].TranslatedText != w {
			t.Errorf("result %d = %q, want %q", i, results[i].TranslatedText, w)
		}
	}
}

func TestTranslateMany_Deduplication(t *testing.T) {
	tr := &slowTranslator{}
	job := Job{Text: "Hello", From: "en", To: "de"}

	results, err := TranslateMany(context.Background(), tr, []Job{job, job, job}, 0)
	if err != nil {
		t.Fatalf("TranslateMany failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	if tr.calls.Load() != 1 {
		t.Errorf("Expected 1 call for duplicate jobs, got %d", tr.calls.Load())
	}
	if results[0] != results[2] {
		t.Error("duplicate jobs should share a result")
	}
}

func TestTranslateMany_Limit(t *testing.T) {
	tr := &slowTranslator{delay: 20 * time.Millisecond}

	jobs := make([]Job, 12)
	for i := range jobs {
		jobs[i] = Job{Text: string(rune('a' + i)), From: "en", To: "de"}
	}

	if _, err := TranslateMany(context.Background(), tr, jobs, 3); err != nil {
		t.Fatalf("TranslateMany failed: %v", err)
	}
	if peak := tr.peak.Load(); peak > 3 {
		t.Errorf("Expected at most 3 concurrent calls, got %d", peak)
	}
	if tr.calls.Load() != 12 {
		t.Errorf("Expected 12 calls, got %d", tr.calls.Load())
	}
}

func TestTranslateMany_Error(t *testing.T) {
	tr := &slowTranslator{failOn: "bad"}
	jobs := []Job{
		{Text: "good", From: "en", To: "de"},
		{Text: "bad", From: "en", To: "de"},
	}

	_, err := TranslateMany(context.Background(), tr, jobs, 1)
	var uerr *UpstreamError
	if !errors.As(err, &uerr) {
		t.Fatalf("Expected UpstreamError, got %v", err)
	}
}

func TestTranslateTargets(t *testing.T) {
	p := newMockProvider()
	r := newTestRegistry(t, p, t.TempDir())

	results, err := TranslateTargets(context.Background(), r, "Hello", "en", []string{"de", "fr", "es"}, 2)
	if err != nil {
		t.Fatalf("TranslateTargets failed: %v", err)
	}

	for i, to := range []string{"de", "fr", "es"} {
		if results[i].To != to {
			t.Errorf("result %d target = %q, want %q", i, results[i].To, to)
		}
	}
	if r.Len() != 3 {
		t.Errorf("Expected 3 sessions, got %d", r.Len())
	}
	// one session fetch per pair
	if p.fetches() != 3 {
		t.Errorf("Expected 3 fetches, got %d", p.fetches())
	}
}

func TestTranslateTargets_SharedSession(t *testing.T) {
	p := newMockProvider()
	r := newTestRegistry(t, p, t.TempDir())

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := TranslateTargets(context.Background(), r, "Hello", AutoDetect, []string{"de"}, 1); err != nil {
				t.Errorf("TranslateTargets failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if r.Len() != 1 {
		t.Errorf("Expected 1 session, got %d", r.Len())
	}
	if got := len(p.calls()); got != 4 {
		t.Errorf("Expected 4 translate calls, got %d", got)
	}
}

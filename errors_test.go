package bingo

import (
	"errors"
	"testing"

	"github.com/ZaguanLabs/bingo/cache"
)

func TestTranslationError(t *testing.T) {
	cause := errors.New("underlying error")
	err := &TranslationError{Message: "translation failed", Cause: cause}

	if err.Error() != "translation failed: underlying error" {
		t.Errorf("unexpected error message: %s", err.Error())
	}

	if err.Unwrap() != cause {
		t.Error("Unwrap() should return the cause")
	}

	// Without cause
	err2 := &TranslationError{Message: "simple error"}
	if err2.Error() != "simple error" {
		t.Errorf("unexpected error message: %s", err2.Error())
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Field: "to", Value: "xx", Message: "unsupported language"}

	if err.Error() != `invalid to language "xx": unsupported language` {
		t.Errorf("unexpected error message: %s", err.Error())
	}
}

func TestUpstreamError(t *testing.T) {
	err := &UpstreamError{Message: "translate request failed", StatusCode: 429, Retryable: true}

	if err.Error() != "upstream error: translate request failed (status 429)" {
		t.Errorf("unexpected error message: %s", err.Error())
	}

	cause := errors.New("connection reset")
	err2 := &UpstreamError{Message: "fetching translator page", Cause: cause}
	if err2.Error() != "upstream error: fetching translator page: connection reset" {
		t.Errorf("unexpected error message: %s", err2.Error())
	}
	if !errors.Is(err2, cause) {
		t.Error("UpstreamError should unwrap to its cause")
	}
}

func TestCacheError(t *testing.T) {
	err := &CacheError{Message: "storing session", Cause: cache.ErrClosed}

	if err.Error() != "cache error: storing session: cache is closed" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
	if !errors.Is(err, cache.ErrClosed) {
		t.Error("CacheError should unwrap to cache.ErrClosed")
	}
}

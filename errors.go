package bingo

import "fmt"

// TranslationError is the base error type for translation failures.
type TranslationError struct {
	Message string
	Cause   error
}

func (e *TranslationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *TranslationError) Unwrap() error {
	return e.Cause
}

// ValidationError reports an unsupported or inconsistent language pair.
// It is returned before any cache or network activity.
type ValidationError struct {
	Field   string // "from" or "to"
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s language %q: %s", e.Field, e.Value, e.Message)
}

// UpstreamError indicates a provider failure: a network error, a non-200
// response, or a page or payload missing an expected field.
type UpstreamError struct {
	Message    string
	StatusCode int // HTTP or provider status code, 0 if none
	Cause      error
	Retryable  bool // Whether the operation can be retried
	// SessionExpired is set when the provider rejected the session tokens.
	SessionExpired bool
}

func (e *UpstreamError) Error() string {
	msg := "upstream error: " + e.Message
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// CacheError indicates a session cache failure.
type CacheError struct {
	Message string
	Cause   error
}

func (e *CacheError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cache error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("cache error: %s", e.Message)
}

func (e *CacheError) Unwrap() error {
	return e.Cause
}

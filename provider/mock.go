package provider

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ZaguanLabs/bingo"
)

// MockClient is a scripted session provider for testing.
type MockClient struct {
	mu sync.Mutex

	Translations map[string]string  // Map of source text to translation
	Session      *bingo.SessionData // Session returned by FetchSession
	FetchErr     error              // Returned by FetchSession when set
	TranslateErr error              // Returned once by Translate when set

	FetchCount  int                     // Number of FetchSession calls
	CallCount   int                     // Number of Translate calls
	LastRequest *bingo.TranslateRequest // Last request received
}

// NewMockClient creates a mock client with default translations.
func NewMockClient() *MockClient {
	return &MockClient{
		Translations: map[string]string{
			"Hello":       "Hola",
			"World":       "Mundo",
			"Hello World": "Hola Mundo",
		},
		Session: &bingo.SessionData{
			IG:     "MOCKIG",
			IID:    "translator.5023",
			Key:    "1700000000000",
			Token:  "mock-token",
			Cookie: "MUID=mock",
			Expiry: time.Hour,
		},
	}
}

// FetchSession returns the scripted session.
func (m *MockClient) FetchSession(ctx context.Context) (*bingo.SessionData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.FetchCount++
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	data := *m.Session
	return &data, nil
}

// Translate returns mock translations. Unknown texts come back bracketed.
func (m *MockClient) Translate(ctx context.Context, req bingo.TranslateRequest) (*bingo.TranslationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CallCount++
	m.LastRequest = &req

	if err := m.TranslateErr; err != nil {
		m.TranslateErr = nil
		return nil, err
	}

	translated, ok := m.Translations[req.Text]
	if !ok {
		translated = fmt.Sprintf("[%s]", req.Text)
	}

	result := &bingo.TranslationResult{
		Text:           req.Text,
		TranslatedText: translated,
		From:           req.From,
		To:             req.To,
	}
	if req.From == bingo.AutoDetect {
		result.DetectedLang = "en"
		result.Score = 1
	}
	return result, nil
}

// Reset clears the counters and the last request.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FetchCount = 0
	m.CallCount = 0
	m.LastRequest = nil
}

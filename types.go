// Package bingo translates text through the Bing web translator, keeping
// its short-lived session tokens in a persistent cache.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ZaguanLabs/bingo"
//	    "github.com/ZaguanLabs/bingo/provider"
//	)
//
//	func main() {
//	    reg := bingo.NewRegistry(provider.NewBingClient(provider.BingConfig{}))
//	    defer reg.Close()
//
//	    result, err := reg.Translate(context.Background(), "Hello World", bingo.AutoDetect, "es")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(result.TranslatedText) // Hola Mundo
//	}
package bingo

import (
	"context"
	"time"
)

// AutoDetect lets the provider detect the source language.
const AutoDetect = "auto-detect"

// Translator is implemented by anything that can translate a single text.
type Translator interface {
	Translate(ctx context.Context, text, from, to string) (*TranslationResult, error)
}

// TranslationResult is the outcome of a translation.
type TranslationResult struct {
	Text           string  `json:"text"`            // Original text
	TranslatedText string  `json:"translated_text"` // Translation
	From           string  `json:"from"`            // Requested source language
	To             string  `json:"to"`              // Target language
	DetectedLang   string  `json:"detected_lang,omitempty"`
	Score          float64 `json:"score,omitempty"` // Detection confidence (0-1)
	Transliterated string  `json:"transliterated,omitempty"`
}

// SessionData holds the credentials needed to call the translate endpoint.
type SessionData struct {
	IG     string
	IID    string
	Key    string
	Token  string
	Cookie string
	// Expiry is how long the provider declares the session valid.
	Expiry time.Duration
}

// TranslateRequest is a single call to the translate endpoint.
type TranslateRequest struct {
	Text    string
	From    string
	To      string
	Session SessionData
	// Counter is the per-session request number embedded in the URL.
	Counter int64
}

// SessionProvider fetches sessions and performs translate calls.
// provider.BingClient is the production implementation.
type SessionProvider interface {
	FetchSession(ctx context.Context) (*SessionData, error)
	Translate(ctx context.Context, req TranslateRequest) (*TranslationResult, error)
}

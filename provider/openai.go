package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/ZaguanLabs/bingo"
)

// OpenAITranslator translates single texts with an OpenAI chat model.
// It needs no session and is offered as an alternative engine.
type OpenAITranslator struct {
	client      *openai.Client
	model       string
	temperature float32
}

// OpenAIConfig holds configuration for the OpenAI engine.
type OpenAIConfig struct {
	APIKey      string       // OpenAI API key
	Model       string       // Model to use (default: "gpt-4o-mini")
	Temperature float32      // Temperature for generation (default: 0.2)
	BaseURL     string       // Custom base URL (optional)
	HTTPClient  *http.Client // Custom HTTP client (optional)
}

// NewOpenAITranslator creates an OpenAI-backed translator.
func NewOpenAITranslator(cfg OpenAIConfig) *OpenAITranslator {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPClient != nil {
		config.HTTPClient = cfg.HTTPClient
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.2
	}

	return &OpenAITranslator{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
	}
}

// openAIReply is the JSON object the model is asked to return.
type openAIReply struct {
	Translation      string `json:"translation"`
	DetectedLanguage string `json:"detected_language"`
}

// Translate implements bingo.Translator.
func (t *OpenAITranslator) Translate(ctx context.Context, text, from, to string) (*bingo.TranslationResult, error) {
	if err := bingo.ValidatePair(from, to); err != nil {
		return nil, err
	}

	userMessage, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	resp, err := t.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: t.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: buildSystemPrompt(from, to)},
			{Role: openai.ChatMessageRoleUser, Content: string(userMessage)},
		},
		Temperature: t.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, &bingo.UpstreamError{
			Message:    "OpenAI API call failed",
			StatusCode: openAIStatus(err),
			Cause:      err,
			Retryable:  isRetryableOpenAIError(err),
		}
	}
	if len(resp.Choices) == 0 {
		return nil, &bingo.UpstreamError{Message: "no response from OpenAI", Retryable: true}
	}

	reply, err := parseReply(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	result := &bingo.TranslationResult{
		Text:           text,
		TranslatedText: reply.Translation,
		From:           from,
		To:             to,
	}
	if from == bingo.AutoDetect {
		result.DetectedLang = reply.DetectedLanguage
	}
	return result, nil
}

func buildSystemPrompt(from, to string) string {
	target := bingo.GetLanguageName(to)

	var b strings.Builder
	b.WriteString("You are a professional translator.\n")
	if from == bingo.AutoDetect {
		b.WriteString("Detect the language of the input text, then translate it")
	} else {
		fmt.Fprintf(&b, "Translate the input text from %s", bingo.GetLanguageName(from))
	}
	fmt.Fprintf(&b, " into %s (%s).\n", target, to)
	b.WriteString("Keep whitespace, punctuation, placeholders and URLs intact. Do not add explanations.\n")
	b.WriteString(`Reply with a JSON object: {"translation": "...", "detected_language": "<language code>"}`)
	return b.String()
}

func parseReply(content string) (*openAIReply, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var reply openAIReply
	if err := json.Unmarshal([]byte(content), &reply); err != nil {
		return nil, &bingo.UpstreamError{Message: "invalid response format from OpenAI", Cause: err}
	}
	if reply.Translation == "" {
		return nil, &bingo.UpstreamError{Message: "OpenAI response has no translation"}
	}
	return &reply, nil
}

func openAIStatus(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

func isRetryableOpenAIError(err error) bool {
	if code := openAIStatus(err); code != 0 {
		return retryableStatus(code)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return retryableNetErr(err)
}

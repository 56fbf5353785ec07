package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ZaguanLabs/bingo"
)

// LanguagesURL lists the languages supported by Microsoft Translator.
const LanguagesURL = "https://api.cognitive.microsofttranslator.com/languages?api-version=3.0"

// FetchSupportedLanguages downloads the translation language list and
// returns it as code -> English name. client and url may be nil and empty.
func FetchSupportedLanguages(ctx context.Context, client *http.Client, url string) (map[string]string, error) {
	if client == nil {
		client = http.DefaultClient
	}
	if url == "" {
		url = LanguagesURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building languages request: %w", err)
	}
	req.Header.Set("User-Agent", bingo.UserAgent())
	req.Header.Set("Accept-Language", "en")

	resp, err := client.Do(req)
	if err != nil {
		return nil, &bingo.UpstreamError{Message: "fetching languages", Cause: err, Retryable: retryableNetErr(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &bingo.UpstreamError{
			Message:    "fetching languages",
			StatusCode: resp.StatusCode,
			Retryable:  retryableStatus(resp.StatusCode),
		}
	}

	var payload struct {
		Translation map[string]struct {
			Name       string `json:"name"`
			NativeName string `json:"nativeName"`
			Dir        string `json:"dir"`
		} `json:"translation"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return nil, &bingo.UpstreamError{Message: "malformed languages response", Cause: err}
	}
	if len(payload.Translation) == 0 {
		return nil, &bingo.UpstreamError{Message: "languages response has no translation section"}
	}

	langs := make(map[string]string, len(payload.Translation))
	for code, lang := range payload.Translation {
		langs[code] = lang.Name
	}
	return langs, nil
}

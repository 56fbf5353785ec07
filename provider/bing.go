package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/ZaguanLabs/bingo"
	"github.com/ZaguanLabs/bingo/logging"
	"github.com/ZaguanLabs/bingo/scrape"
)

const (
	// DefaultBaseURL is the Bing web translator host.
	DefaultBaseURL = "https://www.bing.com"

	// DefaultSessionExpiry is used when the page declares no token lifetime.
	DefaultSessionExpiry = time.Hour

	// statusSessionExpired is the body status Bing returns for stale tokens.
	statusSessionExpired = 205

	maxResponseBytes = 4 << 20
)

// BingConfig holds configuration for the Bing client.
type BingConfig struct {
	BaseURL    string          // Translator host (default: DefaultBaseURL)
	UserAgent  string          // User-Agent header (default: DefaultUserAgent)
	Timeout    time.Duration   // Per-request timeout (default: 15s)
	HTTPClient *http.Client    // Custom HTTP client (optional)
	Logger     *logging.Logger // Diagnostic logger (optional)
}

// BingClient fetches translator sessions and performs translate calls.
type BingClient struct {
	baseURL   string
	userAgent string
	http      *http.Client
	log       *logging.Logger
}

// NewBingClient creates a Bing client.
func NewBingClient(cfg BingConfig) *BingClient {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	log := cfg.Logger
	if log == nil {
		log = logging.New("provider:bing", nil)
	}

	return &BingClient{
		baseURL:   baseURL,
		userAgent: userAgent,
		http:      client,
		log:       log,
	}
}

// FetchSession loads the translator page and extracts a new session.
// Cookies set along the way, redirects included, become the session cookie.
func (c *BingClient) FetchSession(ctx context.Context) (*bingo.SessionData, error) {
	pageURL := c.baseURL + "/translator"

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	hc := *c.http
	hc.Jar = jar

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building session request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	c.log.Log("fetching translator page", "url", pageURL)

	resp, err := hc.Do(req)
	if err != nil {
		return nil, &bingo.UpstreamError{
			Message:   "fetching translator page",
			Cause:     err,
			Retryable: retryableNetErr(err),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &bingo.UpstreamError{
			Message:    "fetching translator page",
			StatusCode: resp.StatusCode,
			Retryable:  retryableStatus(resp.StatusCode),
		}
	}

	tokens, err := scrape.ParsePage(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &bingo.UpstreamError{Message: "reading translator page", Cause: err}
	}

	u, _ := url.Parse(pageURL)
	if resp.Request != nil && resp.Request.URL != nil {
		u = resp.Request.URL
	}

	expiry := time.Duration(tokens.ExpiryMs) * time.Millisecond
	if expiry <= 0 {
		expiry = DefaultSessionExpiry
	}

	data := &bingo.SessionData{
		IG:     tokens.IG,
		IID:    tokens.IID,
		Key:    tokens.Key,
		Token:  tokens.Token,
		Cookie: cookieHeader(jar.Cookies(u)),
		Expiry: expiry,
	}
	c.log.Log("session fetched", "ig", data.IG, "iid", data.IID, "expiry", expiry)
	return data, nil
}

// cookieHeader formats cookies as a Cookie header value.
func cookieHeader(cookies []*http.Cookie) string {
	parts := make([]string, 0, len(cookies))
	for _, ck := range cookies {
		parts = append(parts, ck.Name+"="+ck.Value)
	}
	return strings.Join(parts, "; ")
}

// translateURL builds the ttranslatev3 URL for a request.
func (c *BingClient) translateURL(req bingo.TranslateRequest) string {
	q := url.Values{}
	q.Set("isVertical", "1")
	q.Set("IG", req.Session.IG)
	q.Set("IID", req.Session.IID+"."+strconv.FormatInt(req.Counter, 10))
	return c.baseURL + "/ttranslatev3?" + q.Encode()
}

// ttranslateResult is one element of the ttranslatev3 response array.
type ttranslateResult struct {
	DetectedLanguage *struct {
		Language string  `json:"language"`
		Score    float64 `json:"score"`
	} `json:"detectedLanguage"`
	Translations []struct {
		Text            string `json:"text"`
		To              string `json:"to"`
		Transliteration *struct {
			Text string `json:"text"`
		} `json:"transliteration"`
	} `json:"translations"`
}

// ttranslateStatus is the object Bing returns instead of results on failure.
type ttranslateStatus struct {
	StatusCode   int    `json:"statusCode"`
	ErrorMessage string `json:"errorMessage"`
}

// Translate performs one translate call with the given session.
func (c *BingClient) Translate(ctx context.Context, req bingo.TranslateRequest) (*bingo.TranslationResult, error) {
	form := url.Values{}
	form.Set("fromLang", req.From)
	form.Set("to", req.To)
	form.Set("text", req.Text)
	form.Set("token", req.Session.Token)
	form.Set("key", req.Session.Key)

	endpoint := c.translateURL(req)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("building translate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("Referer", c.baseURL+"/translator")
	if req.Session.Cookie != "" {
		httpReq.Header.Set("Cookie", req.Session.Cookie)
	}

	c.log.Log("translate request", "from", req.From, "to", req.To, "counter", req.Counter)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &bingo.UpstreamError{
			Message:   "calling translate endpoint",
			Cause:     err,
			Retryable: retryableNetErr(err),
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &bingo.UpstreamError{Message: "reading translate response", Cause: err, Retryable: true}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &bingo.UpstreamError{
			Message:    "translate endpoint returned an error",
			StatusCode: resp.StatusCode,
			Retryable:  retryableStatus(resp.StatusCode),
		}
	}

	return parseTranslateResponse(body, req)
}

// parseTranslateResponse decodes a ttranslatev3 body.
func parseTranslateResponse(body []byte, req bingo.TranslateRequest) (*bingo.TranslationResult, error) {
	trimmed := bytes.TrimSpace(body)

	if len(trimmed) > 0 && trimmed[0] == '{' {
		var status ttranslateStatus
		if err := json.Unmarshal(trimmed, &status); err != nil {
			return nil, &bingo.UpstreamError{Message: "malformed translate response", Cause: err}
		}
		msg := "translate endpoint rejected the request"
		if status.ErrorMessage != "" {
			msg += ": " + status.ErrorMessage
		}
		return nil, &bingo.UpstreamError{
			Message:        msg,
			StatusCode:     status.StatusCode,
			Retryable:      retryableStatus(status.StatusCode),
			SessionExpired: status.StatusCode == statusSessionExpired,
		}
	}

	var results []ttranslateResult
	if err := json.Unmarshal(trimmed, &results); err != nil {
		return nil, &bingo.UpstreamError{Message: "malformed translate response", Cause: err}
	}
	if len(results) == 0 || len(results[0].Translations) == 0 {
		return nil, &bingo.UpstreamError{Message: "translate response has no translations"}
	}

	first := results[0]
	tr := first.Translations[0]

	result := &bingo.TranslationResult{
		Text:           req.Text,
		TranslatedText: tr.Text,
		From:           req.From,
		To:             req.To,
	}
	if tr.To != "" {
		result.To = tr.To
	}
	if first.DetectedLanguage != nil {
		result.DetectedLang = first.DetectedLanguage.Language
		result.Score = first.DetectedLanguage.Score
	}
	if tr.Transliteration != nil {
		result.Transliterated = tr.Transliteration.Text
	}
	return result, nil
}

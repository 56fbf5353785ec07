// Package provider implements the translation backends: the Bing web
// translator client, an OpenAI-backed engine and a scripted client for
// tests.
package provider

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/ZaguanLabs/bingo"
)

// DefaultUserAgent is sent to Bing, which serves a reduced page to
// unknown clients.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// retryableStatus reports whether an HTTP status is worth retrying.
func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// retryableNetErr reports whether a transport error is transient.
func retryableNetErr(err error) bool {
	var nerr net.Error
	if errors.As(err, &nerr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{"connection refused", "connection reset", "eof", "timeout"} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// Verify implementations
var (
	_ bingo.SessionProvider = (*BingClient)(nil)
	_ bingo.SessionProvider = (*MockClient)(nil)
	_ bingo.Translator      = (*OpenAITranslator)(nil)
)

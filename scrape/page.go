// Package scrape extracts Bing translator session tokens from the
// translator web page.
package scrape

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Tokens are the session values embedded in the translator page.
type Tokens struct {
	IG    string // page instance id, sent as the IG query parameter
	IID   string // element id, sent as the IID query parameter
	Key   string // abuse-prevention key (a millisecond timestamp)
	Token string // abuse-prevention token
	// ExpiryMs is how long Key and Token stay valid, in milliseconds.
	ExpiryMs int64
}

// MissingFieldError reports a value that could not be found in the page.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("translator page: %s not found", e.Field)
}

var (
	igPattern     = regexp.MustCompile(`IG:"([^"]+)"`)
	iidPattern    = regexp.MustCompile(`data-iid="([^"]+)"`)
	helperPattern = regexp.MustCompile(`params_AbusePreventionHelper\s*=\s*(\[[^\]]*\])`)
)

// ParsePage reads a translator page and extracts its session tokens.
func ParsePage(r io.Reader) (*Tokens, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading translator page: %w", err)
	}

	root, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing translator page: %w", err)
	}
	doc := goquery.NewDocumentFromNode(root)

	scripts := scriptText(root)
	// Fall back to the raw document for values emitted outside <script>.
	sources := []string{scripts, string(raw)}

	tokens := &Tokens{}

	tokens.IID = strings.TrimSpace(doc.Find("[data-iid]").First().AttrOr("data-iid", ""))
	if tokens.IID == "" {
		tokens.IID = firstMatch(iidPattern, sources)
	}
	if tokens.IID == "" {
		return nil, &MissingFieldError{Field: "IID"}
	}

	tokens.IG = firstMatch(igPattern, sources)
	if tokens.IG == "" {
		return nil, &MissingFieldError{Field: "IG"}
	}

	helper := firstMatch(helperPattern, sources)
	if helper == "" {
		return nil, &MissingFieldError{Field: "params_AbusePreventionHelper"}
	}
	if err := parseHelper(helper, tokens); err != nil {
		return nil, err
	}

	return tokens, nil
}

// parseHelper decodes `[key, "token", expiryMs]`.
func parseHelper(src string, tokens *Tokens) error {
	dec := json.NewDecoder(strings.NewReader(src))
	dec.UseNumber()

	var values []any
	if err := dec.Decode(&values); err != nil {
		return fmt.Errorf("translator page: malformed params_AbusePreventionHelper: %w", err)
	}
	if len(values) < 3 {
		return &MissingFieldError{Field: "params_AbusePreventionHelper expiry"}
	}

	tokens.Key = fmt.Sprint(values[0])
	token, ok := values[1].(string)
	if !ok || token == "" {
		return &MissingFieldError{Field: "token"}
	}
	tokens.Token = token

	expiry, ok := values[2].(json.Number)
	if !ok {
		return &MissingFieldError{Field: "params_AbusePreventionHelper expiry"}
	}
	ms, err := expiry.Int64()
	if err != nil {
		return fmt.Errorf("translator page: invalid token expiry %q: %w", expiry, err)
	}
	tokens.ExpiryMs = ms

	if tokens.Key == "" {
		return &MissingFieldError{Field: "key"}
	}
	return nil
}

// scriptText concatenates the text of every <script> element.
func scriptText(root *html.Node) string {
	var b strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && strings.EqualFold(n.Data, "script") {
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode {
					b.WriteString(c.Data)
					b.WriteByte('\n')
				}
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return b.String()
}

func firstMatch(re *regexp.Regexp, sources []string) string {
	for _, src := range sources {
		if m := re.FindStringSubmatch(src); len(m) > 1 {
			return m[1]
		}
	}
	return ""
}

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZaguanLabs/bingo"
	"github.com/ZaguanLabs/bingo/config"
	"github.com/ZaguanLabs/bingo/provider"
)

// testEnv runs commands against a temp cache dir and a mock provider.
type testEnv struct {
	t        *testing.T
	dir      string
	config   string
	provider *provider.MockClient
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("BINGO_DEBUG", "")
	return &testEnv{
		t:        t,
		dir:      t.TempDir(),
		config:   filepath.Join(t.TempDir(), "missing.yaml"),
		provider: provider.NewMockClient(),
	}
}

func (e *testEnv) run(stdin string, args ...string) (string, string, error) {
	e.t.Helper()
	var stdout, stderr bytes.Buffer

	a := newApp(strings.NewReader(stdin), &stdout, &stderr)
	a.newSessionProvider = func(*config.Config) bingo.SessionProvider { return e.provider }

	full := append([]string{"--config", e.config, "--cache-dir", e.dir}, args...)
	err := a.execute(full)
	return stdout.String(), stderr.String(), err
}

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if err := run([]string{"version"}, strings.NewReader(""), &stdout, &stderr); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout.String(), "bingo "+bingo.Version) {
		t.Errorf("expected version output, got: %s", stdout.String())
	}
}

func TestTranslate(t *testing.T) {
	env := newTestEnv(t)

	out, _, err := env.run("", "translate", "--to", "es", "Hello")
	if err != nil {
		t.Fatalf("translate failed: %v", err)
	}
	if out != "Hola\n" {
		t.Errorf("expected 'Hola', got %q", out)
	}
	if env.provider.LastRequest.From != bingo.AutoDetect {
		t.Errorf("expected auto-detect source, got %q", env.provider.LastRequest.From)
	}

	if _, err := os.Stat(filepath.Join(env.dir, "auto-detect-es.json")); err != nil {
		t.Errorf("session cache not written: %v", err)
	}
}

func TestTranslate_ReusesSessionAcrossRuns(t *testing.T) {
	env := newTestEnv(t)

	for i := 0; i < 2; i++ {
		if _, _, err := env.run("", "translate", "--from", "en", "--to", "es", "Hello"); err != nil {
			t.Fatalf("run %d failed: %v", i, err)
		}
	}

	if env.provider.FetchCount != 1 {
		t.Errorf("expected one session fetch across runs, got %d", env.provider.FetchCount)
	}
	if env.provider.LastRequest.Counter != 2 {
		t.Errorf("expected counter 2 on the second run, got %d", env.provider.LastRequest.Counter)
	}
}

func TestTranslate_MultipleTargetsJSON(t *testing.T) {
	env := newTestEnv(t)

	out, _, err := env.run("", "translate", "--from", "en", "--to", "de,fr", "--to", "es", "--json", "Hello", "World")
	if err != nil {
		t.Fatalf("translate failed: %v", err)
	}

	var results []bingo.TranslationResult
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, out)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, to := range []string{"de", "fr", "es"} {
		if results[i].To != to || results[i].TranslatedText != "Hola Mundo" {
			t.Errorf("result %d = %+v", i, results[i])
		}
	}
}

func TestTranslate_Stdin(t *testing.T) {
	env := newTestEnv(t)

	out, _, err := env.run("World\n", "translate", "--to", "es")
	if err != nil {
		t.Fatalf("translate failed: %v", err)
	}
	if out != "Mundo\n" {
		t.Errorf("expected 'Mundo', got %q", out)
	}
}

func TestTranslate_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing target", []string{"translate", "Hello"}, `"to" not set`},
		{"no text", []string{"translate", "--to", "de"}, "no text to translate"},
		{"unknown engine", []string{"translate", "--to", "de", "--engine", "deepl", "Hi"}, "unknown engine"},
		{"openai without key", []string{"translate", "--to", "de", "--engine", "openai", "Hi"}, "API key required"},
		{"unknown backend", []string{"--backend", "s3", "translate", "--to", "de", "Hi"}, "unknown cache backend"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			_, _, err := env.run("", tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestTranslate_InvalidLanguage(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.run("", "translate", "--from", "de", "--to", "de", "Hallo")
	var verr *bingo.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if env.provider.FetchCount != 0 {
		t.Error("invalid pair should not reach the provider")
	}
}

func TestTranslate_MemoryBackend(t *testing.T) {
	env := newTestEnv(t)

	if _, _, err := env.run("", "--backend", "memory", "translate", "--to", "es", "Hello"); err != nil {
		t.Fatalf("translate failed: %v", err)
	}
	entries, _ := os.ReadDir(env.dir)
	if len(entries) != 0 {
		t.Errorf("memory backend should not write files, found %d", len(entries))
	}
}

func TestLanguages(t *testing.T) {
	env := newTestEnv(t)

	out, _, err := env.run("", "languages")
	if err != nil {
		t.Fatalf("languages failed: %v", err)
	}
	if !strings.Contains(out, "de") || !strings.Contains(out, "German") {
		t.Errorf("expected German in output")
	}
	if !strings.Contains(out, "Arabic (rtl)") {
		t.Errorf("expected rtl marker for Arabic")
	}
}

func TestLanguages_Remote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"translation":{"de":{"name":"German"},"xx-New":{"name":"Newish"}}}`)
	}))
	defer srv.Close()

	env := newTestEnv(t)
	out, _, err := env.run("", "languages", "--remote", "--url", srv.URL)
	if err != nil {
		t.Fatalf("languages failed: %v", err)
	}
	if !strings.Contains(out, "* xx-New") {
		t.Errorf("expected unknown code to be marked, got:\n%s", out)
	}
	if strings.Contains(out, "English") {
		t.Errorf("remote list should replace the built-in one, got:\n%s", out)
	}
}

func TestCacheCommands(t *testing.T) {
	env := newTestEnv(t)

	if _, _, err := env.run("", "translate", "--from", "en", "--to", "de", "Hello"); err != nil {
		t.Fatalf("translate failed: %v", err)
	}

	out, _, err := env.run("", "cache", "list")
	if err != nil {
		t.Fatalf("cache list failed: %v", err)
	}
	if !strings.Contains(out, "en-de") || !strings.Contains(out, "next request 2") {
		t.Errorf("unexpected list output:\n%s", out)
	}

	out, _, err = env.run("", "cache", "show", "en-de")
	if err != nil {
		t.Fatalf("cache show failed: %v", err)
	}
	if !strings.Contains(out, `"mock-token"`) {
		t.Errorf("expected token in show output:\n%s", out)
	}

	exportPath := filepath.Join(t.TempDir(), "en-de.export.json")
	if _, _, err := env.run("", "cache", "export", "en-de", "-o", exportPath); err != nil {
		t.Fatalf("cache export failed: %v", err)
	}

	out, _, err = env.run("", "cache", "clear", "en-de")
	if err != nil || !strings.Contains(out, "cleared en-de") {
		t.Fatalf("cache clear failed: %v %s", err, out)
	}
	out, _, _ = env.run("", "cache", "list")
	if !strings.Contains(out, "no session") {
		t.Errorf("expected cleared cache, got:\n%s", out)
	}

	out, _, err = env.run("", "cache", "import", "en-de", exportPath)
	if err != nil {
		t.Fatalf("cache import failed: %v", err)
	}
	if !strings.Contains(out, "imported 6 entries") {
		t.Errorf("unexpected import output: %s", out)
	}

	// The imported session is used without a new fetch
	if _, _, err := env.run("", "translate", "--from", "en", "--to", "de", "Hello"); err != nil {
		t.Fatalf("translate failed: %v", err)
	}
	if env.provider.FetchCount != 1 {
		t.Errorf("expected imported session to be reused, got %d fetches", env.provider.FetchCount)
	}
}

func TestCacheClear_All(t *testing.T) {
	env := newTestEnv(t)

	for _, to := range []string{"de", "fr"} {
		if _, _, err := env.run("", "translate", "--from", "en", "--to", to, "Hello"); err != nil {
			t.Fatalf("translate failed: %v", err)
		}
	}

	out, _, err := env.run("", "cache", "clear", "--all")
	if err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if !strings.Contains(out, "cleared en-de") || !strings.Contains(out, "cleared en-fr") {
		t.Errorf("unexpected output:\n%s", out)
	}

	if _, _, err := env.run("", "cache", "clear"); err == nil {
		t.Error("expected error without names")
	}
}

func TestCacheImport_Stdin(t *testing.T) {
	env := newTestEnv(t)

	doc := `{"version":"1.0","name":"en-de","entries":[{"key":"note","value":"kept","expire":null}]}`
	out, _, err := env.run(doc, "cache", "import", "en-de", "-")
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if !strings.Contains(out, "imported 1 entries") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestCache_InvalidName(t *testing.T) {
	env := newTestEnv(t)
	if _, _, err := env.run("", "cache", "show", "../etc"); err == nil {
		t.Error("expected error for path-like cache name")
	}
}

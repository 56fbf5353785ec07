package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ZaguanLabs/bingo"
	"github.com/ZaguanLabs/bingo/provider"
)

const (
	engineBing   = "bing"
	engineOpenAI = "openai"
)

func (a *app) newTranslateCmd() *cobra.Command {
	var (
		from        string
		targets     []string
		engine      string
		jsonOutput  bool
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "translate [text...]",
		Short: "Translate text into one or more languages",
		Long: `Translate text into one or more languages.

The text is taken from the arguments, or from stdin when none are given.

Examples:
  bingo translate --to de "Hello World"
  bingo translate --from en --to de,fr,es "Good morning"
  echo "Hello" | bingo translate --to ja --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := a.inputText(args)
			if err != nil {
				return err
			}

			tr, err := a.translator(engine)
			if err != nil {
				return err
			}

			results, err := bingo.TranslateTargets(cmd.Context(), tr, text, from, targets, concurrency)
			if err != nil {
				return err
			}

			return a.printResults(results, jsonOutput)
		},
	}

	cmd.Flags().StringVar(&from, "from", bingo.AutoDetect, "Source language code")
	cmd.Flags().StringSliceVar(&targets, "to", nil, "Target language codes (repeat or comma-separate)")
	cmd.Flags().StringVar(&engine, "engine", engineBing, "Translation engine: bing or openai")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	cmd.Flags().IntVar(&concurrency, "concurrency", bingo.DefaultConcurrency, "Maximum parallel translations")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

// inputText joins args, or reads stdin when there are none.
func (a *app) inputText(args []string) (string, error) {
	var text string
	if len(args) > 0 {
		text = strings.Join(args, " ")
	} else {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		text = strings.TrimRight(string(data), "\r\n")
	}

	if strings.TrimSpace(text) == "" {
		return "", errors.New("no text to translate")
	}
	return text, nil
}

// translator builds the engine wrapped with rate limiting and retries.
func (a *app) translator(engine string) (bingo.Translator, error) {
	var tr bingo.Translator

	switch engine {
	case engineBing:
		reg, err := a.newRegistry(a.newSessionProvider(a.cfg))
		if err != nil {
			return nil, err
		}
		tr = reg
	case engineOpenAI:
		if a.cfg.OpenAI.APIKey == "" {
			return nil, errors.New("OpenAI API key required (set OPENAI_API_KEY or openai.api_key)")
		}
		tr = provider.NewOpenAITranslator(provider.OpenAIConfig{
			APIKey:  a.cfg.OpenAI.APIKey,
			Model:   a.cfg.OpenAI.Model,
			BaseURL: a.cfg.OpenAI.BaseURL,
		})
	default:
		return nil, fmt.Errorf("unknown engine %q (want bing or openai)", engine)
	}

	if rl := a.cfg.RateLimit; rl.RequestsPerMinute > 0 {
		tr = bingo.NewRateLimitedTranslator(tr, bingo.RateLimitConfig{
			RequestsPerMinute: rl.RequestsPerMinute,
			BurstSize:         rl.Burst,
		})
	}
	if r := a.cfg.Retry; r.MaxRetries > 0 {
		tr = bingo.NewRetryableTranslator(tr, bingo.RetryConfig{
			MaxRetries: r.MaxRetries,
			BaseDelay:  r.BaseDelay,
			MaxDelay:   r.MaxDelay,
		})
	}
	return tr, nil
}

func (a *app) printResults(results []*bingo.TranslationResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		if len(results) == 1 {
			return enc.Encode(results[0])
		}
		return enc.Encode(results)
	}

	if len(results) == 1 {
		fmt.Fprintln(a.stdout, results[0].TranslatedText)
		return nil
	}
	for _, r := range results {
		fmt.Fprintf(a.stdout, "%s\t%s\n", r.To, r.TranslatedText)
	}
	return nil
}

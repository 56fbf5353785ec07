package main

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ZaguanLabs/bingo"
	"github.com/ZaguanLabs/bingo/provider"
)

func (a *app) newLanguagesCmd() *cobra.Command {
	var (
		remote     bool
		remoteURL  string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "languages",
		Short: "List supported languages",
		Long: `List the language codes accepted by --from and --to.

With --remote the list is downloaded from Microsoft Translator instead of
using the built-in table; codes missing from the built-in table are marked
with '*'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			langs := bingo.LanguageNames
			if remote {
				fetched, err := provider.FetchSupportedLanguages(cmd.Context(), nil, remoteURL)
				if err != nil {
					return err
				}
				langs = fetched
			}

			if jsonOutput {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(langs)
			}

			codes := make([]string, 0, len(langs))
			for code := range langs {
				codes = append(codes, code)
			}
			sort.Strings(codes)

			for _, code := range codes {
				marker := " "
				if !bingo.IsLanguageSupported(code) {
					marker = "*"
				}
				dir := ""
				if bingo.IsRTL(code) {
					dir = " (rtl)"
				}
				fmt.Fprintf(a.stdout, "%s %-10s %s%s\n", marker, code, langs[code], dir)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "Download the current list from Microsoft Translator")
	cmd.Flags().StringVar(&remoteURL, "url", provider.LanguagesURL, "Languages endpoint used with --remote")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as a JSON object")
	_ = cmd.Flags().MarkHidden("url")

	return cmd
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/yusuf-polat/AI-Translate/internal/observability"
	"github.com/yusuf-polat/AI-Translate/internal/runner"
	"github.com/yusuf-polat/AI-Translate/internal/types"
)

var (
	translateLanguages []string
	translateText      string
	translateJSON      bool
)

var translateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Translate the saved listing (or a single text) without touching the console",
	Long: `Translates the saved listing into each --lang and prints the three fields. With --text, translates
that text instead. Languages are requested concurrently; the shared rate limiter still spaces the calls.`,
	RunE: runTranslate,
}

func init() {
	translateCmd.Flags().StringSliceVarP(&translateLanguages, "lang", "l", nil, "Target language (repeatable; defaults to the saved target language)")
	translateCmd.Flags().StringVar(&translateText, "text", "", "Translate this text instead of the saved listing")
	translateCmd.Flags().BoolVar(&translateJSON, "json", false, "Print results as JSON")
	rootCmd.AddCommand(translateCmd)
}

func runTranslate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	languages := translateLanguages
	if len(languages) == 0 {
		languages = []string{a.translator.current().Settings().TargetLanguage}
	}

	if strings.TrimSpace(translateText) != "" {
		texts, err := translateTexts(ctx, a.translator, translateText, languages)
		if err != nil {
			return err
		}
		if translateJSON {
			return printJSON(texts)
		}
		for _, lang := range languages {
			fmt.Printf("[%s]\n%s\n\n", lang, texts[lang])
		}
		return nil
	}

	data, err := a.store.AppData(ctx)
	if err != nil {
		return err
	}
	if data.IsEmpty() {
		return fmt.Errorf("%w (use `listing_bot settings set-app`)", runner.ErrNoAppData)
	}

	results, err := translateListing(ctx, a.aggregator, *data, languages)
	if err != nil {
		return err
	}
	if translateJSON {
		return printJSON(results)
	}
	printer := observability.NewPrinter(os.Stdout)
	for _, lang := range languages {
		printer.PrintTranslation(lang, results[lang])
	}
	return nil
}

// listingTranslator is the aggregator seen by translateListing.
type listingTranslator interface {
	TranslateAppData(ctx context.Context, data types.AppData, targetLanguage string) (types.TranslationResult, error)
}

// textTranslator is the client seen by translateTexts.
type textTranslator interface {
	TranslateText(ctx context.Context, req types.TranslationRequest) (string, error)
}

// translateListing translates data into every language concurrently. The
// first failure cancels the remaining languages.
func translateListing(ctx context.Context, t listingTranslator, data types.AppData, languages []string) (map[string]types.TranslationResult, error) {
	results := make([]types.TranslationResult, len(languages))
	g, gctx := errgroup.WithContext(ctx)
	for i, lang := range languages {
		g.Go(func() error {
			result, err := t.TranslateAppData(gctx, data, lang)
			if err != nil {
				return fmt.Errorf("%s: %w", lang, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byLanguage := make(map[string]types.TranslationResult, len(languages))
	for i, lang := range languages {
		byLanguage[lang] = results[i]
	}
	return byLanguage, nil
}

// translateTexts translates one text into every language concurrently.
func translateTexts(ctx context.Context, t textTranslator, text string, languages []string) (map[string]string, error) {
	results := make([]string, len(languages))
	g, gctx := errgroup.WithContext(ctx)
	for i, lang := range languages {
		g.Go(func() error {
			translated, err := t.TranslateText(gctx, types.TranslationRequest{SourceText: text, TargetLanguage: lang})
			if err != nil {
				return fmt.Errorf("%s: %w", lang, err)
			}
			results[i] = translated
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byLanguage := make(map[string]string, len(languages))
	for i, lang := range languages {
		byLanguage[lang] = results[i]
	}
	return byLanguage, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

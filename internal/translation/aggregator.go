package translation

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/yusuf-polat/AI-Translate/internal/ratelimit"
	"github.com/yusuf-polat/AI-Translate/internal/types"
)

// Aggregator translates a whole listing, preferring one combined request and
// falling back to one request per field.
type Aggregator struct {
	translator Translator
	clock      ratelimit.Clock
	// FieldDelay is slept between fallback requests.
	FieldDelay time.Duration
}

// NewAggregator creates an Aggregator. A nil clock uses the wall clock.
func NewAggregator(translator Translator, clock ratelimit.Clock) *Aggregator {
	if clock == nil {
		clock = ratelimit.RealClock{}
	}
	return &Aggregator{translator: translator, clock: clock}
}

// TranslateAppData translates every non-empty field of data into
// targetLanguage. Fields absent from data stay empty in the result.
func (a *Aggregator) TranslateAppData(ctx context.Context, data types.AppData, targetLanguage string) (types.TranslationResult, error) {
	if data.IsEmpty() {
		return types.TranslationResult{}, &Error{Kind: KindProvider, Message: "no listing text to translate"}
	}

	result, err := a.translateCombined(ctx, data, targetLanguage)
	if err == nil {
		return result, nil
	}
	if IsAuth(err) || ctx.Err() != nil {
		return types.TranslationResult{}, err
	}
	log.Printf("[TRANSLATE] combined request for %s failed, translating fields one by one: %v", targetLanguage, err)

	return a.translateEach(ctx, data, targetLanguage)
}

var errNothingRecovered = errors.New("no field could be recovered from the combined response")

func (a *Aggregator) translateCombined(ctx context.Context, data types.AppData, targetLanguage string) (types.TranslationResult, error) {
	raw, err := a.translator.Translate(ctx, types.TranslationRequest{
		SourceText:     CombinedText(data),
		TargetLanguage: targetLanguage,
		Purpose:        types.PurposeTranslation,
	})
	if err != nil {
		return types.TranslationResult{}, err
	}

	parsed := ParseFields(raw)
	var result types.TranslationResult
	for _, f := range types.Fields {
		if strings.TrimSpace(data.Get(f)) != "" {
			result.Set(f, parsed.Get(f))
		}
	}
	if !result.Resolved() {
		return types.TranslationResult{}, &Error{Kind: KindProvider, Message: "unusable combined response", Cause: errNothingRecovered}
	}
	return result, nil
}

func (a *Aggregator) translateEach(ctx context.Context, data types.AppData, targetLanguage string) (types.TranslationResult, error) {
	var result types.TranslationResult
	first := true
	for _, f := range types.Fields {
		source := strings.TrimSpace(data.Get(f))
		if source == "" {
			continue
		}
		if !first && a.FieldDelay > 0 {
			if err := a.clock.Sleep(ctx, a.FieldDelay); err != nil {
				return types.TranslationResult{}, err
			}
		}
		first = false

		raw, err := a.translator.Translate(ctx, types.TranslationRequest{
			SourceText:     source,
			TargetLanguage: targetLanguage,
			Purpose:        types.PurposeTranslation,
		})
		if err != nil {
			return types.TranslationResult{}, err
		}
		result.Set(f, ParseSingle(raw))
	}
	return result, nil
}

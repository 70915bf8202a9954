package translation

import (
	"strconv"
	"strings"

	"github.com/yusuf-polat/AI-Translate/internal/prompts"
	"github.com/yusuf-polat/AI-Translate/internal/types"
)

// Labels used in a combined-field request, one per line.
const (
	LabelAppName          = "Uygulama Adı"
	LabelShortDescription = "Kısa Açıklama"
	LabelFullDescription  = "Tam Açıklama"
)

// multiFieldMarkers switch the translation prompt to the multi-field envelope.
// Any field's label counts, since CombinedText omits absent fields.
var multiFieldMarkers = buildMultiFieldMarkers()

func buildMultiFieldMarkers() []string {
	var markers []string
	for _, f := range types.Fields {
		for _, label := range fieldLabels[f] {
			markers = append(markers, label+":")
		}
	}
	return markers
}

// IsMultiField reports whether text carries a field-label marker.
func IsMultiField(text string) bool {
	for _, marker := range multiFieldMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// CombinedText joins the non-empty listing fields into one labeled block.
func CombinedText(data types.AppData) string {
	labels := map[types.Field]string{
		types.FieldAppName:          LabelAppName,
		types.FieldShortDescription: LabelShortDescription,
		types.FieldFullDescription:  LabelFullDescription,
	}
	var lines []string
	for _, f := range types.Fields {
		value := strings.TrimSpace(data.Get(f))
		if value == "" {
			continue
		}
		lines = append(lines, labels[f]+": "+value)
	}
	return strings.Join(lines, "\n")
}

// BuildPrompt renders the prompt for text according to settings. An empty
// targetLanguage falls back to the configured one.
func BuildPrompt(text string, settings types.ToolSettings, targetLanguage string) (string, error) {
	settings = settings.WithDefaults()
	if targetLanguage == "" {
		targetLanguage = settings.TargetLanguage
	}

	data := map[string]string{
		"Text":           text,
		"TargetLanguage": targetLanguage,
	}

	var key string
	switch settings.Purpose {
	case types.PurposeAppStoreTranslation:
		key = "app-store-translation"
	case types.PurposeCustom:
		if strings.TrimSpace(settings.CustomPrompt) == "" {
			key = "custom-default"
		} else {
			key = "custom"
			data["CustomPrompt"] = settings.CustomPrompt
		}
	default:
		if IsMultiField(text) {
			key = "translation-multi-field"
			data["AppNameLimit"] = strconv.Itoa(types.MaxAppNameLength)
			data["ShortDescriptionLimit"] = strconv.Itoa(types.MaxShortDescriptionLength)
			data["FullDescriptionLimit"] = strconv.Itoa(types.MaxFullDescriptionLength)
		} else {
			key = "translation-single"
		}
	}

	return prompts.Render(prompts.TranslationFile, key, data)
}

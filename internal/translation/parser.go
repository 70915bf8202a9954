package translation

import (
	"encoding/json"
	"html"
	"regexp"
	"strings"

	"github.com/yusuf-polat/AI-Translate/internal/types"
)

// Strategy names, in the order they are tried.
const (
	StrategyFencedJSON  = "fenced_json"
	StrategyInlineJSON  = "inline_json"
	StrategyQuotedValue = "quoted_value"
	StrategyBraces      = "braces"
	StrategyRaw         = "raw"
)

// Strategy recovers the "translation" value from raw model output. Extract
// returns a string or a map[string]any, and false when it does not apply.
type Strategy struct {
	Name    string
	Extract func(raw string) (any, bool)
}

// Strategies is the fallback chain used by Parse. The first strategy that
// applies wins; the last one always applies.
var Strategies = []Strategy{
	{Name: StrategyFencedJSON, Extract: extractFencedJSON},
	{Name: StrategyInlineJSON, Extract: extractInlineJSON},
	{Name: StrategyQuotedValue, Extract: extractQuotedValue},
	{Name: StrategyBraces, Extract: extractBraces},
	{Name: StrategyRaw, Extract: extractRaw},
}

// Payload is what Parse recovered from a response.
type Payload struct {
	// Text is the translation string, or the trimmed raw text when nothing
	// structured was found.
	Text string
	// Object is set when the translation value was a JSON object.
	Object map[string]any
	// Strategy names the strategy that produced the payload.
	Strategy string
}

// Degraded reports whether no structured value could be recovered.
func (p Payload) Degraded() bool {
	return p.Strategy == StrategyRaw
}

var (
	fencedJSONPattern  = regexp.MustCompile("(?is)```json\\s*(\\{.*?\\})\\s*```")
	quotedValuePattern = regexp.MustCompile(`"translation"\s*:\s*"((?:[^"\\]|\\.)*)"`)
)

// Parse runs the strategy chain over raw. It never fails: empty input yields
// an empty payload and unrecognized input yields the trimmed text.
func Parse(raw string) Payload {
	return ParseWith(raw, Strategies)
}

// ParseWith runs a custom strategy chain over raw.
func ParseWith(raw string, strategies []Strategy) Payload {
	if strings.TrimSpace(raw) == "" {
		return Payload{Strategy: StrategyRaw}
	}
	for _, s := range strategies {
		value, ok := s.Extract(raw)
		if !ok {
			continue
		}
		switch v := value.(type) {
		case string:
			return Payload{Text: v, Strategy: s.Name}
		case map[string]any:
			return Payload{Object: v, Strategy: s.Name}
		}
	}
	return Payload{Text: strings.TrimSpace(raw), Strategy: StrategyRaw}
}

// ParseSingle recovers a single-field translation with HTML entities decoded.
func ParseSingle(raw string) string {
	p := Parse(raw)
	if p.Object != nil {
		r := fieldsFromObject(p.Object)
		if !r.Resolved() {
			return strings.TrimSpace(raw)
		}
		var parts []string
		for _, f := range types.Fields {
			if v := r.Get(f); v != "" {
				parts = append(parts, v)
			}
		}
		return sanitize(strings.Join(parts, "\n"))
	}
	return sanitize(p.Text)
}

// ParseFields recovers the three listing fields from a combined-field
// response. The nested {"translation": {...}} envelope wins over a flat
// object, which wins over labeled lines. Unrecovered fields are empty.
func ParseFields(raw string) types.TranslationResult {
	if strings.TrimSpace(raw) == "" {
		return types.TranslationResult{}
	}

	p := Parse(raw)
	if p.Object != nil {
		if r := fieldsFromObject(p.Object); r.Resolved() {
			return sanitizeResult(r)
		}
	}

	objects := jsonObjects(raw)
	for _, obj := range objects {
		if nested, ok := obj["translation"].(map[string]any); ok {
			if r := fieldsFromObject(nested); r.Resolved() {
				return sanitizeResult(r)
			}
		}
	}
	for _, obj := range objects {
		if r := fieldsFromObject(obj); r.Resolved() {
			return sanitizeResult(r)
		}
	}

	r := parseLabeled(p.Text)
	if !r.Resolved() {
		r = parseLabeled(raw)
	}
	return sanitizeResult(r)
}

func extractFencedJSON(raw string) (any, bool) {
	m := fencedJSONPattern.FindStringSubmatch(raw)
	if m == nil {
		return nil, false
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(m[1])), &obj); err != nil {
		return nil, false
	}
	return translationValue(obj)
}

func extractInlineJSON(raw string) (any, bool) {
	for _, obj := range jsonObjects(raw) {
		if v, ok := translationValue(obj); ok {
			return v, true
		}
	}
	return nil, false
}

func extractQuotedValue(raw string) (any, bool) {
	m := quotedValuePattern.FindStringSubmatch(raw)
	if m == nil {
		return nil, false
	}
	s := m[1]
	s = strings.ReplaceAll(s, `\"`, `"`)
	s = strings.ReplaceAll(s, `\n`, "\n")
	s = strings.ReplaceAll(s, `\t`, "\t")
	s = strings.ReplaceAll(s, `\\`, `\`)
	return s, true
}

func extractBraces(raw string) (any, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return nil, false
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw[start:end+1]), &obj); err != nil {
		return nil, false
	}
	return translationValue(obj)
}

func extractRaw(raw string) (any, bool) {
	return strings.TrimSpace(raw), true
}

// translationValue returns obj["translation"] if it is a non-empty string or object.
func translationValue(obj map[string]any) (any, bool) {
	switch v := obj["translation"].(type) {
	case string:
		if v != "" {
			return v, true
		}
	case map[string]any:
		if len(v) > 0 {
			return v, true
		}
	}
	return nil, false
}

// jsonObjects decodes every JSON object that starts at a '{' in raw, in
// order of appearance. Trailing text after each object is ignored.
func jsonObjects(raw string) []map[string]any {
	var objects []map[string]any
	for i := 0; i < len(raw); i++ {
		if raw[i] != '{' {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(raw[i:]))
		var obj map[string]any
		if err := dec.Decode(&obj); err == nil && obj != nil {
			objects = append(objects, obj)
		}
	}
	return objects
}

func fieldsFromObject(obj map[string]any) types.TranslationResult {
	var r types.TranslationResult
	for _, f := range types.Fields {
		if s, ok := obj[string(f)].(string); ok {
			r.Set(f, strings.TrimSpace(s))
		}
	}
	return r
}

// fieldLabels maps each field to the labels a model may use for it.
var fieldLabels = map[types.Field][]string{
	types.FieldAppName:          {"Uygulama Adı", "UYGULAMA_ADI", "App Name", "APP_NAME"},
	types.FieldShortDescription: {"Kısa Açıklama", "KISA_ACIKLAMA", "Short Description", "SHORT_DESCRIPTION"},
	types.FieldFullDescription:  {"Tam Açıklama", "TAM_ACIKLAMA", "Full Description", "FULL_DESCRIPTION"},
}

var labelPattern, labelField = buildLabelPattern()

func buildLabelPattern() (*regexp.Regexp, map[string]types.Field) {
	lookup := make(map[string]types.Field)
	var alternatives []string
	for _, f := range types.Fields {
		for _, label := range fieldLabels[f] {
			lookup[label] = f
			alternatives = append(alternatives, regexp.QuoteMeta(label))
		}
	}
	return regexp.MustCompile(`(` + strings.Join(alternatives, "|") + `)[ \t]*:`), lookup
}

type labelMatch struct {
	field      types.Field
	start, end int
	lineStart  bool
}

// parseLabeled reads "Label: value" blocks. A value runs until the next label
// that begins a line, or the end of the text. The first occurrence of a
// label wins.
func parseLabeled(text string) types.TranslationResult {
	var r types.TranslationResult
	if text == "" {
		return r
	}

	var matches []labelMatch
	for _, idx := range labelPattern.FindAllStringSubmatchIndex(text, -1) {
		matches = append(matches, labelMatch{
			field:     labelField[text[idx[2]:idx[3]]],
			start:     idx[0],
			end:       idx[1],
			lineStart: startsLine(text, idx[0]),
		})
	}

	for i, m := range matches {
		if r.Get(m.field) != "" {
			continue
		}
		stop := len(text)
		for _, next := range matches[i+1:] {
			if next.lineStart {
				stop = next.start
				break
			}
		}
		r.Set(m.field, strings.TrimSpace(text[m.end:stop]))
	}
	return r
}

// startsLine reports whether only spaces or tabs separate pos from the
// previous newline.
func startsLine(text string, pos int) bool {
	for i := pos - 1; i >= 0; i-- {
		switch text[i] {
		case ' ', '\t', '\r':
			continue
		case '\n':
			return true
		default:
			return false
		}
	}
	return true
}

// sanitize decodes HTML entities the model sometimes emits.
func sanitize(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	return strings.ReplaceAll(html.UnescapeString(s), "\u00a0", " ")
}

func sanitizeResult(r types.TranslationResult) types.TranslationResult {
	for _, f := range types.Fields {
		r.Set(f, sanitize(r.Get(f)))
	}
	return r
}

package console

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Attributes the browser scripts use to tag elements between calls.
const (
	controlAttr = "data-lt-index"
	modalAttr   = "data-lt-modal"
	inputAttr   = "data-lt-input"
	applyAttr   = "data-lt-apply"
)

// ParseControls reads tagged controls from a page snapshot and resolves each
// one's language label from its table row.
func ParseControls(html string, sel Selectors) ([]Control, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var controls []Control
	doc.Find("[" + controlAttr + "]").Each(func(_ int, s *goquery.Selection) {
		index, err := strconv.Atoi(s.AttrOr(controlAttr, ""))
		if err != nil {
			return
		}
		controls = append(controls, Control{Index: index, Label: languageLabel(s, sel)})
	})

	sort.SliceStable(controls, func(i, j int) bool { return controls[i].Index < controls[j].Index })
	return controls, nil
}

// languageLabel finds the row around a control and returns the text of its
// first matching language cell.
func languageLabel(control *goquery.Selection, sel Selectors) string {
	var row *goquery.Selection
	for _, rowSelector := range sel.Rows {
		if candidate := control.Closest(rowSelector); candidate.Length() > 0 {
			row = candidate
			break
		}
	}
	if row == nil {
		return UnknownLanguage
	}

	for _, cellSelector := range sel.LanguageCells {
		cell := row.Find(cellSelector).First()
		if cell.Length() == 0 {
			continue
		}
		if label := cleanLabel(cell.Text()); label != "" {
			return label
		}
		return UnknownLanguage
	}
	return UnknownLanguage
}

// cleanLabel collapses the whitespace a table cell's markup leaves behind.
func cleanLabel(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

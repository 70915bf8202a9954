package console

// Selectors locate elements on the translation page. The defaults match the
// console's current markup in both Turkish and English.
type Selectors struct {
	// ControlTexts identify the per-language buttons by their text.
	ControlTexts []string
	// Rows are tried in order to find the table row around a control.
	Rows []string
	// LanguageCells are tried in order inside the row.
	LanguageCells []string
	// Modal matches a visible translation dialog.
	Modal string
	// Inputs matches the text fields inside a dialog.
	Inputs string
	// ApplyButton, ApplyTexts and SubmitButton are tried in that order.
	ApplyButton  string
	ApplyTexts   []string
	SubmitButton string
	// CloseButtons, then buttons whose lowercased text contains one of
	// CloseTexts, dismiss a dialog.
	CloseButtons string
	CloseTexts   []string
	Backdrop     string
}

// DefaultSelectors returns selectors for the store console.
func DefaultSelectors() Selectors {
	return Selectors{
		ControlTexts: []string{"İncele ve uygula", "Review and apply"},
		Rows:         []string{".particle-table-row", "tr"},
		LanguageCells: []string{
			`[essfield="order-detail-language-column"]`,
			"td:nth-child(1)",
			".language-column",
		},
		Modal:        `.modal.visible, .modal[style*="display: block"], .modal[style*="display:block"]`,
		Inputs:       "input, textarea",
		ApplyButton:  `button[debug-id="yes-button"]`,
		ApplyTexts:   []string{"Uygula", "Apply"},
		SubmitButton: `button[type="submit"]`,
		CloseButtons: `button[debug-id="no-button"], button[aria-label*="close"], button[aria-label*="kapat"], .close-button, [data-dismiss="modal"]`,
		CloseTexts:   []string{"iptal", "cancel", "kapat", "close", "×", "✕"},
		Backdrop:     ".modal-backdrop, .backdrop",
	}
}

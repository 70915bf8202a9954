// Package console drives the store console's app-translation page: it finds
// the per-language "review and apply" controls, opens their dialogs, fills the
// three listing fields and confirms.
package console

import "context"

// MinInputs is the number of fields a translation dialog must expose.
const MinInputs = 3

// UnknownLanguage labels a control whose row has no readable language cell.
const UnknownLanguage = "Bilinmeyen Dil"

// Control is one language's "review and apply" button, in page order.
type Control struct {
	Index int    `json:"index"`
	Label string `json:"label"`
}

// Surface is the page the runner automates.
type Surface interface {
	// FindLanguageControls returns the language controls in page order.
	FindLanguageControls(ctx context.Context) ([]Control, error)
	// OpenModalFor activates c and waits a bounded time for its dialog.
	// The bool is false when no dialog became visible.
	OpenModalFor(ctx context.Context, c Control) (Modal, bool, error)
	// CloseAnyOpenModal dismisses leftover dialogs. Best-effort.
	CloseAnyOpenModal(ctx context.Context) error
}

// Modal is an open translation dialog.
type Modal interface {
	// Inputs returns the dialog's text fields in document order.
	Inputs(ctx context.Context) ([]Input, error)
	// Confirm locates the apply button. The bool is false when there is none.
	Confirm(ctx context.Context) (Button, bool, error)
}

// Input is a text field inside a dialog.
type Input interface {
	Fill(ctx context.Context, text string) error
}

// Button is a clickable element.
type Button interface {
	Click(ctx context.Context) error
}

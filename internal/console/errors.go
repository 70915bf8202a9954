package console

import (
	"errors"
	"fmt"
)

// ErrorKind names a page interaction that did not go as expected.
type ErrorKind string

// ErrorKind constants
const (
	KindModalNotFound      ErrorKind = "modal_not_found"
	KindInsufficientInputs ErrorKind = "insufficient_inputs"
	KindApplyNotFound      ErrorKind = "apply_not_found"
)

// Error is a per-language UI failure. It never aborts a run.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("console error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("console error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ModalNotFound reports that no dialog appeared for a language.
func ModalNotFound(language string) *Error {
	return &Error{Kind: KindModalNotFound, Message: fmt.Sprintf("translation dialog did not open for %s", language)}
}

// InsufficientInputs reports a dialog with fewer fields than the listing has.
func InsufficientInputs(found int) *Error {
	return &Error{Kind: KindInsufficientInputs, Message: fmt.Sprintf("expected at least %d input fields, found %d", MinInputs, found)}
}

// ApplyNotFound reports a dialog without a confirm button.
func ApplyNotFound() *Error {
	return &Error{Kind: KindApplyNotFound, Message: "apply button not found"}
}

// IsKind reports whether err is a console error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

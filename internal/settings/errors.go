package settings

import "fmt"

// Error is returned when settings cannot be read, validated or written.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("settings error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("settings error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
)

// ErrorKind classifies a provider failure.
type ErrorKind string

// ErrorKind constants
const (
	KindAuth        ErrorKind = "auth"
	KindRateLimited ErrorKind = "rate_limited"
	KindProvider    ErrorKind = "provider"
)

// Error is returned by Client implementations for provider failures.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("llm error (%s): %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("llm error (%s): %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// throttlePhrases are provider messages that signal throttling without a 429.
var throttlePhrases = []string{
	"çok fazla istek",
	"rate limit",
	"too many requests",
	"bir dakika bekleyip",
	"resource has been exhausted",
	"resource_exhausted",
}

var authPhrases = []string{
	"api key not valid",
	"api_key_invalid",
	"permission denied",
}

// KindOf returns the kind of an llm error, or "" if err is not one.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// classifyError wraps a raw provider error into an *Error.
func classifyError(message string, err error) *Error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		return existing
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests:
			return &Error{Kind: KindRateLimited, Message: message, Cause: err}
		case http.StatusUnauthorized, http.StatusForbidden:
			return &Error{Kind: KindAuth, Message: message, Cause: err}
		}
	}

	text := strings.ToLower(err.Error())
	for _, phrase := range throttlePhrases {
		if strings.Contains(text, phrase) {
			return &Error{Kind: KindRateLimited, Message: message, Cause: err}
		}
	}
	for _, phrase := range authPhrases {
		if strings.Contains(text, phrase) {
			return &Error{Kind: KindAuth, Message: message, Cause: err}
		}
	}
	return &Error{Kind: KindProvider, Message: message, Cause: err}
}

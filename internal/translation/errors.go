// Package translation turns store-listing text into translated fields: it
// builds prompts, calls the generative API under the rate limiter and parses
// whatever shape the model answers with.
package translation

import (
	"context"
	"errors"
	"fmt"

	"github.com/yusuf-polat/AI-Translate/internal/llm"
	"github.com/yusuf-polat/AI-Translate/internal/ratelimit"
)

// Kind classifies translation failures for retry decisions.
type Kind string

// Kind constants
const (
	// KindAuth means the API key is missing or rejected. Fatal to a run.
	KindAuth Kind = "auth"
	// KindRateExceeded means the local or provider budget is exhausted.
	KindRateExceeded Kind = "rate_exceeded"
	// KindProvider is any other provider or response failure.
	KindProvider Kind = "provider"
)

// Error is returned by Client and Aggregator.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("translation error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("translation error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ErrMissingAPIKey is the cause of KindAuth errors raised before any request.
var ErrMissingAPIKey = errors.New("API key not found, save one with `settings set-key`")

// IsRateLimited reports whether err is worth retrying after a cooldown.
func IsRateLimited(err error) bool {
	return kindOf(err) == KindRateExceeded
}

// IsAuth reports whether err is a credential failure.
func IsAuth(err error) bool {
	return kindOf(err) == KindAuth
}

func kindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return classify(err)
}

// classify maps errors from the limiter and the llm boundary onto a Kind.
func classify(err error) Kind {
	switch {
	case errors.Is(err, ratelimit.ErrRateExceeded):
		return KindRateExceeded
	case errors.Is(err, ErrMissingAPIKey):
		return KindAuth
	}
	switch llm.KindOf(err) {
	case llm.KindRateLimited:
		return KindRateExceeded
	case llm.KindAuth:
		return KindAuth
	}
	return KindProvider
}

// wrap converts err into an *Error unless it already is one. Context errors
// pass through untouched so callers can tell a stop from a failure.
func wrap(message string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: classify(err), Message: message, Cause: err}
}

// Package server provides the HTTP control API for the listing bot.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/yusuf-polat/AI-Translate/internal/runner"
	"github.com/yusuf-polat/AI-Translate/internal/settings"
	"github.com/yusuf-polat/AI-Translate/internal/translation"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var validationErr *ErrValidation
	var settingsErr *settings.Error
	switch {
	case errors.As(err, &validationErr), errors.As(err, &settingsErr):
		return http.StatusBadRequest
	case errors.Is(err, runner.ErrAlreadyRunning):
		return http.StatusConflict
	case errors.Is(err, runner.ErrNoAppData):
		return http.StatusPreconditionFailed
	case translation.IsRateLimited(err):
		return http.StatusTooManyRequests
	case translation.IsAuth(err):
		return http.StatusServiceUnavailable
	}
	var translationErr *translation.Error
	if errors.As(err, &translationErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

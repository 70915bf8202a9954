package types

import (
	"github.com/go-playground/validator/v10"
)

// Purpose selects the prompt family used for a translation request.
type Purpose string

// Purpose constants
const (
	// PurposeTranslation is the default store-listing translation prompt
	PurposeTranslation Purpose = "translation"
	// PurposeAppStoreTranslation is the single-text store copy prompt
	PurposeAppStoreTranslation Purpose = "app_store_translation"
	// PurposeCustom prefixes the operator's own prompt text
	PurposeCustom Purpose = "custom"
)

// Normalize maps unknown purposes to PurposeTranslation.
func (p Purpose) Normalize() Purpose {
	switch p {
	case PurposeTranslation, PurposeAppStoreTranslation, PurposeCustom:
		return p
	default:
		return PurposeTranslation
	}
}

// DefaultTargetLanguage is used when no target language was configured.
const DefaultTargetLanguage = "turkish"

// ToolSettings supplies prompt-construction parameters.
type ToolSettings struct {
	Purpose        Purpose `json:"toolPurpose" validate:"omitempty,oneof=translation app_store_translation custom"`
	CustomPrompt   string  `json:"customPrompt"`
	TargetLanguage string  `json:"targetLanguage"`
}

// DefaultToolSettings returns the settings used before the operator saves any.
func DefaultToolSettings() ToolSettings {
	return ToolSettings{
		Purpose:        PurposeTranslation,
		TargetLanguage: DefaultTargetLanguage,
	}
}

// Validate validates the ToolSettings using the validator.
func (s *ToolSettings) Validate() error {
	validate := validator.New()
	return validate.Struct(s)
}

// WithDefaults fills empty fields from DefaultToolSettings.
func (s ToolSettings) WithDefaults() ToolSettings {
	defaults := DefaultToolSettings()
	if s.Purpose == "" {
		s.Purpose = defaults.Purpose
	}
	if s.TargetLanguage == "" {
		s.TargetLanguage = defaults.TargetLanguage
	}
	s.Purpose = s.Purpose.Normalize()
	return s
}

// TranslationRequest is one call to the generative API.
type TranslationRequest struct {
	SourceText     string  `json:"text" validate:"required"`
	TargetLanguage string  `json:"target_language" validate:"required"`
	Purpose        Purpose `json:"purpose,omitempty"`
}

// Validate validates the TranslationRequest using the validator.
func (r *TranslationRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// TranslationResult is a partially populated listing translation.
// An empty field means it could not be recovered from the response.
type TranslationResult struct {
	AppName          string `json:"appName"`
	ShortDescription string `json:"shortDescription"`
	FullDescription  string `json:"fullDescription"`
}

// Resolved reports whether at least one field was recovered.
func (r TranslationResult) Resolved() bool {
	return r.AppName != "" || r.ShortDescription != "" || r.FullDescription != ""
}

// Get returns the value of a field.
func (r TranslationResult) Get(f Field) string {
	switch f {
	case FieldAppName:
		return r.AppName
	case FieldShortDescription:
		return r.ShortDescription
	case FieldFullDescription:
		return r.FullDescription
	default:
		return ""
	}
}

// Set assigns the value of a field.
func (r *TranslationResult) Set(f Field, value string) {
	switch f {
	case FieldAppName:
		r.AppName = value
	case FieldShortDescription:
		r.ShortDescription = value
	case FieldFullDescription:
		r.FullDescription = value
	}
}

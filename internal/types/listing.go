// Package types provides type definitions for structured data used throughout the listing translation bot.
package types

import (
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// Field identifies one of the three store-listing text fields.
type Field string

// Field constants in the fixed order they are sent to the model and typed into the console.
const (
	FieldAppName          Field = "appName"
	FieldShortDescription Field = "shortDescription"
	FieldFullDescription  Field = "fullDescription"
)

// Character ceilings enforced by the console for each field.
const (
	MaxAppNameLength          = 30
	MaxShortDescriptionLength = 80
	MaxFullDescriptionLength  = 4000
)

// Fields lists the listing fields in their canonical order.
var Fields = []Field{FieldAppName, FieldShortDescription, FieldFullDescription}

// Limit returns the character ceiling for the field, or 0 for an unknown field.
func (f Field) Limit() int {
	switch f {
	case FieldAppName:
		return MaxAppNameLength
	case FieldShortDescription:
		return MaxShortDescriptionLength
	case FieldFullDescription:
		return MaxFullDescriptionLength
	default:
		return 0
	}
}

// Truncate cuts s to the field's ceiling, counting characters rather than bytes.
func (f Field) Truncate(s string) string {
	limit := f.Limit()
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}

// AppData holds the source-language store listing that gets translated.
type AppData struct {
	AppName          string `json:"appName" validate:"max=30"`
	ShortDescription string `json:"shortDescription" validate:"max=80"`
	FullDescription  string `json:"fullDescription" validate:"max=4000"`
}

// Validate checks the per-field character ceilings.
func (a *AppData) Validate() error {
	validate := validator.New()
	return validate.Struct(a)
}

// IsEmpty reports whether none of the three fields carries text.
func (a *AppData) IsEmpty() bool {
	return a == nil ||
		(strings.TrimSpace(a.AppName) == "" &&
			strings.TrimSpace(a.ShortDescription) == "" &&
			strings.TrimSpace(a.FullDescription) == "")
}

// Get returns the value of a field.
func (a *AppData) Get(f Field) string {
	switch f {
	case FieldAppName:
		return a.AppName
	case FieldShortDescription:
		return a.ShortDescription
	case FieldFullDescription:
		return a.FullDescription
	default:
		return ""
	}
}

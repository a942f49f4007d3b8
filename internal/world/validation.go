// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WorldCrafter Contributors

package world

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// Validation limits for domain types.
const (
	MaxNameLength      = 100
	MaxTypeLength      = 50
	MaxTextFieldLength = 4000
	MaxAttributeCount  = 50
	MaxAttributeLength = 500
	MaxURLLength       = 2000
)

// ValidationError represents an input validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateName checks that a display name is valid.
// Names must be non-empty, valid UTF-8, no control characters, and
// within length limit.
func ValidateName(name string) error {
	if name == "" {
		return &ValidationError{Field: "name", Message: "cannot be empty"}
	}
	if !utf8.ValidString(name) {
		return &ValidationError{Field: "name", Message: "must be valid UTF-8"}
	}
	if len(name) > MaxNameLength {
		return &ValidationError{Field: "name", Message: fmt.Sprintf("exceeds maximum length of %d", MaxNameLength)}
	}
	if hasControlChars(name) {
		return &ValidationError{Field: "name", Message: "cannot contain control characters"}
	}
	return nil
}

// ValidateTextField checks an optional free-text field (description,
// geography, culture, ...). Empty is allowed; newlines and tabs are
// allowed, other control characters are not.
func ValidateTextField(field, value string) error {
	if value == "" {
		return nil
	}
	if !utf8.ValidString(value) {
		return &ValidationError{Field: field, Message: "must be valid UTF-8"}
	}
	if len(value) > MaxTextFieldLength {
		return &ValidationError{Field: field, Message: fmt.Sprintf("exceeds maximum length of %d", MaxTextFieldLength)}
	}
	for _, r := range value {
		if unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r' {
			return &ValidationError{Field: field, Message: "cannot contain control characters"}
		}
	}
	return nil
}

// ValidateType checks an optional type tag.
func ValidateType(value string) error {
	if value == "" {
		return nil
	}
	if len(value) > MaxTypeLength {
		return &ValidationError{Field: "type", Message: fmt.Sprintf("exceeds maximum length of %d", MaxTypeLength)}
	}
	if hasControlChars(value) {
		return &ValidationError{Field: "type", Message: "cannot contain control characters"}
	}
	return nil
}

// ValidateAttributes checks an optional key-value attribute map.
func ValidateAttributes(attrs map[string]string) error {
	if len(attrs) > MaxAttributeCount {
		return &ValidationError{Field: "attributes", Message: fmt.Sprintf("exceeds maximum of %d entries", MaxAttributeCount)}
	}
	for k, v := range attrs {
		if k == "" {
			return &ValidationError{Field: "attributes", Message: "keys cannot be empty"}
		}
		if len(k) > MaxAttributeLength || len(v) > MaxAttributeLength {
			return &ValidationError{Field: "attributes", Message: fmt.Sprintf("entries exceed maximum length of %d", MaxAttributeLength)}
		}
	}
	return nil
}

// ValidateImageURL checks an optional image reference.
func ValidateImageURL(value string) error {
	if value == "" {
		return nil
	}
	if len(value) > MaxURLLength {
		return &ValidationError{Field: "imageUrl", Message: fmt.Sprintf("exceeds maximum length of %d", MaxURLLength)}
	}
	if hasControlChars(value) {
		return &ValidationError{Field: "imageUrl", Message: "cannot contain control characters"}
	}
	return nil
}

func hasControlChars(s string) bool {
	for _, r := range s {
		if unicode.IsControl(r) {
			return true
		}
	}
	return false
}

func validateLocationFields(in CreateLocationInput) error {
	if err := ValidateName(in.Name); err != nil {
		return err
	}
	if err := ValidateType(in.Type); err != nil {
		return err
	}
	for _, f := range []struct{ field, value string }{
		{"description", in.Description},
		{"geography", in.Geography},
		{"climate", in.Climate},
		{"population", in.Population},
		{"government", in.Government},
		{"economy", in.Economy},
		{"culture", in.Culture},
	} {
		if err := ValidateTextField(f.field, f.value); err != nil {
			return err
		}
	}
	if err := ValidateAttributes(in.Attributes); err != nil {
		return err
	}
	return ValidateImageURL(in.ImageURL)
}

func validateLocationUpdate(in UpdateLocationInput) error {
	if in.Empty() {
		return &ValidationError{Field: "update", Message: "no fields supplied"}
	}
	if in.Name != nil {
		if err := ValidateName(*in.Name); err != nil {
			return err
		}
	}
	if in.Type != nil {
		if err := ValidateType(*in.Type); err != nil {
			return err
		}
	}
	for _, f := range []struct {
		field string
		value *string
	}{
		{"description", in.Description},
		{"geography", in.Geography},
		{"climate", in.Climate},
		{"population", in.Population},
		{"government", in.Government},
		{"economy", in.Economy},
		{"culture", in.Culture},
	} {
		if f.value == nil {
			continue
		}
		if err := ValidateTextField(f.field, *f.value); err != nil {
			return err
		}
	}
	if in.Attributes != nil {
		if err := ValidateAttributes(in.Attributes); err != nil {
			return err
		}
	}
	if in.ImageURL != nil {
		return ValidateImageURL(*in.ImageURL)
	}
	return nil
}

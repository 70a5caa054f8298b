// ABOUTME: Hand-rolled field validation with length bounds per field

package api

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// validator accumulates field errors across checks.
type validator struct {
	errs []FieldError
}

func (v *validator) require(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.errs = append(v.errs, FieldError{Field: field, Error: "must not be blank"})
	}
}

func (v *validator) length(field, value string, min, max int) {
	n := utf8.RuneCountInString(value)
	if n < min || n > max {
		v.errs = append(v.errs, FieldError{
			Field: field,
			Error: fmt.Sprintf("length must be between %d and %d", min, max),
		})
	}
}

func (v *validator) ok() bool {
	return len(v.errs) == 0
}

// Field length bounds for topic and course payloads.
const (
	titleMin   = 5
	titleMax   = 50
	messageMin = 15
	messageMax = 255
	courseMin  = 5
	courseMax  = 15
)

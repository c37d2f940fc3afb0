// ABOUTME: Validation error types with distinguishable kinds and human-readable messages.
// ABOUTME: All of them surface to callers as envelope failures, never as transport faults.

package schema

import (
	"fmt"
	"strings"
)

// MissingFieldError reports a required field absent from the arguments.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

// TypeMismatchError reports a value of the wrong primitive kind.
type TypeMismatchError struct {
	Field    string
	Expected Kind
}

func (e *TypeMismatchError) Error() string {
	article := "a"
	if e.Expected == Integer || e.Expected == StringArray {
		article = "an"
	}
	kind := string(e.Expected)
	if e.Expected == StringArray {
		kind = "array of strings"
	}
	return fmt.Sprintf("field %q must be %s %s", e.Field, article, kind)
}

// EnumError reports a value outside a field's enumerated set.
type EnumError struct {
	Field   string
	Value   string
	Allowed []string
}

func (e *EnumError) Error() string {
	return fmt.Sprintf("field %q must be one of %s, got %q", e.Field, strings.Join(e.Allowed, ", "), e.Value)
}

// RangeError reports a value or length outside the declared bounds.
type RangeError struct {
	Field string
	Kind  Kind
	Value int
	Min   *int
	Max   *int
}

func (e *RangeError) Error() string {
	subject := "value"
	if e.Kind == String || e.Kind == StringArray {
		subject = "length"
	}
	bounds := ""
	switch {
	case e.Min != nil && e.Max != nil:
		bounds = fmt.Sprintf("%d..%d", *e.Min, *e.Max)
	case e.Min != nil:
		bounds = fmt.Sprintf(">= %d", *e.Min)
	case e.Max != nil:
		bounds = fmt.Sprintf("<= %d", *e.Max)
	}
	return fmt.Sprintf("field %q %s %d is out of range (%s)", e.Field, subject, e.Value, bounds)
}

// ABOUTME: Argument schema model for tool declarations.
// ABOUTME: Checks schema consistency at registration time and validates caller arguments per call.

package schema

import (
	"errors"
	"fmt"
	"slices"
)

// Kind identifies the primitive type a field accepts.
type Kind string

const (
	String      Kind = "string"
	Integer     Kind = "integer"
	Boolean     Kind = "boolean"
	StringArray Kind = "array"
)

// Field describes one named argument in a tool's input schema.
//
// Min and Max bound the value for Integer fields and the length for
// String and StringArray fields. Enum is only meaningful on String fields.
// A nil Enum means "no enumeration"; a non-nil empty Enum is rejected by
// Check. Default, when set, must be of the declared kind and must not be
// combined with Required.
type Field struct {
	Name        string
	Kind        Kind
	Description string
	Required    bool
	Default     any
	Enum        []string
	Min         *int
	Max         *int
}

// Definition is the structural schema for a tool's arguments. Field order
// is the declaration order and is the order validation is applied in.
type Definition struct {
	Fields []Field
}

// ErrInvalidSchema is wrapped by every schema consistency failure from Check.
var ErrInvalidSchema = errors.New("invalid schema")

// Check verifies the definition is internally consistent. It is called once
// at registration time; Validate assumes a checked definition.
func (d Definition) Check() error {
	seen := make(map[string]struct{}, len(d.Fields))
	for _, f := range d.Fields {
		if f.Name == "" {
			return fmt.Errorf("%w: field with empty name", ErrInvalidSchema)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("%w: duplicate field %q", ErrInvalidSchema, f.Name)
		}
		seen[f.Name] = struct{}{}

		switch f.Kind {
		case String, Integer, Boolean, StringArray:
		default:
			return fmt.Errorf("%w: field %q has unknown kind %q", ErrInvalidSchema, f.Name, f.Kind)
		}

		if f.Required && f.Default != nil {
			return fmt.Errorf("%w: field %q is required and declares a default", ErrInvalidSchema, f.Name)
		}

		if f.Enum != nil {
			if f.Kind != String {
				return fmt.Errorf("%w: field %q declares an enum on kind %q", ErrInvalidSchema, f.Name, f.Kind)
			}
			if len(f.Enum) == 0 {
				return fmt.Errorf("%w: field %q declares an empty enum", ErrInvalidSchema, f.Name)
			}
		}

		if f.Min != nil && f.Max != nil && *f.Min > *f.Max {
			return fmt.Errorf("%w: field %q has min %d > max %d", ErrInvalidSchema, f.Name, *f.Min, *f.Max)
		}
		if (f.Min != nil || f.Max != nil) && f.Kind == Boolean {
			return fmt.Errorf("%w: field %q declares bounds on kind %q", ErrInvalidSchema, f.Name, f.Kind)
		}

		if f.Default != nil {
			v, err := coerce(f, f.Default)
			if err != nil {
				return fmt.Errorf("%w: field %q default: %v", ErrInvalidSchema, f.Name, err)
			}
			if err := checkValue(f, v); err != nil {
				return fmt.Errorf("%w: field %q default: %v", ErrInvalidSchema, f.Name, err)
			}
		}
	}
	return nil
}

// Validate checks raw caller arguments against the definition and returns the
// validated argument map. Fields are processed in declaration order: absent
// fields receive their default or fail when required, present fields are
// kind-checked, then enum and bounds constraints are applied.
//
// Fields present in raw but not declared in the definition are silently
// dropped; the returned map contains declared fields only. Validation never
// mutates raw and performs no I/O.
func (d Definition) Validate(raw map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(d.Fields))
	for _, f := range d.Fields {
		v, present := raw[f.Name]
		if !present || v == nil {
			if f.Default != nil {
				dv, _ := coerce(f, f.Default)
				out[f.Name] = dv
				continue
			}
			if f.Required {
				return nil, &MissingFieldError{Field: f.Name}
			}
			continue
		}

		cv, err := coerce(f, v)
		if err != nil {
			return nil, &TypeMismatchError{Field: f.Name, Expected: f.Kind}
		}
		if err := checkValue(f, cv); err != nil {
			return nil, err
		}
		out[f.Name] = cv
	}
	return out, nil
}

// coerce converts v to the canonical Go representation for the field's kind:
// string, int, bool, or []string. JSON decoding yields float64 for numbers,
// which is accepted for Integer fields when the value is integral.
func coerce(f Field, v any) (any, error) {
	switch f.Kind {
	case String:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("not a string")
		}
		return s, nil
	case Integer:
		switch n := v.(type) {
		case int:
			return n, nil
		case int64:
			return int(n), nil
		case float64:
			if n != float64(int(n)) {
				return nil, fmt.Errorf("not an integer")
			}
			return int(n), nil
		default:
			return nil, fmt.Errorf("not an integer")
		}
	case Boolean:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("not a boolean")
		}
		return b, nil
	case StringArray:
		switch a := v.(type) {
		case []string:
			return slices.Clone(a), nil
		case []any:
			out := make([]string, len(a))
			for i, e := range a {
				s, ok := e.(string)
				if !ok {
					return nil, fmt.Errorf("element %d is not a string", i)
				}
				out[i] = s
			}
			return out, nil
		default:
			return nil, fmt.Errorf("not an array of strings")
		}
	}
	return nil, fmt.Errorf("unknown kind %q", f.Kind)
}

// checkValue applies enum and bounds constraints to a coerced value.
func checkValue(f Field, v any) error {
	if f.Enum != nil {
		s := v.(string)
		if !slices.Contains(f.Enum, s) {
			return &EnumError{Field: f.Name, Value: s, Allowed: slices.Clone(f.Enum)}
		}
	}

	if f.Min == nil && f.Max == nil {
		return nil
	}

	var n int
	switch f.Kind {
	case Integer:
		n = v.(int)
	case String:
		n = len(v.(string))
	case StringArray:
		n = len(v.([]string))
	default:
		return nil
	}
	if (f.Min != nil && n < *f.Min) || (f.Max != nil && n > *f.Max) {
		return &RangeError{Field: f.Name, Kind: f.Kind, Value: n, Min: f.Min, Max: f.Max}
	}
	return nil
}

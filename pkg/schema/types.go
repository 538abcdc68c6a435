package schema

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"
)

// Type defines the contract for field validation.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "string", "int").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
}

// Normalizer is implemented by types that accept input in more than one
// shape and convert it to their canonical form.
type Normalizer interface {
	Normalize(value any) any
}

// Normalize converts value with t when t is a Normalizer.
func Normalize(t Type, value any) any {
	if n, ok := t.(Normalizer); ok {
		return n.Normalize(value)
	}
	return value
}

// stringType accepts strings. Numbers and booleans are normalized to
// their text, so "cfg storage.redis.password 1234" stays a string.
type stringType struct{}

func (stringType) Name() string { return "string" }

func (stringType) Validate(value any) error {
	if _, ok := value.(string); !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	return nil
}

func (stringType) Normalize(value any) any {
	switch value.(type) {
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(value)
	}
	return value
}

// intType accepts whole numbers, optionally bounded below.
type intType struct {
	min *int64
}

func (t intType) Name() string {
	if t.min != nil {
		return fmt.Sprintf("int >= %d", *t.min)
	}
	return "int"
}

func (t intType) Validate(value any) error {
	var n int64
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n = rv.Int()
	case reflect.Float32, reflect.Float64:
		// Accept floats that are whole numbers (from JSON unmarshaling)
		f := rv.Float()
		if f != float64(int64(f)) {
			return fmt.Errorf("expected int, got float (not a whole number)")
		}
		n = int64(f)
	default:
		return fmt.Errorf("expected int, got %T", value)
	}
	if t.min != nil && n < *t.min {
		return fmt.Errorf("must be at least %d", *t.min)
	}
	return nil
}

// boolType accepts booleans.
type boolType struct{}

func (boolType) Name() string { return "bool" }

func (boolType) Validate(value any) error {
	if _, ok := value.(bool); !ok {
		return fmt.Errorf("expected bool, got %T", value)
	}
	return nil
}

// durationType accepts time.ParseDuration strings and time.Duration values.
type durationType struct{}

func (durationType) Name() string { return "duration" }

func (durationType) Validate(value any) error {
	switch v := value.(type) {
	case time.Duration:
		return nil
	case string:
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("expected duration such as 5s or 2m, got %q", v)
		}
		return nil
	default:
		return fmt.Errorf("expected duration, got %T", value)
	}
}

// oneOfType accepts one string out of a fixed set, case-insensitively.
type oneOfType struct {
	values []string
}

func (t oneOfType) Name() string {
	return "one of " + strings.Join(t.values, ", ")
}

func (t oneOfType) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	if !slices.Contains(t.values, strings.ToLower(s)) {
		return fmt.Errorf("expected %s, got %q", t.Name(), s)
	}
	return nil
}

func (t oneOfType) Normalize(value any) any {
	if s, ok := value.(string); ok {
		return strings.ToLower(s)
	}
	return value
}

// customType applies a user-defined validation function.
type customType struct {
	name     string
	validate func(any) error
}

func (t customType) Name() string { return t.name }

func (t customType) Validate(value any) error {
	return t.validate(value)
}

// --- Factory Functions ---

// String creates a string type validator.
func String() Type { return stringType{} }

// Int creates an integer type validator.
func Int() Type { return intType{} }

// IntAtLeast creates an integer validator rejecting values below min.
func IntAtLeast(min int64) Type { return intType{min: &min} }

// Bool creates a boolean type validator.
func Bool() Type { return boolType{} }

// Duration creates a duration validator.
func Duration() Type { return durationType{} }

// OneOf creates an enumeration validator. values must be lower case.
func OneOf(values ...string) Type { return oneOfType{values: values} }

// Custom creates a custom type validator with a user-defined function.
func Custom(name string, validate func(any) error) Type {
	return customType{name: name, validate: validate}
}

package flatview

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for compile-time failures. The compiler performs no I/O,
// so every failure stems from invalid input; there is no partial-result or
// retry concept. Use the Is*Err helpers to classify wrapped errors.
var (
	// ErrInvalidSchema is returned when a schema violates a structural
	// invariant: a map field without children, a non-map field with
	// children, an empty field name, or duplicate sibling names.
	ErrInvalidSchema = errors.New("flatview: invalid schema")

	// ErrUnknownFieldType is returned when a field carries a type tag
	// outside the closed FieldType set. Unknown types fail fast rather
	// than silently dropping the field, since a silently-dropped field
	// would corrupt the output schema invisibly.
	ErrUnknownFieldType = errors.New("flatview: unknown field type")
)

// IsInvalidSchemaErr returns true if err is or wraps ErrInvalidSchema.
func IsInvalidSchemaErr(err error) bool {
	return errors.Is(err, ErrInvalidSchema)
}

// IsUnknownFieldTypeErr returns true if err is or wraps ErrUnknownFieldType.
func IsUnknownFieldTypeErr(err error) bool {
	return errors.Is(err, ErrUnknownFieldType)
}

func invalidSchemaf(path []string, name, msg string) error {
	return fmt.Errorf("%w: field %q: %s", ErrInvalidSchema, fieldRef(path, name), msg)
}

func unknownFieldTypef(path []string, name string, t FieldType) error {
	return fmt.Errorf("%w: field %q has type %q", ErrUnknownFieldType, fieldRef(path, name), t)
}

// UnknownFieldTypeError builds the fail-fast error for an unhandled type
// tag encountered during traversal. Exposed for the sqlgen package.
func UnknownFieldTypeError(path []string, name string, t FieldType) error {
	return unknownFieldTypef(path, name, t)
}

// InvalidSchemaError builds a structural-invariant error for the given
// field. Exposed for the sqlgen package.
func InvalidSchemaError(path []string, name, msg string) error {
	return invalidSchemaf(path, name, msg)
}

func fieldRef(path []string, name string) string {
	if len(path) == 0 {
		return name
	}
	return strings.Join(path, ".") + "." + name
}

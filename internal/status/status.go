// Package status defines the recoverable error taxonomy shared by the value,
// schema, accessor and instance packages.
//
// Two failure channels exist in this module and they are kept apart:
//   - Recoverable domain failures (unparsable text, unresolvable paths,
//     unsupported conversions, invalid geometry, index out of range) are
//     returned as *Error values.
//   - Contract violations (wrong-kind getter, getter on a null value) are
//     programmer errors and never surface as *Error. See value.contractViolation.
package status

import (
	"errors"
	"fmt"
)

// Code categorizes a recoverable failure.
type Code string

const (
	// ErrCodePropertyNotFound indicates an access string or index did not resolve.
	ErrCodePropertyNotFound Code = "PROPERTY_NOT_FOUND"

	// ErrCodeClassNotFound indicates a class or struct class could not be located.
	ErrCodeClassNotFound Code = "CLASS_NOT_FOUND"

	// ErrCodeIndexOutOfRange indicates an array index outside the current bounds.
	ErrCodeIndexOutOfRange Code = "INDEX_OUT_OF_RANGE"

	// ErrCodeDataTypeMismatch indicates a value of the wrong kind or type.
	ErrCodeDataTypeMismatch Code = "DATA_TYPE_MISMATCH"

	// ErrCodeParseFailed indicates text could not be parsed as the target type.
	ErrCodeParseFailed Code = "PARSE_FAILED"

	// ErrCodeOutOfRange indicates a numeric value does not fit the target type.
	ErrCodeOutOfRange Code = "OUT_OF_RANGE"

	// ErrCodeUnsupportedConversion indicates no conversion exists between two types.
	ErrCodeUnsupportedConversion Code = "UNSUPPORTED_CONVERSION"

	// ErrCodeInvalidGeometry indicates bytes are not Well-Known Binary geometry.
	ErrCodeInvalidGeometry Code = "INVALID_GEOMETRY"

	// ErrCodeDateTimeKindUnsupported indicates a local-kind DateTime was supplied.
	ErrCodeDateTimeKindUnsupported Code = "DATETIME_KIND_UNSUPPORTED"

	// ErrCodeMalformedAccessString indicates an access string that cannot be parsed.
	ErrCodeMalformedAccessString Code = "MALFORMED_ACCESS_STRING"

	// ErrCodeReadOnly indicates a write to a read-only property that already holds a value.
	ErrCodeReadOnly Code = "READ_ONLY"

	// ErrCodeFixedSizeArray indicates a structural edit on a fixed-size array.
	ErrCodeFixedSizeArray Code = "FIXED_SIZE_ARRAY"

	// ErrCodeDuplicateName indicates an ad-hoc property name already in use.
	ErrCodeDuplicateName Code = "DUPLICATE_NAME"

	// ErrCodeInvalidAccessor indicates an accessor that cannot address a value.
	ErrCodeInvalidAccessor Code = "INVALID_ACCESSOR"

	// ErrCodeInvalidSchema indicates a schema that cannot be laid out or loaded.
	ErrCodeInvalidSchema Code = "INVALID_SCHEMA"
)

// Error is a recoverable failure with a category code.
type Error struct {
	// Code identifies the failure category.
	Code Code

	// Message is a human-readable description.
	Message string

	// Details contains additional context.
	Details map[string]string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New creates an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithDetail returns e after recording key=value in its details.
func (e *Error) WithDetail(key, value string) *Error {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) Code {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// Is reports whether err carries the given code.
// Uses errors.As to handle wrapped errors.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// IsPropertyNotFound reports whether err is a property-not-found failure.
func IsPropertyNotFound(err error) bool {
	return Is(err, ErrCodePropertyNotFound)
}

// IsClassNotFound reports whether err is a class-not-found failure.
func IsClassNotFound(err error) bool {
	return Is(err, ErrCodeClassNotFound)
}

// PropertyNotFound creates a property-not-found error for an access string.
func PropertyNotFound(accessString string) *Error {
	return New(ErrCodePropertyNotFound, "property %q not found", accessString).
		WithDetail("access_string", accessString)
}

// ClassNotFound creates a class-not-found error.
func ClassNotFound(className string) *Error {
	return New(ErrCodeClassNotFound, "class %q not found", className).
		WithDetail("class", className)
}

// IndexOutOfRange creates an index-out-of-range error.
func IndexOutOfRange(index, count int) *Error {
	return New(ErrCodeIndexOutOfRange, "index %d out of range [0,%d)", index, count).
		WithDetail("index", fmt.Sprintf("%d", index)).
		WithDetail("count", fmt.Sprintf("%d", count))
}

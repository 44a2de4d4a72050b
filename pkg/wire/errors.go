package wire

import (
	"errors"
	"fmt"
)

// ErrorClass classifies serialization failures for programmatic handling.
type ErrorClass string

const (
	// ErrorClassMissingDiscriminator indicates a wire object without a
	// "type" field.
	ErrorClassMissingDiscriminator ErrorClass = "missing_discriminator"

	// ErrorClassUnknownType indicates a "type" value with no registered
	// schema.
	ErrorClassUnknownType ErrorClass = "unknown_type"

	// ErrorClassNotEncodable indicates a field value that cannot be
	// represented in the wire encoding. Raised at encode time.
	ErrorClassNotEncodable ErrorClass = "value_not_encodable"
)

// SerializationError is a classified Dump/Load failure.
//
// Errors returned by a caller-supplied ResultHandler are never wrapped in
// this type; they propagate to the caller unchanged.
type SerializationError struct {
	// Class is the error classification.
	Class ErrorClass

	// Message is the human-readable error message.
	Message string

	// Field is the wire field involved, if applicable.
	Field string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *SerializationError) Error() string {
	if e.Field != "" {
		if e.Err != nil {
			return fmt.Sprintf("[%s] %s (field=%s): %s", e.Class, e.Message, e.Field, e.Err)
		}
		return fmt.Sprintf("[%s] %s (field=%s)", e.Class, e.Message, e.Field)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", e.Class, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Class, e.Message)
}

// Unwrap returns the underlying error for error chain inspection.
func (e *SerializationError) Unwrap() error {
	return e.Err
}

// Is implements class-based equality for errors.Is.
func (e *SerializationError) Is(target error) bool {
	t, ok := target.(*SerializationError)
	if !ok {
		return false
	}
	return e.Class == t.Class
}

// NewMissingDiscriminatorError reports a wire object without a "type" field.
func NewMissingDiscriminatorError() *SerializationError {
	return &SerializationError{
		Class:   ErrorClassMissingDiscriminator,
		Message: "wire object has no type field",
		Field:   FieldType,
	}
}

// NewUnknownTypeError reports a discriminator with no registered schema.
func NewUnknownTypeError(name string) *SerializationError {
	return &SerializationError{
		Class:   ErrorClassUnknownType,
		Message: fmt.Sprintf("no schema registered for type %q", name),
		Field:   FieldType,
	}
}

// NewNotEncodableError reports a value that cannot be wire-encoded.
func NewNotEncodableError(field string, err error) *SerializationError {
	return &SerializationError{
		Class:   ErrorClassNotEncodable,
		Message: "value is not wire-encodable",
		Field:   field,
		Err:     err,
	}
}

// IsMissingDiscriminator reports whether err is a missing-discriminator error.
func IsMissingDiscriminator(err error) bool {
	var e *SerializationError
	if errors.As(err, &e) {
		return e.Class == ErrorClassMissingDiscriminator
	}
	return false
}

// IsUnknownType reports whether err is an unknown-type error.
func IsUnknownType(err error) bool {
	var e *SerializationError
	if errors.As(err, &e) {
		return e.Class == ErrorClassUnknownType
	}
	return false
}

// IsNotEncodable reports whether err is a value-not-encodable error.
func IsNotEncodable(err error) bool {
	var e *SerializationError
	if errors.As(err, &e) {
		return e.Class == ErrorClassNotEncodable
	}
	return false
}

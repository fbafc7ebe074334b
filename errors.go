package loupe

import (
	"errors"
	"fmt"
)

// Error is the structured failure type for every loupe operation.
//
// Error kinds:
//   - Validation: a value did not decode against the bound schema node.
//     Wraps the underlying *schema.DecodeError.
//   - Unsupported schema: a discriminated union of structural variants was
//     encountered; never recoverable, the schema must be fixed.
//   - Node not found: an identity-addressed node-list operation named an
//     identity with no current element.
//   - Misuse: a lens operation that is a programmer error, such as
//     focusing an unknown field or path-navigating into a text lens.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Path is the document position the operation was bound to.
	Path string

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, when any.
	Err error
}

// ErrorCode categorizes lens-layer errors.
type ErrorCode string

const (
	// ErrCodeValidation indicates input or stored data failed to decode
	// against the schema.
	ErrCodeValidation ErrorCode = "VALIDATION_FAILED"

	// ErrCodeUnsupportedSchema indicates a discriminated union of
	// structural variants.
	ErrCodeUnsupportedSchema ErrorCode = "UNSUPPORTED_SCHEMA"

	// ErrCodeNodeNotFound indicates an identity absent from a node list.
	ErrCodeNodeNotFound ErrorCode = "NODE_NOT_FOUND"

	// ErrCodeMisuse indicates an operation the lens kind does not support.
	ErrCodeMisuse ErrorCode = "LENS_MISUSE"
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Path != "" {
		return fmt.Sprintf("%s at %q: %s", e.Code, e.Path, msg)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Unwrap exposes the underlying cause to errors.Is/As.
func (e *Error) Unwrap() error { return e.Err }

// IsValidationError returns true if err is a schema validation failure.
// Uses errors.As to handle wrapped errors.
func IsValidationError(err error) bool { return hasCode(err, ErrCodeValidation) }

// IsUnsupportedSchemaError returns true if err is a structural-union
// rejection.
func IsUnsupportedSchemaError(err error) bool { return hasCode(err, ErrCodeUnsupportedSchema) }

// IsNodeNotFoundError returns true if err reports an absent node-list
// identity.
func IsNodeNotFoundError(err error) bool { return hasCode(err, ErrCodeNodeNotFound) }

// IsMisuseError returns true if err reports an unsupported lens operation.
func IsMisuseError(err error) bool { return hasCode(err, ErrCodeMisuse) }

func hasCode(err error, code ErrorCode) bool {
	var le *Error
	if errors.As(err, &le) {
		return le.Code == code
	}
	return false
}

func validationError(path string, err error) *Error {
	return &Error{Code: ErrCodeValidation, Path: path, Err: err}
}

func unsupportedSchemaError(path string, err error) *Error {
	return &Error{Code: ErrCodeUnsupportedSchema, Path: path, Err: err}
}

func notFoundError(path string, id NodeID) *Error {
	return &Error{Code: ErrCodeNodeNotFound, Path: path, Message: fmt.Sprintf("no node with id %q", id)}
}

func misuseError(path, format string, args ...any) *Error {
	return &Error{Code: ErrCodeMisuse, Path: path, Message: fmt.Sprintf(format, args...)}
}

func childPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

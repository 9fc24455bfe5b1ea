package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the domain unwraps to one of these.
var (
	ErrDocumentNotFound       = errors.New("document not found")
	ErrInvalidTransition      = errors.New("invalid transition")
	ErrClassificationMismatch = errors.New("classification mismatch")
	ErrEmptyReason            = errors.New("empty reason")
	ErrInvalidExpiryDate      = errors.New("invalid expiry date")
	ErrVersionNotFound        = errors.New("version not found")
	ErrInvalidInput           = errors.New("invalid input")
)

// DomainError represents a domain-level error
type DomainError struct {
	Kind    error
	Message string
}

func (e DomainError) Error() string {
	return e.Message
}

func (e DomainError) Unwrap() error {
	return e.Kind
}

// NewDomainError creates a new DomainError of the given kind
func NewDomainError(kind error, format string, args ...interface{}) error {
	return DomainError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

var errorCodes = []struct {
	kind error
	code string
}{
	{ErrDocumentNotFound, "DOCUMENT_NOT_FOUND"},
	{ErrInvalidTransition, "INVALID_TRANSITION"},
	{ErrClassificationMismatch, "CLASSIFICATION_MISMATCH"},
	{ErrEmptyReason, "EMPTY_REASON"},
	{ErrInvalidExpiryDate, "INVALID_EXPIRY_DATE"},
	{ErrVersionNotFound, "VERSION_NOT_FOUND"},
	{ErrInvalidInput, "INVALID_INPUT"},
}

// ErrorCode returns a machine-readable code for a domain error, or "" if
// err is not one.
func ErrorCode(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.kind) {
			return ec.code
		}
	}
	return ""
}

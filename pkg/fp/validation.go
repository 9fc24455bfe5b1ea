package fp

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Validator is a function that validates a value and returns an error if invalid.
type Validator[T any] func(T) error

// ValidationError represents a validation error with field information.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate runs multiple validators and collects all errors.
func Validate[T any](value T, validators ...Validator[T]) Result[T] {
	var errs ValidationErrors
	for _, v := range validators {
		err := v(value)
		switch e := err.(type) {
		case nil:
		case ValidationError:
			errs = append(errs, e)
		case ValidationErrors:
			errs = append(errs, e...)
		default:
			errs = append(errs, ValidationError{Message: err.Error()})
		}
	}
	if len(errs) > 0 {
		return Failure[T](errs)
	}
	return Success(value)
}

// Field adapts a string validator to a struct field.
func Field[T any](get func(T) string, v Validator[string]) Validator[T] {
	return func(t T) error {
		return v(get(t))
	}
}

// Required validates that a string is not blank.
func Required(field string) Validator[string] {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return ValidationError{Field: field, Message: "is required"}
		}
		return nil
	}
}

// MaxLength validates maximum string length.
func MaxLength(field string, max int) Validator[string] {
	return func(s string) error {
		if utf8.RuneCountInString(s) > max {
			return ValidationError{Field: field, Message: fmt.Sprintf("must be at most %d characters", max)}
		}
		return nil
	}
}

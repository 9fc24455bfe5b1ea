package fp

import (
	"github.com/IBM/fp-go/either"
)

// Result represents a computation that can succeed with a value of type T,
// or fail with an error. This is a type alias for Either[error, T].
type Result[T any] = either.Either[error, T]

// Success creates a successful Result containing the given value.
func Success[T any](value T) Result[T] {
	return either.Right[error](value)
}

// Failure creates a failed Result containing the given error.
func Failure[T any](err error) Result[T] {
	return either.Left[T](err)
}

// FromTuple lifts a Go (value, error) pair into a Result.
func FromTuple[T any](value T, err error) Result[T] {
	if err != nil {
		return Failure[T](err)
	}
	return Success(value)
}

// IsSuccess checks if the Result is a success.
func IsSuccess[T any](result Result[T]) bool {
	return either.IsRight(result)
}

// IsFailure checks if the Result is a failure.
func IsFailure[T any](result Result[T]) bool {
	return either.IsLeft(result)
}

// GetError extracts the error from a failure, or returns nil if success.
func GetError[T any](result Result[T]) error {
	return either.Fold(
		func(err error) error { return err },
		func(_ T) error { return nil },
	)(result)
}

// GetValue extracts the value from a success, or returns zero value if failure.
func GetValue[T any](result Result[T]) T {
	var zero T
	return either.GetOrElse(func(_ error) T { return zero })(result)
}

// Unwrap converts a Result back into a (value, error) pair.
func Unwrap[T any](result Result[T]) (T, error) {
	return GetValue(result), GetError(result)
}

// Map applies a function to the value inside a Result.
func Map[A, B any](f func(A) B) func(Result[A]) Result[B] {
	return either.Map[error, A, B](f)
}

// FlatMap chains operations that return Results.
func FlatMap[A, B any](f func(A) Result[B]) func(Result[A]) Result[B] {
	return either.Chain[error, A, B](f)
}

// Fold applies one of two functions based on the Result.
func Fold[T, U any](onFailure func(error) U, onSuccess func(T) U) func(Result[T]) U {
	return either.Fold(onFailure, onSuccess)
}

// MapError transforms the error in a failure.
func MapError[T any](f func(error) error) func(Result[T]) Result[T] {
	return either.MapLeft[T, error, error](f)
}

// Package result provides a two-state computation wrapper used as the uniform
// error-propagation vehicle for every decode, encode, and path operation in
// wirevalue. Expected failures travel as values; nothing in the core panics
// unless the caller explicitly opts in with MustGet.
package result

import (
	"errors"
	"fmt"
)

// Result holds either a success payload of type T or a failure error.
// The zero value is a success carrying T's zero value.
type Result[T any] struct {
	value T
	err   error
}

// Ok returns a successful Result carrying value.
func Ok[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// Fail returns a failed Result carrying err. A nil err is normalized to a
// generic failure so that IsOk never lies about the state.
func Fail[T any](err error) Result[T] {
	if err == nil {
		err = errors.New("unknown failure")
	}
	return Result[T]{err: err}
}

// Failf returns a failed Result whose message is built with fmt.Errorf,
// so %w wrapping works as usual.
func Failf[T any](format string, args ...any) Result[T] {
	return Result[T]{err: fmt.Errorf(format, args...)}
}

// IsOk reports whether the Result holds a success payload.
func (r Result[T]) IsOk() bool {
	return r.err == nil
}

// Err returns the failure error, or nil for a success.
func (r Result[T]) Err() error {
	return r.err
}

// Get returns the success payload and a nil error, or T's zero value and the
// failure error.
func (r Result[T]) Get() (T, error) {
	return r.value, r.err
}

// GetOrElse returns the success payload, or fallback if the Result failed.
func (r Result[T]) GetOrElse(fallback T) T {
	if r.err != nil {
		return fallback
	}
	return r.value
}

// MustGet returns the success payload or panics with the failure error.
// Forcing a value out of a failed Result is a programmer error, not a
// protocol error; this is the only place the core converts a failure into
// a panic, and only because the caller asked for it.
func (r Result[T]) MustGet() T {
	if r.err != nil {
		panic(r.err)
	}
	return r.value
}

// Map transforms the success payload with f, passing a failure through
// unchanged. It is a package function because Go methods cannot introduce
// new type parameters.
func Map[T, U any](r Result[T], f func(T) U) Result[U] {
	if r.err != nil {
		return Result[U]{err: r.err}
	}
	return Ok(f(r.value))
}

// FlatMap chains a function returning another Result, short-circuiting on
// failure.
func FlatMap[T, U any](r Result[T], f func(T) Result[U]) Result[U] {
	if r.err != nil {
		return Result[U]{err: r.err}
	}
	return f(r.value)
}

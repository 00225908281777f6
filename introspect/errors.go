package introspect

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	ErrNotAggregate              = errors.New("type is not a struct")
	ErrConstructorIsNotAFunction = errors.New("constructor is not a function")
	ErrConstructorShape          = errors.New("constructor does not build the struct")
	ErrConstructorMismatch       = errors.New("constructor parameters do not match the properties")
	ErrDoublePointer             = errors.New("constructor does not support double pointers")
	ErrAlreadyDescribed          = errors.New("type metadata is already computed")
	ErrConstructorFailed         = errors.New("constructor failed")
)

// Error reports why a type cannot be described or built.
type Error struct {
	Type reflect.Type
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("introspect %s: %v", e.Type, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(t reflect.Type, format string, args ...any) *Error {
	return &Error{Type: t, Err: fmt.Errorf(format, args...)}
}

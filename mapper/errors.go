package mapper

import (
	"errors"
	"fmt"
	"reflect"

	"tree-mapper/tree"
)

var (
	ErrReflection   = errors.New("reflection error")
	ErrTypeMismatch = errors.New("type mismatch")
	ErrConversion   = errors.New("conversion error")
)

// ReflectionError reports a type the engine cannot map: an unsupported kind,
// an interface without converter, or an aggregate with a bad constructor.
type ReflectionError struct {
	Path string
	Type reflect.Type
	Err  error
}

func (e *ReflectionError) Error() string {
	return fmt.Sprintf("%s: cannot map %s: %v", e.Path, e.Type, e.Err)
}

func (e *ReflectionError) Unwrap() error { return e.Err }

func (e *ReflectionError) Is(target error) bool { return target == ErrReflection }

// TypeMismatchError reports a node whose structural kind does not fit the
// target type.
type TypeMismatchError struct {
	Path string
	Type reflect.Type
	Want tree.Kind
	Got  tree.Kind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("%s: %s expects %s, got %s", e.Path, e.Type, e.Want, e.Got)
}

func (e *TypeMismatchError) Is(target error) bool { return target == ErrTypeMismatch }

// ConversionError reports a scalar or enum literal that cannot be
// interpreted as the target type, or a converter that rejected its input.
type ConversionError struct {
	Path string
	Type reflect.Type
	Err  error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("%s: cannot convert to %s: %v", e.Path, e.Type, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

func (e *ConversionError) Is(target error) bool { return target == ErrConversion }

func reflectionError(p *TypePath, t reflect.Type, err error) error {
	return &ReflectionError{Path: p.String(), Type: t, Err: err}
}

func mismatchError(p *TypePath, t reflect.Type, want tree.Kind, got tree.Node) error {
	return &TypeMismatchError{Path: p.String(), Type: t, Want: want, Got: tree.OrNull(got).Kind()}
}

func conversionError(p *TypePath, t reflect.Type, err error) error {
	return &ConversionError{Path: p.String(), Type: t, Err: err}
}

// converterError keeps typed errors coming back from nested calls and wraps
// anything else as a conversion failure.
func converterError(p *TypePath, t reflect.Type, err error) error {
	var (
		re *ReflectionError
		me *TypeMismatchError
		ce *ConversionError
	)

	if errors.As(err, &re) || errors.As(err, &me) || errors.As(err, &ce) {
		return err
	}

	return conversionError(p, t, err)
}

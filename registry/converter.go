package registry

import (
	"errors"
	"fmt"
	"reflect"

	"tree-mapper/tree"
)

var (
	ErrDecodeUnsupported = errors.New("converter does not decode")
	ErrEncodeUnsupported = errors.New("converter does not encode")
)

// Handle gives a converter access back to the engine that called it, so
// nested values are mapped with the same registry and options.
type Handle interface {
	Decode(n tree.Node, t reflect.Type) (any, error)
	Encode(v any) (tree.Node, error)
}

// Converter maps one family of Go types to and from the tree. Decode must
// return a value assignable to t.
type Converter interface {
	Decode(n tree.Node, h Handle, t reflect.Type) (any, error)
	Encode(v any, h Handle) (tree.Node, error)
}

// Funcs adapts a pair of functions to a Converter; either may be nil.
type Funcs struct {
	DecodeFunc func(n tree.Node, h Handle, t reflect.Type) (any, error)
	EncodeFunc func(v any, h Handle) (tree.Node, error)
}

func (f Funcs) Decode(n tree.Node, h Handle, t reflect.Type) (any, error) {
	if f.DecodeFunc == nil {
		return nil, fmt.Errorf("%w: %s", ErrDecodeUnsupported, t)
	}

	return f.DecodeFunc(n, h, t)
}

func (f Funcs) Encode(v any, h Handle) (tree.Node, error) {
	if f.EncodeFunc == nil {
		return nil, fmt.Errorf("%w: %T", ErrEncodeUnsupported, v)
	}

	return f.EncodeFunc(v, h)
}

package mapper

import (
	"errors"
	"fmt"
	"path"
	"reflect"
	"runtime"
	"strings"

	"tree-mapper/registry"
	"tree-mapper/tree"
	"tree-mapper/utils"
)

var (
	ErrIsNotACaster         = errors.New("provided function is not a recognizable caster")
	ErrCasterIsNotAFunction = errors.New("provided caster is not a function")
	ErrDoublePointer        = errors.New("caster function does not support double pointers")
	ErrCasterMismatch       = errors.New("decode and encode casters do not mirror each other")
	ErrCasterRejected       = errors.New("caster rejected the value")

	errorType = reflect.TypeFor[error]()
)

// Caster is a plain conversion function between two Go types.
type Caster struct {
	Src, Dst     reflect.Type
	PackageAlias string
	Name         string
	HasBool      bool
	HasErr       bool

	fn reflect.Value
}

// ParseCaster inspects the provided function and returns a Caster if it is a
// valid caster function.
//
// Supports interfaces:
//   - func(src Type) (dst Type)
//   - func(src Type) (dst Type, bool)
//   - func(src Type) (dst Type, error)
//   - func(src Type) (dst Type, bool, error)
func ParseCaster(fn any) (Caster, error) {
	fnVal := reflect.ValueOf(fn)
	if !fnVal.IsValid() || fnVal.Kind() != reflect.Func {
		return Caster{}, ErrCasterIsNotAFunction
	}

	fnType := fnVal.Type()
	if fnType.NumIn() != 1 || fnType.NumOut() == 0 || fnType.IsVariadic() {
		return Caster{}, ErrIsNotACaster
	}

	src := fnType.In(0)
	if src.Kind() == reflect.Ptr && src.Elem().Kind() == reflect.Ptr {
		return Caster{}, ErrDoublePointer
	}

	dst := fnType.Out(0)
	if dst.Kind() == reflect.Ptr && dst.Elem().Kind() == reflect.Ptr {
		return Caster{}, ErrDoublePointer
	}

	// closures are named like "pkg.Func.func1"
	fnPC := runtime.FuncForPC(fnVal.Pointer())
	alias, name := utils.Unpack2(strings.SplitN(utils.Second(path.Split(fnPC.Name())), ".", 2))

	caster := Caster{
		Src:          src,
		Dst:          dst,
		Name:         name,
		PackageAlias: alias,
		fn:           fnVal,
	}

	switch fnType.NumOut() {
	default:
		return Caster{}, ErrIsNotACaster

	case 1:
		return caster, nil

	case 2:
		last := fnType.Out(1)

		switch {
		default:
			return Caster{}, ErrIsNotACaster
		case last.Kind() == reflect.Bool:
			caster.HasBool = true
		case last == errorType:
			caster.HasErr = true
		}

		return caster, nil

	case 3:
		tbool, terr := fnType.Out(1), fnType.Out(2)
		if tbool.Kind() != reflect.Bool || terr != errorType {
			return Caster{}, ErrIsNotACaster
		}

		caster.HasBool = true
		caster.HasErr = true

		return caster, nil
	}
}

// String returns "alias.Name".
func (c Caster) String() string {
	return c.PackageAlias + "." + c.Name
}

// Call applies the caster to arg, which must be assignable to Src.
func (c Caster) Call(arg any) (any, error) {
	in := reflect.ValueOf(arg)
	if !in.IsValid() {
		in = reflect.Zero(c.Src)
	}

	if !in.Type().AssignableTo(c.Src) {
		return nil, fmt.Errorf("%s accepts %s, got %s", c, c.Src, in.Type())
	}

	out := c.fn.Call([]reflect.Value{in})

	if c.HasErr {
		if errVal := out[len(out)-1]; !errVal.IsNil() {
			err, _ := errVal.Interface().(error)
			return nil, err
		}
	}

	if c.HasBool && !out[1].Bool() {
		return nil, fmt.Errorf("%w: %s", ErrCasterRejected, c)
	}

	return out[0].Interface(), nil
}

// casterConverter adapts a caster pair to registry.Converter. The decode
// caster reads its input through the mapper so any mappable type can be its
// source, and the encode caster output is encoded the same way.
type casterConverter struct {
	decode, encode *Caster
}

func (c casterConverter) Decode(n tree.Node, h registry.Handle, t reflect.Type) (any, error) {
	if c.decode == nil {
		return nil, registry.ErrDecodeUnsupported
	}

	arg, err := h.Decode(n, c.decode.Src)
	if err != nil {
		return nil, err
	}

	return c.decode.Call(arg)
}

func (c casterConverter) Encode(v any, h registry.Handle) (tree.Node, error) {
	if c.encode == nil {
		return nil, registry.ErrEncodeUnsupported
	}

	out, err := c.encode.Call(v)
	if err != nil {
		return nil, err
	}

	return h.Encode(out)
}

// RegisterCasters binds a converter built from plain functions. decodeFn
// turns a wire value into the target type, encodeFn turns the target back into
// the wire type. Either may be nil for a one way converter. The target type is
// the destination of decodeFn, or the source of encodeFn when decodeFn is nil.
//
//	m.RegisterCasters(time.ParseDuration, time.Duration.String)
func (m *Mapper) RegisterCasters(decodeFn, encodeFn any) error {
	var conv casterConverter

	if decodeFn != nil {
		c, err := ParseCaster(decodeFn)
		if err != nil {
			return err
		}

		conv.decode = &c
	}

	if encodeFn != nil {
		c, err := ParseCaster(encodeFn)
		if err != nil {
			return err
		}

		conv.encode = &c
	}

	var target reflect.Type

	switch {
	case conv.decode == nil && conv.encode == nil:
		return ErrCasterIsNotAFunction
	case conv.decode != nil && conv.encode != nil:
		if conv.decode.Dst != conv.encode.Src || conv.decode.Src != conv.encode.Dst {
			return fmt.Errorf("%w: %s(%s) %s and %s(%s) %s", ErrCasterMismatch,
				conv.decode, conv.decode.Src, conv.decode.Dst,
				conv.encode, conv.encode.Src, conv.encode.Dst)
		}

		target = conv.decode.Dst
	case conv.decode != nil:
		target = conv.decode.Dst
	default:
		target = conv.encode.Src
	}

	if target == conv.wireType() {
		return fmt.Errorf("%w: %s converts to itself", ErrIsNotACaster, target)
	}

	m.registry.Register(target, conv)

	return nil
}

func (c casterConverter) wireType() reflect.Type {
	if c.decode != nil {
		return c.decode.Src
	}

	return c.encode.Dst
}

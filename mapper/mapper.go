package mapper

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"

	"tree-mapper/introspect"
	"tree-mapper/registry"
	"tree-mapper/tree"
)

var ErrNotAPointer = errors.New("target must be a non-nil pointer")

// Mapper is the conversion engine. It owns its converter registry and
// metadata cache and is safe for concurrent use once set up.
type Mapper struct {
	cfg          Config
	registry     *registry.Registry
	introspector *introspect.Introspector
	logger       *slog.Logger
}

// New creates a mapper with an empty registry.
func New(cfg Config) *Mapper {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Mapper{
		cfg:          cfg,
		registry:     registry.New(logger.With("component", "registry")),
		introspector: introspect.New(logger.With("component", "introspect")),
		logger:       logger,
	}
}

// Config returns the configuration the mapper was created with.
func (m *Mapper) Config() Config { return m.cfg }

// Registry exposes the converter registry.
func (m *Mapper) Registry() *registry.Registry { return m.registry }

// Introspector exposes the metadata cache.
func (m *Mapper) Introspector() *introspect.Introspector { return m.introspector }

// Register binds a converter to t; see registry.Registry.Register.
func (m *Mapper) Register(t reflect.Type, c registry.Converter) {
	m.registry.Register(t, c)
}

// RegisterFunc binds a converter to every type accepted by match.
func (m *Mapper) RegisterFunc(match func(reflect.Type) bool, c registry.Converter) {
	m.registry.RegisterFunc(match, c)
}

// Register is Mapper.Register for the static type T.
func Register[T any](m *Mapper, c registry.Converter) {
	m.Register(reflect.TypeFor[T](), c)
}

// RegisterConstructor makes the struct built by fn a tagged aggregate.
func (m *Mapper) RegisterConstructor(fn any) error {
	return m.introspector.RegisterConstructor(fn)
}

// Decode converts n into a value of type t.
func (m *Mapper) Decode(n tree.Node, t reflect.Type) (any, error) {
	if t == nil {
		return nil, reflectionError(NewTypePath("<nil>"), t, errors.New("nil target type"))
	}

	v, err := m.decode(n, t, NewTypePath(rootName(t)))
	if err != nil {
		return nil, err
	}

	return v.Interface(), nil
}

// DecodeAs converts n into a T.
func DecodeAs[T any](m *Mapper, n tree.Node) (T, error) {
	t := reflect.TypeFor[T]()

	v, err := m.decode(n, t, NewTypePath(rootName(t)))
	if err != nil {
		var zero T
		return zero, err
	}

	out, _ := v.Interface().(T) // nil interface values fail the assertion and stay zero

	return out, nil
}

// DecodeInto decodes n into the value ptr points to. The target is left
// untouched on error.
func (m *Mapper) DecodeInto(n tree.Node, ptr any) error {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("%w: %T", ErrNotAPointer, ptr)
	}

	t := rv.Type().Elem()

	v, err := m.decode(n, t, NewTypePath(rootName(t)))
	if err != nil {
		return err
	}

	rv.Elem().Set(v)

	return nil
}

// Encode converts v into a tree, dispatching on its runtime type.
func (m *Mapper) Encode(v any) (tree.Node, error) {
	rv := reflect.ValueOf(v)

	name := "<nil>"
	if rv.IsValid() {
		name = rootName(rv.Type())
	}

	return m.encode(rv, NewTypePath(name))
}

func rootName(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if t.Name() != "" {
		return t.Name()
	}

	return t.String()
}

// handle lets converters recurse with the current path.
type handle struct {
	m    *Mapper
	path *TypePath
}

func (h handle) Decode(n tree.Node, t reflect.Type) (any, error) {
	v, err := h.m.decode(n, t, h.path)
	if err != nil {
		return nil, err
	}

	return v.Interface(), nil
}

func (h handle) Encode(v any) (tree.Node, error) {
	return h.m.encode(reflect.ValueOf(v), h.path)
}

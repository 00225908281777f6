package mapper

import (
	"encoding"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"tree-mapper/introspect"
	"tree-mapper/options"
	"tree-mapper/primitive"
	"tree-mapper/tree"
)

var (
	nodeType            = reflect.TypeFor[tree.Node]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()

	errArrayOverflow  = errors.New("sequence is longer than the array")
	errArrayUnderflow = errors.New("sequence is shorter than the array")
	errNoEnumMatch    = errors.New("no enum constant matches")
	errUnsupported    = errors.New("unsupported kind")
)

// decode returns a value of exactly type t.
func (m *Mapper) decode(n tree.Node, t reflect.Type, p *TypePath) (reflect.Value, error) {
	n = tree.OrNull(n)

	if t.Kind() == reflect.Ptr {
		return m.decodePointer(n, t, p)
	}

	if t.Implements(nodeType) {
		return decodeNode(n, t, p)
	}

	if n.Kind() == tree.KindNull {
		return reflect.Zero(t), nil
	}

	if t.Kind() == reflect.Interface && t.NumMethod() == 0 {
		return decodeOpaque(n, t), nil
	}

	if c, ok := m.registry.Find(t); ok {
		out, err := c.Decode(n, handle{m: m, path: p}, t)
		if err != nil {
			return reflect.Value{}, converterError(p, t, err)
		}

		return assignable(out, t, p)
	}

	if values, ok := enumValues(t); ok {
		return m.decodeEnum(n, t, values, p)
	}

	if primitive.FromReflectType(t) != 0 {
		return m.decodeScalar(n, t, p)
	}

	if reflect.PointerTo(t).Implements(textUnmarshalerType) {
		return decodeText(n, t, p)
	}

	switch t.Kind() {
	default:
		return reflect.Value{}, reflectionError(p, t, fmt.Errorf("%w: %s", errUnsupported, t.Kind()))
	case reflect.Interface:
		return reflect.Value{}, reflectionError(p, t, errors.New("no converter registered for interface"))
	case reflect.Slice:
		return m.decodeSlice(n, t, p)
	case reflect.Array:
		return m.decodeArray(n, t, p)
	case reflect.Map:
		return m.decodeMap(n, t, p)
	case reflect.Struct:
		return m.decodeStruct(n, t, p)
	}
}

func (m *Mapper) decodePointer(n tree.Node, t reflect.Type, p *TypePath) (reflect.Value, error) {
	if n.Kind() == tree.KindNull {
		return reflect.Zero(t), nil
	}

	// pointer types are looked up before dereferencing, as on encode
	if c, ok := m.registry.Find(t); ok {
		out, err := c.Decode(n, handle{m: m, path: p}, t)
		if err != nil {
			return reflect.Value{}, converterError(p, t, err)
		}

		return assignable(out, t, p)
	}

	// blank text is "no constant" for an optional enum
	if s, ok := n.(tree.Scalar); ok && isEnum(t.Elem()) && strings.TrimSpace(s.Text()) == "" {
		return reflect.Zero(t), nil
	}

	elem, err := m.decode(n, t.Elem(), p)
	if err != nil {
		return reflect.Value{}, err
	}

	ptr := reflect.New(t.Elem())
	ptr.Elem().Set(elem)

	return ptr, nil
}

// decodeNode passes the node through to tree.Node typed targets.
func decodeNode(n tree.Node, t reflect.Type, p *TypePath) (reflect.Value, error) {
	nv := reflect.ValueOf(n)
	if !nv.Type().AssignableTo(t) {
		want := tree.KindNull
		if zero, ok := reflect.Zero(t).Interface().(tree.Node); ok {
			want = zero.Kind()
		}

		return reflect.Value{}, mismatchError(p, t, want, n)
	}

	out := reflect.New(t).Elem()
	out.Set(nv)

	return out, nil
}

// decodeOpaque stores the plain value of n in an empty interface.
func decodeOpaque(n tree.Node, t reflect.Type) reflect.Value {
	out := reflect.New(t).Elem()
	if plain := n.Interface(); plain != nil {
		out.Set(reflect.ValueOf(plain))
	}

	return out
}

func (m *Mapper) decodeEnum(n tree.Node, t reflect.Type, values []reflect.Value, p *TypePath) (reflect.Value, error) {
	s, ok := n.(tree.Scalar)
	if !ok {
		return reflect.Value{}, mismatchError(p, t, tree.KindScalar, n)
	}

	if i, isInt := s.Value().(int64); isInt {
		if v, found := matchEnumNumber(values, i); found {
			return v, nil
		}

		return reflect.Value{}, conversionError(p, t, fmt.Errorf("%w: %d", errNoEnumMatch, i))
	}

	text := strings.TrimSpace(s.Text())
	if text == "" {
		return reflect.Zero(t), nil
	}

	if !m.cfg.Categories.Has(options.CategoryEnumString) {
		return reflect.Value{}, conversionError(p, t, fmt.Errorf("%w: text to enum", primitive.ErrNotAllowed))
	}

	v, found := matchEnum(values, text)
	if !found {
		return reflect.Value{}, conversionError(p, t, fmt.Errorf("%w: %q%s", errNoEnumMatch, text, enumHint(values, text)))
	}

	return v, nil
}

func (m *Mapper) decodeScalar(n tree.Node, t reflect.Type, p *TypePath) (reflect.Value, error) {
	s, ok := n.(tree.Scalar)
	if !ok {
		return reflect.Value{}, mismatchError(p, t, tree.KindScalar, n)
	}

	v, err := primitive.Coerce(s.Value(), t, m.cfg.Categories)
	if err != nil {
		return reflect.Value{}, conversionError(p, t, err)
	}

	return v, nil
}

func decodeText(n tree.Node, t reflect.Type, p *TypePath) (reflect.Value, error) {
	s, ok := n.(tree.Scalar)
	if !ok {
		return reflect.Value{}, mismatchError(p, t, tree.KindScalar, n)
	}

	ptr := reflect.New(t)

	u, _ := ptr.Interface().(encoding.TextUnmarshaler)
	if err := u.UnmarshalText([]byte(s.Text())); err != nil {
		return reflect.Value{}, conversionError(p, t, err)
	}

	return ptr.Elem(), nil
}

func (m *Mapper) decodeSlice(n tree.Node, t reflect.Type, p *TypePath) (reflect.Value, error) {
	seq, ok := n.(tree.Sequence)
	if !ok {
		return reflect.Value{}, mismatchError(p, t, tree.KindSequence, n)
	}

	out := reflect.MakeSlice(t, seq.Len(), seq.Len())
	for i := range seq.Len() {
		elem, err := m.decode(seq.At(i), t.Elem(), p.Index(i))
		if err != nil {
			return reflect.Value{}, err
		}

		out.Index(i).Set(elem)
	}

	return out, nil
}

// decodeArray needs options.CategorySafeArray to zero fill missing elements
// and options.CategoryUnsafeArray to cut extra ones. A sequence of the exact
// length is always accepted.
func (m *Mapper) decodeArray(n tree.Node, t reflect.Type, p *TypePath) (reflect.Value, error) {
	seq, ok := n.(tree.Sequence)
	if !ok {
		return reflect.Value{}, mismatchError(p, t, tree.KindSequence, n)
	}

	size := seq.Len()
	if size > t.Len() {
		if !m.cfg.Categories.Has(options.CategoryUnsafeArray) {
			return reflect.Value{}, conversionError(p, t, fmt.Errorf("%w: %d > %d", errArrayOverflow, size, t.Len()))
		}

		size = t.Len()
	}

	if size < t.Len() && !m.cfg.Categories.Has(options.CategorySafeArray) {
		return reflect.Value{}, conversionError(p, t, fmt.Errorf("%w: %d < %d", errArrayUnderflow, size, t.Len()))
	}

	out := reflect.New(t).Elem()
	for i := range size {
		elem, err := m.decode(seq.At(i), t.Elem(), p.Index(i))
		if err != nil {
			return reflect.Value{}, err
		}

		out.Index(i).Set(elem)
	}

	return out, nil
}

func (m *Mapper) decodeMap(n tree.Node, t reflect.Type, p *TypePath) (reflect.Value, error) {
	mapping, ok := n.(tree.Mapping)
	if !ok {
		return reflect.Value{}, mismatchError(p, t, tree.KindMapping, n)
	}

	out := reflect.MakeMapWithSize(t, mapping.Len())
	for _, e := range mapping.Entries() {
		entryPath := p.Field(e.Key)

		key, err := m.decode(tree.Text(e.Key), t.Key(), entryPath)
		if err != nil {
			return reflect.Value{}, err
		}

		value, err := m.decode(e.Value, t.Elem(), entryPath)
		if err != nil {
			return reflect.Value{}, err
		}

		out.SetMapIndex(key, value)
	}

	return out, nil
}

// decodeStruct treats a missing key as Null and ignores unknown keys.
func (m *Mapper) decodeStruct(n tree.Node, t reflect.Type, p *TypePath) (reflect.Value, error) {
	mapping, ok := n.(tree.Mapping)
	if !ok {
		return reflect.Value{}, mismatchError(p, t, tree.KindMapping, n)
	}

	meta, err := m.introspector.Describe(t)
	if err != nil {
		return reflect.Value{}, reflectionError(p, t, err)
	}

	values := make([]reflect.Value, len(meta.Properties))
	for i, prop := range meta.Properties {
		child, found := mapping.Get(prop.Name)
		if !found {
			child = tree.Null{}
		}

		v, err := m.decode(child, prop.Type, p.Field(prop.Name))
		if err != nil {
			return reflect.Value{}, err
		}

		values[i] = v
	}

	out, err := meta.Build(values)
	if err != nil {
		if errors.Is(err, introspect.ErrConstructorFailed) {
			return reflect.Value{}, conversionError(p, t, err)
		}

		return reflect.Value{}, reflectionError(p, t, err)
	}

	return out, nil
}

// assignable checks a converter result against the requested type.
func assignable(out any, t reflect.Type, p *TypePath) (reflect.Value, error) {
	if out == nil {
		return reflect.Zero(t), nil
	}

	v := reflect.ValueOf(out)
	if !v.Type().AssignableTo(t) {
		return reflect.Value{}, reflectionError(p, t, fmt.Errorf("converter returned %s", v.Type()))
	}

	if v.Type() != t {
		converted := reflect.New(t).Elem()
		converted.Set(v)

		return converted, nil
	}

	return v, nil
}

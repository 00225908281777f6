package mapper

import (
	"cmp"
	"encoding"
	"errors"
	"fmt"
	"reflect"
	"slices"

	"tree-mapper/primitive"
	"tree-mapper/tree"
)

var textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()

func (m *Mapper) encode(v reflect.Value, p *TypePath) (tree.Node, error) {
	if !v.IsValid() {
		return tree.Null{}, nil
	}

	t := v.Type()

	switch t.Kind() {
	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			return tree.Null{}, nil
		}

		if t.Kind() == reflect.Interface {
			return m.encode(v.Elem(), p)
		}
	}

	if c, ok := m.registry.Find(t); ok {
		n, err := c.Encode(v.Interface(), handle{m: m, path: p})
		if err != nil {
			return nil, converterError(p, t, err)
		}

		return tree.OrNull(n), nil
	}

	if t.Implements(nodeType) {
		n, _ := v.Interface().(tree.Node)
		return tree.OrNull(n), nil
	}

	if t.Kind() == reflect.Ptr {
		return m.encode(v.Elem(), p)
	}

	if isEnum(t) {
		return tree.Text(enumName(v)), nil
	}

	if primitive.FromReflectType(t) != 0 {
		return encodeScalar(v, p)
	}

	if t.Implements(textMarshalerType) {
		text, err := v.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return nil, conversionError(p, t, err)
		}

		return tree.Text(string(text)), nil
	}

	switch t.Kind() {
	default:
		return nil, reflectionError(p, t, fmt.Errorf("%w: %s", errUnsupported, t.Kind()))
	case reflect.Slice:
		if v.IsNil() {
			return tree.Null{}, nil
		}

		return m.encodeSequence(v, p)
	case reflect.Array:
		return m.encodeSequence(v, p)
	case reflect.Map:
		if v.IsNil() {
			return tree.Null{}, nil
		}

		return m.encodeMap(v, p)
	case reflect.Struct:
		return m.encodeStruct(v, p)
	}
}

func encodeScalar(v reflect.Value, p *TypePath) (tree.Node, error) {
	value, _, err := primitive.Scalar(v)
	if err != nil {
		return nil, conversionError(p, v.Type(), err)
	}

	switch x := value.(type) {
	case bool:
		return tree.Bool(x), nil
	case int64:
		return tree.Int(x), nil
	case float64:
		return tree.Float(x), nil
	case string:
		return tree.Text(x), nil
	default:
		return nil, conversionError(p, v.Type(), fmt.Errorf("unexpected scalar %T", value))
	}
}

func (m *Mapper) encodeSequence(v reflect.Value, p *TypePath) (tree.Node, error) {
	items := make([]tree.Node, v.Len())
	for i := range items {
		item, err := m.encode(v.Index(i), p.Index(i))
		if err != nil {
			return nil, err
		}

		items[i] = item
	}

	return tree.Seq(items...), nil
}

// encodeMap sorts entries by key text since Go maps have no order.
func (m *Mapper) encodeMap(v reflect.Value, p *TypePath) (tree.Node, error) {
	entries := make([]tree.Entry, 0, v.Len())

	iter := v.MapRange()
	for iter.Next() {
		keyNode, err := m.encode(iter.Key(), p)
		if err != nil {
			return nil, err
		}

		key, ok := keyNode.(tree.Scalar)
		if !ok {
			return nil, reflectionError(p, v.Type(), errors.New("map key does not encode to a scalar"))
		}

		value, err := m.encode(iter.Value(), p.Field(key.Text()))
		if err != nil {
			return nil, err
		}

		entries = append(entries, tree.Pair(key.Text(), value))
	}

	slices.SortFunc(entries, func(a, b tree.Entry) int { return cmp.Compare(a.Key, b.Key) })

	return tree.Map(entries...), nil
}

func (m *Mapper) encodeStruct(v reflect.Value, p *TypePath) (tree.Node, error) {
	meta, err := m.introspector.Describe(v.Type())
	if err != nil {
		return nil, reflectionError(p, v.Type(), err)
	}

	entries := make([]tree.Entry, 0, len(meta.Properties))
	for _, prop := range meta.Properties {
		field := prop.Get(v)
		if prop.OmitEmpty && field.IsZero() {
			continue
		}

		n, err := m.encode(field, p.Field(prop.Name))
		if err != nil {
			return nil, err
		}

		entries = append(entries, tree.Pair(prop.Name, n))
	}

	return tree.Map(entries...), nil
}

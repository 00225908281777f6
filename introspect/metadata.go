package introspect

import (
	"fmt"
	"reflect"
)

//go:generate go tool stringer -type=Shape -trimprefix=Shape -output=shape_string.go

// Shape tells how an aggregate is built.
type Shape int

const (
	ShapeMutable Shape = iota // zero value plus field assignment
	ShapeTagged               // canonical constructor, read-only accessors
)

// Record marks a tagged aggregate. Constructor returns a function whose
// parameters are the property types in declaration order and whose first
// result is the struct or a pointer to it, optionally followed by an error.
type Record interface {
	Constructor() any
}

// Documented types provide header lines written above the document.
type Documented interface {
	TreeHeader() []string
}

type Property struct {
	Name      string       // tree key
	Field     string       // Go field name
	Index     []int        // field index path, longer than one for promoted fields
	Type      reflect.Type // declared type
	Elem      reflect.Type // slice and array element type
	Key       reflect.Type // map key type
	Value     reflect.Type // map value type
	Opaque    bool         // elements or values are empty interfaces
	Doc       []string
	OmitEmpty bool
}

// Get reads the property from a struct value.
func (p Property) Get(v reflect.Value) reflect.Value {
	return v.FieldByIndex(p.Index)
}

// Metadata describes one struct type. It is immutable once returned.
type Metadata struct {
	Type            reflect.Type
	Shape           Shape
	Constructor     reflect.Value // tagged only
	ConstructorName string        // tagged only, e.g. "records.NewPerson"
	Properties      []Property
	Header          []string

	returnsPointer bool
	returnsError   bool
	byName         map[string]int
}

// Property looks a property up by tree key.
func (m *Metadata) Property(name string) (Property, bool) {
	i, ok := m.byName[name]
	if !ok {
		return Property{}, false
	}

	return m.Properties[i], true
}

// Build creates a value of the described type from property values given in
// property order. Invalid values stand for the zero value of the property.
// Tagged aggregates go through the constructor, mutable ones get their fields
// assigned on a zero value.
func (m *Metadata) Build(values []reflect.Value) (reflect.Value, error) {
	if len(values) != len(m.Properties) {
		return reflect.Value{}, newError(m.Type, "got %d values for %d properties", len(values), len(m.Properties))
	}

	args := make([]reflect.Value, len(values))
	for i, v := range values {
		if !v.IsValid() {
			v = reflect.Zero(m.Properties[i].Type)
		}

		args[i] = v
	}

	if m.Shape == ShapeMutable {
		out := reflect.New(m.Type).Elem()
		for i, p := range m.Properties {
			out.FieldByIndex(p.Index).Set(args[i])
		}

		return out, nil
	}

	return m.construct(args)
}

func (m *Metadata) construct(args []reflect.Value) (out reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &Error{Type: m.Type, Err: fmt.Errorf("%w: %s panicked: %v", ErrConstructorFailed, m.ConstructorName, r)}
		}
	}()

	results := m.Constructor.Call(args)

	if m.returnsError {
		if errVal := results[1]; !errVal.IsNil() {
			cause, _ := errVal.Interface().(error)
			return reflect.Value{}, &Error{Type: m.Type, Err: fmt.Errorf("%w: %w", ErrConstructorFailed, cause)}
		}
	}

	out = results[0]
	if m.returnsPointer {
		if out.IsNil() {
			return reflect.Value{}, &Error{Type: m.Type, Err: fmt.Errorf("%w: %s returned nil", ErrConstructorFailed, m.ConstructorName)}
		}

		out = out.Elem()
	}

	return out, nil
}

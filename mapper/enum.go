package mapper

import (
	"fmt"
	"reflect"
	"strings"

	"tree-mapper/internal/suggest"
)

// Enum documents the shape of enumeration types: EnumValues lists every
// constant of the type and String gives the constant's name. The mapper
// detects the method pair reflectively because Go cannot express "a slice of
// the implementing type" in a plain interface.
type Enum[T any] interface {
	EnumValues() []T
	String() string
}

var stringerType = reflect.TypeFor[fmt.Stringer]()

// enumValues returns the constants of t when t is an enumeration.
func enumValues(t reflect.Type) ([]reflect.Value, bool) {
	if t.Kind() == reflect.Interface || !t.Implements(stringerType) {
		return nil, false
	}

	method, ok := t.MethodByName("EnumValues")
	if !ok {
		return nil, false
	}

	mt := method.Type // receiver is the first parameter
	if mt.NumIn() != 1 || mt.NumOut() != 1 || mt.Out(0) != reflect.SliceOf(t) {
		return nil, false
	}

	list := method.Func.Call([]reflect.Value{reflect.Zero(t)})[0]

	values := make([]reflect.Value, list.Len())
	for i := range values {
		values[i] = list.Index(i)
	}

	return values, true
}

func isEnum(t reflect.Type) bool {
	_, ok := enumValues(t)
	return ok
}

func enumName(v reflect.Value) string {
	s, _ := v.Interface().(fmt.Stringer)
	return s.String()
}

// matchEnum finds the constant whose name equals text ignoring case.
func matchEnum(values []reflect.Value, text string) (reflect.Value, bool) {
	for _, v := range values {
		if strings.EqualFold(enumName(v), text) {
			return v, true
		}
	}

	return reflect.Value{}, false
}

// enumHint names the closest constant to a text that matched none.
func enumHint(values []reflect.Value, text string) string {
	names := make([]string, len(values))
	for i, v := range values {
		names[i] = enumName(v)
	}

	return suggest.Hint(text, names)
}

// matchEnumNumber finds the constant with the given underlying integer value.
func matchEnumNumber(values []reflect.Value, n int64) (reflect.Value, bool) {
	for _, v := range values {
		switch v.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if v.Int() == n {
				return v, true
			}
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if n >= 0 && v.Uint() == uint64(n) {
				return v, true
			}
		}
	}

	return reflect.Value{}, false
}

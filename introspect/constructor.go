package introspect

import (
	"fmt"
	"path"
	"reflect"
	"runtime"

	"tree-mapper/utils"
)

type constructor struct {
	fn             reflect.Value
	target         reflect.Type
	name           string
	returnsPointer bool
	returnsError   bool
}

var errorType = reflect.TypeFor[error]()

// parseConstructor inspects fn and accepts:
//   - func(p1, ..., pn) T
//   - func(p1, ..., pn) *T
//   - func(p1, ..., pn) (T, error)
//   - func(p1, ..., pn) (*T, error)
func parseConstructor(fn any) (constructor, error) {
	if fn == nil {
		return constructor{}, ErrConstructorIsNotAFunction
	}

	fnVal := reflect.ValueOf(fn)
	fnType := fnVal.Type()
	if fnType.Kind() != reflect.Func || fnVal.IsNil() {
		return constructor{}, ErrConstructorIsNotAFunction
	}

	if fnType.IsVariadic() || fnType.NumOut() == 0 || fnType.NumOut() > 2 {
		return constructor{}, fmt.Errorf("%w: %s", ErrConstructorShape, fnType)
	}

	c := constructor{fn: fnVal, target: fnType.Out(0), name: funcName(fnVal)}
	if c.target.Kind() == reflect.Ptr {
		if c.target.Elem().Kind() == reflect.Ptr {
			return constructor{}, ErrDoublePointer
		}

		c.target = c.target.Elem()
		c.returnsPointer = true
	}

	if c.target.Kind() != reflect.Struct {
		return constructor{}, fmt.Errorf("%w: %s returns %s", ErrConstructorShape, c.name, fnType.Out(0))
	}

	if fnType.NumOut() == 2 {
		if fnType.Out(1) != errorType {
			return constructor{}, fmt.Errorf("%w: %s second result must be error", ErrConstructorShape, c.name)
		}

		c.returnsError = true
	}

	return c, nil
}

// checkParameters verifies the constructor takes the properties in order.
func (c constructor) checkParameters(props []Property) error {
	fnType := c.fn.Type()
	if fnType.NumIn() != len(props) {
		return fmt.Errorf("%w: %s takes %d parameters, %s has %d properties",
			ErrConstructorMismatch, c.name, fnType.NumIn(), c.target, len(props))
	}

	for i, p := range props {
		if !p.Type.AssignableTo(fnType.In(i)) {
			return fmt.Errorf("%w: parameter %d of %s is %s, property %q is %s",
				ErrConstructorMismatch, i, c.name, fnType.In(i), p.Name, p.Type)
		}
	}

	return nil
}

// funcName returns "pkg.Func" for a function value.
func funcName(fn reflect.Value) string {
	fnPC := runtime.FuncForPC(fn.Pointer())
	if fnPC == nil {
		return fn.Type().String()
	}

	// last path element holds "pkg.Func" or "pkg.Type.Method"
	return utils.Second(path.Split(fnPC.Name()))
}

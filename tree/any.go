package tree

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"slices"
)

var (
	ErrUnsupportedValue = errors.New("unsupported plain value")
	ErrNonTextKey       = errors.New("mapping key is not text")
)

// FromAny converts a plain decoder value into a node. Accepted values are
// nil, bool, every integer and float type, string, []any, map[string]any,
// map[any]any with text keys and Node. Map keys are sorted.
func FromAny(v any) (Node, error) {
	switch x := v.(type) {
	case nil:
		return Null{}, nil
	case Node:
		return OrNull(x), nil
	case bool:
		return Bool(x), nil
	case string:
		return Text(x), nil
	case int:
		return Int(int64(x)), nil
	case int8:
		return Int(int64(x)), nil
	case int16:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint:
		return fromUint(uint64(x))
	case uint8:
		return Int(int64(x)), nil
	case uint16:
		return Int(int64(x)), nil
	case uint32:
		return Int(int64(x)), nil
	case uint64:
		return fromUint(x)
	case float32:
		return Float(float64(x)), nil
	case float64:
		return Float(x), nil
	case []byte:
		return Text(string(x)), nil
	case []any:
		items := make([]Node, len(x))
		for i, item := range x {
			n, err := FromAny(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}

			items[i] = n
		}

		return Seq(items...), nil
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}

		slices.Sort(keys)

		entries := make([]Entry, len(keys))
		for i, k := range keys {
			n, err := FromAny(x[k])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}

			entries[i] = Pair(k, n)
		}

		return Map(entries...), nil
	case map[any]any:
		plain := make(map[string]any, len(x))
		for k, item := range x {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %v (%T)", ErrNonTextKey, k, k)
			}

			plain[key] = item
		}

		return FromAny(plain)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedValue, reflect.TypeOf(v))
	}
}

func fromUint(u uint64) (Node, error) {
	if u > math.MaxInt64 {
		return nil, fmt.Errorf("%w: %d overflows int64", ErrUnsupportedValue, u)
	}

	return Int(int64(u)), nil
}

package primitive

import (
	"reflect"
	"strconv"
	"time"
)

//go:generate go tool stringer -type=KindEnum -output=kind_string.go

// KindEnum classifies the Go types the mapper treats as scalars.
type KindEnum int

const (
	_ KindEnum = iota // skip zero value, use it as a default (invalid) value for KindEnum

	KindInt
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindBool
	KindString
	KindTime
	KindDuration

	// KindTotal is a constant that represents the total number of kinds defined
	KindTotal = int(iota)
)

// IsNumber reports integer and floating point kinds.
func (k KindEnum) IsNumber() bool {
	return k.IsInteger() || k.IsFloat()
}

func (k KindEnum) IsInteger() bool  { return k.IsSigned() || k.IsUnsigned() }
func (k KindEnum) IsFloat() bool    { return k == KindFloat32 || k == KindFloat64 }
func (k KindEnum) IsSigned() bool   { return KindInt <= k && k <= KindInt64 }
func (k KindEnum) IsUnsigned() bool { return KindUint <= k && k <= KindUint64 }

// Bits returns the width of a numeric kind; int and uint follow the platform.
func (k KindEnum) Bits() int {
	switch k {
	default:
		panic("only numeric kinds has meaningful bits amount, but requested for: " + k.String())
	case KindInt, KindUint:
		return strconv.IntSize
	case KindInt8, KindUint8:
		return 8
	case KindInt16, KindUint16:
		return 16
	case KindInt32, KindUint32, KindFloat32:
		return 32
	case KindInt64, KindUint64, KindFloat64:
		return 64
	}
}

var (
	timeType     = reflect.TypeFor[time.Time]()
	durationType = reflect.TypeFor[time.Duration]()
)

// FromReflectType classifies rtype as a scalar kind. Defined types such as
// `type Port uint16` classify as their underlying kind; time.Time and
// time.Duration have kinds of their own. Non-scalar types yield zero.
func FromReflectType(rtype reflect.Type) KindEnum {
	if rtype == nil {
		return 0
	}

	// well known struct-like scalars first
	switch rtype {
	case timeType:
		return KindTime
	case durationType:
		return KindDuration
	}

	switch rtype.Kind() {
	default:
		return 0
	case reflect.Int:
		return KindInt
	case reflect.Int8:
		return KindInt8
	case reflect.Int16:
		return KindInt16
	case reflect.Int32:
		return KindInt32
	case reflect.Int64:
		return KindInt64
	case reflect.Uint:
		return KindUint
	case reflect.Uint8:
		return KindUint8
	case reflect.Uint16:
		return KindUint16
	case reflect.Uint32:
		return KindUint32
	case reflect.Uint64:
		return KindUint64
	case reflect.Float32:
		return KindFloat32
	case reflect.Float64:
		return KindFloat64
	case reflect.Bool:
		return KindBool
	case reflect.String:
		return KindString
	}
}

// FromValue classifies the runtime value of a tree scalar
// (bool, int64, float64 or string).
func FromValue(v any) KindEnum {
	switch v.(type) {
	case bool:
		return KindBool
	case int64:
		return KindInt64
	case float64:
		return KindFloat64
	case string:
		return KindString
	default:
		return 0
	}
}

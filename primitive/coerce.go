package primitive

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"tree-mapper/options"
	"tree-mapper/utils"
)

var (
	ErrUnsupportedKind = errors.New("unsupported scalar kind")
	ErrNotAllowed      = errors.New("coercion is not allowed")
	ErrInvalidBool     = errors.New("invalid boolean value")
	ErrOutOfRange      = errors.New("value out of range")
)

// Coerce converts a tree scalar value (bool, int64, float64 or string) into a
// value of dst, which must classify as a scalar kind. The conversion must be
// enabled by allowed unless src already has the kind of dst.
func Coerce(src any, dst reflect.Type, allowed options.CategoryEnum) (reflect.Value, error) {
	srcKind := FromValue(src)
	if srcKind == 0 {
		return reflect.Value{}, fmt.Errorf("%w: source %T", ErrUnsupportedKind, src)
	}

	dstKind := FromReflectType(dst)
	if dstKind == 0 {
		return reflect.Value{}, fmt.Errorf("%w: target %s", ErrUnsupportedKind, dst)
	}

	if srcKind == KindString && dstKind == KindInt32 {
		return coerceRune(src.(string), dst, allowed)
	}

	pair := ConversionPair{srcKind, dstKind}
	if !Allowed(pair, allowed) && !(allowed.Has(options.CategorySafeNumber) && fitsExactly(src, dstKind)) {
		return reflect.Value{}, fmt.Errorf("%w: %s to %s", ErrNotAllowed, srcKind, dstKind)
	}

	out := reflect.New(dst).Elem()

	var err error

	switch {
	case dstKind == KindTime:
		err = setTime(out, src)
	case dstKind == KindDuration:
		err = setDuration(out, src)
	case dstKind == KindBool:
		err = setBool(out, src)
	case dstKind == KindString:
		out.SetString(formatText(src))
	case dstKind.IsSigned():
		err = setInt(out, src, dstKind)
	case dstKind.IsUnsigned():
		err = setUint(out, src, dstKind)
	case dstKind.IsFloat():
		err = setFloat(out, src, dstKind)
	}

	if err != nil {
		return reflect.Value{}, err
	}

	return out, nil
}

// coerceRune prefers the textual number form and falls back to the code point
// of a single character text.
func coerceRune(text string, dst reflect.Type, allowed options.CategoryEnum) (reflect.Value, error) {
	out := reflect.New(dst).Elem()

	var numErr error

	if allowed.Has(options.CategoryTextNumber) {
		numErr = setInt(out, text, KindInt32)
		if numErr == nil {
			return out, nil
		}
	}

	if allowed.Has(options.CategoryTextRune) && utf8.RuneCountInString(text) == 1 {
		r, _ := utf8.DecodeRuneInString(text)
		out.SetInt(int64(r))

		return out, nil
	}

	if numErr != nil {
		return reflect.Value{}, numErr
	}

	return reflect.Value{}, fmt.Errorf("%w: %s to %s", ErrNotAllowed, KindString, KindInt32)
}

// fitsExactly reports whether a numeric scalar survives the conversion into
// kind without losing anything.
func fitsExactly(src any, kind KindEnum) bool {
	if !kind.IsNumber() {
		return false
	}

	switch v := src.(type) {
	case int64:
		switch {
		case kind.IsSigned():
			bits := kind.Bits()
			return bits == 64 || utils.IsInRange(-(int64(1)<<(bits-1)), v, int64(1)<<(bits-1)-1)
		case kind.IsUnsigned():
			bits := kind.Bits()
			return v >= 0 && (bits == 64 || v < 1<<bits)
		case kind == KindFloat32:
			return utils.IsInRange[int64](-(1 << 24), v, 1<<24)
		default:
			return utils.IsInRange[int64](-(1 << 53), v, 1<<53)
		}
	case float64:
		if kind == KindFloat32 {
			return float64(float32(v)) == v
		}

		if v != math.Trunc(v) || math.Abs(v) > 1<<53 {
			return false
		}

		return fitsExactly(int64(v), kind)
	default:
		return false
	}
}

func setBool(out reflect.Value, src any) error {
	switch v := src.(type) {
	case bool:
		out.SetBool(v)
	case int64:
		// 0, 1 - valid, other numbers is error
		switch v {
		default:
			return fmt.Errorf("%w: only numbers 0 and 1 are allowed for bool, got: %d", ErrInvalidBool, v)
		case 0:
			out.SetBool(false)
		case 1:
			out.SetBool(true)
		}
	case string:
		b, err := ParseBool(v)
		if err != nil {
			return err
		}

		out.SetBool(b)
	}

	return nil
}

// ParseBool accepts true/false, yes/no and on/off in any letter case.
func ParseBool(text string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	default:
		return false, fmt.Errorf("%w: only strings true/false, yes/no, on/off are allowed for bool, got: %q",
			ErrInvalidBool, text)
	case "true", "yes", "on":
		return true, nil
	case "false", "no", "off":
		return false, nil
	}
}

func setInt(out reflect.Value, src any, kind KindEnum) error {
	switch v := src.(type) {
	case bool:
		if v {
			out.SetInt(1)
		} else {
			out.SetInt(0)
		}
	case int64:
		out.SetInt(v) // truncated to the target width
	case float64:
		out.SetInt(int64(v))
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, kind.Bits())
		if err != nil {
			return fmt.Errorf("parse %s: %w", kind, err)
		}

		out.SetInt(n)
	}

	return nil
}

func setUint(out reflect.Value, src any, kind KindEnum) error {
	switch v := src.(type) {
	case bool:
		if v {
			out.SetUint(1)
		} else {
			out.SetUint(0)
		}
	case int64:
		out.SetUint(uint64(v))
	case float64:
		out.SetUint(uint64(v))
	case string:
		n, err := strconv.ParseUint(strings.TrimSpace(v), 10, kind.Bits())
		if err != nil {
			return fmt.Errorf("parse %s: %w", kind, err)
		}

		out.SetUint(n)
	}

	return nil
}

func setFloat(out reflect.Value, src any, kind KindEnum) error {
	switch v := src.(type) {
	case int64:
		out.SetFloat(float64(v))
	case float64:
		out.SetFloat(v)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), kind.Bits())
		if err != nil {
			return fmt.Errorf("parse %s: %w", kind, err)
		}

		out.SetFloat(f)
	}

	return nil
}

func setTime(out reflect.Value, src any) error {
	var t time.Time

	switch v := src.(type) {
	case int64:
		t = time.Unix(v, 0).UTC()
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("parse %s: %w", KindTime, err)
		}

		t = parsed
	}

	out.Set(reflect.ValueOf(t))

	return nil
}

func setDuration(out reflect.Value, src any) error {
	var d time.Duration

	switch v := src.(type) {
	case int64:
		d = time.Duration(v)
	case float64:
		d = time.Duration(v * float64(time.Second))
	case string:
		parsed, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("parse %s: %w", KindDuration, err)
		}

		d = parsed
	}

	out.SetInt(int64(d))

	return nil
}

func formatText(src any) string {
	switch v := src.(type) {
	case bool:
		return strconv.FormatBool(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Scalar turns a value of a scalar kind into its canonical tree scalar value:
// bool, int64, float64 or string. Times are rendered as RFC3339Nano text and
// durations as Go duration text.
func Scalar(v reflect.Value) (any, KindEnum, error) {
	kind := FromReflectType(v.Type())

	switch {
	case kind == 0:
		return nil, 0, fmt.Errorf("%w: %s", ErrUnsupportedKind, v.Type())
	case kind == KindTime:
		t, _ := v.Interface().(time.Time)
		return t.Format(time.RFC3339Nano), kind, nil
	case kind == KindDuration:
		return time.Duration(v.Int()).String(), kind, nil
	case kind == KindBool:
		return v.Bool(), kind, nil
	case kind == KindString:
		return v.String(), kind, nil
	case kind.IsSigned():
		return v.Int(), kind, nil
	case kind.IsUnsigned():
		u := v.Uint()
		if u > math.MaxInt64 {
			return nil, kind, fmt.Errorf("%w: %d does not fit into int64", ErrOutOfRange, u)
		}

		return int64(u), kind, nil
	default:
		return v.Float(), kind, nil
	}
}

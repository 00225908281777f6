package persist

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
)

var ErrRefKind = errors.New("reference kind is not supported by the engine")

// Ref points at a stored payload.
type Ref interface {
	Describe() string
}

// PathRef addresses a file-backed payload.
type PathRef struct {
	Path string
}

// Describe returns the cleaned absolute path.
func (r PathRef) Describe() string {
	abs, err := filepath.Abs(r.Path)
	if err != nil {
		return filepath.Clean(r.Path)
	}

	return abs
}

// KeyRef addresses a payload in a keyed store.
type KeyRef struct {
	Key string
}

func (r KeyRef) Describe() string { return r.Key }

func Path(path string) PathRef { return PathRef{Path: path} }

// Key builds a KeyRef from any identifier rendered with fmt.
func Key(key any) KeyRef { return KeyRef{Key: fmt.Sprint(key)} }

// PathOf returns the path of a PathRef.
func PathOf(ref Ref) (string, error) {
	r, ok := ref.(PathRef)
	if !ok {
		return "", fmt.Errorf("%w: want PathRef, got %T", ErrRefKind, ref)
	}

	return r.Path, nil
}

// KeyOf returns the key of a KeyRef.
func KeyOf(ref Ref) (string, error) {
	r, ok := ref.(KeyRef)
	if !ok {
		return "", fmt.Errorf("%w: want KeyRef, got %T", ErrRefKind, ref)
	}

	return r.Key, nil
}

// Defaults calls defaults, or returns the zero value of t when it is nil.
func Defaults(t reflect.Type, defaults func() any) any {
	if defaults != nil {
		return defaults()
	}

	return reflect.Zero(t).Interface()
}

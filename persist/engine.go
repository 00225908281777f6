package persist

import (
	"context"
	"reflect"
)

// Engine reads and writes mapped values. Implementations are safe for
// concurrent use.
type Engine interface {
	// Load decodes the payload at ref into a value of type t. A missing
	// payload is replaced by the result of defaults, which is saved and
	// returned.
	Load(ctx context.Context, ref Ref, t reflect.Type, defaults func() any) (any, error)
	Save(ctx context.Context, ref Ref, v any) error
	Exists(ctx context.Context, ref Ref) (bool, error)
	Delete(ctx context.Context, ref Ref) error
	Close() error
}

package registry

import (
	"log/slog"
	"reflect"
	"sync"
)

type binding struct {
	iface     reflect.Type // set for interface registrations
	match     func(reflect.Type) bool
	converter Converter
}

type resolution struct {
	converter Converter
	found     bool
}

// Registry is safe for concurrent use. The zero value is not usable, use New.
type Registry struct {
	// mu guards exact and bindings; Find holds it for reading while it
	// stores into cache, so a Register can never be overtaken by a stale
	// cache write.
	mu       sync.RWMutex
	exact    map[reflect.Type]Converter
	bindings []binding
	cache    sync.Map // reflect.Type -> resolution

	logger *slog.Logger
}

// New creates an empty registry. A nil logger discards records.
func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Registry{
		exact:  map[reflect.Type]Converter{},
		logger: logger,
	}
}

// Register binds c to t, replacing an earlier binding of the same type. An
// interface type also binds every type implementing it.
func (r *Registry) Register(t reflect.Type, c Converter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, replaced := r.exact[t]
	r.exact[t] = c

	if t.Kind() == reflect.Interface {
		if replaced {
			for i := range r.bindings {
				if r.bindings[i].iface == t {
					r.bindings[i].converter = c
				}
			}
		} else {
			r.bindings = append(r.bindings, binding{
				iface:     t,
				match:     func(candidate reflect.Type) bool { return candidate.Implements(t) },
				converter: c,
			})
		}
	}

	r.invalidate("type", t.String())
}

// RegisterType is Register for the static type T.
func RegisterType[T any](r *Registry, c Converter) {
	r.Register(reflect.TypeFor[T](), c)
}

// RegisterFunc binds c to every type accepted by match. Bindings are tried in
// registration order after exact registrations.
func (r *Registry) RegisterFunc(match func(reflect.Type) bool, c Converter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.bindings = append(r.bindings, binding{match: match, converter: c})
	r.invalidate("type", "predicate")
}

// Find resolves the converter for t. The answer, including "none", is cached
// until the next registration.
func (r *Registry) Find(t reflect.Type) (Converter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if cached, ok := r.cache.Load(t); ok {
		res := cached.(resolution)
		return res.converter, res.found
	}

	res := r.resolve(t)
	r.cache.Store(t, res)

	return res.converter, res.found
}

func (r *Registry) resolve(t reflect.Type) resolution {
	if c, ok := r.exact[t]; ok {
		return resolution{converter: c, found: true}
	}

	for _, b := range r.bindings {
		if b.match(t) {
			return resolution{converter: b.converter, found: true}
		}
	}

	return resolution{}
}

// Len returns the number of bindings: exact types plus predicates.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := len(r.exact)
	for _, b := range r.bindings {
		if b.iface == nil {
			n++
		}
	}

	return n
}

// Reset drops every binding.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.exact = map[reflect.Type]Converter{}
	r.bindings = nil
	r.invalidate("reason", "reset")
}

// invalidate must be called with mu held for writing.
func (r *Registry) invalidate(key, value string) {
	r.cache.Clear()
	r.logger.Debug("converter cache invalidated", key, value)
}

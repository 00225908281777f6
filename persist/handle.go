package persist

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"sync"
	"sync/atomic"
)

// Handle is a reloadable view over one stored value. Get never blocks;
// Reload, Save, SetAndSave and Delete are serialised.
type Handle[T any] struct {
	ref      Ref
	engine   Engine
	defaults func() T

	value atomic.Pointer[T]
	mu    sync.Mutex

	listenersMu sync.RWMutex
	listeners   []func(T)
}

// Open loads the value at ref, writing defaults first when nothing is stored.
// A nil defaults function stands for the zero value.
func Open[T any](ctx context.Context, engine Engine, ref Ref, defaults func() T) (*Handle[T], error) {
	if defaults == nil {
		defaults = func() T {
			var zero T
			return zero
		}
	}

	h := &Handle[T]{
		ref:      ref,
		engine:   engine,
		defaults: defaults,
	}

	v, err := h.load(ctx)
	if err != nil {
		return nil, err
	}

	h.value.Store(&v)

	return h, nil
}

func (h *Handle[T]) load(ctx context.Context) (T, error) {
	var zero T

	raw, err := h.engine.Load(ctx, h.ref, reflect.TypeFor[T](), func() any { return h.defaults() })
	if err != nil {
		return zero, err
	}

	if raw == nil {
		return zero, nil
	}

	v, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("load %s: engine returned %T", h.ref.Describe(), raw)
	}

	return v, nil
}

func (h *Handle[T]) Ref() Ref { return h.ref }

// Get returns the current value.
func (h *Handle[T]) Get() T {
	return *h.value.Load()
}

// Reload reads the stored value again, publishes it and then calls every
// listener with it on the calling goroutine.
func (h *Handle[T]) Reload(ctx context.Context) (T, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	v, err := h.load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	h.value.Store(&v)

	h.listenersMu.RLock()
	listeners := slices.Clone(h.listeners)
	h.listenersMu.RUnlock()

	for _, l := range listeners {
		l(v)
	}

	return v, nil
}

func (h *Handle[T]) Exists(ctx context.Context) (bool, error) {
	return h.engine.Exists(ctx, h.ref)
}

// Save writes the current value.
func (h *Handle[T]) Save(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.engine.Save(ctx, h.ref, h.Get())
}

// SetAndSave replaces the current value and writes it. The new value is kept
// even when the write fails.
func (h *Handle[T]) SetAndSave(ctx context.Context, v T) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.value.Store(&v)

	return h.engine.Save(ctx, h.ref, v)
}

// Delete removes the stored value and resets the handle to the defaults.
func (h *Handle[T]) Delete(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.engine.Delete(ctx, h.ref); err != nil {
		return err
	}

	v := h.defaults()
	h.value.Store(&v)

	return nil
}

// OnReload registers a listener called after every successful Reload.
func (h *Handle[T]) OnReload(fn func(T)) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()

	h.listeners = append(h.listeners, fn)
}

// Close closes the engine.
func (h *Handle[T]) Close() error {
	return h.engine.Close()
}

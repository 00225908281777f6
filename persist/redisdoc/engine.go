// Package redisdoc stores values as MessagePack documents in Redis. A value
// that does not encode to a mapping is wrapped as {value: ...} so every
// stored document is a mapping.
package redisdoc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/redis/go-redis/v9"

	"tree-mapper/mapper"
	"tree-mapper/persist"
	"tree-mapper/tree"
)

const wrapKey = "value"

var ErrNilClient = errors.New("redisdoc: client is nil")

// Engine is a persist.Engine for KeyRef references.
type Engine struct {
	client      redis.UniversalClient
	m           *mapper.Mapper
	prefix      string
	ttl         time.Duration
	closeClient bool
	logger      *slog.Logger
}

var _ persist.Engine = (*Engine)(nil)

type Option func(*Engine)

// WithPrefix prepends prefix to every key.
func WithPrefix(prefix string) Option {
	return func(e *Engine) { e.prefix = prefix }
}

// WithTTL expires documents after ttl; zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(e *Engine) { e.ttl = ttl }
}

// WithCloseClient makes Close close the Redis client too.
func WithCloseClient() Option {
	return func(e *Engine) { e.closeClient = true }
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

func New(client redis.UniversalClient, m *mapper.Mapper, opts ...Option) (*Engine, error) {
	if client == nil {
		return nil, ErrNilClient
	}

	e := &Engine{client: client, m: m}
	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}

	return e, nil
}

func (e *Engine) key(ref persist.Ref) (string, error) {
	key, err := persist.KeyOf(ref)
	if err != nil {
		return "", err
	}

	return e.prefix + key, nil
}

func (e *Engine) Load(ctx context.Context, ref persist.Ref, t reflect.Type, defaults func() any) (any, error) {
	key, err := e.key(ref)
	if err != nil {
		return nil, err
	}

	data, err := e.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		v := persist.Defaults(t, defaults)
		if err := e.Save(ctx, ref, v); err != nil {
			return nil, err
		}

		e.logger.Info("defaults written", "key", key)

		return v, nil
	}

	if err != nil {
		return nil, fmt.Errorf("redisdoc: get %s: %w", key, err)
	}

	doc, err := tree.DecodeMsgpack(data)
	if err != nil {
		return nil, fmt.Errorf("redisdoc: %s: %w", key, err)
	}

	v, err := e.m.Decode(unwrap(doc), t)
	if err != nil {
		return nil, fmt.Errorf("redisdoc: decode %s: %w", key, err)
	}

	return v, nil
}

func (e *Engine) Save(ctx context.Context, ref persist.Ref, v any) error {
	key, err := e.key(ref)
	if err != nil {
		return err
	}

	n, err := e.m.Encode(v)
	if err != nil {
		return fmt.Errorf("redisdoc: encode %s: %w", key, err)
	}

	data, err := tree.EncodeMsgpack(wrap(n))
	if err != nil {
		return fmt.Errorf("redisdoc: encode %s: %w", key, err)
	}

	if err := e.client.Set(ctx, key, data, e.ttl).Err(); err != nil {
		return fmt.Errorf("redisdoc: set %s: %w", key, err)
	}

	e.logger.Debug("document saved", "key", key, "bytes", len(data))

	return nil
}

func (e *Engine) Exists(ctx context.Context, ref persist.Ref) (bool, error) {
	key, err := e.key(ref)
	if err != nil {
		return false, err
	}

	n, err := e.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redisdoc: exists %s: %w", key, err)
	}

	return n > 0, nil
}

func (e *Engine) Delete(ctx context.Context, ref persist.Ref) error {
	key, err := e.key(ref)
	if err != nil {
		return err
	}

	if err := e.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redisdoc: del %s: %w", key, err)
	}

	return nil
}

func (e *Engine) Close() error {
	if !e.closeClient {
		return nil
	}

	return e.client.Close()
}

func wrap(n tree.Node) tree.Mapping {
	if m, ok := n.(tree.Mapping); ok {
		return m
	}

	return tree.Map(tree.Pair(wrapKey, n))
}

// unwrap undoes wrap. A mapping whose only key is "value" is always taken for
// a wrapped document.
func unwrap(doc tree.Node) tree.Node {
	m, ok := doc.(tree.Mapping)
	if !ok || m.Len() != 1 {
		return doc
	}

	if v, found := m.Get(wrapKey); found {
		return v
	}

	return doc
}

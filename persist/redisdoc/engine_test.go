package redisdoc_test

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tree-mapper/mapper"
	"tree-mapper/persist"
	"tree-mapper/persist/redisdoc"
	"tree-mapper/tree"
)

type Profile struct {
	Name   string         `tree:"name"`
	Level  int            `tree:"level"`
	Scores []float64      `tree:"scores"`
	Meta   map[string]any `tree:"meta"`
}

func newEngine(t *testing.T, opts ...redisdoc.Option) (*redisdoc.Engine, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	e, err := redisdoc.New(client, mapper.New(mapper.DefaultConfig()), opts...)
	require.NoError(t, err)

	return e, mr
}

func TestLoadWritesDefaults(t *testing.T) {
	ctx := context.Background()
	e, mr := newEngine(t, redisdoc.WithPrefix("profile:"))

	h, err := persist.Open(ctx, e, persist.Key(42), func() Profile { return Profile{Name: "guest", Level: 1} })
	require.NoError(t, err)
	assert.Equal(t, Profile{Name: "guest", Level: 1}, h.Get())

	assert.True(t, mr.Exists("profile:42"))

	raw, err := mr.Get("profile:42")
	require.NoError(t, err)

	doc, err := tree.DecodeMsgpack([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "level", "scores", "meta"}, doc.(tree.Mapping).Keys())
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t)

	in := Profile{
		Name:   "ann",
		Level:  7,
		Scores: []float64{1.5, 2},
		Meta:   map[string]any{"admin": true, "tags": []any{"x"}},
	}
	require.NoError(t, e.Save(ctx, persist.Key("ann"), in))

	out, err := e.Load(ctx, persist.Key("ann"), reflect.TypeFor[Profile](), nil)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestWrappedValues(t *testing.T) {
	ctx := context.Background()
	e, mr := newEngine(t)

	require.NoError(t, e.Save(ctx, persist.Key("tags"), []string{"a", "b"}))

	raw, err := mr.Get("tags")
	require.NoError(t, err)

	doc, err := tree.DecodeMsgpack([]byte(raw))
	require.NoError(t, err)
	assert.True(t, tree.Equal(tree.Map(tree.Pair("value", tree.Seq(tree.Text("a"), tree.Text("b")))), doc))

	out, err := e.Load(ctx, persist.Key("tags"), reflect.TypeFor[[]string](), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, out)
}

func TestExistsDeleteTTL(t *testing.T) {
	ctx := context.Background()
	e, mr := newEngine(t, redisdoc.WithTTL(time.Minute))

	ref := persist.Key("session")

	ok, err := e.Exists(ctx, ref)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, e.Save(ctx, ref, Profile{Name: "s"}))
	assert.Equal(t, time.Minute, mr.TTL("session"))

	ok, err = e.Exists(ctx, ref)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, e.Delete(ctx, ref))
	assert.False(t, mr.Exists("session"))
}

func TestErrors(t *testing.T) {
	ctx := context.Background()
	e, mr := newEngine(t)

	_, err := e.Load(ctx, persist.Path("/tmp/x.yaml"), reflect.TypeFor[Profile](), nil)
	assert.ErrorIs(t, err, persist.ErrRefKind)

	require.NoError(t, mr.Set("broken", "\xc1"))
	_, err = e.Load(ctx, persist.Key("broken"), reflect.TypeFor[Profile](), nil)
	assert.Error(t, err)

	_, err = redisdoc.New(nil, mapper.New(mapper.DefaultConfig()))
	assert.ErrorIs(t, err, redisdoc.ErrNilClient)

	mr.SetError("server down")
	_, err = e.Exists(ctx, persist.Key("any"))
	assert.Error(t, err)
}

func TestCloseClient(t *testing.T) {
	e, _ := newEngine(t, redisdoc.WithCloseClient())
	require.NoError(t, e.Close())

	_, err := e.Exists(context.Background(), persist.Key("k"))
	assert.ErrorIs(t, err, redis.ErrClosed)
}

package tree_test

import (
	"math"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tree-mapper/tree"
)

func sample() tree.Node {
	return tree.Map(
		tree.Pair("zeta", tree.Text("last letter first")),
		tree.Pair("count", tree.Int(3)),
		tree.Pair("ratio", tree.Float(2)),
		tree.Pair("enabled", tree.Bool(true)),
		tree.Pair("quoted", tree.Text("true")),
		tree.Pair("nothing", tree.Null{}),
		tree.Pair("items", tree.Seq(
			tree.Map(tree.Pair("id", tree.Int(-1))),
			tree.Text("multi\nline"),
		)),
		tree.Pair("empty", tree.Map()),
	)
}

func TestYAMLRoundTrip(t *testing.T) {
	t.Parallel()

	data, err := tree.MarshalYAML(sample())
	require.NoError(t, err)

	back, err := tree.UnmarshalYAML(data)
	require.NoError(t, err)
	assert.True(t, tree.Equal(sample(), back), "yaml:\n%s\ntree: %s", data, spew.Sdump(back))
}

func TestUnmarshalYAML(t *testing.T) {
	t.Parallel()

	t.Run("empty document", func(t *testing.T) {
		t.Parallel()

		n, err := tree.UnmarshalYAML(nil)
		require.NoError(t, err)
		assert.Equal(t, tree.KindNull, n.Kind())
	})

	t.Run("scalars", func(t *testing.T) {
		t.Parallel()

		n, err := tree.UnmarshalYAML([]byte("a: 0x10\nb: .inf\nc: ~\nd: yes\ne: 2024-01-02\nf: 'quoted'\n"))
		require.NoError(t, err)

		want := tree.Map(
			tree.Pair("a", tree.Int(16)),
			tree.Pair("b", tree.Float(math.Inf(1))),
			tree.Pair("c", tree.Null{}),
			tree.Pair("d", tree.Text("yes")),
			tree.Pair("e", tree.Text("2024-01-02")),
			tree.Pair("f", tree.Text("quoted")),
		)
		assert.True(t, tree.Equal(want, n), "got %s", n)
	})

	t.Run("anchors and merge keys", func(t *testing.T) {
		t.Parallel()

		src := `
base: &base
  host: localhost
  port: 80
site:
  <<: *base
  port: 8080
copy: *base
`
		n, err := tree.UnmarshalYAML([]byte(src))
		require.NoError(t, err)

		m := n.(tree.Mapping)
		site, _ := m.Get("site")
		assert.True(t, tree.Equal(tree.Map(
			tree.Pair("host", tree.Text("localhost")),
			tree.Pair("port", tree.Int(8080)),
		), site), "got %s", site)

		base, _ := m.Get("base")
		cp, _ := m.Get("copy")
		assert.True(t, tree.Equal(base, cp))
	})

	t.Run("non text key", func(t *testing.T) {
		t.Parallel()

		_, err := tree.UnmarshalYAML([]byte("? [a, b]\n: c\n"))
		assert.ErrorIs(t, err, tree.ErrNonTextKey)
	})

	t.Run("syntax error", func(t *testing.T) {
		t.Parallel()

		_, err := tree.UnmarshalYAML([]byte("a: [b"))
		assert.Error(t, err)
	})
}

func TestMarshalYAMLLayout(t *testing.T) {
	t.Parallel()

	data, err := tree.MarshalYAML(tree.Map(
		tree.Pair("name", tree.Text("Ann")),
		tree.Pair("tags", tree.Seq(tree.Text("a"))),
		tree.Pair("ratio", tree.Float(1)),
	))
	require.NoError(t, err)
	assert.Equal(t, "name: Ann\ntags:\n  - a\nratio: 1.0\n", string(data))
}

func TestJSONRoundTrip(t *testing.T) {
	t.Parallel()

	data, err := tree.MarshalJSON(sample())
	require.NoError(t, err)

	back, err := tree.UnmarshalJSON(data)
	require.NoError(t, err)
	assert.True(t, tree.Equal(sample(), back), "json: %s", data)
}

func TestJSON(t *testing.T) {
	t.Parallel()

	t.Run("member order is kept", func(t *testing.T) {
		t.Parallel()

		n, err := tree.UnmarshalJSON([]byte(`{"b": 1, "a": [true, null, 1.25, "<x>"]}`))
		require.NoError(t, err)

		out, err := tree.MarshalJSON(n)
		require.NoError(t, err)
		assert.Equal(t, `{"b":1,"a":[true,null,1.25,"<x>"]}`, string(out))
	})

	t.Run("indent", func(t *testing.T) {
		t.Parallel()

		out, err := tree.MarshalJSONIndent(tree.Map(tree.Pair("a", tree.Int(1))), "", "  ")
		require.NoError(t, err)
		assert.Equal(t, "{\n  \"a\": 1\n}", string(out))
	})

	t.Run("trailing data", func(t *testing.T) {
		t.Parallel()

		_, err := tree.UnmarshalJSON([]byte(`{} {}`))
		assert.ErrorIs(t, err, tree.ErrTrailingData)
	})

	t.Run("nan", func(t *testing.T) {
		t.Parallel()

		_, err := tree.MarshalJSON(tree.Float(math.NaN()))
		assert.ErrorIs(t, err, tree.ErrUnsupportedValue)
	})
}

func TestMsgpackRoundTrip(t *testing.T) {
	t.Parallel()

	data, err := tree.EncodeMsgpack(sample())
	require.NoError(t, err)

	back, err := tree.DecodeMsgpack(data)
	require.NoError(t, err)
	assert.True(t, tree.Equal(sample(), back), "tree: %s", spew.Sdump(back))

	_, err = tree.DecodeMsgpack(append(data, data...))
	assert.ErrorIs(t, err, tree.ErrTrailingData)
}

func TestMsgpackTruncatedHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{name: "array32", data: []byte{0xdd, 0x7f, 0xff, 0xff, 0xff}},
		{name: "map32", data: []byte{0xdf, 0x7f, 0xff, 0xff, 0xff}},
		{name: "array16", data: []byte{0xdc, 0xff, 0xff, 0x01}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := tree.DecodeMsgpack(tt.data)
			require.Error(t, err)
		})
	}
}

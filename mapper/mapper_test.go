package mapper_test

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tree-mapper/mapper"
	"tree-mapper/options"
	"tree-mapper/registry"
	"tree-mapper/tree"
)

type Person struct {
	Name string   `tree:"name"`
	Age  int      `tree:"age"`
	Tags []string `tree:"tags"`
}

func NewPerson(name string, age int, tags []string) Person {
	return Person{Name: name, Age: age, Tags: tags}
}

func (Person) Constructor() any { return NewPerson }

type Status int

const (
	StatusUnknown Status = iota
	StatusActive
	StatusInactive
)

func (Status) EnumValues() []Status { return []Status{StatusUnknown, StatusActive, StatusInactive} }

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "ACTIVE"
	case StatusInactive:
		return "INACTIVE"
	default:
		return "UNKNOWN"
	}
}

type Inner struct {
	Level int `yaml:"level"`
}

type Service struct {
	Name    string            `yaml:"name"`
	Port    uint16            `yaml:"port"`
	Ratio   float64           `yaml:"ratio"`
	Enabled bool              `yaml:"enabled"`
	Timeout time.Duration     `yaml:"timeout"`
	Started time.Time         `yaml:"started"`
	Status  Status            `yaml:"status"`
	Tags    []string          `yaml:"tags"`
	Limits  map[string]int    `yaml:"limits"`
	Extra   map[string]any    `yaml:"extra"`
	Inner   *Inner            `yaml:"inner,omitempty"`
	Matrix  [2]int            `yaml:"matrix"`
	Labels  map[int]string    `yaml:"labels"`
	Aliases []Person          `yaml:"aliases"`
	Raw     tree.Node         `yaml:"raw"`
	Opt     *Status           `yaml:"opt"`
	Notes   map[string]string `yaml:"notes,omitempty"`
}

type Shape interface {
	Area() float64
}

type Square struct {
	Side float64 `tree:"side"`
}

func (s Square) Area() float64 { return s.Side * s.Side }

type Celsius float64

type Box struct {
	Size int `tree:"size"`
}

// Labeler is implemented by *Tag only.
type Labeler interface {
	Label() string
}

type Tag struct {
	Name string `tree:"name"`
}

func (t *Tag) Label() string { return t.Name }

// textConverter renders any value as a tagged text scalar, so tests can tell
// which converter ran.
func textConverter(tag string) registry.Funcs {
	return registry.Funcs{
		DecodeFunc: func(n tree.Node, _ registry.Handle, t reflect.Type) (any, error) {
			return reflect.Zero(t).Interface(), nil
		},
		EncodeFunc: func(v any, _ registry.Handle) (tree.Node, error) {
			return tree.Text(fmt.Sprintf("%s:%v", tag, v)), nil
		},
	}
}

func assertTree(t *testing.T, want, got tree.Node) {
	t.Helper()

	if !tree.Equal(want, got) {
		t.Errorf("trees differ\nwant: %s\ngot:  %s\n%s", want, got, spew.Sdump(got))
	}
}

func personTree() tree.Mapping {
	return tree.Map(
		tree.Pair("name", tree.Text("Ann")),
		tree.Pair("age", tree.Int(30)),
		tree.Pair("tags", tree.Seq(tree.Text("a"), tree.Text("b"))),
	)
}

func ExampleMapper_Encode() {
	m := mapper.New(mapper.DefaultConfig())

	n, err := m.Encode(NewPerson("Ann", 30, []string{"a", "b"}))
	if err != nil {
		panic(err)
	}

	fmt.Println(n)
	// Output:
	// {"name": "Ann", "age": 30, "tags": ["a", "b"]}
}

func ExampleDecodeAs() {
	m := mapper.New(mapper.DefaultConfig())

	p, err := mapper.DecodeAs[Person](m, tree.Map(
		tree.Pair("name", tree.Text("Bob")),
		tree.Pair("age", tree.Text("41")),
	))
	if err != nil {
		panic(err)
	}

	fmt.Printf("%s %d %v\n", p.Name, p.Age, p.Tags == nil)
	// Output:
	// Bob 41 true
}

func TestPersonScenario(t *testing.T) {
	t.Parallel()

	m := mapper.New(mapper.DefaultConfig())
	ann := NewPerson("Ann", 30, []string{"a", "b"})

	n, err := m.Encode(ann)
	require.NoError(t, err)
	assertTree(t, personTree(), n)

	back, err := m.Decode(personTree(), reflect.TypeFor[Person]())
	require.NoError(t, err)
	assert.Equal(t, ann, back)
}

func TestTypeMismatchScenario(t *testing.T) {
	t.Parallel()

	m := mapper.New(mapper.DefaultConfig())

	v, err := m.Decode(tree.Text("x"), reflect.TypeFor[Person]())
	require.Error(t, err)
	assert.Nil(t, v)
	assert.ErrorIs(t, err, mapper.ErrTypeMismatch)

	var mismatch *mapper.TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "Person", mismatch.Path)
	assert.Equal(t, tree.KindMapping, mismatch.Want)
	assert.Equal(t, tree.KindScalar, mismatch.Got)
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	active := StatusActive
	in := Service{
		Name:    "api",
		Port:    8080,
		Ratio:   0.25,
		Enabled: true,
		Timeout: 90 * time.Second,
		Started: time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC),
		Status:  StatusInactive,
		Tags:    []string{"x", "y"},
		Limits:  map[string]int{"cpu": 2, "mem": 512},
		Extra:   map[string]any{"debug": true, "depth": int64(3), "list": []any{"a", 1.5}},
		Inner:   &Inner{Level: 4},
		Matrix:  [2]int{7, 9},
		Labels:  map[int]string{1: "one", 2: "two"},
		Aliases: []Person{NewPerson("Ann", 30, []string{"a"})},
		Raw:     tree.Map(tree.Pair("k", tree.Seq(tree.Int(1), tree.Null{}))),
		Opt:     &active,
	}

	m := mapper.New(mapper.DefaultConfig())

	n, err := m.Encode(in)
	require.NoError(t, err)

	out, err := mapper.DecodeAs[Service](m, n)
	require.NoError(t, err, spew.Sdump(n))

	assert.True(t, tree.Equal(in.Raw, out.Raw))
	in.Raw, out.Raw = nil, nil
	assert.Equal(t, in, out)
}

func TestEncodeLayout(t *testing.T) {
	t.Parallel()

	m := mapper.New(mapper.DefaultConfig())

	n, err := m.Encode(Service{
		Name:    "api",
		Timeout: time.Minute,
		Status:  StatusActive,
		Limits:  map[string]int{"b": 2, "a": 1},
		Labels:  map[int]string{2: "two", 1: "one"},
	})
	require.NoError(t, err)

	mapping, ok := n.(tree.Mapping)
	require.True(t, ok)

	assert.Equal(t, []string{
		"name", "port", "ratio", "enabled", "timeout", "started", "status", "tags",
		"limits", "extra", "matrix", "labels", "aliases", "raw", "opt",
	}, mapping.Keys(), "omitempty properties are skipped")

	get := func(key string) tree.Node {
		v, _ := mapping.Get(key)
		return v
	}

	assertTree(t, tree.Text("1m0s"), get("timeout"))
	assertTree(t, tree.Text("ACTIVE"), get("status"))
	assertTree(t, tree.Null{}, get("tags"))
	assertTree(t, tree.Null{}, get("opt"))
	assertTree(t, tree.Map(tree.Pair("a", tree.Int(1)), tree.Pair("b", tree.Int(2))), get("limits"))
	assertTree(t, tree.Map(tree.Pair("1", tree.Text("one")), tree.Pair("2", tree.Text("two"))), get("labels"))
	assertTree(t, tree.Seq(tree.Int(0), tree.Int(0)), get("matrix"))
}

func TestConverterPrecedence(t *testing.T) {
	t.Parallel()

	m := mapper.New(mapper.DefaultConfig())

	mapper.Register[Person](m, registry.Funcs{
		DecodeFunc: func(n tree.Node, h registry.Handle, _ reflect.Type) (any, error) {
			s, ok := n.(tree.Scalar)
			if !ok {
				return nil, errors.New("person must be text")
			}

			name, age, _ := strings.Cut(s.Text(), "/")

			years, err := h.Decode(tree.Text(age), reflect.TypeFor[int]())
			if err != nil {
				return nil, err
			}

			return NewPerson(name, years.(int), nil), nil
		},
		EncodeFunc: func(v any, _ registry.Handle) (tree.Node, error) {
			p := v.(Person)
			return tree.Text(fmt.Sprintf("%s/%d", p.Name, p.Age)), nil
		},
	})
	mapper.Register[Status](m, textConverter("status"))

	n, err := m.Encode(NewPerson("Ann", 30, nil))
	require.NoError(t, err)
	assertTree(t, tree.Text("Ann/30"), n)

	p, err := mapper.DecodeAs[Person](m, tree.Text("Bob/41"))
	require.NoError(t, err)
	assert.Equal(t, NewPerson("Bob", 41, nil), p)

	_, err = mapper.DecodeAs[Person](m, personTree())
	assert.ErrorIs(t, err, mapper.ErrConversion)

	_, err = mapper.DecodeAs[Person](m, tree.Text("Bob/old"))
	var conv *mapper.ConversionError
	require.ErrorAs(t, err, &conv)
	assert.Equal(t, reflect.TypeFor[int](), conv.Type, "nested errors keep their own type")

	n, err = m.Encode(StatusActive)
	require.NoError(t, err)
	assertTree(t, tree.Text("status:ACTIVE"), n)
}

func TestExactOverSuper(t *testing.T) {
	t.Parallel()

	for _, exactFirst := range []bool{true, false} {
		t.Run(fmt.Sprintf("exact first %v", exactFirst), func(t *testing.T) {
			t.Parallel()

			m := mapper.New(mapper.DefaultConfig())

			if exactFirst {
				mapper.Register[Square](m, textConverter("exact"))
				mapper.Register[Shape](m, textConverter("super"))
			} else {
				mapper.Register[Shape](m, textConverter("super"))
				mapper.Register[Square](m, textConverter("exact"))
			}

			n, err := m.Encode(Square{Side: 2})
			require.NoError(t, err)
			assertTree(t, tree.Text("exact:{2}"), n)
		})
	}
}

func TestSupertypeConverter(t *testing.T) {
	t.Parallel()

	m := mapper.New(mapper.DefaultConfig())
	mapper.Register[Shape](m, registry.Funcs{
		DecodeFunc: func(n tree.Node, h registry.Handle, _ reflect.Type) (any, error) {
			side, err := h.Decode(n, reflect.TypeFor[float64]())
			if err != nil {
				return nil, err
			}

			return Square{Side: side.(float64)}, nil
		},
		EncodeFunc: func(v any, _ registry.Handle) (tree.Node, error) {
			return tree.Float(v.(Shape).Area()), nil
		},
	})

	n, err := m.Encode(Square{Side: 3})
	require.NoError(t, err)
	assertTree(t, tree.Float(9), n)

	shape, err := mapper.DecodeAs[Shape](m, tree.Int(2))
	require.NoError(t, err)
	assert.Equal(t, Square{Side: 2}, shape)

	_, err = m.Decode(tree.Int(2), reflect.TypeFor[fmt.Stringer]())
	assert.ErrorIs(t, err, mapper.ErrReflection, "interfaces need a converter")
}

func TestPointerConverters(t *testing.T) {
	t.Parallel()

	t.Run("exact pointer type", func(t *testing.T) {
		t.Parallel()

		m := mapper.New(mapper.DefaultConfig())
		mapper.Register[*Box](m, registry.Funcs{
			DecodeFunc: func(n tree.Node, h registry.Handle, _ reflect.Type) (any, error) {
				text, err := h.Decode(n, reflect.TypeFor[string]())
				if err != nil {
					return nil, err
				}

				return &Box{Size: len(text.(string))}, nil
			},
			EncodeFunc: func(v any, _ registry.Handle) (tree.Node, error) {
				return tree.Text(strings.Repeat("#", v.(*Box).Size)), nil
			},
		})

		n, err := m.Encode(&Box{Size: 3})
		require.NoError(t, err)
		assertTree(t, tree.Text("###"), n)

		box, err := mapper.DecodeAs[*Box](m, n)
		require.NoError(t, err)
		assert.Equal(t, &Box{Size: 3}, box)

		none, err := mapper.DecodeAs[*Box](m, tree.Null{})
		require.NoError(t, err)
		assert.Nil(t, none, "converters never see Null")

		plain, err := mapper.DecodeAs[Box](m, tree.Map(tree.Pair("size", tree.Int(4))))
		require.NoError(t, err)
		assert.Equal(t, Box{Size: 4}, plain, "the value type keeps the built-in rules")
	})

	t.Run("interface implemented by the pointer", func(t *testing.T) {
		t.Parallel()

		m := mapper.New(mapper.DefaultConfig())
		mapper.Register[Labeler](m, registry.Funcs{
			DecodeFunc: func(n tree.Node, _ registry.Handle, target reflect.Type) (any, error) {
				require.Equal(t, reflect.TypeFor[*Tag](), target)
				return &Tag{Name: n.(tree.Scalar).Text()}, nil
			},
			EncodeFunc: func(v any, _ registry.Handle) (tree.Node, error) {
				return tree.Text(v.(Labeler).Label()), nil
			},
		})

		n, err := m.Encode(&Tag{Name: "x"})
		require.NoError(t, err)
		assertTree(t, tree.Text("x"), n)

		tag, err := mapper.DecodeAs[*Tag](m, n)
		require.NoError(t, err)
		assert.Equal(t, &Tag{Name: "x"}, tag)
	})
}

func TestCacheInvalidation(t *testing.T) {
	t.Parallel()

	m := mapper.New(mapper.DefaultConfig())

	n, err := m.Encode(Celsius(21.5))
	require.NoError(t, err)
	assertTree(t, tree.Float(21.5), n)

	mapper.Register[Celsius](m, textConverter("temp"))

	n, err = m.Encode(Celsius(21.5))
	require.NoError(t, err)
	assertTree(t, tree.Text("temp:21.5"), n)

	m.Registry().Reset()

	n, err = m.Encode(Celsius(21.5))
	require.NoError(t, err)
	assertTree(t, tree.Float(21.5), n)
}

func TestEnumDecoding(t *testing.T) {
	t.Parallel()

	m := mapper.New(mapper.DefaultConfig())

	for _, text := range []string{"active", "ACTIVE", "Active", "  active "} {
		s, err := mapper.DecodeAs[Status](m, tree.Text(text))
		require.NoError(t, err, text)
		assert.Equal(t, StatusActive, s, text)
	}

	s, err := mapper.DecodeAs[Status](m, tree.Int(2))
	require.NoError(t, err)
	assert.Equal(t, StatusInactive, s)

	for _, blank := range []tree.Node{tree.Text(""), tree.Text("   "), tree.Null{}} {
		p, err := mapper.DecodeAs[*Status](m, blank)
		require.NoError(t, err)
		assert.Nil(t, p, blank.String())
	}

	_, err = mapper.DecodeAs[Status](m, tree.Text("paused"))
	assert.ErrorIs(t, err, mapper.ErrConversion)
	assert.NotContains(t, err.Error(), "did you mean")

	_, err = mapper.DecodeAs[Status](m, tree.Text("activ"))
	require.ErrorIs(t, err, mapper.ErrConversion)
	assert.Contains(t, err.Error(), `"activ" (did you mean ACTIVE?)`)

	_, err = mapper.DecodeAs[Status](m, tree.Int(9))
	assert.ErrorIs(t, err, mapper.ErrConversion)

	_, err = mapper.DecodeAs[Status](m, tree.Seq())
	assert.ErrorIs(t, err, mapper.ErrTypeMismatch)

	strict := mapper.New(mapper.Config{Categories: options.CategoryDefault.Without(options.CategoryEnumString)})
	_, err = mapper.DecodeAs[Status](strict, tree.Text("active"))
	assert.ErrorIs(t, err, mapper.ErrConversion)
}

func TestMissingKey(t *testing.T) {
	t.Parallel()

	type Mutable struct {
		Name string `tree:"name"`
		Age  int    `tree:"age"`
	}

	m := mapper.New(mapper.DefaultConfig())
	in := tree.Map(tree.Pair("name", tree.Text("Ann")), tree.Pair("unknown", tree.Bool(true)))

	mut, err := mapper.DecodeAs[Mutable](m, in)
	require.NoError(t, err)
	assert.Equal(t, Mutable{Name: "Ann"}, mut)

	p, err := mapper.DecodeAs[Person](m, in)
	require.NoError(t, err)
	assert.Equal(t, NewPerson("Ann", 0, nil), p)
}

func TestOpaqueCollections(t *testing.T) {
	t.Parallel()

	type Bag struct {
		Items []any          `tree:"items"`
		Attrs map[string]any `tree:"attrs"`
		Any   any            `tree:"any"`
	}

	m := mapper.New(mapper.DefaultConfig())

	bag, err := mapper.DecodeAs[Bag](m, tree.Map(
		tree.Pair("items", tree.Seq(tree.Text("a"), tree.Int(1), tree.Map(tree.Pair("k", tree.Bool(true))), tree.Null{})),
		tree.Pair("attrs", tree.Map(tree.Pair("list", tree.Seq(tree.Float(0.5))))),
		tree.Pair("any", tree.Text("x")),
	))
	require.NoError(t, err)

	assert.Equal(t, []any{"a", int64(1), map[string]any{"k": true}, nil}, bag.Items)
	assert.Equal(t, map[string]any{"list": []any{0.5}}, bag.Attrs)
	assert.Equal(t, "x", bag.Any)
}

func TestTreeTargets(t *testing.T) {
	t.Parallel()

	m := mapper.New(mapper.DefaultConfig())

	n, err := mapper.DecodeAs[tree.Node](m, personTree())
	require.NoError(t, err)
	assertTree(t, personTree(), n)

	null, err := mapper.DecodeAs[tree.Node](m, nil)
	require.NoError(t, err)
	assert.Equal(t, tree.Null{}, null)

	mapping, err := mapper.DecodeAs[tree.Mapping](m, personTree())
	require.NoError(t, err)
	assert.Equal(t, 3, mapping.Len())

	_, err = mapper.DecodeAs[tree.Sequence](m, personTree())
	var mismatch *mapper.TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, tree.KindSequence, mismatch.Want)
}

func TestScalars(t *testing.T) {
	t.Parallel()

	m := mapper.New(mapper.DefaultConfig())

	tests := []struct {
		name string
		in   tree.Node
		typ  reflect.Type
		want any
	}{
		{"int from text", tree.Text("42"), reflect.TypeFor[int](), 42},
		{"uint8 fits", tree.Int(200), reflect.TypeFor[uint8](), uint8(200)},
		{"narrowing truncates", tree.Int(300), reflect.TypeFor[uint8](), uint8(44)},
		{"float from int", tree.Int(3), reflect.TypeFor[float64](), 3.0},
		{"bool from yes", tree.Text("yes"), reflect.TypeFor[bool](), true},
		{"text from number", tree.Int(7), reflect.TypeFor[string](), "7"},
		{"duration text", tree.Text("2h45m"), reflect.TypeFor[time.Duration](), 2*time.Hour + 45*time.Minute},
		{"duration seconds", tree.Float(1.5), reflect.TypeFor[time.Duration](), 1500 * time.Millisecond},
		{"rune", tree.Text("x"), reflect.TypeFor[rune](), 'x'},
		{"rune number", tree.Text("7"), reflect.TypeFor[rune](), rune(7)},
		{"null is zero", tree.Null{}, reflect.TypeFor[int](), 0},
		{"pointer", tree.Int(5), reflect.TypeFor[*int](), func() *int { i := 5; return &i }()},
		{"nil pointer", tree.Null{}, reflect.TypeFor[*int](), (*int)(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := m.Decode(tt.in, tt.typ)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScalarErrors(t *testing.T) {
	t.Parallel()

	m := mapper.New(mapper.DefaultConfig())

	_, err := m.Decode(tree.Text("maybe"), reflect.TypeFor[bool]())
	assert.ErrorIs(t, err, mapper.ErrConversion)

	_, err = m.Decode(tree.Seq(), reflect.TypeFor[int]())
	assert.ErrorIs(t, err, mapper.ErrTypeMismatch)

	safe := mapper.New(mapper.Config{Categories: options.CategoryDefault.Without(options.CategoryUnsafeNumber)})
	_, err = safe.Decode(tree.Int(300), reflect.TypeFor[uint8]())
	assert.ErrorIs(t, err, mapper.ErrConversion)

	_, err = m.Encode(uint64(1 << 63))
	assert.ErrorIs(t, err, mapper.ErrConversion)

	_, err = m.Encode(make(chan int))
	assert.ErrorIs(t, err, mapper.ErrReflection)

	_, err = m.Decode(tree.Int(1), reflect.TypeFor[func()]())
	assert.ErrorIs(t, err, mapper.ErrReflection)
}

func TestErrorPaths(t *testing.T) {
	t.Parallel()

	m := mapper.New(mapper.DefaultConfig())

	tests := []struct {
		name string
		in   tree.Node
		path string
		want error
	}{
		{
			name: "property",
			in:   tree.Map(tree.Pair("age", tree.Text("old"))),
			path: "Person.age",
			want: mapper.ErrConversion,
		},
		{
			name: "element",
			in:   tree.Map(tree.Pair("tags", tree.Seq(tree.Text("a"), tree.Map()))),
			path: "Person.tags[1]",
			want: mapper.ErrTypeMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := mapper.DecodeAs[Person](m, tt.in)
			require.ErrorIs(t, err, tt.want)
			assert.True(t, strings.HasPrefix(err.Error(), tt.path+":"), err.Error())
		})
	}
}

func TestArrays(t *testing.T) {
	t.Parallel()

	m := mapper.New(mapper.DefaultConfig())

	short, err := mapper.DecodeAs[[3]int](m, tree.Seq(tree.Int(1), tree.Int(2)))
	require.NoError(t, err)
	assert.Equal(t, [3]int{1, 2, 0}, short)

	long := tree.Seq(tree.Int(1), tree.Int(2), tree.Int(3), tree.Int(4))

	_, err = mapper.DecodeAs[[3]int](m, long)
	assert.ErrorIs(t, err, mapper.ErrConversion)

	unsafe := mapper.New(mapper.Config{Categories: options.CategoryAll})
	cut, err := mapper.DecodeAs[[3]int](unsafe, long)
	require.NoError(t, err)
	assert.Equal(t, [3]int{1, 2, 3}, cut)

	exact := mapper.New(mapper.Config{Categories: options.CategoryDefault.Without(options.CategorySafeArray)})

	_, err = mapper.DecodeAs[[3]int](exact, tree.Seq(tree.Int(1), tree.Int(2)))
	assert.ErrorIs(t, err, mapper.ErrConversion)
	assert.Contains(t, err.Error(), "shorter than the array")

	full, err := mapper.DecodeAs[[2]int](exact, tree.Seq(tree.Int(1), tree.Int(2)))
	require.NoError(t, err)
	assert.Equal(t, [2]int{1, 2}, full)
}

func TestMaps(t *testing.T) {
	t.Parallel()

	m := mapper.New(mapper.DefaultConfig())

	labels, err := mapper.DecodeAs[map[int]string](m, tree.Map(
		tree.Pair("2", tree.Text("two")),
		tree.Pair("1", tree.Text("one")),
	))
	require.NoError(t, err)
	assert.Equal(t, map[int]string{1: "one", 2: "two"}, labels)

	_, err = mapper.DecodeAs[map[int]string](m, tree.Map(tree.Pair("x", tree.Text("?"))))
	var conv *mapper.ConversionError
	require.ErrorAs(t, err, &conv)
	assert.Equal(t, "map[int]string.x", conv.Path)

	_, err = m.Encode(map[Square]int{{Side: 1}: 1})
	assert.ErrorIs(t, err, mapper.ErrReflection)
}

func TestDecodeInto(t *testing.T) {
	t.Parallel()

	m := mapper.New(mapper.DefaultConfig())

	var p Person
	require.NoError(t, m.DecodeInto(personTree(), &p))
	assert.Equal(t, NewPerson("Ann", 30, []string{"a", "b"}), p)

	before := p
	require.Error(t, m.DecodeInto(tree.Text("x"), &p))
	assert.Equal(t, before, p, "target is untouched on error")

	assert.ErrorIs(t, m.DecodeInto(personTree(), p), mapper.ErrNotAPointer)
	assert.ErrorIs(t, m.DecodeInto(personTree(), (*Person)(nil)), mapper.ErrNotAPointer)
}

type Account struct {
	Owner   string `tree:"owner"`
	Balance int    `tree:"balance"`
}

func NewAccount(owner string, balance int) (*Account, error) {
	if balance < 0 {
		return nil, errors.New("negative balance")
	}

	return &Account{Owner: owner, Balance: balance}, nil
}

func TestRegisteredConstructor(t *testing.T) {
	t.Parallel()

	m := mapper.New(mapper.DefaultConfig())
	require.NoError(t, m.RegisterConstructor(NewAccount))

	a, err := mapper.DecodeAs[Account](m, tree.Map(tree.Pair("owner", tree.Text("Ann")), tree.Pair("balance", tree.Int(5))))
	require.NoError(t, err)
	assert.Equal(t, Account{Owner: "Ann", Balance: 5}, a)

	_, err = mapper.DecodeAs[Account](m, tree.Map(tree.Pair("balance", tree.Int(-1))))
	assert.ErrorIs(t, err, mapper.ErrConversion)
	assert.ErrorContains(t, err, "negative balance")

	err = m.RegisterConstructor(NewAccount)
	assert.Error(t, err, "the type is already described")
}

func TestConcurrentUse(t *testing.T) {
	t.Parallel()

	m := mapper.New(mapper.DefaultConfig())

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			ann := NewPerson("Ann", i, []string{"a"})

			n, err := m.Encode(ann)
			assert.NoError(t, err)

			back, err := mapper.DecodeAs[Person](m, n)
			assert.NoError(t, err)
			assert.Equal(t, ann, back)
		}()
	}

	wg.Wait()
}

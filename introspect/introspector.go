package introspect

import (
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"sync"
)

// nameTags are consulted in order for the tree key of a field.
var nameTags = []string{"tree", "yaml", "json"}

// Introspector memoizes Metadata per type. It is safe for concurrent use.
type Introspector struct {
	cache sync.Map // reflect.Type -> *Metadata

	mu           sync.RWMutex
	constructors map[reflect.Type]constructor

	logger *slog.Logger
}

// New creates an introspector. A nil logger discards records.
func New(logger *slog.Logger) *Introspector {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Introspector{
		constructors: map[reflect.Type]constructor{},
		logger:       logger,
	}
}

// RegisterConstructor makes the struct built by fn a tagged aggregate. It
// must happen before the type is first described.
func (i *Introspector) RegisterConstructor(fn any) error {
	c, err := parseConstructor(fn)
	if err != nil {
		return &Error{Type: reflect.TypeOf(fn), Err: err}
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if _, ok := i.cache.Load(c.target); ok {
		return &Error{Type: c.target, Err: ErrAlreadyDescribed}
	}

	i.constructors[c.target] = c

	return nil
}

// Describe returns the metadata of a struct type, computing it on first use.
// Concurrent first calls may compute it more than once, but only one result
// is ever stored and returned. Computing and storing happen under the read
// lock, so a concurrent RegisterConstructor either lands before and is used,
// or after and fails with ErrAlreadyDescribed.
func (i *Introspector) Describe(t reflect.Type) (*Metadata, error) {
	if cached, ok := i.cache.Load(t); ok {
		return cached.(*Metadata), nil
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	m, err := i.compute(t)
	if err != nil {
		return nil, err
	}

	actual, loaded := i.cache.LoadOrStore(t, m)
	if !loaded {
		i.logger.Debug("type introspected",
			"type", t.String(),
			"shape", m.Shape.String(),
			"properties", len(m.Properties))
	}

	return actual.(*Metadata), nil
}

func (i *Introspector) compute(t reflect.Type) (*Metadata, error) {
	if t == nil || t.Kind() != reflect.Struct {
		return nil, &Error{Type: t, Err: ErrNotAggregate}
	}

	m := &Metadata{
		Type:       t,
		Shape:      ShapeMutable,
		Properties: properties(t),
		Header:     header(t),
	}

	m.byName = make(map[string]int, len(m.Properties))
	for idx, p := range m.Properties {
		m.byName[p.Name] = idx
	}

	c, ok, err := i.constructorOf(t)
	if err != nil {
		return nil, err
	}

	if !ok {
		return m, nil
	}

	if err := c.checkParameters(m.Properties); err != nil {
		return nil, &Error{Type: t, Err: err}
	}

	m.Shape = ShapeTagged
	m.Constructor = c.fn
	m.ConstructorName = c.name
	m.returnsPointer = c.returnsPointer
	m.returnsError = c.returnsError

	return m, nil
}

// constructorOf expects i.mu to be held.
func (i *Introspector) constructorOf(t reflect.Type) (constructor, bool, error) {
	if c, ok := i.constructors[t]; ok {
		return c, true, nil
	}

	record, ok := reflect.New(t).Interface().(Record)
	if !ok {
		return constructor{}, false, nil
	}

	c, err := parseConstructor(record.Constructor())
	if err != nil {
		return constructor{}, false, &Error{Type: t, Err: err}
	}

	if c.target != t {
		return constructor{}, false, newError(t, "%w: Constructor builds %s", ErrConstructorShape, c.target)
	}

	return c, true, nil
}

func header(t reflect.Type) []string {
	if doc, ok := reflect.New(t).Interface().(Documented); ok {
		return doc.TreeHeader()
	}

	return nil
}

type candidate struct {
	prop  Property
	depth int
}

// properties lists exported fields in declaration order. Exported embedded
// structs without a name tag are flattened; a shallower field hides a deeper
// one with the same name.
func properties(t reflect.Type) []Property {
	var candidates []candidate
	collect(t, nil, 0, &candidates)

	shallowest := map[string]int{}
	for _, c := range candidates {
		if d, ok := shallowest[c.prop.Name]; !ok || c.depth < d {
			shallowest[c.prop.Name] = c.depth
		}
	}

	props := make([]Property, 0, len(candidates))
	seen := map[string]bool{}

	for _, c := range candidates {
		if c.depth != shallowest[c.prop.Name] || seen[c.prop.Name] {
			continue
		}

		seen[c.prop.Name] = true
		props = append(props, c.prop)
	}

	return props
}

func collect(t reflect.Type, prefix []int, depth int, out *[]candidate) {
	for idx := range t.NumField() {
		field := t.Field(idx)
		if !field.IsExported() {
			continue
		}

		name, omitEmpty, tagged, skip := parseName(field)
		if skip {
			continue
		}

		index := append(append([]int(nil), prefix...), idx)

		if field.Anonymous && !tagged && field.Type.Kind() == reflect.Struct {
			collect(field.Type, index, depth+1, out)
			continue
		}

		*out = append(*out, candidate{prop: newProperty(field, name, index, omitEmpty), depth: depth})
	}
}

func newProperty(field reflect.StructField, name string, index []int, omitEmpty bool) Property {
	p := Property{
		Name:      name,
		Field:     field.Name,
		Index:     index,
		Type:      field.Type,
		OmitEmpty: omitEmpty,
	}

	if doc := field.Tag.Get("doc"); doc != "" {
		p.Doc = strings.Split(doc, "|")
	}

	switch field.Type.Kind() {
	case reflect.Slice, reflect.Array:
		p.Elem = field.Type.Elem()
		p.Opaque = isEmptyInterface(p.Elem)
	case reflect.Map:
		p.Key = field.Type.Key()
		p.Value = field.Type.Elem()
		p.Opaque = isEmptyInterface(p.Value)
	}

	return p
}

// parseName reads the first present name tag. tagged is true when the tag
// names the field explicitly.
func parseName(field reflect.StructField) (name string, omitEmpty, tagged, skip bool) {
	name = field.Name

	for _, key := range nameTags {
		tag, ok := field.Tag.Lookup(key)
		if !ok {
			continue
		}

		if tag == "-" {
			return "", false, false, true
		}

		tagName, opts, _ := strings.Cut(tag, ",")
		if tagName != "" {
			name = tagName
			tagged = true
		}

		for opt := range strings.SplitSeq(opts, ",") {
			if opt == "omitempty" || opt == "omitzero" {
				omitEmpty = true
			}
		}

		return name, omitEmpty, tagged, false
	}

	return name, false, false, false
}

func isEmptyInterface(t reflect.Type) bool {
	return t.Kind() == reflect.Interface && t.NumMethod() == 0
}

// String renders the metadata for debugging.
func (m *Metadata) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s (%s)", m.Type, m.Shape)

	for _, p := range m.Properties {
		fmt.Fprintf(&sb, "\n  %s %s", p.Name, p.Type)
	}

	return sb.String()
}

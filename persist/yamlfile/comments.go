package yamlfile

import (
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"
)

// annotate wraps root in a document node and copies docs of the value's
// struct types onto the matching keys. The type header goes above the
// document.
func (e *Engine) annotate(root *yaml.Node, v reflect.Value) *yaml.Node {
	doc := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}

	v = indirect(v)
	if v.IsValid() && v.Kind() == reflect.Struct {
		if meta, err := e.m.Introspector().Describe(v.Type()); err == nil {
			doc.HeadComment = comment(meta.Header)
		}
	}

	e.comment(root, v)

	return doc
}

func (e *Engine) comment(yn *yaml.Node, v reflect.Value) {
	v = indirect(v)
	if !v.IsValid() {
		return
	}

	switch {
	case yn.Kind == yaml.MappingNode && v.Kind() == reflect.Struct:
		meta, err := e.m.Introspector().Describe(v.Type())
		if err != nil {
			return
		}

		for i := 0; i+1 < len(yn.Content); i += 2 {
			key, value := yn.Content[i], yn.Content[i+1]

			prop, ok := meta.Property(key.Value)
			if !ok {
				continue
			}

			key.HeadComment = comment(prop.Doc)
			e.comment(value, prop.Get(v))
		}
	case yn.Kind == yaml.SequenceNode && (v.Kind() == reflect.Slice || v.Kind() == reflect.Array):
		for i, item := range yn.Content {
			if i < v.Len() {
				e.comment(item, v.Index(i))
			}
		}
	case yn.Kind == yaml.MappingNode && v.Kind() == reflect.Map:
		for i := 0; i+1 < len(yn.Content); i += 2 {
			for _, k := range v.MapKeys() {
				if k.Kind() == reflect.String && k.String() == yn.Content[i].Value {
					e.comment(yn.Content[i+1], v.MapIndex(k))
				}
			}
		}
	}
}

func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}

		v = v.Elem()
	}

	return v
}

func comment(lines []string) string {
	if len(lines) == 0 {
		return ""
	}

	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = "# " + l
	}

	return strings.Join(out, "\n")
}

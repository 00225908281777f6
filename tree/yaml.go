package tree

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	nullTag  = "!!null"
	boolTag  = "!!bool"
	intTag   = "!!int"
	floatTag = "!!float"
	mergeTag = "!!merge"
)

// UnmarshalYAML parses the first document of data. Empty input is Null.
func UnmarshalYAML(data []byte) (Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	return FromYAMLNode(&doc)
}

// MarshalYAML renders n as a YAML document indented by two spaces.
func MarshalYAML(n Node) ([]byte, error) {
	return EncodeYAMLNode(ToYAMLNode(n))
}

// EncodeYAMLNode renders an already built yaml node, e.g. one decorated with
// comments.
func EncodeYAMLNode(yn *yaml.Node) ([]byte, error) {
	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(yn); err != nil {
		return nil, fmt.Errorf("failed to encode yaml: %w", err)
	}

	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode yaml: %w", err)
	}

	return buf.Bytes(), nil
}

// FromYAMLNode converts a yaml.v3 node. Aliases are resolved, merge keys are
// expanded and explicit keys win over merged ones. Timestamps and binaries
// stay text.
func FromYAMLNode(yn *yaml.Node) (Node, error) {
	if yn == nil {
		return Null{}, nil
	}

	switch yn.Kind {
	default:
		return nil, fmt.Errorf("line %d: unknown yaml node kind %d", yn.Line, yn.Kind)
	case 0:
		return Null{}, nil
	case yaml.DocumentNode:
		if len(yn.Content) == 0 {
			return Null{}, nil
		}

		return FromYAMLNode(yn.Content[0])
	case yaml.AliasNode:
		return FromYAMLNode(yn.Alias)
	case yaml.ScalarNode:
		return fromYAMLScalar(yn)
	case yaml.SequenceNode:
		items := make([]Node, len(yn.Content))
		for i, item := range yn.Content {
			n, err := FromYAMLNode(item)
			if err != nil {
				return nil, err
			}

			items[i] = n
		}

		return Seq(items...), nil
	case yaml.MappingNode:
		return fromYAMLMapping(yn)
	}
}

func fromYAMLScalar(yn *yaml.Node) (Node, error) {
	switch yn.ShortTag() {
	default:
		return Text(yn.Value), nil
	case nullTag:
		return Null{}, nil
	case boolTag:
		var b bool
		if err := yn.Decode(&b); err != nil {
			return nil, fmt.Errorf("line %d: %w", yn.Line, err)
		}

		return Bool(b), nil
	case intTag:
		var i int64
		if err := yn.Decode(&i); err == nil {
			return Int(i), nil
		}

		// too wide for int64
		var f float64
		if err := yn.Decode(&f); err != nil {
			return nil, fmt.Errorf("line %d: %w", yn.Line, err)
		}

		return Float(f), nil
	case floatTag:
		var f float64
		if err := yn.Decode(&f); err != nil {
			return nil, fmt.Errorf("line %d: %w", yn.Line, err)
		}

		return Float(f), nil
	}
}

func fromYAMLMapping(yn *yaml.Node) (Node, error) {
	var merged, explicit []Entry

	for i := 0; i+1 < len(yn.Content); i += 2 {
		key, value := yn.Content[i], yn.Content[i+1]
		for key.Kind == yaml.AliasNode {
			key = key.Alias
		}

		if key.Kind == yaml.ScalarNode && key.ShortTag() == mergeTag {
			entries, err := mergeEntries(value)
			if err != nil {
				return nil, err
			}

			merged = append(merged, entries...)

			continue
		}

		if key.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: %w", key.Line, ErrNonTextKey)
		}

		n, err := FromYAMLNode(value)
		if err != nil {
			return nil, err
		}

		explicit = append(explicit, Pair(key.Value, n))
	}

	return Map(append(merged, explicit...)...), nil
}

func mergeEntries(value *yaml.Node) ([]Entry, error) {
	n, err := FromYAMLNode(value)
	if err != nil {
		return nil, err
	}

	switch src := n.(type) {
	case Mapping:
		return src.Entries(), nil
	case Sequence:
		var entries []Entry

		for _, item := range src.items {
			m, ok := item.(Mapping)
			if !ok {
				return nil, fmt.Errorf("line %d: merge sequence must hold mappings", value.Line)
			}

			entries = append(entries, m.Entries()...)
		}

		return entries, nil
	default:
		return nil, fmt.Errorf("line %d: merge value must be a mapping", value.Line)
	}
}

// ToYAMLNode converts n into a yaml.v3 node tree that the caller may decorate
// (comments, styles) before encoding.
func ToYAMLNode(n Node) *yaml.Node {
	switch v := OrNull(n).(type) {
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: nullTag, Value: "null"}
	case Scalar:
		return scalarToYAML(v)
	case Sequence:
		out := &yaml.Node{Kind: yaml.SequenceNode, Content: make([]*yaml.Node, 0, v.Len())}
		for _, item := range v.items {
			out.Content = append(out.Content, ToYAMLNode(item))
		}

		return out
	case Mapping:
		out := &yaml.Node{Kind: yaml.MappingNode, Content: make([]*yaml.Node, 0, 2*v.Len())}
		for _, e := range v.entries {
			key := &yaml.Node{}
			key.SetString(e.Key)
			out.Content = append(out.Content, key, ToYAMLNode(e.Value))
		}

		return out
	}
}

func scalarToYAML(s Scalar) *yaml.Node {
	switch v := s.Value().(type) {
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: boolTag, Value: strconv.FormatBool(v)}
	case int64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: intTag, Value: strconv.FormatInt(v, 10)}
	case float64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: floatTag, Value: formatYAMLFloat(v)}
	default:
		out := &yaml.Node{}
		out.SetString(s.Text())

		return out
	}
}

func formatYAMLFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}

	return formatFloat(f)
}

// formatFloat keeps a fraction or exponent in the text so the number reads
// back as a float.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}

	return s
}

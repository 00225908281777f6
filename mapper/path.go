package mapper

import (
	"strconv"
	"strings"
)

// TypePath builds a readable path to the value being mapped.
// Examples:
//   - "Person" for the root value
//   - "Person.tags" for a property
//   - "Person.tags[1]" for a sequence element
//   - "Config.limits.cpu" for a map entry
//
// Paths are persistent: extending one never changes it, so a single parent is
// shared by all of its children.
type TypePath struct {
	parent  *TypePath
	segment string
	index   bool
}

// NewTypePath creates a new TypePath from a root name.
func NewTypePath(root string) *TypePath {
	return &TypePath{segment: root}
}

// Field appends a property name or map key to the path.
func (p *TypePath) Field(name string) *TypePath {
	return &TypePath{parent: p, segment: name}
}

// Index appends a sequence index to the path.
func (p *TypePath) Index(i int) *TypePath {
	return &TypePath{parent: p, segment: strconv.Itoa(i), index: true}
}

// String returns the full path string.
func (p *TypePath) String() string {
	if p == nil {
		return ""
	}

	var parts []*TypePath
	for cur := p; cur != nil; cur = cur.parent {
		parts = append(parts, cur)
	}

	var sb strings.Builder

	for i := len(parts) - 1; i >= 0; i-- {
		part := parts[i]

		switch {
		case part.index:
			sb.WriteString("[" + part.segment + "]")
		case i == len(parts)-1:
			sb.WriteString(part.segment)
		default:
			sb.WriteString("." + part.segment)
		}
	}

	return sb.String()
}

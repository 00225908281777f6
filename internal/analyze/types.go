package analyze

import (
	"go/types"
	"reflect"
	"strings"

	"tree-mapper/internal/diagnostic"
)

// nameTags mirror the tag lookup order of the runtime introspector.
var nameTags = []string{"tree", "yaml", "json"}

// TypeID uniquely identifies a type by its package path and name.
type TypeID struct {
	PkgPath string // e.g., "tree-mapper/examples/records"
	Name    string // e.g., "Person"
}

// String returns a human-readable representation of the TypeID.
func (t TypeID) String() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return t.PkgPath + "." + t.Name
}

// FieldInfo describes a struct field.
type FieldInfo struct {
	Name     string            // Go field name
	Type     types.Type        // Field type
	Tag      reflect.StructTag // Raw struct tag
	Embedded bool              // Whether the field is embedded (anonymous)
	Index    int               // Field index in the struct
}

// TreeName returns the tree key of the field: the first name tag present,
// otherwise the field name. skip is true for fields tagged "-".
func (f *FieldInfo) TreeName() (name string, skip bool) {
	for _, key := range nameTags {
		tag, ok := f.Tag.Lookup(key)
		if !ok {
			continue
		}

		if tag == "-" {
			return "", true
		}

		if tagName, _, _ := strings.Cut(tag, ","); tagName != "" {
			return tagName, false
		}

		return f.Name, false
	}

	return f.Name, false
}

// ConstructorInfo describes a NewT function.
type ConstructorInfo struct {
	Name           string
	Signature      *types.Signature
	ReturnsPointer bool
	ReturnsError   bool
}

// RecordInfo is an exported struct considered by the derive step.
type RecordInfo struct {
	ID          TypeID
	Fields      []FieldInfo // properties, in declaration order
	Constructor *ConstructorInfo
	// MethodFile is the file declaring a Constructor method, empty if none.
	MethodFile string
}

// PackageInfo holds the records of a loaded package.
type PackageInfo struct {
	Path        string // Import path
	Name        string // Package name
	Dir         string // Directory of the package sources
	Records     []*RecordInfo
	Diagnostics diagnostic.Diagnostics
}

// Record returns the record with the given type name, or nil.
func (p *PackageInfo) Record(name string) *RecordInfo {
	for _, r := range p.Records {
		if r.ID.Name == name {
			return r
		}
	}

	return nil
}

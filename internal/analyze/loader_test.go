package analyze

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tree-mapper/internal/diagnostic"
)

func loadShapes(t *testing.T) *PackageInfo {
	t.Helper()

	pkgs, err := NewAnalyzer(nil).LoadPackages("./testdata/shapes")
	require.NoError(t, err)
	require.Len(t, pkgs, 1)

	return pkgs[0]
}

func codes(ds []diagnostic.Diagnostic) map[string]string {
	out := map[string]string{}
	for _, d := range ds {
		out[d.Type] = d.Code
	}

	return out
}

func TestAnalyzer_Records(t *testing.T) {
	pkg := loadShapes(t)

	assert.Equal(t, "shapes", pkg.Name)
	assert.Equal(t, "shapes", filepath.Base(pkg.Dir))

	var names []string
	for _, r := range pkg.Records {
		names = append(names, r.ID.Name)
	}

	// sorted by name, without generic, embedding, unexported and non struct types
	assert.Equal(t, []string{"Base", "Canvas", "Circle", "Label", "Point"}, names)
}

func TestAnalyzer_Constructors(t *testing.T) {
	pkg := loadShapes(t)

	circle := pkg.Record("Circle")
	require.NotNil(t, circle)
	require.NotNil(t, circle.Constructor)
	assert.Equal(t, "NewCircle", circle.Constructor.Name)
	assert.True(t, circle.Constructor.ReturnsPointer)
	assert.True(t, circle.Constructor.ReturnsError)
	require.Len(t, circle.Fields, 1, "fields tagged \"-\" are not properties")
	assert.Equal(t, "Radius", circle.Fields[0].Name)

	label := pkg.Record("Label")
	require.NotNil(t, label)
	require.NotNil(t, label.Constructor)
	assert.False(t, label.Constructor.ReturnsPointer)
	assert.Equal(t, "shapes.go", filepath.Base(label.MethodFile))

	assert.Nil(t, pkg.Record("Point").Constructor)
	assert.Nil(t, pkg.Record("Canvas").Constructor)
	assert.Empty(t, pkg.Record("Circle").MethodFile)
}

func TestAnalyzer_Diagnostics(t *testing.T) {
	pkg := loadShapes(t)

	assert.False(t, pkg.Diagnostics.HasErrors())

	warnings := codes(pkg.Diagnostics.Warnings)
	assert.Equal(t, CodeConstructorMismatch, warnings["Point"])
	assert.Equal(t, CodeEmbeddedField, warnings["Wrapper"])

	infos := codes(pkg.Diagnostics.Infos)
	assert.Equal(t, CodeGeneric, infos["Box"])
	assert.Equal(t, CodeNoConstructor, infos["Canvas"])

	for _, w := range pkg.Diagnostics.Warnings {
		if w.Type == "Point" {
			assert.Contains(t, w.Message, "has 1 parameters for 2 properties")
		}
	}
}

func TestFieldInfo_TreeName(t *testing.T) {
	tests := []struct {
		tag      string
		wantName string
		wantSkip bool
	}{
		{tag: ``, wantName: "Field"},
		{tag: `json:"j"`, wantName: "j"},
		{tag: `yaml:"y" json:"j"`, wantName: "y"},
		{tag: `tree:"t" yaml:"y"`, wantName: "t"},
		{tag: `yaml:",omitempty" json:"j"`, wantName: "Field"},
		{tag: `yaml:"-" json:"j"`, wantSkip: true},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			f := FieldInfo{Name: "Field", Tag: reflect.StructTag(tt.tag)}
			name, skip := f.TreeName()
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantSkip, skip)
		})
	}
}

package gen

import (
	"bytes"
	"fmt"
	"go/format"
	"log/slog"
	"path/filepath"
	"text/template"

	"tree-mapper/internal/analyze"
)

// Header marks generated files.
const Header = "// Code generated by treemap-gen. DO NOT EDIT."

// GeneratorConfig holds configuration for code generation.
type GeneratorConfig struct {
	// Filename is the name of the file written into each package.
	Filename string
	// DebugUnformatted writes the raw template output next to the target
	// when formatting fails.
	DebugUnformatted bool
	// Logger receives one record per generated constructor. Nil discards them.
	Logger *slog.Logger
}

// DefaultGeneratorConfig returns the default generator configuration.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Filename:         "tree_constructors_gen.go",
		DebugUnformatted: true,
	}
}

// Generator generates Constructor methods from analyzed packages.
type Generator struct {
	config GeneratorConfig
	logger *slog.Logger
}

// NewGenerator creates a new Generator with the given configuration.
func NewGenerator(config GeneratorConfig) *Generator {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Generator{config: config, logger: logger}
}

// GeneratedFile represents a generated Go source file.
type GeneratedFile struct {
	Dir      string
	Filename string
	Content  []byte
}

// Path returns the location of the file.
func (f *GeneratedFile) Path() string {
	return filepath.Join(f.Dir, f.Filename)
}

// Empty reports whether the package has nothing to generate. Writing an empty
// file removes a stale one.
func (f *GeneratedFile) Empty() bool {
	return len(f.Content) == 0
}

type templateRecord struct {
	Name        string
	Constructor string
}

type templateData struct {
	PackageName string
	Records     []templateRecord
}

// Generate produces the Constructor methods of a package. Records whose
// Constructor method is declared outside the generated file are left alone.
func (g *Generator) Generate(pkg *analyze.PackageInfo) (*GeneratedFile, error) {
	file := &GeneratedFile{Dir: pkg.Dir, Filename: g.config.Filename}
	data := templateData{PackageName: pkg.Name}

	for _, r := range pkg.Records {
		if r.Constructor == nil {
			continue
		}

		if r.MethodFile != "" && filepath.Base(r.MethodFile) != g.config.Filename {
			pkg.Diagnostics.AddInfo(analyze.CodeHandWritten, "Constructor method is declared by hand", r.ID.Name, "")
			continue
		}

		data.Records = append(data.Records, templateRecord{Name: r.ID.Name, Constructor: r.Constructor.Name})
		g.logger.Debug("constructor generated", "type", r.ID.String(), "constructor", r.Constructor.Name)
	}

	if len(data.Records) == 0 {
		return file, nil
	}

	var buf bytes.Buffer
	if err := constructorTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		if g.config.DebugUnformatted {
			_ = writeDebugUnformatted(file.Dir, file.Filename, buf.Bytes())
		}

		file.Content = buf.Bytes()

		return file, fmt.Errorf("formatting code: %w", err)
	}

	file.Content = formatted

	return file, nil
}

// Records come sorted by name from the analyzer, so output is stable.
var constructorTemplate = template.Must(template.New("constructors").Parse(Header + `

package {{.PackageName}}
{{range .Records}}
// Constructor returns {{.Constructor}}, the canonical constructor of {{.Name}}.
func ({{.Name}}) Constructor() any { return {{.Constructor}} }
{{end}}`))

package analyze

import (
	"fmt"
	"go/types"
	"log/slog"
	"path/filepath"
	"reflect"

	"golang.org/x/tools/go/packages"
)

// LoadMode specifies what information to load from packages.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedImports

// Diagnostic codes.
const (
	CodeNoConstructor       = "no-constructor"
	CodeConstructorMismatch = "constructor-mismatch"
	CodeEmbeddedField       = "embedded-field"
	CodeGeneric             = "generic-type"
	CodeHandWritten         = "hand-written"
)

var errorType = types.Universe.Lookup("error").Type()

// Analyzer loads Go packages and collects their records.
type Analyzer struct {
	logger *slog.Logger
}

// NewAnalyzer creates a new Analyzer. A nil logger discards records.
func NewAnalyzer(logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Analyzer{logger: logger}
}

// LoadPackages loads the specified packages and analyzes each of them.
// Patterns are standard Go package patterns (e.g., "./...", "tree-mapper/examples/records").
func (a *Analyzer) LoadPackages(patterns ...string) ([]*PackageInfo, error) {
	cfg := &packages.Config{
		Mode: LoadMode,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	// Check for package errors
	var errs []error
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, e)
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors: %v", errs)
	}

	out := make([]*PackageInfo, 0, len(pkgs))
	for _, pkg := range pkgs {
		info := a.processPackage(pkg)
		a.logger.Debug("package analyzed", "package", info.Path, "records", len(info.Records))
		out = append(out, info)
	}

	return out, nil
}

// processPackage extracts the records of a loaded package.
func (a *Analyzer) processPackage(pkg *packages.Package) *PackageInfo {
	info := &PackageInfo{
		Path: pkg.PkgPath,
		Name: pkg.Name,
	}

	if len(pkg.GoFiles) > 0 {
		info.Dir = filepath.Dir(pkg.GoFiles[0])
	}

	scope := pkg.Types.Scope()
	for _, name := range scope.Names() {
		// Only process exported type names
		typeName, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || !typeName.Exported() || typeName.IsAlias() {
			continue
		}

		named, ok := typeName.Type().(*types.Named)
		if !ok {
			continue
		}

		st, ok := named.Underlying().(*types.Struct)
		if !ok {
			continue
		}

		id := TypeID{PkgPath: pkg.PkgPath, Name: name}

		if named.TypeParams().Len() > 0 {
			info.Diagnostics.AddInfo(CodeGeneric, "generic types are not derived", id.Name, "")
			continue
		}

		record, ok := a.analyzeRecord(id, named, st, &info.Diagnostics)
		if !ok {
			continue
		}

		if fn, ok := scope.Lookup("New" + name).(*types.Func); ok {
			record.Constructor = checkConstructor(record, named, fn, &info.Diagnostics)
		} else {
			info.Diagnostics.AddInfo(CodeNoConstructor, "no New"+name+" function, the struct stays mutable", id.Name, "")
		}

		obj, _, _ := types.LookupFieldOrMethod(types.NewPointer(named), true, pkg.Types, "Constructor")
		if method, ok := obj.(*types.Func); ok {
			record.MethodFile = pkg.Fset.Position(method.Pos()).Filename
		}

		info.Records = append(info.Records, record)
	}

	return info
}

// analyzeRecord lists the properties of a struct. Embedded fields are not
// supported by the derive step because their flattening depends on tags.
func (a *Analyzer) analyzeRecord(id TypeID, named *types.Named, st *types.Struct, diags diagnosticSink) (*RecordInfo, bool) {
	record := &RecordInfo{ID: id}

	for i := range st.NumFields() {
		field := st.Field(i)
		if !field.Exported() {
			continue
		}

		fi := FieldInfo{
			Name:     field.Name(),
			Type:     field.Type(),
			Tag:      reflect.StructTag(st.Tag(i)),
			Embedded: field.Embedded(),
			Index:    i,
		}

		if _, skip := fi.TreeName(); skip {
			continue
		}

		if fi.Embedded {
			diags.AddWarning(CodeEmbeddedField, "embedded fields are not derived", id.Name, fi.Name)
			return nil, false
		}

		record.Fields = append(record.Fields, fi)
	}

	a.logger.Debug("record found", "type", named.String(), "properties", len(record.Fields))

	return record, true
}

// checkConstructor validates NewT against the record's properties. Supported
// shapes are T, *T, (T, error) and (*T, error) results.
func checkConstructor(record *RecordInfo, named *types.Named, fn *types.Func, diags diagnosticSink) *ConstructorInfo {
	sig, _ := fn.Type().(*types.Signature)
	mismatch := func(format string, args ...any) *ConstructorInfo {
		diags.AddWarning(CodeConstructorMismatch, fn.Name()+": "+fmt.Sprintf(format, args...), record.ID.Name, "")
		return nil
	}

	if sig.Recv() != nil || sig.Variadic() {
		return mismatch("must be a plain, non variadic function")
	}

	params := sig.Params()
	if params.Len() != len(record.Fields) {
		return mismatch("has %d parameters for %d properties", params.Len(), len(record.Fields))
	}

	for i, f := range record.Fields {
		if p := params.At(i).Type(); !types.AssignableTo(f.Type, p) {
			return mismatch("parameter %d is %s, property %s is %s", i+1, p, f.Name, f.Type)
		}
	}

	results := sig.Results()
	c := &ConstructorInfo{Name: fn.Name(), Signature: sig}

	switch results.Len() {
	default:
		return mismatch("must return the struct, optionally followed by an error")
	case 2:
		if !types.Identical(results.At(1).Type(), errorType) {
			return mismatch("second result must be an error")
		}

		c.ReturnsError = true
	case 1:
	}

	first := results.At(0).Type()
	if ptr, ok := first.(*types.Pointer); ok {
		first = ptr.Elem()
		c.ReturnsPointer = true
	}

	if !types.Identical(first, named) {
		return mismatch("returns %s instead of %s", results.At(0).Type(), named.Obj().Name())
	}

	return c
}

type diagnosticSink interface {
	AddWarning(code, message, typeName, field string)
	AddInfo(code, message, typeName, field string)
}

// Package mapper converts between typed Go values and tree nodes.
//
// Decoding dispatches on the target type:
//   - pointers unwrap, Null becomes a nil pointer
//   - Null becomes the zero value of any other type
//   - tree.Node targets take the node as is, empty interfaces its plain value
//   - registered converters override every built-in rule below
//   - enumerations match constant names case-insensitively
//   - scalar kinds coerce under the configured options.CategoryEnum
//   - encoding.TextUnmarshaler types decode from text
//   - slices, arrays and maps require sequences and mappings
//   - structs require a mapping and are built from introspect metadata
//
// Encoding mirrors the same rules on the runtime type of the value.
//
// Errors are one of *ReflectionError, *TypeMismatchError and
// *ConversionError, each carrying the path of the failing value, for example
// "Person.tags[1]". A failed call never returns a partial value.
package mapper

// Package analyze loads Go packages and finds the records the derive step
// can wire: exported structs paired with a NewT function whose parameters
// match the struct's properties in declaration order.
//
// It uses golang.org/x/tools/go/packages with go/types, so it sees the same
// types the compiler does.
//
// Key types:
//   - TypeID: package import path + type name
//   - RecordInfo: a struct, its properties and its constructor, if any
//   - PackageInfo: records of one package plus diagnostics explaining skips
package analyze

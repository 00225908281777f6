// Package registry binds Go types to custom tree converters.
//
// Resolution order for a type:
//   - the resolution cache (negative answers included)
//   - an exact registration
//   - the first matching ordered binding: interface types registered with
//     Register match every type implementing them, RegisterFunc binds any
//     predicate
//
// Every registration invalidates the whole cache.
package registry

// Package introspect computes and caches the structural metadata the mapper
// needs for struct types.
//
// A struct is either a mutable aggregate, built from its zero value by
// assigning fields, or a tagged aggregate, built by a constructor whose
// parameters follow the property order. A type opts into the tagged shape by
// implementing Record or by registering its constructor.
//
// Property names come from the `tree` struct tag, then `yaml`, then `json`,
// and default to the Go field name. Documentation lines come from the `doc`
// tag, separated by '|'.
package introspect

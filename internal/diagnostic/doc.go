// Package diagnostic provides structured errors, warnings and notes for the
// derive step.
//
// Key capabilities:
//   - Structs skipped because their NewT function does not match
//   - Unsupported shapes such as embedded fields or generic types
//   - Notes on structs that stay mutable
package diagnostic

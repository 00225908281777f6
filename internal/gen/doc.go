// Package gen provides deterministic Go code generation for the derive step.
//
// Generation approach uses text/template + go/format for readable Go code.
// For every record with a matching NewT function it emits
//
//	func (T) Constructor() any { return NewT }
//
// into one file per package, so the runtime introspector treats T as a
// tagged aggregate without registering the constructor by hand.
package gen

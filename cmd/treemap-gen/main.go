// Command treemap-gen derives Constructor methods for structs that have a
// matching NewT function, so the tree mapper builds them through that
// function instead of assigning fields.
//
//	//go:generate go run tree-mapper/cmd/treemap-gen .
package main

import "os"

func main() {
	if err := New().Execute(); err != nil {
		os.Exit(1)
	}
}

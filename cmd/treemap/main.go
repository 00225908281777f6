// Command treemap converts documents between YAML, JSON and MessagePack
// through the ordered tree model, so mapping order survives the trip.
package main

import "os"

func main() {
	if err := New().Execute(); err != nil {
		os.Exit(1)
	}
}

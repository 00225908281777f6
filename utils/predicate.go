// Package utils holds small generic helpers shared by the mapper packages.
package utils

import "cmp"

// IsInRange reports whether low <= value <= high.
func IsInRange[T cmp.Ordered](low, value, high T) bool {
	return low <= value && value <= high
}

// Package mathx holds small generic numeric helpers.
package mathx

import "golang.org/x/exp/constraints"

// Clamp limits v to [lo, hi]. Swapped bounds are reordered.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if hi < lo {
		lo, hi = hi, lo
	}
	return min(max(v, lo), hi)
}

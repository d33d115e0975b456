package utils

import "golang.org/x/exp/constraints"

// ArgMax returns the index of the strictly greatest value, the first one on
// ties, or -1 for an empty slice.
func ArgMax[T constraints.Ordered](values []T) int {
	best := -1
	for i, v := range values {
		if best == -1 || v > values[best] {
			best = i
		}
	}
	return best
}

package graph

import (
	"slices"
	"strconv"
	"strings"
)

// Shape is an ordered sequence of non-negative dimension sizes. Rank 0 is a
// scalar (exactly one element).
type Shape []int

// Rank returns the number of dimensions.
func (s Shape) Rank() int { return len(s) }

// Elements returns the total element count, 1 for a rank-0 shape.
func (s Shape) Elements() int {
	n := 1
	for _, d := range s {
		n *= d
	}
	return n
}

// Equal reports whether s and other have identical dimensions.
func (s Shape) Equal(other Shape) bool {
	return slices.Equal(s, other)
}

// Clone returns an independent copy of s.
func (s Shape) Clone() Shape {
	return slices.Clone(s)
}

func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = strconv.Itoa(d)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Package vector implements the architecture-tuned vector kernel family.
// It is optional: the engine's fallback policy (§4.4, §7) lets callers
// prefer it and fall back to the scalar reference family when a shape or
// platform constraint the vector path can't serve is hit. Elementwise
// equal-count kernels are backed by gorgonia.org/vecf32 (part of the
// gorgonia/pdevine tensor stack); MatMul is backed by gonum.org/v1/gonum/mat
// (a direct dependency of the teacher module).
//
// Only the equal-count broadcast shape has a vectorized implementation in
// this version — under Vector policy, column-vector, row-vector, and scalar
// broadcasts fall back to the reference family in research mode, which the
// engine records as a KernelDispatch trace detail rather than silently
// substituting (§4.3), and fail with a PolicyError in deployment mode.
package vector

import (
	"gorgonia.org/vecf32"

	"github.com/denseforge/denseforge/kernel"
)

// BinOp names which of the four elementwise binaries AddEqual et al.
// perform, matching kernel/reference's BinOp taxonomy for the engine's
// dispatch table lookups.
type BinOp int

const (
	Add BinOp = iota
	Sub
	Mul
	Div
)

// Equal applies op elementwise over equal-length a and b via vecf32,
// writing into out. a and b are left untouched; vecf32's in-place
// functions operate on a scratch copy of a.
func Equal(out, a, b []float32, op BinOp) kernel.Status {
	if len(a) != len(b) || len(out) != len(a) {
		return kernel.InvalidShape
	}
	copy(out, a)
	switch op {
	case Add:
		vecf32.Add(out, b)
	case Sub:
		vecf32.Sub(out, b)
	case Mul:
		vecf32.Mul(out, b)
	case Div:
		vecf32.Div(out, b)
	default:
		return kernel.UnsupportedDType
	}
	return kernel.Success
}

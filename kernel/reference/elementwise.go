// Package reference implements the scalar reference kernel family: the
// portable, definitive semantics oracle every vector kernel must agree
// with within tolerance (§4.3). Every kernel here treats its inputs as
// row-major contiguous data: float32 slices for the arithmetic kernels, raw
// bytes for the data-movement kernels in movement.go. Only Transpose
// allocates (small per-call index slices).
package reference

import "github.com/denseforge/denseforge/kernel"

// BinOp is one of the four elementwise binary operations.
type BinOp func(a, b float32) float32

func AddOp(a, b float32) float32 { return a + b }
func SubOp(a, b float32) float32 { return a - b }
func MulOp(a, b float32) float32 { return a * b }
func DivOp(a, b float32) float32 { return a / b }

// Equal applies op elementwise over equal-length a and b.
func Equal(out, a, b []float32, op BinOp) kernel.Status {
	if len(a) != len(b) || len(out) != len(a) {
		return kernel.InvalidShape
	}
	for i := range out {
		out[i] = op(a[i], b[i])
	}
	return kernel.Success
}

// ColumnVector applies Out[i,j] = op(A[i,j], B[i]) for A shaped
// [outer, inner] and B shaped [outer].
func ColumnVector(out, a, b []float32, outer, inner int, op BinOp) kernel.Status {
	if len(a) != outer*inner || len(b) != outer || len(out) != outer*inner {
		return kernel.InvalidShape
	}
	for i := range outer {
		bv := b[i]
		row := a[i*inner : (i+1)*inner]
		dst := out[i*inner : (i+1)*inner]
		for j, av := range row {
			dst[j] = op(av, bv)
		}
	}
	return kernel.Success
}

// RowVector applies Out[i,j] = op(A[i,j], B[j]) for A shaped
// [outer, inner] and B shaped [inner].
func RowVector(out, a, b []float32, outer, inner int, op BinOp) kernel.Status {
	if len(a) != outer*inner || len(b) != inner || len(out) != outer*inner {
		return kernel.InvalidShape
	}
	for i := range outer {
		row := a[i*inner : (i+1)*inner]
		dst := out[i*inner : (i+1)*inner]
		for j, av := range row {
			dst[j] = op(av, b[j])
		}
	}
	return kernel.Success
}

// Scalar applies Out[i] = op(A[i], b) for a single scalar b.
func Scalar(out, a []float32, b float32, op BinOp) kernel.Status {
	if len(a) != len(out) {
		return kernel.InvalidShape
	}
	for i, av := range a {
		out[i] = op(av, b)
	}
	return kernel.Success
}

package vector

import (
	"gonum.org/v1/gonum/mat"

	"github.com/denseforge/denseforge/kernel"
)

// GEMM computes C ← α·(A·B) + β·C using gonum/mat's native Go matrix
// multiply, which re-associates the inner-product accumulation differently
// than kernel/reference.GEMM's triple loop — the two are expected to agree
// within the tolerance of §8 invariant 4, not bitwise.
func GEMM(m, n, k int, alpha float32, a []float32, lda int, b []float32, ldb int, beta float32, c []float32, ldc int) kernel.Status {
	if m <= 0 || n <= 0 || k <= 0 || lda < k || ldb < n || ldc < n {
		return kernel.InvalidShape
	}
	if lda != k || ldb != n || ldc != n {
		// gonum/mat assumes tightly packed row-major backing; this vector
		// path only serves the common contiguous case and otherwise reports
		// InvalidShape; the engine then uses the reference kernel in research
		// mode and returns a PolicyError in deployment mode.
		return kernel.InvalidShape
	}
	if len(a) < m*k || len(b) < k*n || len(c) < m*n {
		return kernel.InvalidShape
	}

	a64 := make([]float64, m*k)
	for i, v := range a[:m*k] {
		a64[i] = float64(v)
	}
	b64 := make([]float64, k*n)
	for i, v := range b[:k*n] {
		b64[i] = float64(v)
	}

	A := mat.NewDense(m, k, a64)
	B := mat.NewDense(k, n, b64)
	var AB mat.Dense
	AB.Mul(A, B)

	for i := range m {
		for j := range n {
			v := float32(AB.At(i, j)) * alpha
			if beta == 0 {
				c[i*ldc+j] = v
			} else {
				c[i*ldc+j] = v + beta*c[i*ldc+j]
			}
		}
	}
	return kernel.Success
}

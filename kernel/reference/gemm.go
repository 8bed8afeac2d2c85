package reference

import "github.com/denseforge/denseforge/kernel"

// GEMM computes C ← α·(A·B) + β·C, row-major, with explicit leading
// dimensions lda/ldb/ldc (§4.3). A is [m,k], B is [k,n], C is [m,n]. This
// triple-loop implementation is the canonical oracle every vector GEMM path
// must agree with within tolerance.
func GEMM(m, n, k int, alpha float32, a []float32, lda int, b []float32, ldb int, beta float32, c []float32, ldc int) kernel.Status {
	if m <= 0 || n <= 0 || k <= 0 {
		return kernel.InvalidShape
	}
	if lda < k || ldb < n || ldc < n {
		return kernel.InvalidShape
	}
	if len(a) < (m-1)*lda+k || len(b) < (k-1)*ldb+n || len(c) < (m-1)*ldc+n {
		return kernel.InvalidShape
	}

	for i := range m {
		crow := c[i*ldc : i*ldc+n]
		if beta == 0 {
			for j := range crow {
				crow[j] = 0
			}
		} else if beta != 1 {
			for j := range crow {
				crow[j] *= beta
			}
		}
	}

	arow := func(i int) []float32 { return a[i*lda : i*lda+k] }
	brow := func(p int) []float32 { return b[p*ldb : p*ldb+n] }

	for i := range m {
		av := arow(i)
		crow := c[i*ldc : i*ldc+n]
		for p := range k {
			aip := av[p] * alpha
			if aip == 0 {
				continue
			}
			bp := brow(p)
			for j := range n {
				crow[j] += aip * bp[j]
			}
		}
	}
	return kernel.Success
}

package vector

import (
	"math"
	"testing"

	refkernel "github.com/denseforge/denseforge/kernel"
	"github.com/denseforge/denseforge/kernel/reference"
)

func TestEqualAgreesWithReference(t *testing.T) {
	a := []float32{1, 2, 3, 4, 5, 6, 7, 8}
	b := []float32{0.5, 1.5, 2.5, 3.5, -1, -2, -3, -4}

	for _, tc := range []struct {
		vecOp BinOp
		refOp reference.BinOp
	}{
		{Add, reference.AddOp},
		{Sub, reference.SubOp},
		{Mul, reference.MulOp},
		{Div, reference.DivOp},
	} {
		got := make([]float32, len(a))
		want := make([]float32, len(a))
		if status := Equal(got, a, b, tc.vecOp); status != refkernel.Success {
			t.Fatalf("vector.Equal status = %v", status)
		}
		if status := reference.Equal(want, a, b, tc.refOp); status != refkernel.Success {
			t.Fatalf("reference.Equal status = %v", status)
		}
		for i := range want {
			if math.Abs(float64(got[i]-want[i])) > 1e-5 {
				t.Fatalf("op %d: got[%d]=%v want[%d]=%v diverge beyond tolerance", tc.vecOp, i, got[i], i, want[i])
			}
		}
	}
}

func TestEqualRejectsLengthMismatch(t *testing.T) {
	out := make([]float32, 2)
	status := Equal(out, []float32{1, 2}, []float32{1, 2, 3}, Add)
	if status != refkernel.InvalidShape {
		t.Fatalf("status = %v, want InvalidShape", status)
	}
}

func TestGEMMAgreesWithReferenceWithinTolerance(t *testing.T) {
	const m, n, k = 8, 8, 16
	a := make([]float32, m*k)
	b := make([]float32, k*n)
	for i := range a {
		a[i] = float32(i%7) - 3
	}
	for i := range b {
		b[i] = float32(i%5) - 2
	}

	got := make([]float32, m*n)
	want := make([]float32, m*n)
	if status := GEMM(m, n, k, 1, a, k, b, n, 0, got, n); status != refkernel.Success {
		t.Fatalf("vector GEMM status = %v", status)
	}
	if status := reference.GEMM(m, n, k, 1, a, k, b, n, 0, want, n); status != refkernel.Success {
		t.Fatalf("reference GEMM status = %v", status)
	}
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > 1e-4 {
			t.Fatalf("got[%d]=%v want[%d]=%v diverge beyond 1e-4", i, got[i], i, want[i])
		}
	}
}

func TestGEMMRejectsNonContiguousLeadingDimensions(t *testing.T) {
	a := make([]float32, 2*4)
	b := make([]float32, 2*2)
	c := make([]float32, 2*2)
	status := GEMM(2, 2, 2, 1, a, 4, b, 2, 0, c, 2)
	if status != refkernel.InvalidShape {
		t.Fatalf("status = %v, want InvalidShape", status)
	}
}

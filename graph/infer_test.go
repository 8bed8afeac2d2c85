package graph

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestInferShapeReduceSumDropsLastAxis(t *testing.T) {
	out, _, err := inferShape(ReduceSum, []Shape{{2, 3, 4}}, nil)
	if err != nil {
		t.Fatalf("inferShape: %v", err)
	}
	want := Shape{2, 3}
	if diff := cmp.Diff([]int(want), []int(out)); diff != "" {
		t.Fatalf("ReduceSum output shape mismatch (-want +got):\n%s", diff)
	}
}

func TestInferShapeReduceSumOnRank1CollapsesToScalar(t *testing.T) {
	out, _, err := inferShape(ReduceSum, []Shape{{5}}, nil)
	if err != nil {
		t.Fatalf("inferShape: %v", err)
	}
	if diff := cmp.Diff([]int{}, []int(out)); diff != "" {
		t.Fatalf("ReduceSum on rank-1 shape mismatch (-want +got):\n%s", diff)
	}
}

func TestInferShapeTransposeRejectsNonPermutation(t *testing.T) {
	_, _, err := inferShape(Transpose, []Shape{{2, 3}}, []int{0, 0})
	if err == nil {
		t.Fatalf("expected an error for a non-permutation perm [0 0]")
	}
}

func TestInferShapeSliceResolvesNegativeBothBounds(t *testing.T) {
	_, params, err := inferShape(Slice, []Shape{{10}}, []int{0, -5, -1})
	if err != nil {
		t.Fatalf("inferShape: %v", err)
	}
	if diff := cmp.Diff([]int{0, 5, 9}, params); diff != "" {
		t.Fatalf("Slice resolved params mismatch (-want +got):\n%s", diff)
	}
}

func TestInferShapeBiasAddAcceptsRank2SingletonBias(t *testing.T) {
	out, _, err := inferShape(BiasAdd, []Shape{{3, 4}, {1, 4}}, nil)
	if err != nil {
		t.Fatalf("inferShape: %v", err)
	}
	if diff := cmp.Diff([]int{3, 4}, []int(out)); diff != "" {
		t.Fatalf("BiasAdd output shape mismatch (-want +got):\n%s", diff)
	}
}

func TestInferShapeConcatRejectsRankMismatch(t *testing.T) {
	_, _, err := inferShape(Concat, []Shape{{2, 2}, {2, 2, 2}}, []int{0})
	if err == nil {
		t.Fatalf("expected an error for mismatched ranks")
	}
}

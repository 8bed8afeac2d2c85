package graph

import (
	"errors"
	"testing"
)

func TestForwardReferenceInvariant(t *testing.T) {
	b := NewBuilder()
	x, err := b.Input("x", F32, 2, 2)
	if err != nil {
		t.Fatalf("Input: %v", err)
	}
	if _, err := b.Add(x, x+1); err == nil {
		t.Fatalf("expected a StructuralError referencing a not-yet-appended node")
	}

	y, err := b.Input("y", F32, 2, 2)
	if err != nil {
		t.Fatalf("Input: %v", err)
	}
	out, err := b.Add(x, y)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	g := b.Finish(out)
	if err := g.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestAppendOnFrozenGraphFails(t *testing.T) {
	b := NewBuilder()
	x, _ := b.Input("x", F32, 2)
	b.Finish(x)

	if _, err := b.Input("y", F32, 2); err == nil {
		t.Fatalf("expected an error appending to a frozen graph")
	} else {
		var se *StructuralError
		if !errors.As(err, &se) {
			t.Fatalf("expected a StructuralError, got %T", err)
		}
	}
}

func TestMatMulRequiresRank2(t *testing.T) {
	b := NewBuilder()
	x, _ := b.Input("x", F32, 3)
	y, _ := b.Input("y", F32, 3)
	if _, err := b.MatMul(x, y); err == nil {
		t.Fatalf("expected a ShapeError for rank-1 MatMul operands")
	}
}

func TestMatMulShape(t *testing.T) {
	b := NewBuilder()
	x, _ := b.Input("x", F32, 2, 3)
	y, _ := b.Input("y", F32, 3, 4)
	out, err := b.MatMul(x, y)
	if err != nil {
		t.Fatalf("MatMul: %v", err)
	}
	got := b.Graph().Node(out).OutputShape()
	want := Shape{2, 4}
	if !got.Equal(want) {
		t.Fatalf("MatMul shape = %s, want %s", got, want)
	}
}

func TestReshapeRejectsElementCountMismatch(t *testing.T) {
	b := NewBuilder()
	x, _ := b.Input("x", F32, 2, 3)
	if _, err := b.Reshape(x, 4, 2); err == nil {
		t.Fatalf("expected a ShapeError for an element-count-changing reshape")
	}
}

func TestReshapeIsElementPreserving(t *testing.T) {
	b := NewBuilder()
	x, _ := b.Input("x", F32, 2, 3)
	out, err := b.Reshape(x, 6)
	if err != nil {
		t.Fatalf("Reshape: %v", err)
	}
	got := b.Graph().Node(out).OutputShape()
	if got.Elements() != 6 {
		t.Fatalf("Reshape shape %s has %d elements, want 6", got, got.Elements())
	}
}

func TestSliceNegativeIndexWraparound(t *testing.T) {
	b := NewBuilder()
	x, _ := b.Input("x", F32, 5, 2)
	out, err := b.Slice(x, 0, -2, -1)
	if err != nil {
		t.Fatalf("Slice: %v", err)
	}
	op, _ := b.Graph().Node(out).AsOp()
	wantParams := []int{0, 3, 4}
	for i, v := range wantParams {
		if op.Params[i] != v {
			t.Fatalf("Slice resolved params = %v, want %v", op.Params, wantParams)
		}
	}
}

func TestConcatRejectsMixedDTypes(t *testing.T) {
	b := NewBuilder()
	a, _ := b.Input("a", F32, 2, 2)
	c, _ := b.Input("c", I32, 2, 2)
	if _, err := b.Concat(0, a, c); err == nil {
		t.Fatalf("expected a ShapeError for Concat across mismatched dtypes")
	}
}

func TestConcatAxisShape(t *testing.T) {
	b := NewBuilder()
	a, _ := b.Input("a", F32, 2, 2)
	c, _ := b.Input("c", F32, 3, 2)
	out, err := b.Concat(0, a, c)
	if err != nil {
		t.Fatalf("Concat: %v", err)
	}
	got := b.Graph().Node(out).OutputShape()
	want := Shape{5, 2}
	if !got.Equal(want) {
		t.Fatalf("Concat shape = %s, want %s", got, want)
	}
}

func TestNonArithmeticDTypeRejectedByArithmeticOp(t *testing.T) {
	b := NewBuilder()
	x, _ := b.Input("x", I32, 2, 2)
	y, _ := b.Input("y", I32, 2, 2)
	if _, err := b.Add(x, y); err == nil {
		t.Fatalf("expected a ShapeError: I32 cannot flow into Add")
	}
}

func TestDataMovementAcceptsNonF32(t *testing.T) {
	b := NewBuilder()
	x, _ := b.Input("x", I32, 2, 3)
	if _, err := b.Transpose(x, 1, 0); err != nil {
		t.Fatalf("Transpose over I32 should be permitted (data movement is dtype-agnostic): %v", err)
	}
}

func TestValidateRejectsDanglingOutput(t *testing.T) {
	b := NewBuilder()
	x, _ := b.Input("x", F32, 2)
	g := b.Graph()
	g.SetOutputs(x + 5)
	if err := g.Validate(); err == nil {
		t.Fatalf("expected Validate to reject an out-of-range output index")
	}
}

func TestShapeErrorUnwrapsInferShapeFailure(t *testing.T) {
	b := NewBuilder()
	x, _ := b.Input("x", F32, 2, 2)
	y, _ := b.Input("y", F32, 2, 2, 2)
	_, err := b.Concat(0, x, y)
	if err == nil {
		t.Fatalf("expected a ShapeError from mismatched ranks")
	}
	var shapeErr *ShapeError
	if !errors.As(err, &shapeErr) {
		t.Fatalf("errors.As(err, *ShapeError) failed on %v", err)
	}
	if errors.Unwrap(shapeErr) == nil {
		t.Fatalf("ShapeError should wrap the underlying inferShape error")
	}
}

package graph

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/x448/float16"
)

// Builder appends nodes to a Graph under construction. A Builder never
// holds node references across appends — only indices, which are stable for
// the graph's lifetime even though the backing slice may reallocate.
type Builder struct {
	g *Graph
}

// NewBuilder returns a Builder over a fresh, empty Graph.
func NewBuilder() *Builder {
	return &Builder{g: New()}
}

// Graph returns the graph under construction. Callers should not mutate it
// directly; use the Builder's methods, then call Finish.
func (b *Builder) Graph() *Graph { return b.g }

// Finish designates the graph's outputs and freezes it for handoff to the
// engine.
func (b *Builder) Finish(outputs ...int) *Graph {
	b.g.SetOutputs(outputs...)
	b.g.Freeze()
	return b.g
}

// Input appends an Input node and returns its index.
func (b *Builder) Input(name string, dtype DType, shape ...int) (int, error) {
	return b.g.append(&Input{Name: name, Shape: Shape(shape), DType: dtype})
}

// Parameter appends a Parameter node and returns its index.
func (b *Builder) Parameter(name string, dtype DType, shape ...int) (int, error) {
	return b.g.append(&Parameter{Name: name, Shape: Shape(shape), DType: dtype})
}

// ConstantF32 appends a Constant node holding row-major float32 data.
func (b *Builder) ConstantF32(values []float32, shape ...int) (int, error) {
	s := Shape(shape)
	if s.Elements() != len(values) {
		return -1, &ShapeError{Node: b.g.Len(), Detail: fmt.Sprintf("constant has %d values, shape %s wants %d", len(values), s, s.Elements())}
	}
	data := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(v))
	}
	return b.g.append(&Constant{Shape: s.Clone(), DType: F32, Data: data})
}

// ConstantF16 appends a Constant node holding row-major float16 data, using
// x448/float16 to encode from float32 values the caller already has in
// hand.
func (b *Builder) ConstantF16(values []float32, shape ...int) (int, error) {
	s := Shape(shape)
	if s.Elements() != len(values) {
		return -1, &ShapeError{Node: b.g.Len(), Detail: fmt.Sprintf("constant has %d values, shape %s wants %d", len(values), s, s.Elements())}
	}
	data := make([]byte, len(values)*2)
	for i, v := range values {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(float16.Fromfloat32(v)))
	}
	return b.g.append(&Constant{Shape: s.Clone(), DType: F16, Data: data})
}

// ConstantI32 appends a Constant node holding row-major int32 data.
func (b *Builder) ConstantI32(values []int32, shape ...int) (int, error) {
	s := Shape(shape)
	if s.Elements() != len(values) {
		return -1, &ShapeError{Node: b.g.Len(), Detail: fmt.Sprintf("constant has %d values, shape %s wants %d", len(values), s, s.Elements())}
	}
	data := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(data[i*4:], uint32(v))
	}
	return b.g.append(&Constant{Shape: s.Clone(), DType: I32, Data: data})
}

// op validates input indices against invariant 1 (strict forward-reference),
// infers the output shape, and appends the Op node.
func (b *Builder) op(kind OpType, inputs []int, params []int) (int, error) {
	next := b.g.Len()
	shapes := make([]Shape, len(inputs))
	dtype := F32
	for i, in := range inputs {
		if in < 0 || in >= next {
			return -1, &StructuralError{Node: next, Detail: fmt.Sprintf("%s input index %d is not strictly less than %d", kind, in, next)}
		}
		n := b.g.Node(in)
		shapes[i] = n.OutputShape()
		if i == 0 {
			dtype = n.OutputDType()
		}
		mustMatchDType := !kind.IsDataMovement() || kind == Concat
		if mustMatchDType && n.OutputDType() != dtype {
			return -1, &ShapeError{Node: next, Op: kind, Detail: "mixed dtypes across inputs are not supported"}
		}
		if !kind.IsDataMovement() && !n.OutputDType().IsArithmetic() {
			return -1, &ShapeError{Node: next, Op: kind, Detail: fmt.Sprintf("dtype %s cannot flow into arithmetic op %s", n.OutputDType(), kind)}
		}
	}
	outShape, resolvedParams, err := inferShape(kind, shapes, params)
	if err != nil {
		return -1, &ShapeError{Node: next, Op: kind, Detail: err.Error(), Err: err}
	}
	return b.g.append(&Op{Kind: kind, Inputs: append([]int(nil), inputs...), Shape: outShape, DType: dtype, Params: resolvedParams})
}

func (b *Builder) Add(a, c int) (int, error) { return b.op(Add, []int{a, c}, nil) }
func (b *Builder) Sub(a, c int) (int, error) { return b.op(Sub, []int{a, c}, nil) }
func (b *Builder) Mul(a, c int) (int, error) { return b.op(Mul, []int{a, c}, nil) }
func (b *Builder) Div(a, c int) (int, error) { return b.op(Div, []int{a, c}, nil) }

func (b *Builder) MatMul(a, c int) (int, error)  { return b.op(MatMul, []int{a, c}, nil) }
func (b *Builder) BiasAdd(x, bias int) (int, error) {
	return b.op(BiasAdd, []int{x, bias}, nil)
}
func (b *Builder) ReLU(x int) (int, error) { return b.op(ReLU, []int{x}, nil) }
func (b *Builder) Exp(x int) (int, error)  { return b.op(Exp, []int{x}, nil) }
func (b *Builder) Sqrt(x int) (int, error) { return b.op(Sqrt, []int{x}, nil) }
func (b *Builder) Log(x int) (int, error)  { return b.op(Log, []int{x}, nil) }

func (b *Builder) ReduceSum(x int) (int, error) { return b.op(ReduceSum, []int{x}, nil) }
func (b *Builder) ReduceMax(x int) (int, error) { return b.op(ReduceMax, []int{x}, nil) }

// Transpose permutes x's dimensions by perm, which must be a permutation of
// 0..rank-1.
func (b *Builder) Transpose(x int, perm ...int) (int, error) {
	return b.op(Transpose, []int{x}, append([]int(nil), perm...))
}

// Reshape reinterprets x's element-count-preserving shape as newShape.
func (b *Builder) Reshape(x int, newShape ...int) (int, error) {
	return b.op(Reshape, []int{x}, append([]int(nil), newShape...))
}

// Concat joins inputs along axis.
func (b *Builder) Concat(axis int, inputs ...int) (int, error) {
	return b.op(Concat, append([]int(nil), inputs...), []int{axis})
}

// Slice takes the half-open range [start, end) of x along axis. Negative
// start/end wrap once relative to the axis's dimension.
func (b *Builder) Slice(x, axis, start, end int) (int, error) {
	return b.op(Slice, []int{x}, []int{axis, start, end})
}

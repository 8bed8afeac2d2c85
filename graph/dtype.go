// Package graph implements the tensor intermediate representation: a typed,
// index-referenced, variant-node DAG with shape inference and the builder
// that constructs it.
package graph

import "fmt"

// DType is the element type of a tensor. Only F32 has arithmetic kernels;
// the others may appear in the IR (as Constant payloads, or flowing through
// pure data-movement ops) but must never reach an arithmetic kernel.
type DType int

const (
	F32 DType = iota
	F16
	I32
	I8
)

// ByteWidth returns the size in bytes of one element of the given type.
func (d DType) ByteWidth() int {
	switch d {
	case F32:
		return 4
	case F16:
		return 2
	case I32:
		return 4
	case I8:
		return 1
	default:
		panic(fmt.Sprintf("graph: unknown dtype %d", int(d)))
	}
}

func (d DType) String() string {
	switch d {
	case F32:
		return "f32"
	case F16:
		return "f16"
	case I32:
		return "i32"
	case I8:
		return "i8"
	default:
		return fmt.Sprintf("dtype(%d)", int(d))
	}
}

// IsArithmetic reports whether d may flow into an arithmetic kernel
// (Add/Sub/Mul/Div/MatMul/BiasAdd/ReLU/ReduceSum/ReduceMax/Exp/Sqrt/Log).
// Reshape/Transpose/Concat/Slice are pure data movement and are allowed for
// any dtype.
func (d DType) IsArithmetic() bool {
	return d == F32
}

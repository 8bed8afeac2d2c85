package engine

import (
	"fmt"

	"github.com/denseforge/denseforge/graph"
	"github.com/denseforge/denseforge/kernel"
	"github.com/denseforge/denseforge/kernel/reference"
	"github.com/denseforge/denseforge/kernel/vector"
)

// familyTag returns the short trace/log tag for a dispatch: "Reference" or
// "SIMD" with the engine's architecture suffix.
func (e *Engine) familyTag(usedVector bool) string {
	if !usedVector {
		return "Reference"
	}
	if name := e.arch.VectorFamilyName(); name != "" {
		return "SIMD[" + name + "]"
	}
	return "SIMD"
}

// vectorEligible reports whether the vector family has any implementation
// at all for this op kind in this version — it does not consider shape
// constraints, which are checked separately per op.
func vectorEligible(kind graph.OpType) bool {
	switch kind {
	case graph.Add, graph.Sub, graph.Mul, graph.Div, graph.MatMul:
		return true
	default:
		return false
	}
}

// chooseFamily implements the engine's kernel-family selection policy
// (§4.4): Reference policy always uses the scalar kernel. Vector policy
// uses the architecture kernel if compiled in, supported on the host, and
// eligible for this op/shape; otherwise it falls back to reference in
// research mode (recording the fallback in the trace detail) and fails with
// a PolicyError in deployment mode.
func (e *Engine) chooseFamily(nodeIdx int, kind graph.OpType, shapeOK bool) (useVector bool, err error) {
	if e.policy == Reference {
		return false, nil
	}
	if e.caps.VectorCompiled && e.caps.VectorSupportedHost && vectorEligible(kind) && shapeOK {
		return true, nil
	}
	if e.mode == Deployment {
		return false, &PolicyError{Node: nodeIdx, Detail: fmt.Sprintf("vector kernel unavailable for %s and strict deployment mode forbids reference fallback", kind)}
	}
	return false, nil
}

// dispatchOp resolves arguments and invokes the appropriate kernel for one
// Op node, recording NodeExecutionStart/End and KernelDispatch trace events.
func (e *Engine) dispatchOp(n graph.Node) error {
	op, _ := n.AsOp()
	e.tracer.Record(NodeExecutionStart, n.Index, op.Kind.String())

	// Ops with no vector implementation always run the reference kernel;
	// under Vector policy that is a fallback, which deployment mode forbids.
	if !vectorEligible(op.Kind) {
		if _, err := e.chooseFamily(n.Index, op.Kind, false); err != nil {
			e.tracer.Record(NodeExecutionEnd, n.Index, op.Kind.String())
			return err
		}
	}

	var err error
	switch {
	case op.Kind.IsElementwiseBinary():
		err = e.dispatchElementwise(n, op)
	case op.Kind == graph.MatMul:
		err = e.dispatchMatMul(n, op)
	case op.Kind == graph.BiasAdd:
		err = e.dispatchBiasAdd(n, op)
	case op.Kind.IsUnaryArithmetic():
		err = e.dispatchUnary(n, op)
	case op.Kind == graph.ReduceSum || op.Kind == graph.ReduceMax:
		err = e.dispatchReduce(n, op)
	case op.Kind == graph.Transpose:
		err = e.dispatchTranspose(n, op)
	case op.Kind == graph.Reshape:
		err = e.dispatchReshape(n, op)
	case op.Kind == graph.Concat:
		err = e.dispatchConcat(n, op)
	case op.Kind == graph.Slice:
		err = e.dispatchSlice(n, op)
	default:
		err = &PolicyError{Node: n.Index, Detail: fmt.Sprintf("unsupported op %s", op.Kind)}
	}

	e.tracer.Record(NodeExecutionEnd, n.Index, op.Kind.String())
	return err
}

func refBinOp(kind graph.OpType) reference.BinOp {
	switch kind {
	case graph.Add:
		return reference.AddOp
	case graph.Sub:
		return reference.SubOp
	case graph.Mul:
		return reference.MulOp
	default:
		return reference.DivOp
	}
}

func vecBinOp(kind graph.OpType) vector.BinOp {
	switch kind {
	case graph.Add:
		return vector.Add
	case graph.Sub:
		return vector.Sub
	case graph.Mul:
		return vector.Mul
	default:
		return vector.Div
	}
}

func (e *Engine) dispatchElementwise(n graph.Node, op *graph.Op) error {
	a := e.buffers[op.Inputs[0]]
	c := e.buffers[op.Inputs[1]]
	out := e.buffers[n.Index]

	aVals := a.Floats(e.arena)
	cVals := c.Floats(e.arena)
	outVals := make([]float32, out.Shape().Elements())

	aCount, cCount := len(aVals), len(cVals)
	if cCount > aCount {
		return &graph.ShapeError{Node: n.Index, Op: op.Kind, Detail: "broadcast operand larger than the op's declared output"}
	}
	inner := 1
	if a.Shape().Rank() > 0 {
		inner = a.Shape()[a.Shape().Rank()-1]
	}

	kindB, outer, _, status := kernel.ResolveBroadcast(aCount, cCount, inner)
	if !status.Ok() {
		return &KernelFailure{Node: n.Index, Status: status, Detail: "broadcast shape resolution"}
	}

	useVector, err := e.chooseFamily(n.Index, op.Kind, kindB == kernel.EqualCount)
	if err != nil {
		return err
	}

	status = e.runElementwise(kindB, useVector, outVals, aVals, cVals, outer, inner, op.Kind)
	if !status.Ok() && useVector {
		if e.mode == Deployment {
			return &PolicyError{Node: n.Index, Detail: fmt.Sprintf("vector kernel failed (%s) and strict deployment mode forbids reference fallback", status)}
		}
		e.tracer.Record(KernelDispatch, n.Index, fmt.Sprintf("SIMD failed (%s), falling back to Reference inputs=%v", status, op.Inputs))
		useVector = false
		status = e.runElementwise(kindB, false, outVals, aVals, cVals, outer, inner, op.Kind)
	}
	if !status.Ok() {
		return &KernelFailure{Node: n.Index, Status: status, Detail: op.Kind.String()}
	}

	out.SetFloats(e.arena, outVals)
	e.tracer.Record(KernelDispatch, n.Index, fmt.Sprintf("%s inputs=%v", e.familyTag(useVector), op.Inputs))
	return nil
}

func (e *Engine) runElementwise(kindB kernel.BroadcastKind, useVector bool, out, a, c []float32, outer, inner int, opKind graph.OpType) kernel.Status {
	if useVector && kindB == kernel.EqualCount {
		return vector.Equal(out, a, c, vecBinOp(opKind))
	}
	op := refBinOp(opKind)
	switch kindB {
	case kernel.EqualCount:
		return reference.Equal(out, a, c, op)
	case kernel.ColumnVector:
		return reference.ColumnVector(out, a, c, outer, inner, op)
	case kernel.RowVector:
		return reference.RowVector(out, a, c, outer, inner, op)
	case kernel.Scalar:
		var b float32
		if len(c) > 0 {
			b = c[0]
		}
		return reference.Scalar(out, a, b, op)
	default:
		return kernel.InvalidShape
	}
}

func (e *Engine) dispatchMatMul(n graph.Node, op *graph.Op) error {
	a := e.buffers[op.Inputs[0]]
	b := e.buffers[op.Inputs[1]]
	out := e.buffers[n.Index]

	m, k := a.Shape()[0], a.Shape()[1]
	n2 := b.Shape()[1]

	aVals := a.Floats(e.arena)
	bVals := b.Floats(e.arena)
	outVals := make([]float32, out.Shape().Elements())

	useVector, err := e.chooseFamily(n.Index, op.Kind, true)
	if err != nil {
		return err
	}

	var status kernel.Status
	if useVector {
		status = vector.GEMM(m, n2, k, 1, aVals, k, bVals, n2, 0, outVals, n2)
		if !status.Ok() {
			if e.mode == Deployment {
				return &PolicyError{Node: n.Index, Detail: fmt.Sprintf("vector kernel failed (%s) and strict deployment mode forbids reference fallback", status)}
			}
			e.tracer.Record(KernelDispatch, n.Index, fmt.Sprintf("SIMD failed (%s), falling back to Reference inputs=%v", status, op.Inputs))
			useVector = false
		}
	}
	if !useVector {
		status = reference.GEMM(m, n2, k, 1, aVals, k, bVals, n2, 0, outVals, n2)
	}
	if !status.Ok() {
		return &KernelFailure{Node: n.Index, Status: status, Detail: "MatMul"}
	}

	out.SetFloats(e.arena, outVals)
	e.tracer.Record(KernelDispatch, n.Index, fmt.Sprintf("%s inputs=%v", e.familyTag(useVector), op.Inputs))
	return nil
}

func (e *Engine) dispatchBiasAdd(n graph.Node, op *graph.Op) error {
	x := e.buffers[op.Inputs[0]]
	bias := e.buffers[op.Inputs[1]]
	out := e.buffers[n.Index]

	m, nn := x.Shape()[0], x.Shape()[1]
	xVals := x.Floats(e.arena)
	biasVals := bias.Floats(e.arena)
	outVals := make([]float32, out.Shape().Elements())

	status := reference.RowVector(outVals, xVals, biasVals, m, nn, reference.AddOp)
	if !status.Ok() {
		return &KernelFailure{Node: n.Index, Status: status, Detail: "BiasAdd"}
	}
	out.SetFloats(e.arena, outVals)
	e.tracer.Record(KernelDispatch, n.Index, fmt.Sprintf("%s inputs=%v", e.familyTag(false), op.Inputs))
	return nil
}

func (e *Engine) dispatchUnary(n graph.Node, op *graph.Op) error {
	x := e.buffers[op.Inputs[0]]
	out := e.buffers[n.Index]
	xVals := x.Floats(e.arena)
	outVals := make([]float32, out.Shape().Elements())

	var status kernel.Status
	switch op.Kind {
	case graph.ReLU:
		status = reference.ReLU(outVals, xVals)
	case graph.Exp:
		status = reference.Exp(outVals, xVals)
	case graph.Sqrt:
		status = reference.Sqrt(outVals, xVals)
	case graph.Log:
		status = reference.Log(outVals, xVals)
	}
	if !status.Ok() {
		return &KernelFailure{Node: n.Index, Status: status, Detail: op.Kind.String()}
	}
	out.SetFloats(e.arena, outVals)
	e.tracer.Record(KernelDispatch, n.Index, fmt.Sprintf("%s inputs=%v", e.familyTag(false), op.Inputs))
	return nil
}

func (e *Engine) dispatchReduce(n graph.Node, op *graph.Op) error {
	x := e.buffers[op.Inputs[0]]
	out := e.buffers[n.Index]
	xVals := x.Floats(e.arena)
	outVals := make([]float32, out.Shape().Elements())

	shape := x.Shape()
	inner := shape[shape.Rank()-1]
	outer := shape.Elements() / inner

	var status kernel.Status
	if op.Kind == graph.ReduceSum {
		status = reference.ReduceSum(outVals, xVals, outer, inner)
	} else {
		status = reference.ReduceMax(outVals, xVals, outer, inner)
	}
	if !status.Ok() {
		return &KernelFailure{Node: n.Index, Status: status, Detail: op.Kind.String()}
	}
	out.SetFloats(e.arena, outVals)
	e.tracer.Record(KernelDispatch, n.Index, fmt.Sprintf("%s inputs=%v", e.familyTag(false), op.Inputs))
	return nil
}

func (e *Engine) dispatchTranspose(n graph.Node, op *graph.Op) error {
	x := e.buffers[op.Inputs[0]]
	out := e.buffers[n.Index]
	status := reference.Transpose(out.Bytes(e.arena), x.Bytes(e.arena), x.Shape(), op.Params, x.DType().ByteWidth())
	if !status.Ok() {
		return &KernelFailure{Node: n.Index, Status: status, Detail: "Transpose"}
	}
	e.tracer.Record(KernelDispatch, n.Index, fmt.Sprintf("%s inputs=%v", e.familyTag(false), op.Inputs))
	return nil
}

func (e *Engine) dispatchReshape(n graph.Node, op *graph.Op) error {
	x := e.buffers[op.Inputs[0]]
	out := e.buffers[n.Index]
	status := reference.Reshape(out.Bytes(e.arena), x.Bytes(e.arena))
	if !status.Ok() {
		return &KernelFailure{Node: n.Index, Status: status, Detail: "Reshape"}
	}
	e.tracer.Record(KernelDispatch, n.Index, fmt.Sprintf("%s inputs=%v", e.familyTag(false), op.Inputs))
	return nil
}

func (e *Engine) dispatchConcat(n graph.Node, op *graph.Op) error {
	out := e.buffers[n.Index]
	axis := op.Params[0]

	ins := make([][]byte, len(op.Inputs))
	shapes := make([]graph.Shape, len(op.Inputs))
	for i, idx := range op.Inputs {
		b := e.buffers[idx]
		ins[i] = b.Bytes(e.arena)
		shapes[i] = b.Shape()
	}
	shapeInts := make([][]int, len(shapes))
	for i, s := range shapes {
		shapeInts[i] = []int(s)
	}

	status := reference.Concat(out.Bytes(e.arena), ins, shapeInts, axis, out.DType().ByteWidth())
	if !status.Ok() {
		return &KernelFailure{Node: n.Index, Status: status, Detail: "Concat"}
	}
	e.tracer.Record(KernelDispatch, n.Index, fmt.Sprintf("%s inputs=%v", e.familyTag(false), op.Inputs))
	return nil
}

func (e *Engine) dispatchSlice(n graph.Node, op *graph.Op) error {
	x := e.buffers[op.Inputs[0]]
	out := e.buffers[n.Index]
	axis, start, end := op.Params[0], op.Params[1], op.Params[2]
	status := reference.Slice(out.Bytes(e.arena), x.Bytes(e.arena), x.Shape(), axis, start, end, x.DType().ByteWidth())
	if !status.Ok() {
		return &KernelFailure{Node: n.Index, Status: status, Detail: "Slice"}
	}
	e.tracer.Record(KernelDispatch, n.Index, fmt.Sprintf("%s inputs=%v", e.familyTag(false), op.Inputs))
	return nil
}

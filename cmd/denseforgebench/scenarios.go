package main

import (
	"fmt"

	"github.com/denseforge/denseforge/engine"
	"github.com/denseforge/denseforge/graph"
)

// scenario builds a graph, feeds it caller inputs through the supplied
// engine, and returns the output node index to read back. Each scenario
// corresponds to one of the concrete end-to-end cases this engine is
// validated against.
type scenario struct {
	name        string
	description string
	build       func(e *engine.Engine) (outputNode int, err error)
}

var scenarios = []scenario{
	{
		name:        "gemm",
		description: "2x2 GEMM: A=[[1,2],[3,4]], B=[[0.5,1],[1.5,2]]",
		build:       buildGEMM,
	},
	{
		name:        "gemm-bias-relu",
		description: "GEMM -> BiasAdd -> ReLU over a 4x4 identity weight",
		build:       buildGEMMBiasReLU,
	},
	{
		name:        "softmax-stability",
		description: "Max-shifted Softmax on [[0,0,0],[1000,1000,1000]]",
		build:       buildSoftmaxStability,
	},
	{
		name:        "cross-entropy",
		description: "CrossEntropy(logits=[[100,0,0],[0,0,0]], target=[[1,0,0],[1,0,0]])",
		build:       buildCrossEntropy,
	},
	{
		name:        "concat-axis0",
		description: "Concat a [2,2] and a [3,2] tensor along axis 0",
		build:       buildConcatAxis0,
	},
	{
		name:        "concat-axis1",
		description: "Concat [[1,2],[3,4]] and [[5],[6]] along axis 1",
		build:       buildConcatAxis1,
	},
	{
		name:        "transpose-reshape",
		description: "Transpose a [2,3] input then Reshape to [6]",
		build:       buildTransposeReshape,
	},
	{
		name:        "determinism",
		description: "50 successive executes of the GEMM scenario's graph",
		build:       buildGEMM,
	},
}

func findScenario(name string) (scenario, error) {
	for _, s := range scenarios {
		if s.name == name {
			return s, nil
		}
	}
	return scenario{}, fmt.Errorf("unknown scenario %q", name)
}

func buildGEMM(e *engine.Engine) (int, error) {
	b := graph.NewBuilder()
	a, err := b.Input("A", graph.F32, 2, 2)
	if err != nil {
		return 0, err
	}
	bb, err := b.Input("B", graph.F32, 2, 2)
	if err != nil {
		return 0, err
	}
	out, err := b.MatMul(a, bb)
	if err != nil {
		return 0, err
	}
	g := b.Finish(out)
	if err := e.Compile(g); err != nil {
		return 0, err
	}
	if err := e.WriteFloats(a, []float32{1, 2, 3, 4}); err != nil {
		return 0, err
	}
	if err := e.WriteFloats(bb, []float32{0.5, 1, 1.5, 2}); err != nil {
		return 0, err
	}
	return out, nil
}

func buildGEMMBiasReLU(e *engine.Engine) (int, error) {
	b := graph.NewBuilder()
	x, err := b.Input("X", graph.F32, 1, 4)
	if err != nil {
		return 0, err
	}
	w, err := b.Parameter("W", graph.F32, 4, 4)
	if err != nil {
		return 0, err
	}
	bias, err := b.Parameter("Bias", graph.F32, 4)
	if err != nil {
		return 0, err
	}
	mm, err := b.MatMul(x, w)
	if err != nil {
		return 0, err
	}
	biased, err := b.BiasAdd(mm, bias)
	if err != nil {
		return 0, err
	}
	out, err := b.ReLU(biased)
	if err != nil {
		return 0, err
	}
	g := b.Finish(out)
	if err := e.Compile(g); err != nil {
		return 0, err
	}
	if err := e.WriteFloats(x, []float32{1, 1, 1, 1}); err != nil {
		return 0, err
	}
	identity := []float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
	if err := e.WriteFloats(w, identity); err != nil {
		return 0, err
	}
	if err := e.WriteFloats(bias, []float32{-2, -0.5, 0, 2}); err != nil {
		return 0, err
	}
	return out, nil
}

func buildSoftmaxStability(e *engine.Engine) (int, error) {
	b := graph.NewBuilder()
	x, err := b.Input("X", graph.F32, 2, 3)
	if err != nil {
		return 0, err
	}
	maxVal, err := b.ReduceMax(x)
	if err != nil {
		return 0, err
	}
	shifted, err := b.Sub(x, maxVal)
	if err != nil {
		return 0, err
	}
	exps, err := b.Exp(shifted)
	if err != nil {
		return 0, err
	}
	sums, err := b.ReduceSum(exps)
	if err != nil {
		return 0, err
	}
	out, err := b.Div(exps, sums)
	if err != nil {
		return 0, err
	}
	g := b.Finish(out)
	if err := e.Compile(g); err != nil {
		return 0, err
	}
	if err := e.WriteFloats(x, []float32{0, 0, 0, 1000, 1000, 1000}); err != nil {
		return 0, err
	}
	return out, nil
}

func buildCrossEntropy(e *engine.Engine) (int, error) {
	b := graph.NewBuilder()
	logits, err := b.Input("Logits", graph.F32, 2, 3)
	if err != nil {
		return 0, err
	}
	target, err := b.Input("Target", graph.F32, 2, 3)
	if err != nil {
		return 0, err
	}

	maxVal, err := b.ReduceMax(logits)
	if err != nil {
		return 0, err
	}
	shifted, err := b.Sub(logits, maxVal)
	if err != nil {
		return 0, err
	}
	exps, err := b.Exp(shifted)
	if err != nil {
		return 0, err
	}
	sums, err := b.ReduceSum(exps)
	if err != nil {
		return 0, err
	}
	logSums, err := b.Log(sums)
	if err != nil {
		return 0, err
	}
	logSoftmax, err := b.Sub(shifted, logSums)
	if err != nil {
		return 0, err
	}
	product, err := b.Mul(target, logSoftmax)
	if err != nil {
		return 0, err
	}
	summed, err := b.ReduceSum(product)
	if err != nil {
		return 0, err
	}
	negOne, err := b.ConstantF32([]float32{-1})
	if err != nil {
		return 0, err
	}
	out, err := b.Mul(summed, negOne)
	if err != nil {
		return 0, err
	}

	g := b.Finish(out)
	if err := e.Compile(g); err != nil {
		return 0, err
	}
	if err := e.WriteFloats(logits, []float32{100, 0, 0, 0, 0, 0}); err != nil {
		return 0, err
	}
	if err := e.WriteFloats(target, []float32{1, 0, 0, 1, 0, 0}); err != nil {
		return 0, err
	}
	return out, nil
}

func buildConcatAxis0(e *engine.Engine) (int, error) {
	b := graph.NewBuilder()
	a, err := b.Input("A", graph.F32, 2, 2)
	if err != nil {
		return 0, err
	}
	c, err := b.Input("C", graph.F32, 3, 2)
	if err != nil {
		return 0, err
	}
	out, err := b.Concat(0, a, c)
	if err != nil {
		return 0, err
	}
	g := b.Finish(out)
	if err := e.Compile(g); err != nil {
		return 0, err
	}
	if err := e.WriteFloats(a, []float32{1, 2, 3, 4}); err != nil {
		return 0, err
	}
	if err := e.WriteFloats(c, []float32{5, 6, 7, 8, 9, 10}); err != nil {
		return 0, err
	}
	return out, nil
}

func buildConcatAxis1(e *engine.Engine) (int, error) {
	b := graph.NewBuilder()
	a, err := b.Input("A", graph.F32, 2, 2)
	if err != nil {
		return 0, err
	}
	c, err := b.Input("C", graph.F32, 2, 1)
	if err != nil {
		return 0, err
	}
	out, err := b.Concat(1, a, c)
	if err != nil {
		return 0, err
	}
	g := b.Finish(out)
	if err := e.Compile(g); err != nil {
		return 0, err
	}
	if err := e.WriteFloats(a, []float32{1, 2, 3, 4}); err != nil {
		return 0, err
	}
	if err := e.WriteFloats(c, []float32{5, 6}); err != nil {
		return 0, err
	}
	return out, nil
}

func buildTransposeReshape(e *engine.Engine) (int, error) {
	b := graph.NewBuilder()
	x, err := b.Input("X", graph.F32, 2, 3)
	if err != nil {
		return 0, err
	}
	t, err := b.Transpose(x, 1, 0)
	if err != nil {
		return 0, err
	}
	out, err := b.Reshape(t, 6)
	if err != nil {
		return 0, err
	}
	g := b.Finish(out)
	if err := e.Compile(g); err != nil {
		return 0, err
	}
	if err := e.WriteFloats(x, []float32{1, 2, 3, 4, 5, 6}); err != nil {
		return 0, err
	}
	return out, nil
}

package compose

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/denseforge/denseforge/engine"
	"github.com/denseforge/denseforge/graph"
)

func onlyPrimitiveOps(t *testing.T, g *graph.Graph) {
	t.Helper()
	for _, n := range g.Nodes() {
		op, ok := n.AsOp()
		if !ok {
			continue
		}
		if !graph.LoweredWhitelist[op.Kind] {
			t.Fatalf("composer introduced a non-primitive op kind %s at node %d", op.Kind, n.Index)
		}
	}
}

func runOnce(t *testing.T, g *graph.Graph, inputs map[int][]float32, output int) []float32 {
	t.Helper()
	e := engine.New(engine.Reference, engine.Research)
	defer e.Close()
	if err := e.Compile(g); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	for idx, vals := range inputs {
		if err := e.WriteFloats(idx, vals); err != nil {
			t.Fatalf("WriteFloats(%d): %v", idx, err)
		}
	}
	if err := e.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	out, err := e.ReadFloats(output)
	if err != nil {
		t.Fatalf("ReadFloats: %v", err)
	}
	return out
}

func TestSoftmaxRowsSumToOne(t *testing.T) {
	b := graph.NewBuilder()
	x, _ := b.Input("x", graph.F32, 2, 3)
	out, err := Softmax(b, x)
	require.NoError(t, err)
	g := b.Finish(out)
	onlyPrimitiveOps(t, g)

	values := runOnce(t, g, map[int][]float32{x: {1, 2, 3, -1, 0, 1}}, out)
	for row := 0; row < 2; row++ {
		sum := values[row*3] + values[row*3+1] + values[row*3+2]
		require.InDelta(t, 1.0, sum, 1e-4)
	}
}

func TestSoftmaxNumericalStability(t *testing.T) {
	b := graph.NewBuilder()
	x, _ := b.Input("x", graph.F32, 2, 3)
	out, err := StableSoftmax(b, x)
	require.NoError(t, err)
	g := b.Finish(out)

	values := runOnce(t, g, map[int][]float32{x: {0, 0, 0, 1000, 1000, 1000}}, out)
	for _, v := range values {
		require.InDelta(t, float32(1.0/3.0), v, 1e-4)
	}
}

func TestLogSoftmaxStableSoftmaxIdentity(t *testing.T) {
	bLog := graph.NewBuilder()
	x1, _ := bLog.Input("x", graph.F32, 1, 4)
	logOut, err := LogSoftmax(bLog, x1)
	require.NoError(t, err)
	expOut, err := bLog.Exp(logOut)
	require.NoError(t, err)
	gLog := bLog.Finish(expOut)

	bStable := graph.NewBuilder()
	x2, _ := bStable.Input("x", graph.F32, 1, 4)
	stableOut, err := StableSoftmax(bStable, x2)
	require.NoError(t, err)
	gStable := bStable.Finish(stableOut)

	input := []float32{1, 2, 3, 4}
	expResult := runOnce(t, gLog, map[int][]float32{x1: input}, expOut)
	stableResult := runOnce(t, gStable, map[int][]float32{x2: input}, stableOut)

	require.Len(t, stableResult, len(expResult))
	for i := range expResult {
		require.InDelta(t, expResult[i], stableResult[i], 1e-5)
	}
}

func TestCrossEntropy(t *testing.T) {
	b := graph.NewBuilder()
	logits, _ := b.Input("logits", graph.F32, 2, 3)
	target, _ := b.Input("target", graph.F32, 2, 3)
	out, err := CrossEntropy(b, logits, target)
	require.NoError(t, err)
	g := b.Finish(out)
	onlyPrimitiveOps(t, g)

	values := runOnce(t, g, map[int][]float32{
		logits: {100, 0, 0, 0, 0, 0},
		target: {1, 0, 0, 1, 0, 0},
	}, out)

	require.Len(t, values, 2)
	require.InDelta(t, 0.0, values[0], 1e-3)
	require.InDelta(t, math.Log(3), values[1], 1e-3)
}

func TestLayerNormMeanAndVariance(t *testing.T) {
	b := graph.NewBuilder()
	x, _ := b.Input("x", graph.F32, 1, 4)
	gamma, _ := b.ConstantF32([]float32{1, 1, 1, 1}, 4)
	beta, _ := b.ConstantF32([]float32{0, 0, 0, 0}, 4)
	out, err := LayerNorm(b, x, gamma, beta)
	require.NoError(t, err)
	g := b.Finish(out)
	onlyPrimitiveOps(t, g)

	values := runOnce(t, g, map[int][]float32{x: {2, 4, 4, 4}}, out)

	var mean float32
	for _, v := range values {
		mean += v
	}
	mean /= float32(len(values))
	require.InDelta(t, 0.0, mean, 1e-3)

	var variance float32
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float32(len(values))
	require.InDelta(t, 1.0, variance, 1e-3)
}

func TestAttentionUsesOnlyPrimitiveOps(t *testing.T) {
	b := graph.NewBuilder()
	q, _ := b.Input("q", graph.F32, 2, 4)
	k, _ := b.Input("k", graph.F32, 2, 4)
	v, _ := b.Input("v", graph.F32, 2, 4)
	out, err := Attention(b, q, k, v)
	require.NoError(t, err)
	g := b.Finish(out)
	onlyPrimitiveOps(t, g)

	if g.Node(out).OutputShape().Elements() != 8 {
		t.Fatalf("attention output has %d elements, want 8", g.Node(out).OutputShape().Elements())
	}
}

func TestMultiHeadAttentionUsesOnlyPrimitiveOps(t *testing.T) {
	b := graph.NewBuilder()
	x, _ := b.Input("x", graph.F32, 4, 8)
	wq, _ := b.Parameter("wq", graph.F32, 8, 8)
	wk, _ := b.Parameter("wk", graph.F32, 8, 8)
	wv, _ := b.Parameter("wv", graph.F32, 8, 8)
	wo, _ := b.Parameter("wo", graph.F32, 8, 8)

	out, err := MultiHeadAttention(b, x, MHAWeights{Wq: wq, Wk: wk, Wv: wv, Wo: wo}, 2)
	require.NoError(t, err)
	g := b.Finish(out)
	onlyPrimitiveOps(t, g)

	want := graph.Shape{4, 8}
	if !g.Node(out).OutputShape().Equal(want) {
		t.Fatalf("MHA output shape = %s, want %s", g.Node(out).OutputShape(), want)
	}
}

func TestMultiHeadAttentionRejectsIndivisibleHeads(t *testing.T) {
	b := graph.NewBuilder()
	x, _ := b.Input("x", graph.F32, 4, 8)
	wq, _ := b.Parameter("wq", graph.F32, 8, 8)
	wk, _ := b.Parameter("wk", graph.F32, 8, 8)
	wv, _ := b.Parameter("wv", graph.F32, 8, 8)
	wo, _ := b.Parameter("wo", graph.F32, 8, 8)

	_, err := MultiHeadAttention(b, x, MHAWeights{Wq: wq, Wk: wk, Wv: wv, Wo: wo}, 3)
	require.Error(t, err)
}

func TestTransformerEncoderUsesOnlyPrimitiveOpsAndPreservesShape(t *testing.T) {
	b := graph.NewBuilder()
	x, _ := b.Input("x", graph.F32, 4, 8)

	w := EncoderWeights{
		Heads: 2,
		Attention: MHAWeights{
			Wq: mustParam(b, "wq", 8, 8),
			Wk: mustParam(b, "wk", 8, 8),
			Wv: mustParam(b, "wv", 8, 8),
			Wo: mustParam(b, "wo", 8, 8),
		},
		FFNWeight1: mustParam(b, "ffn_w1", 8, 16),
		FFNBias1:   mustParam(b, "ffn_b1", 16),
		FFNWeight2: mustParam(b, "ffn_w2", 16, 8),
		FFNBias2:   mustParam(b, "ffn_b2", 8),

		LayerNorm1Gamma: mustParam(b, "ln1_gamma", 8),
		LayerNorm1Beta:  mustParam(b, "ln1_beta", 8),
		LayerNorm2Gamma: mustParam(b, "ln2_gamma", 8),
		LayerNorm2Beta:  mustParam(b, "ln2_beta", 8),
	}

	out, err := TransformerEncoder(b, x, w)
	require.NoError(t, err)
	g := b.Finish(out)
	onlyPrimitiveOps(t, g)

	want := graph.Shape{4, 8}
	if !g.Node(out).OutputShape().Equal(want) {
		t.Fatalf("TransformerEncoder output shape = %s, want %s", g.Node(out).OutputShape(), want)
	}
}

func mustParam(b *graph.Builder, name string, shape ...int) int {
	idx, err := b.Parameter(name, graph.F32, shape...)
	if err != nil {
		panic(err)
	}
	return idx
}

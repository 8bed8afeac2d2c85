package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/denseforge/denseforge/graph"
)

func gemmGraph(t *testing.T) (*graph.Graph, int, int, int) {
	t.Helper()
	b := graph.NewBuilder()
	a, err := b.Input("a", graph.F32, 2, 2)
	require.NoError(t, err)
	w, err := b.Input("w", graph.F32, 2, 2)
	require.NoError(t, err)
	out, err := b.MatMul(a, w)
	require.NoError(t, err)
	return b.Finish(out), a, w, out
}

func TestEngineGEMMScenario(t *testing.T) {
	g, a, w, out := gemmGraph(t)
	e := New(Reference, Research)
	defer e.Close()

	require.NoError(t, e.Compile(g))
	require.NoError(t, e.WriteFloats(a, []float32{1, 2, 3, 4}))
	require.NoError(t, e.WriteFloats(w, []float32{0.5, 1, 1.5, 2}))
	require.NoError(t, e.Execute())

	got, err := e.ReadFloats(out)
	require.NoError(t, err)
	require.InDeltaSlice(t, []float32{3.5, 5, 7.5, 11}, got, 1e-6)
}

func TestEngineGEMMBiasReLUScenario(t *testing.T) {
	b := graph.NewBuilder()
	x, _ := b.Input("x", graph.F32, 1, 4)
	w, _ := b.Parameter("w", graph.F32, 4, 4)
	bias, _ := b.Parameter("bias", graph.F32, 4)
	mm, err := b.MatMul(x, w)
	require.NoError(t, err)
	biased, err := b.BiasAdd(mm, bias)
	require.NoError(t, err)
	out, err := b.ReLU(biased)
	require.NoError(t, err)
	g := b.Finish(out)

	e := New(Reference, Research)
	defer e.Close()
	require.NoError(t, e.Compile(g))
	require.NoError(t, e.WriteFloats(x, []float32{1, 1, 1, 1}))
	require.NoError(t, e.WriteFloats(w, []float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}))
	require.NoError(t, e.WriteFloats(bias, []float32{-2, -0.5, 0, 2}))
	require.NoError(t, e.Execute())

	got, err := e.ReadFloats(out)
	require.NoError(t, err)
	require.InDeltaSlice(t, []float32{0, 0.5, 1, 3}, got, 1e-6)
}

func TestEngineConcatAxis0Scenario(t *testing.T) {
	b := graph.NewBuilder()
	x, _ := b.Input("x", graph.F32, 2, 2)
	y, _ := b.Input("y", graph.F32, 3, 2)
	out, err := b.Concat(0, x, y)
	require.NoError(t, err)
	g := b.Finish(out)

	e := New(Reference, Research)
	defer e.Close()
	require.NoError(t, e.Compile(g))
	require.NoError(t, e.WriteFloats(x, []float32{1, 2, 3, 4}))
	require.NoError(t, e.WriteFloats(y, []float32{5, 6, 7, 8, 9, 10}))
	require.NoError(t, e.Execute())

	got, err := e.ReadFloats(out)
	require.NoError(t, err)
	require.InDeltaSlice(t, []float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, got, 1e-6)
}

func TestEngineTransposeReshapeScenario(t *testing.T) {
	b := graph.NewBuilder()
	x, _ := b.Input("x", graph.F32, 2, 3)
	t1, err := b.Transpose(x, 1, 0)
	require.NoError(t, err)
	out, err := b.Reshape(t1, 6)
	require.NoError(t, err)
	g := b.Finish(out)

	e := New(Reference, Research)
	defer e.Close()
	require.NoError(t, e.Compile(g))
	require.NoError(t, e.WriteFloats(x, []float32{1, 2, 3, 4, 5, 6}))
	require.NoError(t, e.Execute())

	got, err := e.ReadFloats(out)
	require.NoError(t, err)
	require.InDeltaSlice(t, []float32{1, 4, 2, 5, 3, 6}, got, 1e-6)
}

func TestEngineDeterministicAcrossRepeatedExecutes(t *testing.T) {
	g, a, w, out := gemmGraph(t)
	e := New(Reference, Research)
	defer e.Close()
	require.NoError(t, e.Compile(g))
	require.NoError(t, e.WriteFloats(a, []float32{1, 2, 3, 4}))
	require.NoError(t, e.WriteFloats(w, []float32{0.5, 1, 1.5, 2}))

	// Execute appends to the trace (only Compile clears it), so compare the
	// number of events each call adds.
	before := e.Tracer().Len()
	require.NoError(t, e.Execute())
	first, err := e.ReadFloats(out)
	require.NoError(t, err)
	firstPerCall := e.Tracer().Len() - before

	for i := 0; i < 50; i++ {
		before := e.Tracer().Len()
		require.NoError(t, e.Execute())
		again, err := e.ReadFloats(out)
		require.NoError(t, err)
		require.Equal(t, first, again, "iteration %d diverged", i)
		require.Equal(t, firstPerCall, e.Tracer().Len()-before, "iteration %d changed the per-call trace-event count", i)
	}
}

func TestEngineLifecycleRejectsExecuteBeforeCompile(t *testing.T) {
	e := New(Reference, Research)
	defer e.Close()
	err := e.Execute()
	require.Error(t, err)
	var ue *UsageError
	require.ErrorAs(t, err, &ue)
}

func TestEngineLifecycleRejectsDoubleCompile(t *testing.T) {
	g, _, _, _ := gemmGraph(t)
	e := New(Reference, Research)
	defer e.Close()
	require.NoError(t, e.Compile(g))
	err := e.Compile(g)
	require.Error(t, err)
}

func TestEngineDeploymentModeCompilesWhitelistedGraph(t *testing.T) {
	// LoweredWhitelist covers the full primitive op set in this version, so
	// no graph can hold an op that Deployment mode rejects; the assertion is
	// that whitelisted ops compile cleanly under Deployment mode.
	g, _, _, _ := gemmGraph(t)
	e := New(Reference, Deployment)
	defer e.Close()
	require.NoError(t, e.Compile(g))
}

func TestEngineVectorPolicyFallsBackInResearchMode(t *testing.T) {
	g, a, w, out := gemmGraph(t)
	e := New(Vector, Research)
	defer e.Close()
	require.NoError(t, e.Compile(g))
	require.NoError(t, e.WriteFloats(a, []float32{1, 2, 3, 4}))
	require.NoError(t, e.WriteFloats(w, []float32{0.5, 1, 1.5, 2}))
	require.NoError(t, e.Execute())

	got, err := e.ReadFloats(out)
	require.NoError(t, err)
	require.InDeltaSlice(t, []float32{3.5, 5, 7.5, 11}, got, 1e-4)
}

func TestEngineConcurrentEnginesAreIndependent(t *testing.T) {
	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	results := make([][]float32, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			g, a, w, out := gemmGraph(t)
			e := New(Reference, Research)
			defer e.Close()
			if err := e.Compile(g); err != nil {
				errs[i] = err
				return
			}
			if err := e.WriteFloats(a, []float32{1, 2, 3, 4}); err != nil {
				errs[i] = err
				return
			}
			if err := e.WriteFloats(w, []float32{0.5, 1, 1.5, 2}); err != nil {
				errs[i] = err
				return
			}
			if err := e.Execute(); err != nil {
				errs[i] = err
				return
			}
			out2, err := e.ReadFloats(out)
			if err != nil {
				errs[i] = err
				return
			}
			results[i] = out2
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		require.InDeltaSlice(t, []float32{3.5, 5, 7.5, 11}, results[i], 1e-6)
	}
}

package compose

import "github.com/denseforge/denseforge/graph"

// LayerNormEpsilon is the fixed ε used by LayerNorm (§4.2).
const LayerNormEpsilon = 1e-5

// LayerNorm normalizes x along its last axis and applies a learned
// per-feature scale γ and shift β:
//
//	μ ← ReduceSum(x)/N; d ← x−μ; v ← ReduceSum(d²)/N; s ← √(v+ε);
//	n ← d/s; y ← BiasAdd(n∗γ, β)
//
// μ, v, s reduce the last axis and broadcast back against x via the
// column-vector rule; γ broadcasts via the row-vector rule (Mul), β via
// BiasAdd.
func LayerNorm(b *graph.Builder, x, gamma, beta int) (int, error) {
	n, err := lastDim(b, x)
	if err != nil {
		return -1, err
	}
	nConst, err := scalar(b, float32(n))
	if err != nil {
		return -1, err
	}
	epsConst, err := scalar(b, LayerNormEpsilon)
	if err != nil {
		return -1, err
	}

	sum, err := b.ReduceSum(x)
	if err != nil {
		return -1, err
	}
	mu, err := b.Div(sum, nConst)
	if err != nil {
		return -1, err
	}
	d, err := b.Sub(x, mu)
	if err != nil {
		return -1, err
	}
	dSq, err := b.Mul(d, d)
	if err != nil {
		return -1, err
	}
	sumSq, err := b.ReduceSum(dSq)
	if err != nil {
		return -1, err
	}
	v, err := b.Div(sumSq, nConst)
	if err != nil {
		return -1, err
	}
	vEps, err := b.Add(v, epsConst)
	if err != nil {
		return -1, err
	}
	s, err := b.Sqrt(vEps)
	if err != nil {
		return -1, err
	}
	normalized, err := b.Div(d, s)
	if err != nil {
		return -1, err
	}
	scaled, err := b.Mul(normalized, gamma)
	if err != nil {
		return -1, err
	}
	return b.BiasAdd(scaled, beta)
}

package compose

import "github.com/denseforge/denseforge/graph"

// EncoderWeights names every learned tensor a single transformer encoder
// block needs: the attention projections, the two feed-forward layers, and
// the two layer-norm scale/shift pairs.
type EncoderWeights struct {
	Attention MHAWeights
	Heads     int

	FFNWeight1, FFNBias1 int
	FFNWeight2, FFNBias2 int

	LayerNorm1Gamma, LayerNorm1Beta int
	LayerNorm2Gamma, LayerNorm2Beta int
}

// TransformerEncoder lowers to:
//
//	x → MHA → Add(residual) → LayerNorm1 →
//	(MatMul;BiasAdd;ReLU;MatMul;BiasAdd) → Add(residual) → LayerNorm2
func TransformerEncoder(b *graph.Builder, x int, w EncoderWeights) (int, error) {
	attnOut, err := MultiHeadAttention(b, x, w.Attention, w.Heads)
	if err != nil {
		return -1, err
	}
	residual1, err := b.Add(x, attnOut)
	if err != nil {
		return -1, err
	}
	normed1, err := LayerNorm(b, residual1, w.LayerNorm1Gamma, w.LayerNorm1Beta)
	if err != nil {
		return -1, err
	}

	hidden, err := b.MatMul(normed1, w.FFNWeight1)
	if err != nil {
		return -1, err
	}
	hidden, err = b.BiasAdd(hidden, w.FFNBias1)
	if err != nil {
		return -1, err
	}
	hidden, err = b.ReLU(hidden)
	if err != nil {
		return -1, err
	}
	hidden, err = b.MatMul(hidden, w.FFNWeight2)
	if err != nil {
		return -1, err
	}
	hidden, err = b.BiasAdd(hidden, w.FFNBias2)
	if err != nil {
		return -1, err
	}

	residual2, err := b.Add(normed1, hidden)
	if err != nil {
		return -1, err
	}
	return LayerNorm(b, residual2, w.LayerNorm2Gamma, w.LayerNorm2Beta)
}

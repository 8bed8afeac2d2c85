package compose

import (
	"fmt"

	"github.com/denseforge/denseforge/graph"
)

// MHAWeights names the four projection matrices a MultiHeadAttention block
// needs, each [d_model, d_model].
type MHAWeights struct {
	Wq, Wk, Wv, Wo int
}

// MultiHeadAttention lowers to: linear Q/K/V projections, reshape
// [T, d_model] → [T, h, dk], transpose to [h, T, dk], per-head Attention
// over 2-D slices, concat along the head-feature axis, final output
// projection. MatMul stays 2-D throughout — this reshape-transpose-slice
// dance is exactly how the primitive 2-D MatMul is made to serve a
// multi-head computation (§4.2, §9).
func MultiHeadAttention(b *graph.Builder, x int, w MHAWeights, heads int) (int, error) {
	xShape := b.Graph().Node(x).OutputShape()
	if xShape.Rank() != 2 {
		return -1, fmt.Errorf("compose: MultiHeadAttention requires rank-2 x, got %s", xShape)
	}
	t, dModel := xShape[0], xShape[1]
	if heads <= 0 || dModel%heads != 0 {
		return -1, fmt.Errorf("compose: d_model %d is not divisible by heads %d", dModel, heads)
	}
	dk := dModel / heads

	q, err := b.MatMul(x, w.Wq)
	if err != nil {
		return -1, err
	}
	k, err := b.MatMul(x, w.Wk)
	if err != nil {
		return -1, err
	}
	v, err := b.MatMul(x, w.Wv)
	if err != nil {
		return -1, err
	}

	qh, err := headView(b, q, t, heads, dk)
	if err != nil {
		return -1, err
	}
	kh, err := headView(b, k, t, heads, dk)
	if err != nil {
		return -1, err
	}
	vh, err := headView(b, v, t, heads, dk)
	if err != nil {
		return -1, err
	}

	outs := make([]int, heads)
	for i := range heads {
		qi, err := perHeadSlice(b, qh, i, t, dk)
		if err != nil {
			return -1, err
		}
		ki, err := perHeadSlice(b, kh, i, t, dk)
		if err != nil {
			return -1, err
		}
		vi, err := perHeadSlice(b, vh, i, t, dk)
		if err != nil {
			return -1, err
		}
		oi, err := Attention(b, qi, ki, vi)
		if err != nil {
			return -1, err
		}
		outs[i] = oi
	}

	concatenated := outs[0]
	if len(outs) > 1 {
		var err error
		concatenated, err = b.Concat(1, outs...)
		if err != nil {
			return -1, err
		}
	}
	return b.MatMul(concatenated, w.Wo)
}

// headView reshapes a [T, d_model] projection into [T, h, dk] then
// transposes it to [h, T, dk] so that per-head slices are contiguous along
// the leading axis.
func headView(b *graph.Builder, proj, t, heads, dk int) (int, error) {
	reshaped, err := b.Reshape(proj, t, heads, dk)
	if err != nil {
		return -1, err
	}
	return b.Transpose(reshaped, 1, 0, 2)
}

// perHeadSlice takes head i out of a [h, T, dk] tensor and reshapes it down
// to the 2-D [T, dk] that Attention's primitive MatMul calls require.
func perHeadSlice(b *graph.Builder, headsTensor, i, t, dk int) (int, error) {
	sliced, err := b.Slice(headsTensor, 0, i, i+1)
	if err != nil {
		return -1, err
	}
	return b.Reshape(sliced, t, dk)
}

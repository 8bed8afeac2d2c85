package compose

import (
	"fmt"
	"math"

	"github.com/denseforge/denseforge/graph"
)

// Attention lowers scaled dot-product attention over 2-D Q, K, V:
//
//	KT ← Transpose(K,[1,0]); S ← MatMul(Q,KT); Ss ← Mul(S, 1/√dk);
//	P ← StableSoftmax(Ss); O ← MatMul(P,V)
//
// Q, K must both be [T, dk]; V must be [T, dv]. This version only supports
// 2-D inputs — batching or heads are handled by the caller (see
// MultiHeadAttention, which slices per head and calls this once per head).
func Attention(b *graph.Builder, q, k, v int) (int, error) {
	qShape := b.Graph().Node(q).OutputShape()
	if qShape.Rank() != 2 {
		return -1, fmt.Errorf("compose: Attention requires rank-2 Q, got %s", qShape)
	}
	dk := qShape[1]

	kt, err := b.Transpose(k, 1, 0)
	if err != nil {
		return -1, err
	}
	s, err := b.MatMul(q, kt)
	if err != nil {
		return -1, err
	}
	scale, err := scalar(b, float32(1/math.Sqrt(float64(dk))))
	if err != nil {
		return -1, err
	}
	ss, err := b.Mul(s, scale)
	if err != nil {
		return -1, err
	}
	p, err := StableSoftmax(b, ss)
	if err != nil {
		return -1, err
	}
	return b.MatMul(p, v)
}

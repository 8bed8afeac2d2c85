// Package compose provides composer helpers that lower higher-level neural
// network primitives (softmax, layer normalization, attention, multi-head
// attention, transformer encoder blocks) into subgraphs built purely from
// graph.Builder's primitive ops. None of these introduce a new runtime
// kernel; they only call into graph.Builder, the same surface any caller
// could use directly.
package compose

import (
	"fmt"

	"github.com/denseforge/denseforge/graph"
)

// scalar appends a rank-0 F32 constant holding v, for use as the smaller
// operand of a scalar-broadcast elementwise op.
func scalar(b *graph.Builder, v float32) (int, error) {
	return b.ConstantF32([]float32{v})
}

// lastDim returns the size of idx's final shape dimension in b's graph.
func lastDim(b *graph.Builder, idx int) (int, error) {
	s := b.Graph().Node(idx).OutputShape()
	if s.Rank() == 0 {
		return 0, fmt.Errorf("compose: node %d is a scalar, has no last dimension", idx)
	}
	return s[s.Rank()-1], nil
}

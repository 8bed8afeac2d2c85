package engine

import (
	"fmt"

	"github.com/denseforge/denseforge/arena"
	"github.com/denseforge/denseforge/graph"
)

// plan allocates one 64-byte-aligned buffer per node from e's arena and
// copies Constant literal payloads in. It is phase 4 of compile() (§4.4).
func (e *Engine) plan(g *graph.Graph) error {
	nodes := g.Nodes()
	e.buffers = make([]Buffer, len(nodes))

	for _, n := range nodes {
		size := n.OutputShape().Elements() * n.OutputDType().ByteWidth()
		h, err := e.arena.Allocate(size, arena.Alignment)
		if err != nil {
			return &ResourceError{Node: n.Index, Detail: err.Error(), Err: err}
		}
		e.buffers[n.Index] = Buffer{handle: h, shape: n.OutputShape(), dtype: n.OutputDType()}

		if c, ok := n.AsConstant(); ok {
			dst := e.arena.Bytes(h)
			if len(dst) != len(c.Data) {
				return &ResourceError{Node: n.Index, Detail: fmt.Sprintf("constant payload is %d bytes, buffer is %d", len(c.Data), len(dst))}
			}
			copy(dst, c.Data)
		}
	}

	stats := e.arena.Stats()
	e.tracer.Record(MemoryAllocation, -1, fmt.Sprintf("blocks=%d reserved=%d used=%d", stats.Blocks, stats.Reserved, stats.Used))
	return nil
}

// GetBuffer returns the Buffer backing node index idx. Valid once the
// engine has reached Compiled.
func (e *Engine) GetBuffer(idx int) (Buffer, error) {
	if e.state == Fresh {
		return Buffer{}, &UsageError{Detail: "GetBuffer called before compile"}
	}
	if idx < 0 || idx >= len(e.buffers) {
		return Buffer{}, &UsageError{Detail: fmt.Sprintf("node index %d out of range", idx)}
	}
	return e.buffers[idx], nil
}

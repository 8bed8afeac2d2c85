package engine

import (
	"encoding/binary"
	"math"

	"github.com/denseforge/denseforge/arena"
	"github.com/denseforge/denseforge/graph"
)

// Buffer is the engine's typed view over one node's arena-backed memory.
// The core only ever exposes Buffer internally and through Floats/Bytes —
// raw arena addresses never cross the engine's boundary (§9); the FFI
// wrapper hands out opaque buffer tokens instead of pointers.
type Buffer struct {
	handle arena.Handle
	shape  graph.Shape
	dtype  graph.DType
}

// Shape returns the buffer's tensor shape.
func (b Buffer) Shape() graph.Shape { return b.shape }

// DType returns the buffer's element type.
func (b Buffer) DType() graph.DType { return b.dtype }

// Bytes returns the buffer's raw row-major byte contents.
func (b Buffer) Bytes(a *arena.Arena) []byte {
	return a.Bytes(b.handle)
}

// Floats decodes the buffer as little-endian float32 values. Only valid
// when DType() is F32.
func (b Buffer) Floats(a *arena.Arena) []float32 {
	raw := a.Bytes(b.handle)
	out := make([]float32, len(raw)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return out
}

// SetFloats encodes values into the buffer's bytes as little-endian float32.
// len(values) must equal the buffer's element count.
func (b Buffer) SetFloats(a *arena.Arena, values []float32) {
	raw := a.Bytes(b.handle)
	for i, v := range values {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(v))
	}
}

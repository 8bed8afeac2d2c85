// Package ffi is the cgo-free boundary that will eventually sit behind a
// real C ABI (§6). It never leaks an arena address or a Go pointer across
// its surface: every Graph, Engine, and Buffer is handed out as an opaque
// int64 token resolved through an internal registry, mirroring the
// teacher's "never leak arena addresses outside the engine's lifetime"
// design note (§9). The package contains no engine logic of its own — it
// only translates typed calls into the registry-and-token shape a foreign
// caller needs.
package ffi

import (
	"fmt"
	"sync"

	"github.com/denseforge/denseforge/capability"
	"github.com/denseforge/denseforge/engine"
	"github.com/denseforge/denseforge/graph"
	"github.com/denseforge/denseforge/lowering"
)

// Handle is an opaque token identifying a registered Graph, Engine, or
// Buffer. The zero Handle is never issued and always reports NotFound.
type Handle int64

type registry struct {
	mu      sync.Mutex
	next    int64
	graphs  map[Handle]*graph.Graph
	engines map[Handle]*engine.Engine
	buffers map[Handle]bufferEntry
}

type bufferEntry struct {
	engineHandle Handle
	node         int
}

var reg = &registry{
	next:    1,
	graphs:  make(map[Handle]*graph.Graph),
	engines: make(map[Handle]*engine.Engine),
	buffers: make(map[Handle]bufferEntry),
}

func (r *registry) alloc() Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := Handle(r.next)
	r.next++
	return h
}

// RegisterGraph hands out a Handle for an already-built, frozen graph.
// Builder construction itself happens through the typed graph.Builder API —
// this is the point where a caller crosses into the token surface.
func RegisterGraph(g *graph.Graph) Handle {
	h := reg.alloc()
	reg.mu.Lock()
	reg.graphs[h] = g
	reg.mu.Unlock()
	return h
}

// ReleaseGraph drops a graph's registry entry. It does not affect any
// Engine already compiled against it.
func ReleaseGraph(h Handle) {
	reg.mu.Lock()
	delete(reg.graphs, h)
	reg.mu.Unlock()
}

func (r *registry) graph(h Handle) (*graph.Graph, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.graphs[h]
	if !ok {
		return nil, fmt.Errorf("ffi: graph handle %d not found", h)
	}
	return g, nil
}

func (r *registry) engine(h Handle) (*engine.Engine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.engines[h]
	if !ok {
		return nil, fmt.Errorf("ffi: engine handle %d not found", h)
	}
	return e, nil
}

// Create returns a new engine handle with the default policy and mode
// (Reference, Research), matching the spec's no-argument "create" entry
// point.
func Create() Handle {
	return CreateWithPolicy(int32(engine.Reference), int32(engine.Research))
}

// CreateWithPolicy returns a new engine handle with an explicit kernel
// policy and execution mode.
func CreateWithPolicy(policy, mode int32) Handle {
	e := engine.New(engine.KernelPolicy(policy), engine.ExecutionMode(mode))
	h := reg.alloc()
	reg.mu.Lock()
	reg.engines[h] = e
	reg.mu.Unlock()
	return h
}

// Compile compiles the graph behind graphHandle into the engine behind
// engineHandle.
func Compile(engineHandle, graphHandle Handle) error {
	e, err := reg.engine(engineHandle)
	if err != nil {
		return err
	}
	g, err := reg.graph(graphHandle)
	if err != nil {
		return err
	}
	return e.Compile(g)
}

// Execute runs the compiled engine behind engineHandle.
func Execute(engineHandle Handle) error {
	e, err := reg.engine(engineHandle)
	if err != nil {
		return err
	}
	return e.Execute()
}

// Destroy closes an engine (resetting its arena) and drops its registry entry, along
// with any buffer tokens issued for it. The handle must not be used again.
func Destroy(engineHandle Handle) {
	reg.mu.Lock()
	if e, ok := reg.engines[engineHandle]; ok {
		e.Close()
		delete(reg.engines, engineHandle)
	}
	for bh, entry := range reg.buffers {
		if entry.engineHandle == engineHandle {
			delete(reg.buffers, bh)
		}
	}
	reg.mu.Unlock()
}

// GetBuffer returns a buffer token for node, rather than a raw pointer —
// the arena address backing it never crosses this boundary. Use
// BufferLen/ReadFloats/WriteFloats to operate on it.
func GetBuffer(engineHandle Handle, node int) (Handle, error) {
	e, err := reg.engine(engineHandle)
	if err != nil {
		return 0, err
	}
	if _, err := e.GetBuffer(node); err != nil {
		return 0, err
	}
	bh := reg.alloc()
	reg.mu.Lock()
	reg.buffers[bh] = bufferEntry{engineHandle: engineHandle, node: node}
	reg.mu.Unlock()
	return bh, nil
}

func (r *registry) buffer(h Handle) (*engine.Engine, engine.Buffer, error) {
	r.mu.Lock()
	entry, ok := r.buffers[h]
	r.mu.Unlock()
	if !ok {
		return nil, engine.Buffer{}, fmt.Errorf("ffi: buffer handle %d not found", h)
	}
	e, err := r.engine(entry.engineHandle)
	if err != nil {
		return nil, engine.Buffer{}, err
	}
	b, err := e.GetBuffer(entry.node)
	if err != nil {
		return nil, engine.Buffer{}, err
	}
	return e, b, nil
}

// BufferLen returns the element count backing a buffer token.
func BufferLen(bufferHandle Handle) (int, error) {
	_, b, err := reg.buffer(bufferHandle)
	if err != nil {
		return 0, err
	}
	return b.Shape().Elements(), nil
}

// ReadFloats copies a buffer token's current contents out as float32.
func ReadFloats(bufferHandle Handle) ([]float32, error) {
	reg.mu.Lock()
	entry, ok := reg.buffers[bufferHandle]
	reg.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("ffi: buffer handle %d not found", bufferHandle)
	}
	e, err := reg.engine(entry.engineHandle)
	if err != nil {
		return nil, err
	}
	return e.ReadFloats(entry.node)
}

// WriteFloats overwrites a buffer token's contents. The caller is
// responsible for writing only Input/Parameter buffers, and only between
// an engine's compile() and execute() calls (§5).
func WriteFloats(bufferHandle Handle, values []float32) error {
	reg.mu.Lock()
	entry, ok := reg.buffers[bufferHandle]
	reg.mu.Unlock()
	if !ok {
		return fmt.Errorf("ffi: buffer handle %d not found", bufferHandle)
	}
	e, err := reg.engine(entry.engineHandle)
	if err != nil {
		return err
	}
	return e.WriteFloats(entry.node, values)
}

// TraceSize returns the number of events recorded in an engine's trace.
func TraceSize(engineHandle Handle) (int, error) {
	e, err := reg.engine(engineHandle)
	if err != nil {
		return 0, err
	}
	return e.Tracer().Len(), nil
}

// TraceEvent is the FFI-shaped form of engine.Event: kind and timestamp are
// flattened to primitives a foreign caller can consume directly.
type TraceEvent struct {
	Kind      string
	UnixNano  int64
	Node      int
	Detail    string
}

// TraceEventAt returns the i'th recorded trace event for an engine.
func TraceEventAt(engineHandle Handle, i int) (TraceEvent, error) {
	e, err := reg.engine(engineHandle)
	if err != nil {
		return TraceEvent{}, err
	}
	ev := e.Tracer().Event(i)
	return TraceEvent{
		Kind:     ev.Kind.String(),
		UnixNano: ev.Timestamp.UnixNano(),
		Node:     ev.Node,
		Detail:   ev.Detail,
	}, nil
}

// LowerToForeignPackage lowers the graph behind graphHandle to
// "<path>/Data/com.apple.CoreML/model.mil".
func LowerToForeignPackage(graphHandle Handle, path string) error {
	g, err := reg.graph(graphHandle)
	if err != nil {
		return err
	}
	return lowering.ToForeignPackage(g, path)
}

// Capabilities is the FFI-shaped capability probe result.
type Capabilities struct {
	ArchitectureTag     string
	VectorCompiled      bool
	VectorSupportedHost bool
	ArchitectureName    string
}

// QueryCapabilities returns the architecture/vector-support probe.
func QueryCapabilities() Capabilities {
	c := capability.Probe()
	return Capabilities{
		ArchitectureTag:     c.Architecture.String(),
		VectorCompiled:      c.VectorCompiled,
		VectorSupportedHost: c.VectorSupportedHost,
		ArchitectureName:    c.ArchitectureName,
	}
}

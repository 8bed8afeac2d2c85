package graph

import "fmt"

// Graph is an ordered sequence of nodes plus the designated output indices.
// A Graph is created empty, grown monotonically through a Builder, then
// frozen; from that point the engine borrows it read-only for its entire
// lifetime.
type Graph struct {
	nodes   []Node
	outputs []int
	frozen  bool
}

// New returns an empty, unfrozen graph.
func New() *Graph {
	return &Graph{}
}

// Nodes returns the graph's node sequence. The returned slice must not be
// mutated by callers; it is exposed for the engine and the lowering sink.
func (g *Graph) Nodes() []Node { return g.nodes }

// Len returns the number of nodes appended so far.
func (g *Graph) Len() int { return len(g.nodes) }

// Node returns the node at index i. Panics if i is out of range — callers
// are expected to have validated indices first (§3 invariant 1 guarantees
// every reference the builder accepts is in range at append time).
func (g *Graph) Node(i int) Node { return g.nodes[i] }

// Outputs returns the designated output node indices, in order.
func (g *Graph) Outputs() []int { return g.outputs }

// Frozen reports whether the graph has been frozen and is no longer
// appendable.
func (g *Graph) Frozen() bool { return g.frozen }

// Freeze forbids all further mutation. It is idempotent.
func (g *Graph) Freeze() { g.frozen = true }

// append stores a node with the next sequential index. Callers must have
// already validated the payload (shape inference, input-index invariants)
// before calling append — append itself only enforces that the graph is
// still open for mutation.
func (g *Graph) append(p Payload) (int, error) {
	if g.frozen {
		return -1, &StructuralError{Node: len(g.nodes), Detail: "append on a frozen graph"}
	}
	idx := len(g.nodes)
	g.nodes = append(g.nodes, Node{Index: idx, Payload: p})
	return idx, nil
}

// SetOutputs designates the graph's output node indices, replacing any
// prior designation. Every index must be valid (invariant 3); SetOutputs
// does not itself validate — that happens in Validate, which the engine
// always calls before relying on Outputs().
func (g *Graph) SetOutputs(indices ...int) {
	g.outputs = append([]int(nil), indices...)
}

// Validate checks the graph's structural invariants (§3) independent of any
// execution policy. It does not check the mode-specific op whitelist — that
// is PolicyError territory and lives in the engine.
func (g *Graph) Validate() error {
	for i, n := range g.nodes {
		if n.Index != i {
			return &StructuralError{Node: i, Detail: fmt.Sprintf("node index %d does not match its position %d", n.Index, i)}
		}
		op, ok := n.AsOp()
		if !ok {
			continue
		}
		for _, in := range op.Inputs {
			if in < 0 || in >= i {
				return &StructuralError{Node: i, Detail: fmt.Sprintf("input index %d is not strictly less than %d", in, i)}
			}
			if in == i {
				return &StructuralError{Node: i, Detail: "op input refers to its own node index"}
			}
		}
	}
	for _, o := range g.outputs {
		if o < 0 || o >= len(g.nodes) {
			return &StructuralError{Node: o, Detail: "designated output index is out of range"}
		}
	}
	return nil
}

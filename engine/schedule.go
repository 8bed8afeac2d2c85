package engine

import "github.com/denseforge/denseforge/graph"

// schedule adopts the graph's construction order as the execution order.
// This is legal by invariant 1 (every op's inputs strictly precede it),
// which Validate already checked.
func schedule(g *graph.Graph) []graph.Node {
	return g.Nodes()
}

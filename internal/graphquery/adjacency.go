// Package graphquery implements C9: shortest-path search, bounded
// walk/aggregation, strongly-connected-component condensation with DOT
// export, and ICX claim/sequence discovery over a built address graph.
package graphquery

import "dfiindexer/internal/graph"

// Adjacency is an outgoing-edge index over a graph.Graph, built once and
// reused across queries. graph.Graph itself stores only a flat edge list
// (the minimal shape needed for the dump/load codec); every traversal here
// builds this index on load rather than carrying it as part of the
// persisted format.
type Adjacency struct {
	g   *graph.Graph
	out [][]int // out[nodeID] = indices into g.Edges of outgoing edges
}

// BuildAdjacency indexes g's edges by source node for repeated traversal.
func BuildAdjacency(g *graph.Graph) *Adjacency {
	out := make([][]int, g.NodeCount())
	for i, e := range g.Edges {
		out[e.From] = append(out[e.From], i)
	}
	return &Adjacency{g: g, out: out}
}

// Edges returns the outgoing graph.Edge values from node.
func (a *Adjacency) Edges(node int) []graph.Edge {
	idxs := a.out[node]
	edges := make([]graph.Edge, len(idxs))
	for i, idx := range idxs {
		edges[i] = a.g.Edges[idx]
	}
	return edges
}

// Graph returns the underlying graph.
func (a *Adjacency) Graph() *graph.Graph { return a.g }

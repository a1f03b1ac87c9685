package graphquery

import (
	"context"
	"fmt"

	"dfiindexer/internal/graph"
	"dfiindexer/internal/store"
)

// Hop is one edge of a resolved path: the address it leaves, the address it
// arrives at, the transaction that produced the edge, and that
// transaction's type (for display, mirroring gpath/spath's per-hop log
// line).
type Hop struct {
	From   string
	To     string
	TxID   string
	TxType string
}

// ShortestPath finds the shortest (fewest-hop) path from src to dest via
// unweighted BFS, the Go equivalent of the original's astar search with a
// uniform edge cost of 1. Addresses in ignore are excluded from the
// traversable node set outright, rather than merely skipped as endpoints.
func ShortestPath(ctx context.Context, g *graph.Graph, st *store.Store, src, dest string, ignore map[string]struct{}) ([]Hop, error) {
	srcID, ok := g.LookupNodeID(src)
	if !ok {
		return nil, fmt.Errorf("source address %q not present in graph", src)
	}
	destID, ok := g.LookupNodeID(dest)
	if !ok {
		return nil, fmt.Errorf("destination address %q not present in graph", dest)
	}
	if _, skip := ignore[src]; skip {
		return nil, fmt.Errorf("source address %q is in the ignore set", src)
	}
	if _, skip := ignore[dest]; skip {
		return nil, fmt.Errorf("destination address %q is in the ignore set", dest)
	}

	adj := BuildAdjacency(g)

	type parent struct {
		node int
		edge graph.Edge
	}
	prev := map[int]parent{srcID: {node: -1}}
	queue := []int{srcID}
	found := srcID == destID

	for i := 0; i < len(queue) && !found; i++ {
		cur := queue[i]
		for _, e := range adj.Edges(cur) {
			if _, skip := ignore[g.Address(e.To)]; skip {
				continue
			}
			if _, seen := prev[e.To]; seen {
				continue
			}
			prev[e.To] = parent{node: cur, edge: e}
			if e.To == destID {
				found = true
				break
			}
			queue = append(queue, e.To)
		}
	}
	if !found {
		return nil, fmt.Errorf("no path from %q to %q", src, dest)
	}

	var edges []graph.Edge
	for n := destID; n != srcID; {
		p := prev[n]
		edges = append([]graph.Edge{p.edge}, edges...)
		n = p.node
	}

	hops := make([]Hop, len(edges))
	for i, e := range edges {
		txType := ""
		if row, ok, err := st.GetIndexedTxRow(ctx, e.TxID); err != nil {
			return nil, fmt.Errorf("lookup tx %s: %w", e.TxID, err)
		} else if ok {
			txType = row.TxType.String()
		}
		hops[i] = Hop{From: g.Address(e.From), To: g.Address(e.To), TxID: e.TxID, TxType: txType}
	}
	return hops, nil
}

// MultiPathResult pairs one src/dest combination with its resolved path (or
// the error that prevented finding one).
type MultiPathResult struct {
	Src, Dest string
	Hops      []Hop
	Err       error
}

// MultiShortestPath resolves the shortest path for every (src, dest) pair in
// the cartesian product of srcs and dests, matching the original's
// multi-address shortest-path command.
func MultiShortestPath(ctx context.Context, g *graph.Graph, st *store.Store, srcs, dests []string, ignore map[string]struct{}) []MultiPathResult {
	results := make([]MultiPathResult, 0, len(srcs)*len(dests))
	for _, src := range srcs {
		for _, dest := range dests {
			hops, err := ShortestPath(ctx, g, st, src, dest, ignore)
			results = append(results, MultiPathResult{Src: src, Dest: dest, Hops: hops, Err: err})
		}
	}
	return results
}

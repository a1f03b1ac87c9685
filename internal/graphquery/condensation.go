package graphquery

import (
	"fmt"
	"sort"
	"strings"

	"github.com/emicklei/dot"

	"dfiindexer/internal/graph"
)

// Condensed is the strongly-connected-component condensation of an address
// graph: each Members entry is one SCC, and Edges records which components
// have at least one edge between their members (the original's
// petgraph::algo::condensation with make_acyclic=true).
type Condensed struct {
	Members [][]string
	Edges   []graph.Edge // From/To index into Members; TxID left blank (aggregated)
}

// Condense computes g's SCC condensation via Tarjan's algorithm. petgraph's
// condensation helper has no direct equivalent in the library set available
// here, so the algorithm is implemented directly.
func Condense(g *graph.Graph) *Condensed {
	adj := BuildAdjacency(g)
	n := g.NodeCount()

	index := make([]int, n)
	lowlink := make([]int, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i] = -1
	}
	var stack []int
	nextIndex := 0
	compOf := make([]int, n)
	for i := range compOf {
		compOf[i] = -1
	}
	var components [][]int

	var strongconnect func(v int)
	strongconnect = func(v int) {
		index[v] = nextIndex
		lowlink[v] = nextIndex
		nextIndex++
		stack = append(stack, v)
		onStack[v] = true

		for _, e := range adj.Edges(v) {
			w := e.To
			if index[w] == -1 {
				strongconnect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] {
				if index[w] < lowlink[v] {
					lowlink[v] = index[w]
				}
			}
		}

		if lowlink[v] == index[v] {
			var comp []int
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				comp = append(comp, w)
				if w == v {
					break
				}
			}
			compID := len(components)
			for _, w := range comp {
				compOf[w] = compID
			}
			components = append(components, comp)
		}
	}

	for v := 0; v < n; v++ {
		if index[v] == -1 {
			strongconnect(v)
		}
	}

	members := make([][]string, len(components))
	for i, comp := range components {
		addrs := make([]string, len(comp))
		for j, nodeID := range comp {
			addrs[j] = g.Address(nodeID)
		}
		sort.Strings(addrs)
		members[i] = addrs
	}

	seen := make(map[[2]int]bool)
	var edges []graph.Edge
	for _, e := range g.Edges {
		from, to := compOf[e.From], compOf[e.To]
		if from == to {
			continue // acyclic condensation: drop intra-component edges
		}
		key := [2]int{from, to}
		if seen[key] {
			continue
		}
		seen[key] = true
		edges = append(edges, graph.Edge{From: from, To: to})
	}

	return &Condensed{Members: members, Edges: edges}
}

// componentLabel renders a DOT node label for one SCC: its first three
// member addresses, comma-joined, with a "+N more" suffix when there are
// additional members.
func componentLabel(members []string) string {
	if len(members) <= 3 {
		return strings.Join(members, ", ")
	}
	return fmt.Sprintf("%s, +%d more", strings.Join(members[:3], ", "), len(members)-3)
}

// WriteDOT renders c as a DOT graph via emicklei/dot. The original's DOT
// export was never implemented upstream (its writer left two TODO stubs
// after computing the condensation), so this rendering is this system's own
// design rather than a translation.
func WriteDOT(c *Condensed) string {
	g := dot.NewGraph(dot.Directed)
	nodes := make([]dot.Node, len(c.Members))
	for i, members := range c.Members {
		nodes[i] = g.Node(fmt.Sprintf("c%d", i)).Label(componentLabel(members))
	}
	for _, e := range c.Edges {
		g.Edge(nodes[e.From], nodes[e.To])
	}
	return g.String()
}

package graphquery

import (
	"testing"

	"dfiindexer/internal/graph"
)

func TestBuildAdjacencyIndexesOutgoingEdgesByNode(t *testing.T) {
	g := graph.New()
	g.AddEdge("alice", "bob", "tx1")
	g.AddEdge("alice", "carol", "tx2")
	g.AddEdge("bob", "carol", "tx3")

	adj := BuildAdjacency(g)
	aliceID, _ := g.LookupNodeID("alice")
	edges := adj.Edges(aliceID)
	if len(edges) != 2 {
		t.Fatalf("expected alice to have 2 outgoing edges, got %d", len(edges))
	}

	carolID, _ := g.LookupNodeID("carol")
	if len(adj.Edges(carolID)) != 0 {
		t.Fatalf("expected carol to have no outgoing edges, got %d", len(adj.Edges(carolID)))
	}
}

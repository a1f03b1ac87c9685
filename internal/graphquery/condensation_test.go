package graphquery

import (
	"strings"
	"testing"

	"dfiindexer/internal/graph"
)

func TestCondenseMergesCycleIntoOneComponent(t *testing.T) {
	g := graph.New()
	g.AddEdge("alice", "bob", "tx1")
	g.AddEdge("bob", "carol", "tx2")
	g.AddEdge("carol", "alice", "tx3") // closes a 3-cycle
	g.AddEdge("carol", "dave", "tx4")  // dave is its own component

	c := Condense(g)
	if len(c.Members) != 2 {
		t.Fatalf("expected 2 components (the cycle + dave), got %d: %v", len(c.Members), c.Members)
	}

	var cycleComp, daveComp []string
	for _, members := range c.Members {
		if len(members) == 3 {
			cycleComp = members
		} else {
			daveComp = members
		}
	}
	if cycleComp == nil || daveComp == nil {
		t.Fatalf("expected one 3-member and one 1-member component, got %v", c.Members)
	}
	if daveComp[0] != "dave" {
		t.Fatalf("expected dave's own component, got %v", daveComp)
	}
	if len(c.Edges) != 1 {
		t.Fatalf("expected exactly 1 inter-component edge, got %d: %v", len(c.Edges), c.Edges)
	}
}

func TestComponentLabelTruncatesPastThreeMembers(t *testing.T) {
	label := componentLabel([]string{"a", "b", "c", "d", "e"})
	if !strings.HasSuffix(label, "+2 more") {
		t.Fatalf("expected a +2 more suffix, got %q", label)
	}
	if !strings.HasPrefix(label, "a, b, c") {
		t.Fatalf("expected the first three members listed, got %q", label)
	}
}

func TestWriteDOTProducesParsableDigraph(t *testing.T) {
	g := graph.New()
	g.AddEdge("alice", "bob", "tx1")
	c := Condense(g)
	out := WriteDOT(c)
	if !strings.Contains(out, "digraph") {
		t.Fatalf("expected a digraph declaration, got %q", out)
	}
}

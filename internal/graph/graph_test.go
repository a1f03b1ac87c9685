package graph

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGraphNodeIDAssignsFirstSeenOrder(t *testing.T) {
	g := New()
	if id := g.NodeID("alice"); id != 0 {
		t.Fatalf("expected alice to be node 0, got %d", id)
	}
	if id := g.NodeID("bob"); id != 1 {
		t.Fatalf("expected bob to be node 1, got %d", id)
	}
	if id := g.NodeID("alice"); id != 0 {
		t.Fatalf("expected alice to remain node 0 on re-lookup, got %d", id)
	}
	if g.NodeCount() != 2 {
		t.Fatalf("expected 2 nodes, got %d", g.NodeCount())
	}
}

func TestGraphAllowsParallelEdgesAndSelfLoops(t *testing.T) {
	g := New()
	g.AddEdge("alice", "bob", "tx1")
	g.AddEdge("alice", "bob", "tx2")
	g.AddEdge("alice", "alice", "tx3")

	if g.EdgeCount() != 3 {
		t.Fatalf("expected 3 edges (parallel + self-loop), got %d", g.EdgeCount())
	}
	self := g.Edges[2]
	if self.From != self.To {
		t.Fatalf("expected a self-loop edge, got %+v", self)
	}
}

func TestCombineAddrsWithMultiSigSplitsAndDedups(t *testing.T) {
	set := combineAddrsWithMultiSig([]string{"key1+key2", "alice"}, []string{"alice", "dvm1"})
	want := map[string]bool{"key1": true, "key2": true, "alice": true, "dvm1": true}
	if len(set) != len(want) {
		t.Fatalf("expected %d members, got %d: %v", len(want), len(set), set)
	}
	for k := range want {
		if _, ok := set[k]; !ok {
			t.Fatalf("expected %q in combined set, got %v", k, set)
		}
	}
}

func TestDumpAndLoadRoundTrip(t *testing.T) {
	g := New()
	g.AddEdge("alice", "bob", "tx1")
	g.AddEdge("bob", "carol", "tx2")
	g.AddEdge("alice", "carol", "tx1")

	dir := t.TempDir()
	metaPath := filepath.Join(dir, "graph.meta.bin")
	dataPath := filepath.Join(dir, "graph.bin")

	if err := Dump(g, metaPath, dataPath); err != nil {
		t.Fatalf("dump: %v", err)
	}

	loaded, err := Load(metaPath, dataPath)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.NodeCount() != g.NodeCount() || loaded.EdgeCount() != g.EdgeCount() {
		t.Fatalf("round trip mismatch: got nodes=%d edges=%d, want nodes=%d edges=%d",
			loaded.NodeCount(), loaded.EdgeCount(), g.NodeCount(), g.EdgeCount())
	}
	if id, ok := loaded.LookupNodeID("bob"); !ok || id != 1 {
		t.Fatalf("expected bob to round trip as node 1, got %d ok=%v", id, ok)
	}
}

func TestLoadRejectsUnknownVersion(t *testing.T) {
	dir := t.TempDir()
	metaPath := filepath.Join(dir, "bad.meta.bin")
	dataPath := filepath.Join(dir, "bad.bin")

	if err := writeVersionedGob(metaPath, map[string]uint32{"x": 0}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := writeVersionedGob(dataPath, gobData{}); err != nil {
		t.Fatalf("write: %v", err)
	}

	// Corrupt the version byte of the data file.
	raw, err := os.ReadFile(dataPath)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	raw[0] = 99
	if err := os.WriteFile(dataPath, raw, 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	var out gobData
	if err := readVersionedGob(dataPath, &out); err == nil {
		t.Fatal("expected an error for an unsupported version byte")
	}
}

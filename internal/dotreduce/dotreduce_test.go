package dotreduce

import (
	"strings"
	"testing"
)

func TestReduceDropsEdgelessNodesAndCountsDuplicateEdges(t *testing.T) {
	in := strings.Join([]string{
		"1 [label = \"alice\"]",
		"2 [label = \"bob\"]",
		"3 [label = \"unused\"]",
		"1 -> 2 [tx1|extra]",
		"1 -> 2 [tx1|other]",
	}, "\n")

	var out strings.Builder
	if err := Reduce(strings.NewReader(in), &out); err != nil {
		t.Fatalf("reduce: %v", err)
	}
	got := out.String()

	if strings.Contains(got, "unused") {
		t.Fatalf("expected node with no incident edge to be dropped, got %q", got)
	}
	if !strings.Contains(got, "alice") || !strings.Contains(got, "bob") {
		t.Fatalf("expected surviving node labels preserved, got %q", got)
	}
	if !strings.Contains(got, "(2)") {
		t.Fatalf("expected the two duplicate edges to collapse into one with count 2, got %q", got)
	}
	if strings.Count(got, "->") != 1 {
		t.Fatalf("expected exactly one edge line after dedup, got %q", got)
	}
}

func TestReduceIgnoresUnparsableLines(t *testing.T) {
	in := "garbage line with no brackets\n1 [label = \"a\"]\n2 [label = \"b\"]\n1 -> 2 [e]\n"
	var out strings.Builder
	if err := Reduce(strings.NewReader(in), &out); err != nil {
		t.Fatalf("reduce: %v", err)
	}
	if !strings.Contains(out.String(), "1 -> 2") {
		t.Fatalf("expected the valid edge to survive a garbage line, got %q", out.String())
	}
}

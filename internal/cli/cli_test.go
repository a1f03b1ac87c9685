package cli

import (
	"testing"

	"github.com/spf13/cobra"
)

func TestRegisterWiresEveryDocumentedSubcommand(t *testing.T) {
	root := &cobra.Command{Use: "indexer"}
	Register(root)

	want := []string{
		"cindex", "sindex", "dotreduce", "icx1", "icx2", "icxseq",
		"gbuild", "gwalk", "gdot", "gpath", "spath", "logparsecheck",
	}
	got := map[string]bool{}
	for _, c := range root.Commands() {
		got[c.Name()] = true
	}
	for _, name := range want {
		if !got[name] {
			t.Fatalf("expected subcommand %q to be registered, got %v", name, got)
		}
	}

	if f := root.PersistentFlags().Lookup("verbose"); f == nil {
		t.Fatal("expected a persistent -v/--verbose flag")
	}
	if f := root.PersistentFlags().Lookup("status-addr"); f == nil {
		t.Fatal("expected a persistent --status-addr flag")
	}
}

func TestVerbosityToLevelClampsToInfoFloor(t *testing.T) {
	if lvl := verbosityToLevel(0); lvl.String() != "info" {
		t.Fatalf("expected 0 -v to clamp to info, got %s", lvl)
	}
	if lvl := verbosityToLevel(1); lvl.String() != "info" {
		t.Fatalf("expected 1 -v to clamp to info, got %s", lvl)
	}
	if lvl := verbosityToLevel(2); lvl.String() != "info" {
		t.Fatalf("expected 2 -v to clamp to info, got %s", lvl)
	}
	if lvl := verbosityToLevel(3); lvl.String() != "debug" {
		t.Fatalf("expected 3 -v to be debug, got %s", lvl)
	}
	if lvl := verbosityToLevel(4); lvl.String() != "trace" {
		t.Fatalf("expected 4 -v to be trace, got %s", lvl)
	}
}

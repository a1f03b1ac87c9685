package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"dfiindexer/internal/graph"
	"dfiindexer/internal/store"
)

var gbuildCmd = &cobra.Command{
	Use:   "gbuild",
	Short: "build the binary address graph from the SQLite index",
	RunE: func(cmd *cobra.Command, args []string) error {
		applyVerbosity()
		c, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := context.Background()
		st, err := store.Open(ctx, c.Store.SqlitePath, c.Store.PrevoutCache)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		b := graph.NewBuilder(graph.BuildConfig{DataPath: c.Graph.DataPath, MetaPath: c.Graph.MetaPath}, log)

		srv := maybeStartStatus(func() any { return b.Snapshot() })
		defer stopStatus(srv)

		g, err := b.Build(ctx, st)
		if err != nil {
			return fmt.Errorf("build graph: %w", err)
		}

		log.WithFields(map[string]any{"nodes": g.NodeCount(), "edges": g.EdgeCount()}).Info("graph build complete")
		return nil
	},
}

// GbuildCmd is the gbuild subcommand, exported for tests/composition.
var GbuildCmd = gbuildCmd

// RegisterGbuild wires gbuild into root.
func RegisterGbuild(root *cobra.Command) { root.AddCommand(GbuildCmd) }

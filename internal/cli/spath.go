package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"dfiindexer/internal/graph"
	"dfiindexer/internal/graphquery"
	"dfiindexer/internal/store"
)

var (
	spathSrcs        []string
	spathDests       []string
	spathIgnoreAddrs []string
)

var spathCmd = &cobra.Command{
	Use:   "spath",
	Short: "find the shortest path across every (src, dest) pair in two address lists",
	RunE: func(cmd *cobra.Command, args []string) error {
		applyVerbosity()
		c, err := loadConfig()
		if err != nil {
			return err
		}
		if len(spathSrcs) == 0 || len(spathDests) == 0 {
			return fmt.Errorf("spath: --srcs and --dests are required")
		}

		ctx := context.Background()
		st, err := store.Open(ctx, c.Store.SqlitePath, c.Store.PrevoutCache)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		g, err := graph.Load(c.Graph.MetaPath, c.Graph.DataPath)
		if err != nil {
			return fmt.Errorf("load graph: %w", err)
		}

		results := graphquery.MultiShortestPath(ctx, g, st, spathSrcs, spathDests, toIgnoreSet(spathIgnoreAddrs))

		out := cmd.OutOrStdout()
		for _, r := range results {
			fmt.Fprintf(out, "%s -> %s:\n", r.Src, r.Dest)
			if r.Err != nil {
				fmt.Fprintf(out, "  error: %v\n", r.Err)
				continue
			}
			if len(r.Hops) == 0 {
				fmt.Fprintln(out, "  no path")
				continue
			}
			for _, h := range r.Hops {
				fmt.Fprintf(out, "  %s -> %s (%s: %s)\n", h.From, h.To, h.TxID, h.TxType)
			}
		}
		return nil
	},
}

func init() {
	spathCmd.Flags().StringSliceVar(&spathSrcs, "srcs", nil, "source addresses")
	spathCmd.Flags().StringSliceVar(&spathDests, "dests", nil, "destination addresses")
	spathCmd.Flags().StringSliceVar(&spathIgnoreAddrs, "ignore-addrs", nil, "addresses excluded from the traversable node set")
}

// SpathCmd is the spath subcommand, exported for tests/composition.
var SpathCmd = spathCmd

// RegisterSpath wires spath into root.
func RegisterSpath(root *cobra.Command) { root.AddCommand(SpathCmd) }

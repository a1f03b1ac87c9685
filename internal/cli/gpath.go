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
	gpathSrc         string
	gpathDest        string
	gpathIgnoreAddrs []string
)

var gpathCmd = &cobra.Command{
	Use:   "gpath",
	Short: "find the shortest path between a single pair of addresses",
	RunE: func(cmd *cobra.Command, args []string) error {
		applyVerbosity()
		c, err := loadConfig()
		if err != nil {
			return err
		}
		if gpathSrc == "" || gpathDest == "" {
			return fmt.Errorf("gpath: --src and --dest are required")
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

		hops, err := graphquery.ShortestPath(ctx, g, st, gpathSrc, gpathDest, toIgnoreSet(gpathIgnoreAddrs))
		if err != nil {
			return fmt.Errorf("shortest path: %w", err)
		}

		printHops(cmd, hops)
		return nil
	},
}

func init() {
	gpathCmd.Flags().StringVar(&gpathSrc, "src", "", "source address")
	gpathCmd.Flags().StringVar(&gpathDest, "dest", "", "destination address")
	gpathCmd.Flags().StringSliceVar(&gpathIgnoreAddrs, "ignore-addrs", nil, "addresses excluded from the traversable node set")
}

// GpathCmd is the gpath subcommand, exported for tests/composition.
var GpathCmd = gpathCmd

// RegisterGpath wires gpath into root.
func RegisterGpath(root *cobra.Command) { root.AddCommand(GpathCmd) }

func toIgnoreSet(addrs []string) map[string]struct{} {
	if len(addrs) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(addrs))
	for _, a := range addrs {
		set[a] = struct{}{}
	}
	return set
}

func printHops(cmd *cobra.Command, hops []graphquery.Hop) {
	out := cmd.OutOrStdout()
	if len(hops) == 0 {
		fmt.Fprintln(out, "no path")
		return
	}
	for _, h := range hops {
		fmt.Fprintf(out, "%s -> %s (%s: %s)\n", h.From, h.To, h.TxID, h.TxType)
	}
}

package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"dfiindexer/internal/graph"
	"dfiindexer/internal/graphquery"
	"dfiindexer/internal/store"
)

var (
	gwalkOrigin      string
	gwalkMaxLevels   int
	gwalkIgnoreAddrs []string
	gwalkMarkAddrs   []string
)

var gwalkCmd = &cobra.Command{
	Use:   "gwalk",
	Short: "walk/BFS from an address, aggregating BTC-leg swap and ICX claim amounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		applyVerbosity()
		c, err := loadConfig()
		if err != nil {
			return err
		}
		if gwalkOrigin == "" {
			return fmt.Errorf("gwalk: --origin is required")
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

		w := graphquery.NewWalker(log)
		srv := maybeStartStatus(func() any { return w.Snapshot() })
		defer stopStatus(srv)

		res, err := w.Walk(ctx, g, st, gwalkOrigin, graphquery.WalkConfig{
			MaxLevels:   gwalkMaxLevels,
			IgnoreAddrs: gwalkIgnoreAddrs,
			MarkAddrs:   gwalkMarkAddrs,
		})
		if err != nil {
			return fmt.Errorf("walk: %w", err)
		}

		visited := make([]string, 0, len(res.Visited))
		for addr := range res.Visited {
			visited = append(visited, addr)
		}
		sort.Strings(visited)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "visited %d addresses across %d levels\n", len(visited), res.Levels)
		for _, addr := range visited {
			fmt.Fprintln(out, addr)
		}
		fmt.Fprintf(out, "btc swap total: %s\n", res.BTCSwapTotal.String())
		fmt.Fprintf(out, "icx btc total: %s\n", res.ICXBTCTotal.String())
		return nil
	},
}

func init() {
	gwalkCmd.Flags().StringVar(&gwalkOrigin, "origin", "", "address to walk from")
	gwalkCmd.Flags().IntVar(&gwalkMaxLevels, "max-levels", 20, "maximum BFS levels to traverse")
	gwalkCmd.Flags().StringSliceVar(&gwalkIgnoreAddrs, "ignore-addrs", nil, "addresses excluded from the walk entirely")
	gwalkCmd.Flags().StringSliceVar(&gwalkMarkAddrs, "mark-addrs", nil, "addresses logged when visited, without affecting traversal")
}

// GwalkCmd is the gwalk subcommand, exported for tests/composition.
var GwalkCmd = gwalkCmd

// RegisterGwalk wires gwalk into root.
func RegisterGwalk(root *cobra.Command) { root.AddCommand(GwalkCmd) }

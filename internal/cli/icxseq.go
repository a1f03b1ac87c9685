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
	icxseqIcxIgnoreAddrs   []string
	icxseqGraphIgnoreAddrs []string
	icxseqGraphMarkAddrs   []string
)

var icxseqCmd = &cobra.Command{
	Use:   "icxseq",
	Short: "reconstruct each ICX claim's order -> offer -> dfchtlc -> claim chain",
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

		g, err := graph.Load(c.Graph.MetaPath, c.Graph.DataPath)
		if err != nil {
			return fmt.Errorf("load graph: %w", err)
		}

		seqs, err := graphquery.IcxSequences(ctx, g, st, graphquery.IcxSequenceConfig{
			IcxIgnoreAddrs:   icxseqIcxIgnoreAddrs,
			GraphIgnoreAddrs: icxseqGraphIgnoreAddrs,
			GraphMarkAddrs:   icxseqGraphMarkAddrs,
		})
		if err != nil {
			return fmt.Errorf("reconstruct icx sequences: %w", err)
		}

		out := cmd.OutOrStdout()
		for _, seq := range seqs {
			fmt.Fprintf(out, "order %s:\n", seq.OrderTx)
			for _, step := range seq.Steps {
				fmt.Fprintf(out, "  %s %s: %v -> %v\n", step.Stage, step.TxID, step.From, step.To)
			}
		}
		return nil
	},
}

func init() {
	icxseqCmd.Flags().StringSliceVar(&icxseqIcxIgnoreAddrs, "icx-ignore-addrs", nil, "ICX claim addresses to exclude")
	icxseqCmd.Flags().StringSliceVar(&icxseqGraphIgnoreAddrs, "graph-ignore-addrs", nil, "addresses to exclude from resolved steps")
	icxseqCmd.Flags().StringSliceVar(&icxseqGraphMarkAddrs, "graph-mark-addrs", nil, "addresses to tag with \" (marked)\" in resolved steps")
}

// IcxseqCmd is the icxseq subcommand, exported for tests/composition.
var IcxseqCmd = icxseqCmd

// RegisterIcxseq wires icxseq into root.
func RegisterIcxseq(root *cobra.Command) { root.AddCommand(IcxseqCmd) }

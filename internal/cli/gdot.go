package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"dfiindexer/internal/graph"
	"dfiindexer/internal/graphquery"
)

var gdotCmd = &cobra.Command{
	Use:   "gdot",
	Short: "produce condensed, acyclic DOT output from the graph",
	RunE: func(cmd *cobra.Command, args []string) error {
		applyVerbosity()
		c, err := loadConfig()
		if err != nil {
			return err
		}

		g, err := graph.Load(c.Graph.MetaPath, c.Graph.DataPath)
		if err != nil {
			return fmt.Errorf("load graph: %w", err)
		}

		condensed := graphquery.Condense(g)
		fmt.Fprintln(cmd.OutOrStdout(), graphquery.WriteDOT(condensed))
		return nil
	},
}

// GdotCmd is the gdot subcommand, exported for tests/composition.
var GdotCmd = gdotCmd

// RegisterGdot wires gdot into root.
func RegisterGdot(root *cobra.Command) { root.AddCommand(GdotCmd) }

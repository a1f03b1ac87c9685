package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dfiindexer/internal/dotreduce"
)

var dotreduceIn string

var dotreduceCmd = &cobra.Command{
	Use:   "dotreduce",
	Short: "deduplicate and minify a DOT-ish graph text file",
	RunE: func(cmd *cobra.Command, args []string) error {
		applyVerbosity()
		if dotreduceIn == "" {
			return fmt.Errorf("dotreduce: --in is required")
		}
		f, err := os.Open(dotreduceIn)
		if err != nil {
			return fmt.Errorf("open %s: %w", dotreduceIn, err)
		}
		defer f.Close()

		return dotreduce.Reduce(f, cmd.OutOrStdout())
	},
}

func init() {
	dotreduceCmd.Flags().StringVar(&dotreduceIn, "in", "", "path to the DOT-ish graph text file to reduce")
}

// DotreduceCmd is the dotreduce subcommand, exported for tests/composition.
var DotreduceCmd = dotreduceCmd

// RegisterDotreduce wires dotreduce into root.
func RegisterDotreduce(root *cobra.Command) { root.AddCommand(DotreduceCmd) }

package cli

import (
	"github.com/spf13/cobra"
)

var icx2NthClaim int64

var icx2Cmd = &cobra.Command{
	Use:   "icx2",
	Short: "trace the Nth ICX claim's address forward until its claimed BTC amount is swapped back out (v2 store)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIcxTrace(cmd, icx2NthClaim)
	},
}

func init() {
	icx2Cmd.Flags().Int64Var(&icx2NthClaim, "icx-addr", 1, "1-indexed ordinal of the icx-claim to track")
}

// Icx2Cmd is the icx2 subcommand, exported for tests/composition.
var Icx2Cmd = icx2Cmd

// RegisterIcx2 wires icx2 into root.
func RegisterIcx2(root *cobra.Command) { root.AddCommand(Icx2Cmd) }

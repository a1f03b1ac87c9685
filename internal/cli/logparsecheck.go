package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"dfiindexer/internal/logparse"
)

var logparsecheckPath string

var logparsecheckCmd = &cobra.Command{
	Use:   "logparsecheck",
	Short: "dry-run the log parser against a debug log file and report counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		applyVerbosity()
		c, err := loadConfig()
		if err != nil {
			return err
		}

		path := logparsecheckPath
		if path == "" {
			path = c.Log.DefidLogPath
		}

		entries, err := logparse.ProcessLogFile(path, logparse.Matchers{
			Icx: c.Log.IcxMatcher, IcxCalc: c.Log.IcxCalcMatcher, Swap: c.Log.SwapMatcher,
		}, log)
		if err != nil {
			return fmt.Errorf("process log file: %w", err)
		}

		var icx, icxCalc, swap int
		for _, e := range entries {
			if e.Icx != nil {
				icx++
			}
			if e.IcxCalc != nil {
				icxCalc++
			}
			if e.Swap != nil {
				swap++
			}
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "entries: %d\n", len(entries))
		fmt.Fprintf(out, "icx: %d\n", icx)
		fmt.Fprintf(out, "icx_calc: %d\n", icxCalc)
		fmt.Fprintf(out, "swap: %d\n", swap)
		return nil
	},
}

func init() {
	logparsecheckCmd.Flags().StringVar(&logparsecheckPath, "path", "", "log file to check (defaults to the configured defid log path)")
}

// LogparsecheckCmd is the logparsecheck subcommand, exported for tests/composition.
var LogparsecheckCmd = logparsecheckCmd

// RegisterLogparsecheck wires logparsecheck into root.
func RegisterLogparsecheck(root *cobra.Command) { root.AddCommand(LogparsecheckCmd) }

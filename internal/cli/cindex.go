package cli

import (
	"math"
	"time"

	"github.com/spf13/cobra"

	"dfiindexer/internal/indexer"
	"dfiindexer/internal/logparse"
)

var (
	cindexStartHeight      int64
	cindexEndHeight        int64
	cindexEnableGraphTable bool
)

var cindexCmd = &cobra.Command{
	Use:   "cindex",
	Short: "index the chain from the chain-RPC driver into the SQLite index",
	RunE: func(cmd *cobra.Command, args []string) error {
		applyVerbosity()
		c, err := loadConfig()
		if err != nil {
			return err
		}

		endHeight := cindexEndHeight
		if endHeight <= 0 {
			// Indexer.Run clamps EndHeight down to the chain tip but never raises
			// it up from a zero value, so "index to the tip" is spelled as
			// an unbounded sentinel here rather than 0.
			endHeight = math.MaxInt64
		}

		ix := indexer.New(indexer.Config{
			CliPath:          c.RPC.DriverPath,
			SqlitePath:       c.Store.SqlitePath,
			DefidLogPath:     c.Log.DefidLogPath,
			LogMatchers:      logparse.Matchers{Icx: c.Log.IcxMatcher, IcxCalc: c.Log.IcxCalcMatcher, Swap: c.Log.SwapMatcher},
			StartHeight:      cindexStartHeight,
			EndHeight:        endHeight,
			EnableGraphTable: cindexEnableGraphTable,
			CommitEvery:      int64(c.Store.CommitEvery),
			PrevoutCacheSize: c.Store.PrevoutCache,
			RPCTimeout:       time.Duration(c.RPC.TimeoutMS) * time.Millisecond,
		}, log)

		srv := maybeStartStatus(func() any { return ix.Snapshot() })
		defer stopStatus(srv)

		return ix.Run(cmd.Context())
	},
}

func init() {
	cindexCmd.Flags().Int64VarP(&cindexStartHeight, "start-height", "s", 0, "first height to index")
	cindexCmd.Flags().Int64VarP(&cindexEndHeight, "end-height", "e", 0, "last height to index (0 = current tip)")
	cindexCmd.Flags().BoolVar(&cindexEnableGraphTable, "enable-graph-table", true, "maintain tx_addr_graph alongside txs")
}

// CindexCmd is the cindex subcommand, exported for tests/composition.
var CindexCmd = cindexCmd

// RegisterCindex wires cindex into root.
func RegisterCindex(root *cobra.Command) { root.AddCommand(CindexCmd) }

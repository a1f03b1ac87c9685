package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"dfiindexer/internal/icxtrace"
	"dfiindexer/internal/store"
)

var icx1NthClaim int64

var icx1Cmd = &cobra.Command{
	Use:   "icx1",
	Short: "trace the Nth ICX claim's address forward until its claimed BTC amount is swapped back out",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIcxTrace(cmd, icx1NthClaim)
	},
}

func init() {
	icx1Cmd.Flags().Int64Var(&icx1NthClaim, "icx-addr", 1, "1-indexed ordinal of the icx-claim to track")
}

// Icx1Cmd is the icx1 subcommand, exported for tests/composition.
var Icx1Cmd = icx1Cmd

// RegisterIcx1 wires icx1 into root.
func RegisterIcx1(root *cobra.Command) { root.AddCommand(Icx1Cmd) }

// runIcxTrace is shared by icx1 and icx2: the original carried this logic
// twice, as two near-identical commands differing only in which schema
// version's store constructor they opened (v1 vs v2); this system only
// ever has a v2 store, so both commands share this one run function.
func runIcxTrace(cmd *cobra.Command, nth int64) error {
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

	out := cmd.OutOrStdout()
	summary, err := icxtrace.Run(ctx, st, icxtrace.Config{NthClaim: nth}, log, func(l icxtrace.Line) {
		if l.Detail != "" {
			fmt.Fprintf(out, "%s: %s (%s)\n", l.TxType, l.TxID, l.Detail)
		} else {
			fmt.Fprintf(out, "%s: %s\n", l.TxType, l.TxID)
		}
	})
	if err != nil {
		return fmt.Errorf("icx trace: %w", err)
	}

	if summary.Tracked != nil {
		log.WithFields(map[string]any{
			"addr":                summary.Tracked.Addr,
			"origin_txid":         summary.Tracked.OriginTxID,
			"btc_minted":          summary.Tracked.BTCMinted,
			"current_swapped":     summary.Tracked.CurrentSwapped,
			"this_addr_icx_claims": summary.Tracked.ThisAddrICXClaims,
		}).Info("tracked claim summary")
	}
	log.WithFields(map[string]any{
		"scanned_claims": summary.ScannedClaims,
		"tracked_addrs":  summary.TrackedAddrs,
		"stopped":        summary.StoppedOnLimit,
	}).Info("icx trace summary")
	return nil
}

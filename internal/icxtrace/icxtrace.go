// Package icxtrace implements the icx1/icx2 trace analyses: pick the Nth
// ICX claim seen in stored row order, then follow every address it touches
// forward through subsequent transactions until the claimed BTC amount has
// been swapped back out, printing one trace line per tainted transaction
// along the way.
//
// The original carried this logic twice, as two near-duplicate commands
// differing only in which schema-version constructor they opened the store
// with (icxanalyzer/main.rs against v1, icxanalyzer2.rs against v2). This
// system only ever has a v2 store, so both `icx1` and `icx2` subcommands
// share this one implementation; the duplicate CLI name is kept only to
// preserve the external command contract.
package icxtrace

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"

	"dfiindexer/core"
	"dfiindexer/internal/store"
)

// trackedTypes is the whitelist of tx types eligible to carry taint
// forward; Coinbase and CompositeSwap are deliberately excluded, matching
// the original's commented-out enum entries, and SetOracleData and
// unclassified (Other) types are not listed either.
var trackedTypes = map[core.TxType]bool{
	core.Unknown:               true,
	core.Utxo:                  true,
	core.CreateMasternode:      true,
	core.ResignMasternode:      true,
	core.PoolSwap:              true,
	core.AddPoolLiquidity:      true,
	core.RemovePoolLiquidity:   true,
	core.UtxosToAccount:        true,
	core.AccountToUtxos:        true,
	core.AccountToAccount:      true,
	core.WithdrawFromVault:     true,
	core.DepositToVault:        true,
	core.PaybackLoan:           true,
	core.TakeLoan:              true,
	core.AutoAuth:              true,
	core.Vault:                 true,
	core.AnyAccountsToAccounts: true,
	core.ICXCreateOrder:        true,
	core.ICXMakeOffer:          true,
	core.ICXSubmitDFCHTLC:      true,
	core.ICXSubmitEXTHTLC:      true,
	core.ICXClaimDFCHTLC:       true,
	core.ICXCloseOrder:         true,
	core.ICXCloseOffer:         true,
}

// stopEpsilon absorbs floating-point drift between the claimed BTC amount
// and the cumulative swapped amount, matching the original's 1e-8 slack.
const stopEpsilon = 0.00000001

// Config controls one trace run.
type Config struct {
	// NthClaim selects which icx-claim (1-indexed, in stored row order,
	// as IterTxs returns rows with no ORDER BY) to originate the trace from.
	NthClaim int64
}

// Tracked summarizes the claim this run tracked, if any was found.
type Tracked struct {
	OriginTxID        string
	Addr              string
	BTCMinted         float64
	CurrentSwapped    float64
	ThisAddrICXClaims int64
}

// Summary is the result of one trace run.
type Summary struct {
	Tracked        *Tracked
	ScannedClaims  int64
	TrackedAddrs   int
	StoppedOnLimit bool
}

// Line is one emitted trace line, in the order transactions were visited.
type Line struct {
	TxType  string
	TxID    string
	Detail  string
}

// Run scans every indexed transaction in stored row order, and once the NthClaim
// icx-claim is seen, tracks its address and every address reachable from it
// forward through tracked-type transactions, emitting one Line per tainted
// tx until the tracked claim's BTC amount has been fully swapped back out.
func Run(ctx context.Context, st *store.Store, cfg Config, log *logrus.Logger, emit func(Line)) (Summary, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if cfg.NthClaim <= 0 {
		cfg.NthClaim = 1
	}

	var (
		claimsSeen int64
		tracked    *Tracked
		addrs      = map[string]bool{}
	)

	err := st.IterTxs(ctx, "", func(tx core.IndexedTxRow) error {
		isTrackedTx := false

		if tx.IcxAddr != "" {
			claimsSeen++
			if tracked != nil && tracked.Addr == tx.IcxAddr {
				amt, err := strconv.ParseFloat(tx.IcxBtcExpAmt, 64)
				if err != nil {
					return fmt.Errorf("parse icx_btc_exp_amt for %s: %w", tx.TxID, err)
				}
				tracked.BTCMinted += amt
				tracked.ThisAddrICXClaims++
			}
			if claimsSeen == cfg.NthClaim {
				amt, err := strconv.ParseFloat(tx.IcxBtcExpAmt, 64)
				if err != nil {
					return fmt.Errorf("parse icx_btc_exp_amt for %s: %w", tx.TxID, err)
				}
				isTrackedTx = true
				tracked = &Tracked{OriginTxID: tx.TxID, Addr: tx.IcxAddr, BTCMinted: amt, ThisAddrICXClaims: 1}
				addrs[tx.IcxAddr] = true
			}
		}

		if !trackedTypes[tx.TxType] {
			return nil
		}

		if !isTrackedTx {
			for addr := range tx.TxIn {
				if addrs[addr] {
					isTrackedTx = true
					break
				}
			}
		}
		if !isTrackedTx {
			for addr := range tx.TxOut {
				if addrs[addr] {
					isTrackedTx = true
					break
				}
			}
		}
		if !isTrackedTx {
			for _, addr := range tx.DvmOut {
				if addrs[addr] {
					isTrackedTx = true
					break
				}
			}
		}

		if !isTrackedTx {
			return nil
		}

		emit(traceLine(tx))

		if tracked != nil {
			if tx.TxType == core.PoolSwap && tx.SwapFrom == "btc" {
				amt, err := strconv.ParseFloat(tx.SwapAmt, 64)
				if err != nil {
					return fmt.Errorf("parse swap_amt for %s: %w", tx.TxID, err)
				}
				tracked.CurrentSwapped += amt
				if tracked.CurrentSwapped >= tracked.BTCMinted-stopEpsilon {
					log.WithFields(logrus.Fields{"addr": tracked.Addr, "swapped": tracked.CurrentSwapped}).Debug("icx trace: stop criterion hit")
					return errStopTracking
				}
			}
		}

		for addr := range tx.TxOut {
			addrs[addr] = true
		}
		for addr := range tx.TxIn {
			addrs[addr] = true
		}
		for _, addr := range tx.DvmOut {
			addrs[addr] = true
		}

		return nil
	})

	stopped := false
	if err == errStopTracking {
		stopped = true
		err = nil
	}
	if err != nil {
		return Summary{}, err
	}

	return Summary{Tracked: tracked, ScannedClaims: claimsSeen, TrackedAddrs: len(addrs), StoppedOnLimit: stopped}, nil
}

var errStopTracking = fmt.Errorf("icx trace: stop criterion hit")

func traceLine(tx core.IndexedTxRow) Line {
	switch tx.TxType {
	case core.PoolSwap:
		return Line{TxType: tx.TxType.ShortCode(tx.TxTypeRaw), TxID: tx.TxID,
			Detail: fmt.Sprintf("%s -> %s: %s", tx.SwapFrom, tx.SwapTo, tx.SwapAmt)}
	case core.ICXClaimDFCHTLC:
		return Line{TxType: tx.TxType.ShortCode(tx.TxTypeRaw), TxID: tx.TxID,
			Detail: fmt.Sprintf("%s / %s", tx.IcxBtcExpAmt, tx.IcxAddr)}
	default:
		return Line{TxType: tx.TxType.ShortCode(tx.TxTypeRaw), TxID: tx.TxID}
	}
}

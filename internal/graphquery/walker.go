package graphquery

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"dfiindexer/core"
	"dfiindexer/internal/graph"
	"dfiindexer/internal/store"
)

// WalkConfig configures a bounded level-by-level walk from an origin
// address (§4.9.2).
type WalkConfig struct {
	// MaxLevels bounds how many hops the walk explores outward from the
	// origin. Defaults to 20 when zero, matching the original's fixed bound.
	MaxLevels int
	// IgnoreAddrs are addresses that edges may not lead into: an edge whose
	// target is ignored is skipped entirely, so its tx amounts are not
	// accumulated and the target is not added to the next level.
	IgnoreAddrs []string
	// MarkAddrs are addresses that are logged when encountered (even when
	// they are also ignored) but do not otherwise affect traversal.
	MarkAddrs []string
}

// WalkResult accumulates the BTC-denominated PoolSwap and ICX claim amounts
// observed while walking, plus the set of addresses visited.
type WalkResult struct {
	Visited      map[string]bool
	BTCSwapTotal decimal.Decimal
	ICXBTCTotal  decimal.Decimal
	Levels       int
}

// Walk explores the address graph outward from origin, level by level (BFS),
// up to cfg.MaxLevels hops, accumulating PoolSwap BTC-leg amounts and
// ICXClaimDFCHTLC expected-BTC amounts along every edge traversed. It stops
// early if quit reports true between levels, mirroring the SIGINT-checked
// loop of the original walker.
func Walk(ctx context.Context, g *graph.Graph, st *store.Store, origin string, cfg WalkConfig, log *logrus.Logger, quit func() bool) (*WalkResult, error) {
	return walk(ctx, g, st, origin, cfg, log, quit, nil)
}

func walk(ctx context.Context, g *graph.Graph, st *store.Store, origin string, cfg WalkConfig, log *logrus.Logger, quit func() bool, levelCounter *atomic.Int64) (*WalkResult, error) {
	if cfg.MaxLevels <= 0 {
		cfg.MaxLevels = 20
	}
	ignore := sortedSet(cfg.IgnoreAddrs)
	mark := sortedSet(cfg.MarkAddrs)

	originID, ok := g.LookupNodeID(origin)
	if !ok {
		return nil, fmt.Errorf("address %q not present in graph", origin)
	}

	adj := BuildAdjacency(g)
	res := &WalkResult{Visited: map[string]bool{origin: true}}

	level := []int{originID}
	for lvl := 0; lvl < cfg.MaxLevels && len(level) > 0; lvl++ {
		if quit != nil && quit() {
			break
		}
		if levelCounter != nil {
			levelCounter.Store(int64(lvl))
		}
		var next []int
		for _, nodeID := range level {
			for _, e := range adj.Edges(nodeID) {
				toAddr := g.Address(e.To)
				if inSorted(mark, toAddr) {
					log.WithFields(logrus.Fields{"address": toAddr, "tx": e.TxID}).Info("graph walk: marked address reached")
				}
				if inSorted(ignore, toAddr) {
					continue
				}

				row, ok, err := st.GetIndexedTxRow(ctx, e.TxID)
				if err != nil {
					return nil, fmt.Errorf("lookup tx %s: %w", e.TxID, err)
				}
				if ok {
					accumulate(res, row, log)
				}

				if res.Visited[toAddr] {
					continue
				}
				res.Visited[toAddr] = true
				next = append(next, e.To)
			}
		}
		level = next
		res.Levels = lvl + 1
	}
	return res, nil
}

// accumulate folds one transaction's swap/ICX fields into res, matching the
// original's BigDecimal accumulation for PoolSwap (from == "btc") and
// ICXClaimDFCHTLC legs. Unparsable amounts are logged and skipped.
func accumulate(res *WalkResult, row core.IndexedTxRow, log *logrus.Logger) {
	if row.TxType == core.PoolSwap && row.SwapFrom == "btc" && row.SwapAmt != "" {
		if d, err := decimal.NewFromString(row.SwapAmt); err == nil {
			res.BTCSwapTotal = res.BTCSwapTotal.Add(d)
		} else {
			log.WithFields(logrus.Fields{"tx": row.TxID, "swap_amt": row.SwapAmt}).Warn("graph walk: unparsable swap_amt skipped")
		}
	}
	if row.TxType == core.ICXClaimDFCHTLC && row.IcxBtcExpAmt != "" {
		if d, err := decimal.NewFromString(row.IcxBtcExpAmt); err == nil {
			res.ICXBTCTotal = res.ICXBTCTotal.Add(d)
		} else {
			log.WithFields(logrus.Fields{"tx": row.TxID, "icx_btc_exp_amt": row.IcxBtcExpAmt}).Warn("graph walk: unparsable icx_btc_exp_amt skipped")
		}
	}
}

// Walker wraps Walk with a stoppable, pollable run, so the `gwalk` CLI
// subcommand can wire it into the optional status surface (§10.4) the same
// way cindex and gbuild expose their progress.
type Walker struct {
	log   *logrus.Logger
	quit  atomic.Bool
	level atomic.Int64
}

// NewWalker returns a Walker. If log is nil, logrus.StandardLogger() is
// used.
func NewWalker(log *logrus.Logger) *Walker {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Walker{log: log}
}

// Stop raises the quit flag (SIGINT equivalent); the in-progress walk
// returns its accumulated result so far rather than continuing outward.
func (w *Walker) Stop() { w.quit.Store(true) }

// WalkerSnapshot is a point-in-time view of a Walker's progress.
type WalkerSnapshot struct {
	Level int64 `json:"level"`
}

// Snapshot returns the Walker's current progress.
func (w *Walker) Snapshot() WalkerSnapshot {
	return WalkerSnapshot{Level: w.level.Load()}
}

// Walk runs Walk using w's own quit flag and progress tracking.
func (w *Walker) Walk(ctx context.Context, g *graph.Graph, st *store.Store, origin string, cfg WalkConfig) (*WalkResult, error) {
	return walk(ctx, g, st, origin, cfg, w.log, func() bool { return w.quit.Load() }, &w.level)
}

func sortedSet(addrs []string) []string {
	out := append([]string(nil), addrs...)
	sort.Strings(out)
	return out
}

func inSorted(sorted []string, v string) bool {
	i := sort.SearchStrings(sorted, v)
	return i < len(sorted) && sorted[i] == v
}

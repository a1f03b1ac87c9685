package icxtrace

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"dfiindexer/core"
	"dfiindexer/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	ctx := context.Background()
	st, err := store.Open(ctx, filepath.Join(t.TempDir(), "index.sqlite"), 16)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func insertRows(t *testing.T, st *store.Store, rows []core.IndexedTxRow) {
	t.Helper()
	ctx := context.Background()
	if err := st.BeginWriter(ctx); err != nil {
		t.Fatalf("begin writer: %v", err)
	}
	for _, r := range rows {
		if err := st.InsertTx(ctx, r); err != nil {
			t.Fatalf("insert tx %s: %v", r.TxID, err)
		}
	}
	if err := st.CommitWriter(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}
}

func TestRunTracksNthClaimForwardUntilSwappedBack(t *testing.T) {
	st := newTestStore(t)
	insertRows(t, st, []core.IndexedTxRow{
		{TxID: "claim1", Height: 1, TxType: core.ICXClaimDFCHTLC, IcxAddr: "alice", IcxBtcExpAmt: "1.0"},
		{TxID: "tx1", Height: 2, TxType: core.Utxo, TxIn: map[string]float64{"alice": 1}, TxOut: map[string]float64{"bob": 1}},
		{TxID: "swap1", Height: 3, TxType: core.PoolSwap, TxIn: map[string]float64{"bob": 1}, TxOut: map[string]float64{"carol": 1}, SwapFrom: "btc", SwapTo: "dfi", SwapAmt: "0.6"},
		{TxID: "swap2", Height: 4, TxType: core.PoolSwap, TxIn: map[string]float64{"carol": 1}, TxOut: map[string]float64{"dave": 1}, SwapFrom: "btc", SwapTo: "dfi", SwapAmt: "0.4"},
		{TxID: "unrelated", Height: 5, TxType: core.Utxo, TxIn: map[string]float64{"zed": 1}, TxOut: map[string]float64{"yen": 1}},
	})

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	var lines []Line
	summary, err := Run(context.Background(), st, Config{NthClaim: 1}, log, func(l Line) { lines = append(lines, l) })
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Tracked == nil || summary.Tracked.Addr != "alice" {
		t.Fatalf("expected to track alice's claim, got %+v", summary.Tracked)
	}
	if !summary.StoppedOnLimit {
		t.Fatalf("expected the trace to stop once the claimed BTC amount was swapped back, got %+v", summary)
	}
	if len(lines) != 4 {
		t.Fatalf("expected 4 traced lines (claim1, tx1, swap1, swap2), got %d: %+v", len(lines), lines)
	}
	for _, l := range lines {
		if l.TxID == "unrelated" {
			t.Fatalf("unrelated tx leaked into the trace: %+v", lines)
		}
	}
}

func TestRunSkipsClaimsBeforeNth(t *testing.T) {
	st := newTestStore(t)
	insertRows(t, st, []core.IndexedTxRow{
		{TxID: "claim1", Height: 1, TxType: core.ICXClaimDFCHTLC, IcxAddr: "alice", IcxBtcExpAmt: "1.0"},
		{TxID: "claim2", Height: 2, TxType: core.ICXClaimDFCHTLC, IcxAddr: "bob", IcxBtcExpAmt: "2.0"},
	})

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	summary, err := Run(context.Background(), st, Config{NthClaim: 2}, log, func(Line) {})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Tracked == nil || summary.Tracked.Addr != "bob" {
		t.Fatalf("expected to track bob's claim (2nd), got %+v", summary.Tracked)
	}
	if summary.ScannedClaims != 2 {
		t.Fatalf("expected 2 scanned claims, got %d", summary.ScannedClaims)
	}
}

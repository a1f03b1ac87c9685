package graphquery

import (
	"context"
	"testing"

	"dfiindexer/core"
)

func TestListICXClaimsFiltersIgnoredAddresses(t *testing.T) {
	st := newTestStore(t)
	insertRows(t, st, []core.IndexedTxRow{
		{TxID: "claim1", Height: 1, TxType: core.ICXClaimDFCHTLC, IcxAddr: "alice",
			IcxData: &core.IcxData{OrderTx: "order1", OfferTx: "offer1", DfcHtlcTx: "htlc1", ClaimTx: "claim1"}},
		{TxID: "claim2", Height: 2, TxType: core.ICXClaimDFCHTLC, IcxAddr: "bob",
			IcxData: &core.IcxData{OrderTx: "order2", OfferTx: "offer2", DfcHtlcTx: "htlc2", ClaimTx: "claim2"}},
	})

	rows, err := ListICXClaims(context.Background(), st, []string{"bob"})
	if err != nil {
		t.Fatalf("list claims: %v", err)
	}
	if len(rows) != 1 || rows[0].IcxAddr != "alice" {
		t.Fatalf("expected only alice's claim, got %+v", rows)
	}
}

func TestGroupByOrderTxBucketsByOrder(t *testing.T) {
	rows := []core.IndexedTxRow{
		{TxID: "c1", IcxData: &core.IcxData{OrderTx: "o1"}},
		{TxID: "c2", IcxData: &core.IcxData{OrderTx: "o1"}},
		{TxID: "c3", IcxData: &core.IcxData{OrderTx: "o2"}},
	}
	groups := groupByOrderTx(rows)
	if len(groups["o1"]) != 2 || len(groups["o2"]) != 1 {
		t.Fatalf("unexpected grouping: %v", groups)
	}
}

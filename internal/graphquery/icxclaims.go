package graphquery

import (
	"context"
	"sort"

	"dfiindexer/core"
	"dfiindexer/internal/store"
)

// icxClaimShortCode is the persisted tx_type value for ICXClaimDFCHTLC rows,
// used by ListICXClaims to select claim rows.
const icxClaimShortCode = "icx-claim"

// ListICXClaims returns every ICXClaimDFCHTLC row with a non-empty IcxAddr,
// excluding any whose IcxAddr appears in ignoreAddrs, matching the original
// walker's ICX enumeration step.
func ListICXClaims(ctx context.Context, st *store.Store, ignoreAddrs []string) ([]core.IndexedTxRow, error) {
	ignore := sortedSet(ignoreAddrs)

	var rows []core.IndexedTxRow
	err := st.IterTxs(ctx, "WHERE tx_type = '"+icxClaimShortCode+"'", func(row core.IndexedTxRow) error {
		if row.IcxAddr == "" || inSorted(ignore, row.IcxAddr) {
			return nil
		}
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// groupByOrderTx buckets ICX claim rows by their shared order_tx identifier,
// the chain that links a create-order through offer/HTLC/claim into one
// economic sequence.
func groupByOrderTx(rows []core.IndexedTxRow) map[string][]core.IndexedTxRow {
	groups := make(map[string][]core.IndexedTxRow)
	for _, row := range rows {
		if row.IcxData == nil {
			continue
		}
		groups[row.IcxData.OrderTx] = append(groups[row.IcxData.OrderTx], row)
	}
	return groups
}

// sortedOrderKeys returns the order_tx keys of groups in a deterministic
// (sorted) order, so callers iterating the map get reproducible output.
func sortedOrderKeys(groups map[string][]core.IndexedTxRow) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

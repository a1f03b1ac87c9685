package graphquery

import (
	"context"
	"fmt"

	"dfiindexer/internal/graph"
	"dfiindexer/internal/store"
)

// IcxSequenceConfig mirrors the original's IcxSequenceArgs shape (comma
// delimited address filters), reused here for icxseq since it shares the
// same walk-filtering needs as Walk.
type IcxSequenceConfig struct {
	IcxIgnoreAddrs   []string
	GraphIgnoreAddrs []string
	GraphMarkAddrs   []string
}

// IcxSequenceStep is one leg of an ICX order's lifecycle, resolved back to
// the participant addresses the underlying transaction touched.
type IcxSequenceStep struct {
	Stage string // "order", "offer", "dfchtlc", "claim"
	TxID  string
	From  []string
	To    []string
}

// IcxSequence is one order_tx's full reconstructed lifecycle.
type IcxSequence struct {
	OrderTx string
	Steps   []IcxSequenceStep
}

// IcxSequences reconstructs, for every ICXClaimDFCHTLC row not excluded by
// cfg.IcxIgnoreAddrs, the backward chain of transactions that share its
// order_tx identifier (order -> offer -> DFC HTLC submission -> claim),
// resolving each leg's participant addresses from its indexed tx_in/tx_out
// row. Claims sharing an order_tx yield one sequence per order_tx.
//
// The original never implemented this command (its body panics immediately
// after argument setup), so there is no reference algorithm to follow; this
// takes the icx_data-linked transaction ids of each claim and looks up their
// index rows, analogous in spirit to how Walk resolves tx_type and amounts
// per edge but keyed by the ICX order chain instead of graph adjacency. g is
// not consulted.
func IcxSequences(ctx context.Context, g *graph.Graph, st *store.Store, cfg IcxSequenceConfig) ([]IcxSequence, error) {
	claims, err := ListICXClaims(ctx, st, cfg.IcxIgnoreAddrs)
	if err != nil {
		return nil, fmt.Errorf("list icx claims: %w", err)
	}
	ignore := sortedSet(cfg.GraphIgnoreAddrs)
	mark := sortedSet(cfg.GraphMarkAddrs)

	groups := groupByOrderTx(claims)
	sequences := make([]IcxSequence, 0, len(groups))
	for _, orderTx := range sortedOrderKeys(groups) {
		rows := groups[orderTx]
		seq := IcxSequence{OrderTx: orderTx}
		for _, row := range rows {
			if row.IcxData == nil {
				continue
			}
			legs := []struct {
				stage string
				txid  string
			}{
				{"order", row.IcxData.OrderTx},
				{"offer", row.IcxData.OfferTx},
				{"dfchtlc", row.IcxData.DfcHtlcTx},
				{"claim", row.IcxData.ClaimTx},
			}
			for _, leg := range legs {
				if leg.txid == "" {
					continue
				}
				step, err := resolveStep(ctx, st, leg.stage, leg.txid, ignore, mark)
				if err != nil {
					return nil, err
				}
				seq.Steps = append(seq.Steps, step)
			}
		}
		sequences = append(sequences, seq)
	}
	return sequences, nil
}

func resolveStep(ctx context.Context, st *store.Store, stage, txid string, ignore, mark []string) (IcxSequenceStep, error) {
	data, ok, err := st.GetTxAddrDataFromHash(ctx, txid)
	if err != nil {
		return IcxSequenceStep{}, fmt.Errorf("lookup leg tx %s: %w", txid, err)
	}
	step := IcxSequenceStep{Stage: stage, TxID: txid}
	if !ok {
		return step, nil
	}
	for addr := range data.TxIn {
		if inSorted(ignore, addr) {
			continue
		}
		step.From = append(step.From, addr)
	}
	for addr := range data.TxOut {
		if inSorted(ignore, addr) {
			continue
		}
		if inSorted(mark, addr) {
			step.To = append(step.To, addr+" (marked)")
			continue
		}
		step.To = append(step.To, addr)
	}
	return step, nil
}

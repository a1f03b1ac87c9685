package core

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// PrevoutResolver resolves a (prev_txid, vout index) reference to the value
// and addresses of that output. It is satisfied by the index store's
// read path; the classifier never sees SQL.
type PrevoutResolver interface {
	ResolveOutput(prevTxid string, voutIndex int) (value float64, addresses []string, err error)
}

// ErrUnresolvedInput is returned (wrapped) when a standard vin references a
// transaction that is not present in the index. This is a schema-level
// invariant violation (§7) and is always fatal to the caller.
type ErrUnresolvedInput struct {
	PrevTxid string
}

func (e *ErrUnresolvedInput) Error() string {
	return fmt.Sprintf("tx input references unknown prior transaction: %s", e.PrevTxid)
}

// poolSwapMsg is the subset of vm.msg decoded for PoolSwap/CompositeSwap
// transactions (§4.5).
type poolSwapMsg struct {
	FromAddress string          `json:"fromAddress"`
	ToAddress   string          `json:"toAddress"`
	FromAmount  decimal.Decimal `json:"fromAmount"`
	FromToken   string          `json:"fromToken"`
	ToToken     string          `json:"toToken"`
}

// ClassifyTx implements C5: given one transaction, a read-only prevout
// resolver, and the log-entry map built by C2, produce the normalized index
// row and its address-edge changeset.
func ClassifyTx(tx Transaction, height int64, resolver PrevoutResolver, logs LogEntryMap, log *logrus.Logger) (IndexedTxRow, []AddrEdgeRow, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	txIn, err := resolveInputs(tx, resolver, log)
	if err != nil {
		return IndexedTxRow{}, nil, err
	}
	txOut := resolveOutputs(tx, log)
	delete(txOut, "x")

	txType, txTypeRaw := classifyType(tx, txIn)

	var dvmAddrs []string
	if IsDVM(txType) && tx.VM != nil {
		dvmAddrs = ExtractAddresses(string(tx.VM.Msg))
	}

	dvmIn := partitionDvmIn(dvmAddrs, txIn)

	var edges []AddrEdgeRow
	if len(txIn) > 0 || len(dvmIn) > 0 {
		edges = buildChangeset(tx.TxID, txIn, txOut, dvmIn, dvmAddrs)
	}

	row := IndexedTxRow{
		TxID:      tx.TxID,
		Height:    height,
		TxType:    txType,
		TxTypeRaw: txTypeRaw,
		TxIn:      txIn,
		TxOut:     txOut,
		DvmIn:     dvmIn,
		DvmOut:    dvmAddrs,
	}

	if raw, err := json.Marshal(tx); err == nil {
		row.Data = raw
	}

	switch txType {
	case PoolSwap, CompositeSwap:
		if tx.VM == nil {
			return IndexedTxRow{}, nil, fmt.Errorf("tx %s classified as swap but has no vm payload", tx.TxID)
		}
		var msg poolSwapMsg
		if err := json.Unmarshal(tx.VM.Msg, &msg); err != nil {
			return IndexedTxRow{}, nil, fmt.Errorf("decode swap msg for %s: %w", tx.TxID, err)
		}
		row.SwapFrom = TokenIDToSymbol(msg.FromToken)
		row.SwapTo = TokenIDToSymbol(msg.ToToken)
		row.SwapAmt = msg.FromAmount.StringFixed(9)
	case ICXClaimDFCHTLC:
		if entry, ok := logs[tx.TxID]; ok && entry.Icx != nil {
			icx := entry.Icx
			row.IcxData = &IcxData{
				OrderTx:   icx.OrderTx,
				OfferTx:   icx.OfferTx,
				DfcHtlcTx: icx.DfcHtlcTx,
				ClaimTx:   icx.ClaimTx,
			}
			row.IcxAddr = icx.Address
			row.IcxBtcExpAmt = icx.Amount
		}
	}

	return row, edges, nil
}

func resolveInputs(tx Transaction, resolver PrevoutResolver, log *logrus.Logger) (map[string]float64, error) {
	addrVals := make([]addrVal, 0, len(tx.Vin))
	for _, vin := range tx.Vin {
		if vin.IsCoinbase() {
			continue
		}
		val, addrs, err := resolver.ResolveOutput(vin.TxID, vin.Vout)
		if err != nil {
			return nil, &ErrUnresolvedInput{PrevTxid: vin.TxID}
		}
		switch len(addrs) {
		case 0:
			return nil, fmt.Errorf("input with no address found: %s", vin.TxID)
		case 1:
			addrVals = append(addrVals, addrVal{addr: addrs[0], val: val})
		default:
			log.WithFields(logrus.Fields{"txid": vin.TxID}).Warn("multiple addresses found on input, composing multisig key")
			addrVals = append(addrVals, addrVal{addr: strings.Join(addrs, "+"), val: val})
		}
	}
	return foldAddrVal(addrVals), nil
}

func resolveOutputs(tx Transaction, log *logrus.Logger) map[string]float64 {
	addrVals := make([]addrVal, 0, len(tx.Vout))
	for _, vout := range tx.Vout {
		var addr string
		if len(vout.ScriptPubKey.Addresses) == 0 {
			addr = "x"
		} else {
			if len(vout.ScriptPubKey.Addresses) > 1 {
				log.WithFields(logrus.Fields{"txid": tx.TxID}).Warn("multiple addresses found on output, composing multisig key")
			}
			addr = strings.Join(vout.ScriptPubKey.Addresses, "+")
		}
		addrVals = append(addrVals, addrVal{addr: addr, val: vout.Value})
	}
	return foldAddrVal(addrVals)
}

type addrVal struct {
	addr string
	val  float64
}

func foldAddrVal(list []addrVal) map[string]float64 {
	m := make(map[string]float64, len(list))
	for _, av := range list {
		m[av.addr] += av.val
	}
	return m
}

func classifyType(tx Transaction, txIn map[string]float64) (TxType, string) {
	var tt TxType = Unknown
	var raw string
	if tx.VM != nil {
		tt = ParseTxTypeLongForm(tx.VM.TxType)
		raw = tx.VM.TxType
	}
	if len(txIn) == 0 {
		return Coinbase, ""
	}
	return tt, raw
}

func partitionDvmIn(dvmAddrs []string, txIn map[string]float64) []string {
	if len(dvmAddrs) == 0 {
		return nil
	}
	var in []string
	for _, addr := range dvmAddrs {
		if _, ok := txIn[addr]; ok {
			in = append(in, addr)
		}
	}
	return in
}

type edgeKey struct {
	in, out string
}

// buildChangeset implements §4.5 step 7: the per-tx (in_addr, out_addr) ->
// c_flags map, emitted as one AddrEdgeRow per entry.
func buildChangeset(txid string, txIn, txOut map[string]float64, dvmIn, dvmAddrs []string) []AddrEdgeRow {
	changeset := make(map[edgeKey]CFlag)

	for out := range txOut {
		for in := range txIn {
			changeset[edgeKey{in, out}] = CFlagUTXO
		}
	}

	for _, out := range dvmAddrs {
		for _, in := range dvmIn {
			k := edgeKey{in, out}
			if existing, ok := changeset[k]; ok && existing == CFlagUTXO {
				changeset[k] = CFlagBoth
			} else if !ok {
				changeset[k] = CFlagDVM
			}
		}
	}

	rows := make([]AddrEdgeRow, 0, len(changeset))
	for k, flags := range changeset {
		rows = append(rows, AddrEdgeRow{TxID: txid, InAddr: k.in, OutAddr: k.out, CFlags: flags})
	}
	// Deterministic order for reproducible tests and stable dumps; storage is
	// keyed by (txid,in_addr,out_addr) so this does not affect persisted
	// semantics, only iteration order before persistence.
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].InAddr != rows[j].InAddr {
			return rows[i].InAddr < rows[j].InAddr
		}
		return rows[i].OutAddr < rows[j].OutAddr
	})
	return rows
}

package core

import "encoding/json"

// Block is one indexed block, identified by height and hash.
type Block struct {
	Height int64             `json:"height"`
	Hash   string            `json:"hash"`
	Tx     []Transaction     `json:"tx"`
	Raw    json.RawMessage   `json:"-"`
}

// Vin is one transaction input: either the coinbase marker or a reference to
// a prior transaction's output.
type Vin struct {
	Coinbase string `json:"coinbase,omitempty"`
	TxID     string `json:"txid,omitempty"`
	Vout     int    `json:"vout"`
}

// IsCoinbase reports whether this vin is the synthetic coinbase input.
func (v Vin) IsCoinbase() bool { return v.Coinbase != "" }

// ScriptPubKey carries the output script classification and, for standard
// (non-OP_RETURN, non-multisig-ambiguous) outputs, the resolved addresses.
type ScriptPubKey struct {
	Type      string   `json:"type"`
	Addresses []string `json:"addresses,omitempty"`
}

// Vout is one transaction output.
type Vout struct {
	N            int          `json:"n"`
	Value        float64      `json:"value"`
	ScriptPubKey ScriptPubKey `json:"scriptPubKey"`
}

// VM carries an opaque account-model (DVM) payload attached to a
// transaction. Msg is kept as raw JSON so it can be re-serialized verbatim
// and also scanned for embedded addresses (C4) without a full typed decode.
type VM struct {
	VMType  string          `json:"vmtype"`
	TxType  string          `json:"txtype"`
	Msg     json.RawMessage `json:"msg"`
}

// Transaction is one on-chain transaction as returned by the chain driver.
type Transaction struct {
	TxID string `json:"txid"`
	Vin  []Vin  `json:"vin"`
	Vout []Vout `json:"vout"`
	VM   *VM    `json:"vm,omitempty"`
}

// IcxData is the four-transaction-id record describing one ICX swap's
// lifecycle, as logged by the node and later attached to the claim tx's
// indexed row.
type IcxData struct {
	OrderTx   string `json:"order_tx"`
	OfferTx   string `json:"offer_tx"`
	DfcHtlcTx string `json:"dfchtlc_tx"`
	ClaimTx   string `json:"claim_tx"`
}

// IndexedTxRow is the normalized, persisted shape of one transaction (§3).
// Empty composite fields may be nil or empty (zero-length map / slice,
// empty string); the store layer is responsible for serializing any of
// those as the empty-string sentinel rather than "{}" / "[]".
type IndexedTxRow struct {
	TxID         string
	Height       int64
	TxType       TxType
	TxTypeRaw    string // only meaningful when TxType == OtherType
	TxIn         map[string]float64
	TxOut        map[string]float64
	DvmIn        []string
	DvmOut       []string
	Data         json.RawMessage
	IcxData      *IcxData
	IcxAddr      string
	IcxBtcExpAmt string
	SwapFrom     string
	SwapTo       string
	SwapAmt      string
}

// CFlag classifies how an (in_addr, out_addr) pair arose for one
// transaction.
type CFlag int

const (
	// CFlagUTXO: the pair arose only from UTXO inputs x outputs.
	CFlagUTXO CFlag = 0
	// CFlagDVM: the pair arose only from DVM inputs x DVM addresses.
	CFlagDVM CFlag = 1
	// CFlagBoth: the pair arose from both.
	CFlagBoth CFlag = 2
)

// AddrEdgeRow is one (txid, in_addr, out_addr) changeset entry (§3).
type AddrEdgeRow struct {
	TxID   string
	InAddr string
	OutAddr string
	CFlags CFlag
}

// LogIcxData is the ICX: log line payload, keyed by ClaimTx.
type LogIcxData struct {
	IcxData
	Address string `json:"address"`
	Amount  string `json:"amount"`
}

// LogIcxCalcData is the ICXCalc: log line payload, keyed by CalcTx.
type LogIcxCalcData struct {
	CalcTx string `json:"calc_tx"`
	// remaining fields are opaque to this system; only calc_tx is used as
	// the join key.
	Raw json.RawMessage `json:"-"`
}

// LogSwapData is the SwapResult: log line payload, keyed by TxID.
type LogSwapData struct {
	TxID string          `json:"txid"`
	Raw  json.RawMessage `json:"-"`
}

// LogEntry is the merged, per-txid view of the three log record kinds (§3).
// Most entries will have only one of the three fields populated.
type LogEntry struct {
	Icx     *LogIcxData
	IcxCalc *LogIcxCalcData
	Swap    *LogSwapData
}

// LogEntryMap accumulates LogEntry records across a log parse, keyed by
// transaction id (the claim_tx / calc_tx / txid join key, unified - a given
// txid may carry any combination of the three sub-records across separate
// log lines).
type LogEntryMap map[string]*LogEntry

func (m LogEntryMap) entry(txid string) *LogEntry {
	e, ok := m[txid]
	if !ok {
		e = &LogEntry{}
		m[txid] = e
	}
	return e
}

// Set applies mutate to the entry keyed by txid, creating it if absent. Used
// by the log parser (C2) to merge ICX / ICXCalc / SwapResult records as they
// are scanned, since a given txid may be touched by more than one log line.
func (m LogEntryMap) Set(txid string, mutate func(*LogEntry)) {
	mutate(m.entry(txid))
}

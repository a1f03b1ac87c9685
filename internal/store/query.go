package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"dfiindexer/core"
)

// GetBlockHash returns the hash of the block at height, or ("", false) if
// absent.
func (s *Store) GetBlockHash(ctx context.Context, height int64) (string, bool, error) {
	var hash string
	err := s.db.QueryRowContext(ctx, "SELECT hash FROM blocks WHERE height = ?", height).Scan(&hash)
	return scanOptional(hash, err)
}

// GetBlockHashForTx returns the hash of the block containing tx txid.
func (s *Store) GetBlockHashForTx(ctx context.Context, txid string) (string, bool, error) {
	const q = `
		SELECT b.hash
		FROM blocks b
		JOIN (SELECT height FROM txs WHERE txid = ? LIMIT 1) t ON b.height = t.height
	`
	var hash string
	err := s.db.QueryRowContext(ctx, q, txid).Scan(&hash)
	return scanOptional(hash, err)
}

// GetBlockFromHeight returns the full decoded block at height.
func (s *Store) GetBlockFromHeight(ctx context.Context, height int64) (core.Block, bool, error) {
	var data string
	err := s.db.QueryRowContext(ctx, "SELECT data FROM blocks WHERE height = ?", height).Scan(&data)
	return scanBlock(data, err)
}

// GetBlockFromHash returns the full decoded block with the given hash.
func (s *Store) GetBlockFromHash(ctx context.Context, hash string) (core.Block, bool, error) {
	var data string
	err := s.db.QueryRowContext(ctx, "SELECT data FROM blocks WHERE hash = ?", hash).Scan(&data)
	return scanBlock(data, err)
}

// GetBlockForTx returns the full decoded block containing tx txid.
func (s *Store) GetBlockForTx(ctx context.Context, txid string) (core.Block, bool, error) {
	var height int64
	err := s.db.QueryRowContext(ctx, "SELECT height FROM txs WHERE txid = ? LIMIT 1", txid).Scan(&height)
	if err == sql.ErrNoRows {
		return core.Block{}, false, nil
	}
	if err != nil {
		return core.Block{}, false, err
	}
	return s.GetBlockFromHeight(ctx, height)
}

// GetTxFromHash returns the full decoded transaction data for txid.
func (s *Store) GetTxFromHash(ctx context.Context, txid string) (core.Transaction, bool, error) {
	var data string
	err := s.db.QueryRowContext(ctx, "SELECT data FROM txs WHERE txid = ?", txid).Scan(&data)
	if err == sql.ErrNoRows {
		return core.Transaction{}, false, nil
	}
	if err != nil {
		return core.Transaction{}, false, err
	}
	var tx core.Transaction
	if err := json.Unmarshal([]byte(data), &tx); err != nil {
		return core.Transaction{}, false, fmt.Errorf("unmarshal tx %s: %w", txid, err)
	}
	return tx, true, nil
}

// TxAddrData is the lightweight (tx_type, tx_in, tx_out) projection used by
// icxseq to resolve each leg's addresses, avoiding the cost of decoding the
// full tx payload.
type TxAddrData struct {
	TxType string
	TxIn   map[string]float64
	TxOut  map[string]float64
}

// GetTxAddrDataFromHash returns the address-graph projection for txid.
func (s *Store) GetTxAddrDataFromHash(ctx context.Context, txid string) (TxAddrData, bool, error) {
	var txIn, txOut, txType string
	err := s.db.QueryRowContext(ctx, "SELECT tx_in, tx_out, tx_type FROM txs WHERE txid = ?", txid).
		Scan(&txIn, &txOut, &txType)
	if err == sql.ErrNoRows {
		return TxAddrData{}, false, nil
	}
	if err != nil {
		return TxAddrData{}, false, err
	}
	in, err := unmarshalAddrMap(txIn)
	if err != nil {
		return TxAddrData{}, false, err
	}
	out, err := unmarshalAddrMap(txOut)
	if err != nil {
		return TxAddrData{}, false, err
	}
	return TxAddrData{TxType: txType, TxIn: in, TxOut: out}, true, nil
}

// GetIndexedTxRow returns the full slim (non-data/icx_data) projection of
// txid's indexed row, used by graph walks to recover tx_type, swap and ICX
// fields per edge without paying for the heavy JSON columns.
func (s *Store) GetIndexedTxRow(ctx context.Context, txid string) (core.IndexedTxRow, bool, error) {
	const q = `SELECT txid, height, tx_type, tx_in, tx_out, dvm_in, dvm_out, icx_addr, icx_btc_exp_amt, swap_from, swap_to, swap_amt FROM txs WHERE txid = ?`
	var (
		id, txTypeCol, txIn, txOut, dvmIn, dvmOut        string
		icxAddr, icxBtcExpAmt, swapFrom, swapTo, swapAmt string
		height                                            int64
	)
	err := s.db.QueryRowContext(ctx, q, txid).Scan(&id, &height, &txTypeCol, &txIn, &txOut, &dvmIn, &dvmOut,
		&icxAddr, &icxBtcExpAmt, &swapFrom, &swapTo, &swapAmt)
	if err == sql.ErrNoRows {
		return core.IndexedTxRow{}, false, nil
	}
	if err != nil {
		return core.IndexedTxRow{}, false, err
	}
	row := core.IndexedTxRow{
		TxID:         id,
		Height:       height,
		TxType:       core.ParseTxTypeShortCode(txTypeCol),
		TxTypeRaw:    txTypeCol,
		IcxAddr:      icxAddr,
		IcxBtcExpAmt: icxBtcExpAmt,
		SwapFrom:     swapFrom,
		SwapTo:       swapTo,
		SwapAmt:      swapAmt,
	}
	if row.TxIn, err = unmarshalAddrMap(txIn); err != nil {
		return core.IndexedTxRow{}, false, err
	}
	if row.TxOut, err = unmarshalAddrMap(txOut); err != nil {
		return core.IndexedTxRow{}, false, err
	}
	if row.DvmIn, err = unmarshalStrSlice(dvmIn); err != nil {
		return core.IndexedTxRow{}, false, err
	}
	if row.DvmOut, err = unmarshalStrSlice(dvmOut); err != nil {
		return core.IndexedTxRow{}, false, err
	}
	return row, true, nil
}

func unmarshalAddrMap(s string) (map[string]float64, error) {
	if s == "" {
		return map[string]float64{}, nil
	}
	var m map[string]float64
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, fmt.Errorf("unmarshal addr map: %w", err)
	}
	return m, nil
}

func scanOptional(v string, err error) (string, bool, error) {
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func scanBlock(data string, err error) (core.Block, bool, error) {
	if err == sql.ErrNoRows {
		return core.Block{}, false, nil
	}
	if err != nil {
		return core.Block{}, false, err
	}
	var b core.Block
	if unmarshalErr := json.Unmarshal([]byte(data), &b); unmarshalErr != nil {
		return core.Block{}, false, fmt.Errorf("unmarshal block: %w", unmarshalErr)
	}
	return b, true, nil
}

// IterBlocks streams every block matching the optional SQL modifier (e.g.
// "ORDER BY height") through f, stopping at the first error f returns.
func (s *Store) IterBlocks(ctx context.Context, modifier string, f func(core.Block) error) error {
	query := "SELECT data FROM blocks"
	if modifier != "" {
		query += " " + modifier
	}
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return err
		}
		var b core.Block
		if err := json.Unmarshal([]byte(data), &b); err != nil {
			return fmt.Errorf("unmarshal block: %w", err)
		}
		if err := f(b); err != nil {
			return err
		}
	}
	return rows.Err()
}

// IterTxs streams every transaction row matching modifier through f, fully
// decoding the heavy data/icx_data JSON columns.
func (s *Store) IterTxs(ctx context.Context, modifier string, f func(core.IndexedTxRow) error) error {
	return s.iterTxs(ctx, modifier, true, f)
}

// IterTxsPartial is IterTxs without decoding the data/icx_data columns, for
// callers (e.g. graph construction) that only need the address-graph
// projection.
func (s *Store) IterTxsPartial(ctx context.Context, modifier string, f func(core.IndexedTxRow) error) error {
	return s.iterTxs(ctx, modifier, false, f)
}

func (s *Store) iterTxs(ctx context.Context, modifier string, full bool, f func(core.IndexedTxRow) error) error {
	query := "SELECT txid, height, tx_type, tx_in, tx_out, dvm_in, dvm_out, data, icx_data, icx_addr, icx_btc_exp_amt, swap_from, swap_to, swap_amt FROM txs"
	if modifier != "" {
		query += " " + modifier
	}
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			txid, txTypeCol, txIn, txOut, dvmIn, dvmOut, data, icxData string
			height                                                     int64
			icxAddr, icxBtcExpAmt, swapFrom, swapTo, swapAmt            string
		)
		if err := rows.Scan(&txid, &height, &txTypeCol, &txIn, &txOut, &dvmIn, &dvmOut, &data, &icxData,
			&icxAddr, &icxBtcExpAmt, &swapFrom, &swapTo, &swapAmt); err != nil {
			return err
		}

		row := core.IndexedTxRow{
			TxID:         txid,
			Height:       height,
			TxType:       core.ParseTxTypeShortCode(txTypeCol),
			TxTypeRaw:    txTypeCol,
			IcxAddr:      icxAddr,
			IcxBtcExpAmt: icxBtcExpAmt,
			SwapFrom:     swapFrom,
			SwapTo:       swapTo,
			SwapAmt:      swapAmt,
		}
		if row.TxIn, err = unmarshalAddrMap(txIn); err != nil {
			return err
		}
		if row.TxOut, err = unmarshalAddrMap(txOut); err != nil {
			return err
		}
		if row.DvmIn, err = unmarshalStrSlice(dvmIn); err != nil {
			return err
		}
		if row.DvmOut, err = unmarshalStrSlice(dvmOut); err != nil {
			return err
		}
		if full {
			if data != "" {
				row.Data = json.RawMessage(data)
			}
			if icxData != "" {
				var icx core.IcxData
				if err := json.Unmarshal([]byte(icxData), &icx); err != nil {
					return fmt.Errorf("unmarshal icx_data for %s: %w", txid, err)
				}
				row.IcxData = &icx
			}
		}

		if err := f(row); err != nil {
			return err
		}
	}
	return rows.Err()
}

func unmarshalStrSlice(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("unmarshal string slice: %w", err)
	}
	return out, nil
}

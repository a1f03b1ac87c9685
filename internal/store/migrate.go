package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	"dfiindexer/core"
)

// MigrateV1ToV2 reads every row from the legacy v1 schema database at
// v1Path and writes it into dst via the v2 schema. v1's single dvm_addrs
// column is written into both DvmIn and DvmOut, since v1 never recorded
// which side of the tx a DVM address belonged to; v1's tx_graph table
// (tx_in_addr, txid, tx_out_addr, c_flags) has a different column order than
// v2's tx_addr_graph and is read by column name, not position.
func MigrateV1ToV2(ctx context.Context, v1Path string, dst *Store) error {
	v1, err := sql.Open("sqlite", v1Path)
	if err != nil {
		return fmt.Errorf("open v1 db %s: %w", v1Path, err)
	}
	defer v1.Close()

	if err := dst.BeginWriter(ctx); err != nil {
		return fmt.Errorf("begin writer: %w", err)
	}

	if err := migrateBlocks(ctx, v1, dst); err != nil {
		return err
	}
	if err := migrateTxs(ctx, v1, dst); err != nil {
		return err
	}
	if err := migrateTxGraph(ctx, v1, dst); err != nil {
		return err
	}

	return dst.CommitWriter(ctx)
}

func migrateBlocks(ctx context.Context, v1 *sql.DB, dst *Store) error {
	rows, err := v1.QueryContext(ctx, "SELECT height, hash, data FROM blocks")
	if err != nil {
		return fmt.Errorf("query v1 blocks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var data string
		var b core.Block
		if err := rows.Scan(&b.Height, &b.Hash, &data); err != nil {
			return fmt.Errorf("scan v1 block: %w", err)
		}
		if err := json.Unmarshal([]byte(data), &b); err != nil {
			return fmt.Errorf("unmarshal v1 block %d: %w", b.Height, err)
		}
		if err := dst.InsertBlock(ctx, b); err != nil {
			return fmt.Errorf("insert migrated block %d: %w", b.Height, err)
		}
	}
	return rows.Err()
}

func migrateTxs(ctx context.Context, v1 *sql.DB, dst *Store) error {
	const q = `SELECT txid, height, tx_type, tx_in, tx_out, dvm_addrs, data, icx_data, icx_addr, icx_btc_exp_amt, swap_from, swap_to, swap_amt FROM txs`
	rows, err := v1.QueryContext(ctx, q)
	if err != nil {
		return fmt.Errorf("query v1 txs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			txid, txTypeCol, txIn, txOut, dvmAddrs, data, icxData string
			icxAddr, icxBtcExpAmt, swapFrom, swapTo, swapAmt       string
			height                                                 int64
		)
		if err := rows.Scan(&txid, &height, &txTypeCol, &txIn, &txOut, &dvmAddrs, &data, &icxData,
			&icxAddr, &icxBtcExpAmt, &swapFrom, &swapTo, &swapAmt); err != nil {
			return fmt.Errorf("scan v1 tx: %w", err)
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
		var err error
		if row.TxIn, err = unmarshalAddrMap(txIn); err != nil {
			return fmt.Errorf("unmarshal v1 tx_in for %s: %w", txid, err)
		}
		if row.TxOut, err = unmarshalAddrMap(txOut); err != nil {
			return fmt.Errorf("unmarshal v1 tx_out for %s: %w", txid, err)
		}
		dvm, err := unmarshalStrSlice(dvmAddrs)
		if err != nil {
			return fmt.Errorf("unmarshal v1 dvm_addrs for %s: %w", txid, err)
		}
		row.DvmIn = dvm
		row.DvmOut = dvm
		if data != "" {
			row.Data = json.RawMessage(data)
		}
		if icxData != "" {
			var icx core.IcxData
			if err := json.Unmarshal([]byte(icxData), &icx); err != nil {
				return fmt.Errorf("unmarshal v1 icx_data for %s: %w", txid, err)
			}
			row.IcxData = &icx
		}

		if err := dst.InsertTx(ctx, row); err != nil {
			return fmt.Errorf("insert migrated tx %s: %w", txid, err)
		}
	}
	return rows.Err()
}

func migrateTxGraph(ctx context.Context, v1 *sql.DB, dst *Store) error {
	const q = `SELECT tx_in_addr, txid, tx_out_addr, c_flags FROM tx_graph`
	rows, err := v1.QueryContext(ctx, q)
	if err != nil {
		return fmt.Errorf("query v1 tx_graph: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var inAddr, txid, outAddr, cFlagsCol string
		if err := rows.Scan(&inAddr, &txid, &outAddr, &cFlagsCol); err != nil {
			return fmt.Errorf("scan v1 tx_graph row: %w", err)
		}
		n, err := strconv.Atoi(cFlagsCol)
		if err != nil {
			return fmt.Errorf("parse v1 c_flags %q for tx %s: %w", cFlagsCol, txid, err)
		}
		edge := core.AddrEdgeRow{TxID: txid, InAddr: inAddr, OutAddr: outAddr, CFlags: core.CFlag(n)}
		if err := dst.InsertAddrEdge(ctx, edge); err != nil {
			return fmt.Errorf("insert migrated edge for tx %s: %w", txid, err)
		}
	}
	return rows.Err()
}

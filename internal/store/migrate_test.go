package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

func writeV1Fixture(t *testing.T, path string) {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open v1 fixture: %v", err)
	}
	defer db.Close()

	stmts := []string{
		`CREATE TABLE blocks (height INTEGER PRIMARY KEY, hash TEXT NOT NULL, data TEXT NOT NULL)`,
		`CREATE TABLE txs (
			txid TEXT PRIMARY KEY, height INTEGER NOT NULL, tx_type TEXT NOT NULL,
			tx_in TEXT NOT NULL, tx_out TEXT NOT NULL, dvm_addrs TEXT NOT NULL,
			data TEXT NOT NULL, icx_data TEXT NOT NULL, icx_addr TEXT NOT NULL,
			icx_btc_exp_amt TEXT NOT NULL, swap_from TEXT NOT NULL, swap_to TEXT NOT NULL,
			swap_amt TEXT NOT NULL)`,
		`CREATE TABLE tx_graph (rowid INTEGER PRIMARY KEY, tx_in_addr TEXT NOT NULL, txid TEXT NOT NULL, tx_out_addr TEXT NOT NULL, c_flags TEXT NOT NULL)`,
		`INSERT INTO blocks (height, hash, data) VALUES (5, 'hash5', '{"height":5,"hash":"hash5","tx":[]}')`,
		`INSERT INTO txs (txid, height, tx_type, tx_in, tx_out, dvm_addrs, data, icx_data, icx_addr, icx_btc_exp_amt, swap_from, swap_to, swap_amt)
			VALUES ('tx1', 5, 'utxo', '{"alice":1}', '{"bob":1}', '["alice","bob"]', '', '', '', '', '', '', '')`,
		`INSERT INTO tx_graph (tx_in_addr, txid, tx_out_addr, c_flags) VALUES ('alice', 'tx1', 'bob', '0')`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("exec %q: %v", s, err)
		}
	}
}

func TestMigrateV1ToV2CopiesBlocksTxsAndEdges(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	v1Path := filepath.Join(dir, "v1.sqlite")
	writeV1Fixture(t, v1Path)

	dst, err := Open(ctx, filepath.Join(dir, "v2.sqlite"), 16)
	if err != nil {
		t.Fatalf("open v2 store: %v", err)
	}
	defer dst.Close()

	if err := MigrateV1ToV2(ctx, v1Path, dst); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	hash, ok, err := dst.GetBlockHash(ctx, 5)
	if err != nil || !ok {
		t.Fatalf("expected migrated block 5, got hash=%q ok=%v err=%v", hash, ok, err)
	}
	if hash != "hash5" {
		t.Fatalf("expected hash5, got %q", hash)
	}

	row, ok, err := dst.GetIndexedTxRow(ctx, "tx1")
	if err != nil || !ok {
		t.Fatalf("expected migrated tx1, got ok=%v err=%v", ok, err)
	}
	if len(row.DvmIn) != 2 || len(row.DvmOut) != 2 {
		t.Fatalf("expected v1's single dvm_addrs column copied into both DvmIn and DvmOut, got in=%v out=%v", row.DvmIn, row.DvmOut)
	}

	var inAddr, outAddr string
	var cFlags int
	err = dst.db.QueryRowContext(ctx, "SELECT in_addr, out_addr, c_flags FROM tx_addr_graph WHERE txid = ?", "tx1").
		Scan(&inAddr, &outAddr, &cFlags)
	if err != nil {
		t.Fatalf("query migrated edge: %v", err)
	}
	if inAddr != "alice" || outAddr != "bob" || cFlags != 0 {
		t.Fatalf("expected edge alice->bob c_flags=0, got %s->%s c_flags=%d", inAddr, outAddr, cFlags)
	}
}

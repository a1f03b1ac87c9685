// Package store is the SQLite-backed index (C3): schema management, the
// long-lived writer transaction, point lookups, and bulk iteration over
// indexed blocks and transactions.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	lru "github.com/hashicorp/golang-lru/v2"

	"dfiindexer/core"
)

// schemaVersion identifies the canonical on-disk layout this store reads and
// writes. v1 (single dvm_addrs column, tx_graph table) is only ever read, by
// the migration path in cmd sindex.
const schemaVersion = 2

// pragmas is the fixed sequence applied once per connection open. Order
// matters: wal_checkpoint must run after journal_mode is already wal.
var pragmas = []string{
	"pragma journal_mode=wal",
	"pragma secure_delete=off",
	"pragma synchronous=normal",
	"pragma analysis_limit=1000",
	"pragma wal_autocheckpoint=1000",
	"pragma page_size=4096",
	"pragma auto_vacuum=0",
	"pragma journal_size_limit=67108864",
	"pragma wal_checkpoint(truncate)",
}

// Store is the index's SQLite handle plus its cached prepared statements and
// the prevout lookup cache used by the classifier's hot path (§4.3).
type Store struct {
	db           *sql.DB
	insertBlock  *sql.Stmt
	insertTx     *sql.Stmt
	insertEdge   *sql.Stmt
	prevoutCache *lru.Cache[string, cachedTx]
}

// Open creates (or reopens) a v2 index at path, applies the fixed pragma
// sequence, and ensures the schema and prepared statements are ready.
// prevoutCacheSize bounds the in-process LRU used by ResolveOutput.
func Open(ctx context.Context, path string, prevoutCacheSize int) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1) // a single writer transaction owns the connection

	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", p, err)
		}
	}

	if err := createTablesV2(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	if prevoutCacheSize <= 0 {
		prevoutCacheSize = 100_000
	}
	cache, err := lru.New[string, cachedTx](prevoutCacheSize)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("build prevout cache: %w", err)
	}

	s := &Store{db: db, prevoutCache: cache}
	if err := s.prepare(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func createTablesV2(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS blocks (
			height INTEGER PRIMARY KEY,
			hash TEXT UNIQUE NOT NULL,
			data TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS txs (
			txid TEXT PRIMARY KEY,
			height INTEGER NOT NULL,
			tx_type TEXT NOT NULL,
			tx_in TEXT NOT NULL,
			tx_out TEXT NOT NULL,
			dvm_in TEXT NOT NULL,
			dvm_out TEXT NOT NULL,
			data TEXT NOT NULL,
			icx_data TEXT NOT NULL,
			icx_addr TEXT NOT NULL,
			icx_btc_exp_amt TEXT NOT NULL,
			swap_from TEXT NOT NULL,
			swap_to TEXT NOT NULL,
			swap_amt TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tx_addr_graph (
			rowid INTEGER PRIMARY KEY,
			txid TEXT NOT NULL,
			in_addr TEXT NOT NULL,
			out_addr TEXT NOT NULL,
			c_flags TEXT NOT NULL,
			UNIQUE (txid, in_addr, out_addr)
		)`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// indexCatalog names the secondary indexes dropped before a bulk load and
// rebuilt afterward (§6).
var indexCatalog = []struct{ name, ddl string }{
	{"idx_txs_height", "CREATE INDEX IF NOT EXISTS idx_txs_height ON txs (height)"},
	{"idx_txs_tx_type", "CREATE INDEX IF NOT EXISTS idx_txs_tx_type ON txs (tx_type)"},
	{"idx_txs_icx_addr", "CREATE INDEX IF NOT EXISTS idx_txs_icx_addr ON txs (icx_addr)"},
	{"idx_txs_swap_from", "CREATE INDEX IF NOT EXISTS idx_txs_swap_from ON txs (swap_from)"},
	{"idx_txs_swap_to", "CREATE INDEX IF NOT EXISTS idx_txs_swap_to ON txs (swap_to)"},
	{"idx_tx_addr_graph_txid", "CREATE INDEX IF NOT EXISTS idx_tx_addr_graph_txid ON tx_addr_graph (txid)"},
	{"idx_tx_addr_graph_in_addr", "CREATE INDEX IF NOT EXISTS idx_tx_addr_graph_in_addr ON tx_addr_graph (in_addr)"},
	{"idx_tx_addr_graph_out_addr", "CREATE INDEX IF NOT EXISTS idx_tx_addr_graph_out_addr ON tx_addr_graph (out_addr)"},
}

// DropSecondaryIndexes removes every secondary index, meant to be called
// before a large bulk load so the writer isn't paying maintenance cost on
// every row.
func (s *Store) DropSecondaryIndexes(ctx context.Context) error {
	for _, idx := range indexCatalog {
		if _, err := s.db.ExecContext(ctx, "DROP INDEX IF EXISTS "+idx.name); err != nil {
			return fmt.Errorf("drop index %s: %w", idx.name, err)
		}
	}
	return nil
}

// RebuildSecondaryIndexes recreates every secondary index, meant to be
// called once after a bulk load finishes.
func (s *Store) RebuildSecondaryIndexes(ctx context.Context) error {
	for _, idx := range indexCatalog {
		if _, err := s.db.ExecContext(ctx, idx.ddl); err != nil {
			return fmt.Errorf("create index %s: %w", idx.name, err)
		}
	}
	return nil
}

func (s *Store) prepare(ctx context.Context) error {
	var err error
	s.insertBlock, err = s.db.PrepareContext(ctx, `
		insert or replace into blocks (height, hash, data) values (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert block: %w", err)
	}
	s.insertTx, err = s.db.PrepareContext(ctx, `
		insert or replace into txs (
			txid, height, tx_type, tx_in, tx_out, dvm_in, dvm_out, data,
			icx_data, icx_addr, icx_btc_exp_amt, swap_from, swap_to, swap_amt
		) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert tx: %w", err)
	}
	s.insertEdge, err = s.db.PrepareContext(ctx, `
		insert or replace into tx_addr_graph (txid, in_addr, out_addr, c_flags) values (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert edge: %w", err)
	}
	return nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// BeginWriter starts the long-lived writer transaction the indexer commits
// and reopens every N heights.
func (s *Store) BeginWriter(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "begin transaction")
	return err
}

// CommitWriter commits the current writer transaction.
func (s *Store) CommitWriter(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "commit")
	return err
}

// CommitAndBeginWriter commits the current writer transaction and opens the
// next one, implementing the commit-every-N-heights cadence (§5).
func (s *Store) CommitAndBeginWriter(ctx context.Context) error {
	if err := s.CommitWriter(ctx); err != nil {
		return err
	}
	return s.BeginWriter(ctx)
}

// InsertBlock upserts one block row.
func (s *Store) InsertBlock(ctx context.Context, b core.Block) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshal block %d: %w", b.Height, err)
	}
	_, err = s.insertBlock.ExecContext(ctx, b.Height, b.Hash, string(data))
	return err
}

// InsertTx upserts one transaction row, using the empty-string sentinel
// convention for every JSON-ish column (§3).
func (s *Store) InsertTx(ctx context.Context, row core.IndexedTxRow) error {
	txTypeCol := row.TxType.ShortCode(row.TxTypeRaw)

	txIn, err := jsonOrEmpty(row.TxIn)
	if err != nil {
		return err
	}
	txOut, err := jsonOrEmpty(row.TxOut)
	if err != nil {
		return err
	}
	dvmIn, err := jsonOrEmpty(row.DvmIn)
	if err != nil {
		return err
	}
	dvmOut, err := jsonOrEmpty(row.DvmOut)
	if err != nil {
		return err
	}
	icxData, err := jsonOrEmpty(row.IcxData)
	if err != nil {
		return err
	}

	data := string(row.Data)

	_, err = s.insertTx.ExecContext(ctx,
		row.TxID, row.Height, txTypeCol, txIn, txOut, dvmIn, dvmOut, data,
		icxData, row.IcxAddr, row.IcxBtcExpAmt, row.SwapFrom, row.SwapTo, row.SwapAmt,
	)
	if err == nil {
		s.prevoutCache.Remove(row.TxID)
	}
	return err
}

// InsertAddrEdge upserts one (txid, in_addr, out_addr) changeset row.
func (s *Store) InsertAddrEdge(ctx context.Context, e core.AddrEdgeRow) error {
	_, err := s.insertEdge.ExecContext(ctx, e.TxID, e.InAddr, e.OutAddr, e.CFlags)
	return err
}

// jsonOrEmpty marshals v, but returns "" for a nil map/slice/pointer instead
// of "{}" / "[]" / "null" - the on-disk sentinel for "absent" (§3).
func jsonOrEmpty(v any) (string, error) {
	switch t := v.(type) {
	case map[string]float64:
		if len(t) == 0 {
			return "", nil
		}
	case []string:
		if len(t) == 0 {
			return "", nil
		}
	case *core.IcxData:
		if t == nil {
			return "", nil
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal: %w", err)
	}
	return string(b), nil
}

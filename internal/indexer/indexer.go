// Package indexer orchestrates the full chain-to-index run (C6): optional
// log ingestion, index drop/rebuild around the bulk load, the commit-every-N
// writer cadence, and the deferred-error pattern that lets a partial batch
// land before a chain-RPC failure is surfaced.
package indexer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"dfiindexer/core"
	"dfiindexer/internal/chainrpc"
	"dfiindexer/internal/logparse"
	"dfiindexer/internal/store"
)

// errInterrupted is the sentinel returned internally when the run loop
// exits early because quit was raised. Run translates it into a log line
// and a nil error - an interrupted indexing run is not a failure.
var errInterrupted = errors.New("interrupted")

// Config holds everything one indexing run needs.
type Config struct {
	CliPath          string
	SqlitePath       string
	DefidLogPath     string
	LogMatchers      logparse.Matchers
	StartHeight      int64
	EndHeight        int64
	EnableGraphTable bool
	CommitEvery      int64
	PrevoutCacheSize int
	RPCTimeout       time.Duration
}

// Indexer drives one run of Config against a chain driver and index store.
type Indexer struct {
	cfg  Config
	log  *logrus.Logger
	quit atomic.Bool

	phase      atomic.Value // string
	height     atomic.Int64
	endHeight  atomic.Int64
	txIndexed  atomic.Int64
}

// Snapshot is a point-in-time view of an Indexer's progress, polled by the
// status surface's /stats endpoint (§10.4).
type Snapshot struct {
	Phase     string `json:"phase"`
	Height    int64  `json:"height"`
	EndHeight int64  `json:"end_height"`
	TxIndexed int64  `json:"tx_indexed"`
}

// Snapshot returns the Indexer's current progress. Safe to call from any
// goroutine while Run is in flight.
func (ix *Indexer) Snapshot() Snapshot {
	phase, _ := ix.phase.Load().(string)
	return Snapshot{
		Phase:     phase,
		Height:    ix.height.Load(),
		EndHeight: ix.endHeight.Load(),
		TxIndexed: ix.txIndexed.Load(),
	}
}

func (ix *Indexer) setPhase(phase string) {
	ix.phase.Store(phase)
}

// New builds an Indexer. If log is nil, logrus.StandardLogger() is used.
func New(cfg Config, log *logrus.Logger) *Indexer {
	if cfg.CommitEvery <= 0 {
		cfg.CommitEvery = 10_000
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Indexer{cfg: cfg, log: log}
}

// Stop raises the quit flag, the same as receiving SIGINT (§5). Safe to call
// from another goroutine or a signal handler.
func (ix *Indexer) Stop() {
	ix.quit.Store(true)
}

// watchSignals installs SIGINT handling for the duration of ctx and returns
// a cancel func to stop watching.
func (ix *Indexer) watchSignals() (cancel func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	done := make(chan struct{})
	go func() {
		select {
		case <-ch:
			ix.log.Info("received interrupt signal")
			ix.Stop()
		case <-done:
		}
	}()
	return func() {
		close(done)
		signal.Stop(ch)
	}
}

// Run executes one full indexing pass: optional log ingestion, secondary
// index drop, per-height block fetch and classification, commit-every-N
// cadence, and secondary index rebuild.
func (ix *Indexer) Run(ctx context.Context) error {
	cancel := ix.watchSignals()
	defer cancel()

	ix.log.WithField("config", ix.cfg).Info("starting index run")
	ix.setPhase("parsing_log")

	logs := make(core.LogEntryMap)
	if ix.cfg.DefidLogPath != "" {
		ix.log.WithField("path", ix.cfg.DefidLogPath).Info("ingesting log file")
		var err error
		logs, err = logparse.ProcessLogFile(ix.cfg.DefidLogPath, ix.cfg.LogMatchers, ix.log)
		if err != nil {
			return fmt.Errorf("ingest log file: %w", err)
		}
	}

	driver := chainrpc.New(ix.cfg.CliPath, ix.cfg.RPCTimeout)
	st, err := store.Open(ctx, ix.cfg.SqlitePath, ix.cfg.PrevoutCacheSize)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	chainHeight, err := driver.GetBlockCount(ctx)
	if err != nil {
		return fmt.Errorf("get block count: %w", err)
	}
	endHeight := ix.cfg.EndHeight
	if chainHeight < endHeight {
		endHeight = chainHeight
	}
	ix.endHeight.Store(endHeight)

	ix.setPhase("indexing_blocks")
	if err := ix.dropIndexesInterruptible(ctx, st); err != nil && !errors.Is(err, errInterrupted) {
		return err
	}

	if err := st.BeginWriter(ctx); err != nil {
		return fmt.Errorf("begin writer: %w", err)
	}

	var runErr error
	for height := ix.cfg.StartHeight; height <= endHeight; height++ {
		if ix.quit.Load() {
			ix.log.Info("interrupted: early exit from index loop")
			break
		}

		txCount, err := ix.indexHeight(ctx, driver, st, logs, height)
		if err != nil {
			// Deferred-error pattern: the loop stops, but the batch already
			// written for prior heights still gets committed below before
			// this error is returned.
			runErr = err
			break
		}
		ix.height.Store(height)
		ix.txIndexed.Add(int64(txCount))

		if height%ix.cfg.CommitEvery == 0 {
			if err := st.CommitAndBeginWriter(ctx); err != nil {
				return fmt.Errorf("commit at height %d: %w", height, err)
			}
			ix.log.WithFields(logrus.Fields{"height": height, "end_height": endHeight}).Info("processed")
		}
	}

	ix.log.Info("flushing db")
	if err := st.CommitWriter(ctx); err != nil {
		return fmt.Errorf("final commit: %w", err)
	}

	ix.setPhase("rebuilding_indexes")
	if err := ix.rebuildIndexesInterruptible(ctx, st); err != nil && !errors.Is(err, errInterrupted) {
		return err
	}

	if runErr != nil {
		return runErr
	}
	ix.setPhase("done")
	ix.log.Info("done")
	return nil
}

func (ix *Indexer) indexHeight(ctx context.Context, driver *chainrpc.Driver, st *store.Store, logs core.LogEntryMap, height int64) (int, error) {
	hash, err := driver.GetBlockHash(ctx, height)
	if err != nil {
		return 0, fmt.Errorf("get block hash at %d: %w", height, err)
	}
	raw, err := driver.GetBlock(ctx, hash, 4)
	if err != nil {
		return 0, fmt.Errorf("get block %s: %w", hash, err)
	}

	var block core.Block
	if err := json.Unmarshal(raw, &block); err != nil {
		return 0, fmt.Errorf("decode block %s: %w", hash, err)
	}
	block.Height = height
	block.Hash = hash

	if err := st.InsertBlock(ctx, block); err != nil {
		return 0, fmt.Errorf("insert block %d: %w", height, err)
	}

	for _, tx := range block.Tx {
		row, edges, err := core.ClassifyTx(tx, height, st, logs, ix.log)
		if err != nil {
			return 0, fmt.Errorf("classify tx %s at height %d: %w", tx.TxID, height, err)
		}
		if err := st.InsertTx(ctx, row); err != nil {
			return 0, fmt.Errorf("insert tx %s: %w", tx.TxID, err)
		}
		if ix.cfg.EnableGraphTable {
			for _, e := range edges {
				if err := st.InsertAddrEdge(ctx, e); err != nil {
					return 0, fmt.Errorf("insert edge for tx %s: %w", tx.TxID, err)
				}
			}
		}
	}
	return len(block.Tx), nil
}

func (ix *Indexer) dropIndexesInterruptible(ctx context.Context, st *store.Store) error {
	if ix.quit.Load() {
		ix.log.Info("interrupted: skipping index drop")
		return errInterrupted
	}
	ix.log.Info("dropping secondary indexes")
	return st.DropSecondaryIndexes(ctx)
}

func (ix *Indexer) rebuildIndexesInterruptible(ctx context.Context, st *store.Store) error {
	if ix.quit.Load() {
		ix.log.Info("interrupted: skipping index rebuild")
		return errInterrupted
	}
	ix.log.Info("rebuilding secondary indexes")
	return st.RebuildSecondaryIndexes(ctx)
}

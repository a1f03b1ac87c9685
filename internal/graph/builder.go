package graph

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"dfiindexer/core"
	"dfiindexer/internal/store"
)

// errInterrupted mirrors the indexer's own sentinel: a graceful stop rather
// than a real failure.
var errInterrupted = errors.New("interrupted")

// BuildConfig parameterizes one graph construction pass.
type BuildConfig struct {
	DataPath string
	MetaPath string
}

// Builder constructs a Graph by streaming every indexed transaction's
// address-graph projection and wiring tx-in addresses to tx-out addresses.
type Builder struct {
	cfg  BuildConfig
	log  *logrus.Logger
	quit atomic.Bool
	sig  atomic.Bool

	txIter atomic.Int64
	nodes  atomic.Int64
	edges  atomic.Int64
}

// Snapshot is a point-in-time view of a Builder's progress, polled by the
// status surface's /stats endpoint (§10.4).
type Snapshot struct {
	TxIter int64 `json:"tx_iter"`
	Nodes  int64 `json:"nodes"`
	Edges  int64 `json:"edges"`
}

// Snapshot returns the Builder's current progress. Safe to call from any
// goroutine while Build is in flight.
func (b *Builder) Snapshot() Snapshot {
	return Snapshot{TxIter: b.txIter.Load(), Nodes: b.nodes.Load(), Edges: b.edges.Load()}
}

// NewBuilder returns a Builder. If log is nil, logrus.StandardLogger() is
// used.
func NewBuilder(cfg BuildConfig, log *logrus.Logger) *Builder {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Builder{cfg: cfg, log: log}
}

// Stop raises the quit flag (SIGINT equivalent); the in-progress build
// returns its partial graph without writing it to disk.
func (b *Builder) Stop() { b.quit.Store(true) }

// Checkpoint raises the dump-and-continue flag (SIGUSR1 equivalent on
// platforms that support it, see sigusr1_unix.go); the build dumps its
// current graph to disk without stopping.
func (b *Builder) Checkpoint() { b.sig.Store(true) }

// watchSignals installs SIGINT handling for the duration of the build.
// SIGUSR1 checkpoint handling, where supported, is installed separately by
// watchCheckpointSignal (sigusr1_unix.go / sigusr1_other.go).
func (b *Builder) watchSignals() (cancel func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	done := make(chan struct{})
	go func() {
		select {
		case <-ch:
			b.log.Info("received interrupt signal")
			b.Stop()
		case <-done:
		}
	}()
	cancelCheckpoint := b.watchCheckpointSignal()
	return func() {
		close(done)
		signal.Stop(ch)
		cancelCheckpoint()
	}
}

// Build streams every transaction from st, in ascending (height, txid)
// order - a deliberate deviation from the indexer's own insert order, chosen
// so a graph build is reproducible regardless of what order transactions
// happened to be upserted in - and wires tx-in addresses to tx-out
// addresses, including DVM participants and multi-sig composite-address
// members.
func (b *Builder) Build(ctx context.Context, st *store.Store) (*Graph, error) {
	cancel := b.watchSignals()
	defer cancel()

	g := New()
	var txIter int64

	err := st.IterTxsPartial(ctx, "ORDER BY height, txid", func(row core.IndexedTxRow) error {
		if b.quit.Load() {
			b.log.Info("interrupted: early exit")
			return errInterrupted
		}

		txIter++

		txIns := combineAddrsWithMultiSig(keysOf(row.TxIn), row.DvmIn)
		txOuts := combineAddrsWithMultiSig(keysOf(row.TxOut), row.DvmOut)

		for out := range txOuts {
			for in := range txIns {
				g.AddEdge(in, out, row.TxID)
			}
		}

		b.txIter.Store(txIter)
		b.nodes.Store(int64(g.NodeCount()))
		b.edges.Store(int64(g.EdgeCount()))

		if txIter%100000 == 0 {
			b.log.WithFields(logrus.Fields{
				"txiter": txIter, "nodes": g.NodeCount(), "edges": g.EdgeCount(),
			}).Info("progress")
		}

		if b.sig.CompareAndSwap(true, false) {
			b.log.Info("checkpoint signal received: dumping graph")
			if err := b.dump(g, txIter); err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil && !errors.Is(err, errInterrupted) {
		return nil, err
	}
	if err != nil {
		// Interrupted: the partial graph is returned but not written to disk.
		b.log.Info(err.Error())
		return g, nil
	}

	if err := b.dump(g, txIter); err != nil {
		return nil, err
	}

	b.log.WithField("scanned_txs", txIter).Info("summary")
	return g, nil
}

func (b *Builder) dump(g *Graph, txIter int64) error {
	b.log.WithFields(logrus.Fields{
		"txiter": txIter, "nodes": g.NodeCount(), "edges": g.EdgeCount(),
	}).Info("writing graph checkpoint")
	return Dump(g, b.cfg.MetaPath, b.cfg.DataPath)
}

func keysOf(m map[string]float64) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// combineAddrsWithMultiSig splits every "+"-joined composite address in
// addrs into its individual members, adds dvmAddrs verbatim, and
// deduplicates the result (§4.7).
func combineAddrsWithMultiSig(addrs, dvmAddrs []string) map[string]struct{} {
	set := make(map[string]struct{}, len(addrs)+len(dvmAddrs))
	for _, addr := range addrs {
		if strings.Contains(addr, "+") {
			for _, part := range strings.Split(addr, "+") {
				set[part] = struct{}{}
			}
		} else {
			set[addr] = struct{}{}
		}
	}
	for _, addr := range dvmAddrs {
		set[addr] = struct{}{}
	}
	return set
}

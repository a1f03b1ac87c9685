package graph

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"dfiindexer/core"
	"dfiindexer/internal/store"
)

func TestBuilderBuildWiresInputsToOutputs(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	st, err := store.Open(ctx, filepath.Join(dir, "index.sqlite"), 16)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	if err := st.BeginWriter(ctx); err != nil {
		t.Fatalf("begin writer: %v", err)
	}
	rows := []core.IndexedTxRow{
		{TxID: "tx1", Height: 1, TxType: core.Utxo, TxIn: map[string]float64{"alice": 1}, TxOut: map[string]float64{"bob": 1}},
		{TxID: "tx2", Height: 2, TxType: core.AccountToAccount, TxIn: map[string]float64{"bob": 1}, TxOut: map[string]float64{"carol": 1}, DvmIn: []string{"bob"}, DvmOut: []string{"bob", "carol"}},
	}
	for _, r := range rows {
		if err := st.InsertTx(ctx, r); err != nil {
			t.Fatalf("insert tx: %v", err)
		}
	}
	if err := st.CommitWriter(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	b := NewBuilder(BuildConfig{
		MetaPath: filepath.Join(dir, "graph.meta.bin"),
		DataPath: filepath.Join(dir, "graph.bin"),
	}, log)

	g, err := b.Build(ctx, st)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if g.NodeCount() != 3 {
		t.Fatalf("expected 3 nodes (alice, bob, carol), got %d: %v", g.NodeCount(), g.Addrs)
	}
	if g.EdgeCount() != 3 {
		t.Fatalf("expected 3 edges (alice->bob, bob->bob, bob->carol), got %d", g.EdgeCount())
	}
}

func TestBuilderStopHaltsEarly(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	st, err := store.Open(ctx, filepath.Join(dir, "index.sqlite"), 16)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	b := NewBuilder(BuildConfig{
		MetaPath: filepath.Join(dir, "graph.meta.bin"),
		DataPath: filepath.Join(dir, "graph.bin"),
	}, log)
	b.Stop()

	g, err := b.Build(ctx, st)
	if err != nil {
		t.Fatalf("expected a pre-stopped build to finish cleanly, got %v", err)
	}
	if g.NodeCount() != 0 {
		t.Fatalf("expected an empty graph, got %d nodes", g.NodeCount())
	}
}

package indexer

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"dfiindexer/internal/logparse"
	"dfiindexer/internal/store"
)

// writeFakeCli writes a tiny shell script standing in for defi-cli, serving
// a single fixed block at height 0 with one coinbase transaction.
func writeFakeCli(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake cli script requires a POSIX shell")
	}

	script := `#!/bin/sh
case "$1" in
  getblockcount) echo "0" ;;
  getblockhash) echo "hash0" ;;
  getblock)
    cat <<'EOF'
{
  "height": 0,
  "hash": "hash0",
  "tx": [
    {
      "txid": "coinbase-tx",
      "vin": [{"coinbase": "01", "vout": 0}],
      "vout": [{"n": 0, "value": 50, "scriptPubKey": {"addresses": ["miner"]}}]
    }
  ]
}
EOF
    ;;
  *) echo "unknown command: $1" >&2; exit 1 ;;
esac
`
	path := filepath.Join(t.TempDir(), "fake-defi-cli.sh")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write fake cli: %v", err)
	}
	return path
}

func TestIndexerRunEndToEnd(t *testing.T) {
	cliPath := writeFakeCli(t)
	sqlitePath := filepath.Join(t.TempDir(), "index.sqlite")

	cfg := Config{
		CliPath:          cliPath,
		SqlitePath:       sqlitePath,
		StartHeight:      0,
		EndHeight:        0,
		EnableGraphTable: true,
		CommitEvery:      10_000,
		PrevoutCacheSize: 16,
		RPCTimeout:       5 * time.Second,
		LogMatchers:      logparse.Matchers{Icx: "ICX:", IcxCalc: "ICXCalc:", Swap: "SwapResult:"},
	}

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	ix := New(cfg, log)

	if err := ix.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	st, err := store.Open(context.Background(), sqlitePath, 16)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer st.Close()

	hash, ok, err := st.GetBlockHash(context.Background(), 0)
	if err != nil || !ok || hash != "hash0" {
		t.Fatalf("expected block 0 indexed with hash0, got %q ok=%v err=%v", hash, ok, err)
	}

	tx, ok, err := st.GetTxFromHash(context.Background(), "coinbase-tx")
	if err != nil || !ok {
		t.Fatalf("expected coinbase-tx indexed, err=%v ok=%v", err, ok)
	}
	if tx.TxID != "coinbase-tx" {
		t.Fatalf("unexpected tx: %+v", tx)
	}
}

func TestIndexerStopHaltsRun(t *testing.T) {
	cliPath := writeFakeCli(t)
	sqlitePath := filepath.Join(t.TempDir(), "index.sqlite")

	cfg := Config{
		CliPath:          cliPath,
		SqlitePath:       sqlitePath,
		StartHeight:      0,
		EndHeight:        0,
		CommitEvery:      10_000,
		PrevoutCacheSize: 16,
		RPCTimeout:       5 * time.Second,
	}
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	ix := New(cfg, log)
	ix.Stop()

	if err := ix.Run(context.Background()); err != nil {
		t.Fatalf("expected a pre-stopped run to finish cleanly, got %v", err)
	}
}

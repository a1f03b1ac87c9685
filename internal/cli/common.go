// Package cli assembles every subcommand this binary exposes (§10.3):
// cindex, sindex, dotreduce, icx1, icx2, icxseq, gbuild, gwalk, gdot, gpath,
// spath, logparsecheck. It follows this repository's own `cmd/cli` idiom:
// one file per subcommand, a package-level exported `*cobra.Command`, and a
// `RegisterXxx(root)` function wiring it into the root command assembled in
// `cmd/indexer/main.go`.
package cli

import (
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"dfiindexer/pkg/config"
)

var (
	cfgOnce sync.Once
	cfg     *config.Config
	cfgErr  error
	log     = logrus.New()
)

// verbosity is bound to the root command's repeatable -v flag and clamped
// to a minimum of INFO, matching the original's verbosity_to_level(n, min).
var verbosity int

// statusAddr is bound to the root command's --status-addr flag.
var statusAddr string

// loadConfig lazily resolves the shared Config exactly once per process,
// mirroring this repository's sync.Once-guarded CLI middleware pattern.
func loadConfig() (*config.Config, error) {
	cfgOnce.Do(func() {
		cfg, cfgErr = config.LoadFromEnv()
	})
	return cfg, cfgErr
}

// verbosityToLevel maps a repeat count of -v to a logrus level, clamped to
// a floor of InfoLevel: counts 0-4 name Error, Warn, Info, Debug, Trace, so
// 0, 1 or 2 -> Info, 3 -> Debug, 4+ -> Trace.
func verbosityToLevel(n int) logrus.Level {
	switch {
	case n >= 4:
		return logrus.TraceLevel
	case n == 3:
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}

// applyVerbosity sets log's level from the root -v flag. Called from each
// subcommand's PersistentPreRunE/RunE since cobra does not guarantee
// persistent flag values are parsed before a plain RunE on older cobra
// versions when commands are invoked directly in tests.
func applyVerbosity() {
	log.SetLevel(verbosityToLevel(verbosity))
}

// bindRootFlags installs the global flags shared by every subcommand.
func bindRootFlags(root *cobra.Command) {
	root.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (repeatable)")
	root.PersistentFlags().StringVar(&statusAddr, "status-addr", "", "optional host:port to serve /healthz, /stats and /metrics")
}

// Register wires every subcommand into root and installs the shared global
// flags. This is the only exported entry point cmd/indexer/main.go needs.
func Register(root *cobra.Command) {
	bindRootFlags(root)
	RegisterCindex(root)
	RegisterSindex(root)
	RegisterDotreduce(root)
	RegisterIcx1(root)
	RegisterIcx2(root)
	RegisterIcxseq(root)
	RegisterGbuild(root)
	RegisterGwalk(root)
	RegisterGdot(root)
	RegisterGpath(root)
	RegisterSpath(root)
	RegisterLogparsecheck(root)
}

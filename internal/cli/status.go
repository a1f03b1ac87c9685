package cli

import (
	"context"
	"time"

	"dfiindexer/internal/statusserver"
)

// maybeStartStatus starts the optional status surface when --status-addr
// was set, returning nil otherwise. Callers defer stopStatus(srv) unconditionally.
func maybeStartStatus(stats statusserver.StatsFunc) *statusserver.Server {
	if statusAddr == "" {
		return nil
	}
	srv := statusserver.New(statusAddr, stats, log)
	srv.Start()
	return srv
}

// stopStatus gracefully shuts srv down if it was started; a nil srv is a
// no-op, so callers can defer this unconditionally.
func stopStatus(srv *statusserver.Server) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}

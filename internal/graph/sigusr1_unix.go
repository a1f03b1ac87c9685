//go:build unix

package graph

import (
	"os"
	"os/signal"
	"syscall"
)

// watchCheckpointSignal wires SIGUSR1 to Checkpoint on platforms that have
// it. Unix only - SIGUSR1 has no portable equivalent elsewhere (§5).
func (b *Builder) watchCheckpointSignal() (cancel func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGUSR1)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ch:
				b.log.Info("received checkpoint signal")
				b.Checkpoint()
			case <-done:
				return
			}
		}
	}()
	return func() {
		close(done)
		signal.Stop(ch)
	}
}

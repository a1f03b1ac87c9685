//go:build !unix

package graph

// watchCheckpointSignal is a no-op on non-Unix platforms: there is no
// portable equivalent of SIGUSR1, so mid-build checkpointing is only
// available via Builder.Checkpoint called directly (§5).
func (b *Builder) watchCheckpointSignal() (cancel func()) {
	return func() {}
}

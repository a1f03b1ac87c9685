// Package chainrpc drives the chain node's CLI binary as a subprocess and
// decodes its output, implementing C1.
package chainrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Driver runs a chain node's command-line client as a subprocess. It holds
// no connection state; every call spawns a fresh process.
type Driver struct {
	CliPath string
	Timeout time.Duration
}

// New returns a Driver invoking cliPath, with calls bounded by timeout.
func New(cliPath string, timeout time.Duration) *Driver {
	return &Driver{CliPath: cliPath, Timeout: timeout}
}

// Output wraps one subprocess invocation's captured stdout.
type Output struct {
	stdout []byte
}

// String returns stdout decoded as UTF-8 text.
func (o Output) String() string {
	return string(o.stdout)
}

// JSON decodes stdout as a single JSON value into v.
func (o Output) JSON(v any) error {
	return json.Unmarshal(o.stdout, v)
}

// Run executes the driver's CLI binary with args and returns its stdout. A
// non-zero exit status is reported as an error carrying stderr.
func (d *Driver) Run(ctx context.Context, args ...string) (Output, error) {
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, d.CliPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return Output{}, fmt.Errorf("%s %v: %w", d.CliPath, args, ctx.Err())
		}
		return Output{}, fmt.Errorf("%s %v: %s", d.CliPath, args, strings.TrimSpace(stderr.String()))
	}
	return Output{stdout: stdout.Bytes()}, nil
}

// GetBlockCount returns the current chain tip height.
func (d *Driver) GetBlockCount(ctx context.Context) (int64, error) {
	out, err := d.Run(ctx, "getblockcount")
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(strings.TrimSpace(out.String()), 10, 64)
}

// GetBlockHash returns the hash of the block at height.
func (d *Driver) GetBlockHash(ctx context.Context, height int64) (string, error) {
	out, err := d.Run(ctx, "getblockhash", strconv.FormatInt(height, 10))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out.String()), nil
}

// GetBlock fetches the block with the given hash at the given verbosity
// level (node-defined; the indexer requests verbosity 4, which includes
// full decoded transactions).
func (d *Driver) GetBlock(ctx context.Context, hash string, verbosity int) (json.RawMessage, error) {
	out, err := d.Run(ctx, "getblock", hash, strconv.Itoa(verbosity))
	if err != nil {
		return nil, err
	}
	return json.RawMessage(out.stdout), nil
}

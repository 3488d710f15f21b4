// Package speech turns text into audible output by invoking the piper
// binary as a subprocess and playing the resulting WAV file through the
// platform audio player.
package speech

import (
	"context"
	"io"
	"os/exec"
)

// Runner executes one external command to completion, returning its combined
// stdout/stderr output. The indirection exists so the synthesizer and the
// interactive loop can be tested without piper or audio hardware; tests
// substitute a recording fake.
type Runner interface {
	Run(ctx context.Context, stdin io.Reader, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec. It is the only Runner used outside
// of tests.
type ExecRunner struct{}

// Run blocks until the command exits. The returned output combines stdout and
// stderr so failures carry the subprocess diagnostics.
func (ExecRunner) Run(ctx context.Context, stdin io.Reader, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin

	return cmd.CombinedOutput()
}

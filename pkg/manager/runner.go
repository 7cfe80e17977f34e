package manager

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"

	"github.com/arthur-debert/pkgsync/pkg/logging"
	"github.com/arthur-debert/pkgsync/pkg/types"
)

// RunResult is the outcome of one external command invocation.
type RunResult struct {
	// ExitCode is the child's exit code, or a sentinel from pkg/types
	// when the child never ran to completion.
	ExitCode int

	// Output is the combined stdout+stderr of the child.
	Output string

	// TimedOut is set when the context deadline killed the child.
	TimedOut bool

	// Err is set only when the child could not be launched or the
	// context ended it. Non-zero exits are not errors here.
	Err error
}

// Runner runs one external command to completion within the context's
// bounds. The command is always given as an argv slice, never as a
// concatenated shell string.
type Runner interface {
	Run(ctx context.Context, name string, args []string) RunResult
}

type execRunner struct{}

// NewRunner returns the os/exec backed Runner.
func NewRunner() Runner {
	return &execRunner{}
}

func (r *execRunner) Run(ctx context.Context, name string, args []string) RunResult {
	logging.LogCommand(name, args)

	cmd := exec.CommandContext(ctx, name, args...)

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	// If the kill signal is ignored or the pipes are held open,
	// Wait must still return.
	cmd.WaitDelay = 5 * time.Second

	err := cmd.Run()

	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return RunResult{
			ExitCode: types.ExitTimeout,
			Output:   output.String(),
			TimedOut: true,
			Err:      ctx.Err(),
		}
	case ctx.Err() != nil:
		// Cancelled (e.g. user interrupt): the child has been killed.
		return RunResult{
			ExitCode: types.ExitLaunchFailed,
			Output:   output.String(),
			Err:      ctx.Err(),
		}
	case err == nil:
		return RunResult{ExitCode: 0, Output: output.String()}
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return RunResult{ExitCode: exitErr.ExitCode(), Output: output.String()}
		}
		return RunResult{
			ExitCode: types.ExitLaunchFailed,
			Output:   output.String(),
			Err:      err,
		}
	}
}

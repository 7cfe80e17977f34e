// Package executor applies a plan, one entry at a time. It is the only
// component with real-world side effects: it terminates conflicting
// processes and invokes the package manager. Execution is strictly
// sequential: concurrent installer invocations contend on the package
// manager's backing store and can corrupt it.
package executor

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/pkgsync/pkg/conflict"
	"github.com/arthur-debert/pkgsync/pkg/logging"
	"github.com/arthur-debert/pkgsync/pkg/manager"
	"github.com/arthur-debert/pkgsync/pkg/types"
)

// Options contains configuration for the executor
type Options struct {
	Manager  manager.Manager
	Resolver *conflict.Resolver

	// Timeout bounds each mutating operation.
	Timeout time.Duration

	// TailLines is how many trailing output lines are kept on failure.
	TailLines int

	DryRun bool
	Logger zerolog.Logger
}

// Executor applies plan entries and records their outcomes.
type Executor struct {
	manager   manager.Manager
	resolver  *conflict.Resolver
	timeout   time.Duration
	tailLines int
	dryRun    bool
	logger    zerolog.Logger
}

// New creates a new executor instance
func New(opts Options) *Executor {
	logger := opts.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = logging.GetLogger("executor")
	}

	return &Executor{
		manager:   opts.Manager,
		resolver:  opts.Resolver,
		timeout:   opts.Timeout,
		tailLines: opts.TailLines,
		dryRun:    opts.DryRun,
		logger:    logger,
	}
}

// Execute applies every plan entry in order and returns one outcome per
// entry. A failing entry never stops the batch; only cancellation of
// ctx (user interrupt) ends the run early, after killing any in-flight
// child process.
func (e *Executor) Execute(ctx context.Context, plan types.Plan) []types.Outcome {
	outcomes := make([]types.Outcome, 0, len(plan))

	for _, entry := range plan {
		if ctx.Err() != nil {
			e.logger.Warn().
				Int("remaining", len(plan)-len(outcomes)).
				Msg("Run cancelled, skipping remaining entries")
			break
		}

		outcome := e.executeEntry(ctx, entry)
		outcomes = append(outcomes, outcome)
	}

	return outcomes
}

// executeEntry applies a single plan entry and returns its outcome
func (e *Executor) executeEntry(ctx context.Context, entry types.PlanEntry) types.Outcome {
	start := time.Now()

	e.logger.Debug().
		Str("package", entry.Spec.ID).
		Str("action", string(entry.Action)).
		Bool("dry_run", e.dryRun).
		Msg("Executing plan entry")

	if !entry.Action.Mutating() {
		return types.Outcome{
			Entry:    entry,
			Result:   types.ResultSkipped,
			Duration: time.Since(start),
		}
	}

	if e.dryRun {
		return types.Outcome{
			Entry:    entry,
			Result:   types.ResultDryRun,
			Duration: time.Since(start),
		}
	}

	// Clear any conflicting process before the installer needs its
	// file handles. Best-effort: failures are logged, never fatal.
	if e.resolver != nil {
		e.resolver.Resolve(ctx, entry.Spec)
	}

	override := SplitOverrideArgs(entry.Spec.Args)

	opCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var r manager.RunResult
	switch entry.Action {
	case types.ActionInstall:
		r = e.manager.Install(opCtx, entry.Spec.ID, override)
	case types.ActionUpgrade:
		r = e.manager.Upgrade(opCtx, entry.Spec.ID, override)
	}

	outcome := e.classify(entry, r)
	outcome.Duration = time.Since(start)

	event := e.logger.Info()
	if !outcome.OK() {
		event = e.logger.Error()
	}
	event.
		Str("package", entry.Spec.ID).
		Str("action", string(entry.Action)).
		Str("result", string(outcome.Result)).
		Int("exit_code", outcome.ExitCode).
		Dur("duration", outcome.Duration).
		Msg("Plan entry finished")

	return outcome
}

// classify maps a run result onto the outcome taxonomy. The timeout
// and launch-failure sentinels never collide with real manager exit
// codes.
func (e *Executor) classify(entry types.PlanEntry, r manager.RunResult) types.Outcome {
	switch {
	case r.TimedOut:
		return types.Outcome{
			Entry:      entry,
			Result:     types.ResultTimeout,
			ExitCode:   types.ExitTimeout,
			OutputTail: tail(r.Output, e.tailLines),
		}
	case r.Err != nil:
		return types.Outcome{
			Entry:      entry,
			Result:     types.ResultLaunchFailed,
			ExitCode:   types.ExitLaunchFailed,
			OutputTail: tail(r.Output, e.tailLines),
		}
	case r.ExitCode == 0:
		return types.Outcome{
			Entry:    entry,
			Result:   types.ResultSuccess,
			ExitCode: 0,
		}
	default:
		return types.Outcome{
			Entry:      entry,
			Result:     types.ResultFailed,
			ExitCode:   r.ExitCode,
			OutputTail: tail(r.Output, e.tailLines),
		}
	}
}

// tail returns the last n non-empty-trimmed lines of output.
func tail(output string, n int) []string {
	if n <= 0 || output == "" {
		return nil
	}

	lines := strings.Split(strings.ReplaceAll(output, "\r\n", "\n"), "\n")

	// Drop trailing blank lines so the tail carries information.
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}

	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	if len(lines) == 0 {
		return nil
	}
	return lines
}

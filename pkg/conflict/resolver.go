// Package conflict terminates processes that would hold file locks
// during an install or upgrade. The process name comes from the package
// spec when configured; otherwise a best-effort guess is derived from
// the package id. Termination is best-effort and never blocks the
// mutating operation.
package conflict

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/pkgsync/pkg/logging"
	"github.com/arthur-debert/pkgsync/pkg/types"
)

// ProcessController is the OS surface the resolver needs. Both
// operations are idempotent: acting on an already-stopped process is
// not an error.
type ProcessController interface {
	IsRunning(ctx context.Context, name string) bool
	Terminate(ctx context.Context, name string) error
}

// Resolver clears conflicting processes ahead of mutating operations.
type Resolver struct {
	proc   ProcessController
	grace  time.Duration
	logger zerolog.Logger
}

// NewResolver builds a resolver. grace is how long to wait after a
// successful termination so file handles are released before the
// installer touches them.
func NewResolver(proc ProcessController, grace time.Duration) *Resolver {
	return &Resolver{
		proc:   proc,
		grace:  grace,
		logger: logging.GetLogger("conflict"),
	}
}

// Resolve terminates the process associated with spec, if any is
// running. Every failure mode is a warning: the mutating operation
// proceeds regardless and succeeds or fails on its own.
func (r *Resolver) Resolve(ctx context.Context, spec types.PackageSpec) {
	name := TargetProcess(spec)
	if name == "" {
		return
	}

	if !r.proc.IsRunning(ctx, name) {
		r.logger.Debug().
			Str("package", spec.ID).
			Str("process", name).
			Msg("No conflicting process running")
		return
	}

	r.logger.Warn().
		Str("package", spec.ID).
		Str("process", name).
		Msg("Terminating conflicting process")

	if err := r.proc.Terminate(ctx, name); err != nil {
		r.logger.Warn().
			Err(err).
			Str("process", name).
			Msg("Failed to terminate conflicting process, proceeding anyway")
		return
	}

	// Give the OS time to release file handles.
	select {
	case <-time.After(r.grace):
	case <-ctx.Done():
	}
}

// TargetProcess returns the process name to clear for spec: the
// configured name when present, else the segment of the id after the
// last dot (Vendor.AppName guesses AppName). The guess is unreliable
// and explicit configuration always wins.
func TargetProcess(spec types.PackageSpec) string {
	if spec.HasProcess() {
		return spec.Process
	}
	if i := strings.LastIndex(spec.ID, "."); i >= 0 {
		return spec.ID[i+1:]
	}
	return spec.ID
}

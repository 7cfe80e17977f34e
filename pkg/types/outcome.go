package types

import "time"

// Result classifies what happened when one plan entry was applied.
type Result string

const (
	ResultSuccess      Result = "success"
	ResultFailed       Result = "failed"
	ResultTimeout      Result = "timeout"
	ResultLaunchFailed Result = "launch-failed"
	ResultSkipped      Result = "skipped"
	ResultDryRun       Result = "dry-run"
)

// Sentinel exit codes for outcomes that never ran to completion.
// Package managers return non-negative codes (Windows HRESULTs surface
// as large positive values), so negatives never collide.
const (
	ExitTimeout      = -1
	ExitLaunchFailed = -2
)

// Outcome is the result of applying one plan entry.
type Outcome struct {
	Entry    PlanEntry
	Result   Result
	ExitCode int

	// OutputTail holds the last lines of combined child output,
	// retained only on failure for diagnostics.
	OutputTail []string

	Duration time.Duration
}

// OK reports whether the outcome requires no operator attention.
func (o Outcome) OK() bool {
	switch o.Result {
	case ResultSuccess, ResultSkipped, ResultDryRun:
		return true
	}
	return false
}

// Package types defines the core types shared across pkgsync.
// This includes the PackageSpec configuration record, the Plan produced
// by the planner, and the Outcome records produced by the executor.
package types

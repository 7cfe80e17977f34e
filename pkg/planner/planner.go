// Package planner classifies each configured package against the
// system snapshot. Build is a pure function: identical inputs always
// produce the identical ordered plan, which keeps it trivially
// testable with synthetic snapshots.
package planner

import (
	"github.com/arthur-debert/pkgsync/pkg/logging"
	"github.com/arthur-debert/pkgsync/pkg/snapshot"
	"github.com/arthur-debert/pkgsync/pkg/types"
)

// Build produces one plan entry per spec, preserving input order.
//
// Classification: not installed means Install; installed and
// upgradable means Upgrade; installed only means Skip. Nothing but the
// package id and the snapshot is consulted.
func Build(specs []types.PackageSpec, snap snapshot.Snapshot) types.Plan {
	logger := logging.GetLogger("planner")

	plan := make(types.Plan, 0, len(specs))
	for _, spec := range specs {
		entry := types.PlanEntry{Spec: spec, Action: classify(spec, snap)}
		plan = append(plan, entry)

		logger.Debug().
			Str("package", spec.ID).
			Str("action", string(entry.Action)).
			Msg("Classified package")
	}

	logger.Info().
		Int("total", len(plan)).
		Int("mutating", plan.MutatingCount()).
		Msg("Plan built")

	return plan
}

func classify(spec types.PackageSpec, snap snapshot.Snapshot) types.Action {
	if !snap.Installed(spec.ID) {
		return types.ActionInstall
	}
	if snap.Upgradable(spec.ID) {
		return types.ActionUpgrade
	}
	return types.ActionSkip
}

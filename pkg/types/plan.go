package types

// Action is the classification the planner assigns to a package.
type Action string

const (
	ActionInstall Action = "install"
	ActionUpgrade Action = "upgrade"
	ActionSkip    Action = "skip"
)

// Mutating reports whether the action changes machine state.
func (a Action) Mutating() bool {
	return a == ActionInstall || a == ActionUpgrade
}

// PlanEntry pairs a configured package with its classified action.
type PlanEntry struct {
	Spec   PackageSpec
	Action Action
}

// Plan is the ordered list of classified actions for one run.
// Order matches the package list exactly.
type Plan []PlanEntry

// MutatingCount returns the number of entries that will invoke the
// package manager.
func (p Plan) MutatingCount() int {
	n := 0
	for _, e := range p {
		if e.Action.Mutating() {
			n++
		}
	}
	return n
}

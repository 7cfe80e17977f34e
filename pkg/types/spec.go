package types

// PackageSpec is one configured package from the package list.
// It is constructed during parsing and immutable afterwards.
type PackageSpec struct {
	// ID is the package manager identifier (e.g. "Mozilla.Firefox").
	// Always non-empty and trimmed.
	ID string

	// Process is the name of a running process to terminate before
	// mutating operations. Empty means unset.
	Process string

	// Args holds raw override installer arguments, passed in place of
	// the default silent flags. Empty means unset.
	Args string
}

// HasProcess reports whether an explicit conflicting process name is set.
func (s PackageSpec) HasProcess() bool {
	return s.Process != ""
}

// HasArgs reports whether override installer arguments are set.
func (s PackageSpec) HasArgs() bool {
	return s.Args != ""
}

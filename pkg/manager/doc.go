// Package manager wraps the backing package manager as four operations:
// list installed, list upgradable, install, upgrade. All four surface
// non-zero exit codes instead of throwing; callers decide success from
// the code. The default implementation drives winget, but everything is
// behind the Manager interface so tests and other backends substitute
// freely.
package manager

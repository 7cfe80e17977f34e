// Package config loads the two configuration surfaces of pkgsync: the
// line-oriented package list that declares which packages the machine
// should have, and the TOML settings file that tunes how the tool runs
// (timeouts, manager command, output format).
package config

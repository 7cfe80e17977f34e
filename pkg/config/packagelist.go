package config

import (
	"os"
	"strings"

	"github.com/arthur-debert/pkgsync/pkg/errors"
	"github.com/arthur-debert/pkgsync/pkg/logging"
	"github.com/arthur-debert/pkgsync/pkg/types"
)

// ParsePackageList reads the package list at path and returns one
// PackageSpec per valid line, in file order.
//
// Line grammar:
//
//	id
//	id=ProcessName
//	id=ProcessName|--custom --install --args
//
// Lines starting with "#" and blank lines are ignored. Malformed lines
// (empty id) are skipped with a warning; only a missing file is fatal.
func ParsePackageList(path string) ([]types.PackageSpec, error) {
	logger := logging.GetLogger("config")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrPackageListNotFound,
			"cannot read package list %s", path).WithDetail("path", path)
	}

	var specs []types.PackageSpec
	for i, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		spec, ok := parseLine(line)
		if !ok {
			logger.Warn().
				Int("line", i+1).
				Str("content", line).
				Msg("Skipping malformed package list line")
			continue
		}

		specs = append(specs, spec)
	}

	logger.Debug().
		Str("path", path).
		Int("packages", len(specs)).
		Msg("Parsed package list")

	return specs, nil
}

// parseLine parses one non-blank, non-comment line. The second return
// is false when the line has no usable package id.
func parseLine(line string) (types.PackageSpec, bool) {
	id := line
	rhs := ""
	if eq := strings.Index(line, "="); eq >= 0 {
		id = line[:eq]
		rhs = line[eq+1:]
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return types.PackageSpec{}, false
	}

	spec := types.PackageSpec{ID: id}
	if rhs == "" {
		return spec, true
	}

	process := rhs
	if pipe := strings.Index(rhs, "|"); pipe >= 0 {
		process = rhs[:pipe]
		// Empty-after-trim arguments normalize to unset.
		spec.Args = strings.TrimSpace(rhs[pipe+1:])
	}
	spec.Process = strings.TrimSpace(process)

	return spec, true
}

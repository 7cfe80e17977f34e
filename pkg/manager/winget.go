package manager

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/pkgsync/pkg/config"
	"github.com/arthur-debert/pkgsync/pkg/errors"
	"github.com/arthur-debert/pkgsync/pkg/logging"
)

// Winget drives the Windows Package Manager CLI. Flag spellings follow
// winget; the command name itself comes from settings so tests can
// substitute a stub binary.
type Winget struct {
	runner      Runner
	command     string
	silentArgs  []string
	upgradeArgs []string
	logger      zerolog.Logger
}

// NewWinget builds a winget-backed Manager from the manager settings.
func NewWinget(runner Runner, settings config.ManagerSettings) *Winget {
	return &Winget{
		runner:      runner,
		command:     settings.Command,
		silentArgs:  settings.SilentArgs,
		upgradeArgs: settings.UpgradeArgs,
		logger:      logging.GetLogger("manager"),
	}
}

// agreementArgs are always passed so winget never blocks on a prompt.
var agreementArgs = []string{
	"--accept-source-agreements",
	"--disable-interactivity",
}

// ListInstalled returns the raw text of `winget list`. A non-zero exit
// is an error; callers degrade to an empty result set.
func (w *Winget) ListInstalled(ctx context.Context) (string, error) {
	args := append([]string{"list"}, agreementArgs...)
	return w.bulkQuery(ctx, "list-installed", args)
}

// ListUpgradable returns the raw text of `winget upgrade`. winget exits
// non-zero when nothing is upgradable, so callers must treat errors as
// an empty result set, not as fatal.
func (w *Winget) ListUpgradable(ctx context.Context) (string, error) {
	args := append([]string{"upgrade", "--include-unknown"}, agreementArgs...)
	return w.bulkQuery(ctx, "list-upgradable", args)
}

func (w *Winget) bulkQuery(ctx context.Context, name string, args []string) (string, error) {
	r := w.runner.Run(ctx, w.command, args)
	if r.Err != nil {
		return "", errors.Wrapf(r.Err, errors.ErrSnapshotQuery, "%s query failed to run", name)
	}
	if r.ExitCode != 0 {
		return "", errors.Newf(errors.ErrSnapshotQuery, "%s query exited with code %d", name, r.ExitCode).
			WithDetail("exit_code", r.ExitCode)
	}
	return r.Output, nil
}

// Install installs one package by exact id.
func (w *Winget) Install(ctx context.Context, id string, override []string) RunResult {
	args := []string{"install", "--exact", "--id", id, "--accept-package-agreements"}
	args = append(args, agreementArgs...)
	args = w.appendInstallerArgs(args, override)
	return w.runner.Run(ctx, w.command, args)
}

// Upgrade upgrades one package by exact id. The configured upgrade
// flags (include-unknown, force) are always passed: some upgradable
// entries are only actionable with relaxed version comparison.
func (w *Winget) Upgrade(ctx context.Context, id string, override []string) RunResult {
	args := []string{"upgrade", "--exact", "--id", id, "--accept-package-agreements"}
	args = append(args, agreementArgs...)
	args = append(args, w.upgradeArgs...)
	args = w.appendInstallerArgs(args, override)
	return w.runner.Run(ctx, w.command, args)
}

// appendInstallerArgs applies the override-or-silent rule: override
// arguments replace the default silent flags entirely, so an override
// is itself responsible for keeping the installer quiet.
func (w *Winget) appendInstallerArgs(args, override []string) []string {
	if len(override) > 0 {
		w.logger.Debug().Strs("override", override).Msg("Using override installer arguments")
		return append(args, override...)
	}
	return append(args, w.silentArgs...)
}

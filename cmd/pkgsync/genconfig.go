package pkgsync

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/pkgsync/pkg/config"
	"github.com/arthur-debert/pkgsync/pkg/errors"
)

func newGenConfigCmd() *cobra.Command {
	var write bool
	var effective bool
	var settingsPath string

	cmd := &cobra.Command{
		Use:   "genconfig",
		Short: "Print the default settings file",
		Long: `Prints the annotated default settings to stdout. With --effective, the
fully layered settings (defaults, settings file, environment) are
serialized instead, which is useful for checking what a run would
actually use. With --write, the output goes to the default settings
location instead of stdout.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			content := config.DefaultSettingsContent()

			if effective {
				settings, err := config.LoadSettings(settingsPath)
				if err != nil {
					return err
				}
				// Durations serialize as strings so the output can be
				// fed straight back in as a settings file.
				view := map[string]interface{}{
					"package_list": settings.PackageList,
					"output":       settings.Output,
					"timeout":      settings.Timeout.String(),
					"grace_period": settings.GracePeriod.String(),
					"tail_lines":   settings.TailLines,
					"manager": map[string]interface{}{
						"command":      settings.Manager.Command,
						"silent_args":  settings.Manager.SilentArgs,
						"upgrade_args": settings.Manager.UpgradeArgs,
					},
				}
				data, err := toml.Marshal(view)
				if err != nil {
					return errors.Wrap(err, errors.ErrInternal, "failed to serialize settings")
				}
				content = string(data)
			}

			if !write {
				cmd.Print(content)
				return nil
			}

			target := config.SettingsPath()
			if _, err := os.Stat(target); err == nil {
				return errors.Newf(errors.ErrInvalidInput,
					"settings file %s already exists, refusing to overwrite", target)
			}
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return errors.Wrap(err, errors.ErrSettingsLoad, "failed to create settings directory")
			}
			if err := os.WriteFile(target, []byte(content), 0644); err != nil {
				return errors.Wrap(err, errors.ErrSettingsLoad, "failed to write settings file")
			}

			cmd.Printf("Wrote %s\n", target)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write to the default settings location instead of stdout")
	cmd.Flags().BoolVar(&effective, "effective", false, "Print the fully layered effective settings")
	cmd.Flags().StringVar(&settingsPath, "settings", "", "Settings file to layer when using --effective")

	return cmd
}

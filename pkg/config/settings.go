package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/pkgsync/pkg/errors"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "PKGSYNC_"

// Settings tunes one reconciliation run. Values are layered:
// embedded defaults, then the user settings file, then PKGSYNC_*
// environment variables, then CLI flags.
type Settings struct {
	// PackageList is the path to the line-oriented package list.
	PackageList string `koanf:"package_list" toml:"package_list"`

	// Output selects the report format: table, yaml or json.
	Output string `koanf:"output" toml:"output"`

	// Timeout bounds every package manager invocation, including the
	// two snapshot queries.
	Timeout time.Duration `koanf:"timeout" toml:"timeout"`

	// GracePeriod is the wait after terminating a conflicting process.
	GracePeriod time.Duration `koanf:"grace_period" toml:"grace_period"`

	// TailLines is how many trailing output lines are kept on failure.
	TailLines int `koanf:"tail_lines" toml:"tail_lines"`

	Manager ManagerSettings `koanf:"manager" toml:"manager"`
}

// ManagerSettings describes the backing package manager invocation.
type ManagerSettings struct {
	Command     string   `koanf:"command" toml:"command"`
	SilentArgs  []string `koanf:"silent_args" toml:"silent_args"`
	UpgradeArgs []string `koanf:"upgrade_args" toml:"upgrade_args"`
}

// SettingsPath returns the default user settings file location.
func SettingsPath() string {
	return filepath.Join(xdg.ConfigHome, "pkgsync", "pkgsync.toml")
}

// LoadSettings loads the layered settings. settingsPath may be empty,
// in which case the default XDG location is used when present.
func LoadSettings(settingsPath string) (*Settings, error) {
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultSettings}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrSettingsLoad, "failed to load default settings")
	}

	// 2. User settings file, when it exists
	path := settingsPath
	if path == "" {
		path = SettingsPath()
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrSettingsLoad,
				"failed to load settings from %s", path)
		}
	} else if settingsPath != "" {
		// An explicitly requested settings file must exist.
		return nil, errors.Newf(errors.ErrSettingsLoad,
			"settings file %s does not exist", settingsPath)
	}

	// 3. Environment overrides: PKGSYNC_TIMEOUT=5m, PKGSYNC_MANAGER_COMMAND=...
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		// MANAGER_COMMAND -> manager.command; everything else stays flat.
		if strings.HasPrefix(key, "manager_") {
			return "manager." + strings.TrimPrefix(key, "manager_")
		}
		return key
	}), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrSettingsLoad, "failed to load environment overrides")
	}

	var settings Settings
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &settings,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &settings, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrSettingsLoad, "failed to decode settings")
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return &settings, nil
}

// Validate checks settings invariants after layering.
func (s *Settings) Validate() error {
	if s.Timeout <= 0 {
		return errors.Newf(errors.ErrSettingsValid, "timeout must be positive, got %s", s.Timeout)
	}
	if s.GracePeriod < 0 {
		return errors.Newf(errors.ErrSettingsValid, "grace_period must not be negative, got %s", s.GracePeriod)
	}
	if s.TailLines < 0 {
		return errors.Newf(errors.ErrSettingsValid, "tail_lines must not be negative, got %d", s.TailLines)
	}
	if s.Manager.Command == "" {
		return errors.New(errors.ErrSettingsValid, "manager.command must not be empty")
	}
	switch s.Output {
	case "table", "yaml", "json":
	default:
		return errors.Newf(errors.ErrSettingsValid, "output must be table, yaml or json, got %q", s.Output)
	}
	return nil
}

// Package pkgsync wires the command line surface: one run-to-completion
// reconcile pass as the root command, plus version and genconfig.
package pkgsync

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/pkgsync/pkg/conflict"
	"github.com/arthur-debert/pkgsync/pkg/config"
	"github.com/arthur-debert/pkgsync/pkg/errors"
	"github.com/arthur-debert/pkgsync/pkg/executor"
	"github.com/arthur-debert/pkgsync/pkg/logging"
	"github.com/arthur-debert/pkgsync/pkg/manager"
	"github.com/arthur-debert/pkgsync/pkg/planner"
	"github.com/arthur-debert/pkgsync/pkg/report"
	"github.com/arthur-debert/pkgsync/pkg/snapshot"
)

type rootFlags struct {
	verbosity    int
	dryRun       bool
	packageList  string
	settingsPath string
	timeout      time.Duration
	output       string
}

// NewRootCmd builds the pkgsync command tree.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "pkgsync",
		Short: "Declarative package reconciliation",
		Long: `pkgsync reads a declarative package list, compares it against what is
installed on this machine, and runs the minimal set of install and
upgrade operations to close the gap. State is queried in two bulk
passes regardless of how many packages are configured, conflicting
processes are terminated before mutating operations, and every
operation runs under a bounded timeout.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(flags.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReconcile(cmd, flags)
		},
	}

	cmd.PersistentFlags().CountVarP(&flags.verbosity, "verbose", "v",
		"Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false,
		"Print the plan without executing any install or upgrade")
	cmd.Flags().StringVarP(&flags.packageList, "config", "c", "",
		"Path to the package list (overrides settings)")
	cmd.Flags().StringVar(&flags.settingsPath, "settings", "",
		"Path to the settings file (default: XDG config dir)")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 0,
		"Per-operation timeout (overrides settings)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "",
		"Report format: table, yaml or json (overrides settings)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newGenConfigCmd())

	return cmd
}

func runReconcile(cmd *cobra.Command, flags *rootFlags) error {
	logger := logging.GetLogger("run")

	settings, err := config.LoadSettings(flags.settingsPath)
	if err != nil {
		return err
	}

	// CLI flags are the last settings layer.
	if flags.packageList != "" {
		settings.PackageList = flags.packageList
	}
	if flags.timeout > 0 {
		settings.Timeout = flags.timeout
	}
	if flags.output != "" {
		settings.Output = flags.output
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	specs, err := config.ParsePackageList(settings.PackageList)
	if err != nil {
		return err
	}

	// A user interrupt cancels the context, which kills any in-flight
	// child process before we exit.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := manager.NewRunner()
	mgr := manager.NewWinget(runner, settings.Manager)

	snap := snapshot.Take(ctx, mgr, settings.Timeout)
	plan := planner.Build(specs, snap)

	renderer := report.NewTerminalRenderer()

	if flags.dryRun {
		cmd.Println(renderer.RenderPlan(plan))
		return nil
	}

	resolver := conflict.NewResolver(conflict.NewOSController(runner), settings.GracePeriod)

	exec := executor.New(executor.Options{
		Manager:   mgr,
		Resolver:  resolver,
		Timeout:   settings.Timeout,
		TailLines: settings.TailLines,
		Logger:    logging.GetLogger("executor"),
	})

	outcomes := exec.Execute(ctx, plan)
	rep := report.Summarize(outcomes)

	switch settings.Output {
	case "table":
		cmd.Println(renderer.RenderReport(rep))
	default:
		data, err := rep.Marshal(settings.Output)
		if err != nil {
			return err
		}
		cmd.Println(string(data))
	}

	if ctx.Err() != nil {
		return errors.New(errors.ErrRunIncomplete, "run interrupted before completion")
	}
	if !rep.AllOK() {
		logger.Error().Str("summary", rep.Headline()).Msg("Run finished with failures")
		return errors.Newf(errors.ErrRunIncomplete, "%s", rep.Headline())
	}

	logger.Info().Str("summary", rep.Headline()).Msg("Run finished")
	return nil
}

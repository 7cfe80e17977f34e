// Package report aggregates plan outcomes into the run summary. It is
// purely read-only: counts and rows are derived from the outcomes, no
// decisions are made here.
package report

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/pkgsync/pkg/errors"
	"github.com/arthur-debert/pkgsync/pkg/types"
)

// Row is one package's line in the summary table.
type Row struct {
	ID       string       `yaml:"id" json:"id"`
	Action   types.Action `yaml:"action" json:"action"`
	Result   types.Result `yaml:"result" json:"result"`
	ExitCode int          `yaml:"exit_code" json:"exit_code"`
	Duration string       `yaml:"duration,omitempty" json:"duration,omitempty"`

	// OutputTail carries diagnostics for failed entries only.
	OutputTail []string `yaml:"output_tail,omitempty" json:"output_tail,omitempty"`
}

// ActionCounts aggregates plan entries per classified action.
type ActionCounts struct {
	Installs int `yaml:"installs" json:"installs"`
	Upgrades int `yaml:"upgrades" json:"upgrades"`
	Skips    int `yaml:"skips" json:"skips"`
}

// Counts aggregates results per category.
type Counts struct {
	Succeeded    int `yaml:"succeeded" json:"succeeded"`
	Skipped      int `yaml:"skipped" json:"skipped"`
	Failed       int `yaml:"failed" json:"failed"`
	TimedOut     int `yaml:"timed_out" json:"timed_out"`
	LaunchFailed int `yaml:"launch_failed" json:"launch_failed"`
	DryRun       int `yaml:"dry_run,omitempty" json:"dry_run,omitempty"`
}

// Report is the full aggregation of one reconciliation run.
type Report struct {
	Rows    []Row        `yaml:"packages" json:"packages"`
	Actions ActionCounts `yaml:"actions" json:"actions"`
	Counts  Counts       `yaml:"counts" json:"counts"`
}

// Summarize builds the report from outcomes, preserving their order.
func Summarize(outcomes []types.Outcome) Report {
	rep := Report{Rows: make([]Row, 0, len(outcomes))}

	for _, o := range outcomes {
		rep.Rows = append(rep.Rows, Row{
			ID:         o.Entry.Spec.ID,
			Action:     o.Entry.Action,
			Result:     o.Result,
			ExitCode:   o.ExitCode,
			Duration:   o.Duration.Round(time.Millisecond).String(),
			OutputTail: o.OutputTail,
		})

		switch o.Entry.Action {
		case types.ActionInstall:
			rep.Actions.Installs++
		case types.ActionUpgrade:
			rep.Actions.Upgrades++
		case types.ActionSkip:
			rep.Actions.Skips++
		}

		switch o.Result {
		case types.ResultSuccess:
			rep.Counts.Succeeded++
		case types.ResultSkipped:
			rep.Counts.Skipped++
		case types.ResultFailed:
			rep.Counts.Failed++
		case types.ResultTimeout:
			rep.Counts.TimedOut++
		case types.ResultLaunchFailed:
			rep.Counts.LaunchFailed++
		case types.ResultDryRun:
			rep.Counts.DryRun++
		}
	}

	return rep
}

// AllOK reports whether every entry ended in Success, Skip or dry-run;
// this drives the process exit status.
func (r Report) AllOK() bool {
	return r.Counts.Failed == 0 && r.Counts.TimedOut == 0 && r.Counts.LaunchFailed == 0
}

// Marshal serializes the report for machine consumption.
func (r Report) Marshal(format string) ([]byte, error) {
	switch format {
	case "yaml":
		return yaml.Marshal(r)
	case "json":
		return json.MarshalIndent(r, "", "  ")
	default:
		return nil, errors.Newf(errors.ErrInvalidInput, "unsupported report format %q", format)
	}
}

// Headline is the one-line run summary.
func (r Report) Headline() string {
	return fmt.Sprintf("%d succeeded, %d skipped, %d failed, %d timed out, %d not launched",
		r.Counts.Succeeded, r.Counts.Skipped,
		r.Counts.Failed, r.Counts.TimedOut, r.Counts.LaunchFailed)
}

package report

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"

	"github.com/arthur-debert/pkgsync/pkg/types"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle = lipgloss.NewStyle().Faint(true)
)

// TerminalRenderer renders reports and plans for the terminal.
type TerminalRenderer struct{}

// NewTerminalRenderer creates a renderer, disabling color when stdout
// is not a terminal.
func NewTerminalRenderer() *TerminalRenderer {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		pterm.DisableColor()
	}
	return &TerminalRenderer{}
}

// RenderPlan renders the classified plan before execution (and is all
// a dry run prints).
func (r *TerminalRenderer) RenderPlan(plan types.Plan) string {
	if len(plan) == 0 {
		return mutedStyle.Render("No packages configured")
	}

	data := pterm.TableData{{"Package", "Action"}}
	for _, entry := range plan {
		data = append(data, []string{entry.Spec.ID, actionStyle(entry.Action).Sprint(entry.Action)})
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return fallbackPlan(plan)
	}

	return titleStyle.Render("Plan") + "\n" + table
}

// RenderReport renders the final run summary table plus diagnostics
// for every failed entry.
func (r *TerminalRenderer) RenderReport(rep Report) string {
	if len(rep.Rows) == 0 {
		return mutedStyle.Render("Nothing to do")
	}

	data := pterm.TableData{{"Package", "Action", "Result", "Exit", "Duration"}}
	for _, row := range rep.Rows {
		data = append(data, []string{
			row.ID,
			string(row.Action),
			resultStyle(row.Result).Sprint(row.Result),
			strconv.Itoa(row.ExitCode),
			row.Duration,
		})
	}

	var out strings.Builder
	out.WriteString(titleStyle.Render("Summary") + "\n")

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		table = fallbackReport(rep)
	}
	out.WriteString(table)
	out.WriteString("\n" + rep.Headline() + "\n")

	for _, row := range rep.Rows {
		if len(row.OutputTail) == 0 {
			continue
		}
		out.WriteString("\n" + titleStyle.Render(row.ID+" output tail") + "\n")
		for _, line := range row.OutputTail {
			out.WriteString(mutedStyle.Render("  "+line) + "\n")
		}
	}

	return out.String()
}

func actionStyle(action types.Action) *pterm.Style {
	switch action {
	case types.ActionInstall:
		return pterm.NewStyle(pterm.FgGreen)
	case types.ActionUpgrade:
		return pterm.NewStyle(pterm.FgYellow)
	default:
		return pterm.NewStyle(pterm.FgGray)
	}
}

func resultStyle(result types.Result) *pterm.Style {
	switch result {
	case types.ResultSuccess:
		return pterm.NewStyle(pterm.FgGreen)
	case types.ResultSkipped, types.ResultDryRun:
		return pterm.NewStyle(pterm.FgGray)
	case types.ResultTimeout:
		return pterm.NewStyle(pterm.FgYellow, pterm.Bold)
	default:
		return pterm.NewStyle(pterm.FgRed, pterm.Bold)
	}
}

// fallbackPlan is the plain rendering used if the table engine fails.
func fallbackPlan(plan types.Plan) string {
	var out strings.Builder
	for _, entry := range plan {
		out.WriteString(string(entry.Action) + "\t" + entry.Spec.ID + "\n")
	}
	return out.String()
}

func fallbackReport(rep Report) string {
	var out strings.Builder
	for _, row := range rep.Rows {
		out.WriteString(row.ID + "\t" + string(row.Action) + "\t" + string(row.Result) + "\n")
	}
	return out.String()
}

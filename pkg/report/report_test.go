package report

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/pkgsync/pkg/types"
)

func sampleOutcomes() []types.Outcome {
	return []types.Outcome{
		{
			Entry:    types.PlanEntry{Spec: types.PackageSpec{ID: "A.App"}, Action: types.ActionInstall},
			Result:   types.ResultSuccess,
			Duration: 1200 * time.Millisecond,
		},
		{
			Entry:    types.PlanEntry{Spec: types.PackageSpec{ID: "B.App"}, Action: types.ActionUpgrade},
			Result:   types.ResultFailed,
			ExitCode: 1603,
			OutputTail: []string{
				"installer returned error",
				"fatal error during installation",
			},
			Duration: 3 * time.Second,
		},
		{
			Entry:  types.PlanEntry{Spec: types.PackageSpec{ID: "C.App"}, Action: types.ActionSkip},
			Result: types.ResultSkipped,
		},
		{
			Entry:    types.PlanEntry{Spec: types.PackageSpec{ID: "D.App"}, Action: types.ActionInstall},
			Result:   types.ResultTimeout,
			ExitCode: types.ExitTimeout,
		},
	}
}

func TestSummarize(t *testing.T) {
	rep := Summarize(sampleOutcomes())

	require.Len(t, rep.Rows, 4)
	assert.Equal(t, "A.App", rep.Rows[0].ID)
	assert.Equal(t, "B.App", rep.Rows[1].ID)

	assert.Equal(t, ActionCounts{Installs: 2, Upgrades: 1, Skips: 1}, rep.Actions)

	assert.Equal(t, 1, rep.Counts.Succeeded)
	assert.Equal(t, 1, rep.Counts.Skipped)
	assert.Equal(t, 1, rep.Counts.Failed)
	assert.Equal(t, 1, rep.Counts.TimedOut)
	assert.Equal(t, 0, rep.Counts.LaunchFailed)

	assert.False(t, rep.AllOK())
}

func TestAllOK(t *testing.T) {
	ok := Summarize([]types.Outcome{
		{Entry: types.PlanEntry{Spec: types.PackageSpec{ID: "A.App"}}, Result: types.ResultSuccess},
		{Entry: types.PlanEntry{Spec: types.PackageSpec{ID: "B.App"}}, Result: types.ResultSkipped},
	})
	assert.True(t, ok.AllOK())

	bad := Summarize([]types.Outcome{
		{Entry: types.PlanEntry{Spec: types.PackageSpec{ID: "A.App"}}, Result: types.ResultLaunchFailed},
	})
	assert.False(t, bad.AllOK())
}

func TestMarshalYAML(t *testing.T) {
	rep := Summarize(sampleOutcomes())

	data, err := rep.Marshal("yaml")
	require.NoError(t, err)

	var decoded Report
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, rep.Counts, decoded.Counts)
	assert.Len(t, decoded.Rows, 4)
}

func TestMarshalJSON(t *testing.T) {
	rep := Summarize(sampleOutcomes())

	data, err := rep.Marshal("json")
	require.NoError(t, err)

	var decoded Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 1603, decoded.Rows[1].ExitCode)
}

func TestMarshalUnknownFormat(t *testing.T) {
	_, err := Summarize(nil).Marshal("xml")
	assert.Error(t, err)
}

func TestRenderReport(t *testing.T) {
	r := NewTerminalRenderer()
	out := r.RenderReport(Summarize(sampleOutcomes()))

	assert.Contains(t, out, "A.App")
	assert.Contains(t, out, "B.App output tail")
	assert.Contains(t, out, "fatal error during installation")
	assert.Contains(t, out, "1 succeeded")
}

func TestRenderPlan(t *testing.T) {
	r := NewTerminalRenderer()

	plan := types.Plan{
		{Spec: types.PackageSpec{ID: "A.App"}, Action: types.ActionInstall},
		{Spec: types.PackageSpec{ID: "B.App"}, Action: types.ActionSkip},
	}

	out := r.RenderPlan(plan)
	assert.Contains(t, out, "A.App")
	assert.Contains(t, out, "install")

	assert.Contains(t, r.RenderPlan(nil), "No packages")
}

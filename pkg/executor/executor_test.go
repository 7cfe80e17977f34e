package executor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/pkgsync/pkg/conflict"
	"github.com/arthur-debert/pkgsync/pkg/manager"
	"github.com/arthur-debert/pkgsync/pkg/types"
)

type call struct {
	op       string
	id       string
	override []string
}

// scriptedManager replays canned results per package id.
type scriptedManager struct {
	calls   []call
	results map[string]manager.RunResult
}

func (m *scriptedManager) ListInstalled(context.Context) (string, error)  { return "", nil }
func (m *scriptedManager) ListUpgradable(context.Context) (string, error) { return "", nil }

func (m *scriptedManager) Install(_ context.Context, id string, override []string) manager.RunResult {
	m.calls = append(m.calls, call{op: "install", id: id, override: override})
	return m.results[id]
}

func (m *scriptedManager) Upgrade(_ context.Context, id string, override []string) manager.RunResult {
	m.calls = append(m.calls, call{op: "upgrade", id: id, override: override})
	return m.results[id]
}

type fakeController struct {
	running    map[string]bool
	queried    []string
	terminated []string
}

func (c *fakeController) IsRunning(_ context.Context, name string) bool {
	c.queried = append(c.queried, name)
	return c.running[name]
}

func (c *fakeController) Terminate(_ context.Context, name string) error {
	c.terminated = append(c.terminated, name)
	return nil
}

func newExecutor(m manager.Manager, ctrl conflict.ProcessController, dryRun bool) *Executor {
	return New(Options{
		Manager:   m,
		Resolver:  conflict.NewResolver(ctrl, time.Millisecond),
		Timeout:   time.Minute,
		TailLines: 10,
		DryRun:    dryRun,
	})
}

func TestExecuteEndToEndScenario(t *testing.T) {
	// A.App missing, B.App upgradable behind process BProc, C.App in
	// sync: install A, kill BProc then upgrade B, never touch C.
	m := &scriptedManager{results: map[string]manager.RunResult{
		"A.App": {ExitCode: 0},
		"B.App": {ExitCode: 0},
	}}
	ctrl := &fakeController{running: map[string]bool{"BProc": true}}

	plan := types.Plan{
		{Spec: types.PackageSpec{ID: "A.App"}, Action: types.ActionInstall},
		{Spec: types.PackageSpec{ID: "B.App", Process: "BProc"}, Action: types.ActionUpgrade},
		{Spec: types.PackageSpec{ID: "C.App", Process: "CProc", Args: "--silent-custom"}, Action: types.ActionSkip},
	}

	outcomes := newExecutor(m, ctrl, false).Execute(context.Background(), plan)

	require.Len(t, outcomes, 3)
	assert.Equal(t, types.ResultSuccess, outcomes[0].Result)
	assert.Equal(t, types.ResultSuccess, outcomes[1].Result)
	assert.Equal(t, types.ResultSkipped, outcomes[2].Result)

	require.Len(t, m.calls, 2)
	assert.Equal(t, call{op: "install", id: "A.App"}, m.calls[0])
	assert.Equal(t, call{op: "upgrade", id: "B.App"}, m.calls[1])

	assert.Equal(t, []string{"BProc"}, ctrl.terminated)
	// C.App is skipped: its conflicting process is never even queried.
	assert.NotContains(t, ctrl.queried, "CProc")
}

func TestExecuteFailureDoesNotStopBatch(t *testing.T) {
	m := &scriptedManager{results: map[string]manager.RunResult{
		"A.App": {ExitCode: 1603, Output: "fatal error during installation"},
		"B.App": {ExitCode: 0},
	}}

	plan := types.Plan{
		{Spec: types.PackageSpec{ID: "A.App"}, Action: types.ActionInstall},
		{Spec: types.PackageSpec{ID: "B.App"}, Action: types.ActionInstall},
	}

	outcomes := newExecutor(m, &fakeController{}, false).Execute(context.Background(), plan)

	require.Len(t, outcomes, 2)
	assert.Equal(t, types.ResultFailed, outcomes[0].Result)
	assert.Equal(t, 1603, outcomes[0].ExitCode)
	assert.Equal(t, types.ResultSuccess, outcomes[1].Result)
}

func TestExecuteTimeoutClassification(t *testing.T) {
	m := &scriptedManager{results: map[string]manager.RunResult{
		"A.App": {ExitCode: types.ExitTimeout, TimedOut: true, Err: context.DeadlineExceeded},
	}}

	plan := types.Plan{{Spec: types.PackageSpec{ID: "A.App"}, Action: types.ActionInstall}}
	outcomes := newExecutor(m, &fakeController{}, false).Execute(context.Background(), plan)

	require.Len(t, outcomes, 1)
	assert.Equal(t, types.ResultTimeout, outcomes[0].Result)
	assert.Equal(t, types.ExitTimeout, outcomes[0].ExitCode)
}

func TestExecuteLaunchFailureClassification(t *testing.T) {
	m := &scriptedManager{results: map[string]manager.RunResult{
		"A.App": {ExitCode: types.ExitLaunchFailed, Err: errors.New("executable not found")},
	}}

	plan := types.Plan{{Spec: types.PackageSpec{ID: "A.App"}, Action: types.ActionInstall}}
	outcomes := newExecutor(m, &fakeController{}, false).Execute(context.Background(), plan)

	require.Len(t, outcomes, 1)
	assert.Equal(t, types.ResultLaunchFailed, outcomes[0].Result)
	assert.Equal(t, types.ExitLaunchFailed, outcomes[0].ExitCode)
}

func TestExecuteTailRetainedOnlyOnFailure(t *testing.T) {
	lines := make([]string, 25)
	for i := range lines {
		lines[i] = "line"
	}
	longOutput := strings.Join(lines, "\n")

	m := &scriptedManager{results: map[string]manager.RunResult{
		"Fail.App": {ExitCode: 1, Output: longOutput},
		"Ok.App":   {ExitCode: 0, Output: longOutput},
	}}

	plan := types.Plan{
		{Spec: types.PackageSpec{ID: "Fail.App"}, Action: types.ActionInstall},
		{Spec: types.PackageSpec{ID: "Ok.App"}, Action: types.ActionInstall},
	}

	outcomes := newExecutor(m, &fakeController{}, false).Execute(context.Background(), plan)

	require.Len(t, outcomes, 2)
	assert.Len(t, outcomes[0].OutputTail, 10)
	assert.Nil(t, outcomes[1].OutputTail, "successful outcomes carry no output tail")
}

func TestExecuteOverrideArgsPassedSplit(t *testing.T) {
	m := &scriptedManager{results: map[string]manager.RunResult{"A.App": {ExitCode: 0}}}

	plan := types.Plan{{
		Spec:   types.PackageSpec{ID: "A.App", Args: "--custom --location 'C:\\My Apps'"},
		Action: types.ActionInstall,
	}}

	newExecutor(m, &fakeController{}, false).Execute(context.Background(), plan)

	require.Len(t, m.calls, 1)
	assert.Equal(t, []string{"--custom", "--location", "C:\\My Apps"}, m.calls[0].override)
}

func TestExecuteDryRunPerformsNoMutations(t *testing.T) {
	m := &scriptedManager{}
	ctrl := &fakeController{running: map[string]bool{"BProc": true}}

	plan := types.Plan{
		{Spec: types.PackageSpec{ID: "A.App"}, Action: types.ActionInstall},
		{Spec: types.PackageSpec{ID: "B.App", Process: "BProc"}, Action: types.ActionUpgrade},
	}

	outcomes := newExecutor(m, ctrl, true).Execute(context.Background(), plan)

	require.Len(t, outcomes, 2)
	assert.Equal(t, types.ResultDryRun, outcomes[0].Result)
	assert.Equal(t, types.ResultDryRun, outcomes[1].Result)
	assert.Empty(t, m.calls)
	assert.Empty(t, ctrl.terminated)
}

func TestExecuteAllSkipPerformsNoMutations(t *testing.T) {
	m := &scriptedManager{}

	plan := types.Plan{
		{Spec: types.PackageSpec{ID: "A.App"}, Action: types.ActionSkip},
		{Spec: types.PackageSpec{ID: "B.App"}, Action: types.ActionSkip},
	}

	outcomes := newExecutor(m, &fakeController{}, false).Execute(context.Background(), plan)

	require.Len(t, outcomes, 2)
	assert.Empty(t, m.calls)
}

func TestExecuteStopsOnCancelledContext(t *testing.T) {
	m := &scriptedManager{results: map[string]manager.RunResult{"A.App": {ExitCode: 0}}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	plan := types.Plan{
		{Spec: types.PackageSpec{ID: "A.App"}, Action: types.ActionInstall},
		{Spec: types.PackageSpec{ID: "B.App"}, Action: types.ActionInstall},
	}

	outcomes := newExecutor(m, &fakeController{}, false).Execute(ctx, plan)

	assert.Empty(t, outcomes)
	assert.Empty(t, m.calls)
}

func TestTail(t *testing.T) {
	assert.Nil(t, tail("", 10))
	assert.Nil(t, tail("anything", 0))
	assert.Equal(t, []string{"a", "b"}, tail("a\nb\n\n", 10))
	assert.Equal(t, []string{"d", "e"}, tail("a\nb\nc\nd\ne", 2))
	assert.Equal(t, []string{"a", "b"}, tail("a\r\nb\r\n", 10))
}

package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/pkgsync/pkg/snapshot"
	"github.com/arthur-debert/pkgsync/pkg/types"
)

func TestBuildClassification(t *testing.T) {
	snap := snapshot.New(
		"B.App 1.0\nC.App 2.0\n",
		"B.App 1.0 1.1\n",
	)

	specs := []types.PackageSpec{
		{ID: "A.App"},
		{ID: "B.App", Process: "BProc"},
		{ID: "C.App", Process: "CProc", Args: "--silent-custom"},
	}

	plan := Build(specs, snap)

	require.Len(t, plan, 3)
	assert.Equal(t, types.ActionInstall, plan[0].Action)
	assert.Equal(t, types.ActionUpgrade, plan[1].Action)
	assert.Equal(t, types.ActionSkip, plan[2].Action)

	// The package spec rides along unchanged.
	assert.Equal(t, specs[1], plan[1].Spec)
}

func TestBuildIsPureAndOrderPreserving(t *testing.T) {
	snap := snapshot.New("A.App\nB.App\n", "A.App\n")
	specs := []types.PackageSpec{{ID: "B.App"}, {ID: "A.App"}, {ID: "C.App"}}

	first := Build(specs, snap)
	second := Build(specs, snap)

	assert.Equal(t, first, second, "identical inputs must yield identical plans")

	ids := make([]string, len(first))
	for i, e := range first {
		ids[i] = e.Spec.ID
	}
	assert.Equal(t, []string{"B.App", "A.App", "C.App"}, ids)
}

func TestBuildDoesNotMatchSuperstrings(t *testing.T) {
	// Foo.BarBaz installed must not make Foo.Bar look installed.
	snap := snapshot.New("Foo.BarBaz 1.0\n", "")

	plan := Build([]types.PackageSpec{{ID: "Foo.Bar"}}, snap)

	require.Len(t, plan, 1)
	assert.Equal(t, types.ActionInstall, plan[0].Action)
}

func TestBuildEmptySnapshotInstallsEverything(t *testing.T) {
	plan := Build([]types.PackageSpec{{ID: "A.App"}, {ID: "B.App"}}, snapshot.New("", ""))

	for _, entry := range plan {
		assert.Equal(t, types.ActionInstall, entry.Action)
	}
}

func TestBuildDuplicatesClassifiedIndependently(t *testing.T) {
	snap := snapshot.New("A.App\n", "")
	plan := Build([]types.PackageSpec{{ID: "A.App"}, {ID: "A.App"}}, snap)

	require.Len(t, plan, 2)
	assert.Equal(t, types.ActionSkip, plan[0].Action)
	assert.Equal(t, types.ActionSkip, plan[1].Action)
}

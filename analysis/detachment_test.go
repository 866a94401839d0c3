package analysis

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltgrid/gridenv/grid"
	"github.com/voltgrid/gridenv/types"
)

func shedTrace(t *testing.T) *types.Trace {
	t.Helper()
	reg := grid.DefaultRegistry()
	space := grid.NewSpace(reg, grid.DefaultParameters())
	env := grid.NewTopoEnvironment(space)

	trace := types.NewTrace()
	state := env.Reset()

	shed := space.Empty()
	require.NoError(t, shed.Set(grid.KeyDetachLoad, 0))
	next := env.Step(shed)
	trace.Append(state, shed, next)
	state = next

	empty := space.Empty()
	next = env.Step(empty)
	trace.Append(state, empty, next)

	return trace
}

func TestDetachmentCount(t *testing.T) {
	trace := shedTrace(t)
	counts := DetachmentCount()(trace)
	// the shed load stays disconnected through the empty step
	assert.Equal(t, []int{1, 1}, counts)
}

func TestTouchedSubstationCount(t *testing.T) {
	reg := grid.DefaultRegistry()
	space := grid.NewSpace(reg, grid.DefaultParameters())
	env := grid.NewTopoEnvironment(space)

	a := space.Empty()
	require.NoError(t, a.Set(grid.KeySetBus, []grid.BusAssign{
		{Pos: reg.GenPos[0], Bus: 2},
		{Pos: reg.LoadPos[0], Bus: 2},
	}))

	trace := types.NewTrace()
	state := env.Reset()
	trace.Append(state, a, env.Step(a))

	counts := TouchedSubstationCount()(trace)
	assert.Equal(t, []int{2}, counts)
}

func TestLinePlotterWritesChart(t *testing.T) {
	dir := t.TempDir()
	plotFn := LinePlotter(dir, "detachments", "Disconnected terminals")

	err := plotFn([]string{"episode-0"}, [][]int{{0, 1, 1, 2}})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "detachments.png"))
	assert.NoError(t, err)
}

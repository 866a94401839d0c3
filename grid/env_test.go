package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShedSingleLoad(t *testing.T) {
	reg := DefaultRegistry()
	space := NewSpace(reg, DefaultParameters())
	env := NewTopoEnvironment(space)

	loadIdx, ok := reg.LoadIndex("load_4_2")
	require.True(t, ok)
	loadPos := reg.LoadPos[loadIdx]

	a, err := space.FromDict(map[string]any{
		"set_bus": [][2]int{{loadPos, -1}},
	})
	require.NoError(t, err)

	ambiguous, reason := space.Validate(a)
	require.False(t, ambiguous)
	require.NoError(t, reason)

	state := env.Step(a).(*TopoState)
	assert.False(t, env.LastInfo().IsAmbiguous)
	assert.False(t, env.LastInfo().IsIllegal)
	assert.Equal(t, -1, state.Vect[loadPos])
}

func TestShedLoadAndGenerator(t *testing.T) {
	reg := DefaultRegistry()
	space := NewSpace(reg, DefaultParameters())
	env := NewTopoEnvironment(space)

	loadPos := reg.LoadPos[0]
	genPos := reg.GenPos[0]
	a, err := space.FromDict(map[string]any{
		"set_bus": [][2]int{{loadPos, -1}, {genPos, -1}},
	})
	require.NoError(t, err)

	state := env.Step(a).(*TopoState)
	assert.Equal(t, -1, state.Vect[loadPos])
	assert.Equal(t, -1, state.Vect[genPos])
	assert.Equal(t, 2, state.DisconnectedCount())
}

func TestSheddingPersistsAcrossEmptySteps(t *testing.T) {
	reg := DefaultRegistry()
	space := NewSpace(reg, DefaultParameters())
	env := NewTopoEnvironment(space)

	loadPos := reg.LoadPos[2]
	a, err := space.FromDict(map[string]any{
		"set_bus": [][2]int{{loadPos, -1}},
	})
	require.NoError(t, err)
	env.Step(a)

	// the empty action touches nothing: the slot stays shed
	state := env.Step(space.Empty()).(*TopoState)
	assert.Equal(t, -1, state.Vect[loadPos])

	state = env.Step(space.Empty()).(*TopoState)
	assert.Equal(t, -1, state.Vect[loadPos])
}

func TestAmbiguousStepIsNoOp(t *testing.T) {
	reg := DefaultRegistry()
	space := NewSpace(reg, DefaultParameters())
	env := NewTopoEnvironment(space)
	before := env.Reset().Hash()

	a := space.Empty()
	require.NoError(t, a.Set(KeyDetachLoad, []int{0}))
	require.NoError(t, a.Set(KeyLoadSetBus, BusAssign{Pos: 0, Bus: 1}))

	state := env.Step(a)
	assert.True(t, env.LastInfo().IsAmbiguous)
	assert.Error(t, env.LastInfo().Reason)
	assert.Equal(t, before, state.Hash())
}

func TestDetachFlagsApply(t *testing.T) {
	reg := DefaultRegistry()
	space := NewSpace(reg, DefaultParameters())
	env := NewTopoEnvironment(space)

	a := space.Empty()
	require.NoError(t, a.Set(KeyDetachStorage, 0))
	state := env.Step(a).(*TopoState)
	assert.Equal(t, -1, state.Vect[reg.StoragePos[0]])
}

func TestChangeBusToggles(t *testing.T) {
	reg := DefaultRegistry()
	space := NewSpace(reg, DefaultParameters())
	env := NewTopoEnvironment(space)
	slot := reg.GenPos[1]

	a := space.Empty()
	require.NoError(t, a.Set(KeyChangeBus, slot))
	state := env.Step(a).(*TopoState)
	assert.Equal(t, 2, state.Vect[slot])

	b := space.Empty()
	require.NoError(t, b.Set(KeyChangeBus, slot))
	state = env.Step(b).(*TopoState)
	assert.Equal(t, 1, state.Vect[slot])
}

func TestDetachmentForbiddenStepIsIllegal(t *testing.T) {
	reg := DefaultRegistry()
	params := DefaultParameters()
	params.AllowDetachment = false
	space := NewSpace(reg, params)
	env := NewTopoEnvironment(space)

	a := space.Empty()
	require.NoError(t, a.Set(KeyDetachLoad, 0))
	state := env.Step(a).(*TopoState)
	assert.True(t, env.LastInfo().IsIllegal)
	assert.False(t, env.LastInfo().IsAmbiguous)
	assert.Equal(t, 0, state.DisconnectedCount())
}

package grid

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voltgrid/gridenv/types"
	"gonum.org/v1/gonum/floats"
)

// actions covering every field family, ambiguous ones included:
// serialization does not validate.
func codecFixtures(t *testing.T, space *Space) map[string]*Action {
	t.Helper()
	reg := space.Registry()

	empty := space.Empty()

	shed := space.Empty()
	require.NoError(t, shed.Set(KeyDetachLoad, []int{0, 2}))
	require.NoError(t, shed.Set(KeyDetachGen, reg.NameGen[1]))
	require.NoError(t, shed.Set(KeyDetachStorage, 0))

	rewire := space.Empty()
	require.NoError(t, rewire.Set(KeySetBus, []BusAssign{
		{Pos: reg.LoadPos[1], Bus: 2},
		{Pos: reg.LineOrPos[0], Bus: -1},
	}))
	require.NoError(t, rewire.Set(KeyChangeBus, []int{reg.GenPos[0], reg.LineExPos[3]}))

	ambiguous := space.Empty()
	require.NoError(t, ambiguous.Set(KeyDetachLoad, 0))
	require.NoError(t, ambiguous.Set(KeyLoadSetBus, BusAssign{Pos: 0, Bus: 1}))

	return map[string]*Action{
		"empty":     empty,
		"shed":      shed,
		"rewire":    rewire,
		"ambiguous": ambiguous,
	}
}

func TestDictRoundTrip(t *testing.T) {
	space := NewSpace(DefaultRegistry(), DefaultParameters())
	for name, a := range codecFixtures(t, space) {
		decoded, err := space.FromDict(a.ToDict())
		require.NoError(t, err, name)
		assert.True(t, a.Equal(decoded), "dict round trip for %s", name)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	space := NewSpace(DefaultRegistry(), DefaultParameters())
	for name, a := range codecFixtures(t, space) {
		data, err := a.ToJSON()
		require.NoError(t, err, name)
		decoded, err := space.FromJSON(data)
		require.NoError(t, err, name)
		assert.True(t, a.Equal(decoded), "json round trip for %s", name)
	}
}

func TestJSONRoundTripThroughDisk(t *testing.T) {
	space := NewSpace(DefaultRegistry(), DefaultParameters())
	a := space.Empty()
	require.NoError(t, a.Set(KeyDetachLoad, []int{0}))
	require.NoError(t, a.Set(KeySetBus, BusAssign{Pos: 4, Bus: 2}))

	data, err := a.ToJSON()
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "action.json")
	require.NoError(t, os.WriteFile(path, data, 0644))

	reloaded, err := os.ReadFile(path)
	require.NoError(t, err)
	decoded, err := space.FromJSON(reloaded)
	require.NoError(t, err)
	assert.True(t, a.Equal(decoded))
}

func TestVectRoundTrip(t *testing.T) {
	space := NewSpace(DefaultRegistry(), DefaultParameters())
	for name, a := range codecFixtures(t, space) {
		vect := a.ToVect()
		require.Len(t, vect, VectSize(space.Registry()), name)
		decoded, err := space.FromVect(vect)
		require.NoError(t, err, name)
		assert.True(t, a.Equal(decoded), "vector round trip for %s", name)
		// the layout is deterministic for equal actions
		assert.True(t, floats.Equal(vect, decoded.ToVect()), name)
	}
}

func TestVectLayoutIsRegistryDerived(t *testing.T) {
	reg := DefaultRegistry()
	space := NewSpace(reg, DefaultParameters())
	assert.Equal(t, 2*reg.Dim()+reg.NLoad+reg.NGen+reg.NStorage, VectSize(reg))

	a := space.Empty()
	require.NoError(t, a.Set(KeyDetachGen, 1))
	vect := a.ToVect()
	// detach_gen region sits after both topology regions and the loads
	assert.Equal(t, 1.0, vect[2*reg.Dim()+reg.NLoad+1])
}

func TestVectMalformed(t *testing.T) {
	space := NewSpace(DefaultRegistry(), DefaultParameters())

	var malformed *types.MalformedSerializationError

	_, err := space.FromVect(make([]float64, VectSize(space.Registry())-1))
	require.ErrorAs(t, err, &malformed)

	bad := make([]float64, VectSize(space.Registry()))
	bad[0] = -3 // below the disconnect marker
	_, err = space.FromVect(bad)
	require.ErrorAs(t, err, &malformed)

	bad = make([]float64, VectSize(space.Registry()))
	bad[space.Registry().Dim()] = 0.5 // change_bus region is 0/1
	_, err = space.FromVect(bad)
	require.ErrorAs(t, err, &malformed)
}

func TestDictMalformed(t *testing.T) {
	space := NewSpace(DefaultRegistry(), DefaultParameters())

	var malformed *types.MalformedSerializationError
	_, err := space.FromDict(map[string]any{"no_such_field": 1})
	require.ErrorAs(t, err, &malformed)

	var fieldErr *types.InvalidActionFieldError
	_, err = space.FromDict(map[string]any{"detach_load": map[int]int{1: 2}})
	require.ErrorAs(t, err, &fieldErr)

	var authErr *types.UnauthorizedFieldError
	reduced := NewSpaceWithKeys(space.Registry(), space.Parameters(), SetOnlyKeys)
	_, err = reduced.FromDict(map[string]any{"change_bus": []int{0}})
	require.ErrorAs(t, err, &authErr)
}

func TestCrossFormAgreement(t *testing.T) {
	space := NewSpace(DefaultRegistry(), DefaultParameters())
	a := space.Empty()
	require.NoError(t, a.Set(KeyDetachLoad, []int{1}))
	require.NoError(t, a.Set(KeyChangeBus, 5))

	data, err := a.ToJSON()
	require.NoError(t, err)
	fromJSON, err := space.FromJSON(data)
	require.NoError(t, err)
	fromVect, err := space.FromVect(a.ToVect())
	require.NoError(t, err)
	fromDict, err := space.FromDict(a.ToDict())
	require.NoError(t, err)

	assert.True(t, fromJSON.Equal(fromVect))
	assert.True(t, fromVect.Equal(fromDict))
	assert.Equal(t, fromJSON.Hash(), fromDict.Hash())
}

package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voltgrid/gridenv/types"
)

func ambiguityKind(t *testing.T, err error) types.AmbiguityKind {
	t.Helper()
	var ambErr *types.AmbiguousActionError
	require.ErrorAs(t, err, &ambErr)
	return ambErr.Kind
}

func TestDetachChangeConflict(t *testing.T) {
	reg := DefaultRegistry()
	space := NewSpace(reg, DefaultParameters())

	a := space.Empty()
	require.NoError(t, a.Set(KeyLoadChangeBus, []int{0}))
	require.NoError(t, a.Set(KeyDetachLoad, []int{0}))

	ambiguous, err := Validate(a, reg)
	assert.True(t, ambiguous)
	assert.Equal(t, types.AmbiguityDetachChange, ambiguityKind(t, err))
}

func TestDetachSetConflict(t *testing.T) {
	reg := DefaultRegistry()
	space := NewSpace(reg, DefaultParameters())

	a := space.Empty()
	require.NoError(t, a.Set(KeyLoadSetBus, BusAssign{Pos: 0, Bus: 1}))
	require.NoError(t, a.Set(KeyDetachLoad, []int{0}))

	ambiguous, err := Validate(a, reg)
	assert.True(t, ambiguous)
	assert.Equal(t, types.AmbiguityDetachSet, ambiguityKind(t, err))
}

func TestUnsyncedFlagDetected(t *testing.T) {
	reg := DefaultRegistry()
	space := NewSpace(reg, DefaultParameters())

	// bypass the declaration path on purpose
	a := space.Empty()
	a.detachLoad[0] = true

	ambiguous, err := Validate(a, reg)
	assert.True(t, ambiguous)
	assert.Equal(t, types.AmbiguityUnsyncedFlag, ambiguityKind(t, err))

	// the public path keeps flag and marker in sync
	b := space.Empty()
	require.NoError(t, b.Set(KeyDetachGen, 0))
	ambiguous, err = Validate(b, reg)
	assert.False(t, ambiguous)
	assert.NoError(t, err)
}

func TestRulePrecedence(t *testing.T) {
	reg := DefaultRegistry()
	space := NewSpace(reg, DefaultParameters())

	// both a change and a set conflict on the same detached load: rule 1 wins
	a := space.Empty()
	require.NoError(t, a.Set(KeyLoadChangeBus, 0))
	require.NoError(t, a.Set(KeyLoadSetBus, BusAssign{Pos: 0, Bus: 2}))
	require.NoError(t, a.Set(KeyDetachLoad, 0))

	_, err := Validate(a, reg)
	assert.Equal(t, types.AmbiguityDetachChange, ambiguityKind(t, err))
}

func TestBareDisconnectIsLegal(t *testing.T) {
	reg := DefaultRegistry()
	space := NewSpace(reg, DefaultParameters())

	// set_bus = -1 without a detach flag is the low level disconnect path
	a := space.Empty()
	require.NoError(t, a.Set(KeySetBus, BusAssign{Pos: reg.LoadPos[0], Bus: -1}))

	ambiguous, err := Validate(a, reg)
	assert.False(t, ambiguous)
	assert.NoError(t, err)
}

func TestValidateNeverMutates(t *testing.T) {
	reg := DefaultRegistry()
	space := NewSpace(reg, DefaultParameters())

	a := space.Empty()
	require.NoError(t, a.Set(KeyDetachLoad, 1))
	require.NoError(t, a.Set(KeyChangeBus, reg.GenPos[0]))
	before := a.Copy()

	_, _ = Validate(a, reg)
	_, _ = ValidateWith(a, reg, MaxSubstationsChanged(DefaultParameters()))
	assert.True(t, a.Equal(before))
}

func TestMaxSubstationsPolicy(t *testing.T) {
	reg := DefaultRegistry()
	params := DefaultParameters()
	params.MaxSubstationsPerStep = 1

	a := NewAction(reg, FullKeys)
	require.NoError(t, a.Set(KeySetBus, []BusAssign{
		{Pos: reg.GenPos[0], Bus: 2},  // sub 0
		{Pos: reg.LoadPos[0], Bus: 2}, // sub 1
	}))

	rejected, err := ValidateWith(a, reg, MaxSubstationsChanged(params))
	assert.True(t, rejected)
	var illErr *types.IllegalActionError
	assert.ErrorAs(t, err, &illErr)

	params.MaxSubstationsPerStep = 2
	rejected, err = ValidateWith(a, reg, MaxSubstationsChanged(params))
	assert.False(t, rejected)
	assert.NoError(t, err)
}

func TestDetachmentForbiddenPolicy(t *testing.T) {
	reg := DefaultRegistry()
	params := DefaultParameters()
	params.AllowDetachment = false

	a := NewAction(reg, FullKeys)
	require.NoError(t, a.Set(KeyDetachLoad, 0))

	rejected, err := ValidateWith(a, reg, DetachmentAllowed(params))
	assert.True(t, rejected)
	var illErr *types.IllegalActionError
	assert.ErrorAs(t, err, &illErr)

	// ambiguity has precedence over policy in ValidateWith
	b := NewAction(reg, FullKeys)
	require.NoError(t, b.Set(KeyDetachLoad, 0))
	require.NoError(t, b.Set(KeyLoadSetBus, BusAssign{Pos: 0, Bus: 1}))
	_, err = ValidateWith(b, reg, DetachmentAllowed(params))
	var ambErr *types.AmbiguousActionError
	assert.ErrorAs(t, err, &ambErr)
}

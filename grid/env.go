package grid

import (
	"fmt"

	"github.com/voltgrid/gridenv/types"
)

// StepInfo reports what happened to the last action handed to the
// environment. Rejected actions are applied as a no-op step.
type StepInfo struct {
	IsAmbiguous bool
	IsIllegal   bool
	Reason      error
}

// TopoEnvironment owns the topology vector and applies validated actions
// to it. Persistence lives here: a slot keeps its value until some later
// action touches it, so a shed element stays disconnected across empty
// steps.
type TopoEnvironment struct {
	Space    *Space
	TopoVect []int

	lastInfo StepInfo
}

var _ types.Environment = &TopoEnvironment{}

func NewTopoEnvironment(space *Space) *TopoEnvironment {
	e := &TopoEnvironment{Space: space}
	e.Reset()
	return e
}

// Reset reconnects every terminal to busbar one.
func (e *TopoEnvironment) Reset() types.State {
	e.TopoVect = make([]int, e.Space.Registry().Dim())
	for i := range e.TopoVect {
		e.TopoVect[i] = 1
	}
	e.lastInfo = StepInfo{}
	return e.state()
}

// Step validates the action and applies it to the topology vector. An
// ambiguous or illegal action leaves the vector untouched; the verdict is
// available from LastInfo.
func (e *TopoEnvironment) Step(a types.Action) types.State {
	act, ok := a.(*Action)
	if !ok {
		e.lastInfo = StepInfo{IsIllegal: true, Reason: fmt.Errorf("unexpected action type %T", a)}
		return e.state()
	}
	rejected, reason := e.Space.Validate(act)
	if rejected {
		_, ambiguous := reason.(*types.AmbiguousActionError)
		e.lastInfo = StepInfo{IsAmbiguous: ambiguous, IsIllegal: !ambiguous, Reason: reason}
		return e.state()
	}
	e.lastInfo = StepInfo{}
	e.apply(act)
	return e.state()
}

// LastInfo returns the verdict of the most recent step.
func (e *TopoEnvironment) LastInfo() StepInfo {
	return e.lastInfo
}

func (e *TopoEnvironment) apply(act *Action) {
	reg := e.Space.Registry()
	for slot, bus := range act.setBus {
		e.TopoVect[slot] = bus
	}
	for slot := range act.changeBus {
		switch e.TopoVect[slot] {
		case 1:
			e.TopoVect[slot] = 2
		case 2:
			e.TopoVect[slot] = 1
		}
		// toggling a disconnected terminal is a no-op
	}
	detach := func(flags []bool, pos []int) {
		for i, v := range flags {
			if v {
				e.TopoVect[pos[i]] = -1
			}
		}
	}
	detach(act.detachLoad, reg.LoadPos)
	detach(act.detachGen, reg.GenPos)
	detach(act.detachStorage, reg.StoragePos)
}

func (e *TopoEnvironment) state() *TopoState {
	vect := make([]int, len(e.TopoVect))
	copy(vect, e.TopoVect)
	return &TopoState{Vect: vect, space: e.Space}
}

// TopoState is an immutable snapshot of the topology vector.
type TopoState struct {
	Vect  []int
	space *Space
}

var _ types.State = &TopoState{}

func (s *TopoState) Hash() string {
	return fmt.Sprintf("%v", s.Vect)
}

// Actions proposes the empty action plus one detachment per load, the
// coarse candidate set a random policy explores from.
func (s *TopoState) Actions() []types.Action {
	if s.space == nil {
		return nil
	}
	out := []types.Action{s.space.Empty()}
	for i := 0; i < s.space.Registry().NLoad; i++ {
		a := s.space.Empty()
		if err := a.Set(KeyDetachLoad, i); err == nil {
			out = append(out, a)
		}
	}
	return out
}

// DisconnectedCount returns the number of slots at -1.
func (s *TopoState) DisconnectedCount() int {
	n := 0
	for _, v := range s.Vect {
		if v == -1 {
			n++
		}
	}
	return n
}

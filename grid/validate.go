package grid

import (
	"fmt"

	"github.com/voltgrid/gridenv/types"
)

// PolicyCheck is the hook for structural and policy checks the environment
// layers above ambiguity validation, such as substation budgets. A check
// returns nil when the action passes.
type PolicyCheck func(a *Action, reg *Registry) error

// Validate reports whether an action contradicts itself. It never mutates
// its input. The first violated rule wins:
//
//  1. detach and change_bus on the same element
//  2. detach and a non-zero set_bus on the same element
//  3. a detach flag raised without its modification marker
//
// The reverse of rules 1 and 2 is legal: a bare set_bus of -1 is the low
// level disconnect mechanism and needs no detach flag.
func Validate(a *Action, reg *Registry) (bool, error) {
	type detachField struct {
		kind  ElementKind
		flags []bool
		modif []bool
		pos   []int
		names []string
	}
	fields := []detachField{
		{LoadKind, a.detachLoad, a.modifDetachLoad, reg.LoadPos, reg.NameLoad},
		{GenKind, a.detachGen, a.modifDetachGen, reg.GenPos, reg.NameGen},
		{StorageKind, a.detachStorage, a.modifDetachStorage, reg.StoragePos, reg.NameStorage},
	}

	elem := func(f detachField, i int) string {
		if i < len(f.names) {
			return f.names[i]
		}
		return fmt.Sprintf("%s %d", f.kind, i)
	}

	// rule 1: change and detach on the same element
	for _, f := range fields {
		for i, detached := range f.flags {
			if !detached {
				continue
			}
			if _, ok := a.changeBus[f.pos[i]]; ok {
				return true, &types.AmbiguousActionError{Kind: types.AmbiguityDetachChange, Element: elem(f, i)}
			}
		}
	}

	// rule 2: set_bus and detach on the same element
	for _, f := range fields {
		for i, detached := range f.flags {
			if !detached {
				continue
			}
			if bus, ok := a.setBus[f.pos[i]]; ok && bus != 0 {
				return true, &types.AmbiguousActionError{Kind: types.AmbiguityDetachSet, Element: elem(f, i)}
			}
		}
	}

	// rule 3: flag raised without going through the declaration path
	for _, f := range fields {
		for i, detached := range f.flags {
			if detached && !f.modif[i] {
				return true, &types.AmbiguousActionError{Kind: types.AmbiguityUnsyncedFlag, Element: elem(f, i)}
			}
		}
	}

	return false, nil
}

// ValidateWith runs ambiguity validation followed by the supplied policy
// checks in order, first failure wins.
func ValidateWith(a *Action, reg *Registry, checks ...PolicyCheck) (bool, error) {
	if ambiguous, err := Validate(a, reg); ambiguous {
		return true, err
	}
	for _, check := range checks {
		if err := check(a, reg); err != nil {
			return true, err
		}
	}
	return false, nil
}

// Parameters is the environment configuration consulted by policy checks.
// It is always passed explicitly, never read from ambient state.
type Parameters struct {
	AllowDetachment       bool
	AllowDetachLoad       bool
	AllowDetachGen        bool
	AllowDetachStorage    bool
	MaxSubstationsPerStep int
}

// DefaultParameters permits detachment of every element type and up to
// five substations touched per step.
func DefaultParameters() Parameters {
	return Parameters{
		AllowDetachment:       true,
		AllowDetachLoad:       true,
		AllowDetachGen:        true,
		AllowDetachStorage:    true,
		MaxSubstationsPerStep: 5,
	}
}

// MaxSubstationsChanged rejects actions touching more substations than the
// parameters allow. A non-positive limit disables the check.
func MaxSubstationsChanged(p Parameters) PolicyCheck {
	return func(a *Action, reg *Registry) error {
		if p.MaxSubstationsPerStep <= 0 {
			return nil
		}
		if touched := a.TouchedSubstations(); len(touched) > p.MaxSubstationsPerStep {
			return &types.IllegalActionError{
				Reason: fmt.Sprintf("action touches %d substations, at most %d allowed", len(touched), p.MaxSubstationsPerStep),
			}
		}
		return nil
	}
}

// DetachmentAllowed rejects detach flags the parameters forbid.
func DetachmentAllowed(p Parameters) PolicyCheck {
	return func(a *Action, reg *Registry) error {
		deny := func(flags []bool, allowed bool, kind ElementKind) error {
			for i, v := range flags {
				if v && (!p.AllowDetachment || !allowed) {
					return &types.IllegalActionError{
						Reason: fmt.Sprintf("detachment of %s %d is not permitted by the environment parameters", kind, i),
					}
				}
			}
			return nil
		}
		if err := deny(a.detachLoad, p.AllowDetachLoad, LoadKind); err != nil {
			return err
		}
		if err := deny(a.detachGen, p.AllowDetachGen, GenKind); err != nil {
			return err
		}
		return deny(a.detachStorage, p.AllowDetachStorage, StorageKind)
	}
}

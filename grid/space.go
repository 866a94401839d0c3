package grid

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// Space builds actions bound to one registry and one parameter set. It
// holds both by reference and never mutates them.
type Space struct {
	reg    *Registry
	params Parameters
	keys   KeySet
}

// NewSpace returns an action space for the complete action class.
func NewSpace(reg *Registry, params Parameters) *Space {
	return NewSpaceWithKeys(reg, params, FullKeys)
}

// NewSpaceWithKeys returns an action space for a reduced action class.
func NewSpaceWithKeys(reg *Registry, params Parameters, keys KeySet) *Space {
	return &Space{reg: reg, params: params, keys: keys}
}

func (s *Space) Registry() *Registry {
	return s.reg
}

func (s *Space) Parameters() Parameters {
	return s.params
}

// AuthorizedKeys lists the field names actions from this space accept.
func (s *Space) AuthorizedKeys() []string {
	return s.keys.Names()
}

// Empty returns an action with every field untouched.
func (s *Space) Empty() *Action {
	return NewAction(s.reg, s.keys)
}

// FromDict builds an action from a structured mapping, applying the field
// setters key by key.
func (s *Space) FromDict(dict map[string]any) (*Action, error) {
	a := s.Empty()
	if err := a.FromDict(dict); err != nil {
		return nil, err
	}
	return a, nil
}

// FromJSON builds an action from the interchange text form.
func (s *Space) FromJSON(data []byte) (*Action, error) {
	a := s.Empty()
	if err := a.FromJSON(data); err != nil {
		return nil, err
	}
	return a, nil
}

// FromVect builds an action from the flat vector form.
func (s *Space) FromVect(vect []float64) (*Action, error) {
	a := s.Empty()
	if err := a.FromVect(vect); err != nil {
		return nil, err
	}
	return a, nil
}

// Validate runs ambiguity validation plus the policy checks derived from
// the space parameters.
func (s *Space) Validate(a *Action) (bool, error) {
	return ValidateWith(a, s.reg,
		DetachmentAllowed(s.params),
		MaxSubstationsChanged(s.params),
	)
}

// Sample draws a random single field action: a bus assignment, a toggle,
// or a detachment, weighted by the number of targets each field offers.
// Detach fields are only drawn when the parameters permit them.
func (s *Space) Sample(src rand.Source) *Action {
	rng := rand.New(src)
	a := s.Empty()

	weights := make([]float64, 0, 5)
	keys := make([]Key, 0, 5)
	add := func(k Key, w int) {
		if w > 0 && s.keys.Has(k) {
			weights = append(weights, float64(w))
			keys = append(keys, k)
		}
	}
	add(KeySetBus, s.reg.Dim())
	add(KeyChangeBus, s.reg.Dim())
	if s.params.AllowDetachment {
		if s.params.AllowDetachLoad {
			add(KeyDetachLoad, s.reg.NLoad)
		}
		if s.params.AllowDetachGen {
			add(KeyDetachGen, s.reg.NGen)
		}
		if s.params.AllowDetachStorage {
			add(KeyDetachStorage, s.reg.NStorage)
		}
	}
	if len(keys) == 0 {
		return a
	}

	i, ok := sampleuv.NewWeighted(weights, src).Take()
	if !ok {
		return a
	}
	switch keys[i] {
	case KeySetBus:
		slot := rng.Intn(s.reg.Dim())
		bus := []int{-1, 1, 2}[rng.Intn(3)]
		a.Set(KeySetBus, BusAssign{Pos: slot, Bus: bus})
	case KeyChangeBus:
		a.Set(KeyChangeBus, rng.Intn(s.reg.Dim()))
	case KeyDetachLoad:
		a.Set(KeyDetachLoad, rng.Intn(s.reg.NLoad))
	case KeyDetachGen:
		a.Set(KeyDetachGen, rng.Intn(s.reg.NGen))
	case KeyDetachStorage:
		a.Set(KeyDetachStorage, rng.Intn(s.reg.NStorage))
	}
	return a
}

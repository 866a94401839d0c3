package grid

import (
	"fmt"
	"sort"

	"github.com/voltgrid/gridenv/types"
)

// BusAssign targets one position with a busbar value: -1 disconnects,
// 1 and above pick a busbar, 0 clears a previous assignment.
type BusAssign struct {
	Pos int
	Bus int
}

// Action is one step's worth of topology deltas. Fields left untouched
// mean "no modification"; the environment, not the action, carries the
// persistence of previous steps.
type Action struct {
	reg  *Registry
	keys KeySet

	// slot -> target bus; zero values are never stored
	setBus map[int]int
	// slots whose busbar should be toggled
	changeBus map[int]struct{}

	// element indexed flags with matching modification markers
	detachLoad         []bool
	detachGen          []bool
	detachStorage      []bool
	modifDetachLoad    []bool
	modifDetachGen     []bool
	modifDetachStorage []bool
}

var _ types.Action = &Action{}

// NewAction builds an untouched action bound to a registry and a key set.
func NewAction(reg *Registry, keys KeySet) *Action {
	return &Action{
		reg:  reg,
		keys: keys,

		setBus:    make(map[int]int),
		changeBus: make(map[int]struct{}),

		detachLoad:         make([]bool, reg.NLoad),
		detachGen:          make([]bool, reg.NGen),
		detachStorage:      make([]bool, reg.NStorage),
		modifDetachLoad:    make([]bool, reg.NLoad),
		modifDetachGen:     make([]bool, reg.NGen),
		modifDetachStorage: make([]bool, reg.NStorage),
	}
}

// Registry returns the registry the action is bound to.
func (a *Action) Registry() *Registry {
	return a.reg
}

// AuthorizedKeys lists the field names this action class accepts.
func (a *Action) AuthorizedKeys() []string {
	return a.keys.Names()
}

// Copy returns an independent action with the same effective fields.
func (a *Action) Copy() *Action {
	n := NewAction(a.reg, a.keys)
	for slot, bus := range a.setBus {
		n.setBus[slot] = bus
	}
	for slot := range a.changeBus {
		n.changeBus[slot] = struct{}{}
	}
	copy(n.detachLoad, a.detachLoad)
	copy(n.detachGen, a.detachGen)
	copy(n.detachStorage, a.detachStorage)
	copy(n.modifDetachLoad, a.modifDetachLoad)
	copy(n.modifDetachGen, a.modifDetachGen)
	copy(n.modifDetachStorage, a.modifDetachStorage)
	return n
}

// Set assigns one field. The accepted value shapes per field family are
// resolved by a single normalization layer; anything else fails with an
// InvalidActionFieldError before the action is touched.
func (a *Action) Set(key Key, value any) error {
	if key >= numKeys {
		return &types.UnauthorizedFieldError{Field: key.String()}
	}
	if !a.keys.Has(key) {
		return &types.UnauthorizedFieldError{Field: key.String()}
	}
	switch key {
	case KeySetBus:
		return a.setBusSlots(key, value, a.reg.Dim(), nil)
	case KeyLoadSetBus:
		return a.setBusSlots(key, value, a.reg.NLoad, a.reg.LoadPos)
	case KeyGenSetBus:
		return a.setBusSlots(key, value, a.reg.NGen, a.reg.GenPos)
	case KeyStorageSetBus:
		return a.setBusSlots(key, value, a.reg.NStorage, a.reg.StoragePos)
	case KeyLineOrSetBus:
		return a.setBusSlots(key, value, a.reg.NLine, a.reg.LineOrPos)
	case KeyLineExSetBus:
		return a.setBusSlots(key, value, a.reg.NLine, a.reg.LineExPos)

	case KeyChangeBus:
		return a.setChangeSlots(key, value, a.reg.Dim(), nil, nil)
	case KeyLoadChangeBus:
		return a.setChangeSlots(key, value, a.reg.NLoad, a.reg.LoadPos, a.reg.LoadIndex)
	case KeyGenChangeBus:
		return a.setChangeSlots(key, value, a.reg.NGen, a.reg.GenPos, a.reg.GenIndex)
	case KeyStorageChangeBus:
		return a.setChangeSlots(key, value, a.reg.NStorage, a.reg.StoragePos, a.reg.StorageIndex)
	case KeyLineOrChangeBus:
		return a.setChangeSlots(key, value, a.reg.NLine, a.reg.LineOrPos, a.reg.LineIndex)
	case KeyLineExChangeBus:
		return a.setChangeSlots(key, value, a.reg.NLine, a.reg.LineExPos, a.reg.LineIndex)

	case KeyDetachLoad:
		return a.setDetach(key, value, a.detachLoad, a.modifDetachLoad, a.reg.LoadIndex)
	case KeyDetachGen:
		return a.setDetach(key, value, a.detachGen, a.modifDetachGen, a.reg.GenIndex)
	case KeyDetachStorage:
		return a.setDetach(key, value, a.detachStorage, a.modifDetachStorage, a.reg.StorageIndex)
	}
	return &types.UnauthorizedFieldError{Field: key.String()}
}

// SetField is Set with a string field name, used by the structured codec.
func (a *Action) SetField(name string, value any) error {
	key, ok := ParseKey(name)
	if !ok {
		return &types.UnauthorizedFieldError{Field: name}
	}
	return a.Set(key, value)
}

func (a *Action) setBusSlots(key Key, value any, n int, pos []int) error {
	assigns, err := normalizeBusAssigns(key, value, n)
	if err != nil {
		return err
	}
	for _, as := range assigns {
		slot := as.Pos
		if pos != nil {
			slot = pos[as.Pos]
		}
		if as.Bus == 0 {
			delete(a.setBus, slot)
			continue
		}
		a.setBus[slot] = as.Bus
	}
	return nil
}

func (a *Action) setChangeSlots(key Key, value any, n int, pos []int, lookup func(string) (int, bool)) error {
	full, idxs, err := normalizeBoolSelector(key, value, n, lookup)
	if err != nil {
		return err
	}
	if full != nil {
		if pos == nil {
			// wholesale replacement of the toggle set
			a.changeBus = make(map[int]struct{})
		}
		for i, v := range full {
			slot := i
			if pos != nil {
				slot = pos[i]
			}
			if v {
				a.changeBus[slot] = struct{}{}
			} else if pos != nil {
				delete(a.changeBus, slot)
			}
		}
		return nil
	}
	for _, i := range idxs {
		slot := i
		if pos != nil {
			slot = pos[i]
		}
		a.changeBus[slot] = struct{}{}
	}
	return nil
}

func (a *Action) setDetach(key Key, value any, flags, modif []bool, lookup func(string) (int, bool)) error {
	full, idxs, err := normalizeBoolSelector(key, value, len(flags), lookup)
	if err != nil {
		return err
	}
	if full != nil {
		copy(flags, full)
		for i := range modif {
			modif[i] = true
		}
		return nil
	}
	for _, i := range idxs {
		flags[i] = true
		modif[i] = true
	}
	return nil
}

// Get returns the effective value of a field: set_bus as sorted
// assignments, change_bus as sorted slots, detach flags as a bool slice.
func (a *Action) Get(key Key) (any, error) {
	if key >= numKeys || !a.keys.Has(key) {
		return nil, &types.UnauthorizedFieldError{Field: key.String()}
	}
	switch key {
	case KeySetBus:
		return a.BusAssigns(), nil
	case KeyChangeBus:
		return a.ChangedSlots(), nil
	case KeyDetachLoad:
		out := make([]bool, len(a.detachLoad))
		copy(out, a.detachLoad)
		return out, nil
	case KeyDetachGen:
		out := make([]bool, len(a.detachGen))
		copy(out, a.detachGen)
		return out, nil
	case KeyDetachStorage:
		out := make([]bool, len(a.detachStorage))
		copy(out, a.detachStorage)
		return out, nil
	}
	return nil, &types.InvalidActionFieldError{Field: key.String(), Reason: "field is write-only, read the core field instead"}
}

// BusAssigns returns the live set_bus entries sorted by slot.
func (a *Action) BusAssigns() []BusAssign {
	out := make([]BusAssign, 0, len(a.setBus))
	for slot, bus := range a.setBus {
		out = append(out, BusAssign{Pos: slot, Bus: bus})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Pos < out[j].Pos })
	return out
}

// ChangedSlots returns the toggled slots in increasing order.
func (a *Action) ChangedSlots() []int {
	out := make([]int, 0, len(a.changeBus))
	for slot := range a.changeBus {
		out = append(out, slot)
	}
	sort.Ints(out)
	return out
}

// TouchedSubstations returns the distinct substations referenced by the
// live set_bus and change_bus entries, for policy checks layered above
// validation.
func (a *Action) TouchedSubstations() []int {
	subs := make(map[int]struct{})
	for slot := range a.setBus {
		if s := a.reg.SubstationOf(slot); s >= 0 {
			subs[s] = struct{}{}
		}
	}
	for slot := range a.changeBus {
		if s := a.reg.SubstationOf(slot); s >= 0 {
			subs[s] = struct{}{}
		}
	}
	out := make([]int, 0, len(subs))
	for s := range subs {
		out = append(out, s)
	}
	sort.Ints(out)
	return out
}

// IsEmpty reports whether the action modifies nothing.
func (a *Action) IsEmpty() bool {
	if len(a.setBus) != 0 || len(a.changeBus) != 0 {
		return false
	}
	for _, flags := range [][]bool{a.detachLoad, a.detachGen, a.detachStorage} {
		for _, v := range flags {
			if v {
				return false
			}
		}
	}
	return true
}

// Equal compares effective semantics: untouched fields resolve to their
// neutral default, and the modification markers are never compared.
func (a *Action) Equal(other *Action) bool {
	if other == nil {
		return false
	}
	if len(a.setBus) != len(other.setBus) {
		return false
	}
	for slot, bus := range a.setBus {
		if other.setBus[slot] != bus {
			return false
		}
	}
	if len(a.changeBus) != len(other.changeBus) {
		return false
	}
	for slot := range a.changeBus {
		if _, ok := other.changeBus[slot]; !ok {
			return false
		}
	}
	return boolsEqual(a.detachLoad, other.detachLoad) &&
		boolsEqual(a.detachGen, other.detachGen) &&
		boolsEqual(a.detachStorage, other.detachStorage)
}

func boolsEqual(a, b []bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Hash is a deterministic digest of the effective fields.
func (a *Action) Hash() string {
	return fmt.Sprintf("set:%v|chg:%v|dl:%v|dg:%v|ds:%v",
		a.BusAssigns(), a.ChangedSlots(), trueIdx(a.detachLoad), trueIdx(a.detachGen), trueIdx(a.detachStorage))
}

func (a *Action) String() string {
	return a.Hash()
}

func trueIdx(flags []bool) []int {
	out := make([]int, 0)
	for i, v := range flags {
		if v {
			out = append(out, i)
		}
	}
	return out
}

// normalizeBoolSelector resolves the accepted shapes of a boolean element
// field into either a full replacement array or a list of indices to raise.
// Shapes: full bool slice, one index, one name, a slice or set of indices
// or names, and their JSON decoded equivalents.
func normalizeBoolSelector(key Key, v any, n int, lookup func(string) (int, bool)) ([]bool, []int, error) {
	field := key.String()
	badShape := func(reason string) error {
		return &types.InvalidActionFieldError{Field: field, Reason: reason}
	}
	checkIdx := func(i int) error {
		if i < 0 || i >= n {
			return badShape(fmt.Sprintf("index %d outside [0, %d)", i, n))
		}
		return nil
	}
	byName := func(name string) (int, error) {
		if lookup == nil {
			return 0, badShape("field does not accept element names")
		}
		i, ok := lookup(name)
		if !ok {
			return 0, badShape(fmt.Sprintf("unknown element name %q", name))
		}
		return i, nil
	}

	switch val := v.(type) {
	case []bool:
		if len(val) != n {
			return nil, nil, badShape(fmt.Sprintf("bool array has length %d, want %d", len(val), n))
		}
		full := make([]bool, n)
		copy(full, val)
		return full, nil, nil
	case int:
		if err := checkIdx(val); err != nil {
			return nil, nil, err
		}
		return nil, []int{val}, nil
	case float64:
		i := int(val)
		if float64(i) != val {
			return nil, nil, badShape("non-integer index")
		}
		if err := checkIdx(i); err != nil {
			return nil, nil, err
		}
		return nil, []int{i}, nil
	case string:
		i, err := byName(val)
		if err != nil {
			return nil, nil, err
		}
		return nil, []int{i}, nil
	case []int:
		idxs := make([]int, 0, len(val))
		for _, i := range val {
			if err := checkIdx(i); err != nil {
				return nil, nil, err
			}
			idxs = append(idxs, i)
		}
		return nil, idxs, nil
	case []string:
		idxs := make([]int, 0, len(val))
		for _, name := range val {
			i, err := byName(name)
			if err != nil {
				return nil, nil, err
			}
			idxs = append(idxs, i)
		}
		return nil, idxs, nil
	case map[string]struct{}:
		names := make([]string, 0, len(val))
		for name := range val {
			names = append(names, name)
		}
		sort.Strings(names)
		return normalizeBoolSelector(key, names, n, lookup)
	case map[string]bool:
		names := make([]string, 0, len(val))
		for name, on := range val {
			if on {
				names = append(names, name)
			}
		}
		sort.Strings(names)
		return normalizeBoolSelector(key, names, n, lookup)
	case []any:
		// a JSON decoded full bool array or a mixed list of indices and names
		if len(val) == n {
			allBool := len(val) > 0
			for _, e := range val {
				if _, ok := e.(bool); !ok {
					allBool = false
					break
				}
			}
			if allBool {
				full := make([]bool, n)
				for i, e := range val {
					full[i] = e.(bool)
				}
				return full, nil, nil
			}
		}
		idxs := make([]int, 0, len(val))
		for _, e := range val {
			switch ev := e.(type) {
			case int:
				if err := checkIdx(ev); err != nil {
					return nil, nil, err
				}
				idxs = append(idxs, ev)
			case float64:
				i := int(ev)
				if float64(i) != ev {
					return nil, nil, badShape("non-integer index")
				}
				if err := checkIdx(i); err != nil {
					return nil, nil, err
				}
				idxs = append(idxs, i)
			case string:
				i, err := byName(ev)
				if err != nil {
					return nil, nil, err
				}
				idxs = append(idxs, i)
			default:
				return nil, nil, badShape(fmt.Sprintf("unsupported list element of type %T", e))
			}
		}
		return nil, idxs, nil
	}
	return nil, nil, badShape(fmt.Sprintf("unsupported value of type %T", v))
}

// normalizeBusAssigns resolves the accepted shapes of a bus field into a
// list of (pos, bus) assignments over [0, n). Shapes: one assignment, a
// slice of assignments or pairs, a full length int array with 0 meaning
// untouched, and their JSON decoded equivalents.
func normalizeBusAssigns(key Key, v any, n int) ([]BusAssign, error) {
	field := key.String()
	badShape := func(reason string) error {
		return &types.InvalidActionFieldError{Field: field, Reason: reason}
	}
	check := func(as BusAssign) error {
		if as.Pos < 0 || as.Pos >= n {
			return badShape(fmt.Sprintf("position %d outside [0, %d)", as.Pos, n))
		}
		if as.Bus < -1 {
			return badShape(fmt.Sprintf("bus value %d below -1", as.Bus))
		}
		return nil
	}

	switch val := v.(type) {
	case BusAssign:
		if err := check(val); err != nil {
			return nil, err
		}
		return []BusAssign{val}, nil
	case []BusAssign:
		out := make([]BusAssign, 0, len(val))
		for _, as := range val {
			if err := check(as); err != nil {
				return nil, err
			}
			out = append(out, as)
		}
		return out, nil
	case [2]int:
		return normalizeBusAssigns(key, BusAssign{Pos: val[0], Bus: val[1]}, n)
	case [][2]int:
		out := make([]BusAssign, 0, len(val))
		for _, p := range val {
			as := BusAssign{Pos: p[0], Bus: p[1]}
			if err := check(as); err != nil {
				return nil, err
			}
			out = append(out, as)
		}
		return out, nil
	case []int:
		if len(val) != n {
			return nil, badShape(fmt.Sprintf("int array has length %d, want %d", len(val), n))
		}
		out := make([]BusAssign, 0)
		for pos, bus := range val {
			as := BusAssign{Pos: pos, Bus: bus}
			if bus == 0 {
				continue
			}
			if err := check(as); err != nil {
				return nil, err
			}
			out = append(out, as)
		}
		return out, nil
	case []any:
		// JSON decoded: either a list of [pos, bus] pairs or a full array
		if len(val) == n {
			allNum := len(val) > 0
			for _, e := range val {
				if _, ok := e.(float64); !ok {
					allNum = false
					break
				}
			}
			if allNum {
				full := make([]int, n)
				for i, e := range val {
					f := e.(float64)
					if float64(int(f)) != f {
						return nil, badShape("non-integer bus value")
					}
					full[i] = int(f)
				}
				return normalizeBusAssigns(key, full, n)
			}
		}
		out := make([]BusAssign, 0, len(val))
		for _, e := range val {
			pair, ok := e.([]any)
			if !ok || len(pair) != 2 {
				return nil, badShape("expected a list of [pos, bus] pairs")
			}
			pf, ok1 := toInt(pair[0])
			bf, ok2 := toInt(pair[1])
			if !ok1 || !ok2 {
				return nil, badShape("non-integer [pos, bus] pair")
			}
			as := BusAssign{Pos: pf, Bus: bf}
			if err := check(as); err != nil {
				return nil, err
			}
			out = append(out, as)
		}
		return out, nil
	}
	return nil, badShape(fmt.Sprintf("unsupported value of type %T", v))
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		if float64(int(n)) != n {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}

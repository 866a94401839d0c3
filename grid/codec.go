package grid

import (
	"encoding/json"
	"fmt"

	"github.com/voltgrid/gridenv/types"
)

// ToDict encodes the action as a flat mapping keyed by field names. Only
// touched fields appear; values are primitive so the mapping survives any
// text encoder verbatim. Serialization never validates ambiguity.
func (a *Action) ToDict() map[string]any {
	out := make(map[string]any)
	if len(a.setBus) > 0 {
		pairs := make([][2]int, 0, len(a.setBus))
		for _, as := range a.BusAssigns() {
			pairs = append(pairs, [2]int{as.Pos, as.Bus})
		}
		out[KeySetBus.String()] = pairs
	}
	if len(a.changeBus) > 0 {
		out[KeyChangeBus.String()] = a.ChangedSlots()
	}
	if idx := trueIdx(a.detachLoad); len(idx) > 0 {
		out[KeyDetachLoad.String()] = idx
	}
	if idx := trueIdx(a.detachGen); len(idx) > 0 {
		out[KeyDetachGen.String()] = idx
	}
	if idx := trueIdx(a.detachStorage); len(idx) > 0 {
		out[KeyDetachStorage.String()] = idx
	}
	return out
}

// ToJSON encodes the dict form through encoding/json.
func (a *Action) ToJSON() ([]byte, error) {
	return json.Marshal(a.ToDict())
}

// VectSize returns the length of the flat vector form for a registry:
// one set_bus and one change_bus region over the topology vector followed
// by one detach region per element type, in key declaration order.
func VectSize(reg *Registry) int {
	return 2*reg.Dim() + reg.NLoad + reg.NGen + reg.NStorage
}

// ToVect encodes the action as a fixed length numeric vector. The layout
// depends only on the registry and the field declaration order, never on
// which fields are populated: set_bus uses 0 for untouched slots, the
// remaining regions use 0/1 flags.
func (a *Action) ToVect() []float64 {
	dim := a.reg.Dim()
	vect := make([]float64, VectSize(a.reg))
	for slot, bus := range a.setBus {
		vect[slot] = float64(bus)
	}
	for slot := range a.changeBus {
		vect[dim+slot] = 1
	}
	off := 2 * dim
	for _, flags := range [][]bool{a.detachLoad, a.detachGen, a.detachStorage} {
		for i, v := range flags {
			if v {
				vect[off+i] = 1
			}
		}
		off += len(flags)
	}
	return vect
}

// FromVect decodes a flat vector in place. The vector length and every
// region's value range are checked; a mismatch is a hard failure, never a
// silent reinterpretation.
func (a *Action) FromVect(vect []float64) error {
	malformed := func(reason string) error {
		return &types.MalformedSerializationError{Form: "vector", Reason: reason}
	}
	if len(vect) != VectSize(a.reg) {
		return malformed(fmt.Sprintf("length %d, want %d for this registry", len(vect), VectSize(a.reg)))
	}
	dim := a.reg.Dim()

	setBus := make(map[int]int, dim)
	for slot := 0; slot < dim; slot++ {
		bus := int(vect[slot])
		if float64(bus) != vect[slot] || bus < -1 {
			return malformed(fmt.Sprintf("set_bus slot %d holds %v", slot, vect[slot]))
		}
		if bus != 0 {
			setBus[slot] = bus
		}
	}
	changeBus := make(map[int]struct{}, dim)
	for slot := 0; slot < dim; slot++ {
		switch vect[dim+slot] {
		case 0:
		case 1:
			changeBus[slot] = struct{}{}
		default:
			return malformed(fmt.Sprintf("change_bus slot %d holds %v", slot, vect[dim+slot]))
		}
	}
	off := 2 * dim
	regions := [][]bool{
		make([]bool, a.reg.NLoad),
		make([]bool, a.reg.NGen),
		make([]bool, a.reg.NStorage),
	}
	names := []string{"detach_load", "detach_gen", "detach_storage"}
	for ri, flags := range regions {
		for i := range flags {
			switch vect[off+i] {
			case 0:
			case 1:
				flags[i] = true
			default:
				return malformed(fmt.Sprintf("%s index %d holds %v", names[ri], i, vect[off+i]))
			}
		}
		off += len(flags)
	}

	a.setBus = setBus
	a.changeBus = changeBus
	a.detachLoad = regions[0]
	a.detachGen = regions[1]
	a.detachStorage = regions[2]
	a.modifDetachLoad = make([]bool, a.reg.NLoad)
	a.modifDetachGen = make([]bool, a.reg.NGen)
	a.modifDetachStorage = make([]bool, a.reg.NStorage)
	for ri, modif := range [][]bool{a.modifDetachLoad, a.modifDetachGen, a.modifDetachStorage} {
		for i, v := range regions[ri] {
			modif[i] = v
		}
	}
	return nil
}

// FromDict applies a structured mapping to the action. Keys outside the
// taxonomy fail with MalformedSerialization, known but unauthorized keys
// with UnauthorizedField, wrong value shapes with InvalidActionField.
func (a *Action) FromDict(dict map[string]any) error {
	for name, value := range dict {
		key, ok := ParseKey(name)
		if !ok {
			return &types.MalformedSerializationError{Form: "dict", Reason: fmt.Sprintf("unknown key %q", name)}
		}
		if err := a.Set(key, value); err != nil {
			return err
		}
	}
	return nil
}

// FromJSON decodes the interchange text form, the dict form passed
// through encoding/json.
func (a *Action) FromJSON(data []byte) error {
	dict := make(map[string]any)
	if err := json.Unmarshal(data, &dict); err != nil {
		return &types.MalformedSerializationError{Form: "json", Reason: err.Error()}
	}
	return a.FromDict(dict)
}

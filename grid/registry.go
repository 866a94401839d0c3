package grid

import (
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/exp/slices"
)

// ElementKind identifies the type of a grid element owning a topology slot.
type ElementKind int

const (
	LoadKind ElementKind = iota
	GenKind
	StorageKind
	LineOrKind
	LineExKind
)

func (k ElementKind) String() string {
	switch k {
	case LoadKind:
		return "load"
	case GenKind:
		return "gen"
	case StorageKind:
		return "storage"
	case LineOrKind:
		return "line_or"
	case LineExKind:
		return "line_ex"
	}
	return "unknown"
}

// Registry holds the static per-environment description of the grid:
// element counts, ordered names, and the position of every element
// terminal in the flattened topology vector. It is built once at
// environment construction and never mutated afterwards.
type Registry struct {
	NLoad    int `json:"n_load"`
	NGen     int `json:"n_gen"`
	NStorage int `json:"n_storage"`
	NLine    int `json:"n_line"`
	NSub     int `json:"n_sub"`

	NameLoad    []string `json:"name_load"`
	NameGen     []string `json:"name_gen"`
	NameStorage []string `json:"name_storage"`
	NameLine    []string `json:"name_line"`

	// element index -> slot in the topology vector
	LoadPos    []int `json:"load_pos_topo_vect"`
	GenPos     []int `json:"gen_pos_topo_vect"`
	StoragePos []int `json:"storage_pos_topo_vect"`
	LineOrPos  []int `json:"line_or_pos_topo_vect"`
	LineExPos  []int `json:"line_ex_pos_topo_vect"`

	// slot -> substation id
	SubOf []int `json:"sub_of_topo_vect"`
}

// Dim returns the length of the topology vector, one slot per terminal.
func (r *Registry) Dim() int {
	return r.NLoad + r.NGen + r.NStorage + 2*r.NLine
}

// Check verifies internal consistency: name and position tables match the
// counts and the position tables form a bijection onto [0, Dim()).
func (r *Registry) Check() error {
	if len(r.NameLoad) != r.NLoad || len(r.LoadPos) != r.NLoad {
		return fmt.Errorf("registry: load tables do not match n_load=%d", r.NLoad)
	}
	if len(r.NameGen) != r.NGen || len(r.GenPos) != r.NGen {
		return fmt.Errorf("registry: gen tables do not match n_gen=%d", r.NGen)
	}
	if len(r.NameStorage) != r.NStorage || len(r.StoragePos) != r.NStorage {
		return fmt.Errorf("registry: storage tables do not match n_storage=%d", r.NStorage)
	}
	if len(r.NameLine) != r.NLine || len(r.LineOrPos) != r.NLine || len(r.LineExPos) != r.NLine {
		return fmt.Errorf("registry: line tables do not match n_line=%d", r.NLine)
	}
	if len(r.SubOf) != 0 && len(r.SubOf) != r.Dim() {
		return fmt.Errorf("registry: sub_of table has length %d, want %d", len(r.SubOf), r.Dim())
	}
	seen := make([]bool, r.Dim())
	mark := func(pos []int, kind ElementKind) error {
		for i, p := range pos {
			if p < 0 || p >= r.Dim() {
				return fmt.Errorf("registry: %s %d has slot %d outside [0, %d)", kind, i, p, r.Dim())
			}
			if seen[p] {
				return fmt.Errorf("registry: slot %d assigned twice", p)
			}
			seen[p] = true
		}
		return nil
	}
	for _, t := range []struct {
		pos  []int
		kind ElementKind
	}{
		{r.LoadPos, LoadKind},
		{r.GenPos, GenKind},
		{r.StoragePos, StorageKind},
		{r.LineOrPos, LineOrKind},
		{r.LineExPos, LineExKind},
	} {
		if err := mark(t.pos, t.kind); err != nil {
			return err
		}
	}
	for slot, ok := range seen {
		if !ok {
			return fmt.Errorf("registry: slot %d not assigned to any terminal", slot)
		}
	}
	return nil
}

// Owner returns the kind and element index owning a topology slot.
func (r *Registry) Owner(slot int) (ElementKind, int, bool) {
	for _, t := range []struct {
		pos  []int
		kind ElementKind
	}{
		{r.LoadPos, LoadKind},
		{r.GenPos, GenKind},
		{r.StoragePos, StorageKind},
		{r.LineOrPos, LineOrKind},
		{r.LineExPos, LineExKind},
	} {
		if i := slices.Index(t.pos, slot); i >= 0 {
			return t.kind, i, true
		}
	}
	return 0, 0, false
}

func (r *Registry) LoadIndex(name string) (int, bool) {
	i := slices.Index(r.NameLoad, name)
	return i, i >= 0
}

func (r *Registry) GenIndex(name string) (int, bool) {
	i := slices.Index(r.NameGen, name)
	return i, i >= 0
}

func (r *Registry) StorageIndex(name string) (int, bool) {
	i := slices.Index(r.NameStorage, name)
	return i, i >= 0
}

func (r *Registry) LineIndex(name string) (int, bool) {
	i := slices.Index(r.NameLine, name)
	return i, i >= 0
}

// SubstationOf returns the substation owning a slot, or -1 when the
// registry carries no substation table.
func (r *Registry) SubstationOf(slot int) int {
	if len(r.SubOf) != r.Dim() || slot < 0 || slot >= len(r.SubOf) {
		return -1
	}
	return r.SubOf[slot]
}

// RegistryFromFile reads a registry description from a JSON file.
func RegistryFromFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	reg := &Registry{}
	if err := json.Unmarshal(data, reg); err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	if err := reg.Check(); err != nil {
		return nil, err
	}
	return reg, nil
}

// DefaultRegistry returns a small five substation grid with three loads,
// two generators, one storage unit and four lines. Slot layout, per
// substation: terminals are grouped by substation in increasing order.
func DefaultRegistry() *Registry {
	reg := &Registry{
		NLoad:    3,
		NGen:     2,
		NStorage: 1,
		NLine:    4,
		NSub:     5,

		NameLoad:    []string{"load_1_0", "load_3_1", "load_4_2"},
		NameGen:     []string{"gen_0_0", "gen_2_1"},
		NameStorage: []string{"storage_1_0"},
		NameLine:    []string{"line_0_1", "line_1_2", "line_2_3", "line_3_4"},

		// sub 0: gen_0_0, line_0_1(or)
		// sub 1: load_1_0, storage_1_0, line_0_1(ex), line_1_2(or)
		// sub 2: gen_2_1, line_1_2(ex), line_2_3(or)
		// sub 3: load_3_1, line_2_3(ex), line_3_4(or)
		// sub 4: load_4_2, line_3_4(ex)
		LoadPos:    []int{2, 10, 13},
		GenPos:     []int{0, 6},
		StoragePos: []int{3},
		LineOrPos:  []int{1, 5, 8, 11},
		LineExPos:  []int{4, 7, 9, 12},

		SubOf: []int{0, 0, 1, 1, 1, 1, 2, 2, 2, 3, 3, 3, 4, 4},
	}
	return reg
}

package grid

// Key identifies one settable field of an Action. The declaration order of
// the core keys fixes the layout of the flat vector form.
type Key uint

const (
	KeySetBus Key = iota
	KeyChangeBus
	KeyDetachLoad
	KeyDetachGen
	KeyDetachStorage

	// per element type aliases, element indexed, translated through the registry
	KeyLoadSetBus
	KeyGenSetBus
	KeyStorageSetBus
	KeyLineOrSetBus
	KeyLineExSetBus
	KeyLoadChangeBus
	KeyGenChangeBus
	KeyStorageChangeBus
	KeyLineOrChangeBus
	KeyLineExChangeBus

	numKeys
)

var keyNames = [numKeys]string{
	"set_bus",
	"change_bus",
	"detach_load",
	"detach_gen",
	"detach_storage",
	"load_set_bus",
	"gen_set_bus",
	"storage_set_bus",
	"line_or_set_bus",
	"line_ex_set_bus",
	"load_change_bus",
	"gen_change_bus",
	"storage_change_bus",
	"line_or_change_bus",
	"line_ex_change_bus",
}

func (k Key) String() string {
	if k < numKeys {
		return keyNames[k]
	}
	return "unknown"
}

// ParseKey maps a field name to its Key. The second return is false for
// names outside the taxonomy.
func ParseKey(name string) (Key, bool) {
	for k, n := range keyNames {
		if n == name {
			return Key(k), true
		}
	}
	return 0, false
}

// KeySet is the capability mask of an action variant. Assigning a field
// whose key is not in the set fails without touching the action.
type KeySet uint32

func (s KeySet) Has(k Key) bool {
	return s&(1<<k) != 0
}

func (s KeySet) With(keys ...Key) KeySet {
	for _, k := range keys {
		s |= 1 << k
	}
	return s
}

func (s KeySet) Without(keys ...Key) KeySet {
	for _, k := range keys {
		s &^= 1 << k
	}
	return s
}

// Names lists the authorized field names in declaration order.
func (s KeySet) Names() []string {
	names := make([]string, 0, numKeys)
	for k := Key(0); k < numKeys; k++ {
		if s.Has(k) {
			names = append(names, k.String())
		}
	}
	return names
}

// FullKeys authorizes every field of the complete action class.
var FullKeys = KeySet(0).With(
	KeySetBus, KeyChangeBus,
	KeyDetachLoad, KeyDetachGen, KeyDetachStorage,
	KeyLoadSetBus, KeyGenSetBus, KeyStorageSetBus, KeyLineOrSetBus, KeyLineExSetBus,
	KeyLoadChangeBus, KeyGenChangeBus, KeyStorageChangeBus, KeyLineOrChangeBus, KeyLineExChangeBus,
)

// SetOnlyKeys is the reduced action class without the change_bus family.
var SetOnlyKeys = FullKeys.Without(
	KeyChangeBus,
	KeyLoadChangeBus, KeyGenChangeBus, KeyStorageChangeBus, KeyLineOrChangeBus, KeyLineExChangeBus,
)

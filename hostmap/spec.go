package hostmap

import (
	"encoding/binary"
	"fmt"

	"github.com/wippyai/gadget-wasmapi/errors"
	"github.com/wippyai/gadget-wasmapi/wire"
)

// Type is the kind of store backing a map. Values follow the kernel's
// bpf_map_type numbering.
type Type uint32

const (
	Hash           Type = 1
	Array          Type = 2
	PerfEventArray Type = 4
	PerCPUHash     Type = 5
	PerCPUArray    Type = 6
	LRUHash        Type = 9
	RingBuf        Type = 27
)

func (t Type) String() string {
	switch t {
	case Hash:
		return "hash"
	case Array:
		return "array"
	case PerfEventArray:
		return "perf_event_array"
	case PerCPUHash:
		return "percpu_hash"
	case PerCPUArray:
		return "percpu_array"
	case LRUHash:
		return "lru_hash"
	case RingBuf:
		return "ringbuf"
	default:
		return fmt.Sprintf("type(%d)", uint32(t))
	}
}

var types = []Type{Hash, Array, PerfEventArray, PerCPUHash, PerCPUArray, LRUHash, RingBuf}

// ParseType returns the Type named s, as printed by Type.String.
func ParseType(s string) (Type, error) {
	for _, t := range types {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown map type %q", s)
}

// IsEventStream reports whether maps of type t carry records for an event
// reader rather than key/value pairs.
func (t Type) IsEventStream() bool {
	return t == PerfEventArray || t == RingBuf
}

// UpdateFlags controls how Update treats an existing key.
type UpdateFlags uint64

const (
	// UpdateAny creates the key or overwrites it.
	UpdateAny UpdateFlags = 0
	// CreateOnly fails if the key exists.
	CreateOnly UpdateFlags = 1
	// UpdateOnly fails if the key does not exist.
	UpdateOnly UpdateFlags = 2
)

func (f UpdateFlags) String() string {
	switch f {
	case UpdateAny:
		return "any"
	case CreateOnly:
		return "create_only"
	case UpdateOnly:
		return "update_only"
	default:
		return fmt.Sprintf("flags(%d)", uint64(f))
	}
}

// Spec describes a map to create. All fields are fixed at creation.
type Spec struct {
	Name       string
	Type       Type
	KeySize    uint32
	ValueSize  uint32
	MaxEntries uint32
}

// specSize is the encoded size of a Spec.
const specSize = 24

// Validate reports specs the host would reject anyway.
func (s Spec) Validate() error {
	fail := func(format string, args ...any) error {
		return errors.New(errors.OpMapNew, errors.KindCreation).
			Name(s.Name).
			Value(s).
			Detail(format, args...).
			Build()
	}
	switch {
	case s.Name == "":
		return fail("empty map name")
	case s.Type == 0:
		return fail("map type not set")
	case s.MaxEntries == 0 && s.Type != PerfEventArray:
		return fail("max entries must be positive")
	case s.Type.IsEventStream():
		return nil
	case s.KeySize == 0:
		return fail("key size must be positive")
	case s.ValueSize == 0:
		return fail("value size must be positive")
	}
	return nil
}

// encode lays the spec out as the host reads it:
//
//	0  name       packed reference
//	8  type       u32
//	12 keySize    u32
//	16 valueSize  u32
//	20 maxEntries u32
func (s Spec) encode(name wire.Ref) []byte {
	b := make([]byte, specSize)
	binary.LittleEndian.PutUint64(b[0:], name.Word())
	binary.LittleEndian.PutUint32(b[8:], uint32(s.Type))
	binary.LittleEndian.PutUint32(b[12:], s.KeySize)
	binary.LittleEndian.PutUint32(b[16:], s.ValueSize)
	binary.LittleEndian.PutUint32(b[20:], s.MaxEntries)
	return b
}

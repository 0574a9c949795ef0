package field

import "fmt"

// Kind is the host's field type.
type Kind uint32

const (
	KindInvalid Kind = iota
	KindBool
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindString
	KindCString
	KindBytes

	kindCount
)

var kindNames = [...]string{
	KindInvalid: "invalid",
	KindBool:    "bool",
	KindInt8:    "int8",
	KindInt16:   "int16",
	KindInt32:   "int32",
	KindInt64:   "int64",
	KindUint8:   "uint8",
	KindUint16:  "uint16",
	KindUint32:  "uint32",
	KindUint64:  "uint64",
	KindFloat32: "float32",
	KindFloat64: "float64",
	KindString:  "string",
	KindCString: "cstring",
	KindBytes:   "bytes",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint32(k))
}

// IsScalar reports whether values of k travel as a single 64-bit word.
func (k Kind) IsScalar() bool {
	return k >= KindBool && k <= KindFloat64
}

// IsBuffer reports whether values of k travel as a packed reference.
func (k Kind) IsBuffer() bool {
	return k == KindString || k == KindCString || k == KindBytes
}

// Valid reports whether k names a known kind other than KindInvalid.
func (k Kind) Valid() bool {
	return k > KindInvalid && k < kindCount
}

// ParseKind returns the Kind named s, as printed by Kind.String.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s && Kind(k) != KindInvalid {
			return Kind(k), nil
		}
	}
	return KindInvalid, fmt.Errorf("unknown field kind %q", s)
}

package hostmap

import (
	"encoding/binary"
	"fmt"

	"github.com/wippyai/gadget-wasmapi/errors"
)

// encode returns the wire bytes of a key or value.
func encode(op errors.Op, v any) ([]byte, error) {
	if b, ok := v.([]byte); ok {
		return b, nil
	}
	if binary.Size(v) < 0 {
		return nil, errors.TypeMismatch(op, "fixed-size value", typeName(v))
	}
	b, err := binary.Append(nil, binary.LittleEndian, v)
	if err != nil {
		return nil, errors.Wrap(op, errors.KindTypeMismatch, err, "encode "+typeName(v))
	}
	return b, nil
}

// size returns the wire size of a destination: the length of a []byte, or
// the encoded size of what a pointer points to.
func size(op errors.Op, dst any) (uint32, error) {
	if b, ok := dst.([]byte); ok {
		return uint32(len(b)), nil
	}
	n := binary.Size(dst)
	if n < 0 {
		return 0, errors.TypeMismatch(op, "pointer to fixed-size value", typeName(dst))
	}
	return uint32(n), nil
}

// decode fills dst from the wire bytes.
func decode(op errors.Op, b []byte, dst any) error {
	if d, ok := dst.([]byte); ok {
		copy(d, b)
		return nil
	}
	if _, err := binary.Decode(b, binary.LittleEndian, dst); err != nil {
		return errors.Wrap(op, errors.KindTypeMismatch, err, "decode into "+typeName(dst))
	}
	return nil
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}

package field

import (
	"bytes"
	"fmt"

	"github.com/wippyai/gadget-wasmapi/errors"
	"github.com/wippyai/gadget-wasmapi/wire"
)

// GetBytes copies a buffer field into dst and returns the number of bytes
// written, which is at most len(dst). A value longer than dst is truncated.
func (f Field) GetBytes(d Data, dst []byte) (uint32, error) {
	if !wire.Fits(len(dst)) {
		return 0, errors.BufferAccess(errors.OpFieldGetBuffer, fmt.Sprintf("destination of %d bytes too large", len(dst)))
	}
	scratch, err := f.env.Scratch(uint32(len(dst)))
	if err != nil {
		return 0, err
	}
	defer scratch.Release()

	ret := f.env.Imports().FieldGetBuffer(f.handle, uint32(d), uint32(KindBytes), scratch.Ref().Word())
	n, ok := wire.Count(ret)
	if !ok {
		return 0, errors.BufferAccess(errors.OpFieldGetBuffer, fmt.Sprintf("host rejected read of field %d", f.handle))
	}

	out, err := scratch.Bytes(n)
	if err != nil {
		return 0, err
	}
	return uint32(copy(dst, out)), nil
}

// GetString reads a string field of at most maxSize bytes. The value is
// treated as a C string: it ends at the first NUL byte, if any.
func (f Field) GetString(d Data, maxSize uint32) (string, error) {
	buf := make([]byte, maxSize)
	n, err := f.GetBytes(d, buf)
	if err != nil {
		return "", err
	}
	return cString(buf[:n]), nil
}

// SetBytes stores b in a bytes field.
func (f Field) SetBytes(d Data, b []byte) error {
	return f.setBuffer(d, KindBytes, b)
}

// SetString stores s in a string field.
func (f Field) SetString(d Data, s string) error {
	return f.setBuffer(d, KindString, []byte(s))
}

func (f Field) setBuffer(d Data, kind Kind, b []byte) error {
	loan, err := f.env.Lend(b)
	if err != nil {
		return err
	}
	defer loan.Release()

	if !wire.Status(f.env.Imports().FieldSet(f.handle, uint32(d), uint32(kind), loan.Ref().Word())).OK() {
		return errors.New(errors.OpFieldSetBuffer, errors.KindFieldAccess).
			Detail("host rejected %s write of field %d (%d bytes)", kind, f.handle, len(b)).
			Build()
	}
	return nil
}

func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}

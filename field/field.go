package field

import (
	"go.uber.org/zap"

	"github.com/wippyai/gadget-wasmapi/errors"
	"github.com/wippyai/gadget-wasmapi/host"
	"github.com/wippyai/gadget-wasmapi/wire"
)

// Data is a host handle to one record.
type Data uint32

// Field is a host handle to a field of a data source, bound to the Env it
// was obtained from.
type Field struct {
	env    *host.Env
	handle uint32
}

// NewField wraps a field handle received from the host.
func NewField(env *host.Env, handle uint32) Field {
	return Field{env: env, handle: handle}
}

// Handle returns the host handle.
func (f Field) Handle() uint32 {
	return f.handle
}

// GetScalar returns the raw 64-bit container of a scalar field. The host
// reports failure through a zeroed error slot lent for the call.
func (f Field) GetScalar(d Data, kind Kind) (uint64, error) {
	slot, err := f.env.Scratch(4)
	if err != nil {
		return 0, err
	}
	defer slot.Release()

	raw := f.env.Imports().FieldGetScalar(f.handle, uint32(d), uint32(kind), slot.Addr())
	status, err := f.env.Memory().ReadU32(slot.Addr())
	if err != nil {
		return 0, errors.Wrap(errors.OpFieldGet, errors.KindFieldAccess, err, "read error slot")
	}
	if !wire.Status(status).OK() {
		return 0, errors.New(errors.OpFieldGet, errors.KindFieldAccess).
			Detail("host rejected %s read of field %d", kind, f.handle).
			Value(status).
			Build()
	}
	return raw, nil
}

// SetScalar stores a raw 64-bit container.
func (f Field) SetScalar(d Data, kind Kind, raw uint64) error {
	status := wire.Status(f.env.Imports().FieldSet(f.handle, uint32(d), uint32(kind), raw))
	if !status.OK() {
		return errors.New(errors.OpFieldSet, errors.KindFieldAccess).
			Detail("host rejected %s write of field %d", kind, f.handle).
			Value(uint32(status)).
			Build()
	}
	return nil
}

// Get reads a scalar field. Buffer kinds are rejected: they go through
// GetBytes and GetString.
func (f Field) Get(d Data, kind Kind) (Value, error) {
	switch {
	case kind == KindBytes:
		return Value{}, errors.UnsupportedKind(errors.OpFieldGet, kind, "use GetBytes for bytes fields")
	case kind == KindString:
		return Value{}, errors.UnsupportedKind(errors.OpFieldGet, kind, "use GetString for string fields")
	case !kind.IsScalar():
		return Value{}, errors.UnsupportedKind(errors.OpFieldGet, kind, "cannot get field of kind "+kind.String())
	}

	raw, err := f.GetScalar(d, kind)
	if err != nil {
		return Value{}, err
	}
	return decode(kind, raw), nil
}

// Set writes a scalar field. The value must have been built for kind.
func (f Field) Set(d Data, v Value, kind Kind) error {
	if !kind.IsScalar() {
		return errors.UnsupportedKind(errors.OpFieldSet, kind, "cannot set field of kind "+kind.String()+" from a scalar")
	}
	if v.kind != kind {
		return errors.TypeMismatch(errors.OpFieldSet, kind.String(), v.kind.String())
	}
	f.env.Logger().Debug("field set",
		zap.Uint32("field", f.handle),
		zap.Uint32("data", uint32(d)),
		zap.Stringer("value", v),
	)
	return f.SetScalar(d, kind, v.raw)
}

// SetData writes v, whose dynamic type must match kind: the Go type of the
// scalar kinds, []byte for KindBytes, string for KindString.
func (f Field) SetData(d Data, v any, kind Kind) error {
	switch kind {
	case KindBytes:
		b, ok := v.([]byte)
		if !ok {
			return errors.TypeMismatch(errors.OpFieldSetBuffer, "[]byte", typeName(v))
		}
		return f.SetBytes(d, b)
	case KindString:
		s, ok := v.(string)
		if !ok {
			return errors.TypeMismatch(errors.OpFieldSetBuffer, "string", typeName(v))
		}
		return f.SetString(d, s)
	}
	if !kind.IsScalar() {
		return errors.UnsupportedKind(errors.OpFieldSet, kind, "cannot set field of kind "+kind.String())
	}
	val, err := ValueOf(v)
	if err != nil {
		return errors.TypeMismatch(errors.OpFieldSet, kind.String(), typeName(v))
	}
	return f.Set(d, val, kind)
}

// Get reads a scalar field as T.
func Get[T Scalar](f Field, d Data) (T, error) {
	var zero T
	v, err := f.Get(d, KindOf[T]())
	if err != nil {
		return zero, err
	}
	return v.Interface().(T), nil
}

// Set writes a scalar field from T.
func Set[T Scalar](f Field, d Data, v T) error {
	val, _ := ValueOf(v)
	return f.Set(d, val, val.kind)
}

// AddTag attaches a label to the field definition.
func (f Field) AddTag(tag string) error {
	loan, err := f.env.LendString(tag)
	if err != nil {
		return err
	}
	defer loan.Release()

	if !wire.Status(f.env.Imports().FieldAddTag(f.handle, loan.Ref().Word())).OK() {
		return errors.New(errors.OpFieldAddTag, errors.KindFieldAccess).
			Name(tag).
			Detail("host rejected tag for field %d", f.handle).
			Build()
	}
	return nil
}

package field

import (
	"fmt"
	"math"

	"github.com/wippyai/gadget-wasmapi/errors"
	"github.com/wippyai/gadget-wasmapi/wire"
)

// Value is a scalar tagged with its kind. The zero Value has KindInvalid.
type Value struct {
	kind Kind
	raw  uint64
}

func BoolValue(v bool) Value       { return Value{KindBool, wire.Bool(v)} }
func Int8Value(v int8) Value       { return Value{KindInt8, uint64(int64(v))} }
func Int16Value(v int16) Value     { return Value{KindInt16, uint64(int64(v))} }
func Int32Value(v int32) Value     { return Value{KindInt32, uint64(int64(v))} }
func Int64Value(v int64) Value     { return Value{KindInt64, uint64(v)} }
func Uint8Value(v uint8) Value     { return Value{KindUint8, uint64(v)} }
func Uint16Value(v uint16) Value   { return Value{KindUint16, uint64(v)} }
func Uint32Value(v uint32) Value   { return Value{KindUint32, uint64(v)} }
func Uint64Value(v uint64) Value   { return Value{KindUint64, v} }
func Float32Value(v float32) Value { return Value{KindFloat32, uint64(math.Float32bits(v))} }
func Float64Value(v float64) Value { return Value{KindFloat64, math.Float64bits(v)} }

// Kind returns the kind the value was built with.
func (v Value) Kind() Kind {
	return v.kind
}

// Raw returns the 64-bit container sent to the host.
func (v Value) Raw() uint64 {
	return v.raw
}

// The typed accessors reinterpret the container; check Kind first.

func (v Value) Bool() bool       { return wire.FromBool(v.raw) }
func (v Value) Int8() int8       { return int8(v.raw) }
func (v Value) Int16() int16     { return int16(v.raw) }
func (v Value) Int32() int32     { return int32(v.raw) }
func (v Value) Int64() int64     { return int64(v.raw) }
func (v Value) Uint8() uint8     { return uint8(v.raw) }
func (v Value) Uint16() uint16   { return uint16(v.raw) }
func (v Value) Uint32() uint32   { return uint32(v.raw) }
func (v Value) Uint64() uint64   { return v.raw }
func (v Value) Float32() float32 { return math.Float32frombits(uint32(v.raw)) }
func (v Value) Float64() float64 { return math.Float64frombits(v.raw) }

// Interface returns the value as the Go type matching its kind, or nil
// for the zero Value.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.Bool()
	case KindInt8:
		return v.Int8()
	case KindInt16:
		return v.Int16()
	case KindInt32:
		return v.Int32()
	case KindInt64:
		return v.Int64()
	case KindUint8:
		return v.Uint8()
	case KindUint16:
		return v.Uint16()
	case KindUint32:
		return v.Uint32()
	case KindUint64:
		return v.Uint64()
	case KindFloat32:
		return v.Float32()
	case KindFloat64:
		return v.Float64()
	}
	return nil
}

func (v Value) String() string {
	return fmt.Sprintf("%s(%v)", v.kind, v.Interface())
}

// decode narrows a host container to kind. The host returns a 64-bit word
// for every width; the declared kind fixes the real width, so there is no
// overflow check.
func decode(kind Kind, raw uint64) Value {
	switch kind {
	case KindBool:
		return BoolValue(wire.FromBool(raw))
	case KindInt8:
		return Int8Value(int8(raw))
	case KindInt16:
		return Int16Value(int16(raw))
	case KindInt32:
		return Int32Value(int32(raw))
	case KindInt64:
		return Int64Value(int64(raw))
	case KindUint8:
		return Uint8Value(uint8(raw))
	case KindUint16:
		return Uint16Value(uint16(raw))
	case KindUint32:
		return Uint32Value(uint32(raw))
	case KindUint64:
		return Uint64Value(raw)
	case KindFloat32:
		return Float32Value(math.Float32frombits(uint32(raw)))
	case KindFloat64:
		return Float64Value(math.Float64frombits(raw))
	}
	return Value{}
}

// ValueOf wraps a Go scalar. Any other type is a type mismatch.
func ValueOf(v any) (Value, error) {
	switch x := v.(type) {
	case bool:
		return BoolValue(x), nil
	case int8:
		return Int8Value(x), nil
	case int16:
		return Int16Value(x), nil
	case int32:
		return Int32Value(x), nil
	case int64:
		return Int64Value(x), nil
	case uint8:
		return Uint8Value(x), nil
	case uint16:
		return Uint16Value(x), nil
	case uint32:
		return Uint32Value(x), nil
	case uint64:
		return Uint64Value(x), nil
	case float32:
		return Float32Value(x), nil
	case float64:
		return Float64Value(x), nil
	}
	return Value{}, errors.TypeMismatch(errors.OpFieldSet, "scalar", fmt.Sprintf("%T", v))
}

// Scalar is the set of Go types with a scalar field kind.
type Scalar interface {
	bool | int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64 | float32 | float64
}

// KindOf returns the field kind of T.
func KindOf[T Scalar]() Kind {
	var zero T
	v, _ := ValueOf(zero)
	return v.kind
}

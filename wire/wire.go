package wire

import "math"

// Ref is a packed (address, length) reference to guest linear memory.
type Ref uint64

// PackRef combines an address and a length into a transfer word.
func PackRef(addr, length uint32) Ref {
	return Ref(uint64(length)<<32 | uint64(addr))
}

// Addr returns the linear memory address.
func (r Ref) Addr() uint32 {
	return uint32(r)
}

// Len returns the referenced length in bytes.
func (r Ref) Len() uint32 {
	return uint32(r >> 32)
}

// Word returns the raw transfer word.
func (r Ref) Word() uint64 {
	return uint64(r)
}

// Fits reports whether n can be carried as a 32-bit length.
func Fits(n int) bool {
	return n >= 0 && uint64(n) <= math.MaxUint32
}

// Status is the result of host calls returning 0 on success.
type Status uint32

// OK reports whether the host signaled success.
func (s Status) OK() bool {
	return s == 0
}

// CountFailed is the sentinel returned by buffer-writing host calls.
const CountFailed int32 = -1

// Count decodes the result of a buffer-writing host call. It returns the
// number of bytes written and false when the host signaled failure.
func Count(ret int32) (uint32, bool) {
	if ret < 0 {
		return 0, false
	}
	return uint32(ret), true
}

// Bool encodes a boolean scalar.
func Bool(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// FromBool decodes a boolean scalar. Only 1 is true.
func FromBool(w uint64) bool {
	return w == 1
}

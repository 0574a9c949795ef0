//go:build tinygo.wasm

package memory

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	wasmapi "github.com/wippyai/gadget-wasmapi"
)

var (
	_ wasmapi.Memory    = (*Native)(nil)
	_ wasmapi.Allocator = (*Native)(nil)
)

// Native is the linear memory of the running guest. TinyGo does not move
// stacks or heap objects, so the address of a pinned slice stays valid
// until Free.
type Native struct {
	pinned map[uint32][]byte
}

// NewNative returns the guest's own memory.
func NewNative() *Native {
	return &Native{pinned: make(map[uint32][]byte)}
}

// Alloc pins a Go buffer of at least size bytes and returns its address.
func (n *Native) Alloc(size, align uint32) (uint32, error) {
	if size == 0 {
		size = 1
	}
	if align == 0 {
		align = 1
	}
	buf := make([]byte, size+align-1)
	base := uint32(uintptr(unsafe.Pointer(&buf[0])))
	addr := (base + align - 1) &^ (align - 1)
	if addr == 0 {
		return 0, fmt.Errorf("allocation returned null pointer")
	}
	n.pinned[addr] = buf
	return addr, nil
}

// Free unpins a buffer returned by Alloc.
func (n *Native) Free(ptr, _, _ uint32) {
	delete(n.pinned, ptr)
}

func (n *Native) view(offset, length uint32) []byte {
	if length == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(uintptr(offset))), length)
}

// Read returns a view of linear memory.
func (n *Native) Read(offset uint32, length uint32) ([]byte, error) {
	return n.view(offset, length), nil
}

// Write copies data into linear memory.
func (n *Native) Write(offset uint32, data []byte) error {
	copy(n.view(offset, uint32(len(data))), data)
	return nil
}

// ReadU8 reads an unsigned 8-bit value.
func (n *Native) ReadU8(offset uint32) (uint8, error) {
	return n.view(offset, 1)[0], nil
}

// ReadU16 reads an unsigned 16-bit little-endian value.
func (n *Native) ReadU16(offset uint32) (uint16, error) {
	return binary.LittleEndian.Uint16(n.view(offset, 2)), nil
}

// ReadU32 reads an unsigned 32-bit little-endian value.
func (n *Native) ReadU32(offset uint32) (uint32, error) {
	return binary.LittleEndian.Uint32(n.view(offset, 4)), nil
}

// ReadU64 reads an unsigned 64-bit little-endian value.
func (n *Native) ReadU64(offset uint32) (uint64, error) {
	return binary.LittleEndian.Uint64(n.view(offset, 8)), nil
}

// WriteU8 writes an unsigned 8-bit value.
func (n *Native) WriteU8(offset uint32, value uint8) error {
	n.view(offset, 1)[0] = value
	return nil
}

// WriteU16 writes an unsigned 16-bit little-endian value.
func (n *Native) WriteU16(offset uint32, value uint16) error {
	binary.LittleEndian.PutUint16(n.view(offset, 2), value)
	return nil
}

// WriteU32 writes an unsigned 32-bit little-endian value.
func (n *Native) WriteU32(offset uint32, value uint32) error {
	binary.LittleEndian.PutUint32(n.view(offset, 4), value)
	return nil
}

// WriteU64 writes an unsigned 64-bit little-endian value.
func (n *Native) WriteU64(offset uint32, value uint64) error {
	binary.LittleEndian.PutUint64(n.view(offset, 8), value)
	return nil
}

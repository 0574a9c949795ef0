package memory

import (
	"fmt"
	"sort"

	"github.com/tetratelabs/wazero/api"

	wasmapi "github.com/wippyai/gadget-wasmapi"
)

const (
	pageSize = 65536

	// heapBase keeps the low addresses unused so that 0 stays a null
	// reference and small offsets stand out in traces.
	heapBase = 1024
)

var _ wasmapi.Allocator = (*Heap)(nil)

type span struct {
	addr uint32
	size uint32
}

// Heap is a first-fit allocator over a wazero memory. It grows the memory
// by whole pages when the free list cannot satisfy a request.
type Heap struct {
	mem  api.Memory
	free []span // sorted by addr, coalesced
	used map[uint32]uint32
	top  uint32
}

// NewHeap creates an allocator handing out addresses of mem.
func NewHeap(mem api.Memory) *Heap {
	return &Heap{
		mem:  mem,
		used: make(map[uint32]uint32),
		top:  heapBase,
	}
}

// Alloc reserves size bytes aligned to align. Zero-sized requests still
// receive a distinct non-zero address.
func (h *Heap) Alloc(size, align uint32) (uint32, error) {
	if size == 0 {
		size = 1
	}
	if align == 0 {
		align = 1
	}
	if align&(align-1) != 0 {
		return 0, fmt.Errorf("alignment %d is not a power of two", align)
	}

	for i, s := range h.free {
		start := alignUp(s.addr, align)
		end := uint64(start) + uint64(size)
		if end > uint64(s.addr)+uint64(s.size) {
			continue
		}
		h.takeFree(i, start, size)
		h.used[start] = size
		return start, nil
	}

	start := alignUp(h.top, align)
	end := uint64(start) + uint64(size)
	if end > uint64(h.mem.Size()) {
		pages := (end - uint64(h.mem.Size()) + pageSize - 1) / pageSize
		if _, ok := h.mem.Grow(uint32(pages)); !ok {
			return 0, fmt.Errorf("cannot grow memory by %d pages", pages)
		}
	}
	if start > h.top {
		h.release(h.top, start-h.top)
	}
	h.top = uint32(end)
	h.used[start] = size
	return start, nil
}

// Free returns a region obtained from Alloc. Unknown pointers are ignored.
func (h *Heap) Free(ptr, _, _ uint32) {
	size, ok := h.used[ptr]
	if !ok {
		return
	}
	delete(h.used, ptr)
	h.release(ptr, size)
}

// InUse returns the number of live allocations.
func (h *Heap) InUse() int {
	return len(h.used)
}

func (h *Heap) takeFree(i int, start, size uint32) {
	s := h.free[i]
	var parts []span
	if start > s.addr {
		parts = append(parts, span{addr: s.addr, size: start - s.addr})
	}
	if tail := s.addr + s.size - (start + size); tail > 0 {
		parts = append(parts, span{addr: start + size, size: tail})
	}
	h.free = append(h.free[:i], append(parts, h.free[i+1:]...)...)
}

func (h *Heap) release(addr, size uint32) {
	i := sort.Search(len(h.free), func(i int) bool { return h.free[i].addr > addr })
	h.free = append(h.free, span{})
	copy(h.free[i+1:], h.free[i:])
	h.free[i] = span{addr: addr, size: size}

	// merge with the next span, then with the previous one
	if i+1 < len(h.free) && h.free[i].addr+h.free[i].size == h.free[i+1].addr {
		h.free[i].size += h.free[i+1].size
		h.free = append(h.free[:i+1], h.free[i+2:]...)
	}
	if i > 0 && h.free[i-1].addr+h.free[i-1].size == h.free[i].addr {
		h.free[i-1].size += h.free[i].size
		h.free = append(h.free[:i], h.free[i+1:]...)
	}
}

func alignUp(v, align uint32) uint32 {
	return (v + align - 1) &^ (align - 1)
}

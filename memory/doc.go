// Package memory provides linear memory adapters for the gadget wasm API.
//
// Every packed reference handed to the host points into memory obtained
// from an Allocator. Two environments are supported:
//
// # TinyGo guests
//
// Native (built with tinygo.wasm) is the guest's own linear memory. Alloc
// pins a Go slice so the garbage collector neither frees nor moves it until
// Free, and returns its address:
//
//	mem := memory.NewNative()
//	ptr, _ := mem.Alloc(16, 8)
//	defer mem.Free(ptr, 16, 8)
//
// # Tests
//
// Wrapper adapts a wazero api.Memory and Heap allocates from it, so tests
// exercise exactly the addresses a host would see:
//
//	mem := memory.WrapMemory(mod.ExportedMemory("memory"))
//	heap := memory.NewHeap(mod.ExportedMemory("memory"))
package memory

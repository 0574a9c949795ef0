// Package wasmapi is the guest side of the gadget wasm API.
//
// A gadget is a WebAssembly module running inside a data collection host.
// It cannot share pointers with the host: every interaction goes through a
// small set of imported functions that only take and return integers. This
// module serializes everything richer than an integer (strings, byte
// buffers, map keys, syscall declarations) into that calling convention.
//
// # Architecture Overview
//
//	wasmapi/          Root package with the linear Memory and Allocator interfaces
//	├── wire/         Transfer words: packed (address, length) refs, status codes
//	├── errors/       Error taxonomy shared by every package
//	├── memory/       Linear memory adapters (wazero, heap allocator, TinyGo native)
//	├── host/         Injected host capability: imported functions + memory
//	├── field/        Typed scalar and buffer access to record fields
//	├── hostmap/      Borrowed and owned key/value map handles
//	├── events/       Event reader over perf/ring maps
//	├── syscalls/     Syscall name, number and declaration lookup
//	├── kallsyms/     Kernel symbol existence
//	├── params/       Gadget parameter values
//	├── log/          Log emitter and zap core forwarding to the host
//	└── igtest/       In-memory host double running behind wazero
//
// # Quick Start
//
// Inside a gadget built with TinyGo:
//
//	env := host.Default()
//
//	m, err := hostmap.Get(env, "events_filter")
//	if err != nil {
//	    log.Errorf(env, "map: %v", err)
//	    return 1
//	}
//	if err := m.Put(uint32(42), uint32(1)); err != nil {
//	    ...
//	}
//
// In tests, the same code runs against igtest:
//
//	h := igtest.New(t, igtest.WithParams(map[string]string{"param-key": "param-value"}))
//	v, err := params.Value(h.Env(), "param-key", 32)
//
// # Memory Model
//
// Every reference handed to the host points into memory obtained from the
// Env's Allocator and stays valid until the host call returns. The host
// never retains a reference past the call.
//
// # Thread Safety
//
// The guest runs single threaded and every host call is synchronous. Handles
// have exactly one owner; using one handle from several goroutines is
// undefined.
package wasmapi

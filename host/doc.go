// Package host is the injected host capability of the gadget wasm API.
//
// Imports lists every function the host exports to the guest under the
// "ig" module. All of them take and return integers only; buffers travel
// as wire.Ref words pointing into guest linear memory. Env bundles an
// Imports implementation with the guest memory and allocator, and is passed
// explicitly to every API call instead of calling global functions, so
// tests can substitute an in-memory host (see package igtest).
//
// Inside a TinyGo gadget, Default returns an Env bound to the real imports:
//
//	env := host.Default()
//
// # Lending memory
//
// Every value richer than an integer is copied into linear memory for the
// duration of exactly one host call:
//
//	loan, err := env.LendString(name)
//	if err != nil {
//	    return err
//	}
//	defer loan.Release()
//	h := env.Imports().GetMap(loan.Ref().Word())
//
// The host never keeps a reference after the call returns.
package host

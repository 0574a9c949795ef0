// Package igtest provides an in-memory gadget host for tests.
//
// The host functions are registered as real wazero host modules ("ig" and
// "env") next to a one-page guest memory. The Env returned by a Harness
// calls them through api.Function.Call, so every argument crosses as a
// wasm value and every reference points into that memory:
//
//	h := igtest.New(t)
//	name, err := syscalls.Name(h.Env(), 59) // "execve"
//
// The default host state (defaults.yaml) carries a small amd64 syscall
// table, a few kernel symbols, the "param-key" parameter, a hash map named
// "test_map" and a perf event array named "events". Fixtures add to it.
//
// A host function that traps (for instance a scalar read with an error
// pointer outside memory) panics with a *TrapError.
package igtest

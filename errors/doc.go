// Package errors provides the error taxonomy of the gadget wasm API.
//
// The host boundary has no exception mechanism: host functions only return
// status integers. Every package turns a failed status into an *Error
// carrying the operation that failed (Op) and a category (Kind). The host
// never tells the guest why a call failed, so Detail is written by the guest
// from what it knows at the call site.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.OpMapUpdate, errors.KindMapOperation).
//		Name("test_map").
//		Detail("flags %s", flags).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.NotFound(errors.OpMapGet, "test_map")
//	err := errors.TypeMismatch(errors.OpFieldSet, "int32", "uint8")
//
// Callers match categories with the sentinels:
//
//	if errors.Is(err, errors.ErrNotFound) { ... }
//
// Nothing in this module retries a failed call: the host is the single
// source of truth and repeating a rejected call cannot succeed.
//
// A host call that faults (the host writing through an invalid guest
// address, for instance) is not an *Error. It aborts the module.
package errors

// Package wire implements the transfer words exchanged with the host.
//
// The host only accepts integers. A guest buffer is referenced by a single
// 64-bit word holding its linear memory address in the low 32 bits and its
// length in the high 32 bits:
//
//	63            32 31             0
//	+---------------+---------------+
//	|    length     |    address    |
//	+---------------+---------------+
//
// Whether a word is a reference, a raw scalar or a status code is decided by
// the call site; words are never self-describing.
//
// Status words use two conventions:
//
//	Status  0 success, anything else failure (opaque code)
//	Count  -1 failure, otherwise the number of bytes written
package wire

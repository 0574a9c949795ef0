// Package field gives typed access to the fields of host records.
//
// A Field names a column of a data source; a Data names one record. Every
// access pairs the two. Both are host-assigned handles borrowed for the
// duration of the record-processing callback: they are never released by
// the guest.
//
// Scalar kinds (bool, integers, floats) travel as one 64-bit word. Floats
// are transferred as their bit pattern, integers are truncated to the
// field's width on the way back. Bytes and string kinds use a different host
// call and go through GetBytes / GetString / SetBytes / SetString instead:
//
//	v, err := f.Get(data, field.KindUint32)      // Value
//	pid, err := field.Get[uint32](f, data)       // typed
//	comm, err := f.GetString(data, 16)           // buffer
//
// Set checks that the Value's kind matches the declared kind before calling
// the host, so a mismatch never reaches the boundary.
package field

package host

const (
	// ModuleName is the import module the host functions live in.
	ModuleName = "ig"
	// LogModuleName is the import module of gadgetLog.
	LogModuleName = "env"
)

// Imports is the set of functions imported from the host. Each method maps
// one-to-one to a host function of the same (lower camel case) name.
//
// Unless documented otherwise, uint32 results are status words (0 success)
// and handle results are 0 on failure.
type Imports interface {
	// FieldGetScalar returns the raw 64-bit container of a scalar field.
	// The host writes a non-zero uint32 at errPtr when the access fails.
	FieldGetScalar(field, data, kind, errPtr uint32) uint64
	// FieldGetBuffer copies a buffer field into dst and returns the number
	// of bytes written, or -1.
	FieldGetBuffer(field, data, kind uint32, dst uint64) int32
	// FieldSet stores a raw scalar, or a packed reference for buffer kinds.
	FieldSet(field, data, kind uint32, value uint64) uint32
	FieldAddTag(field uint32, tag uint64) uint32

	GetDataSource(name uint64) uint32
	DataSourceGetField(ds uint32, name uint64) uint32
	DataSourceAddField(ds uint32, name uint64, kind uint32) uint32

	GetMap(name uint64) uint32
	NewMap(spec uint64) uint32
	MapLookup(m uint32, key, value uint64) uint32
	MapUpdate(m uint32, key, value, flags uint64) uint32
	MapDelete(m uint32, key uint64) uint32
	MapRelease(m uint32) uint32

	NewPerfReader(m, size, overwritable uint32) uint32
	PerfReaderPause(r uint32) uint32
	PerfReaderResume(r uint32) uint32
	PerfReaderRead(r uint32, dst uint64) uint32
	PerfReaderClose(r uint32) uint32

	// KallsymsSymbolExists returns 1 if the symbol is known.
	KallsymsSymbolExists(name uint64) uint32
	// GetSyscallName writes the name of syscall id into dst and returns
	// its length, or -1.
	GetSyscallName(id uint32, dst uint64) int32
	// GetSyscallID returns the syscall number, or -1.
	GetSyscallID(name uint64) int32
	GetSyscallDeclaration(name, dst uint64) uint32
	// GetParamValue writes the parameter value into dst and returns its
	// length, or -1.
	GetParamValue(key, dst uint64) int32

	// GadgetLog is fire-and-forget.
	GadgetLog(level uint32, msg uint64)
}

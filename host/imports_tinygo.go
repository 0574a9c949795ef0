//go:build tinygo.wasm

package host

import (
	"github.com/wippyai/gadget-wasmapi/memory"
)

//go:wasmimport ig fieldGetScalar
func fieldGetScalar(field, data, kind, errPtr uint32) uint64

//go:wasmimport ig fieldGetBuffer
func fieldGetBuffer(field, data, kind uint32, dst uint64) int32

//go:wasmimport ig fieldSet
func fieldSet(field, data, kind uint32, value uint64) uint32

//go:wasmimport ig fieldAddTag
func fieldAddTag(field uint32, tag uint64) uint32

//go:wasmimport ig getDataSource
func getDataSource(name uint64) uint32

//go:wasmimport ig dataSourceGetField
func dataSourceGetField(ds uint32, name uint64) uint32

//go:wasmimport ig dataSourceAddField
func dataSourceAddField(ds uint32, name uint64, kind uint32) uint32

//go:wasmimport ig getMap
func getMap(name uint64) uint32

//go:wasmimport ig newMap
func newMap(spec uint64) uint32

//go:wasmimport ig mapLookup
func mapLookup(m uint32, key, value uint64) uint32

//go:wasmimport ig mapUpdate
func mapUpdate(m uint32, key, value, flags uint64) uint32

//go:wasmimport ig mapDelete
func mapDelete(m uint32, key uint64) uint32

//go:wasmimport ig mapRelease
func mapRelease(m uint32) uint32

//go:wasmimport ig newPerfReader
func newPerfReader(m, size, overwritable uint32) uint32

//go:wasmimport ig perfReaderPause
func perfReaderPause(r uint32) uint32

//go:wasmimport ig perfReaderResume
func perfReaderResume(r uint32) uint32

//go:wasmimport ig perfReaderRead
func perfReaderRead(r uint32, dst uint64) uint32

//go:wasmimport ig perfReaderClose
func perfReaderClose(r uint32) uint32

//go:wasmimport ig kallsymsSymbolExists
func kallsymsSymbolExists(name uint64) uint32

//go:wasmimport ig getSyscallName
func getSyscallName(id uint32, dst uint64) int32

//go:wasmimport ig getSyscallID
func getSyscallID(name uint64) int32

//go:wasmimport ig getSyscallDeclaration
func getSyscallDeclaration(name, dst uint64) uint32

//go:wasmimport ig getParamValue
func getParamValue(key, dst uint64) int32

//go:wasmimport env gadgetLog
func gadgetLog(level uint32, msg uint64)

// wasmImports forwards every method to the imported host function.
type wasmImports struct{}

func (wasmImports) FieldGetScalar(field, data, kind, errPtr uint32) uint64 {
	return fieldGetScalar(field, data, kind, errPtr)
}

func (wasmImports) FieldGetBuffer(field, data, kind uint32, dst uint64) int32 {
	return fieldGetBuffer(field, data, kind, dst)
}

func (wasmImports) FieldSet(field, data, kind uint32, value uint64) uint32 {
	return fieldSet(field, data, kind, value)
}

func (wasmImports) FieldAddTag(field uint32, tag uint64) uint32 {
	return fieldAddTag(field, tag)
}

func (wasmImports) GetDataSource(name uint64) uint32 {
	return getDataSource(name)
}

func (wasmImports) DataSourceGetField(ds uint32, name uint64) uint32 {
	return dataSourceGetField(ds, name)
}

func (wasmImports) DataSourceAddField(ds uint32, name uint64, kind uint32) uint32 {
	return dataSourceAddField(ds, name, kind)
}

func (wasmImports) GetMap(name uint64) uint32 {
	return getMap(name)
}

func (wasmImports) NewMap(spec uint64) uint32 {
	return newMap(spec)
}

func (wasmImports) MapLookup(m uint32, key, value uint64) uint32 {
	return mapLookup(m, key, value)
}

func (wasmImports) MapUpdate(m uint32, key, value, flags uint64) uint32 {
	return mapUpdate(m, key, value, flags)
}

func (wasmImports) MapDelete(m uint32, key uint64) uint32 {
	return mapDelete(m, key)
}

func (wasmImports) MapRelease(m uint32) uint32 {
	return mapRelease(m)
}

func (wasmImports) NewPerfReader(m, size, overwritable uint32) uint32 {
	return newPerfReader(m, size, overwritable)
}

func (wasmImports) PerfReaderPause(r uint32) uint32 {
	return perfReaderPause(r)
}

func (wasmImports) PerfReaderResume(r uint32) uint32 {
	return perfReaderResume(r)
}

func (wasmImports) PerfReaderRead(r uint32, dst uint64) uint32 {
	return perfReaderRead(r, dst)
}

func (wasmImports) PerfReaderClose(r uint32) uint32 {
	return perfReaderClose(r)
}

func (wasmImports) KallsymsSymbolExists(name uint64) uint32 {
	return kallsymsSymbolExists(name)
}

func (wasmImports) GetSyscallName(id uint32, dst uint64) int32 {
	return getSyscallName(id, dst)
}

func (wasmImports) GetSyscallID(name uint64) int32 {
	return getSyscallID(name)
}

func (wasmImports) GetSyscallDeclaration(name, dst uint64) uint32 {
	return getSyscallDeclaration(name, dst)
}

func (wasmImports) GetParamValue(key, dst uint64) int32 {
	return getParamValue(key, dst)
}

func (wasmImports) GadgetLog(level uint32, msg uint64) {
	gadgetLog(level, msg)
}

var defaultEnv *Env

// Default returns the Env of the running gadget, bound to the imported
// host functions and the guest's own linear memory.
func Default() *Env {
	if defaultEnv == nil {
		mem := memory.NewNative()
		defaultEnv = New(wasmImports{}, mem, mem)
	}
	return defaultEnv
}

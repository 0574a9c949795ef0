package igtest

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/gadget-wasmapi/host"
)

const (
	i32 = api.ValueTypeI32
	i64 = api.ValueTypeI64
)

// hostFunc is one exported host function. fn receives the guest memory
// and the wasm value stack.
type hostFunc struct {
	name    string
	params  []api.ValueType
	results []api.ValueType
	fn      func(mem api.Memory, stack []uint64)
}

func u32(v uint64) uint32 { return api.DecodeU32(v) }

func (h *Host) exports() []hostFunc {
	return []hostFunc{
		{"fieldGetScalar", []api.ValueType{i32, i32, i32, i32}, []api.ValueType{i64}, func(mem api.Memory, s []uint64) {
			s[0] = h.fieldGetScalar(mem, u32(s[0]), u32(s[1]), u32(s[2]), u32(s[3]))
		}},
		{"fieldGetBuffer", []api.ValueType{i32, i32, i32, i64}, []api.ValueType{i32}, func(mem api.Memory, s []uint64) {
			s[0] = api.EncodeI32(h.fieldGetBuffer(mem, u32(s[0]), u32(s[1]), u32(s[2]), s[3]))
		}},
		{"fieldSet", []api.ValueType{i32, i32, i32, i64}, []api.ValueType{i32}, func(mem api.Memory, s []uint64) {
			s[0] = api.EncodeU32(h.fieldSet(mem, u32(s[0]), u32(s[1]), u32(s[2]), s[3]))
		}},
		{"fieldAddTag", []api.ValueType{i32, i64}, []api.ValueType{i32}, func(mem api.Memory, s []uint64) {
			s[0] = api.EncodeU32(h.fieldAddTag(mem, u32(s[0]), s[1]))
		}},
		{"getDataSource", []api.ValueType{i64}, []api.ValueType{i32}, func(mem api.Memory, s []uint64) {
			s[0] = api.EncodeU32(h.getDataSource(mem, s[0]))
		}},
		{"dataSourceGetField", []api.ValueType{i32, i64}, []api.ValueType{i32}, func(mem api.Memory, s []uint64) {
			s[0] = api.EncodeU32(h.dataSourceGetField(mem, u32(s[0]), s[1]))
		}},
		{"dataSourceAddField", []api.ValueType{i32, i64, i32}, []api.ValueType{i32}, func(mem api.Memory, s []uint64) {
			s[0] = api.EncodeU32(h.dataSourceAddField(mem, u32(s[0]), s[1], u32(s[2])))
		}},
		{"getMap", []api.ValueType{i64}, []api.ValueType{i32}, func(mem api.Memory, s []uint64) {
			s[0] = api.EncodeU32(h.getMap(mem, s[0]))
		}},
		{"newMap", []api.ValueType{i64}, []api.ValueType{i32}, func(mem api.Memory, s []uint64) {
			s[0] = api.EncodeU32(h.newMap(mem, s[0]))
		}},
		{"mapLookup", []api.ValueType{i32, i64, i64}, []api.ValueType{i32}, func(mem api.Memory, s []uint64) {
			s[0] = api.EncodeU32(h.mapLookup(mem, u32(s[0]), s[1], s[2]))
		}},
		{"mapUpdate", []api.ValueType{i32, i64, i64, i64}, []api.ValueType{i32}, func(mem api.Memory, s []uint64) {
			s[0] = api.EncodeU32(h.mapUpdate(mem, u32(s[0]), s[1], s[2], s[3]))
		}},
		{"mapDelete", []api.ValueType{i32, i64}, []api.ValueType{i32}, func(mem api.Memory, s []uint64) {
			s[0] = api.EncodeU32(h.mapDelete(mem, u32(s[0]), s[1]))
		}},
		{"mapRelease", []api.ValueType{i32}, []api.ValueType{i32}, func(_ api.Memory, s []uint64) {
			s[0] = api.EncodeU32(h.mapRelease(u32(s[0])))
		}},
		{"newPerfReader", []api.ValueType{i32, i32, i32}, []api.ValueType{i32}, func(_ api.Memory, s []uint64) {
			s[0] = api.EncodeU32(h.newPerfReader(u32(s[0]), u32(s[1]), u32(s[2])))
		}},
		{"perfReaderPause", []api.ValueType{i32}, []api.ValueType{i32}, func(_ api.Memory, s []uint64) {
			s[0] = api.EncodeU32(h.setPaused(u32(s[0]), true))
		}},
		{"perfReaderResume", []api.ValueType{i32}, []api.ValueType{i32}, func(_ api.Memory, s []uint64) {
			s[0] = api.EncodeU32(h.setPaused(u32(s[0]), false))
		}},
		{"perfReaderRead", []api.ValueType{i32, i64}, []api.ValueType{i32}, func(mem api.Memory, s []uint64) {
			s[0] = api.EncodeU32(h.perfReaderRead(mem, u32(s[0]), s[1]))
		}},
		{"perfReaderClose", []api.ValueType{i32}, []api.ValueType{i32}, func(_ api.Memory, s []uint64) {
			s[0] = api.EncodeU32(h.perfReaderClose(u32(s[0])))
		}},
		{"kallsymsSymbolExists", []api.ValueType{i64}, []api.ValueType{i32}, func(mem api.Memory, s []uint64) {
			s[0] = api.EncodeU32(h.kallsymsSymbolExists(mem, s[0]))
		}},
		{"getSyscallName", []api.ValueType{i32, i64}, []api.ValueType{i32}, func(mem api.Memory, s []uint64) {
			s[0] = api.EncodeI32(h.getSyscallName(mem, u32(s[0]), s[1]))
		}},
		{"getSyscallID", []api.ValueType{i64}, []api.ValueType{i32}, func(mem api.Memory, s []uint64) {
			s[0] = api.EncodeI32(h.getSyscallID(mem, s[0]))
		}},
		{"getSyscallDeclaration", []api.ValueType{i64, i64}, []api.ValueType{i32}, func(mem api.Memory, s []uint64) {
			s[0] = api.EncodeU32(h.getSyscallDeclaration(mem, s[0], s[1]))
		}},
		{"getParamValue", []api.ValueType{i64, i64}, []api.ValueType{i32}, func(mem api.Memory, s []uint64) {
			s[0] = api.EncodeI32(h.getParamValue(mem, s[0], s[1]))
		}},
	}
}

func (h *Host) logExports() []hostFunc {
	return []hostFunc{
		{"gadgetLog", []api.ValueType{i32, i64}, nil, func(mem api.Memory, s []uint64) {
			h.gadgetLog(mem, u32(s[0]), s[1])
		}},
	}
}

// instantiate registers funcs as a host module. Each function addresses
// the memory of its caller, or guest when the caller has none.
func instantiate(ctx context.Context, rt wazero.Runtime, name string, guest api.Memory, funcs []hostFunc) (api.Module, error) {
	b := rt.NewHostModuleBuilder(name)
	for _, f := range funcs {
		fn := f.fn
		b.NewFunctionBuilder().
			WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, mod api.Module, stack []uint64) {
				mem := guest
				if mod != nil && mod.Memory() != nil {
					mem = mod.Memory()
				}
				fn(mem, stack)
			}), f.params, f.results).
			Export(f.name)
	}
	return b.Instantiate(ctx)
}

var _ host.Imports = (*boundary)(nil)

// boundary implements host.Imports by calling the exports of the
// trampoline module, so every argument crosses as a wasm value into a
// guest function that calls the host import. A trap in the host panics:
// the guest cannot recover from it.
type boundary struct {
	ctx context.Context
	fns map[string]api.Function
}

func newBoundary(ctx context.Context, guest api.Module) *boundary {
	b := &boundary{ctx: ctx, fns: make(map[string]api.Function)}
	for name := range guest.ExportedFunctionDefinitions() {
		b.fns[name] = guest.ExportedFunction(name)
	}
	return b
}

func (b *boundary) call(name string, args ...uint64) uint64 {
	fn, ok := b.fns[name]
	if !ok {
		panic("igtest: host function " + name + " not exported")
	}
	res, err := fn.Call(b.ctx, args...)
	if err != nil {
		panic(&TrapError{Func: name, Err: err})
	}
	if len(res) == 0 {
		return 0
	}
	return res[0]
}

// TrapError is the panic value of a host call that trapped.
type TrapError struct {
	Func string
	Err  error
}

func (e *TrapError) Error() string {
	return "igtest: " + e.Func + " trapped: " + e.Err.Error()
}

func (e *TrapError) Unwrap() error {
	return e.Err
}

func e32(v uint32) uint64 { return api.EncodeU32(v) }

func (b *boundary) FieldGetScalar(field, data, kind, errPtr uint32) uint64 {
	return b.call("fieldGetScalar", e32(field), e32(data), e32(kind), e32(errPtr))
}

func (b *boundary) FieldGetBuffer(field, data, kind uint32, dst uint64) int32 {
	return api.DecodeI32(b.call("fieldGetBuffer", e32(field), e32(data), e32(kind), dst))
}

func (b *boundary) FieldSet(field, data, kind uint32, value uint64) uint32 {
	return u32(b.call("fieldSet", e32(field), e32(data), e32(kind), value))
}

func (b *boundary) FieldAddTag(field uint32, tag uint64) uint32 {
	return u32(b.call("fieldAddTag", e32(field), tag))
}

func (b *boundary) GetDataSource(name uint64) uint32 {
	return u32(b.call("getDataSource", name))
}

func (b *boundary) DataSourceGetField(ds uint32, name uint64) uint32 {
	return u32(b.call("dataSourceGetField", e32(ds), name))
}

func (b *boundary) DataSourceAddField(ds uint32, name uint64, kind uint32) uint32 {
	return u32(b.call("dataSourceAddField", e32(ds), name, e32(kind)))
}

func (b *boundary) GetMap(name uint64) uint32 {
	return u32(b.call("getMap", name))
}

func (b *boundary) NewMap(spec uint64) uint32 {
	return u32(b.call("newMap", spec))
}

func (b *boundary) MapLookup(m uint32, key, value uint64) uint32 {
	return u32(b.call("mapLookup", e32(m), key, value))
}

func (b *boundary) MapUpdate(m uint32, key, value, flags uint64) uint32 {
	return u32(b.call("mapUpdate", e32(m), key, value, flags))
}

func (b *boundary) MapDelete(m uint32, key uint64) uint32 {
	return u32(b.call("mapDelete", e32(m), key))
}

func (b *boundary) MapRelease(m uint32) uint32 {
	return u32(b.call("mapRelease", e32(m)))
}

func (b *boundary) NewPerfReader(m, size, overwritable uint32) uint32 {
	return u32(b.call("newPerfReader", e32(m), e32(size), e32(overwritable)))
}

func (b *boundary) PerfReaderPause(r uint32) uint32 {
	return u32(b.call("perfReaderPause", e32(r)))
}

func (b *boundary) PerfReaderResume(r uint32) uint32 {
	return u32(b.call("perfReaderResume", e32(r)))
}

func (b *boundary) PerfReaderRead(r uint32, dst uint64) uint32 {
	return u32(b.call("perfReaderRead", e32(r), dst))
}

func (b *boundary) PerfReaderClose(r uint32) uint32 {
	return u32(b.call("perfReaderClose", e32(r)))
}

func (b *boundary) KallsymsSymbolExists(name uint64) uint32 {
	return u32(b.call("kallsymsSymbolExists", name))
}

func (b *boundary) GetSyscallName(id uint32, dst uint64) int32 {
	return api.DecodeI32(b.call("getSyscallName", e32(id), dst))
}

func (b *boundary) GetSyscallID(name uint64) int32 {
	return api.DecodeI32(b.call("getSyscallID", name))
}

func (b *boundary) GetSyscallDeclaration(name, dst uint64) uint32 {
	return u32(b.call("getSyscallDeclaration", name, dst))
}

func (b *boundary) GetParamValue(key, dst uint64) int32 {
	return api.DecodeI32(b.call("getParamValue", key, dst))
}

func (b *boundary) GadgetLog(level uint32, msg uint64) {
	b.call("gadgetLog", e32(level), msg)
}

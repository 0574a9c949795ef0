package igtest

import (
	"github.com/tetratelabs/wazero/api"
)

const (
	sectionType     byte = 0x01
	sectionImport   byte = 0x02
	sectionFunction byte = 0x03
	sectionExport   byte = 0x07
	sectionCode     byte = 0x0a

	kindFunc   byte = 0x00
	kindMemory byte = 0x02

	funcTypeByte byte = 0x60
	opLocalGet   byte = 0x20
	opCall       byte = 0x10
	opEnd        byte = 0x0b
)

// hostModule groups the functions one host module exports.
type hostModule struct {
	name  string
	funcs []hostFunc
}

// writer appends the WebAssembly binary encoding.
type writer struct {
	buf []byte
}

func (w *writer) u8(b byte) {
	w.buf = append(w.buf, b)
}

func (w *writer) u32(v uint32) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			w.buf = append(w.buf, b|0x80)
			continue
		}
		w.buf = append(w.buf, b)
		return
	}
}

func (w *writer) name(s string) {
	w.u32(uint32(len(s)))
	w.buf = append(w.buf, s...)
}

func (w *writer) section(id byte, body *writer) {
	w.u8(id)
	w.u32(uint32(len(body.buf)))
	w.buf = append(w.buf, body.buf...)
}

func valTypes(w *writer, types []api.ValueType) {
	w.u32(uint32(len(types)))
	for _, t := range types {
		w.u8(t)
	}
}

// trampoline encodes a guest module that imports every function of mods,
// plus memory from memModule, and exports one function per import that
// forwards its arguments unchanged. Calls made through its exports reach
// the host functions as an ordinary guest call would.
func trampoline(memModule string, mods []hostModule) []byte {
	var funcs []hostFunc
	var modules []string
	for _, m := range mods {
		for _, f := range m.funcs {
			funcs = append(funcs, f)
			modules = append(modules, m.name)
		}
	}
	n := uint32(len(funcs))

	w := &writer{}
	w.buf = append(w.buf, 0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00)

	types := &writer{}
	types.u32(n)
	for _, f := range funcs {
		types.u8(funcTypeByte)
		valTypes(types, f.params)
		valTypes(types, f.results)
	}
	w.section(sectionType, types)

	imports := &writer{}
	imports.u32(n + 1)
	for i, f := range funcs {
		imports.name(modules[i])
		imports.name(f.name)
		imports.u8(kindFunc)
		imports.u32(uint32(i))
	}
	imports.name(memModule)
	imports.name("memory")
	imports.u8(kindMemory)
	imports.u8(0x00) // limits: min only
	imports.u32(1)
	w.section(sectionImport, imports)

	decls := &writer{}
	decls.u32(n)
	for i := range funcs {
		decls.u32(uint32(i))
	}
	w.section(sectionFunction, decls)

	exports := &writer{}
	exports.u32(n)
	for i, f := range funcs {
		exports.name(f.name)
		exports.u8(kindFunc)
		exports.u32(n + uint32(i))
	}
	w.section(sectionExport, exports)

	code := &writer{}
	code.u32(n)
	for i, f := range funcs {
		body := &writer{}
		body.u32(0) // no locals
		for p := range f.params {
			body.u8(opLocalGet)
			body.u32(uint32(p))
		}
		body.u8(opCall)
		body.u32(uint32(i))
		body.u8(opEnd)

		code.u32(uint32(len(body.buf)))
		code.buf = append(code.buf, body.buf...)
	}
	w.section(sectionCode, code)

	return w.buf
}

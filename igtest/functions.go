package igtest

import (
	"encoding/binary"
	"fmt"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/gadget-wasmapi/field"
	"github.com/wippyai/gadget-wasmapi/hostmap"
	"github.com/wippyai/gadget-wasmapi/log"
	"github.com/wippyai/gadget-wasmapi/syscalls"
	"github.com/wippyai/gadget-wasmapi/wire"
)

const (
	statusOK   uint32 = 0
	statusFail uint32 = 1
)

func readRef(mem api.Memory, w uint64) ([]byte, bool) {
	r := wire.Ref(w)
	if r.Len() == 0 {
		return []byte{}, true
	}
	b, ok := mem.Read(r.Addr(), r.Len())
	if !ok {
		return nil, false
	}
	return append([]byte(nil), b...), true
}

// writeRef copies as much of data as fits the referenced region.
func writeRef(mem api.Memory, w uint64, data []byte) (uint32, bool) {
	r := wire.Ref(w)
	n := uint32(len(data))
	if n > r.Len() {
		n = r.Len()
	}
	if n == 0 {
		return 0, true
	}
	if !mem.Write(r.Addr(), data[:n]) {
		return 0, false
	}
	return n, true
}

func readString(mem api.Memory, w uint64) (string, bool) {
	b, ok := readRef(mem, w)
	return string(b), ok
}

func status(ok bool) uint32 {
	if ok {
		return statusOK
	}
	return statusFail
}

func (h *Host) access(fh, dh uint32) (*fieldDef, *record, bool) {
	f, ok := typed[*fieldDef](h.handles, fh, ClassField)
	if !ok {
		return nil, nil, false
	}
	rec, ok := typed[*record](h.handles, dh, ClassRecord)
	if !ok || rec.ds != f.ds {
		return nil, nil, false
	}
	return f, rec, true
}

// fieldGetScalar reports failure through errPtr. An errPtr outside memory
// traps, like a host writing through a wild pointer would.
func (h *Host) fieldGetScalar(mem api.Memory, fh, dh, kind, errPtr uint32) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	f, rec, ok := h.access(fh, dh)
	if ok && f.kind.IsScalar() && field.Kind(kind) == f.kind {
		return rec.values[fh].raw
	}
	if !mem.WriteUint32Le(errPtr, statusFail) {
		panic(fmt.Errorf("fieldGetScalar: error pointer %#x outside linear memory", errPtr))
	}
	return 0
}

func (h *Host) fieldGetBuffer(mem api.Memory, fh, dh, kind uint32, dst uint64) int32 {
	h.mu.Lock()
	defer h.mu.Unlock()

	f, rec, ok := h.access(fh, dh)
	if !ok || !f.kind.IsBuffer() || !field.Kind(kind).IsBuffer() {
		return wire.CountFailed
	}
	n, ok := writeRef(mem, dst, rec.values[fh].buf)
	if !ok {
		return wire.CountFailed
	}
	return int32(n)
}

func (h *Host) fieldSet(mem api.Memory, fh, dh, kind uint32, value uint64) uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()

	f, rec, ok := h.access(fh, dh)
	if !ok {
		return statusFail
	}
	k := field.Kind(kind)
	switch {
	case k.IsScalar() && k == f.kind:
		rec.values[fh] = stored{raw: value}
	case k.IsBuffer() && f.kind.IsBuffer():
		b, ok := readRef(mem, value)
		if !ok {
			return statusFail
		}
		rec.values[fh] = stored{buf: b}
	default:
		return statusFail
	}
	return statusOK
}

func (h *Host) fieldAddTag(mem api.Memory, fh uint32, tag uint64) uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()

	f, ok := typed[*fieldDef](h.handles, fh, ClassField)
	if !ok {
		return statusFail
	}
	t, ok := readString(mem, tag)
	if !ok || t == "" {
		return statusFail
	}
	f.tags = append(f.tags, t)
	return statusOK
}

func (h *Host) getDataSource(mem api.Memory, name uint64) uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()

	n, ok := readString(mem, name)
	if !ok {
		return 0
	}
	return h.dataSources[n]
}

func (h *Host) dataSourceGetField(mem api.Memory, ds uint32, name uint64) uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()

	src, ok := typed[*dataSource](h.handles, ds, ClassDataSource)
	if !ok {
		return 0
	}
	n, ok := readString(mem, name)
	if !ok {
		return 0
	}
	return src.fields[n]
}

func (h *Host) dataSourceAddField(mem api.Memory, ds uint32, name uint64, kind uint32) uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()

	n, ok := readString(mem, name)
	if !ok || n == "" || !field.Kind(kind).Valid() {
		return 0
	}
	fh, _ := h.addField(ds, n, field.Kind(kind))
	return fh
}

func (h *Host) getMap(mem api.Memory, name uint64) uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()

	n, ok := readString(mem, name)
	if !ok {
		return 0
	}
	return h.maps[n]
}

func (h *Host) newMap(mem api.Memory, specRef uint64) uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()

	b, ok := readRef(mem, specRef)
	if !ok || len(b) != 24 {
		return 0
	}
	name, ok := readString(mem, binary.LittleEndian.Uint64(b[0:]))
	if !ok {
		return 0
	}
	spec := hostmap.Spec{
		Name:       name,
		Type:       hostmap.Type(binary.LittleEndian.Uint32(b[8:])),
		KeySize:    binary.LittleEndian.Uint32(b[12:]),
		ValueSize:  binary.LittleEndian.Uint32(b[16:]),
		MaxEntries: binary.LittleEndian.Uint32(b[20:]),
	}
	handle, err := h.createMap(spec, true)
	if err != nil {
		h.logger.Debug("newMap rejected", zap.String("map", name), zap.Error(err))
		return 0
	}
	return handle
}

// kvMap resolves a key/value map and checks the key and value sizes.
func (h *Host) kvMap(mem api.Memory, m uint32, key uint64, valueLen uint32, checkValue bool) (*hostMap, []byte, bool) {
	hm, ok := typed[*hostMap](h.handles, m, ClassMap)
	if !ok || hm.spec.Type.IsEventStream() {
		return nil, nil, false
	}
	k, ok := readRef(mem, key)
	if !ok || uint32(len(k)) != hm.spec.KeySize {
		return nil, nil, false
	}
	if checkValue && valueLen != hm.spec.ValueSize {
		return nil, nil, false
	}
	if hm.isArray() && binary.LittleEndian.Uint32(k) >= hm.spec.MaxEntries {
		return nil, nil, false
	}
	return hm, k, true
}

func (m *hostMap) isArray() bool {
	return m.spec.Type == hostmap.Array || m.spec.Type == hostmap.PerCPUArray
}

// touch marks k as the most recently used key.
func (m *hostMap) touch(k string) {
	m.forget(k)
	m.order = append(m.order, k)
}

func (m *hostMap) forget(k string) {
	for i, o := range m.order {
		if o == k {
			m.order = append(m.order[:i], m.order[i+1:]...)
			return
		}
	}
}

func (h *Host) mapLookup(mem api.Memory, m uint32, key, value uint64) uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()

	hm, k, ok := h.kvMap(mem, m, key, wire.Ref(value).Len(), true)
	if !ok {
		return statusFail
	}
	v, exists := hm.entries[string(k)]
	switch {
	case exists:
		hm.touch(string(k))
	case hm.isArray():
		v = make([]byte, hm.spec.ValueSize)
	default:
		return statusFail
	}
	_, ok = writeRef(mem, value, v)
	return status(ok)
}

func (h *Host) mapUpdate(mem api.Memory, m uint32, key, value, flags uint64) uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()

	hm, k, ok := h.kvMap(mem, m, key, wire.Ref(value).Len(), true)
	if !ok {
		return statusFail
	}
	v, ok := readRef(mem, value)
	if !ok {
		return statusFail
	}

	_, exists := hm.entries[string(k)]
	if hm.isArray() {
		exists = true
	}
	switch hostmap.UpdateFlags(flags) {
	case hostmap.UpdateAny:
	case hostmap.CreateOnly:
		if exists {
			return statusFail
		}
	case hostmap.UpdateOnly:
		if !exists {
			return statusFail
		}
	default:
		return statusFail
	}

	if !exists && uint32(len(hm.entries)) >= hm.spec.MaxEntries {
		if hm.spec.Type != hostmap.LRUHash {
			return statusFail
		}
		oldest := hm.order[0]
		hm.order = hm.order[1:]
		delete(hm.entries, oldest)
	}
	hm.touch(string(k))
	hm.entries[string(k)] = v
	return statusOK
}

func (h *Host) mapDelete(mem api.Memory, m uint32, key uint64) uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()

	hm, k, ok := h.kvMap(mem, m, key, 0, false)
	if !ok || hm.isArray() {
		return statusFail
	}
	if _, exists := hm.entries[string(k)]; !exists {
		return statusFail
	}
	delete(hm.entries, string(k))
	hm.forget(string(k))
	return statusOK
}

// mapRelease only accepts maps the guest created.
func (h *Host) mapRelease(m uint32) uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()

	hm, ok := typed[*hostMap](h.handles, m, ClassMap)
	if !ok || !hm.owned {
		return statusFail
	}
	h.handles.remove(m, ClassMap)
	delete(h.maps, hm.spec.Name)
	h.releases[hm.spec.Name]++
	return statusOK
}

func (h *Host) newPerfReader(m, size, overwritable uint32) uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()

	hm, ok := typed[*hostMap](h.handles, m, ClassMap)
	if !ok || !hm.spec.Type.IsEventStream() || size == 0 {
		return 0
	}
	return h.handles.insert(ClassReader, &reader{
		m:            hm,
		size:         size,
		overwritable: wire.FromBool(uint64(overwritable)),
	})
}

func (h *Host) setPaused(r uint32, paused bool) uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()

	rd, ok := typed[*reader](h.handles, r, ClassReader)
	if !ok {
		return statusFail
	}
	rd.paused = paused
	return statusOK
}

// perfReaderRead returns the most recent record for an overwritable
// reader and consumes the oldest one otherwise.
func (h *Host) perfReaderRead(mem api.Memory, r uint32, dst uint64) uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()

	rd, ok := typed[*reader](h.handles, r, ClassReader)
	if !ok || (rd.overwritable && !rd.paused) || len(rd.m.records) == 0 {
		return statusFail
	}
	var rec []byte
	if rd.overwritable {
		rec = rd.m.records[len(rd.m.records)-1]
	} else {
		rec = rd.m.records[0]
		rd.m.records = rd.m.records[1:]
	}
	if uint32(len(rec)) > rd.size {
		rec = rec[:rd.size]
	}
	_, ok = writeRef(mem, dst, rec)
	return status(ok)
}

func (h *Host) perfReaderClose(r uint32) uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()

	_, ok := h.handles.remove(r, ClassReader)
	return status(ok)
}

func (h *Host) kallsymsSymbolExists(mem api.Memory, name uint64) uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()

	n, ok := readString(mem, name)
	return uint32(wire.Bool(ok && h.symbols[n]))
}

// getSyscallName synthesizes a name for unnamed numbers below
// maxSyscallID, as strace does.
func (h *Host) getSyscallName(mem api.Memory, id uint32, dst uint64) int32 {
	h.mu.Lock()
	defer h.mu.Unlock()

	name, ok := h.syscallNames[uint16(id)]
	if !ok || id > 0xffff {
		if id >= maxSyscallID {
			return wire.CountFailed
		}
		name = syscalls.Synthesize(uint16(id))
	}
	n, ok := writeRef(mem, dst, []byte(name))
	if !ok {
		return wire.CountFailed
	}
	return int32(n)
}

func (h *Host) getSyscallID(mem api.Memory, name uint64) int32 {
	h.mu.Lock()
	defer h.mu.Unlock()

	n, ok := readString(mem, name)
	if !ok {
		return -1
	}
	id, ok := h.syscallIDs[n]
	if !ok {
		return -1
	}
	return int32(id)
}

func (h *Host) getSyscallDeclaration(mem api.Memory, name, dst uint64) uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()

	n, ok := readString(mem, name)
	if !ok {
		return statusFail
	}
	decl, ok := h.declarations[n]
	if !ok {
		return statusFail
	}
	b, err := syscalls.EncodeDeclaration(decl)
	if err != nil || uint32(len(b)) > wire.Ref(dst).Len() {
		return statusFail
	}
	_, ok = writeRef(mem, dst, b)
	return status(ok)
}

func (h *Host) getParamValue(mem api.Memory, key, dst uint64) int32 {
	h.mu.Lock()
	defer h.mu.Unlock()

	k, ok := readString(mem, key)
	if !ok {
		return wire.CountFailed
	}
	v, ok := h.params[k]
	if !ok {
		return wire.CountFailed
	}
	n, ok := writeRef(mem, dst, []byte(v))
	if !ok {
		return wire.CountFailed
	}
	return int32(n)
}

func (h *Host) gadgetLog(mem api.Memory, level uint32, msg uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	m, ok := readString(mem, msg)
	if !ok {
		return
	}
	lvl := log.Level(level)
	h.logs = append(h.logs, LogLine{Level: lvl, Msg: m})

	fields := []zap.Field{zap.String("source", "gadget")}
	switch lvl {
	case log.ErrorLevel:
		h.logger.Error(m, fields...)
	case log.WarnLevel:
		h.logger.Warn(m, fields...)
	case log.InfoLevel:
		h.logger.Info(m, fields...)
	default:
		h.logger.Debug(m, append(fields, zap.Stringer("level", lvl))...)
	}
}

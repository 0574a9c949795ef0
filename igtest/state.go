package igtest

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/gadget-wasmapi/field"
	"github.com/wippyai/gadget-wasmapi/hostmap"
	"github.com/wippyai/gadget-wasmapi/log"
	"github.com/wippyai/gadget-wasmapi/syscalls"
)

// maxSyscallID bounds the numbers the host synthesizes names for.
const maxSyscallID = 0x1000

// perfBacklog is the number of records an event map keeps.
const perfBacklog = 64

// LogLine is one gadget log call received by the host.
type LogLine struct {
	Level log.Level
	Msg   string
}

type dataSource struct {
	name   string
	fields map[string]uint32
}

type fieldDef struct {
	ds   uint32
	name string
	kind field.Kind
	tags []string
}

type stored struct {
	raw uint64
	buf []byte
}

type record struct {
	ds     uint32
	values map[uint32]stored
}

// hostMap keeps entry keys in order from least to most recently used.
type hostMap struct {
	spec    hostmap.Spec
	owned   bool
	entries map[string][]byte
	order   []string
	records [][]byte
}

type reader struct {
	m            *hostMap
	size         uint32
	overwritable bool
	paused       bool
}

// Host is the in-memory state behind the host functions. Setup methods
// may be called at any time between guest calls.
type Host struct {
	mu sync.Mutex

	handles     *table
	dataSources map[string]uint32
	maps        map[string]uint32

	params       map[string]string
	symbols      map[string]bool
	syscallNames map[uint16]string
	syscallIDs   map[string]uint16
	declarations map[string]syscalls.Declaration

	releases map[string]int
	logs     []LogLine
	logger   *zap.Logger
}

// NewHost returns an empty host.
func NewHost(logger *zap.Logger) *Host {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Host{
		handles:      newTable(),
		dataSources:  make(map[string]uint32),
		maps:         make(map[string]uint32),
		params:       make(map[string]string),
		symbols:      make(map[string]bool),
		syscallNames: make(map[uint16]string),
		syscallIDs:   make(map[string]uint16),
		declarations: make(map[string]syscalls.Declaration),
		releases:     make(map[string]int),
		logger:       logger,
	}
}

// Subscribe registers an observer of handle lifecycle events.
func (h *Host) Subscribe(o Observer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handles.subscribe(o)
}

// Live returns the number of live handles of class c.
func (h *Host) Live(c Class) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.handles.count(c)
}

// SetParam sets a gadget parameter.
func (h *Host) SetParam(key, value string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.params[key] = value
}

// AddSymbol adds kernel symbols.
func (h *Host) AddSymbol(names ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, n := range names {
		h.symbols[n] = true
	}
}

// AddSyscall registers a syscall with its declaration.
func (h *Host) AddSyscall(id uint16, decl syscalls.Declaration) error {
	if len(decl.Params) > syscalls.MaxParams {
		return fmt.Errorf("syscall %s: %d parameters, at most %d", decl.Name, len(decl.Params), syscalls.MaxParams)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.syscallNames[id] = decl.Name
	h.syscallIDs[decl.Name] = id
	h.declarations[decl.Name] = decl
	return nil
}

// AddDataSource creates a data source with the given fields and returns
// its handle. Adding an existing name returns the existing handle.
func (h *Host) AddDataSource(name string, fields map[string]field.Kind) uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()

	ds, ok := h.dataSources[name]
	if !ok {
		ds = h.handles.insert(ClassDataSource, &dataSource{name: name, fields: make(map[string]uint32)})
		h.dataSources[name] = ds
	}
	for fname, kind := range fields {
		h.addField(ds, fname, kind)
	}
	return ds
}

func (h *Host) addField(ds uint32, name string, kind field.Kind) (uint32, bool) {
	src, ok := typed[*dataSource](h.handles, ds, ClassDataSource)
	if !ok {
		return 0, false
	}
	if _, exists := src.fields[name]; exists {
		return 0, false
	}
	fh := h.handles.insert(ClassField, &fieldDef{ds: ds, name: name, kind: kind})
	src.fields[name] = fh
	return fh, true
}

// Field returns the handle of a field, or 0.
func (h *Host) Field(dsName, name string) uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	src, ok := typed[*dataSource](h.handles, h.dataSources[dsName], ClassDataSource)
	if !ok {
		return 0
	}
	return src.fields[name]
}

// Tags returns the tags attached to a field.
func (h *Host) Tags(fieldHandle uint32) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	f, ok := typed[*fieldDef](h.handles, fieldHandle, ClassField)
	if !ok {
		return nil
	}
	return append([]string(nil), f.tags...)
}

// NewRecord creates an empty record of a data source and returns its
// handle, or 0 if the data source does not exist.
func (h *Host) NewRecord(dataSource string) uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	ds, ok := h.dataSources[dataSource]
	if !ok {
		return 0
	}
	return h.handles.insert(ClassRecord, &record{ds: ds, values: make(map[uint32]stored)})
}

// AddMap creates a host-owned map that gadgets obtain with hostmap.Get.
func (h *Host) AddMap(spec hostmap.Spec) (uint32, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.createMap(spec, false)
}

func (h *Host) createMap(spec hostmap.Spec, owned bool) (uint32, error) {
	if err := spec.Validate(); err != nil {
		return 0, err
	}
	if _, exists := h.maps[spec.Name]; exists {
		return 0, fmt.Errorf("map %q already exists", spec.Name)
	}
	m := &hostMap{spec: spec, owned: owned, entries: make(map[string][]byte)}
	handle := h.handles.insert(ClassMap, m)
	h.maps[spec.Name] = handle
	return handle, nil
}

// Emit appends a record to an event map.
func (h *Host) Emit(mapName string, rec []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	m, ok := typed[*hostMap](h.handles, h.maps[mapName], ClassMap)
	if !ok {
		return fmt.Errorf("no map %q", mapName)
	}
	if !m.spec.Type.IsEventStream() {
		return fmt.Errorf("map %q is a %s, not an event map", mapName, m.spec.Type)
	}
	m.records = append(m.records, append([]byte(nil), rec...))
	if len(m.records) > perfBacklog {
		m.records = m.records[len(m.records)-perfBacklog:]
	}
	return nil
}

// MapEntries returns the number of entries in a map.
func (h *Host) MapEntries(name string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	m, ok := typed[*hostMap](h.handles, h.maps[name], ClassMap)
	if !ok {
		return 0
	}
	return len(m.entries)
}

// Releases returns how many times the guest released the named map.
func (h *Host) Releases(mapName string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.releases[mapName]
}

// Logs returns the log lines received so far.
func (h *Host) Logs() []LogLine {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]LogLine(nil), h.logs...)
}

// leaks reports guest-owned resources that are still live.
func (h *Host) leaks() []error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var errs []error
	for handle, s := range h.handles.slots {
		switch v := s.value.(type) {
		case *hostMap:
			if v.owned {
				errs = append(errs, fmt.Errorf("map %q (handle %d) not released", v.spec.Name, handle))
			}
		case *reader:
			errs = append(errs, fmt.Errorf("reader on map %q (handle %d) not closed", v.m.spec.Name, handle))
		}
	}
	return errs
}

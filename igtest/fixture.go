package igtest

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/gadget-wasmapi/field"
	"github.com/wippyai/gadget-wasmapi/hostmap"
	"github.com/wippyai/gadget-wasmapi/syscalls"
)

// defaultFixture is loaded into every harness before user fixtures.
//
//go:embed defaults.yaml
var defaultFixture []byte

// Fixture describes initial host state.
type Fixture struct {
	Params      map[string]string `yaml:"params"`
	Symbols     []string          `yaml:"symbols"`
	Syscalls    []SyscallFixture  `yaml:"syscalls"`
	DataSources []DataSourceSpec  `yaml:"dataSources"`
	Maps        []MapFixture      `yaml:"maps"`
}

// SyscallFixture declares one syscall.
type SyscallFixture struct {
	ID     uint16         `yaml:"id"`
	Name   string         `yaml:"name"`
	Params []ParamFixture `yaml:"params"`
}

// ParamFixture declares one syscall parameter.
type ParamFixture struct {
	Name    string `yaml:"name"`
	Pointer bool   `yaml:"pointer"`
}

// DataSourceSpec declares a data source and its fields. Field kinds use
// the names printed by field.Kind.
type DataSourceSpec struct {
	Name   string            `yaml:"name"`
	Fields map[string]string `yaml:"fields"`
}

// MapFixture declares a host-owned map. Types use the names printed by
// hostmap.Type.
type MapFixture struct {
	Name       string `yaml:"name"`
	Type       string `yaml:"type"`
	KeySize    uint32 `yaml:"keySize"`
	ValueSize  uint32 `yaml:"valueSize"`
	MaxEntries uint32 `yaml:"maxEntries"`
}

// ParseFixture decodes a YAML fixture.
func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	return &f, nil
}

// LoadFixture reads and decodes a YAML fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return ParseFixture(data)
}

// Apply loads the fixture into h.
func (f *Fixture) Apply(h *Host) error {
	for k, v := range f.Params {
		h.SetParam(k, v)
	}
	h.AddSymbol(f.Symbols...)

	for _, sc := range f.Syscalls {
		decl := syscalls.Declaration{Name: sc.Name, Params: make([]syscalls.Param, len(sc.Params))}
		for i, p := range sc.Params {
			decl.Params[i] = syscalls.Param{Name: p.Name, IsPointer: p.Pointer}
		}
		if err := h.AddSyscall(sc.ID, decl); err != nil {
			return err
		}
	}

	for _, ds := range f.DataSources {
		fields := make(map[string]field.Kind, len(ds.Fields))
		for name, kind := range ds.Fields {
			k, err := field.ParseKind(kind)
			if err != nil {
				return fmt.Errorf("data source %s field %s: %w", ds.Name, name, err)
			}
			fields[name] = k
		}
		h.AddDataSource(ds.Name, fields)
	}

	for _, m := range f.Maps {
		t, err := hostmap.ParseType(m.Type)
		if err != nil {
			return fmt.Errorf("map %s: %w", m.Name, err)
		}
		if _, err := h.AddMap(hostmap.Spec{
			Name:       m.Name,
			Type:       t,
			KeySize:    m.KeySize,
			ValueSize:  m.ValueSize,
			MaxEntries: m.MaxEntries,
		}); err != nil {
			return err
		}
	}
	return nil
}

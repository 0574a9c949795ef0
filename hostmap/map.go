package hostmap

import (
	"go.uber.org/zap"

	"github.com/wippyai/gadget-wasmapi/errors"
	"github.com/wippyai/gadget-wasmapi/host"
	"github.com/wippyai/gadget-wasmapi/wire"
)

// Map is the set of operations shared by borrowed and owned maps.
// A Map must not be used from more than one goroutine at a time.
type Map interface {
	// Name returns the name the map was obtained or created with.
	Name() string
	// Handle returns the host handle.
	Handle() uint32
	// Lookup copies the value stored under key into value, which must be
	// a []byte or a pointer to a fixed-size value. The host reports a
	// single failure status, so a failed lookup on a map whose sizes are
	// not known to the guest (see Get) also matches ErrNotFound.
	Lookup(key, value any) error
	// Put stores value under key, creating or overwriting it.
	Put(key, value any) error
	// Update stores value under key subject to flags.
	Update(key, value any, flags UpdateFlags) error
	// Delete removes key.
	Delete(key any) error
	// Close ends the caller's use of the map.
	Close() error
}

var (
	_ Map = (*Borrowed)(nil)
	_ Map = (*Owned)(nil)
)

// Borrowed is a map owned by the host, obtained with Get.
type Borrowed struct {
	ref
}

// Get looks up an existing map by name.
func Get(env *host.Env, name string) (*Borrowed, error) {
	loan, err := env.LendString(name)
	if err != nil {
		return nil, err
	}
	defer loan.Release()

	h := env.Imports().GetMap(loan.Ref().Word())
	if h == 0 {
		return nil, errors.NotFound(errors.OpMapGet, name)
	}
	return &Borrowed{ref{env: env, name: name, handle: h}}, nil
}

// Close is a no-op: the host keeps ownership of a borrowed map.
func (m *Borrowed) Close() error {
	m.env.Logger().Debug("close of borrowed map ignored", zap.String("map", m.name))
	return nil
}

// Owned is a map created by the guest with New. It must be closed.
type Owned struct {
	ref
	spec Spec
}

// New creates a map. The returned map is released by Close.
func New(env *host.Env, spec Spec) (*Owned, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	name, err := env.LendString(spec.Name)
	if err != nil {
		return nil, err
	}
	defer name.Release()

	desc, err := env.LendAligned(spec.encode(name.Ref()), 8)
	if err != nil {
		return nil, err
	}
	defer desc.Release()

	h := env.Imports().NewMap(desc.Ref().Word())
	if h == 0 {
		return nil, errors.Creation(errors.OpMapNew, spec.Name, "host rejected "+spec.Type.String()+" map")
	}
	env.Logger().Debug("map created",
		zap.String("map", spec.Name),
		zap.Stringer("type", spec.Type),
		zap.Uint32("handle", h),
	)
	return &Owned{
		ref:  ref{env: env, name: spec.Name, handle: h, keySize: spec.KeySize, valueSize: spec.ValueSize},
		spec: spec,
	}, nil
}

// Spec returns the specification the map was created with.
func (m *Owned) Spec() Spec {
	return m.spec
}

// Close releases the host resource. Later calls are no-ops.
func (m *Owned) Close() error {
	if m.released {
		return nil
	}
	m.released = true
	if !wire.Status(m.env.Imports().MapRelease(m.handle)).OK() {
		return errors.New(errors.OpMapRelease, errors.KindMapOperation).
			Name(m.name).
			Detail("host refused release of handle %d", m.handle).
			Build()
	}
	return nil
}

// ref carries the operations common to both ownership variants.
// keySize and valueSize are 0 when the guest does not know them.
type ref struct {
	env       *host.Env
	name      string
	handle    uint32
	keySize   uint32
	valueSize uint32
	released  bool
}

func (m *ref) Name() string {
	return m.name
}

func (m *ref) Handle() uint32 {
	return m.handle
}

func (m *ref) check(op errors.Op) error {
	if m.released {
		return errors.New(op, errors.KindInvalidState).
			Name(m.name).
			Detail("map already released").
			Build()
	}
	return nil
}

// sized rejects a key or value whose length differs from the map's.
func (m *ref) sized(op errors.Op, what string, got, want uint32) error {
	if want == 0 || got == want {
		return nil
	}
	return errors.New(op, errors.KindMapOperation).
		Name(m.name).
		Detail("%s is %d bytes, map expects %d", what, got, want).
		Build()
}

func (m *ref) Lookup(key, value any) error {
	const op = errors.OpMapLookup
	if err := m.check(op); err != nil {
		return err
	}
	n, err := size(op, value)
	if err != nil {
		return err
	}
	if err := m.sized(op, "value", n, m.valueSize); err != nil {
		return err
	}
	k, err := m.lendKey(op, key)
	if err != nil {
		return err
	}
	defer k.Release()

	dst, err := m.env.Scratch(n)
	if err != nil {
		return err
	}
	defer dst.Release()

	if !wire.Status(m.env.Imports().MapLookup(m.handle, k.Ref().Word(), dst.Ref().Word())).OK() {
		return errors.MapOperation(op, m.name, errors.NotFound(op, "key"))
	}
	b, err := dst.Bytes(n)
	if err != nil {
		return err
	}
	return decode(op, b, value)
}

func (m *ref) Put(key, value any) error {
	return m.Update(key, value, UpdateAny)
}

func (m *ref) Update(key, value any, flags UpdateFlags) error {
	const op = errors.OpMapUpdate
	if err := m.check(op); err != nil {
		return err
	}
	k, err := m.lendKey(op, key)
	if err != nil {
		return err
	}
	defer k.Release()

	v, err := m.lendValue(op, value)
	if err != nil {
		return err
	}
	defer v.Release()

	if !wire.Status(m.env.Imports().MapUpdate(m.handle, k.Ref().Word(), v.Ref().Word(), uint64(flags))).OK() {
		return errors.New(op, errors.KindMapOperation).
			Name(m.name).
			Detail("host rejected update (%s)", flags).
			Build()
	}
	return nil
}

func (m *ref) Delete(key any) error {
	const op = errors.OpMapDelete
	if err := m.check(op); err != nil {
		return err
	}
	k, err := m.lendKey(op, key)
	if err != nil {
		return err
	}
	defer k.Release()

	if !wire.Status(m.env.Imports().MapDelete(m.handle, k.Ref().Word())).OK() {
		return errors.MapOperation(op, m.name, errors.NotFound(op, "key"))
	}
	return nil
}

func (m *ref) lendKey(op errors.Op, key any) (*host.Loan, error) {
	return m.lend(op, "key", key, m.keySize)
}

func (m *ref) lendValue(op errors.Op, v any) (*host.Loan, error) {
	return m.lend(op, "value", v, m.valueSize)
}

func (m *ref) lend(op errors.Op, what string, v any, want uint32) (*host.Loan, error) {
	b, err := encode(op, v)
	if err != nil {
		return nil, err
	}
	if err := m.sized(op, what, uint32(len(b)), want); err != nil {
		return nil, err
	}
	return m.env.LendAligned(b, 8)
}

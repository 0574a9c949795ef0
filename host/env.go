package host

import (
	"go.uber.org/zap"

	wasmapi "github.com/wippyai/gadget-wasmapi"
	"github.com/wippyai/gadget-wasmapi/errors"
	"github.com/wippyai/gadget-wasmapi/wire"
)

// Env is the host capability handed to every API call: the imported host
// functions plus the linear memory they address.
type Env struct {
	imports Imports
	mem     wasmapi.Memory
	alloc   wasmapi.Allocator
	logger  *zap.Logger
}

// Option configures an Env.
type Option func(*Env)

// WithLogger sets the logger used to trace host calls. It is unrelated to
// the gadget log emitted to the host (see package log).
func WithLogger(l *zap.Logger) Option {
	return func(e *Env) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Env. mem and alloc must address the same linear memory
// the host reads and writes through imports.
func New(imports Imports, mem wasmapi.Memory, alloc wasmapi.Allocator, opts ...Option) *Env {
	e := &Env{
		imports: imports,
		mem:     mem,
		alloc:   alloc,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = Logger()
	}
	return e
}

// Imports returns the host functions.
func (e *Env) Imports() Imports {
	return e.imports
}

// Memory returns the guest linear memory.
func (e *Env) Memory() wasmapi.Memory {
	return e.mem
}

// Logger returns the trace logger.
func (e *Env) Logger() *zap.Logger {
	return e.logger
}

// Loan is a region of linear memory lent to the host for one call.
type Loan struct {
	env   *Env
	addr  uint32
	size  uint32
	align uint32
}

// Lend copies data into freshly allocated linear memory.
func (e *Env) Lend(data []byte) (*Loan, error) {
	return e.lend(data, 1)
}

// LendAligned is Lend with an explicit alignment, for structs the host
// reads field by field.
func (e *Env) LendAligned(data []byte, align uint32) (*Loan, error) {
	return e.lend(data, align)
}

// LendString copies s into linear memory. No terminator is added.
func (e *Env) LendString(s string) (*Loan, error) {
	return e.lend([]byte(s), 1)
}

func (e *Env) lend(data []byte, align uint32) (*Loan, error) {
	if !wire.Fits(len(data)) {
		return nil, errors.New(errors.OpMemory, errors.KindAllocation).
			Detail("%d bytes do not fit a 32-bit length", len(data)).
			Build()
	}
	l, err := e.reserve(uint32(len(data)), align)
	if err != nil {
		return nil, err
	}
	if len(data) > 0 {
		if err := e.mem.Write(l.addr, data); err != nil {
			l.Release()
			return nil, errors.Wrap(errors.OpMemory, errors.KindAllocation, err, "copy into linear memory")
		}
	}
	return l, nil
}

// Scratch reserves a zeroed destination buffer of size bytes.
func (e *Env) Scratch(size uint32) (*Loan, error) {
	l, err := e.reserve(size, 8)
	if err != nil {
		return nil, err
	}
	if size > 0 {
		if err := e.mem.Write(l.addr, make([]byte, size)); err != nil {
			l.Release()
			return nil, errors.Wrap(errors.OpMemory, errors.KindAllocation, err, "zero scratch buffer")
		}
	}
	return l, nil
}

func (e *Env) reserve(size, align uint32) (*Loan, error) {
	addr, err := e.alloc.Alloc(size, align)
	if err != nil {
		return nil, errors.AllocationFailed(size, align, err)
	}
	return &Loan{env: e, addr: addr, size: size, align: align}, nil
}

// Ref returns the packed reference to the lent region.
func (l *Loan) Ref() wire.Ref {
	return wire.PackRef(l.addr, l.size)
}

// Addr returns the address of the lent region.
func (l *Loan) Addr() uint32 {
	return l.addr
}

// Size returns the length of the lent region.
func (l *Loan) Size() uint32 {
	return l.size
}

// Bytes returns a copy of the first n bytes of the region.
func (l *Loan) Bytes(n uint32) ([]byte, error) {
	if n > l.size {
		n = l.size
	}
	if n == 0 {
		return []byte{}, nil
	}
	view, err := l.env.mem.Read(l.addr, n)
	if err != nil {
		return nil, errors.Wrap(errors.OpMemory, errors.KindBufferAccess, err, "read lent region")
	}
	out := make([]byte, n)
	copy(out, view)
	return out, nil
}

// Release frees the region. Releasing twice is a no-op.
func (l *Loan) Release() {
	if l == nil || l.env == nil {
		return
	}
	l.env.alloc.Free(l.addr, l.size, l.align)
	l.env = nil
}

package events

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/gadget-wasmapi/errors"
	"github.com/wippyai/gadget-wasmapi/host"
	"github.com/wippyai/gadget-wasmapi/hostmap"
	"github.com/wippyai/gadget-wasmapi/wire"
)

// State is the run state of a Reader.
type State uint8

const (
	Active State = iota
	Paused
	Closed
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Paused:
		return "paused"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Reader is a host event reader bound to one map. It is owned by its
// creator and must be closed.
type Reader struct {
	env          *host.Env
	source       hostmap.Map
	handle       uint32
	entrySize    uint32
	overwritable bool
	state        State
}

// NewReader creates a reader over m. entrySize is the size of one record.
func NewReader(env *host.Env, m hostmap.Map, entrySize uint32, overwritable bool) (*Reader, error) {
	if entrySize == 0 {
		return nil, errors.New(errors.OpReaderNew, errors.KindCreation).
			Name(m.Name()).
			Detail("entry size must be positive").
			Build()
	}

	h := env.Imports().NewPerfReader(m.Handle(), entrySize, uint32(wire.Bool(overwritable)))
	if h == 0 {
		return nil, errors.Creation(errors.OpReaderNew, m.Name(), "host rejected reader")
	}
	env.Logger().Debug("event reader created",
		zap.String("map", m.Name()),
		zap.Uint32("entry_size", entrySize),
		zap.Bool("overwritable", overwritable),
	)
	return &Reader{
		env:          env,
		source:       m,
		handle:       h,
		entrySize:    entrySize,
		overwritable: overwritable,
		state:        Active,
	}, nil
}

// State returns the current state.
func (r *Reader) State() State {
	return r.state
}

// Map returns the map the reader is bound to.
func (r *Reader) Map() hostmap.Map {
	return r.source
}

// EntrySize returns the declared record size.
func (r *Reader) EntrySize() uint32 {
	return r.entrySize
}

// Pause stops the host from delivering records. The host is notified
// even if the reader is already paused.
func (r *Reader) Pause() error {
	return r.transition(errors.OpReaderPause, Paused, r.env.Imports().PerfReaderPause)
}

// Resume restarts delivery. The host is notified even if the reader is
// already active.
func (r *Reader) Resume() error {
	return r.transition(errors.OpReaderResume, Active, r.env.Imports().PerfReaderResume)
}

func (r *Reader) transition(op errors.Op, to State, call func(uint32) uint32) error {
	if r.state == Closed {
		return errors.InvalidState(op, "reader closed")
	}
	if !wire.Status(call(r.handle)).OK() {
		return errors.New(op, errors.KindMapOperation).
			Name(r.source.Name()).
			Detail("host rejected transition to %s", to).
			Build()
	}
	r.state = to
	return nil
}

// Read copies one record into dst, which must hold at least EntrySize
// bytes. An overwritable reader must be paused first.
func (r *Reader) Read(dst []byte) error {
	const op = errors.OpReaderRead
	switch {
	case r.state == Closed:
		return errors.InvalidState(op, "reader closed")
	case r.overwritable && r.state == Active:
		return errors.InvalidState(op, "overwritable reader must be paused before reading")
	case uint64(len(dst)) < uint64(r.entrySize):
		return errors.BufferAccess(op, fmt.Sprintf("destination of %d bytes smaller than entry size %d", len(dst), r.entrySize))
	}

	scratch, err := r.env.Scratch(r.entrySize)
	if err != nil {
		return err
	}
	defer scratch.Release()

	if !wire.Status(r.env.Imports().PerfReaderRead(r.handle, scratch.Ref().Word())).OK() {
		return errors.BufferAccess(op, "host read failed")
	}
	b, err := scratch.Bytes(r.entrySize)
	if err != nil {
		return err
	}
	copy(dst, b)
	return nil
}

// Close releases the reader. Later calls are no-ops. The bound map is
// not closed.
func (r *Reader) Close() error {
	if r.state == Closed {
		return nil
	}
	r.state = Closed
	if !wire.Status(r.env.Imports().PerfReaderClose(r.handle)).OK() {
		return errors.New(errors.OpReaderClose, errors.KindMapOperation).
			Name(r.source.Name()).
			Detail("host refused release of reader %d", r.handle).
			Build()
	}
	return nil
}

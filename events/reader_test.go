package events_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/gadget-wasmapi/errors"
	"github.com/wippyai/gadget-wasmapi/events"
	"github.com/wippyai/gadget-wasmapi/hostmap"
	"github.com/wippyai/gadget-wasmapi/igtest"
)

const entrySize = 256

func event(a, b uint32, c uint8) []byte {
	rec := make([]byte, entrySize)
	binary.LittleEndian.PutUint32(rec[0:], a)
	binary.LittleEndian.PutUint32(rec[4:], b)
	rec[8] = c
	return rec
}

func newReader(t *testing.T, h *igtest.Harness, overwritable bool) *events.Reader {
	t.Helper()
	m, err := hostmap.Get(h.Env(), "events")
	require.NoError(t, err)
	r, err := events.NewReader(h.Env(), m, entrySize, overwritable)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestReader_Overwritable(t *testing.T) {
	h := igtest.New(t)
	r := newReader(t, h, true)
	assert.Equal(t, events.Active, r.State())

	buf := make([]byte, entrySize)
	err := r.Read(buf)
	assert.True(t, errors.Is(err, errors.ErrInvalidState), "read while active")

	require.NoError(t, h.Host().Emit("events", event(1, 1, 1)))
	require.NoError(t, h.Host().Emit("events", event(42, 42, 43)))

	require.NoError(t, r.Pause())
	assert.Equal(t, events.Paused, r.State())
	require.NoError(t, r.Read(buf))
	assert.Equal(t, event(42, 42, 43), buf)

	require.NoError(t, r.Read(buf), "snapshot reads do not consume")
	assert.Equal(t, event(42, 42, 43), buf)

	require.NoError(t, r.Resume())
	assert.Equal(t, events.Active, r.State())
	assert.True(t, errors.Is(r.Read(buf), errors.ErrInvalidState))
	assert.Zero(t, h.InUse())
}

func TestReader_PauseTwiceNotifiesHost(t *testing.T) {
	h := igtest.New(t)
	r := newReader(t, h, true)

	require.NoError(t, r.Pause())
	require.NoError(t, r.Pause())
	assert.Equal(t, events.Paused, r.State())
	require.NoError(t, r.Resume())
	require.NoError(t, r.Resume())
	assert.Equal(t, events.Active, r.State())
}

func TestReader_Consuming(t *testing.T) {
	h := igtest.New(t)
	r := newReader(t, h, false)

	buf := make([]byte, entrySize)
	assert.True(t, errors.Is(r.Read(buf), errors.ErrBufferAccess), "nothing to read")

	require.NoError(t, h.Host().Emit("events", event(1, 0, 0)))
	require.NoError(t, h.Host().Emit("events", event(2, 0, 0)))

	require.NoError(t, r.Read(buf))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(buf))
	require.NoError(t, r.Read(buf))
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(buf))
}

func TestReader_ShortDestination(t *testing.T) {
	h := igtest.New(t)
	r := newReader(t, h, false)
	require.NoError(t, h.Host().Emit("events", event(1, 0, 0)))

	err := r.Read(make([]byte, entrySize-1))
	assert.True(t, errors.Is(err, errors.ErrBufferAccess))
}

func TestReader_Close(t *testing.T) {
	h := igtest.New(t)
	r := newReader(t, h, true)

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	assert.Equal(t, events.Closed, r.State())
	assert.Zero(t, h.Host().Live(igtest.ClassReader))

	assert.True(t, errors.Is(r.Pause(), errors.ErrInvalidState))
	assert.True(t, errors.Is(r.Resume(), errors.ErrInvalidState))
	assert.True(t, errors.Is(r.Read(make([]byte, entrySize)), errors.ErrInvalidState))
}

func TestNewReader_Rejected(t *testing.T) {
	h := igtest.New(t)

	kv, err := hostmap.Get(h.Env(), "test_map")
	require.NoError(t, err)
	_, err = events.NewReader(h.Env(), kv, entrySize, true)
	assert.True(t, errors.Is(err, errors.ErrCreation), "not an event map")

	ev, err := hostmap.Get(h.Env(), "events")
	require.NoError(t, err)
	_, err = events.NewReader(h.Env(), ev, 0, true)
	assert.True(t, errors.Is(err, errors.ErrCreation), "zero entry size")
}

func TestReader_OwnedRingBuffer(t *testing.T) {
	h := igtest.New(t)
	rb, err := hostmap.New(h.Env(), hostmap.Spec{Name: "rb", Type: hostmap.RingBuf, MaxEntries: 4096})
	require.NoError(t, err)
	defer rb.Close()

	r, err := events.NewReader(h.Env(), rb, 16, false)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, hostmap.Map(rb), r.Map())
	assert.Equal(t, uint32(16), r.EntrySize())

	require.NoError(t, h.Host().Emit("rb", []byte("hello")))
	buf := make([]byte, 16)
	require.NoError(t, r.Read(buf))
	assert.Equal(t, "hello", string(buf[:5]))
	assert.Equal(t, make([]byte, 11), buf[5:], "tail is zeroed")
}

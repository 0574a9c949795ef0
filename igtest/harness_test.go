package igtest_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/gadget-wasmapi/field"
	"github.com/wippyai/gadget-wasmapi/host"
	"github.com/wippyai/gadget-wasmapi/hostmap"
	"github.com/wippyai/gadget-wasmapi/igtest"
	"github.com/wippyai/gadget-wasmapi/params"
)

func TestNew_Succeeds(t *testing.T) {
	h := igtest.New(t)
	require.NotNil(t, h.Env(), "harness must hand out an Env")

	v, err := params.Value(h.Env(), "param-key", 32)
	require.NoError(t, err, "a call through the guest module must reach the host")
	assert.Equal(t, "param-value", v)
	assert.Zero(t, h.InUse())
}

func TestWithInterceptor(t *testing.T) {
	h := igtest.New(t, igtest.WithInterceptor(func(next host.Imports) host.Imports {
		return missingParams{next}
	}))

	_, err := params.Value(h.Env(), "param-key", 32)
	assert.Error(t, err)
}

type missingParams struct {
	host.Imports
}

func (missingParams) GetParamValue(_, _ uint64) int32 {
	return -1
}

func TestBadErrorPointerTraps(t *testing.T) {
	h := igtest.New(t)

	defer func() {
		r := recover()
		require.NotNil(t, r, "host call with a wild error pointer must not return")
		trap, ok := r.(*igtest.TrapError)
		require.True(t, ok, "panic value %T", r)
		assert.Equal(t, "fieldGetScalar", trap.Func)
	}()
	h.Env().Imports().FieldGetScalar(55, 55, uint32(field.KindUint32), 0xfffffff0)
	t.Fatal("unreachable")
}

func TestErrorSlotWritten(t *testing.T) {
	h := igtest.New(t)
	const slot = 0x100

	h.Env().Imports().FieldGetScalar(55, 55, uint32(field.KindUint32), slot)
	v, ok := h.Memory().ReadUint32Le(slot)
	require.True(t, ok)
	assert.NotZero(t, v)
}

func TestClose_ReportsLeaks(t *testing.T) {
	h, err := igtest.NewHarness(context.Background())
	require.NoError(t, err)

	m, err := hostmap.New(h.Env(), hostmap.Spec{
		Name: "leaked", Type: hostmap.Hash, KeySize: 4, ValueSize: 4, MaxEntries: 1,
	})
	require.NoError(t, err)
	require.NotNil(t, m)

	err = h.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `map "leaked"`)
	assert.NoError(t, h.Close(), "second close is a no-op")
}

func TestClose_WithoutLeakCheck(t *testing.T) {
	h, err := igtest.NewHarness(context.Background(), igtest.WithoutLeakCheck())
	require.NoError(t, err)

	_, err = hostmap.New(h.Env(), hostmap.Spec{
		Name: "leaked", Type: hostmap.Hash, KeySize: 4, ValueSize: 4, MaxEntries: 1,
	})
	require.NoError(t, err)
	assert.NoError(t, h.Close())
}

func TestWithoutDefaults(t *testing.T) {
	h := igtest.New(t, igtest.WithoutDefaults())

	_, err := hostmap.Get(h.Env(), "test_map")
	assert.Error(t, err)
	_, err = params.Value(h.Env(), "param-key", 32)
	assert.Error(t, err)
}

func TestFixture(t *testing.T) {
	fx, err := igtest.ParseFixture([]byte(`
params:
  interval: 5s
dataSources:
  - name: open
    fields:
      pid: uint32
      fname: string
maps:
  - name: filter
    type: lru_hash
    keySize: 8
    valueSize: 1
    maxEntries: 128
`))
	require.NoError(t, err)
	h := igtest.New(t, igtest.WithFixture(fx))

	v, err := params.Value(h.Env(), "interval", 8)
	require.NoError(t, err)
	assert.Equal(t, "5s", v)

	ds, err := field.GetDataSource(h.Env(), "open")
	require.NoError(t, err)
	fd, err := ds.GetField("pid")
	require.NoError(t, err)
	assert.Equal(t, h.Host().Field("open", "pid"), fd.Handle())

	m, err := hostmap.Get(h.Env(), "filter")
	require.NoError(t, err)
	require.NoError(t, m.Put(uint64(1), uint8(1)))
}

func TestFixture_Invalid(t *testing.T) {
	_, err := igtest.ParseFixture([]byte("params: [unterminated"))
	assert.Error(t, err)

	tests := map[string]string{
		"bad kind":  "dataSources: [{name: d, fields: {x: int128}}]",
		"bad type":  "maps: [{name: m, type: bloom, keySize: 4, valueSize: 4, maxEntries: 1}]",
		"duplicate": "maps: [{name: test_map, type: hash, keySize: 4, valueSize: 4, maxEntries: 1}]",
		"too many":  "syscalls: [{id: 1, name: x, params: [{name: a}, {name: b}, {name: c}, {name: d}, {name: e}, {name: f}, {name: g}]}]",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			fx, err := igtest.ParseFixture([]byte(doc))
			require.NoError(t, err)
			_, err = igtest.NewHarness(context.Background(), igtest.WithFixture(fx))
			assert.Error(t, err)
		})
	}
}

func TestObserver(t *testing.T) {
	h := igtest.New(t)
	var dropped []igtest.Class
	h.Host().Subscribe(igtest.ObserverFunc(func(e igtest.Event) {
		if e.Type == igtest.EventDropped {
			dropped = append(dropped, e.Class)
		}
	}))

	m, err := hostmap.New(h.Env(), hostmap.Spec{
		Name: "observed", Type: hostmap.Hash, KeySize: 4, ValueSize: 4, MaxEntries: 1,
	})
	require.NoError(t, err)
	require.NoError(t, m.Close())
	assert.Equal(t, []igtest.Class{igtest.ClassMap}, dropped)
}

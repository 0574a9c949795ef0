package hostmap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/gadget-wasmapi/errors"
	"github.com/wippyai/gadget-wasmapi/hostmap"
	"github.com/wippyai/gadget-wasmapi/igtest"
)

// testKey matches the C layout {int a; int b; char c;} with its padding.
type testKey struct {
	A int32
	B int32
	C int8
	_ [3]int8
}

func TestGet_NotFound(t *testing.T) {
	h := igtest.New(t)

	_, err := hostmap.Get(h.Env(), "nonexistent")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	assert.True(t, errors.Is(err, &errors.Error{Kind: errors.KindNotFound, Op: errors.OpMapGet}))
}

func TestBorrowed_CRUD(t *testing.T) {
	h := igtest.New(t)
	m, err := hostmap.Get(h.Env(), "test_map")
	require.NoError(t, err)
	defer m.Close()

	k := testKey{A: 42, B: 42, C: 43}
	var v int32

	require.NoError(t, m.Put(k, int32(42)))
	require.NoError(t, m.Lookup(k, &v))
	assert.Equal(t, int32(42), v)

	require.NoError(t, m.Update(k, int32(43), hostmap.UpdateOnly))
	require.NoError(t, m.Lookup(k, &v))
	assert.Equal(t, int32(43), v)

	require.NoError(t, m.Delete(k))
	err = m.Lookup(k, &v)
	assert.True(t, errors.Is(err, errors.ErrNotFound), "got %v", err)
	assert.True(t, errors.Is(err, errors.ErrMapOperation))

	err = m.Delete(k)
	assert.True(t, errors.Is(err, errors.ErrMapOperation))
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	assert.Zero(t, h.InUse())
}

func TestUpdateFlags(t *testing.T) {
	h := igtest.New(t)
	m, err := hostmap.Get(h.Env(), "test_map")
	require.NoError(t, err)

	k := testKey{A: 1}

	err = m.Update(k, int32(1), hostmap.UpdateOnly)
	assert.True(t, errors.Is(err, errors.ErrMapOperation), "update of absent key")
	require.NoError(t, m.Update(k, int32(1), hostmap.CreateOnly))

	err = m.Update(k, int32(2), hostmap.CreateOnly)
	assert.True(t, errors.Is(err, errors.ErrMapOperation), "create of existing key")
	require.NoError(t, m.Update(k, int32(2), hostmap.UpdateOnly))

	require.NoError(t, m.Update(k, int32(3), hostmap.UpdateAny))
	var v int32
	require.NoError(t, m.Lookup(k, &v))
	assert.Equal(t, int32(3), v)

	err = m.Update(k, int32(3), hostmap.UpdateFlags(7))
	assert.True(t, errors.Is(err, errors.ErrMapOperation))
}

func TestBorrowed_CloseIsNoop(t *testing.T) {
	h := igtest.New(t)
	m, err := hostmap.Get(h.Env(), "test_map")
	require.NoError(t, err)

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
	assert.Zero(t, h.Host().Releases("test_map"))

	require.NoError(t, m.Put(testKey{A: 5}, int32(5)))
	assert.Equal(t, 1, h.Host().MapEntries("test_map"))
}

func TestNew_Capacity(t *testing.T) {
	h := igtest.New(t)
	_, err := hostmap.Get(h.Env(), "nonexistent")
	require.True(t, errors.Is(err, errors.ErrNotFound))

	m, err := hostmap.New(h.Env(), hostmap.Spec{
		Name:       "map_test",
		Type:       hostmap.Hash,
		KeySize:    4,
		ValueSize:  4,
		MaxEntries: 1,
	})
	require.NoError(t, err)
	defer m.Close()

	var v int32
	require.NoError(t, m.Put(int32(42), int32(43)))
	require.NoError(t, m.Lookup(int32(42), &v))
	assert.Equal(t, int32(43), v)

	err = m.Put(int32(0xdead), int32(0xcafe))
	assert.True(t, errors.Is(err, errors.ErrMapOperation))

	require.NoError(t, m.Put(int32(42), int32(44)), "overwrite within capacity")
	assert.Equal(t, "map_test", m.Name())
	assert.Equal(t, uint32(1), m.Spec().MaxEntries)
}

func TestNew_LRUEvicts(t *testing.T) {
	h := igtest.New(t)
	m, err := hostmap.New(h.Env(), hostmap.Spec{
		Name: "lru", Type: hostmap.LRUHash, KeySize: 4, ValueSize: 8, MaxEntries: 2,
	})
	require.NoError(t, err)
	defer m.Close()

	for i := uint32(0); i < 3; i++ {
		require.NoError(t, m.Put(i, uint64(i)*10))
	}
	var v uint64
	assert.True(t, errors.Is(m.Lookup(uint32(0), &v), errors.ErrNotFound))
	require.NoError(t, m.Lookup(uint32(2), &v))
	assert.Equal(t, uint64(20), v)
}

func TestNew_LRURefreshesOnAccess(t *testing.T) {
	h := igtest.New(t)
	m, err := hostmap.New(h.Env(), hostmap.Spec{
		Name: "lru", Type: hostmap.LRUHash, KeySize: 4, ValueSize: 8, MaxEntries: 2,
	})
	require.NoError(t, err)
	defer m.Close()

	var v uint64
	require.NoError(t, m.Put(uint32(0), uint64(0)))
	require.NoError(t, m.Put(uint32(1), uint64(10)))
	require.NoError(t, m.Lookup(uint32(0), &v))
	require.NoError(t, m.Put(uint32(2), uint64(20)))

	assert.True(t, errors.Is(m.Lookup(uint32(1), &v), errors.ErrNotFound), "least recently used is evicted")
	require.NoError(t, m.Lookup(uint32(0), &v), "looked-up key survives")

	require.NoError(t, m.Put(uint32(2), uint64(21)))
	require.NoError(t, m.Put(uint32(3), uint64(30)))
	assert.True(t, errors.Is(m.Lookup(uint32(0), &v), errors.ErrNotFound), "overwrite refreshes key 2")
	require.NoError(t, m.Lookup(uint32(2), &v))
	assert.Equal(t, uint64(21), v)
}

func TestNew_Array(t *testing.T) {
	h := igtest.New(t)
	m, err := hostmap.New(h.Env(), hostmap.Spec{
		Name: "counters", Type: hostmap.Array, KeySize: 4, ValueSize: 8, MaxEntries: 4,
	})
	require.NoError(t, err)
	defer m.Close()

	var v uint64
	require.NoError(t, m.Lookup(uint32(3), &v), "array slots always exist")
	assert.Zero(t, v)

	require.NoError(t, m.Update(uint32(3), uint64(7), hostmap.UpdateOnly))
	require.NoError(t, m.Lookup(uint32(3), &v))
	assert.Equal(t, uint64(7), v)

	assert.True(t, errors.Is(m.Update(uint32(1), uint64(1), hostmap.CreateOnly), errors.ErrMapOperation))
	assert.True(t, errors.Is(m.Put(uint32(4), uint64(1)), errors.ErrMapOperation), "index out of range")
	assert.True(t, errors.Is(m.Delete(uint32(0)), errors.ErrMapOperation))
}

func TestNew_Rejected(t *testing.T) {
	h := igtest.New(t)

	_, err := hostmap.New(h.Env(), hostmap.Spec{Name: "m", Type: hostmap.Hash, ValueSize: 4, MaxEntries: 1})
	assert.True(t, errors.Is(err, errors.ErrCreation), "guest-side validation")

	_, err = hostmap.New(h.Env(), hostmap.Spec{Name: "test_map", Type: hostmap.Hash, KeySize: 4, ValueSize: 4, MaxEntries: 1})
	assert.True(t, errors.Is(err, errors.ErrCreation), "name collision")
	assert.Zero(t, h.InUse())
}

func TestOwned_CloseOnce(t *testing.T) {
	h := igtest.New(t)
	m, err := hostmap.New(h.Env(), hostmap.Spec{
		Name: "scoped", Type: hostmap.Hash, KeySize: 4, ValueSize: 4, MaxEntries: 8,
	})
	require.NoError(t, err)
	live := h.Host().Live(igtest.ClassMap)

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
	assert.Equal(t, 1, h.Host().Releases("scoped"))
	assert.Equal(t, live-1, h.Host().Live(igtest.ClassMap))

	var v uint32
	for _, err := range []error{
		m.Put(uint32(1), uint32(1)),
		m.Update(uint32(1), uint32(1), hostmap.UpdateAny),
		m.Lookup(uint32(1), &v),
		m.Delete(uint32(1)),
	} {
		assert.True(t, errors.Is(err, errors.ErrInvalidState), "got %v", err)
	}

	_, err = hostmap.Get(h.Env(), "scoped")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestSizeMismatch(t *testing.T) {
	h := igtest.New(t)
	m, err := hostmap.Get(h.Env(), "test_map")
	require.NoError(t, err)

	err = m.Put(uint32(1), int32(1))
	assert.True(t, errors.Is(err, errors.ErrMapOperation), "4-byte key for a 12-byte map")

	var wide uint64
	err = m.Lookup(testKey{}, &wide)
	assert.True(t, errors.Is(err, errors.ErrMapOperation))

	err = m.Put(testKey{}, "not fixed size")
	assert.True(t, errors.Is(err, errors.ErrTypeMismatch))
}

func TestOwned_SizeMismatch(t *testing.T) {
	h := igtest.New(t)
	m, err := hostmap.New(h.Env(), hostmap.Spec{
		Name: "sized", Type: hostmap.Hash, KeySize: 4, ValueSize: 4, MaxEntries: 4,
	})
	require.NoError(t, err)
	defer m.Close()
	require.NoError(t, m.Put(uint32(1), uint32(1)))

	var wide uint64
	err = m.Lookup(uint32(1), &wide)
	assert.True(t, errors.Is(err, errors.ErrMapOperation))
	assert.False(t, errors.Is(err, errors.ErrNotFound), "wrong value size is not a missing key")

	var v uint32
	err = m.Lookup(uint64(1), &v)
	assert.True(t, errors.Is(err, errors.ErrMapOperation))
	assert.False(t, errors.Is(err, errors.ErrNotFound), "wrong key size is not a missing key")

	err = m.Delete(uint16(1))
	assert.False(t, errors.Is(err, errors.ErrNotFound))
	assert.True(t, errors.Is(m.Put(uint32(2), uint16(2)), errors.ErrMapOperation))

	err = m.Lookup(uint32(9), &v)
	assert.True(t, errors.Is(err, errors.ErrNotFound), "matching sizes keep the not-found cause")
	assert.Zero(t, h.InUse())
}

func TestMapInterface(t *testing.T) {
	h := igtest.New(t)

	var maps []hostmap.Map
	b, err := hostmap.Get(h.Env(), "test_map")
	require.NoError(t, err)
	maps = append(maps, b)
	o, err := hostmap.New(h.Env(), hostmap.Spec{
		Name: "owned", Type: hostmap.Hash, KeySize: 12, ValueSize: 4, MaxEntries: 4,
	})
	require.NoError(t, err)
	maps = append(maps, o)

	for _, m := range maps {
		t.Run(m.Name(), func(t *testing.T) {
			defer m.Close()
			require.NotZero(t, m.Handle())
			require.NoError(t, m.Put(testKey{A: 9}, int32(9)))
			raw := make([]byte, 4)
			require.NoError(t, m.Lookup(testKey{A: 9}, raw))
			assert.Equal(t, []byte{9, 0, 0, 0}, raw)
		})
	}
}

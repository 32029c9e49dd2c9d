package host

import (
	"bytes"
	"sync"
	"testing"

	"github.com/aradilov/eventqueue"
	"github.com/joeycumines/logiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hitEvent struct {
	Target int
	Damage int
}

type spawnEvent struct {
	ID int
}

func newTestRegistry(t *testing.T, cfg Config) *Registry {
	t.Helper()
	reg, err := NewRegistry(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.Close() })
	return reg
}

func TestRegistryLazyPerType(t *testing.T) {
	reg := newTestRegistry(t, DefaultConfig())

	_, ok := Lookup[hitEvent](reg)
	assert.False(t, ok)

	a, err := Events[hitEvent](reg)
	require.NoError(t, err)
	b, err := Events[hitEvent](reg)
	require.NoError(t, err)
	assert.Same(t, a, b)

	s, err := Events[spawnEvent](reg)
	require.NoError(t, err)
	assert.Equal(t, "host.spawnEvent", s.Name())
	assert.Equal(t, 2, reg.Len())

	c, ok := Lookup[hitEvent](reg)
	require.True(t, ok)
	assert.Same(t, a, c)
}

func TestRegistryCapacityOverrides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitialCapacity = 8
	cfg.Capacities = map[string]int{"host.hitEvent": 32}
	reg := newTestRegistry(t, cfg)

	hits, err := Events[hitEvent](reg)
	require.NoError(t, err)
	spawns, err := Events[spawnEvent](reg)
	require.NoError(t, err)

	assert.Equal(t, 8, reg.Config().InitialCapacity)
	assert.Equal(t, 32, hits.Capacity())
	assert.Equal(t, 8, spawns.Capacity())

	require.NoError(t, EnsureCapacity[spawnEvent](reg, 100))
	assert.Equal(t, 128, spawns.Capacity())
}

func TestRegistrySwapsEveryQueue(t *testing.T) {
	reg := newTestRegistry(t, DefaultConfig())

	hw, err := Writer[hitEvent](reg)
	require.NoError(t, err)
	sw, err := Writer[spawnEvent](reg)
	require.NoError(t, err)
	hr, err := Reader[hitEvent](reg)
	require.NoError(t, err)
	sr, err := Reader[spawnEvent](reg)
	require.NoError(t, err)

	hw.Write(hitEvent{Target: 1, Damage: 5})
	sw.Write(spawnEvent{ID: 9})
	reg.Swap()

	hits := hr.Read()
	assert.Equal(t, []hitEvent{{Target: 1, Damage: 5}}, hits.AppendTo(nil))
	spawns := sr.Read()
	assert.Equal(t, []spawnEvent{{ID: 9}}, spawns.AppendTo(nil))

	for _, s := range reg.Stats() {
		assert.Equal(t, uint64(1), s.Swaps, s.Name)
		assert.Equal(t, uint64(1), s.Written, s.Name)
	}
}

func TestRegistryRemove(t *testing.T) {
	reg := newTestRegistry(t, DefaultConfig())

	e, err := Events[hitEvent](reg)
	require.NoError(t, err)
	require.NoError(t, Remove[hitEvent](reg))
	assert.False(t, e.IsCreated())
	assert.Zero(t, reg.Len())
	require.ErrorIs(t, Remove[hitEvent](reg), ErrNotRegistered)

	// a fresh queue is created on next access
	again, err := Events[hitEvent](reg)
	require.NoError(t, err)
	assert.NotSame(t, e, again)
	assert.True(t, again.IsCreated())
}

func TestRegistryClose(t *testing.T) {
	reg, err := NewRegistry(DefaultConfig(), nil)
	require.NoError(t, err)

	e, err := Events[hitEvent](reg)
	require.NoError(t, err)
	require.NoError(t, reg.Close())
	assert.False(t, e.IsCreated())

	_, err = Events[hitEvent](reg)
	require.ErrorIs(t, err, ErrRegistryClosed)
	_, err = Writer[hitEvent](reg)
	require.ErrorIs(t, err, ErrRegistryClosed)
	_, err = Reader[hitEvent](reg)
	require.ErrorIs(t, err, ErrRegistryClosed)
	require.ErrorIs(t, EnsureCapacity[hitEvent](reg, 1), ErrRegistryClosed)
	require.ErrorIs(t, reg.Close(), ErrRegistryClosed)
}

func TestRegistryRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitialCapacity = -1
	_, err := NewRegistry(cfg, nil)
	require.ErrorIs(t, err, eventqueue.ErrInvalidCapacity)
}

func TestRegistryConcurrentLookup(t *testing.T) {
	reg := newTestRegistry(t, DefaultConfig())

	const goroutines = 16
	got := make([]*eventqueue.Events[hitEvent], goroutines)
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := range got {
		go func() {
			defer wg.Done()
			e, err := Events[hitEvent](reg)
			assert.NoError(t, err)
			got[i] = e
		}()
	}
	wg.Wait()

	for _, e := range got {
		assert.Same(t, got[0], e)
	}
	assert.Equal(t, 1, reg.Len())
}

func TestRegistryLogsRegistration(t *testing.T) {
	var buf bytes.Buffer
	reg, err := NewRegistry(DefaultConfig(), NewLogger(&buf, logiface.LevelInformational))
	require.NoError(t, err)
	defer reg.Close()

	_, err = Events[hitEvent](reg)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"events":"host.hitEvent"`)
}

package cache_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alejandrodnm/surebet/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock es un reloj manual para controlar la expiración.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func TestTTL_SetGetExpire(t *testing.T) {
	clock := newFakeClock()
	c := cache.New[string](cache.WithClock(clock.Now))

	c.Set("k", "v", time.Second)

	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)

	// justo en el límite sigue viva: expira solo si now - storedAt > ttl
	clock.Advance(time.Second)
	assert.True(t, c.Has("k"))

	clock.Advance(time.Millisecond)
	_, ok = c.Get("k")
	assert.False(t, ok)

	// el Get anterior la borró
	assert.Equal(t, cache.Stats{}, c.Stats())
}

func TestTTL_StatsDoesNotMutate(t *testing.T) {
	clock := newFakeClock()
	c := cache.New[int](cache.WithClock(clock.Now))

	c.Set("short", 1, time.Second)
	c.Set("long", 2, time.Hour)

	assert.Equal(t, cache.Stats{Total: 2, Active: 2, Expired: 0}, c.Stats())

	clock.Advance(2 * time.Second)

	// sin Get: la entrada caducada sigue contada como expired
	assert.Equal(t, cache.Stats{Total: 2, Active: 1, Expired: 1}, c.Stats())
	assert.Equal(t, cache.Stats{Total: 2, Active: 1, Expired: 1}, c.Stats())

	_, ok := c.Get("short")
	assert.False(t, ok)
	assert.Equal(t, cache.Stats{Total: 1, Active: 1, Expired: 0}, c.Stats())
}

func TestTTL_RealClockExpiry(t *testing.T) {
	c := cache.New[string]()
	c.Set("k", "v", 50*time.Millisecond)

	assert.True(t, c.Has("k"))
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, 1, c.Stats().Expired)
	assert.False(t, c.Has("k"))
}

func TestTTL_EntryExposesStoredAt(t *testing.T) {
	clock := newFakeClock()
	c := cache.New[[]int](cache.WithClock(clock.Now))

	start := clock.Now()
	c.Set("k", []int{1, 2}, time.Minute)
	clock.Advance(30 * time.Second)

	e, ok := c.Entry("k")
	require.True(t, ok)
	assert.Equal(t, start, e.StoredAt)
	assert.Equal(t, 30*time.Second, e.Age(clock.Now()))
	assert.Equal(t, 30*time.Second, e.Age(c.Now()))
	assert.Equal(t, []int{1, 2}, e.Value)
}

func TestTTL_OverwriteResetsStoredAt(t *testing.T) {
	clock := newFakeClock()
	c := cache.New[string](cache.WithClock(clock.Now))

	c.Set("k", "old", time.Second)
	clock.Advance(900 * time.Millisecond)
	c.Set("k", "new", time.Second)
	clock.Advance(900 * time.Millisecond)

	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "new", v)
}

func TestTTL_ClearAndDelete(t *testing.T) {
	c := cache.New[int]()
	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)

	c.Delete("a")
	assert.False(t, c.Has("a"))
	assert.True(t, c.Has("b"))

	c.Clear()
	assert.Equal(t, 0, c.Stats().Total)
}

func TestTTL_ConcurrentAccess(t *testing.T) {
	c := cache.New[int]()
	var wg sync.WaitGroup

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				key := fmt.Sprintf("k%d", j%10)
				if _, ok := c.Get(key); !ok {
					c.Set(key, i, time.Minute)
				}
				c.Stats()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, c.Stats().Total)
}

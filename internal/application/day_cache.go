package application

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/example/shift-roster/internal/scheduler"
)

// dayCache memoizes resolved schedule days per (date, subject) key. A
// generation counter invalidates the whole cache in one cheap flip:
// entries written under an older generation are simply ignored at read
// time. Concurrent requests for the same key within one generation share
// a single computation.
type dayCache struct {
	mu         sync.Mutex
	generation uint64
	store      *lru.Cache[string, cachedDay]
	inflight   map[string]*dayComputation
}

type cachedDay struct {
	generation uint64
	day        scheduler.WorkScheduleDay
}

type dayComputation struct {
	done chan struct{}
	day  scheduler.WorkScheduleDay
	err  error
}

func newDayCache(size int) *dayCache {
	if size <= 0 {
		size = 512
	}
	store, err := lru.New[string, cachedDay](size)
	if err != nil {
		// lru.New only fails on a non-positive size.
		panic(err)
	}
	return &dayCache{
		store:    store,
		inflight: make(map[string]*dayComputation),
	}
}

// GetOrCompute returns the cached day for key, or runs compute exactly
// once per generation and caches the result. The boolean reports a cache
// hit (including joining an in-flight computation). Errors are returned
// to every waiter and never cached.
func (c *dayCache) GetOrCompute(key string, compute func() (scheduler.WorkScheduleDay, error)) (scheduler.WorkScheduleDay, bool, error) {
	c.mu.Lock()
	generation := c.generation
	if entry, ok := c.store.Get(key); ok && entry.generation == generation {
		c.mu.Unlock()
		return entry.day.Clone(), true, nil
	}

	flightKey := fmt.Sprintf("%d|%s", generation, key)
	if comp, ok := c.inflight[flightKey]; ok {
		c.mu.Unlock()
		<-comp.done
		if comp.err != nil {
			return scheduler.WorkScheduleDay{}, true, comp.err
		}
		return comp.day.Clone(), true, nil
	}

	comp := &dayComputation{done: make(chan struct{})}
	c.inflight[flightKey] = comp
	c.mu.Unlock()

	comp.day, comp.err = compute()
	close(comp.done)

	c.mu.Lock()
	delete(c.inflight, flightKey)
	if comp.err == nil && c.generation == generation {
		c.store.Add(key, cachedDay{generation: generation, day: comp.day})
	}
	c.mu.Unlock()

	if comp.err != nil {
		return scheduler.WorkScheduleDay{}, false, comp.err
	}
	return comp.day.Clone(), false, nil
}

// Invalidate advances the generation. Stale entries stay in the LRU until
// evicted or overwritten; readers ignore them by generation comparison.
func (c *dayCache) Invalidate() {
	c.mu.Lock()
	c.generation++
	c.mu.Unlock()
}

// Generation returns the current cache generation, used by tests.
func (c *dayCache) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Package cache memoizes extraction results keyed by file identity, with a
// fixed capacity and least-recently-used eviction. Entries live in an arena
// of slots threaded onto an explicit doubly linked recency list, so both
// lookup and eviction are O(1) and the LRU invariants are spelled out rather
// than hidden inside a container.
package cache

import (
	"sync"

	"github.com/arangr/arangr/internal/preview"
)

// DefaultCapacity is the entry count used when none is configured.
const DefaultCapacity = 200

const nilSlot = -1

// slot is one arena cell. prev/next thread the recency list from most to
// least recently used; free slots are chained through next.
type slot struct {
	id      preview.FileIdentity
	preview preview.Preview
	prev    int
	next    int
}

// Cache is a bounded, LRU-evicting preview cache. All methods are safe for
// concurrent use; every read-modify-write runs under one mutex so no caller
// observes an intermediate state.
type Cache struct {
	mu       sync.Mutex
	capacity int
	slots    []slot
	free     int                          // head of the free-slot chain
	head     int                          // most recently used
	tail     int                          // least recently used
	index    map[preview.FileIdentity]int // identity -> slot
	byPath   map[string]int               // path -> slot, for staleness invalidation
}

// New creates a cache bounded to capacity entries.
func New(capacity int) *Cache {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	c := &Cache{
		capacity: capacity,
		slots:    make([]slot, capacity),
		head:     nilSlot,
		tail:     nilSlot,
		index:    make(map[preview.FileIdentity]int, capacity),
		byPath:   make(map[string]int, capacity),
	}
	for i := range c.slots {
		c.slots[i].next = i + 1
		c.slots[i].prev = nilSlot
	}
	c.slots[capacity-1].next = nilSlot
	c.free = 0
	return c
}

// Get returns a copy of the cached preview for an identity and marks it most
// recently used.
func (c *Cache) Get(id preview.FileIdentity) (preview.Preview, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.index[id]
	if !ok {
		return preview.Preview{}, false
	}
	c.unlink(i)
	c.pushFront(i)
	return c.slots[i].preview.Clone(), true
}

// Put stores a preview for an identity. A newer identity for the same path
// supersedes the old entry: the stale entry is removed, never updated in
// place. When the cache is full the least recently used entry is evicted.
func (c *Cache) Put(id preview.FileIdentity, p preview.Preview) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Same identity already present: refresh content and recency.
	if i, ok := c.index[id]; ok {
		c.slots[i].preview = p.Clone()
		c.unlink(i)
		c.pushFront(i)
		return
	}

	// A stale identity for this path is invalidated by the new one.
	if i, ok := c.byPath[id.Path]; ok {
		c.remove(i)
	}

	if c.free == nilSlot {
		c.remove(c.tail)
	}

	i := c.free
	c.free = c.slots[i].next
	c.slots[i] = slot{id: id, preview: p.Clone(), prev: nilSlot, next: nilSlot}
	c.index[id] = i
	c.byPath[id.Path] = i
	c.pushFront(i)
}

// GetOrExtract returns the cached preview for an identity, calling extract
// on a miss and storing its result. The extraction itself runs outside the
// lock; suppressing duplicate concurrent extractions for one identity is the
// scheduler's job.
func (c *Cache) GetOrExtract(id preview.FileIdentity, extract func() (preview.Preview, error)) (preview.Preview, error) {
	if p, ok := c.Get(id); ok {
		return p, nil
	}
	p, err := extract()
	if err != nil {
		// Request-level failures are never cached; the next request
		// retries.
		return preview.Preview{}, err
	}
	c.Put(id, p)
	return p, nil
}

// InvalidatePath drops any entry for a path, whatever its identity.
func (c *Cache) InvalidatePath(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i, ok := c.byPath[path]; ok {
		c.remove(i)
	}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.index)
}

// unlink detaches a slot from the recency list. Caller holds the lock.
func (c *Cache) unlink(i int) {
	s := &c.slots[i]
	if s.prev != nilSlot {
		c.slots[s.prev].next = s.next
	} else if c.head == i {
		c.head = s.next
	}
	if s.next != nilSlot {
		c.slots[s.next].prev = s.prev
	} else if c.tail == i {
		c.tail = s.prev
	}
	s.prev, s.next = nilSlot, nilSlot
}

// pushFront makes a detached slot the most recently used. Caller holds the
// lock.
func (c *Cache) pushFront(i int) {
	c.slots[i].prev = nilSlot
	c.slots[i].next = c.head
	if c.head != nilSlot {
		c.slots[c.head].prev = i
	}
	c.head = i
	if c.tail == nilSlot {
		c.tail = i
	}
}

// remove evicts a slot entirely and returns it to the free chain. Caller
// holds the lock.
func (c *Cache) remove(i int) {
	if i == nilSlot {
		return
	}
	c.unlink(i)
	delete(c.index, c.slots[i].id)
	if c.byPath[c.slots[i].id.Path] == i {
		delete(c.byPath, c.slots[i].id.Path)
	}
	c.slots[i] = slot{prev: nilSlot, next: c.free}
	c.free = i
}

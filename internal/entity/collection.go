package entity

import (
	"maps"
	"sync"
	"sync/atomic"
)

// clock issues versions. Versions are unique across collections, so two
// collections edited from the same view never report the same version for
// different contents.
var clock atomic.Uint64

// Option customises a Collection.
type Option[T any] func(*config[T])

type config[T any] struct {
	key   func(T) int
	order func(a, b T) int
	clone func(T) T
	equal func(a, b T) bool
}

// WithOrder declares the collection's sort rule. Entities that compare equal
// keep insertion order.
func WithOrder[T any](cmp func(a, b T) int) Option[T] {
	return func(c *config[T]) { c.order = cmp }
}

// WithClone sets the copy applied to entities handed out by SelectByID,
// SelectAll and SelectEntities.
func WithClone[T any](fn func(T) T) Option[T] {
	return func(c *config[T]) { c.clone = fn }
}

// WithEqual lets writes that leave an entity unchanged skip the version bump,
// so refetching identical data does not invalidate derived views.
func WithEqual[T any](eq func(a, b T) bool) Option[T] {
	return func(c *config[T]) { c.equal = eq }
}

type entry[T any] struct {
	value T
	seq   uint64 // insertion slot
	rev   uint64 // collection version that last wrote the entity
}

type table[T any] struct {
	entries map[int]entry[T]
	nextSeq uint64
	version uint64
	shared  bool

	once   *sync.Once
	sorted []T
	index  map[int]T
}

func newTable[T any]() *table[T] {
	return &table[T]{entries: make(map[int]entry[T]), once: new(sync.Once)}
}

func (t *table[T]) clone() *table[T] {
	return &table[T]{
		entries: maps.Clone(t.entries),
		nextSeq: t.nextSeq,
		version: t.version,
		once:    new(sync.Once),
	}
}

// Collection is the mutable, ID-indexed store for one entity type. It is not
// safe for concurrent use; readers on other goroutines take a View via Freeze.
type Collection[T any] struct {
	cfg *config[T]
	t   *table[T]
}

// New builds an empty collection keyed by key.
func New[T any](key func(T) int, opts ...Option[T]) *Collection[T] {
	cfg := &config[T]{key: key}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Collection[T]{cfg: cfg, t: newTable[T]()}
}

// batch tracks one logical write. The version is bumped only when the write
// changed something.
type batch[T any] struct {
	c       *Collection[T]
	next    uint64
	changed bool
}

func (c *Collection[T]) begin() *batch[T] {
	if c.t.shared {
		c.t = c.t.clone()
	}
	return &batch[T]{c: c, next: clock.Add(1)}
}

func (b *batch[T]) put(v T) {
	t := b.c.t
	id := b.c.cfg.key(v)
	e, ok := t.entries[id]
	if ok && b.c.cfg.equal != nil && b.c.cfg.equal(e.value, v) {
		return
	}
	if !ok {
		e.seq = t.nextSeq
		t.nextSeq++
	}
	e.value = v
	e.rev = b.next
	t.entries[id] = e
	b.changed = true
}

func (b *batch[T]) remove(id int) {
	if _, ok := b.c.t.entries[id]; !ok {
		return
	}
	delete(b.c.t.entries, id)
	b.changed = true
}

func (b *batch[T]) end() bool {
	if !b.changed {
		return false
	}
	t := b.c.t
	t.version = b.next
	t.once = new(sync.Once)
	t.sorted = nil
	t.index = nil
	return true
}

// UpsertOne inserts v or replaces the entity with the same ID. A replaced
// entity keeps its insertion slot.
func (c *Collection[T]) UpsertOne(v T) {
	b := c.begin()
	b.put(v)
	b.end()
}

// UpsertMany upserts every value in input order as one write.
func (c *Collection[T]) UpsertMany(vs []T) {
	if len(vs) == 0 {
		return
	}
	b := c.begin()
	for _, v := range vs {
		b.put(v)
	}
	b.end()
}

// SetAll replaces the collection contents with vs. IDs present before and
// after keep their insertion slot.
func (c *Collection[T]) SetAll(vs []T) {
	keep := make(map[int]struct{}, len(vs))
	for _, v := range vs {
		keep[c.cfg.key(v)] = struct{}{}
	}
	b := c.begin()
	for id := range c.t.entries {
		if _, ok := keep[id]; !ok {
			b.remove(id)
		}
	}
	for _, v := range vs {
		b.put(v)
	}
	b.end()
}

// Modify replaces the entity with fn applied to it. It reports false when
// the ID is absent.
func (c *Collection[T]) Modify(id int, fn func(T) T) bool {
	e, ok := c.t.entries[id]
	if !ok {
		return false
	}
	b := c.begin()
	b.put(fn(e.value))
	b.end()
	return true
}

// RemoveOne deletes the entity with id. Absent IDs are ignored.
func (c *Collection[T]) RemoveOne(id int) {
	if _, ok := c.t.entries[id]; !ok {
		return
	}
	b := c.begin()
	b.remove(id)
	b.end()
}

// RemoveMany deletes every listed ID that is present.
func (c *Collection[T]) RemoveMany(ids []int) {
	b := c.begin()
	for _, id := range ids {
		b.remove(id)
	}
	b.end()
}

// RemoveAll clears the collection.
func (c *Collection[T]) RemoveAll() {
	if len(c.t.entries) == 0 {
		return
	}
	b := c.begin()
	for id := range c.t.entries {
		b.remove(id)
	}
	b.end()
}

// Freeze returns an immutable view of the current version. The next write
// copies the storage before mutating it.
func (c *Collection[T]) Freeze() View[T] {
	c.t.shared = true
	return View[T]{cfg: c.cfg, t: c.t}
}

func (c *Collection[T]) view() View[T] {
	return View[T]{cfg: c.cfg, t: c.t}
}

// SelectByID returns the entity with id.
func (c *Collection[T]) SelectByID(id int) (T, bool) { return c.view().SelectByID(id) }

// SelectAll returns the entities in the collection's declared order.
func (c *Collection[T]) SelectAll() []T { return c.view().SelectAll() }

// SelectEntities returns the entities keyed by ID.
func (c *Collection[T]) SelectEntities() map[int]T { return c.view().SelectEntities() }

// Has reports whether id is present.
func (c *Collection[T]) Has(id int) bool { return c.view().Has(id) }

// Len returns the number of entities.
func (c *Collection[T]) Len() int { return c.view().Len() }

// Version returns the collection version.
func (c *Collection[T]) Version() uint64 { return c.t.version }

// Revision returns the version that last wrote id.
func (c *Collection[T]) Revision(id int) (uint64, bool) { return c.view().Revision(id) }

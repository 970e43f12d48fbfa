// Package entity provides the normalized, ID-indexed collection used for every
// entity type in the cache.
//
// # Storage
//
// A Collection keeps its entities in a map keyed by integer ID. Each entry
// remembers its insertion slot and the collection version that last wrote
// it (its revision). Every write that changes the contents bumps the
// collection version; writes that change nothing leave it alone. Versions come
// from one process-wide counter, so they increase monotonically per collection
// and never repeat across collections.
//
// # Ordering
//
// The declared sort rule (WithOrder) is applied on read, not on write.
// The first SelectAll or SelectEntities on a version materializes the
// ordered slice and the ID index; later calls on the same version return
// the same slice and map. Ties keep insertion order, and upserting an
// existing ID keeps its slot.
//
// # Versions and copy-on-write
//
// Freeze hands out an immutable View of the current version and marks the
// storage shared. The first write after a freeze copies the storage once;
// writes between freezes mutate in place. Readers holding a View never
// observe later writes, which is what lets derived views be memoized by
// version instead of by deep comparison.
//
//	c := entity.New(func(p Product) int { return p.ID }, entity.WithOrder(byName))
//	c.UpsertOne(p)
//	v := c.Freeze()   // readers use v
//	c.RemoveOne(p.ID) // copies storage; v still contains p
package entity

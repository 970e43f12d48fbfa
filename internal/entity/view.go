package entity

import (
	"cmp"
	"slices"
)

// View is an immutable version of a Collection. The zero View is empty.
//
// Slices and maps returned by a View are shared between callers and must not
// be modified.
type View[T any] struct {
	cfg *config[T]
	t   *table[T]
}

// Edit returns a collection that starts from this version. The view itself
// is unaffected by writes to it.
func (v View[T]) Edit() *Collection[T] {
	if v.t == nil {
		panic("entity: Edit on zero View")
	}
	return &Collection[T]{cfg: v.cfg, t: v.t}
}

// IsZero reports whether v is the zero View rather than a frozen version.
func (v View[T]) IsZero() bool { return v.t == nil }

// SelectByID returns the entity with id.
func (v View[T]) SelectByID(id int) (T, bool) {
	var zero T
	if v.t == nil {
		return zero, false
	}
	e, ok := v.t.entries[id]
	if !ok {
		return zero, false
	}
	if v.cfg.clone != nil {
		return v.cfg.clone(e.value), true
	}
	return e.value, true
}

// SelectAll returns the entities in declared order. Repeated calls on the
// same version return the same slice; its elements are copies, so writes
// through them never reach the stored entities.
func (v View[T]) SelectAll() []T {
	if v.t == nil {
		return nil
	}
	v.materialize()
	return v.t.sorted
}

// SelectEntities returns the entities keyed by ID. Repeated calls on the same
// version return the same map.
func (v View[T]) SelectEntities() map[int]T {
	if v.t == nil {
		return nil
	}
	v.materialize()
	return v.t.index
}

// Has reports whether id is present.
func (v View[T]) Has(id int) bool {
	if v.t == nil {
		return false
	}
	_, ok := v.t.entries[id]
	return ok
}

// Len returns the number of entities.
func (v View[T]) Len() int {
	if v.t == nil {
		return 0
	}
	return len(v.t.entries)
}

// Version returns the collection version the view was taken at.
func (v View[T]) Version() uint64 {
	if v.t == nil {
		return 0
	}
	return v.t.version
}

// Revision returns the version that last wrote id.
func (v View[T]) Revision(id int) (uint64, bool) {
	if v.t == nil {
		return 0, false
	}
	e, ok := v.t.entries[id]
	return e.rev, ok
}

func (v View[T]) materialize() {
	t := v.t
	t.once.Do(func() {
		entries := make([]entry[T], 0, len(t.entries))
		index := make(map[int]T, len(t.entries))
		for id, e := range t.entries {
			if v.cfg.clone != nil {
				e.value = v.cfg.clone(e.value)
			}
			entries = append(entries, e)
			index[id] = e.value
		}
		slices.SortFunc(entries, func(a, b entry[T]) int { return cmp.Compare(a.seq, b.seq) })
		if order := v.cfg.order; order != nil {
			slices.SortStableFunc(entries, func(a, b entry[T]) int { return order(a.value, b.value) })
		}
		sorted := make([]T, len(entries))
		for i, e := range entries {
			sorted[i] = e.value
		}
		t.sorted = sorted
		t.index = index
	})
}

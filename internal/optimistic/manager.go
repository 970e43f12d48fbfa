package optimistic

import (
	"slices"
	"sync"

	"github.com/five82/storefront/internal/catalog"
	"github.com/five82/storefront/internal/state"
)

// Patch is one optimistic change that is waiting for the server.
type Patch struct {
	ProductID int
	Changes   catalog.ProductPatch

	// before holds the value to restore for each field this patch still owns.
	before catalog.ProductPatch
	done   bool
}

// Before returns the values a rollback of p would restore.
func (p *Patch) Before() catalog.ProductPatch { return p.before }

// Manager applies optimistic product patches to a store and settles them.
// Patches to the same product are tracked in the order they began.
type Manager struct {
	mu      sync.Mutex
	store   *state.Store
	pending map[int][]*Patch
}

// NewManager returns a manager writing through store.
func NewManager(store *state.Store) *Manager {
	return &Manager{store: store, pending: make(map[int][]*Patch)}
}

// Begin applies changes to the cached product immediately. It returns false
// and a nil patch when the product is not cached; nothing is applied then.
func (m *Manager) Begin(productID int, changes catalog.ProductPatch) (*Patch, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	eff := m.store.Dispatch(state.Update{ProductID: productID, Patch: changes})
	if !eff.Found {
		return nil, false
	}
	p := &Patch{ProductID: productID, Changes: changes, before: eff.Inverse}
	m.pending[productID] = append(m.pending[productID], p)
	return p, true
}

// Rollback undoes p. Fields that a later pending patch also wrote are left
// alone; that patch inherits p's pre-image instead, so rolling both back in
// any order restores the original values.
func (m *Manager) Rollback(p *Patch) {
	if p == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	_, later, ok := m.detach(p)
	if !ok {
		return
	}
	restore := handOff(p.before, later)
	if !restore.IsEmpty() {
		m.store.Dispatch(state.Update{ProductID: p.ProductID, Patch: restore})
	}
}

// Commit settles p as accepted. When authoritative is non-nil its field
// values are written into the cache, except fields owned by patches that
// are still pending.
func (m *Manager) Commit(p *Patch, authoritative *catalog.Product) {
	if p == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	earlier, later, ok := m.detach(p)
	if !ok {
		return
	}

	written := p.Changes.Fields()
	committed := p.Changes
	if authoritative != nil {
		committed = authoritative.Capture(written)
	}
	// An earlier patch rolling back must not undo a committed later value.
	for _, e := range earlier {
		e.before = e.before.Without(written)
	}
	handOff(committed, later)

	if authoritative == nil {
		return
	}
	var owned catalog.FieldSet
	for _, q := range m.pending[p.ProductID] {
		owned |= q.Changes.Fields()
	}
	reconcile := authoritative.Capture(catalog.AllFields).Without(owned)
	if !reconcile.IsEmpty() {
		m.store.Dispatch(state.Update{ProductID: p.ProductID, Patch: reconcile})
	}
}

// FinishQuery completes a store query and re-applies pending patches on top
// of any product the result rewrote. Each re-applied patch now restores the
// fetched value on rollback.
func (m *Manager) FinishQuery(t state.Ticket, cmd state.Command, err error) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.FinishQueryWith(t, cmd, err, m.rebase)
}

func (m *Manager) rebase(c catalog.Collections, since uint64) {
	for id, list := range m.pending {
		if rev, ok := c.Products.Revision(id); !ok || rev <= since {
			continue
		}
		for _, p := range list {
			owned := p.Changes.Only(p.before.Fields())
			if owned.IsEmpty() {
				continue
			}
			c.Products.Modify(id, func(cur catalog.Product) catalog.Product {
				next, inverse := cur.Apply(owned)
				p.before = inverse
				return next
			})
		}
	}
}

// Forget drops every pending patch for productID, for example after the
// product was deleted. Forgotten patches settle as no-ops.
func (m *Manager) Forget(productID int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.pending[productID] {
		p.done = true
	}
	delete(m.pending, productID)
}

// Pending returns the number of unsettled patches for productID.
func (m *Manager) Pending(productID int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending[productID])
}

// detach removes p from the pending list and returns the patches that began
// before and after it.
func (m *Manager) detach(p *Patch) (earlier, later []*Patch, ok bool) {
	if p.done {
		return nil, nil, false
	}
	list := m.pending[p.ProductID]
	i := slices.Index(list, p)
	if i < 0 {
		return nil, nil, false
	}
	p.done = true
	earlier = slices.Clone(list[:i])
	later = slices.Clone(list[i+1:])
	list = slices.Delete(list, i, i+1)
	if len(list) == 0 {
		delete(m.pending, p.ProductID)
	} else {
		m.pending[p.ProductID] = list
	}
	return earlier, later, true
}

// handOff gives each field of values to the earliest later patch that wrote
// it and returns the fields nobody claimed.
func handOff(values catalog.ProductPatch, later []*Patch) catalog.ProductPatch {
	for _, q := range later {
		claimed := values.Fields() & q.Changes.Fields()
		if claimed == 0 {
			continue
		}
		q.before = q.before.Merge(values.Only(claimed))
		values = values.Without(claimed)
	}
	return values
}

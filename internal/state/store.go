package state

import (
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/five82/storefront/internal/catalog"
	"github.com/five82/storefront/internal/selector"
)

// Status is the lifecycle of a logical query.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// QueryStatus is the observable state of one query key.
type QueryStatus struct {
	Status    Status
	Err       error
	Failures  int // consecutive failures
	UpdatedAt time.Time
}

// Mutation names a mutation intent.
type Mutation string

const (
	MutationCreateProduct Mutation = "createProduct"
	MutationUpdateProduct Mutation = "updateProduct"
	MutationDeleteProduct Mutation = "deleteProduct"
	MutationCreateReview  Mutation = "createReview"
)

// MutationStatus is the observable state of one mutation intent.
type MutationStatus struct {
	InFlight int
	Err      error // last failure, cleared by the next success
}

// IsLoading reports whether any call of the mutation is in flight.
func (m MutationStatus) IsLoading() bool { return m.InFlight > 0 }

// Ticket identifies one issued request for a query key.
type Ticket struct {
	Key string
	seq uint64
}

type queryState struct {
	status    QueryStatus
	issued    uint64
	committed uint64
}

// Store is the root aggregate: the four entity collections, request
// lifecycle metadata and UI selection, behind one lock. NewStore builds a
// ready store; the zero value is also ready.
type Store struct {
	mu          sync.RWMutex
	cols        catalog.Collections
	ready       bool
	queries     map[string]*queryState
	mutations   map[Mutation]MutationStatus
	selected    int
	lastUpdated time.Time
	lastError   error
	failures    int
	engine      *selector.Engine
}

// NewStore returns an empty store.
func NewStore() *Store {
	s := &Store{}
	s.Reset()
	return s
}

// Reset drops all cached data, statuses and memoized views.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cols = catalog.NewCollections()
	s.ready = true
	s.queries = make(map[string]*queryState)
	s.mutations = make(map[Mutation]MutationStatus)
	s.selected = catalog.NoCategory
	s.lastUpdated = time.Time{}
	s.lastError = nil
	s.failures = 0
	if s.engine == nil {
		s.engine = selector.New()
	} else {
		s.engine.Reset()
	}
}

func (s *Store) ensure() {
	if !s.ready {
		s.cols = catalog.NewCollections()
		s.queries = make(map[string]*queryState)
		s.mutations = make(map[Mutation]MutationStatus)
		s.engine = selector.New()
		s.ready = true
	}
}

// Dispatch applies cmd atomically.
func (s *Store) Dispatch(cmd Command) Effect {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensure()
	eff := Apply(s.cols, cmd)
	s.lastUpdated = time.Now()
	return eff
}

// SelectCategory sets the category filter; catalog.NoCategory clears it.
func (s *Store) SelectCategory(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = id
}

// BeginQuery marks key as loading and returns the ticket that must be
// passed to FinishQuery.
func (s *Store) BeginQuery(key string) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensure()
	q := s.query(key)
	q.issued++
	q.status.Status = StatusLoading
	q.status.UpdatedAt = time.Now()
	return Ticket{Key: key, seq: q.issued}
}

// Overlay re-applies local state on top of a query result that just landed.
// since is the products version from before the result was applied. It runs
// under the store lock and must not call back into the Store.
type Overlay func(c catalog.Collections, since uint64)

// FinishQuery completes a request. On success cmd is applied, unless a
// request issued later for the same key has already committed; such a
// superseded completion changes nothing. Status, the last error and the
// consecutive failure count move only when t is the latest request for its
// key. FinishQuery
// reports whether cmd was applied.
func (s *Store) FinishQuery(t Ticket, cmd Command, err error) bool {
	return s.FinishQueryWith(t, cmd, err, nil)
}

// FinishQueryWith is FinishQuery with overlay run right after cmd is
// applied, in the same critical section, so no snapshot observes the result
// without it.
func (s *Store) FinishQueryWith(t Ticket, cmd Command, err error, overlay Overlay) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensure()
	q := s.query(t.Key)
	if t.seq <= q.committed {
		return false
	}

	now := time.Now()
	applied := false
	if err == nil && cmd != nil {
		since := s.cols.Products.Version()
		Apply(s.cols, cmd)
		if overlay != nil {
			overlay(s.cols, since)
		}
		q.committed = t.seq
		applied = true
		s.lastUpdated = now
	}
	if t.seq != q.issued {
		return applied
	}
	if err == nil {
		s.lastError = nil
		s.failures = 0
	} else {
		s.lastError = err
		s.failures++
	}
	q.status.UpdatedAt = now
	if err != nil {
		q.status.Status = StatusFailed
		q.status.Err = err
		q.status.Failures++
		return applied
	}
	q.status.Status = StatusSucceeded
	q.status.Err = nil
	q.status.Failures = 0
	return applied
}

func (s *Store) query(key string) *queryState {
	q, ok := s.queries[key]
	if !ok {
		q = &queryState{status: QueryStatus{Status: StatusIdle}}
		s.queries[key] = q
	}
	return q
}

// BeginMutation marks one call of m as in flight.
func (s *Store) BeginMutation(m Mutation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensure()
	st := s.mutations[m]
	st.InFlight++
	s.mutations[m] = st
}

// FinishMutation records the outcome of one call of m.
func (s *Store) FinishMutation(m Mutation, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensure()
	st := s.mutations[m]
	if st.InFlight > 0 {
		st.InFlight--
	}
	st.Err = err
	s.mutations[m] = st
}

// Snapshot returns a consistent, immutable view of the store.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensure()

	snap := Snapshot{
		Tables:              s.cols.Freeze(),
		Queries:             make(map[string]QueryStatus, len(s.queries)),
		Mutations:           maps.Clone(s.mutations),
		SelectedCategory:    s.selected,
		LastUpdated:         s.lastUpdated,
		ConsecutiveFailures: s.failures,
		engine:              s.engine,
	}
	for key, q := range s.queries {
		snap.Queries[key] = q.status
	}
	if s.lastError != nil {
		snap.LastError = fmt.Errorf("%w", s.lastError)
	}
	return snap
}

package state

import (
	"time"

	"github.com/five82/storefront/internal/catalog"
	"github.com/five82/storefront/internal/selector"
)

// Snapshot is the state handed to consumers. Everything in it is immutable
// or a copy.
type Snapshot struct {
	Tables              catalog.Tables
	Queries             map[string]QueryStatus
	Mutations           map[Mutation]MutationStatus
	SelectedCategory    int
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int

	engine *selector.Engine
}

// IsOffline returns true when the API has failed several requests in a row.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Query returns the status of key; unknown keys are idle.
func (s Snapshot) Query(key string) QueryStatus {
	if q, ok := s.Queries[key]; ok {
		return q
	}
	return QueryStatus{Status: StatusIdle}
}

// Mutation returns the status of m.
func (s Snapshot) Mutation(m Mutation) MutationStatus {
	return s.Mutations[m]
}

func (s Snapshot) selectors() *selector.Engine {
	if s.engine == nil {
		return selector.New()
	}
	return s.engine
}

// ProductWithDetails returns the joined product view, or nil.
func (s Snapshot) ProductWithDetails(id int) *selector.ProductDetails {
	return s.selectors().ProductWithDetails(s.Tables, id)
}

// ProductsByCategory returns products in categoryID (catalog.NoCategory for all).
func (s Snapshot) ProductsByCategory(categoryID int) []catalog.Product {
	return s.selectors().ProductsByCategory(s.Tables, categoryID)
}

// VisibleProducts returns the products in the selected category.
func (s Snapshot) VisibleProducts() []catalog.Product {
	return s.ProductsByCategory(s.SelectedCategory)
}

// ProductsWithCategories returns every product joined with its category.
func (s Snapshot) ProductsWithCategories() []selector.ProductWithCategory {
	return s.selectors().ProductsWithCategories(s.Tables)
}

// Stats returns catalog-wide counts.
func (s Snapshot) Stats() selector.Summary {
	return s.selectors().Stats(s.Tables)
}

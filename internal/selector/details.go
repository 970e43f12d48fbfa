package selector

import "github.com/five82/storefront/internal/catalog"

type source uint8

const (
	fromProducts source = iota
	fromCategories
	fromReviews
	fromUsers
)

// dep records one entity read while building a view: its revision when it
// was present, or its absence.
type dep struct {
	from    source
	id      int
	rev     uint64
	present bool
}

type detailsMemo struct {
	versions catalog.Versions
	deps     []dep
	out      *ProductDetails
}

func revision(t catalog.Tables, from source, id int) (uint64, bool) {
	switch from {
	case fromProducts:
		return t.Products.Revision(id)
	case fromCategories:
		return t.Categories.Revision(id)
	case fromReviews:
		return t.Reviews.Revision(id)
	default:
		return t.Users.Revision(id)
	}
}

func (m *detailsMemo) valid(t catalog.Tables, versions catalog.Versions) bool {
	if m.versions == versions {
		return true
	}
	for _, d := range m.deps {
		rev, ok := revision(t, d.from, d.id)
		if ok != d.present || rev != d.rev {
			return false
		}
	}
	m.versions = versions
	return true
}

// ProductWithDetails resolves productID with its category, reviews and
// review authors. It returns nil when the product is not cached. Reviews
// missing from the cache are dropped; a missing category or author is nil.
//
// The result is memoized per product on the revisions of every entity it
// read, so writes to unrelated entities, in any collection, return the same
// pointer as before.
func (e *Engine) ProductWithDetails(t catalog.Tables, productID int) *ProductDetails {
	e.mu.Lock()
	defer e.mu.Unlock()

	versions := t.Versions()
	if m, ok := e.details[productID]; ok && m.valid(t, versions) {
		e.counters.Reused++
		return m.out
	}

	product, ok := t.Products.SelectByID(productID)
	if !ok {
		delete(e.details, productID)
		return nil
	}
	e.counters.Computed++

	deps := make([]dep, 0, 2+2*len(product.ReviewIDs))
	track := func(from source, id int) bool {
		rev, ok := revision(t, from, id)
		deps = append(deps, dep{from: from, id: id, rev: rev, present: ok})
		return ok
	}
	track(fromProducts, productID)

	out := &ProductDetails{Product: product, Reviews: make([]ReviewWithAuthor, 0, len(product.ReviewIDs))}
	if track(fromCategories, product.CategoryID) {
		out.Category = lookupCategory(t, product.CategoryID)
	}
	for _, reviewID := range product.ReviewIDs {
		if !track(fromReviews, reviewID) {
			continue
		}
		review, _ := t.Reviews.SelectByID(reviewID)
		rw := ReviewWithAuthor{Review: review}
		if track(fromUsers, review.AuthorID) {
			author, _ := t.Users.SelectByID(review.AuthorID)
			rw.Author = &author
		}
		out.Reviews = append(out.Reviews, rw)
	}

	e.details[productID] = &detailsMemo{versions: versions, deps: deps, out: out}
	return out
}

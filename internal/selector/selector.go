package selector

import (
	"sync"

	"github.com/five82/storefront/internal/catalog"
)

// ProductDetails is a product joined with its category and its reviews,
// each review joined with its author. It is a copy: changing it never
// changes the cache.
type ProductDetails struct {
	Product  catalog.Product
	Category *catalog.Category // nil when the category is not cached
	Reviews  []ReviewWithAuthor
}

// ReviewWithAuthor is a review joined with its author.
type ReviewWithAuthor struct {
	catalog.Review
	Author *catalog.User // nil when the author is not cached
}

// ProductWithCategory is a product joined with its category for listings.
type ProductWithCategory struct {
	catalog.Product
	Category *catalog.Category
}

// Summary aggregates catalog-wide counts.
type Summary struct {
	Products      int
	InStock       int
	Categories    int
	Users         int
	Reviews       int
	AverageRating float64 // zero when there are no reviews
}

// Counters report how often derived views were recomputed versus served
// from the memo.
type Counters struct {
	Computed int
	Reused   int
}

// Engine memoizes derived views over catalog tables. It is safe for
// concurrent use.
type Engine struct {
	mu             sync.Mutex
	details        map[int]*detailsMemo
	byCategory     map[int]*listMemo
	withCategories *joinMemo
	summary        *summaryMemo
	counters       Counters
}

// New returns an engine with empty memos.
func New() *Engine {
	return &Engine{
		details:    make(map[int]*detailsMemo),
		byCategory: make(map[int]*listMemo),
	}
}

// Reset drops every memoized result.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.details = make(map[int]*detailsMemo)
	e.byCategory = make(map[int]*listMemo)
	e.withCategories = nil
	e.summary = nil
	e.counters = Counters{}
}

// Counters returns the recompute counters.
func (e *Engine) Counters() Counters {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.counters
}

type listMemo struct {
	version uint64
	out     []catalog.Product
}

// ProductsByCategory returns the products in categoryID, in the products
// collection's order. catalog.NoCategory returns every product.
func (e *Engine) ProductsByCategory(t catalog.Tables, categoryID int) []catalog.Product {
	if categoryID == catalog.NoCategory {
		return t.Products.SelectAll()
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	version := t.Products.Version()
	if m, ok := e.byCategory[categoryID]; ok && m.version == version {
		e.counters.Reused++
		return m.out
	}
	e.counters.Computed++

	all := t.Products.SelectAll()
	out := make([]catalog.Product, 0, len(all))
	for _, p := range all {
		if p.CategoryID == categoryID {
			out = append(out, p.Clone())
		}
	}
	e.byCategory[categoryID] = &listMemo{version: version, out: out}
	return out
}

type joinMemo struct {
	products, categories uint64
	out                  []ProductWithCategory
}

// ProductsWithCategories returns every product joined with its category.
func (e *Engine) ProductsWithCategories(t catalog.Tables) []ProductWithCategory {
	e.mu.Lock()
	defer e.mu.Unlock()

	pv, cv := t.Products.Version(), t.Categories.Version()
	if m := e.withCategories; m != nil && m.products == pv && m.categories == cv {
		e.counters.Reused++
		return m.out
	}
	e.counters.Computed++

	all := t.Products.SelectAll()
	out := make([]ProductWithCategory, len(all))
	for i, p := range all {
		out[i] = ProductWithCategory{Product: p.Clone(), Category: lookupCategory(t, p.CategoryID)}
	}
	e.withCategories = &joinMemo{products: pv, categories: cv, out: out}
	return out
}

type summaryMemo struct {
	versions catalog.Versions
	out      Summary
}

// Stats returns catalog-wide counts and the average review rating.
func (e *Engine) Stats(t catalog.Tables) Summary {
	e.mu.Lock()
	defer e.mu.Unlock()

	versions := t.Versions()
	if m := e.summary; m != nil && m.versions == versions {
		e.counters.Reused++
		return m.out
	}
	e.counters.Computed++

	out := Summary{
		Products:   t.Products.Len(),
		Categories: t.Categories.Len(),
		Users:      t.Users.Len(),
		Reviews:    t.Reviews.Len(),
	}
	for _, p := range t.Products.SelectAll() {
		if p.InStock {
			out.InStock++
		}
	}
	if reviews := t.Reviews.SelectAll(); len(reviews) > 0 {
		total := 0
		for _, r := range reviews {
			total += r.Rating
		}
		out.AverageRating = float64(total) / float64(len(reviews))
	}
	e.summary = &summaryMemo{versions: versions, out: out}
	return out
}

func lookupCategory(t catalog.Tables, id int) *catalog.Category {
	c, ok := t.Categories.SelectByID(id)
	if !ok {
		return nil
	}
	return &c
}

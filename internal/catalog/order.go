package catalog

import (
	"cmp"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Collators keep per-call buffers, so each comparison borrows one.
var collators = sync.Pool{
	New: func() any { return collate.New(language.English) },
}

// CompareNames orders display names the way an English reader expects.
func CompareNames(a, b string) int {
	c := collators.Get().(*collate.Collator)
	defer collators.Put(c)
	return c.CompareString(a, b)
}

func compareProducts(a, b Product) int    { return CompareNames(a.Name, b.Name) }
func compareCategories(a, b Category) int { return CompareNames(a.Name, b.Name) }
func compareUsers(a, b User) int          { return CompareNames(a.Name, b.Name) }

// Newest first.
func compareReviews(a, b Review) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(b.ID, a.ID)
}

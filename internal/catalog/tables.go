package catalog

import "github.com/five82/storefront/internal/entity"

// NewProducts returns an empty product collection sorted by name.
func NewProducts() *entity.Collection[Product] {
	return entity.New(func(p Product) int { return p.ID },
		entity.WithOrder(compareProducts),
		entity.WithClone(Product.Clone),
		entity.WithEqual(Product.Equal),
	)
}

// NewCategories returns an empty category collection sorted by name.
func NewCategories() *entity.Collection[Category] {
	return entity.New(func(c Category) int { return c.ID },
		entity.WithOrder(compareCategories),
		entity.WithEqual(func(a, b Category) bool { return a == b }),
	)
}

// NewUsers returns an empty user collection sorted by name.
func NewUsers() *entity.Collection[User] {
	return entity.New(func(u User) int { return u.ID },
		entity.WithOrder(compareUsers),
		entity.WithEqual(func(a, b User) bool { return a == b }),
	)
}

// NewReviews returns an empty review collection, newest first.
func NewReviews() *entity.Collection[Review] {
	return entity.New(func(r Review) int { return r.ID },
		entity.WithOrder(compareReviews),
		entity.WithEqual(func(a, b Review) bool { return a == b }),
	)
}

// Collections holds the four mutable entity collections.
type Collections struct {
	Products   *entity.Collection[Product]
	Categories *entity.Collection[Category]
	Users      *entity.Collection[User]
	Reviews    *entity.Collection[Review]
}

// NewCollections builds four empty collections with their sort rules.
func NewCollections() Collections {
	return Collections{
		Products:   NewProducts(),
		Categories: NewCategories(),
		Users:      NewUsers(),
		Reviews:    NewReviews(),
	}
}

// Freeze returns immutable views of all four collections.
func (c Collections) Freeze() Tables {
	return Tables{
		Products:   c.Products.Freeze(),
		Categories: c.Categories.Freeze(),
		Users:      c.Users.Freeze(),
		Reviews:    c.Reviews.Freeze(),
	}
}

// Merge upserts every entity in n into its collection.
func (c Collections) Merge(n Normalized) {
	c.Categories.UpsertMany(n.Categories)
	c.Users.UpsertMany(n.Users)
	c.Reviews.UpsertMany(n.Reviews)
	c.Products.UpsertMany(n.Products)
}

// Tables is one consistent version of the four collections.
type Tables struct {
	Products   entity.View[Product]
	Categories entity.View[Category]
	Users      entity.View[User]
	Reviews    entity.View[Review]
}

// EmptyTables returns frozen empty collections.
func EmptyTables() Tables {
	return NewCollections().Freeze()
}

// Edit returns collections that start from t. Zero views start empty.
func (t Tables) Edit() Collections {
	c := NewCollections()
	if !t.Products.IsZero() {
		c.Products = t.Products.Edit()
	}
	if !t.Categories.IsZero() {
		c.Categories = t.Categories.Edit()
	}
	if !t.Users.IsZero() {
		c.Users = t.Users.Edit()
	}
	if !t.Reviews.IsZero() {
		c.Reviews = t.Reviews.Edit()
	}
	return c
}

// Versions identifies the version of each collection in t.
type Versions struct {
	Products, Categories, Users, Reviews uint64
}

// Versions returns the per-collection versions of t.
func (t Tables) Versions() Versions {
	return Versions{
		Products:   t.Products.Version(),
		Categories: t.Categories.Version(),
		Users:      t.Users.Version(),
		Reviews:    t.Reviews.Version(),
	}
}

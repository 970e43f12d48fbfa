package selector

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/storefront/internal/catalog"
)

func seed() catalog.Collections {
	c := catalog.NewCollections()
	c.Categories.UpsertMany([]catalog.Category{{ID: 1, Name: "Electronics"}, {ID: 2, Name: "Books"}})
	c.Users.UpsertOne(catalog.User{ID: 1, Name: "Sarah"})
	c.Reviews.UpsertOne(catalog.Review{ID: 1, Rating: 5, AuthorID: 1, ProductID: 1, CreatedAt: time.Unix(100, 0)})
	c.Products.UpsertMany([]catalog.Product{
		{ID: 1, Name: "Laptop", Price: 999, CategoryID: 1, ReviewIDs: []int{1}, InStock: true},
		{ID: 2, Name: "Novel", Price: 10, CategoryID: 2},
		{ID: 3, Name: "Headphones", Price: 99, CategoryID: 1, InStock: true},
	})
	return c
}

func samePointer(a, b any) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

func TestProductWithDetails_ResolvesJoins(t *testing.T) {
	e := New()
	d := e.ProductWithDetails(seed().Freeze(), 1)
	require.NotNil(t, d)
	require.NotNil(t, d.Category)
	assert.Equal(t, "Electronics", d.Category.Name)
	require.Len(t, d.Reviews, 1)
	require.NotNil(t, d.Reviews[0].Author)
	assert.Equal(t, "Sarah", d.Reviews[0].Author.Name)
}

func TestProductWithDetails_MissingProductIsNil(t *testing.T) {
	assert.Nil(t, New().ProductWithDetails(seed().Freeze(), 99))
}

func TestProductWithDetails_MissingReferencesDegrade(t *testing.T) {
	c := seed()
	c.Products.UpsertOne(catalog.Product{ID: 4, Name: "Orphan", CategoryID: 42, ReviewIDs: []int{1, 77}})
	c.Reviews.UpsertOne(catalog.Review{ID: 5, AuthorID: 9, ProductID: 5})
	c.Products.UpsertOne(catalog.Product{ID: 5, Name: "Lonely", CategoryID: 1, ReviewIDs: []int{5}})
	tables := c.Freeze()
	e := New()

	d := e.ProductWithDetails(tables, 4)
	require.NotNil(t, d)
	assert.Nil(t, d.Category)
	require.Len(t, d.Reviews, 1, "unknown review ids are dropped")
	assert.Equal(t, 1, d.Reviews[0].ID)

	d = e.ProductWithDetails(tables, 5)
	require.Len(t, d.Reviews, 1)
	assert.Nil(t, d.Reviews[0].Author)
}

func TestProductWithDetails_ReferentialStability(t *testing.T) {
	c := seed()
	e := New()

	first := e.ProductWithDetails(c.Freeze(), 1)
	second := e.ProductWithDetails(c.Freeze(), 1)
	assert.Same(t, first, second)

	// Unrelated category and product writes keep the result.
	c.Categories.UpsertOne(catalog.Category{ID: 2, Name: "Paperbacks"})
	c.Products.UpsertOne(catalog.Product{ID: 2, Name: "Novel 2", CategoryID: 2})
	c.Users.UpsertOne(catalog.User{ID: 7, Name: "Other"})
	third := e.ProductWithDetails(c.Freeze(), 1)
	assert.Same(t, first, third)

	// A write to the product's own category invalidates it.
	c.Categories.UpsertOne(catalog.Category{ID: 1, Name: "Gadgets"})
	fourth := e.ProductWithDetails(c.Freeze(), 1)
	assert.NotSame(t, first, fourth)
	assert.Equal(t, "Gadgets", fourth.Category.Name)

	// So does a change to a review author.
	c.Users.UpsertOne(catalog.User{ID: 1, Name: "Sarah J"})
	fifth := e.ProductWithDetails(c.Freeze(), 1)
	assert.NotSame(t, fourth, fifth)
	assert.Equal(t, "Sarah J", fifth.Reviews[0].Author.Name)
}

func TestProductWithDetails_ArrivingReferenceInvalidates(t *testing.T) {
	c := seed()
	c.Products.UpsertOne(catalog.Product{ID: 4, Name: "Later", CategoryID: 3})
	e := New()

	before := e.ProductWithDetails(c.Freeze(), 4)
	require.Nil(t, before.Category)

	c.Categories.UpsertOne(catalog.Category{ID: 3, Name: "Garden"})
	after := e.ProductWithDetails(c.Freeze(), 4)
	require.NotNil(t, after.Category)
	assert.Equal(t, "Garden", after.Category.Name)
}

func TestProductWithDetails_MutatingViewLeavesCache(t *testing.T) {
	c := seed()
	e := New()
	d := e.ProductWithDetails(c.Freeze(), 1)

	d.Product.ReviewIDs[0] = 99
	d.Product.Name = "hacked"
	d.Category.Name = "hacked"
	d.Reviews[0].Author.Name = "hacked"

	p, _ := c.Products.SelectByID(1)
	assert.Equal(t, []int{1}, p.ReviewIDs)
	assert.Equal(t, "Laptop", p.Name)
	cat, _ := c.Categories.SelectByID(1)
	assert.Equal(t, "Electronics", cat.Name)
	u, _ := c.Users.SelectByID(1)
	assert.Equal(t, "Sarah", u.Name)
}

func TestProductsByCategory(t *testing.T) {
	c := seed()
	e := New()
	tables := c.Freeze()

	all := e.ProductsByCategory(tables, catalog.NoCategory)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"Headphones", "Laptop", "Novel"}, productNames(all))

	electronics := e.ProductsByCategory(tables, 1)
	assert.Equal(t, []string{"Headphones", "Laptop"}, productNames(electronics))
	again := e.ProductsByCategory(tables, 1)
	assert.True(t, samePointer(electronics, again))

	assert.Empty(t, e.ProductsByCategory(tables, 42))

	c.Products.UpsertOne(catalog.Product{ID: 6, Name: "Camera", CategoryID: 1})
	updated := e.ProductsByCategory(c.Freeze(), 1)
	assert.Equal(t, []string{"Camera", "Headphones", "Laptop"}, productNames(updated))
}

func TestProductsByCategory_MutatingResultLeavesCache(t *testing.T) {
	c := seed()
	e := New()
	tables := c.Freeze()

	e.ProductsByCategory(tables, 1)[1].ReviewIDs[0] = 999
	e.ProductsByCategory(tables, catalog.NoCategory)[1].ReviewIDs[0] = 998

	p, _ := c.Products.SelectByID(1)
	assert.Equal(t, []int{1}, p.ReviewIDs)
	d := e.ProductWithDetails(tables, 1)
	require.NotNil(t, d)
	assert.Equal(t, []int{1}, d.Product.ReviewIDs)
}

func TestProductsWithCategories(t *testing.T) {
	c := seed()
	c.Products.UpsertOne(catalog.Product{ID: 9, Name: "Mystery", CategoryID: 77})
	e := New()
	tables := c.Freeze()

	rows := e.ProductsWithCategories(tables)
	require.Len(t, rows, 4)
	for _, row := range rows {
		if row.ID == 9 {
			assert.Nil(t, row.Category)
		} else {
			assert.NotNil(t, row.Category)
		}
	}
	assert.True(t, samePointer(rows, e.ProductsWithCategories(tables)))

	before := e.Counters()
	e.ProductsWithCategories(tables)
	assert.Equal(t, before.Computed, e.Counters().Computed)
	assert.Equal(t, before.Reused+1, e.Counters().Reused)
}

func TestStats(t *testing.T) {
	c := seed()
	c.Reviews.UpsertOne(catalog.Review{ID: 2, Rating: 2, AuthorID: 1, ProductID: 2})
	e := New()

	s := e.Stats(c.Freeze())
	assert.Equal(t, 3, s.Products)
	assert.Equal(t, 2, s.InStock)
	assert.Equal(t, 2, s.Categories)
	assert.Equal(t, 1, s.Users)
	assert.Equal(t, 2, s.Reviews)
	assert.InDelta(t, 3.5, s.AverageRating, 1e-9)

	assert.Zero(t, New().Stats(catalog.EmptyTables()).AverageRating)
}

func TestReset(t *testing.T) {
	e := New()
	tables := seed().Freeze()
	first := e.ProductWithDetails(tables, 1)
	e.Reset()
	assert.NotSame(t, first, e.ProductWithDetails(tables, 1))
	assert.Equal(t, 1, e.Counters().Computed)
}

func productNames(ps []catalog.Product) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Name
	}
	return out
}

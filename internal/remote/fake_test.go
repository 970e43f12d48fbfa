package remote

import (
	"context"
	"errors"
	"sync"

	"github.com/five82/storefront/internal/api"
	"github.com/five82/storefront/internal/catalog"
)

var errNotStubbed = errors.New("not stubbed")

// fakeCatalog implements api.Catalog with per-method hooks.
type fakeCatalog struct {
	mu    sync.Mutex
	calls map[string]int

	fetchProducts   func(ctx context.Context, call int) ([]api.Product, error)
	fetchProduct    func(ctx context.Context, id int) (api.Product, error)
	createProduct   func(ctx context.Context, in catalog.NewProduct) (api.Product, error)
	updateProduct   func(ctx context.Context, id int, patch catalog.ProductPatch) (api.Product, error)
	deleteProduct   func(ctx context.Context, id int) error
	fetchCategories func(ctx context.Context) ([]api.Category, error)
	createReview    func(ctx context.Context, in catalog.NewReview) (api.Review, error)
	byCategory      func(ctx context.Context, id int) ([]api.Product, error)
	search          func(ctx context.Context, q string) ([]api.Product, error)
}

func (f *fakeCatalog) record(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[name]++
	return f.calls[name]
}

func (f *fakeCatalog) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeCatalog) FetchProducts(ctx context.Context) ([]api.Product, error) {
	call := f.record("FetchProducts")
	if f.fetchProducts == nil {
		return nil, errNotStubbed
	}
	return f.fetchProducts(ctx, call)
}

func (f *fakeCatalog) FetchProduct(ctx context.Context, id int) (api.Product, error) {
	f.record("FetchProduct")
	if f.fetchProduct == nil {
		return api.Product{}, errNotStubbed
	}
	return f.fetchProduct(ctx, id)
}

func (f *fakeCatalog) CreateProduct(ctx context.Context, in catalog.NewProduct) (api.Product, error) {
	f.record("CreateProduct")
	if f.createProduct == nil {
		return api.Product{}, errNotStubbed
	}
	return f.createProduct(ctx, in)
}

func (f *fakeCatalog) UpdateProduct(ctx context.Context, id int, patch catalog.ProductPatch) (api.Product, error) {
	f.record("UpdateProduct")
	if f.updateProduct == nil {
		return api.Product{}, errNotStubbed
	}
	return f.updateProduct(ctx, id, patch)
}

func (f *fakeCatalog) DeleteProduct(ctx context.Context, id int) error {
	f.record("DeleteProduct")
	if f.deleteProduct == nil {
		return errNotStubbed
	}
	return f.deleteProduct(ctx, id)
}

func (f *fakeCatalog) FetchCategories(ctx context.Context) ([]api.Category, error) {
	f.record("FetchCategories")
	if f.fetchCategories == nil {
		return nil, errNotStubbed
	}
	return f.fetchCategories(ctx)
}

func (f *fakeCatalog) CreateReview(ctx context.Context, in catalog.NewReview) (api.Review, error) {
	f.record("CreateReview")
	if f.createReview == nil {
		return api.Review{}, errNotStubbed
	}
	return f.createReview(ctx, in)
}

func (f *fakeCatalog) FetchProductsByCategory(ctx context.Context, id int) ([]api.Product, error) {
	f.record("FetchProductsByCategory")
	if f.byCategory == nil {
		return nil, errNotStubbed
	}
	return f.byCategory(ctx, id)
}

func (f *fakeCatalog) SearchProducts(ctx context.Context, q string) ([]api.Product, error) {
	f.record("SearchProducts")
	if f.search == nil {
		return nil, errNotStubbed
	}
	return f.search(ctx, q)
}

var (
	electronics = api.Category{ID: 1, Name: "Electronics"}
	furniture   = api.Category{ID: 2, Name: "Furniture"}
	john        = api.User{ID: 1, Name: "John", Email: "john@example.com"}
	jane        = api.User{ID: 2, Name: "Jane", Email: "jane@example.com"}
)

func laptop() api.Product {
	return api.Product{
		ID: 1, Name: "Laptop", Price: 999, Category: electronics, InStock: true,
		Reviews: []api.Review{
			{ID: 1, Text: "Great", Rating: 5, CreatedAt: "2024-01-15T10:00:00Z", Author: john},
			{ID: 2, Text: "Good", Rating: 4, CreatedAt: "2024-01-16T10:00:00Z", Author: jane},
		},
	}
}

func desk() api.Product {
	return api.Product{ID: 2, Name: "Desk", Price: 250, Category: furniture, Reviews: []api.Review{}, InStock: true}
}

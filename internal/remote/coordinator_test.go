package remote

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/five82/storefront/internal/api"
	"github.com/five82/storefront/internal/catalog"
	"github.com/five82/storefront/internal/state"
)

func newCoordinator(t *testing.T, fake *fakeCatalog) (*Coordinator, *tracetest.SpanRecorder) {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return New(fake, state.NewStore(), nil, WithTracerProvider(tp)), rec
}

func seeded(t *testing.T) (*Coordinator, *fakeCatalog, *tracetest.SpanRecorder) {
	t.Helper()
	fake := &fakeCatalog{
		fetchProducts: func(context.Context, int) ([]api.Product, error) {
			return []api.Product{laptop(), desk()}, nil
		},
	}
	c, rec := newCoordinator(t, fake)
	require.NoError(t, c.FetchProducts(context.Background()))
	return c, fake, rec
}

func cached(t *testing.T, c *Coordinator, id int) catalog.Product {
	t.Helper()
	p, ok := c.Store().Snapshot().Tables.Products.SelectByID(id)
	require.True(t, ok, "product %d not cached", id)
	return p
}

func spanNames(rec *tracetest.SpanRecorder) []string {
	var names []string
	for _, s := range rec.Ended() {
		names = append(names, s.Name())
	}
	return names
}

func TestFetchProducts_NormalizesIntoStore(t *testing.T) {
	c, _, _ := seeded(t)
	snap := c.Store().Snapshot()

	assert.Equal(t, 2, snap.Tables.Products.Len())
	assert.Equal(t, 2, snap.Tables.Categories.Len())
	assert.Equal(t, 2, snap.Tables.Users.Len())
	assert.Equal(t, 2, snap.Tables.Reviews.Len())
	assert.Equal(t, state.StatusSucceeded, snap.Query(KeyProducts).Status)

	d := snap.ProductWithDetails(1)
	require.NotNil(t, d)
	require.NotNil(t, d.Category)
	assert.Equal(t, "Electronics", d.Category.Name)
	require.Len(t, d.Reviews, 2)
	assert.Equal(t, "John", d.Reviews[0].Author.Name, "reviews follow the product's link order")
}

func TestFetchProducts_LastCommittedWins(t *testing.T) {
	started := make(chan int, 2)
	release := []chan struct{}{make(chan struct{}), make(chan struct{})}
	fake := &fakeCatalog{
		fetchProducts: func(_ context.Context, call int) ([]api.Product, error) {
			started <- call
			<-release[call-1]
			p := laptop()
			p.Name = map[int]string{1: "Stale", 2: "Fresh"}[call]
			return []api.Product{p}, nil
		},
	}
	c, _ := newCoordinator(t, fake)
	ctx := context.Background()

	done := make(chan error, 2)
	go func() { done <- c.FetchProducts(ctx) }()
	require.Equal(t, 1, <-started)
	go func() { done <- c.FetchProducts(ctx) }()
	require.Equal(t, 2, <-started)

	close(release[1])
	require.NoError(t, <-done)
	close(release[0])
	require.NoError(t, <-done)

	assert.Equal(t, "Fresh", cached(t, c, 1).Name)
	assert.Equal(t, state.StatusSucceeded, c.Store().Snapshot().Query(KeyProducts).Status)
}

func TestFetchProducts_FailureRecordedOnSpan(t *testing.T) {
	fake := &fakeCatalog{
		fetchProducts: func(context.Context, int) ([]api.Product, error) {
			return nil, &api.Error{Method: http.MethodGet, Path: "/products", Status: 500, Message: "boom"}
		},
	}
	c, rec := newCoordinator(t, fake)

	err := c.FetchProducts(context.Background())
	require.Error(t, err)

	q := c.Store().Snapshot().Query(KeyProducts)
	assert.Equal(t, state.StatusFailed, q.Status)
	assert.ErrorIs(t, q.Err, err)

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, KeyProducts, spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}

func TestFetchProduct_NotFoundEvicts(t *testing.T) {
	c, fake, _ := seeded(t)
	fake.fetchProduct = func(_ context.Context, id int) (api.Product, error) {
		return api.Product{}, &api.Error{Status: http.StatusNotFound, Message: "Product not found"}
	}

	err := c.FetchProduct(context.Background(), 2)
	require.Error(t, err)
	assert.True(t, api.IsNotFound(err))
	assert.False(t, c.Store().Snapshot().Tables.Products.Has(2))
	assert.Equal(t, state.StatusFailed, c.Store().Snapshot().Query(KeyProduct(2)).Status)
}

func TestFetchCategories_ReplacesAndCoercesIDs(t *testing.T) {
	c, fake, _ := seeded(t)
	fake.fetchCategories = func(context.Context) ([]api.Category, error) {
		return []api.Category{{ID: 3, Name: "Toys"}, electronics}, nil
	}

	require.NoError(t, c.FetchCategories(context.Background()))
	cats := c.Store().Snapshot().Tables.Categories
	assert.Equal(t, 2, cats.Len())
	assert.False(t, cats.Has(2))
	assert.True(t, cats.Has(3))
}

func TestFetchProductsByCategoryAndSearchMerge(t *testing.T) {
	c, fake, _ := seeded(t)
	chair := api.Product{ID: 3, Name: "Chair", Price: 80, Category: furniture, Reviews: []api.Review{}}
	fake.byCategory = func(_ context.Context, id int) ([]api.Product, error) {
		require.Equal(t, 2, id)
		return []api.Product{desk(), chair}, nil
	}
	fake.search = func(_ context.Context, q string) ([]api.Product, error) {
		return []api.Product{laptop()}, nil
	}
	ctx := context.Background()

	require.NoError(t, c.FetchProductsByCategory(ctx, 2))
	ids, err := c.SearchProducts(ctx, " Lap ")
	require.NoError(t, err)
	assert.Equal(t, []int{1}, ids)

	snap := c.Store().Snapshot()
	assert.Equal(t, 3, snap.Tables.Products.Len(), "listings merge rather than replace")
	assert.Equal(t, state.StatusSucceeded, snap.Query(KeySearch("lap")).Status)
	assert.Len(t, snap.ProductsByCategory(2), 2)
}

func TestUpdateProduct_OptimisticThenReconciled(t *testing.T) {
	c, fake, rec := seeded(t)
	inFlight := make(chan struct{})
	release := make(chan struct{})
	fake.updateProduct = func(_ context.Context, id int, patch catalog.ProductPatch) (api.Product, error) {
		close(inFlight)
		<-release
		p := laptop()
		p.InStock = *patch.InStock
		p.Description = "server side"
		return p, nil
	}

	done := make(chan error, 1)
	go func() {
		_, err := c.UpdateProduct(context.Background(), 1, catalog.ProductPatch{InStock: catalog.Ptr(false)})
		done <- err
	}()
	<-inFlight
	assert.False(t, cached(t, c, 1).InStock, "patch visible before the server answers")
	assert.True(t, c.Store().Snapshot().Mutation(state.MutationUpdateProduct).IsLoading())

	close(release)
	require.NoError(t, <-done)
	got := cached(t, c, 1)
	assert.False(t, got.InStock)
	assert.Equal(t, "server side", got.Description)
	assert.False(t, c.Store().Snapshot().Mutation(state.MutationUpdateProduct).IsLoading())
	assert.Contains(t, spanNames(rec), string(state.MutationUpdateProduct))
}

func TestUpdateProduct_FailureRollsBack(t *testing.T) {
	c, fake, _ := seeded(t)
	fake.updateProduct = func(context.Context, int, catalog.ProductPatch) (api.Product, error) {
		return api.Product{}, errors.New("connection reset")
	}

	_, err := c.UpdateProduct(context.Background(), 1, catalog.ProductPatch{Price: catalog.Ptr(1.0), InStock: catalog.Ptr(false)})
	require.Error(t, err)

	got := cached(t, c, 1)
	assert.Equal(t, 999.0, got.Price)
	assert.True(t, got.InStock)
	m := c.Store().Snapshot().Mutation(state.MutationUpdateProduct)
	assert.EqualError(t, m.Err, "connection reset")
}

func TestUpdateProduct_PendingPatchSurvivesRefetch(t *testing.T) {
	c, fake, _ := seeded(t)
	fetchStarted := make(chan struct{})
	releaseFetch := make(chan struct{})
	fake.fetchProducts = func(context.Context, int) ([]api.Product, error) {
		close(fetchStarted)
		<-releaseFetch
		p := laptop()
		p.Price = 1099
		return []api.Product{p, desk()}, nil
	}
	updateSent := make(chan struct{})
	failUpdate := make(chan struct{})
	fake.updateProduct = func(context.Context, int, catalog.ProductPatch) (api.Product, error) {
		close(updateSent)
		<-failUpdate
		return api.Product{}, errors.New("rejected")
	}
	ctx := context.Background()

	fetched := make(chan error, 1)
	go func() { fetched <- c.FetchProducts(ctx) }()
	<-fetchStarted
	updated := make(chan error, 1)
	go func() {
		_, err := c.UpdateProduct(ctx, 1, catalog.ProductPatch{Name: catalog.Ptr("Notebook")})
		updated <- err
	}()
	<-updateSent
	assert.Equal(t, "Notebook", cached(t, c, 1).Name)

	close(releaseFetch)
	require.NoError(t, <-fetched)
	got := cached(t, c, 1)
	assert.Equal(t, "Notebook", got.Name, "pending patch stays visible over the refetch")
	assert.Equal(t, 1099.0, got.Price)

	close(failUpdate)
	require.Error(t, <-updated)
	got = cached(t, c, 1)
	assert.Equal(t, "Laptop", got.Name)
	assert.Equal(t, 1099.0, got.Price, "rollback restores the refetched value")
}

func TestUpdateProduct_ConcurrentPatchesIsolated(t *testing.T) {
	c, fake, _ := seeded(t)
	priceSent := make(chan struct{})
	failPrice := make(chan struct{})
	fake.updateProduct = func(_ context.Context, id int, patch catalog.ProductPatch) (api.Product, error) {
		if patch.Price != nil {
			close(priceSent)
			<-failPrice
			return api.Product{}, errors.New("rejected")
		}
		p := laptop()
		p.InStock = false
		p.Price = 10 // server has already seen the price patch
		return p, nil
	}
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := c.UpdateProduct(ctx, 1, catalog.ProductPatch{Price: catalog.Ptr(10.0)})
		done <- err
	}()
	<-priceSent

	_, err := c.UpdateProduct(ctx, 1, catalog.ProductPatch{InStock: catalog.Ptr(false)})
	require.NoError(t, err)
	assert.Equal(t, 10.0, cached(t, c, 1).Price, "pending price not overwritten by reconcile")

	close(failPrice)
	require.Error(t, <-done)
	got := cached(t, c, 1)
	assert.Equal(t, 999.0, got.Price)
	assert.False(t, got.InStock)
}

func TestMutations_ValidateBeforeRequest(t *testing.T) {
	c, fake, _ := seeded(t)
	ctx := context.Background()

	_, err := c.CreateProduct(ctx, catalog.NewProduct{Name: "", Price: 1, CategoryID: 1})
	var verr *catalog.ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = c.UpdateProduct(ctx, 1, catalog.ProductPatch{})
	require.ErrorAs(t, err, &verr)

	_, err = c.CreateReview(ctx, catalog.NewReview{ProductID: 1, Text: "x", Rating: 9, AuthorID: 1})
	require.ErrorAs(t, err, &verr)

	assert.Zero(t, fake.count("CreateProduct"))
	assert.Zero(t, fake.count("UpdateProduct"))
	assert.Zero(t, fake.count("CreateReview"))
	assert.False(t, c.Store().Snapshot().Mutation(state.MutationUpdateProduct).IsLoading())
}

func TestCreateProduct_CachesResult(t *testing.T) {
	c, fake, _ := seeded(t)
	fake.createProduct = func(_ context.Context, in catalog.NewProduct) (api.Product, error) {
		return api.Product{ID: 9, Name: in.Name, Price: in.Price, Category: furniture, Reviews: []api.Review{}, InStock: in.InStock}, nil
	}

	p, err := c.CreateProduct(context.Background(), catalog.NewProduct{Name: "Lamp", Price: 30, CategoryID: 2, InStock: true})
	require.NoError(t, err)
	assert.Equal(t, 9, p.ID)
	assert.Equal(t, "Lamp", cached(t, c, 9).Name)
}

func TestDeleteProduct_EvictsOnConfirm(t *testing.T) {
	c, fake, _ := seeded(t)
	fake.deleteProduct = func(context.Context, int) error { return errors.New("offline") }

	require.Error(t, c.DeleteProduct(context.Background(), 1))
	assert.True(t, c.Store().Snapshot().Tables.Products.Has(1), "kept until the server confirms")

	fake.deleteProduct = func(context.Context, int) error { return nil }
	require.NoError(t, c.DeleteProduct(context.Background(), 1))
	snap := c.Store().Snapshot()
	assert.False(t, snap.Tables.Products.Has(1))
	assert.True(t, snap.Tables.Reviews.Has(1))
	assert.Nil(t, snap.ProductWithDetails(1))
}

func TestCreateReview_LinksToProduct(t *testing.T) {
	c, fake, _ := seeded(t)
	fake.createReview = func(_ context.Context, in catalog.NewReview) (api.Review, error) {
		return api.Review{
			ID: 3, Text: in.Text, Rating: in.Rating,
			CreatedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC).Format(time.RFC3339),
			Author:    api.User{ID: 3, Name: "Ann"},
		}, nil
	}

	r, err := c.CreateReview(context.Background(), catalog.NewReview{ProductID: 2, Text: "Sturdy", Rating: 4, AuthorID: 3})
	require.NoError(t, err)
	assert.Equal(t, 2, r.ProductID)

	snap := c.Store().Snapshot()
	assert.Equal(t, []int{3}, cached(t, c, 2).ReviewIDs)
	d := snap.ProductWithDetails(2)
	require.NotNil(t, d)
	require.Len(t, d.Reviews, 1)
	assert.Equal(t, "Ann", d.Reviews[0].Author.Name)
}

func TestRefresh(t *testing.T) {
	c, fake, rec := seeded(t)
	fake.fetchCategories = func(context.Context) ([]api.Category, error) {
		return []api.Category{electronics, furniture}, nil
	}

	require.NoError(t, c.Refresh(context.Background()))
	assert.Equal(t, 2, fake.count("FetchProducts"))
	assert.Equal(t, 1, fake.count("FetchCategories"))
	assert.Contains(t, spanNames(rec), KeyCategories)
}

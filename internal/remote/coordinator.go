package remote

import (
	"context"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/five82/storefront/internal/api"
	"github.com/five82/storefront/internal/catalog"
	"github.com/five82/storefront/internal/optimistic"
	"github.com/five82/storefront/internal/state"
)

const tracerName = "github.com/five82/storefront/internal/remote"

// Coordinator runs catalog requests and folds their results into the
// store.
type Coordinator struct {
	client api.Catalog
	store  *state.Store
	ledger *optimistic.Manager
	logger *log.Logger
	tracer trace.Tracer
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger for request failures.
func WithLogger(l *log.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTracerProvider overrides the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Coordinator) {
		if tp != nil {
			c.tracer = tp.Tracer(tracerName)
		}
	}
}

// New returns a coordinator. A nil ledger gets a fresh manager on store.
func New(client api.Catalog, store *state.Store, ledger *optimistic.Manager, opts ...Option) *Coordinator {
	if ledger == nil {
		ledger = optimistic.NewManager(store)
	}
	c := &Coordinator{
		client: client,
		store:  store,
		ledger: ledger,
		logger: log.Default(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store returns the store the coordinator writes to.
func (c *Coordinator) Store() *state.Store { return c.store }

// Refresh reloads categories and products concurrently. Both requests run
// to completion; the first error is returned.
func (c *Coordinator) Refresh(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return c.FetchCategories(ctx) })
	g.Go(func() error { return c.FetchProducts(ctx) })
	return g.Wait()
}

// FetchProducts replaces the cached product list.
func (c *Coordinator) FetchProducts(ctx context.Context) error {
	return c.query(ctx, KeyProducts, func(ctx context.Context) (state.Command, error) {
		items, err := c.client.FetchProducts(ctx)
		if err != nil {
			return nil, err
		}
		return state.FetchAll{Data: api.NormalizeProducts(items)}, nil
	})
}

// FetchProduct merges one product. A product the server reports missing is
// evicted from the cache.
func (c *Coordinator) FetchProduct(ctx context.Context, id int) error {
	err := c.query(ctx, KeyProduct(id), func(ctx context.Context) (state.Command, error) {
		item, err := c.client.FetchProduct(ctx, id)
		if err != nil {
			return nil, err
		}
		return state.FetchOne{Data: api.NormalizeProduct(item)}, nil
	})
	if api.IsNotFound(err) {
		c.evict(id)
	}
	return err
}

// FetchCategories replaces the cached categories.
func (c *Coordinator) FetchCategories(ctx context.Context) error {
	return c.query(ctx, KeyCategories, func(ctx context.Context) (state.Command, error) {
		items, err := c.client.FetchCategories(ctx)
		if err != nil {
			return nil, err
		}
		return state.ReplaceCategories{Categories: api.NormalizeCategories(items)}, nil
	})
}

// FetchProductsByCategory merges the products of one category.
func (c *Coordinator) FetchProductsByCategory(ctx context.Context, categoryID int) error {
	return c.query(ctx, KeyCategoryProducts(categoryID), func(ctx context.Context) (state.Command, error) {
		items, err := c.client.FetchProductsByCategory(ctx, categoryID)
		if err != nil {
			return nil, err
		}
		return state.FetchOne{Data: api.NormalizeProducts(items)}, nil
	})
}

// SearchProducts merges the products matching q and returns their IDs in
// server order.
func (c *Coordinator) SearchProducts(ctx context.Context, q string) ([]int, error) {
	var ids []int
	err := c.query(ctx, KeySearch(q), func(ctx context.Context) (state.Command, error) {
		items, err := c.client.SearchProducts(ctx, q)
		if err != nil {
			return nil, err
		}
		data := api.NormalizeProducts(items)
		ids = make([]int, 0, len(data.Products))
		for _, p := range data.Products {
			ids = append(ids, p.ID)
		}
		return state.FetchOne{Data: data}, nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// CreateProduct validates in, creates it and caches the result.
func (c *Coordinator) CreateProduct(ctx context.Context, in catalog.NewProduct) (catalog.Product, error) {
	if err := in.Validate(); err != nil {
		return catalog.Product{}, err
	}
	var out catalog.Product
	err := c.mutate(ctx, state.MutationCreateProduct, func(ctx context.Context) error {
		item, err := c.client.CreateProduct(ctx, in)
		if err != nil {
			return err
		}
		data := api.NormalizeProduct(item)
		c.store.Dispatch(state.Create{Data: data})
		out = data.Products[0]
		return nil
	})
	return out, err
}

// UpdateProduct applies patch to the cached product before sending it. A
// failed request rolls the patch back; a successful one reconciles the
// cache with the server's product.
func (c *Coordinator) UpdateProduct(ctx context.Context, id int, patch catalog.ProductPatch) (catalog.Product, error) {
	if err := patch.Validate(); err != nil {
		return catalog.Product{}, err
	}
	var out catalog.Product
	err := c.mutate(ctx, state.MutationUpdateProduct, func(ctx context.Context) error {
		p, cached := c.ledger.Begin(id, patch)
		trace.SpanFromContext(ctx).SetAttributes(
			attribute.Int("storefront.product_id", id),
			attribute.String("storefront.fields", patch.Fields().String()),
			attribute.Bool("storefront.optimistic", cached),
		)
		item, err := c.client.UpdateProduct(ctx, id, patch)
		if err != nil {
			c.ledger.Rollback(p)
			return err
		}
		data := api.NormalizeProduct(item)
		out = data.Products[0]
		// Related entities merge as usual; the product goes through the ledger.
		data.Products = nil
		c.store.Dispatch(state.FetchOne{Data: data})
		c.ledger.Commit(p, &out)
		return nil
	})
	return out, err
}

// DeleteProduct deletes a product and evicts it once the server confirms.
func (c *Coordinator) DeleteProduct(ctx context.Context, id int) error {
	return c.mutate(ctx, state.MutationDeleteProduct, func(ctx context.Context) error {
		trace.SpanFromContext(ctx).SetAttributes(attribute.Int("storefront.product_id", id))
		err := c.client.DeleteProduct(ctx, id)
		if err == nil || api.IsNotFound(err) {
			c.evict(id)
		}
		return err
	})
}

// CreateReview validates in, posts it and links the stored review to its
// product.
func (c *Coordinator) CreateReview(ctx context.Context, in catalog.NewReview) (catalog.Review, error) {
	if err := in.Validate(); err != nil {
		return catalog.Review{}, err
	}
	var out catalog.Review
	err := c.mutate(ctx, state.MutationCreateReview, func(ctx context.Context) error {
		trace.SpanFromContext(ctx).SetAttributes(attribute.Int("storefront.product_id", in.ProductID))
		r, err := c.client.CreateReview(ctx, in)
		if err != nil {
			return err
		}
		data := api.NormalizeReview(r, in.ProductID)
		c.store.Dispatch(state.CreateChild{ProductID: in.ProductID, Data: data})
		out = data.Reviews[0]
		return nil
	})
	return out, err
}

func (c *Coordinator) evict(id int) {
	c.store.Dispatch(state.Delete{ProductID: id})
	c.ledger.Forget(id)
}

func (c *Coordinator) query(ctx context.Context, key string, fetch func(context.Context) (state.Command, error)) error {
	ctx, span := c.tracer.Start(ctx, key, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	ticket := c.store.BeginQuery(key)
	cmd, err := fetch(ctx)
	applied := c.ledger.FinishQuery(ticket, cmd, err)
	if err != nil {
		fail(span, err)
		c.logger.Printf("query %s failed: %v", key, err)
		return err
	}
	span.SetAttributes(attribute.Bool("storefront.applied", applied))
	if !applied {
		c.logger.Printf("query %s superseded by a newer result", key)
	}
	return nil
}

func (c *Coordinator) mutate(ctx context.Context, m state.Mutation, run func(context.Context) error) error {
	ctx, span := c.tracer.Start(ctx, string(m), trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	c.store.BeginMutation(m)
	err := run(ctx)
	c.store.FinishMutation(m, err)
	if err != nil {
		fail(span, err)
		c.logger.Printf("mutation %s failed: %v", m, err)
	}
	return err
}

func fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

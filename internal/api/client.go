package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/five82/storefront/internal/catalog"
)

// Catalog defines the remote catalog operations. *Client implements it and
// tests substitute fakes.
type Catalog interface {
	FetchProducts(ctx context.Context) ([]Product, error)
	FetchProduct(ctx context.Context, id int) (Product, error)
	CreateProduct(ctx context.Context, in catalog.NewProduct) (Product, error)
	UpdateProduct(ctx context.Context, id int, patch catalog.ProductPatch) (Product, error)
	DeleteProduct(ctx context.Context, id int) error
	FetchCategories(ctx context.Context) ([]Category, error)
	CreateReview(ctx context.Context, in catalog.NewReview) (Review, error)
	FetchProductsByCategory(ctx context.Context, categoryID int) ([]Product, error)
	SearchProducts(ctx context.Context, query string) ([]Product, error)
}

// Ensure Client implements Catalog at compile time.
var _ Catalog = (*Client)(nil)

// Client talks to the catalog HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	DefaultBaseURL        = "http://localhost:3001"
	defaultUserAgent      = "storefront/0.1"
	DefaultRequestTimeout = 5 * time.Second
)

// NewClient builds a Client for baseURL. A zero timeout uses
// DefaultRequestTimeout.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: timeout},
		userAgent: defaultUserAgent,
	}, nil
}

// FetchProducts retrieves every product.
func (c *Client) FetchProducts(ctx context.Context) ([]Product, error) {
	var payload []Product
	if err := c.do(ctx, http.MethodGet, "/products", nil, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// FetchProduct retrieves one product.
func (c *Client) FetchProduct(ctx context.Context, id int) (Product, error) {
	var payload Product
	if err := c.do(ctx, http.MethodGet, productPath(id), nil, nil, &payload); err != nil {
		return Product{}, err
	}
	return payload, nil
}

// CreateProduct posts a new product and returns the created record.
func (c *Client) CreateProduct(ctx context.Context, in catalog.NewProduct) (Product, error) {
	var payload Product
	if err := c.do(ctx, http.MethodPost, "/products", nil, in, &payload); err != nil {
		return Product{}, err
	}
	return payload, nil
}

// UpdateProduct patches a product and returns the updated record.
func (c *Client) UpdateProduct(ctx context.Context, id int, patch catalog.ProductPatch) (Product, error) {
	var payload Product
	if err := c.do(ctx, http.MethodPatch, productPath(id), nil, patch, &payload); err != nil {
		return Product{}, err
	}
	return payload, nil
}

// DeleteProduct deletes a product.
func (c *Client) DeleteProduct(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, productPath(id), nil, nil, nil)
}

// FetchCategories retrieves every category.
func (c *Client) FetchCategories(ctx context.Context) ([]Category, error) {
	var payload []Category
	if err := c.do(ctx, http.MethodGet, "/categories", nil, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// CreateReview posts a review for in.ProductID and returns it with its
// embedded author.
func (c *Client) CreateReview(ctx context.Context, in catalog.NewReview) (Review, error) {
	body := createReviewBody{Text: in.Text, Rating: in.Rating, AuthorID: in.AuthorID}
	var payload CreateReviewResponse
	if err := c.do(ctx, http.MethodPost, productPath(in.ProductID)+"/reviews", nil, body, &payload); err != nil {
		return Review{}, err
	}
	return payload.Review, nil
}

// FetchProductsByCategory retrieves the products in one category.
func (c *Client) FetchProductsByCategory(ctx context.Context, categoryID int) ([]Product, error) {
	var payload []Product
	path := "/categories/" + strconv.Itoa(categoryID) + "/products"
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// SearchProducts retrieves products matching query.
func (c *Client) SearchProducts(ctx context.Context, query string) ([]Product, error) {
	values := url.Values{}
	values.Set("q", query)
	var payload []Product
	if err := c.do(ctx, http.MethodGet, "/products/search", values, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func productPath(id int) string {
	return "/products/" + strconv.Itoa(id)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	reqURL := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		reqURL.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Method: method, Path: path, Err: fmt.Errorf("execute request: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		apiErr := &Error{Method: method, Path: path, Status: resp.StatusCode}
		var envelope errorBody
		if raw, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024)); err == nil && json.Unmarshal(raw, &envelope) == nil {
			apiErr.Message = firstNonEmpty(envelope.Message, envelope.Error)
		}
		return apiErr
	}
	if dest == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return &Error{Method: method, Path: path, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api url %q: missing host", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

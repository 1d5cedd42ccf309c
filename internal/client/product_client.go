package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/prudhivi99/Distributed-Systems/storefront/internal/models"
)

// AllCategories is the filter sentinel meaning "no category restriction"
const AllCategories = "All"

const defaultCreateError = "Failed to create product"

// ErrUpstreamStatus is wrapped when the product API answers with a non-2xx status
var ErrUpstreamStatus = errors.New("product api returned unexpected status")

// APIError is a creation failure reported by the product API
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

type ProductClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	lists      singleflight.Group
	// listGen is bumped by every successful create so later lists never
	// join a request that started before it
	listGen atomic.Uint64
}

type Option func(*ProductClient)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *ProductClient) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout of the default HTTP client
func WithTimeout(d time.Duration) Option {
	return func(c *ProductClient) { c.httpClient.Timeout = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *ProductClient) { c.logger = l }
}

func NewProductClient(baseURL string, opts ...Option) *ProductClient {
	c := &ProductClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the product API base URL
func (c *ProductClient) BaseURL() string {
	return c.baseURL
}

// ProductsURL builds the list endpoint for a category filter.
func (c *ProductClient) ProductsURL(category string) string {
	endpoint := c.baseURL + "/products"
	if category != "" && category != AllCategories {
		endpoint += "?category=" + url.QueryEscape(category)
	}
	return endpoint
}

// FetchProducts lists products and degrades every failure to an empty list.
// Callers cannot tell an unreachable API from an empty category.
func (c *ProductClient) FetchProducts(ctx context.Context, category string) []models.Product {
	products, err := c.ListProducts(ctx, category)
	if err != nil {
		c.logger.ErrorContext(ctx, "product list failed, falling back to empty list",
			slog.String("category", category),
			slog.Any("error", err),
		)
		return []models.Product{}
	}
	return products
}

// ListProducts lists products, optionally filtered by category. Concurrent
// calls for the same category share one upstream request; each caller still
// stops waiting when its own ctx is done.
func (c *ProductClient) ListProducts(ctx context.Context, category string) ([]models.Product, error) {
	endpoint := c.ProductsURL(category)
	key := strconv.FormatUint(c.listGen.Load(), 10) + " " + endpoint

	shared := context.WithoutCancel(ctx)
	ch := c.lists.DoChan(key, func() (any, error) {
		return c.listProducts(shared, endpoint)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return slices.Clone(res.Val.([]models.Product)), nil
	}
}

func (c *ProductClient) listProducts(ctx context.Context, endpoint string) ([]models.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call product api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d", ErrUpstreamStatus, resp.StatusCode)
	}

	var products []models.Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if products == nil {
		products = []models.Product{}
	}

	return products, nil
}

// CreateProduct submits a new product as a multipart form and returns the
// product record created by the API.
func (c *ProductClient) CreateProduct(ctx context.Context, form models.CreateProductForm) (*models.Product, error) {
	body, contentType, err := encodeCreateForm(form)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/products", body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call product api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: defaultCreateError}

		var errBody models.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errBody); err == nil && errBody.Error != "" {
			apiErr.Message = errBody.Error
		}

		c.logger.WarnContext(ctx, "product creation rejected",
			slog.Int("status", resp.StatusCode),
			slog.String("error", apiErr.Message),
		)
		return nil, apiErr
	}

	var product models.Product
	if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	c.listGen.Add(1)

	c.logger.InfoContext(ctx, "product created",
		slog.String("id", product.ID),
		slog.String("category", product.Category),
	)
	return &product, nil
}

// Ping checks that the product API answers HTTP at all.
func (c *ProductClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: %d", ErrUpstreamStatus, resp.StatusCode)
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func encodeCreateForm(form models.CreateProductForm) (io.Reader, string, error) {
	if form.Image == nil || form.Image.Body == nil {
		return nil, "", errors.New("image attachment is required")
	}

	variants := form.Variants
	if variants == nil {
		variants = []string{}
	}
	variantsJSON, err := json.Marshal(variants)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode variants: %w", err)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := []struct{ name, value string }{
		{"name", form.Name},
		{"price", form.Price.String()},
		{"category", form.Category},
		{"variants", string(variantsJSON)},
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", f.name, err)
		}
	}

	filename := form.Image.Filename
	if filename == "" {
		filename = "image"
	}
	contentType := form.Image.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, quoteEscaper.Replace(filename)))
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create image part: %w", err)
	}
	if _, err := io.Copy(part, form.Image.Body); err != nil {
		return nil, "", fmt.Errorf("failed to copy image: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish multipart body: %w", err)
	}

	return &buf, w.FormDataContentType(), nil
}

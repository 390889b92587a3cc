package ecom

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"feedsync/internal/logger"
	"feedsync/internal/models"
)

// Auth is the opaque store credential supplied by the caller.
type Auth struct {
	MyID        string `json:"my_id"`
	AccessToken string `json:"access_token"`
}

// Client talks to the store scoped REST API of the e-commerce platform.
type Client struct {
	baseURL    string
	storeID    int64
	auth       Auth
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *logger.Logger
}

func NewClient(baseURL string, storeID int64, auth Auth, requestsPerSecond float64, logger *logger.Logger) *Client {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &Client{
		baseURL: baseURL,
		storeID: storeID,
		auth:    auth,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
}

func (c *Client) StoreID() int64 {
	return c.storeID
}

func (c *Client) Auth() Auth {
	return c.auth
}

// WriteResult is the platform answer to a create or update.
type WriteResult struct {
	Status int                    `json:"status"`
	Data   map[string]interface{} `json:"data,omitempty"`
}

type listResponse[T any] struct {
	Result []T `json:"result"`
}

// FindProductsBySKU returns every product whose sku equals sku.
func (c *Client) FindProductsBySKU(ctx context.Context, sku string) ([]models.Product, error) {
	var resp listResponse[models.Product]
	resource := "/products.json?sku=" + url.QueryEscape(sku)
	if _, err := c.do(ctx, http.MethodGet, resource, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Result, nil
}

// GetProduct fetches a single product snapshot by ID
func (c *Client) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	var product models.Product
	if _, err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(productID)+".json", nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct posts a new product.
func (c *Client) CreateProduct(ctx context.Context, product *models.Product) (*WriteResult, error) {
	return c.write(ctx, http.MethodPost, "/products.json", product)
}

// UpdateProduct patches an existing product. body may be a full product or a
// partial document such as {"variations": [...]}; lists are replaced, not
// merged.
func (c *Client) UpdateProduct(ctx context.Context, productID string, body interface{}) (*WriteResult, error) {
	return c.write(ctx, http.MethodPatch, "/products/"+url.PathEscape(productID)+".json", body)
}

func (c *Client) FindBrandsBySlug(ctx context.Context, slug string) ([]models.TaxonomyNode, error) {
	var resp listResponse[models.TaxonomyNode]
	if _, err := c.do(ctx, http.MethodGet, "/brands.json?slug="+url.QueryEscape(slug), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Result, nil
}

func (c *Client) CreateBrand(ctx context.Context, node models.TaxonomyNode) error {
	_, err := c.write(ctx, http.MethodPost, "/brands.json", node)
	return err
}

func (c *Client) FindCategoriesByName(ctx context.Context, name string) ([]models.TaxonomyNode, error) {
	var resp listResponse[models.TaxonomyNode]
	if _, err := c.do(ctx, http.MethodGet, "/categories.json?name="+url.QueryEscape(name), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Result, nil
}

func (c *Client) CreateCategory(ctx context.Context, node models.TaxonomyNode) error {
	_, err := c.write(ctx, http.MethodPost, "/categories.json", node)
	return err
}

func (c *Client) write(ctx context.Context, method, resource string, body interface{}) (*WriteResult, error) {
	var data map[string]interface{}
	status, err := c.do(ctx, method, resource, body, &data)
	if err != nil {
		return nil, err
	}
	return &WriteResult{Status: status, Data: data}, nil
}

// do performs one request. Non-2xx answers and transport failures come back
// as *RequestError after being logged with the request context.
func (c *Client) do(ctx context.Context, method, resource string, body, out interface{}) (int, error) {
	endpoint := c.baseURL + resource

	if err := c.limiter.Wait(ctx); err != nil {
		return 0, c.fail(&RequestError{Method: method, URL: endpoint, Err: err})
	}

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Store-ID", strconv.FormatInt(c.storeID, 10))
	if c.auth.MyID != "" {
		req.Header.Set("X-My-ID", c.auth.MyID)
		req.Header.Set("X-Access-Token", c.auth.AccessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, c.fail(&RequestError{Method: method, URL: endpoint, Err: err})
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, c.fail(&RequestError{Method: method, URL: endpoint, Status: resp.StatusCode, Err: err})
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, c.fail(&RequestError{Method: method, URL: endpoint, Status: resp.StatusCode, Body: string(respBody)})
	}

	if out != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

func (c *Client) fail(err *RequestError) error {
	fields := err.Fields()
	fields["store_id"] = c.storeID
	c.logger.WithFields(fields).Error("%v", err)
	return err
}

package orderstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/rmarasigan/printshop-pos-backend/pkg/config"
	pkgerrors "github.com/rmarasigan/printshop-pos-backend/pkg/errors"
)

const (
	responseBodyReadLimit int64 = 4096
	fetchRetryBackoff           = 200 * time.Millisecond
)

var (
	errBaseURLRequired = errors.New("order store base url is required")

	// ErrVersionConflict signals the order changed between refetch and write.
	ErrVersionConflict = errors.New("order version conflict")
)

// Client talks to the remote order store over HTTP. Reads of the full list are
// retried with a short backoff; writes are never retried automatically.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	apiKey       string
	fetchRetries int
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient builds an order store client from configuration.
func NewClient(cfg config.OrderStoreConfig, opts ...Option) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, errBaseURLRequired
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	client := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiKey:       strings.TrimSpace(cfg.APIKey),
		fetchRetries: cfg.FetchRetries,
		httpClient:   &http.Client{Timeout: timeout},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// FetchOrders returns the full order list from the remote store.
func (c *Client) FetchOrders(ctx context.Context) ([]Order, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order store client not configured")
	}

	var orders []Order
	backoff := retry.WithMaxRetries(uint64(max(c.fetchRetries, 0)), retry.NewConstant(fetchRetryBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		body, err := c.get(ctx, "orders")
		if err != nil {
			return retry.RetryableError(err)
		}
		decoded, err := decodeOrderList(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode order list")
		}
		orders = decoded
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch orders")
	}
	return orders, nil
}

// GetOrder returns the latest state of a single order.
func (c *Client) GetOrder(ctx context.Context, id int64) (*Order, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order store client not configured")
	}
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id must be positive")
	}

	body, err := c.get(ctx, "orders/"+strconv.FormatInt(id, 10))
	if err != nil {
		return nil, err
	}
	order, err := decodeOrder(body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode order")
	}
	return &order, nil
}

// UpdateOrder writes the patch back conditionally on expectedVersion. A stale
// version fails with ErrVersionConflict and nothing is written remotely.
func (c *Client) UpdateOrder(ctx context.Context, id int64, patch OrderPatch, expectedVersion int64) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "order store client not configured")
	}
	if id <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id must be positive")
	}
	if patch.Balance.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "balance cannot be negative")
	}

	payload, err := json.Marshal(patch)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal order patch")
	}

	url := fmt.Sprintf("%s/orders/%d", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(payload))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build update request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("If-Match", strconv.FormatInt(expectedVersion, 10))
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute update request")
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusConflict, http.StatusPreconditionFailed:
		return pkgerrors.Wrap(pkgerrors.CodeConflict, ErrVersionConflict, "order changed since refetch")
	case http.StatusNotFound:
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, c.statusError(resp), "update order failed")
	}
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, strings.TrimLeft(path, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build request")
	}
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, c.statusError(resp), "request failed")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read response body")
	}
	return body, nil
}

func (c *Client) setAuth(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

func (c *Client) statusError(resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

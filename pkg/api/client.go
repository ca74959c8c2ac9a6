package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/matzehuels/ndorder/pkg/httputil"
	pkgio "github.com/matzehuels/ndorder/pkg/io"
)

// Client calls a remote ordering service.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// Attempts bounds retries of network failures, 429 and 5xx responses.
	Attempts int
	// RetryDelay is the wait before the first retry; it doubles after each.
	RetryDelay time.Duration
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 5 * time.Minute},
		Attempts:   3,
		RetryDelay: time.Second,
	}
}

// Order requests an ordering.
func (c *Client) Order(ctx context.Context, req OrderRequest) (*pkgio.Ordering, error) {
	var doc pkgio.Ordering
	if err := c.post(ctx, "/v1/order", req, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Analyze requests the fill statistics of a permutation.
func (c *Client) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResponse, error) {
	var resp AnalyzeResponse
	if err := c.post(ctx, "/v1/analyze", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Health checks that the service answers.
func (c *Client) Health(ctx context.Context) error {
	return httputil.Retry(ctx, c.Attempts, c.RetryDelay, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/healthz", nil)
		if err != nil {
			return err
		}
		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return httputil.Transient(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("health check: http %d", resp.StatusCode)
			if httputil.TransientStatus(resp.StatusCode) {
				return httputil.Transient(err)
			}
			return err
		}
		return nil
	})
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	return httputil.Retry(ctx, c.Attempts, c.RetryDelay, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return httputil.Transient(fmt.Errorf("post %s: %w", path, err))
		}
		defer resp.Body.Close()

		if httputil.TransientStatus(resp.StatusCode) {
			return httputil.Transient(fmt.Errorf("post %s: %w", path, httputil.ReadError(resp)))
		}
		if resp.StatusCode != http.StatusOK {
			return httputil.ReadError(resp)
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return httputil.Transient(fmt.Errorf("read %s response: %w", path, err))
		}
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode %s response: %w", path, err)
		}
		return nil
	})
}

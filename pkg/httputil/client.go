package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/matzehuels/cubeskin/pkg/buildinfo"
	"github.com/matzehuels/cubeskin/pkg/observability"
)

// Sentinel errors returned by [Client].
var (
	// ErrNotFound is returned for 404 responses.
	ErrNotFound = errors.New("not found")

	// ErrNetwork is returned for transport failures and unexpected statuses.
	ErrNetwork = errors.New("network error")
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 30 * time.Second

// MaxBodySize caps response bodies. Reference tables are a few megabytes.
const MaxBodySize = 32 << 20

// Client performs GET requests and classifies failures for [Retry].
type Client struct {
	http    *http.Client
	headers map[string]string
}

// NewClient creates a Client. Pass nil for headers if none are needed.
func NewClient(headers map[string]string) *Client {
	return &Client{
		http:    &http.Client{Timeout: DefaultTimeout},
		headers: headers,
	}
}

// WithHTTPClient replaces the underlying http.Client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

// Get fetches url and returns the body.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "cubeskin/"+buildinfo.Version)
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, &RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return nil, &RetryableError{Err: fmt.Errorf("%w: read body: %v", ErrNetwork, err)}
	}
	if len(body) > MaxBodySize {
		return nil, fmt.Errorf("%w: response exceeds %d bytes", ErrNetwork, MaxBodySize)
	}
	return body, nil
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code >= 500:
		return &RetryableError{Err: fmt.Errorf("%w: status %d", ErrNetwork, code)}
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}

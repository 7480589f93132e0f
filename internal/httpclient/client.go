// Package httpclient provides the HTTP fetch collaborator used to retrieve
// remote catalog documents.
package httpclient

//go:generate mockgen -destination=mocks/mock_client.go -package=mocks -source=client.go Client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultTimeout is used when a client is created with a zero timeout
	DefaultTimeout = 10 * time.Second
	// MaxResponseSize caps the size of a fetched document (100MB)
	MaxResponseSize = 100 * 1024 * 1024
	// UserAgent is sent with every request
	UserAgent = "formsync-server/1.0"
)

// Client fetches documents over HTTP
type Client interface {
	// Get performs a GET request and returns the response body.
	// Non-2xx responses are reported as *HTTPError.
	Get(ctx context.Context, url string) ([]byte, error)
}

// DefaultClient is the net/http backed Client
type DefaultClient struct {
	client *http.Client
}

var _ Client = (*DefaultClient)(nil)

// NewDefaultClient creates a client with the given timeout. A zero timeout
// selects DefaultTimeout.
func NewDefaultClient(timeout time.Duration) *DefaultClient {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &DefaultClient{
		client: &http.Client{Timeout: timeout},
	}
}

// Get implements Client
func (c *DefaultClient) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, NewHTTPError(resp.StatusCode, url, http.StatusText(resp.StatusCode))
	}

	if resp.ContentLength > MaxResponseSize {
		return nil, fmt.Errorf("response size %d exceeds maximum allowed size of %.2f MB",
			resp.ContentLength, float64(MaxResponseSize)/(1024*1024))
	}

	// Read one byte past the limit to detect oversized bodies without a Content-Length.
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(body) > MaxResponseSize {
		return nil, fmt.Errorf("response body exceeds maximum allowed size of %.2f MB",
			float64(MaxResponseSize)/(1024*1024))
	}

	return body, nil
}

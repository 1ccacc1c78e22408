// Outbound HTTP dispatch. The client is shared by the execution pipeline
// and by the http_* host functions; connection pooling lives here so
// concurrent performance-test workers can reuse transports safely.

package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultTimeout bounds a single dispatch, including host-function
	// sub-requests issued from scripts.
	DefaultTimeout = 30 * time.Second

	DefaultMaxIdleConns        = 100
	DefaultMaxIdleConnsPerHost = 10
	DefaultIdleConnTimeout     = 90 * time.Second
)

// TransportError wraps connection, DNS and timeout failures so callers can
// tell them apart from script errors when recording an item result.
type TransportError struct {
	URL     string
	Timeout bool
	Err     error
}

func (e *TransportError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("request to %s timed out: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

type Client struct {
	httpClient *http.Client
	timeout    time.Duration
}

type Option func(*Client)

// WithTimeout overrides the per-dispatch timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func New(opts ...Option) *Client {
	c := &Client{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(c)
	}
	transport := &http.Transport{
		MaxIdleConns:        DefaultMaxIdleConns,
		MaxIdleConnsPerHost: DefaultMaxIdleConnsPerHost,
		IdleConnTimeout:     DefaultIdleConnTimeout,
	}
	c.httpClient = &http.Client{Transport: transport}
	return c
}

// Timeout returns the per-dispatch timeout.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Dispatch sends req and returns the response with wall-clock duration
// filled in. Connection, DNS and timeout failures come back as a
// *TransportError; ctx cancellation is reported as ctx.Err().
func (c *Client) Dispatch(ctx context.Context, req *Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if req.Body != "" {
		body = strings.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.BuildURL(), body)
	if err != nil {
		return nil, &TransportError{URL: req.URL, Err: err}
	}

	hasContentType := false
	for _, p := range req.Header.Pairs() {
		if strings.EqualFold(p.Name, "Content-Type") {
			hasContentType = true
		}
		httpReq.Header.Set(p.Name, p.Value)
	}
	if !hasContentType && req.Body != "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() == context.Canceled {
			return nil, context.Canceled
		}
		return nil, &TransportError{
			URL:     req.URL,
			Timeout: errors.Is(err, context.DeadlineExceeded) || isTimeout(err),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	duration := time.Since(start)
	if err != nil {
		return nil, &TransportError{URL: req.URL, Err: fmt.Errorf("reading body: %w", err)}
	}

	header := NewHeader()
	for key, values := range resp.Header {
		if len(values) > 0 {
			header.Set(key, values[0])
		}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     header,
		Body:       respBody,
		Duration:   duration,
	}, nil
}

func isTimeout(err error) bool {
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

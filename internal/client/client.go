// Package client is the transport to the remote tracking backend. Every call
// is a single attempt: no retries, no backoff, no client side timeout.
// Cancellation comes from the caller's context.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"applytrack/internal/config"
	applytrackErrors "applytrack/internal/errors"
	"applytrack/internal/observability"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// UploadField is the multipart form field carrying an uploaded document.
const UploadField = "file"

// Client sends JSON and multipart requests to the tracking backend and
// decodes the responses into generic values for the normalizers.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	breaker    *Breaker
	metrics    *observability.Metrics
	logger     *applytrackErrors.Logger
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the instrumented default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithMetrics records request metrics on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// New creates a Client for the backend described by cfg
func New(cfg config.APIConfig, logger *applytrackErrors.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = applytrackErrors.NewNopLogger()
	}

	c := &Client{
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: NewBreaker("tracking-api", cfg.CircuitBreaker, logger),
		logger:  logger,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BaseURL returns the backend root every endpoint is appended to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// BreakerStats returns circuit breaker statistics
func (c *Client) BreakerStats() map[string]any {
	return c.breaker.GetStats()
}

// IsHealthy reports whether calls are currently let through
func (c *Client) IsHealthy() bool {
	return c.breaker.IsHealthy()
}

// Request sends a JSON request to baseURL+endpoint. body is omitted when nil.
// An empty success body yields a nil value.
func (c *Client) Request(ctx context.Context, method, endpoint string, body any) (any, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, applytrackErrors.NewValidationError(applytrackErrors.ErrCodeInvalidRequest,
				"failed to encode request body", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, applytrackErrors.NewValidationError(applytrackErrors.ErrCodeInvalidRequest,
			"failed to build request", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(ctx, req, endpoint)
}

// Upload posts r as a multipart form with a single part named "file".
func (c *Client) Upload(ctx context.Context, endpoint, filename string, r io.Reader) (any, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile(UploadField, filename)
	if err != nil {
		return nil, applytrackErrors.NewInternalError(applytrackErrors.ErrCodeInvalidRequest,
			"failed to create upload form", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, applytrackErrors.NewIOError(applytrackErrors.ErrCodeFileNotReadable,
			fmt.Sprintf("failed to read %s", filename), err)
	}
	if err := writer.Close(); err != nil {
		return nil, applytrackErrors.NewInternalError(applytrackErrors.ErrCodeInvalidRequest,
			"failed to finish upload form", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return nil, applytrackErrors.NewValidationError(applytrackErrors.ErrCodeInvalidRequest,
			"failed to build request", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.send(ctx, req, endpoint)
}

func (c *Client) send(ctx context.Context, req *http.Request, endpoint string) (any, error) {
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	c.logger.Debug("Sending API request", "method", req.Method, "endpoint", endpoint)

	var result any
	err := c.metrics.TrackAPIRequest(ctx, req.Method, endpoint, func(ctx context.Context) (int, error) {
		status := 0
		v, err := c.breaker.Execute(func() (any, error) {
			v, code, err := c.do(req.WithContext(ctx), endpoint)
			status = code
			return v, err
		})
		result = v
		return status, err
	})
	if err != nil {
		c.logger.Debug("API request failed", "method", req.Method, "endpoint", endpoint, "error", err.Error())
		return nil, err
	}

	return result, nil
}

// do performs exactly one round trip and returns the decoded body and the status code.
func (c *Client) do(req *http.Request, endpoint string) (any, int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, applytrackErrors.NewNetworkError(applytrackErrors.ErrCodeRequestFailed,
			fmt.Sprintf("%s %s failed", req.Method, endpoint), err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, newHTTPError(resp, req.Method, endpoint)
	}
	if err != nil {
		return nil, resp.StatusCode, applytrackErrors.NewNetworkError(applytrackErrors.ErrCodeRequestFailed,
			fmt.Sprintf("failed to read response of %s %s", req.Method, endpoint), err)
	}

	v, err := decode(data)
	if err != nil {
		return nil, resp.StatusCode, applytrackErrors.NewNetworkError(applytrackErrors.ErrCodeInvalidFormat,
			fmt.Sprintf("invalid JSON in response of %s %s", req.Method, endpoint), err)
	}
	return v, resp.StatusCode, nil
}

// decode keeps numbers as json.Number so large ids survive unchanged.
func decode(data []byte) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// ABOUTME: HTTP client for the shelter admin REST backend
// ABOUTME: Attaches the session bearer token to every request and maps failures to errors

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultTimeout bounds a single request when no HTTP client is supplied
const DefaultTimeout = 30 * time.Second

// TokenSource provides the current bearer token
type TokenSource interface {
	Token() (string, bool)
}

// Client is the authenticated data adapter. It holds no mutable state and is
// safe for concurrent use; concurrent identical calls each reach the backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     *slog.Logger
	timeout    time.Duration
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. A nil client keeps the default.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout. It applies to a copy of the HTTP
// client, so a client passed to WithHTTPClient is never modified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a new API client with the given base URL and token source.
// A nil token source makes every data call fail with ErrUnauthenticated.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		tokens: tokens,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

// BaseURL returns the backend base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// token reads the bearer token, failing before any network activity
func (c *Client) token() (string, error) {
	if c.tokens == nil {
		return "", ErrUnauthenticated
	}
	tok, ok := c.tokens.Token()
	if !ok || tok == "" {
		return "", ErrUnauthenticated
	}
	return tok, nil
}

// doAuthorized issues an authenticated request. The caller closes the body
// of a successful response; non-2xx responses are returned as *HTTPError.
func (c *Client) doAuthorized(ctx context.Context, method, path string, query url.Values, body any) (*http.Response, error) {
	tok, err := c.token()
	if err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+tok)

	return c.send(ctx, req)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal input: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	return req, nil
}

// send executes the request once. There is no retry.
func (c *Client) send(ctx context.Context, req *http.Request) (*http.Response, error) {
	start := time.Now()
	reqID := req.Header.Get("X-Request-ID")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed",
			"method", req.Method, "path", req.URL.Path, "request_id", reqID, "error", err)
		return nil, c.handleRequestError(ctx, err)
	}

	c.logger.Debug("request completed",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"request_id", reqID,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, c.handleErrorResponse(resp)
	}
	return resp, nil
}

// handleRequestError wraps transport failures, keeping the cause reachable
func (c *Client) handleRequestError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("request to %s aborted: %w", c.baseURL, ctxErr)
	}
	return fmt.Errorf("cannot connect to backend at %s: %w", c.baseURL, err)
}

// handleErrorResponse parses API error responses
func (c *Client) handleErrorResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	herr := &HTTPError{StatusCode: resp.StatusCode, Body: body}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		herr.Message = errResp.Error
		if herr.Message == "" {
			herr.Message = errResp.Message
		}
	}
	return herr
}

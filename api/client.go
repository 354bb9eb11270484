// Package api is the HTTP client for the SunYield platform API. It attaches
// the right bearer token per request path, converts non-2xx responses into
// typed errors and exposes one method per endpoint the platform serves.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/sunyield/sunyield-go/config"
)

// Client issues authenticated requests against the SunYield API.
//
// Token routing: requests whose path starts with the admin prefix carry the
// admin token; every other path carries the user token. A missing token for
// the applicable scope sends the request unauthenticated. On a 401 the client
// clears the token that was in use and invokes the OnAuthExpired hook, the
// equivalent of the frontend's forced redirect to the login page. The hook is
// global: any request on an expired token fires it, regardless of which flow
// issued the request.
type Client struct {
	baseURL     string
	adminPrefix string
	httpClient  *http.Client
	tokens      TokenStore

	// OnAuthExpired, when set, is called after a 401 has cleared the token
	// for the given scope.
	OnAuthExpired func(scope TokenScope)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient substitutes the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(cfg *config.Config, tokens TokenStore, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(cfg.APIBaseURL, "/"),
		adminPrefix: cfg.AdminPathPrefix,
		httpClient:  &http.Client{Timeout: cfg.RequestTimeout},
		tokens:      tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tokens exposes the client's token store.
func (c *Client) Tokens() TokenStore { return c.tokens }

// scopeFor selects which token a path uses.
func (c *Client) scopeFor(path string) TokenScope {
	if strings.HasPrefix(path, c.adminPrefix) {
		return ScopeAdmin
	}
	return ScopeUser
}

// envelope is the common error body shape; legacy endpoints return a bare
// string instead, handled in decodeError.
type envelope struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	return c.send(ctx, method, path, query, reader, "application/json", out)
}

// doMultipart sends a multipart/form-data request built by build.
func (c *Client) doMultipart(ctx context.Context, method, path string, build func(*multipart.Writer) error, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := build(w); err != nil {
		return fmt.Errorf("failed to build multipart body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart body: %w", err)
	}
	return c.send(ctx, method, path, nil, &buf, w.FormDataContentType(), out)
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}

	scope := c.scopeFor(path)
	if token := c.tokens.Token(scope); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return newNetworkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.tokens.ClearToken(scope)
		if c.OnAuthExpired != nil {
			c.OnAuthExpired(scope)
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	var env envelope
	message := ""
	code := ""
	if err := json.Unmarshal(data, &env); err == nil {
		code = env.Code
		message = env.Message
		if message == "" {
			message = env.Error
		}
	}
	if message == "" {
		// Legacy endpoints respond with a plain string body.
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			message = s
		} else {
			message = strings.TrimSpace(string(data))
		}
	}

	return NewError(resp.StatusCode, code, message)
}

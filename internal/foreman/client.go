// Package foreman is an authenticated HTTP client for the Foreman
// REST API. It owns connection reuse, credential attachment and
// response decoding; Foreman's resource semantics are opaque to it.
package foreman

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"golang.org/x/oauth2"

	"github.com/theforeman/foreman-mcp/internal/config"
	"github.com/theforeman/foreman-mcp/internal/logging"
)

// Caller is the outbound contract tool handlers depend on. Stubs
// implement it in tests; *Client is the production implementation.
type Caller interface {
	Call(ctx context.Context, method, apiPath string, query url.Values, body any) (int, json.RawMessage, error)
}

// RequestError reports a transport-level failure or a non-2xx status
// from Foreman. For non-2xx responses Body carries Foreman's error
// payload so it can be relayed to the agent.
type RequestError struct {
	Status  int
	Body    string
	Timeout bool
	Err     error
}

func (e *RequestError) Error() string {
	if e.Timeout {
		return "foreman request timed out"
	}
	if e.Err != nil {
		return fmt.Sprintf("foreman request failed: %v", e.Err)
	}
	return fmt.Sprintf("foreman returned status %d", e.Status)
}

func (e *RequestError) Unwrap() error { return e.Err }

// DecodeError reports a Foreman response body that is not valid JSON.
type DecodeError struct {
	Snippet string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("foreman response is not valid JSON: %.80s", e.Snippet)
}

// Client is a Foreman API client. It holds the fixed process-wide
// credentials and a pooled HTTP connection; it has no per-call mutable
// state and is safe for concurrent use.
type Client struct {
	base       *url.URL
	username   string
	password   string
	bearer     bool
	httpClient *http.Client
	logger     logging.Logger
}

// New creates a Client from the validated configuration. When a token
// is configured it is attached as a bearer credential on every request
// via a static oauth2 token source; otherwise HTTP basic auth is used.
func New(cfg *config.Config, logger logging.Logger) (*Client, error) {
	base, err := url.Parse(cfg.ForemanURL)
	if err != nil {
		return nil, fmt.Errorf("parse foreman URL: %w", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.Insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	var rt http.RoundTripper = transport
	if cfg.Token != "" {
		rt = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token}),
			Base:   transport,
		}
	}

	return &Client{
		base:     base,
		username: cfg.Username,
		password: cfg.Password,
		bearer:   cfg.Token != "",
		httpClient: &http.Client{
			Transport: rt,
			Timeout:   cfg.RequestTimeout,
		},
		logger: logger,
	}, nil
}

// Call performs one Foreman API request and decodes the JSON response.
// apiPath is joined onto the configured base URL; percent-escaped
// segments are sent as given, not re-escaped. A non-2xx status or
// transport failure returns a *RequestError; an unparseable body
// returns a *DecodeError. Empty and 204 responses decode to null.
// There are no automatic retries.
func (c *Client) Call(ctx context.Context, method, apiPath string, query url.Values, body any) (int, json.RawMessage, error) {
	u := *c.base
	escaped := path.Join(u.EscapedPath(), apiPath)
	unescaped, err := url.PathUnescape(escaped)
	if err != nil {
		return 0, nil, fmt.Errorf("invalid path %q: %w", apiPath, err)
	}
	u.Path = unescaped
	u.RawPath = escaped
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if !c.bearer {
		req.SetBasicAuth(c.username, c.password)
	}

	c.logger.Debug("foreman request", "method", method, "path", apiPath)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, &RequestError{Timeout: isTimeout(err), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, &RequestError{Status: resp.StatusCode, Timeout: isTimeout(err), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, nil, &RequestError{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if len(bytes.TrimSpace(data)) == 0 || resp.StatusCode == http.StatusNoContent {
		return resp.StatusCode, json.RawMessage("null"), nil
	}
	if !json.Valid(data) {
		return resp.StatusCode, nil, &DecodeError{Snippet: strings.TrimSpace(string(data))}
	}

	return resp.StatusCode, json.RawMessage(data), nil
}

// Ping checks connectivity and credentials against Foreman's status
// endpoint.
func (c *Client) Ping(ctx context.Context) error {
	_, _, err := c.Call(ctx, http.MethodGet, "/api/status", nil, nil)
	return err
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}

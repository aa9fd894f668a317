// internal/api/client.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/enixma/dashboard/pkg/core"
)

// maxBodySize matches the device store's request limit.
const maxBodySize = 1 << 20

var (
	// ErrUnexpectedStatus is wrapped by StatusError for non-2xx replies.
	ErrUnexpectedStatus = errors.New("unexpected status")
	// ErrServer is returned when the store answers with an error field.
	ErrServer = errors.New("store error")
	// ErrMalformedResponse is returned when a reply is not a JSON envelope.
	ErrMalformedResponse = errors.New("malformed store response")
)

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher reads store records.
type Fetcher interface {
	Fetch(ctx context.Context, name string) (Envelope, error)
}

// StatusError carries the status and body of a non-2xx reply.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("store returned status %d", e.Status)
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}

// Envelope is the JSON document the parameter store answers with.
type Envelope struct {
	Method string          `json:"method,omitempty"`
	Status string          `json:"status,omitempty"`
	Name   string          `json:"name,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// HasData reports whether the record holds a non-empty array or object.
func (e Envelope) HasData() bool {
	if len(e.Data) == 0 {
		return false
	}
	var v any
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return false
	}
	switch d := v.(type) {
	case []any:
		return len(d) > 0
	case map[string]any:
		return len(d) > 0
	default:
		return false
	}
}

// Result describes a completed commit.
type Result struct {
	Method   core.Method
	Upgraded bool
	Response Envelope
}

// Client talks to the device parameter store. Every record lives at
// <baseURL><endpoint>?name=<name>.
type Client struct {
	baseURL    string
	endpoint   string
	httpClient Doer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(d Doer) Option {
	return func(c *Client) {
		c.httpClient = d
	}
}

// WithTimeout sets the timeout of the default *http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if hc, ok := c.httpClient.(*http.Client); ok {
			hc.Timeout = d
		}
	}
}

// New creates a new store client.
func New(baseURL, endpoint string, opts ...Option) *Client {
	if endpoint != "" && !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the record address for name.
func (c *Client) URL(name string) string {
	return c.baseURL + c.endpoint + "?name=" + url.QueryEscape(name)
}

// Fetch reads the named record.
func (c *Client) Fetch(ctx context.Context, name string) (Envelope, error) {
	return c.do(ctx, http.MethodGet, name, nil)
}

// Commit persists body under name. A create on a record that already holds
// data is sent as an update; deletes are sent as requested. A failed
// pre-read aborts the commit, an unparsable one does not.
func (c *Client) Commit(ctx context.Context, name string, body []byte, method core.Method) (Result, error) {
	res := Result{Method: method}

	existing, err := c.Fetch(ctx, name)
	if err != nil && !errors.Is(err, ErrMalformedResponse) {
		return res, fmt.Errorf("failed to load %s: %w", name, err)
	}

	if method == core.MethodCreate && existing.HasData() {
		res.Method = core.MethodUpdate
		res.Upgraded = true
	}

	res.Response, err = c.do(ctx, string(res.Method), name, body)
	if err != nil {
		return res, fmt.Errorf("%s %s failed: %w", res.Method, name, err)
	}
	return res, nil
}

func (c *Client) do(ctx context.Context, method, name string, body []byte) (Envelope, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL(name), reader)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Envelope{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Envelope{}, &StatusError{Status: resp.StatusCode, Body: string(raw)}
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if env.Error != "" {
		return env, fmt.Errorf("%w: %s", ErrServer, env.Error)
	}
	return env, nil
}

// Package fetch is the single choke point for outbound HTTP calls, used by the
// backend to reach third-party services and by clients to reach the backend.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/solexplorer/solexplorer/shared/logger"
)

const maxResponseSize = 10 << 20

// Client holds the domains a request can be routed to and the credentials
// injected into every call.
type Client struct {
	BaseURL    string // third-party or target domain
	BackendURL string // same-origin backend, used when Request.ViaBackend is set
	HttpClient *http.Client
	Header     http.Header // static headers, e.g. X-API-KEY
	Query      Params      // static query params, e.g. apiKey
}

// New creates a client for baseURL with a default timeout.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		BaseURL:    baseURL,
		HttpClient: &http.Client{Timeout: timeout},
		Header:     http.Header{},
	}
}

// Request describes one outbound call.
type Request struct {
	Endpoint   string
	Method     string // defaults to GET
	Body       any
	Query      Params
	Token      string
	ViaBackend bool
	NoCache    bool
	Header     http.Header
}

// ResolveURL returns the final URL for req without performing the call.
func (c *Client) ResolveURL(req Request) (string, error) {
	base := c.BaseURL
	if req.ViaBackend {
		base = c.BackendURL
	}
	params := req.Query
	if len(c.Query) > 0 {
		params = c.Query.Merge(req.Query)
	}
	return BuildURL(base, req.Endpoint, params)
}

// Do performs a single attempt and returns the raw JSON payload on 2xx.
func (c *Client) Do(ctx context.Context, req Request) (json.RawMessage, error) {
	target, err := c.ResolveURL(req)
	if err != nil {
		return nil, err
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	for k, vs := range c.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}
	if req.NoCache {
		httpReq.Header.Set("Cache-Control", "no-store")
	}

	start := time.Now()
	resp, err := c.httpClient().Do(httpReq)
	if err != nil {
		observe(httpReq, "error", start)
		fe := networkError(redact(httpReq.URL), err)
		logger.Log.Warn("outbound request failed",
			"component", "fetch",
			"method", method,
			"host", httpReq.URL.Host,
			"error", fe.Message)
		return nil, fe
	}
	defer resp.Body.Close()
	observe(httpReq, strconv.Itoa(resp.StatusCode), start)

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, networkError(redact(httpReq.URL), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		fe := statusError(redact(httpReq.URL), resp.StatusCode, payload)
		logger.Log.Debug("outbound request returned error status",
			"component", "fetch",
			"method", method,
			"url", fe.URL,
			"status", resp.StatusCode,
			"error", fe.Message)
		return nil, fe
	}

	if len(bytes.TrimSpace(payload)) == 0 {
		return json.RawMessage("null"), nil
	}
	if !json.Valid(payload) {
		return nil, &Error{StatusCode: resp.StatusCode, Message: "invalid json in response", URL: redact(httpReq.URL)}
	}
	return json.RawMessage(payload), nil
}

// DoJSON performs req and decodes the payload into T.
func DoJSON[T any](ctx context.Context, c *Client, req Request) (T, error) {
	var out T
	raw, err := c.Do(ctx, req)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("cannot decode response from %s: %w", req.Endpoint, err)
	}
	return out, nil
}

func (c *Client) Get(ctx context.Context, endpoint string, params Params) (json.RawMessage, error) {
	return c.Do(ctx, Request{Endpoint: endpoint, Query: params})
}

func (c *Client) Post(ctx context.Context, endpoint string, body any) (json.RawMessage, error) {
	return c.Do(ctx, Request{Endpoint: endpoint, Method: http.MethodPost, Body: body})
}

func (c *Client) httpClient() *http.Client {
	if c.HttpClient != nil {
		return c.HttpClient
	}
	return http.DefaultClient
}

func observe(req *http.Request, status string, start time.Time) {
	upstreamRequestDuration.WithLabelValues(req.URL.Host, req.Method, status).Observe(time.Since(start).Seconds())
}

// redact drops the query string so credentials passed as params never reach
// logs or error values.
func redact(u *url.URL) string {
	clean := *u
	clean.RawQuery = ""
	return clean.String()
}

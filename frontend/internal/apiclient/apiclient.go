// Package apiclient is the typed client of the solexplorer backend. Reads go
// through a shared query cache so repeated and concurrent lookups of the same
// resource share one request, writes go through mutations.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/solexplorer/solexplorer/shared/fetch"
	"github.com/solexplorer/solexplorer/shared/query"
)

// APIClient handles all communication with the backend API.
type APIClient struct {
	queries *query.Client
	token   string
}

// New creates a client for the backend mounted at backendURL, e.g.
// http://localhost:8080/api.
func New(backendURL string, timeout time.Duration, opts ...query.ClientOption) *APIClient {
	f := fetch.New("", timeout)
	f.BackendURL = backendURL
	return &APIClient{queries: query.New(f, opts...)}
}

// WithToken returns a client that authenticates as the token owner. The
// cache is shared with c.
func (c *APIClient) WithToken(token string) *APIClient {
	return &APIClient{queries: c.queries, token: token}
}

// Queries exposes the underlying cache, e.g. to forward focus events.
func (c *APIClient) Queries() *query.Client {
	return c.queries
}

// read builds a backend read request. required names the path or query
// params that must be non-empty for the request to be sent.
func (c *APIClient) read(endpoint string, path map[string]string, params fetch.Params, required ...string) query.Request {
	return query.Request{
		Endpoint:   endpoint,
		PathParams: path,
		Query:      params,
		Required:   required,
		Token:      c.token,
		ViaBackend: true,
	}
}

// writeOptions authenticates a mutation and routes it through the backend.
func (c *APIClient) writeOptions(opts ...query.MutationOption) []query.MutationOption {
	return append([]query.MutationOption{query.ViaBackend(), query.WithToken(c.token)}, opts...)
}

// fetchAs reads req once through the cache and decodes the payload.
func fetchAs[T any](ctx context.Context, c *APIClient, req query.Request) (T, error) {
	var out T
	entry, err := c.queries.Fetch(ctx, req)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(entry.Data, &out); err != nil {
		return out, fmt.Errorf("cannot decode %s response: %w", req.Endpoint, err)
	}
	return out, nil
}

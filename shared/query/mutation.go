package query

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/solexplorer/solexplorer/shared/fetch"
)

type MutationState[T any] struct {
	Data    T
	Err     error
	Loading bool
}

type mutationConfig struct {
	method      string
	query       fetch.Params
	token       string
	viaBackend  bool
	invalidates []Request
}

type MutationOption func(*mutationConfig)

func WithMethod(method string) MutationOption {
	return func(c *mutationConfig) { c.method = method }
}

func WithStaticQuery(params fetch.Params) MutationOption {
	return func(c *mutationConfig) { c.query = params }
}

func WithToken(token string) MutationOption {
	return func(c *mutationConfig) { c.token = token }
}

func ViaBackend() MutationOption {
	return func(c *mutationConfig) { c.viaBackend = true }
}

// Invalidates lists reads to refresh after a successful trigger.
func Invalidates(reqs ...Request) MutationOption {
	return func(c *mutationConfig) { c.invalidates = append(c.invalidates, reqs...) }
}

// Mutation is a write-path trigger. Every Trigger issues its own request.
type Mutation[T any] struct {
	c        *Client
	endpoint string
	cfg      mutationConfig

	mu    sync.Mutex
	gen   uint64
	state MutationState[T]
}

func NewMutation[T any](c *Client, endpoint string, opts ...MutationOption) *Mutation[T] {
	cfg := mutationConfig{method: http.MethodPost}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Mutation[T]{c: c, endpoint: endpoint, cfg: cfg}
}

// Trigger sends body once. Concurrent triggers are independent; the state
// reflects the most recently started one.
func (m *Mutation[T]) Trigger(ctx context.Context, body any) (T, error) {
	m.mu.Lock()
	m.gen++
	gen := m.gen
	m.state.Loading = true
	m.mu.Unlock()

	var out T
	raw, err := m.c.fetcher.Do(ctx, fetch.Request{
		Endpoint:   m.endpoint,
		Method:     m.cfg.method,
		Body:       body,
		Query:      m.cfg.query,
		Token:      m.cfg.token,
		ViaBackend: m.cfg.viaBackend,
	})
	if err == nil && len(raw) > 0 {
		if derr := json.Unmarshal(raw, &out); derr != nil {
			err = fmt.Errorf("cannot decode response for %s: %w", m.endpoint, derr)
		}
	}

	m.mu.Lock()
	if gen == m.gen {
		m.state = MutationState[T]{Data: out, Err: err}
	}
	m.mu.Unlock()

	if err == nil {
		for _, req := range m.cfg.invalidates {
			m.c.Invalidate(ctx, req)
		}
	}
	return out, err
}

func (m *Mutation[T]) State() MutationState[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Package query is a read-through cache over the fetch client. Reads are keyed
// by resolved URL, coalesced per key and pushed to subscribers; writes go
// through Mutation and are never cached or coalesced.
package query

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/solexplorer/solexplorer/shared/fetch"
	"github.com/solexplorer/solexplorer/shared/logger"
)

// ErrSkipped is returned for requests that are skipped or miss required params.
var ErrSkipped = errors.New("query skipped")

// Fetcher is the subset of *fetch.Client the cache needs.
type Fetcher interface {
	ResolveURL(req fetch.Request) (string, error)
	Do(ctx context.Context, req fetch.Request) (json.RawMessage, error)
}

// Entry is the cached state of one key.
type Entry struct {
	Data      json.RawMessage // last successful payload, kept across errors
	Err       error           // error of the last completed call, nil on success
	UpdatedAt time.Time       // zero until the first call completes

	issuedAt time.Time
	version  uint64
}

func (e Entry) settled() bool {
	return !e.UpdatedAt.IsZero()
}

type subscriber interface {
	deliver(key string, e Entry)
	revalidates(ev Event) bool
	request() Request
}

type Client struct {
	fetcher  Fetcher
	defaults Options
	now      func() time.Time

	mu      sync.Mutex
	entries *lru.Cache[string, *Entry]
	pinned  map[string]*Entry // entries of watched keys, never evicted
	subs    map[string]map[subscriber]struct{}
	seq     uint64
	group   singleflight.Group
}

type ClientOption func(*Client)

// WithDefaults sets the options every subscription starts from.
func WithDefaults(opts ...Option) ClientOption {
	return func(c *Client) { c.defaults = c.defaults.with(opts) }
}

// WithCacheSize bounds the number of cached keys.
func WithCacheSize(size int) ClientOption {
	return func(c *Client) {
		if size <= 0 {
			return
		}
		if entries, err := lru.New[string, *Entry](size); err == nil {
			c.entries = entries
		}
	}
}

func withClock(now func() time.Time) ClientOption {
	return func(c *Client) { c.now = now }
}

func New(f Fetcher, opts ...ClientOption) *Client {
	entries, _ := lru.New[string, *Entry](defaultCacheSize)
	c := &Client{
		fetcher:  f,
		defaults: defaultOptions(),
		now:      time.Now,
		entries:  entries,
		pinned:   make(map[string]*Entry),
		subs:     make(map[string]map[subscriber]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch reads req through the cache. Inside the dedup window the cached value
// is returned without a network call and concurrent callers share one call.
func (c *Client) Fetch(ctx context.Context, req Request) (Entry, error) {
	key, ok := req.Key(c.fetcher)
	if !ok {
		return Entry{}, ErrSkipped
	}
	e := c.load(ctx, key, req, c.defaults.DedupingInterval)
	return e, e.Err
}

// Peek returns the cached entry for req without touching the network.
func (c *Client) Peek(req Request) (Entry, bool) {
	key, ok := req.Key(c.fetcher)
	if !ok {
		return Entry{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.pinned[key]
	if !ok {
		e, ok = c.entries.Peek(key)
	}
	if !ok {
		return Entry{}, false
	}
	return *e, e.settled()
}

// Invalidate refetches req when it has subscribers and drops it otherwise.
func (c *Client) Invalidate(ctx context.Context, req Request) {
	key, ok := req.Key(c.fetcher)
	if !ok {
		return
	}
	c.mu.Lock()
	watched := len(c.subs[key]) > 0
	if !watched {
		c.entries.Remove(key)
	}
	c.mu.Unlock()

	if watched {
		c.revalidate(ctx, key, req)
	}
}

// Revalidate refetches every watched key whose subscribers opted into ev.
func (c *Client) Revalidate(ctx context.Context, ev Event) {
	c.mu.Lock()
	targets := make(map[string]Request)
	for key, subs := range c.subs {
		for s := range subs {
			if s.revalidates(ev) {
				targets[key] = s.request()
				break
			}
		}
	}
	c.mu.Unlock()

	var wg sync.WaitGroup
	for key, req := range targets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.revalidate(ctx, key, req)
		}()
	}
	wg.Wait()
}

// load serves key from the cache when it was issued inside the dedup window
// and succeeded, otherwise it joins or starts the shared in-flight call for key.
func (c *Client) load(ctx context.Context, key string, req Request, dedup time.Duration) Entry {
	c.mu.Lock()
	if e, ok := c.lookupLocked(key); ok && e.settled() && e.Err == nil && c.now().Sub(e.issuedAt) < dedup {
		snapshot := *e
		c.mu.Unlock()
		cacheLookups.WithLabelValues("hit").Inc()
		return snapshot
	}
	c.mu.Unlock()

	v, _, shared := c.group.Do(key, func() (any, error) {
		return c.revalidate(ctx, key, req), nil
	})
	if shared {
		cacheLookups.WithLabelValues("shared").Inc()
	} else {
		cacheLookups.WithLabelValues("miss").Inc()
	}
	return v.(Entry)
}

// revalidate always performs a network call and stores its outcome. Entries
// are written in completion order, so the last call to finish wins.
func (c *Client) revalidate(ctx context.Context, key string, req Request) Entry {
	ctx = context.WithoutCancel(ctx)

	c.mu.Lock()
	c.entryLocked(key).issuedAt = c.now()
	c.mu.Unlock()

	data, err := c.fetcher.Do(ctx, req.toFetch())
	if err != nil {
		logger.Log.Debug("query revalidation failed", "component", "query", "error", err)
	}

	c.mu.Lock()
	e := c.entryLocked(key)
	if err == nil {
		e.Data = data
	}
	e.Err = err
	e.UpdatedAt = c.now()
	c.seq++
	e.version = c.seq
	snapshot := *e
	subs := make([]subscriber, 0, len(c.subs[key]))
	for s := range c.subs[key] {
		subs = append(subs, s)
	}
	c.mu.Unlock()

	for _, s := range subs {
		s.deliver(key, snapshot)
	}
	return snapshot
}

func (c *Client) lookupLocked(key string) (*Entry, bool) {
	if e, ok := c.pinned[key]; ok {
		return e, true
	}
	return c.entries.Get(key)
}

func (c *Client) entryLocked(key string) *Entry {
	e, ok := c.lookupLocked(key)
	if ok {
		return e
	}
	e = &Entry{}
	if len(c.subs[key]) > 0 {
		c.pinned[key] = e
	} else {
		c.entries.Add(key, e)
	}
	return e
}

func (c *Client) subscribe(key string, s subscriber) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	set, ok := c.subs[key]
	if !ok {
		set = make(map[subscriber]struct{})
		c.subs[key] = set
	}
	set[s] = struct{}{}

	e, ok := c.pinned[key]
	if !ok {
		if e, ok = c.entries.Peek(key); ok {
			c.entries.Remove(key)
			c.pinned[key] = e
		}
	}
	if !ok {
		return Entry{}, false
	}
	return *e, e.settled()
}

// unsubscribe drops s and invalidates key once nobody watches it.
func (c *Client) unsubscribe(key string, s subscriber) {
	c.mu.Lock()
	defer c.mu.Unlock()
	set := c.subs[key]
	delete(set, s)
	if len(set) == 0 {
		delete(c.subs, key)
		delete(c.pinned, key)
	}
}

func (c *Client) subscribers(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs[key])
}

package query

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// State is what a subscriber sees for its current key.
type State[T any] struct {
	Data      T
	Err       error
	Loading   bool // true only while nothing is cached for Key yet
	Key       string
	UpdatedAt time.Time

	version uint64
}

// Query is a live subscription to one request. It is safe for concurrent use.
type Query[T any] struct {
	c    *Client
	opts Options
	ctx  context.Context

	mu      sync.Mutex
	req     Request
	key     string
	state   State[T]
	updates chan State[T]
	closed  bool
	cancel  context.CancelFunc
}

// Watch subscribes to req. A skipped request produces an idle subscription
// that never reaches the network until SetRequest makes it ready.
// The subscription ends when ctx is done or Close is called.
func Watch[T any](ctx context.Context, c *Client, req Request, opts ...Option) *Query[T] {
	ctx, cancel := context.WithCancel(ctx)
	q := &Query[T]{
		c:       c,
		opts:    c.defaults.with(opts),
		ctx:     ctx,
		updates: make(chan State[T], 1),
		cancel:  cancel,
	}
	q.bind(req, false)

	if q.opts.RefreshInterval > 0 {
		go q.poll()
	}
	go func() {
		<-ctx.Done()
		q.Close()
	}()
	return q
}

// State returns the latest state.
func (q *Query[T]) State() State[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

// Updates delivers state changes. Only the latest undelivered state is kept.
func (q *Query[T]) Updates() <-chan State[T] {
	return q.updates
}

// Refetch forces a network call for the current key, ignoring the dedup window.
func (q *Query[T]) Refetch(ctx context.Context) (State[T], error) {
	q.mu.Lock()
	key, req, closed := q.key, q.req, q.closed
	q.mu.Unlock()

	if closed || key == "" {
		return q.State(), ErrSkipped
	}
	e := q.c.revalidate(ctx, key, req)
	return q.State(), e.Err
}

// SetRequest moves the subscription to a new request, e.g. when a parameter
// becomes available.
func (q *Query[T]) SetRequest(req Request) {
	q.bind(req, true)
}

// Close unsubscribes and stops polling.
func (q *Query[T]) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	key := q.key
	q.mu.Unlock()

	q.cancel()
	if key != "" {
		q.c.unsubscribe(key, q)
	}
}

func (q *Query[T]) bind(req Request, keyChange bool) {
	key, ok := req.Key(q.c.fetcher)

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	oldKey, prev := q.key, q.state
	q.req = req
	q.key = key
	q.mu.Unlock()

	if ok && key != oldKey {
		entry, settled := q.c.subscribe(key, q)
		if settled {
			q.deliver(key, entry)
		} else {
			st := State[T]{Key: key, Loading: true}
			if keyChange && q.opts.KeepPreviousData {
				st.Data, st.UpdatedAt, st.Loading = prev.Data, prev.UpdatedAt, false
			}
			q.publish(st)
		}
	}
	if oldKey != "" && oldKey != key {
		q.c.unsubscribe(oldKey, q)
	}

	if !ok {
		st := State[T]{}
		if keyChange && q.opts.KeepPreviousData {
			st.Data = prev.Data
		}
		q.publish(st)
		return
	}
	go q.c.load(q.ctx, key, req, q.opts.DedupingInterval)
}

func (q *Query[T]) poll() {
	ticker := time.NewTicker(q.opts.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			q.mu.Lock()
			key, req := q.key, q.req
			q.mu.Unlock()
			if key != "" {
				q.c.revalidate(q.ctx, key, req)
			}
		case <-q.ctx.Done():
			return
		}
	}
}

func (q *Query[T]) deliver(key string, e Entry) {
	st := State[T]{Key: key, Err: e.Err, UpdatedAt: e.UpdatedAt, version: e.version}
	if e.Data != nil {
		if err := json.Unmarshal(e.Data, &st.Data); err != nil && st.Err == nil {
			st.Err = fmt.Errorf("cannot decode response for %s: %w", key, err)
		}
	}
	q.publish(st)
}

// publish drops states for a stale key and states older than the current one,
// so concurrent deliveries cannot roll the subscriber back.
func (q *Query[T]) publish(st State[T]) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed || st.Key != q.key {
		return
	}
	if st.Key == q.state.Key && st.version < q.state.version {
		return
	}
	q.state = st
	select {
	case <-q.updates:
	default:
	}
	q.updates <- st
}

func (q *Query[T]) revalidates(ev Event) bool {
	return q.opts.revalidatesOn(ev)
}

func (q *Query[T]) request() Request {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.req
}

package query

import "time"

const (
	defaultDedupingInterval = 2 * time.Second
	defaultCacheSize        = 1024
)

// Options control how a subscription reads through the cache.
type Options struct {
	RefreshInterval       time.Duration // 0 disables polling
	DedupingInterval      time.Duration
	RevalidateOnFocus     bool
	RevalidateOnReconnect bool
	KeepPreviousData      bool
}

type Option func(*Options)

func WithRefreshInterval(d time.Duration) Option {
	return func(o *Options) { o.RefreshInterval = d }
}

func WithDedupingInterval(d time.Duration) Option {
	return func(o *Options) { o.DedupingInterval = d }
}

func WithRevalidateOnFocus(enabled bool) Option {
	return func(o *Options) { o.RevalidateOnFocus = enabled }
}

func WithRevalidateOnReconnect(enabled bool) Option {
	return func(o *Options) { o.RevalidateOnReconnect = enabled }
}

func WithKeepPreviousData(enabled bool) Option {
	return func(o *Options) { o.KeepPreviousData = enabled }
}

func defaultOptions() Options {
	return Options{
		DedupingInterval:      defaultDedupingInterval,
		RevalidateOnFocus:     true,
		RevalidateOnReconnect: true,
	}
}

func (o Options) with(opts []Option) Options {
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Event is an external trigger for revalidation.
type Event int

const (
	EventFocus Event = iota
	EventReconnect
)

func (o Options) revalidatesOn(ev Event) bool {
	switch ev {
	case EventFocus:
		return o.RevalidateOnFocus
	case EventReconnect:
		return o.RevalidateOnReconnect
	}
	return false
}

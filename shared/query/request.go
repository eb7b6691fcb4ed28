package query

import (
	"net/url"
	"reflect"
	"strings"

	"github.com/solexplorer/solexplorer/shared/fetch"
)

// Request is a read-path request descriptor.
type Request struct {
	Endpoint   string            // may contain {name} segments filled from PathParams
	PathParams map[string]string // values are path-escaped
	Query      fetch.Params
	Required   []string // path or query param names that must be present
	Skip       bool
	Token      string
	ViaBackend bool
}

// Key returns the cache key of the request: its fully resolved URL.
// It returns false when the request is skipped or incomplete, in which case
// it must never reach the network.
func (r Request) Key(f Fetcher) (string, bool) {
	if !r.ready() {
		return "", false
	}
	endpoint, ok := r.endpoint()
	if !ok {
		return "", false
	}
	key, err := f.ResolveURL(fetch.Request{Endpoint: endpoint, Query: r.Query, ViaBackend: r.ViaBackend})
	if err != nil {
		return "", false
	}
	return key, true
}

func (r Request) ready() bool {
	if r.Skip {
		return false
	}
	for _, name := range r.Required {
		if v, ok := r.PathParams[name]; ok {
			if v == "" {
				return false
			}
			continue
		}
		if !present(r.Query[name]) {
			return false
		}
	}
	return true
}

func (r Request) endpoint() (string, bool) {
	endpoint := r.Endpoint
	for name, value := range r.PathParams {
		if value == "" {
			return "", false
		}
		endpoint = strings.ReplaceAll(endpoint, "{"+name+"}", url.PathEscape(value))
	}
	if strings.ContainsAny(endpoint, "{}") {
		return "", false
	}
	return endpoint, true
}

func (r Request) toFetch() fetch.Request {
	endpoint, _ := r.endpoint()
	return fetch.Request{
		Endpoint:   endpoint,
		Query:      r.Query,
		Token:      r.Token,
		ViaBackend: r.ViaBackend,
	}
}

func present(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return false
		}
		return present(rv.Elem().Interface())
	case reflect.String:
		return rv.Len() > 0
	}
	return true
}

package fetch

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
)

// Params are query parameters. Values must be primitives (string, bool, numbers,
// fmt.Stringer) or pointers to them. Nil values and nil pointers are omitted.
type Params map[string]any

// Merge returns a new Params with other layered over p.
func (p Params) Merge(other Params) Params {
	out := make(Params, len(p)+len(other))
	for k, v := range p {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Encode serializes params into a query string with sorted keys.
func (p Params) Encode() (string, error) {
	values := url.Values{}
	for k, v := range p {
		s, ok, err := formatValue(v)
		if err != nil {
			return "", fmt.Errorf("query param %q: %w", k, err)
		}
		if !ok {
			continue
		}
		values.Set(k, s)
	}
	return values.Encode(), nil
}

// BuildURL joins base and endpoint and appends serialized params.
// An absolute endpoint ignores base.
func BuildURL(base, endpoint string, params Params) (string, error) {
	target := endpoint
	if !isAbsolute(endpoint) {
		if base == "" {
			return "", fmt.Errorf("no base url for relative endpoint %q", endpoint)
		}
		target = strings.TrimRight(base, "/") + "/" + strings.TrimLeft(endpoint, "/")
	}

	query, err := params.Encode()
	if err != nil {
		return "", err
	}
	if query == "" {
		return target, nil
	}

	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	return target + sep + query, nil
}

func isAbsolute(endpoint string) bool {
	return strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://")
}

// formatValue returns the string form of v and false when v should be omitted.
func formatValue(v any) (string, bool, error) {
	if v == nil {
		return "", false, nil
	}

	switch t := v.(type) {
	case string:
		return t, true, nil
	case bool:
		return strconv.FormatBool(t), true, nil
	case int:
		return strconv.Itoa(t), true, nil
	case int64:
		return strconv.FormatInt(t, 10), true, nil
	case uint64:
		return strconv.FormatUint(t, 10), true, nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true, nil
	case fmt.Stringer:
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Pointer && rv.IsNil() {
			return "", false, nil
		}
		return t.String(), true, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return "", false, nil
		}
		return formatValue(rv.Elem().Interface())
	case reflect.String:
		return rv.String(), true, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), true, nil
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 32), true, nil
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), true, nil
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), true, nil
	}
	return "", false, fmt.Errorf("unsupported type %T", v)
}

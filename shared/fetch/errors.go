package fetch

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Error is returned for non-2xx responses and network failures.
// StatusCode is 0 when no response was received.
type Error struct {
	StatusCode int
	Message    string
	URL        string
	cause      error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// StatusOf returns the upstream status carried by err, or 0.
func StatusOf(err error) int {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.StatusCode
	}
	return 0
}

func networkError(target string, err error) *Error {
	// *url.Error repeats the full request URL, query credentials included
	var ue *url.Error
	if errors.As(err, &ue) {
		err = ue.Err
		return &Error{
			Message: fmt.Sprintf("network error: %s %s: %v", ue.Op, target, err),
			URL:     target,
			cause:   err,
		}
	}
	return &Error{
		Message: fmt.Sprintf("network error: %v", err),
		URL:     target,
		cause:   err,
	}
}

// statusError extracts the service-provided message from body, falling back to
// a generic message when the body carries none.
func statusError(url string, status int, body []byte) *Error {
	msg := extractMessage(body)
	if msg == "" {
		msg = fmt.Sprintf("request failed with status %d", status)
	}
	return &Error{StatusCode: status, Message: msg, URL: url}
}

const maxPlainMessage = 200

// extractMessage understands the error shapes used by the services we talk to:
// {"error": "..."}, {"message": "..."}, {"error": {"message": "..."}} (JSON-RPC)
// and {"errors": [{"message": "..."}]}.
func extractMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}

	var shape struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
		Errors  []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &shape); err != nil {
		if strings.HasPrefix(trimmed, "<") || len(trimmed) > maxPlainMessage {
			return ""
		}
		return trimmed
	}

	if len(shape.Error) > 0 {
		var s string
		if json.Unmarshal(shape.Error, &s) == nil && s != "" {
			return s
		}
		var obj struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(shape.Error, &obj) == nil && obj.Message != "" {
			return obj.Message
		}
	}
	if shape.Message != "" {
		return shape.Message
	}
	if len(shape.Errors) > 0 && shape.Errors[0].Message != "" {
		return shape.Errors[0].Message
	}
	return ""
}

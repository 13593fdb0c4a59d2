package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNotImage is returned when an upload is not an image
var ErrNotImage = errors.New("file must be an image")

// TransportError is a network-level failure: the request never produced a response
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// APIError is a non-2xx response from the backend
type APIError struct {
	Op         string
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %d %s", e.Op, e.StatusCode, e.Detail)
}

// newAPIError extracts the backend's "detail" message when the body carries one
func newAPIError(op string, status int, body []byte) *APIError {
	detail := http.StatusText(status)

	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Detail) > 0 {
		var s string
		if json.Unmarshal(payload.Detail, &s) == nil {
			detail = s
		} else {
			// validation errors arrive as a list of objects
			detail = string(payload.Detail)
		}
	}
	if detail == "" {
		detail = fmt.Sprintf("status %d", status)
	}

	return &APIError{Op: op, StatusCode: status, Detail: detail}
}

// StatusCode returns the backend status carried by err, or 0
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsTransport reports whether err is a network failure
func IsTransport(err error) bool {
	var tErr *TransportError
	return errors.As(err, &tErr)
}

// Message renders err as the one-line text shown to users
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	var tErr *TransportError
	if errors.As(err, &tErr) {
		return "Network error: " + strings.TrimSpace(tErr.Err.Error())
	}
	return err.Error()
}

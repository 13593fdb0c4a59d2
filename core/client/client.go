package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// RequestIDHeader carries a per-request correlation id
const RequestIDHeader = "X-Request-ID"

// Client talks to the img2latex backend REST API
type Client struct {
	BaseURL string
	http    *resty.Client
}

// New creates a client for the backend at baseURL
func New(baseURL string, timeout time.Duration) *Client {
	base := strings.TrimRight(baseURL, "/")
	c := resty.New().
		SetBaseURL(base).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	c.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		if r.Header.Get(RequestIDHeader) == "" {
			r.SetHeader(RequestIDHeader, uuid.NewString())
		}
		return nil
	})
	return &Client{BaseURL: base, http: c}
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.http.R().SetContext(ctx)
}

// send executes r and decodes a 2xx JSON body into out (when non-nil)
func (c *Client) send(r *resty.Request, method, path, op string, out any) error {
	resp, err := r.Execute(method, path)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	if resp.IsError() {
		return newAPIError(op, resp.StatusCode(), resp.Body())
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

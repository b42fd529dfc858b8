// Package shopapi is the REST client for the remote shop backend. The
// backend is the sole authority on prices, stock and order state; this
// client only moves its answers around.
package shopapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
)

// envelope is the shop API response wrapper: {success, message, data}.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// APIError is a business-rule rejection from the shop API (insufficient
// stock, empty cart, signature mismatch). Transport failures are returned
// as plain wrapped errors instead.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("shop api: %s (status %d)", e.Message, e.StatusCode)
}

type Client struct {
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker[*resty.Response]
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	breaker := gobreaker.NewCircuitBreaker[*resty.Response](gobreaker.Settings{
		Name:        "shop-api",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Client{
		http:    httpClient,
		breaker: breaker,
	}
}

// do runs one request through the breaker and decodes the envelope into out.
// Only transport errors count against the breaker; HTTP-level rejections are
// the backend answering, not the backend being down.
func (c *Client) do(ctx context.Context, token, method, path string, body, out interface{}) error {
	resp, err := c.breaker.Execute(func() (*resty.Response, error) {
		req := c.http.R().SetContext(ctx)
		if token != "" {
			req.SetAuthToken(token)
		}
		if body != nil {
			req.SetBody(body)
		}
		return req.Execute(method, path)
	})
	if err != nil {
		return fmt.Errorf("shop api request failed: %w", err)
	}

	var env envelope
	if errDecode := json.Unmarshal(resp.Body(), &env); errDecode != nil {
		return fmt.Errorf("failed to decode shop api response: %w", errDecode)
	}

	if resp.IsError() || !env.Success {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode())
		}
		return &APIError{StatusCode: resp.StatusCode(), Message: msg}
	}

	if out != nil {
		if errData := json.Unmarshal(env.Data, out); errData != nil {
			return fmt.Errorf("failed to decode shop api payload: %w", errData)
		}
	}
	return nil
}

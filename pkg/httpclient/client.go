package httpclient

import (
	"fmt"
	"net/http"
	"time"

	"youassist/pkg/circuitbreaker"
)

// Options configures the Client.
type Options struct {
	// Timeout applies to every request issued through the client.
	Timeout time.Duration
	// Breaker is optional; when nil, requests are passed straight through.
	Breaker circuitbreaker.CircuitBreaker
}

// Client is a custom HTTP client that wraps the standard http.Client
// and provides built-in support for circuit breaking.
type Client struct {
	httpClient *http.Client
	breaker    circuitbreaker.CircuitBreaker
}

// New creates a new Client.
func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		breaker:    opts.Breaker,
	}
}

// Do executes an HTTP request with circuit breaker protection.
// Status codes >= 500 count as failures.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.breaker == nil {
		return c.httpClient.Do(req)
	}

	var resp *http.Response

	_, breakerErr := c.breaker.Execute(func() (interface{}, error) {
		var err error
		resp, err = c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, fmt.Errorf("server error: received status code %d", resp.StatusCode)
		}
		return resp, nil
	})
	if breakerErr != nil {
		return nil, breakerErr
	}
	return resp, nil
}

package client

// Functional options that configure the Client during construction.

import (
	"fmt"
	"net/http"
	"time"
)

// Option configures a Client during construction in New.
type Option func(*Client) error

// WithHTTPTimeout bounds a single HTTP attempt. Summaries wait on a model
// call, so keep this above the server's generation timeout.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("http timeout must be > 0")
		}
		c.http.SetTimeout(d)
		return nil
	}
}

// WithMaxRetries sets how many times idempotent calls are retried after a
// recoverable failure. Zero disables retries.
func WithMaxRetries(n int) Option {
	return func(c *Client) error {
		if n < 0 {
			return fmt.Errorf("max retries must be >= 0")
		}
		c.t.MaxRetries = uint64(n)
		return nil
	}
}

// WithRetryBackoff sets the initial backoff interval between retries.
func WithRetryBackoff(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("retry backoff must be > 0")
		}
		c.t.Backoff = d
		return nil
	}
}

// WithDebugLogging wraps the transport so each request and response is
// logged when enabled is true. Bodies may contain transcript text.
func WithDebugLogging(enabled bool) Option {
	return func(c *Client) error {
		if !enabled {
			return nil
		}
		base := c.http.GetClient().Transport
		if _, already := base.(*debugTransport); already {
			return nil
		}
		if base == nil {
			base = http.DefaultTransport
		}
		c.http.SetTransport(&debugTransport{base: base})
		return nil
	}
}

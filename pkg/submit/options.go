package submit

import (
	"net/http"

	"go.uber.org/zap"
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the diagnostic logger. Transport and decode failures are
// reported there, never to the user-facing result message.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHeader adds a header to every submission request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		if key != "" {
			c.extra.Set(key, value)
		}
	}
}

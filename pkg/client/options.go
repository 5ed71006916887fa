package client

import (
	"net/http"
	"time"
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRetryMax sets the maximum number of retries.
func WithRetryMax(retryMax int) Option {
	return func(c *Client) {
		if retryMax >= 0 {
			c.retryMax = retryMax
		}
	}
}

// WithRetryWait sets the backoff bounds.  max is applied only when min is
// positive and max >= min.
func WithRetryWait(min, max time.Duration) Option {
	return func(c *Client) {
		if min > 0 {
			c.retryWaitMin = min
			if max >= min {
				c.retryWaitMax = max
			}
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

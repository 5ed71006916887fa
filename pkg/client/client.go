// Package client is a Go client for the SeqPrep HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/SeqPrep/pkg/errors"
	"github.com/turtacn/SeqPrep/pkg/types/common"
)

const Version = "0.1.0"

// Logger defines the logging interface used by the Client.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Debugf(format string, args ...interface{}) {}
func (noopLogger) Infof(format string, args ...interface{})  {}
func (noopLogger) Errorf(format string, args ...interface{}) {}

// Client talks to one SeqPrep server.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	userAgent    string
	logger       Logger
	retryMax     int
	retryWaitMin time.Duration
	retryWaitMax time.Duration
}

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int    `json:"status_code"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	RequestID  string `json:"request_id"`
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("seqprep: %s (HTTP %d): %s", e.Code, e.StatusCode, e.Message)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg + " [request_id=" + e.RequestID + "]"
}

func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// New creates a client for the server at baseURL, e.g. http://localhost:8080.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.InvalidConfig("base URL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidConfig, "invalid base URL").WithDetail("url=" + baseURL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, errors.InvalidConfig("base URL scheme must be http or https").WithDetail("url=" + baseURL)
	}

	c := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		userAgent:    "seqprep-go-client/" + Version,
		logger:       noopLogger{},
		retryMax:     3,
		retryWaitMin: 500 * time.Millisecond,
		retryWaitMax: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// do sends one request, retrying network failures and 5xx responses.  When
// result is non-nil the response body is decoded into it.
func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	fullURL := c.baseURL + path

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return errors.Wrap(err, errors.CodeSerialization, "failed to marshal request body")
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.retryMax; attempt++ {
		if attempt > 0 {
			backoff := c.backoff(attempt)
			c.logger.Debugf("retry attempt %d after %v", attempt, backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		var bodyReader io.Reader
		if payload != nil {
			bodyReader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
		if err != nil {
			return errors.Wrap(err, errors.CodeInvalidParam, "failed to create request")
		}
		requestID := uuid.NewString()
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("X-Request-ID", requestID)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Errorf("request failed: %v", err)
			lastErr = err
			continue
		}
		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return errors.Wrap(err, errors.CodeInternal, "failed to read response body")
		}
		c.logger.Debugf("%s %s %d (%v)", method, path, resp.StatusCode, time.Since(start))

		if resp.StatusCode >= 400 {
			apiErr := decodeAPIError(resp.StatusCode, requestID, respBody)
			if !apiErr.IsServerError() {
				return apiErr
			}
			lastErr = apiErr
			continue
		}

		if result != nil && len(respBody) > 0 {
			if err := json.Unmarshal(respBody, result); err != nil {
				return errors.Wrap(err, errors.CodeSerialization, "failed to unmarshal response")
			}
		}
		return nil
	}
	return lastErr
}

// decodeAPIError reads the error envelope.  The server's request id wins
// over the one sent.
func decodeAPIError(status int, requestID string, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, RequestID: requestID}
	var env common.APIResponse[json.RawMessage]
	if err := json.Unmarshal(body, &env); err == nil && env.Error != nil {
		apiErr.Code = env.Error.Code
		apiErr.Message = env.Error.Message
		apiErr.Detail = env.Error.Detail
		if env.RequestID != "" {
			apiErr.RequestID = env.RequestID
		}
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(string(body))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

func (c *Client) post(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

// backoff is exponential with up to 25% jitter.
func (c *Client) backoff(attempt int) time.Duration {
	d := c.retryWaitMin * time.Duration(1<<uint(attempt-1))
	if d > c.retryWaitMax {
		d = c.retryWaitMax
	}
	if q := int64(d / 4); q > 0 {
		d += time.Duration(rand.Int64N(q))
	}
	return d
}

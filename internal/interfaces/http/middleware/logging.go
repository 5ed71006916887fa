// Package middleware provides the gin middleware chain of the SeqPrep HTTP
// API: request ids, request logging, metrics and CORS.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/turtacn/SeqPrep/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/SeqPrep/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/SeqPrep/pkg/types/common"
)

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-ID"

// LoggingConfig holds configuration for the request logging middleware.
type LoggingConfig struct {
	// SkipPaths are paths that are never logged (probes, scrapes).
	SkipPaths []string

	// SlowThreshold is the duration above which a request is logged at Warn.
	SlowThreshold time.Duration
}

// DefaultLoggingConfig returns the logging configuration used by the server.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		SkipPaths:     []string{"/healthz", "/readyz", "/metrics"},
		SlowThreshold: 3 * time.Second,
	}
}

// RequestID propagates the caller's X-Request-ID or assigns a new one.  The
// id is stored under common.ContextKeyRequestID in the gin context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(string(common.ContextKeyRequestID), id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// GetRequestID returns the id assigned by RequestID, or "".
func GetRequestID(c *gin.Context) string {
	return c.GetString(string(common.ContextKeyRequestID))
}

// RequestLogging logs one line per completed request.  5xx responses are
// logged at Error, 4xx and slow requests at Warn.
func RequestLogging(logger logging.Logger, config LoggingConfig) gin.HandlerFunc {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	skip := make(map[string]bool, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skip[p] = true
	}

	return func(c *gin.Context) {
		if skip[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()
		fields := []logging.Field{
			logging.String("method", c.Request.Method),
			logging.String("path", path),
			logging.Int("status", status),
			logging.Duration("duration", duration),
			logging.Int("bytes", c.Writer.Size()),
			logging.String("client_ip", c.ClientIP()),
			logging.String("request_id", GetRequestID(c)),
		}
		if ua := c.Request.UserAgent(); ua != "" {
			fields = append(fields, logging.String("user_agent", ua))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, logging.String("errors", c.Errors.String()))
		}

		switch {
		case status >= 500:
			logger.Error("HTTP request completed with server error", fields...)
		case status >= 400:
			logger.Warn("HTTP request completed with client error", fields...)
		case config.SlowThreshold > 0 && duration >= config.SlowThreshold:
			logger.Warn("HTTP request completed (slow)", fields...)
		default:
			logger.Info("HTTP request completed", fields...)
		}
	}
}

// Metrics records request counts and latencies.  The path label is the
// matched route template so that path parameters do not explode cardinality.
func Metrics(m *prometheus.PipelineMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		prometheus.RecordHTTPRequest(m, c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}

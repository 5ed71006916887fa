package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORSConfig holds configuration for CORS middleware.
type CORSConfig struct {
	// AllowedOrigins lists origins allowed to make cross-origin requests.
	// "*" allows every origin; "*.example.com" matches subdomains when
	// AllowWildcard is set.
	AllowedOrigins []string

	AllowedMethods []string
	AllowedHeaders []string
	ExposedHeaders []string

	// AllowCredentials indicates whether cookies and auth headers are allowed.
	AllowCredentials bool

	// MaxAge is how long, in seconds, preflight results can be cached.
	MaxAge int

	AllowWildcard bool
}

// DefaultCORSConfig returns a configuration that allows no origins.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins: []string{},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			HeaderRequestID,
		},
		ExposedHeaders: []string{HeaderRequestID},
		MaxAge:         86400,
	}
}

// CORS returns middleware that handles Cross-Origin Resource Sharing.
func CORS(config CORSConfig) gin.HandlerFunc {
	allowedMethods := strings.Join(config.AllowedMethods, ", ")
	allowedHeaders := strings.Join(config.AllowedHeaders, ", ")
	exposedHeaders := strings.Join(config.ExposedHeaders, ", ")
	maxAge := strconv.Itoa(config.MaxAge)

	originSet := make(map[string]bool, len(config.AllowedOrigins))
	var suffixes []string
	allowAll := false
	for _, origin := range config.AllowedOrigins {
		switch {
		case origin == "*":
			allowAll = true
		case config.AllowWildcard && strings.HasPrefix(origin, "*."):
			suffixes = append(suffixes, strings.ToLower(origin[1:]))
		default:
			originSet[strings.ToLower(origin)] = true
		}
	}

	allowed := func(origin string) bool {
		if allowAll {
			return true
		}
		o := strings.ToLower(origin)
		if originSet[o] {
			return true
		}
		for _, s := range suffixes {
			if strings.HasSuffix(o, s) {
				return true
			}
		}
		return false
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" || !allowed(origin) {
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Add("Vary", "Origin")
		h.Add("Vary", "Access-Control-Request-Method")
		h.Add("Vary", "Access-Control-Request-Headers")

		if allowAll && !config.AllowCredentials {
			h.Set("Access-Control-Allow-Origin", "*")
		} else {
			h.Set("Access-Control-Allow-Origin", origin)
		}
		if config.AllowCredentials {
			h.Set("Access-Control-Allow-Credentials", "true")
		}

		if c.Request.Method == http.MethodOptions {
			h.Set("Access-Control-Allow-Methods", allowedMethods)
			h.Set("Access-Control-Allow-Headers", allowedHeaders)
			if config.MaxAge > 0 {
				h.Set("Access-Control-Max-Age", maxAge)
			}
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		if exposedHeaders != "" {
			h.Set("Access-Control-Expose-Headers", exposedHeaders)
		}
		c.Next()
	}
}

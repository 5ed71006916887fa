package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/turtacn/SeqPrep/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/SeqPrep/internal/infrastructure/monitoring/prometheus"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r http.Handler, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := serve(r, http.MethodGet, "/x", nil)
	generated := w.Header().Get(HeaderRequestID)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	w = serve(r, http.MethodGet, "/x", map[string]string{HeaderRequestID: "req-42"})
	assert.Equal(t, "req-42", w.Header().Get(HeaderRequestID))
	assert.Equal(t, "req-42", w.Body.String())
}

func TestRequestLogging_Levels(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := logging.NewLoggerFromCore(core)

	r := gin.New()
	r.Use(RequestID(), RequestLogging(logger, DefaultLoggingConfig()))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/fail", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, http.MethodGet, "/ok?page=2", nil)
	serve(r, http.MethodGet, "/bad", nil)
	serve(r, http.MethodGet, "/fail", nil)
	serve(r, http.MethodGet, "/healthz", nil)

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.Equal(t, "/ok?page=2", entries[0].ContextMap()["path"])
	assert.NotEmpty(t, entries[0].ContextMap()["request_id"])
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
	assert.Equal(t, zap.ErrorLevel, entries[2].Level)
}

func TestRequestLogging_Slow(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)

	r := gin.New()
	r.Use(RequestLogging(logging.NewLoggerFromCore(core), LoggingConfig{SlowThreshold: time.Nanosecond}))
	r.GET("/slow", func(c *gin.Context) {
		time.Sleep(time.Millisecond)
		c.Status(http.StatusOK)
	})

	serve(r, http.MethodGet, "/slow", nil)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zap.WarnLevel, logs.All()[0].Level)
	assert.Contains(t, logs.All()[0].Message, "slow")
}

func TestMetrics_UsesRouteTemplate(t *testing.T) {
	c, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "mw"}, logging.NewNopLogger())
	require.NoError(t, err)
	m := prometheus.NewPipelineMetrics(c)

	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/tokens/:token", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, http.MethodGet, "/tokens/ACG", nil)
	serve(r, http.MethodGet, "/tokens/TTT", nil)
	serve(r, http.MethodGet, "/nope", nil)

	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := w.Body.String()
	assert.Contains(t, body, `mw_http_requests_total{method="GET",path="/tokens/:token",status_code="200"} 2`)
	assert.Contains(t, body, `path="unmatched",status_code="404"`)
	assert.False(t, strings.Contains(body, "/tokens/ACG"))
}

func TestMetrics_NilCollector(t *testing.T) {
	r := gin.New()
	r.Use(Metrics(nil))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/x", nil).Code)
}

func corsEngine(cfg CORSConfig) *gin.Engine {
	r := gin.New()
	r.Use(CORS(cfg))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestCORS_AllowedOrigin(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"https://app.example.org"}
	r := corsEngine(cfg)

	w := serve(r, http.MethodGet, "/x", map[string]string{"Origin": "https://APP.example.org"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://APP.example.org", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, HeaderRequestID, w.Header().Get("Access-Control-Expose-Headers"))
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	r := corsEngine(DefaultCORSConfig())

	w := serve(r, http.MethodGet, "/x", map[string]string{"Origin": "https://evil.example"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_Preflight(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"*.example.org"}
	cfg.AllowWildcard = true
	r := corsEngine(cfg)

	w := serve(r, http.MethodOptions, "/x", map[string]string{"Origin": "https://lab.example.org"})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "GET, POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))
}

func TestCORS_WildcardAll(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"*"}
	r := corsEngine(cfg)

	w := serve(r, http.MethodGet, "/x", map[string]string{"Origin": "https://any.host"})
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

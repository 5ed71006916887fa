// Package http exposes the encoding service over a gin router.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/SeqPrep/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/SeqPrep/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/SeqPrep/internal/interfaces/http/handlers"
	"github.com/turtacn/SeqPrep/internal/interfaces/http/middleware"
	"github.com/turtacn/SeqPrep/pkg/errors"
	"github.com/turtacn/SeqPrep/pkg/types/common"
)

// RouterConfig holds the handlers and middleware dependencies.  Nil handlers
// leave their routes unregistered.
type RouterConfig struct {
	Mode string

	HealthHandler     *handlers.HealthHandler
	EncodeHandler     *handlers.EncodeHandler
	VocabularyHandler *handlers.VocabularyHandler

	// MetricsHandler serves GET /metrics when set.
	MetricsHandler http.Handler
	Metrics        *prometheus.PipelineMetrics

	Logger        logging.Logger
	LoggingConfig *middleware.LoggingConfig
	CORSConfig    *middleware.CORSConfig
}

// NewRouter builds the gin engine.  The middleware order is Recovery,
// RequestID, CORS, Metrics, Logging.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logCfg := middleware.DefaultLoggingConfig()
	if cfg.LoggingConfig != nil {
		logCfg = *cfg.LoggingConfig
	}
	corsCfg := middleware.DefaultCORSConfig()
	if cfg.CORSConfig != nil {
		corsCfg = *cfg.CORSConfig
	}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.CORS(corsCfg),
		middleware.Metrics(cfg.Metrics),
		middleware.RequestLogging(logger, logCfg),
	)
	r.NoRoute(func(c *gin.Context) {
		resp := common.NewErrorResponse(errors.CodeNotFound.String(), "route not found", c.Request.URL.Path)
		resp.RequestID = middleware.GetRequestID(c)
		c.JSON(http.StatusNotFound, resp)
	})

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterRoutes(r)
	}
	if cfg.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	v1 := r.Group("/api/v1")
	if cfg.EncodeHandler != nil {
		cfg.EncodeHandler.RegisterRoutes(v1)
	}
	if cfg.VocabularyHandler != nil {
		cfg.VocabularyHandler.RegisterRoutes(v1)
	}

	return r
}

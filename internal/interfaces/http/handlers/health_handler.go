package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/SeqPrep/pkg/types/common"
)

// HealthChecker is a backing service that can report its health.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

// CheckerFunc adapts a ping function to HealthChecker.
type CheckerFunc struct {
	ComponentName string
	Fn            func(ctx context.Context) error
}

func (f CheckerFunc) Name() string                    { return f.ComponentName }
func (f CheckerFunc) Check(ctx context.Context) error { return f.Fn(ctx) }

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	checkers []HealthChecker
	version  string
	startAt  time.Time
	timeout  time.Duration
}

// NewHealthHandler creates a HealthHandler.  Nil checkers are ignored.
func NewHealthHandler(version string, checkers ...HealthChecker) *HealthHandler {
	h := &HealthHandler{version: version, startAt: time.Now(), timeout: 5 * time.Second}
	for _, c := range checkers {
		if c != nil {
			h.checkers = append(h.checkers, c)
		}
	}
	return h
}

// RegisterRoutes registers the probe routes on r.
func (h *HealthHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/healthz", h.Liveness)
	r.GET("/readyz", h.Readiness)
}

// LivenessResponse is the body of GET /healthz.
type LivenessResponse struct {
	Status  common.HealthStatus `json:"status"`
	Version string              `json:"version"`
	Uptime  string              `json:"uptime"`
}

// ReadinessResponse is the body of GET /readyz.
type ReadinessResponse struct {
	Status     common.HealthStatus      `json:"status"`
	Components []common.ComponentHealth `json:"components,omitempty"`
}

// Liveness always reports up while the process serves requests.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, LivenessResponse{
		Status:  common.HealthUp,
		Version: h.version,
		Uptime:  time.Since(h.startAt).Truncate(time.Second).String(),
	})
}

// Readiness checks every backing service; any failure yields 503.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	components := h.checkAll(ctx)
	resp := ReadinessResponse{Status: common.HealthUp, Components: components}
	for _, comp := range components {
		if comp.Status != common.HealthUp {
			resp.Status = common.HealthDown
			c.JSON(http.StatusServiceUnavailable, resp)
			return
		}
	}
	c.JSON(http.StatusOK, resp)
}

// checkAll runs all checkers concurrently.  Results keep checker order.
func (h *HealthHandler) checkAll(ctx context.Context) []common.ComponentHealth {
	results := make([]common.ComponentHealth, len(h.checkers))
	var wg sync.WaitGroup
	for i, checker := range h.checkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := common.ComponentHealth{Name: checker.Name(), Status: common.HealthUp}
			if err := checker.Check(ctx); err != nil {
				res.Status = common.HealthDown
				res.Message = err.Error()
			}
			results[i] = res
		}()
	}
	wg.Wait()
	return results
}

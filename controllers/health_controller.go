package controllers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cloudapp/webapp/repository"
	"github.com/cloudapp/webapp/utils"
)

// HealthController serves /healthz by writing a probe row to the database.
type HealthController struct {
	checks  *repository.HealthCheckRepository
	metrics *utils.Metrics
	logger  *zap.Logger
}

// NewHealthController creates a new HealthController instance.
func NewHealthController(checks *repository.HealthCheckRepository, metrics *utils.Metrics, logger *zap.Logger) *HealthController {
	return &HealthController{checks: checks, metrics: metrics, logger: logger}
}

// Check accepts only a bare GET: any query string or body is rejected before touching the database.
func (h *HealthController) Check(ctx *gin.Context) error {
	if ctx.Request.URL.RawQuery != "" || hasBody(ctx.Request) {
		return &HTTPError{Status: http.StatusBadRequest}
	}

	reqCtx := ctx.Request.Context()
	start := time.Now()
	record, err := h.checks.Create(reqCtx)
	h.metrics.ObserveDB(reqCtx, "health_check.insert", start)
	if err != nil {
		return &HTTPError{Status: http.StatusServiceUnavailable, Err: err}
	}

	h.logger.Info("health check recorded",
		zap.String("outcome", "success"),
		zap.Uint("health_check_id", record.ID),
	)
	utils.Empty(ctx, http.StatusOK)
	return nil
}

func hasBody(r *http.Request) bool {
	if r.ContentLength > 0 {
		return true
	}
	if r.Body == nil {
		return false
	}
	var b [1]byte
	n, _ := io.ReadFull(r.Body, b[:])
	return n > 0
}

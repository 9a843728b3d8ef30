package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cloudapp/webapp/repository"
	"github.com/cloudapp/webapp/utils"
)

// HandlerFunc is a gin handler that reports failures instead of writing them.
type HandlerFunc func(ctx *gin.Context) error

// HTTPError is a failure with a caller-visible status. An empty Message means an empty body.
// Err carries the cause for the log and never reaches the client.
type HTTPError struct {
	Status  int
	Message string
	Err     error
}

func (e *HTTPError) Error() string {
	msg := http.StatusText(e.Status)
	if e.Message != "" {
		msg = e.Message
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// Wrap adapts h to gin and maps its error to a response, logging one outcome line.
func Wrap(logger *zap.Logger, h HandlerFunc) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		err := h(ctx)
		if err == nil {
			return
		}

		fields := []zap.Field{
			zap.String("endpoint", ctx.FullPath()),
			zap.String("method", ctx.Request.Method),
			zap.Error(err),
		}
		if id := ctx.Param("file_id"); id != "" {
			fields = append(fields, zap.String("file_id", id))
		}

		var httpErr *HTTPError
		switch {
		case errors.As(err, &httpErr):
			writeHTTPError(ctx, httpErr)
			logOutcome(logger, httpErr.Status, fields)
		case errors.Is(err, repository.ErrNotFound):
			utils.Error(ctx, http.StatusNotFound, "file not found")
			logOutcome(logger, http.StatusNotFound, fields)
		default:
			utils.Error(ctx, http.StatusInternalServerError, "internal server error")
			logOutcome(logger, http.StatusInternalServerError, fields)
		}
	}
}

func writeHTTPError(ctx *gin.Context, e *HTTPError) {
	if e.Message == "" {
		utils.Empty(ctx, e.Status)
		return
	}
	utils.Error(ctx, e.Status, e.Message)
}

func logOutcome(logger *zap.Logger, status int, fields []zap.Field) {
	fields = append(fields, zap.Int("status", status))
	switch {
	case status == http.StatusNotFound:
		logger.Info("not found", append(fields, zap.String("outcome", "not_found"))...)
	case status < http.StatusInternalServerError:
		logger.Warn("validation failure", append(fields, zap.String("outcome", "validation_failure"))...)
	default:
		logger.Error("internal error", append(fields, zap.String("outcome", "internal_error"))...)
	}
}

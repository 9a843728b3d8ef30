package utils

import "github.com/gin-gonic/gin"

// ErrorResponse is the JSON body of every non-empty error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Error writes a JSON error body with the given status.
func Error(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, ErrorResponse{Error: message})
}

// Empty writes a status with no body.
func Empty(ctx *gin.Context, status int) {
	ctx.Status(status)
	ctx.Writer.WriteHeaderNow()
}

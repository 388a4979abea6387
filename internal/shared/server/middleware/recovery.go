package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"resumefit/internal/shared/server/respond"
	"resumefit/internal/shared/telemetry"
)

// Recovery turns a handler panic into a logged request.panic event and, when
// nothing has been written yet, a 500 internal_error envelope carrying the
// request id so callers can quote it.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			reqID := RequestIDFromContext(c)
			telemetry.Error("request.panic", map[string]any{
				"request_id": reqID,
				"method":     c.Request.Method,
				"path":       c.Request.URL.Path,
				"route":      c.FullPath(),
				"panic":      fmt.Sprint(rec),
				"stack":      string(debug.Stack()),
			})
			if c.Writer.Written() {
				c.Abort()
				return
			}
			respond.Error(c, http.StatusInternalServerError, "internal_error",
				"An unexpected error occurred.", map[string]any{"requestId": reqID})
		}()
		c.Next()
	}
}

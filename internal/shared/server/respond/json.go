package respond

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSON writes a JSON response with the given status.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// OK writes a 200 OK JSON response.
func OK(c *gin.Context, payload interface{}) {
	JSON(c, http.StatusOK, payload)
}

// BindJSON decodes a request body of at most limit bytes into dst. On
// failure it writes the error response and returns false.
func BindJSON(c *gin.Context, limit int64, dst any) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	if err := c.ShouldBindJSON(dst); err != nil {
		if TooLarge(c, err) {
			return false
		}
		Error(c, http.StatusBadRequest, "validation_error", "Request body must be valid JSON.", nil)
		return false
	}
	return true
}

// TooLarge writes a 413 response when err came from an exhausted
// http.MaxBytesReader and reports whether it did.
func TooLarge(c *gin.Context, err error) bool {
	var tooLarge *http.MaxBytesError
	if !errors.As(err, &tooLarge) {
		return false
	}
	Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "Request body is too large.", gin.H{
		"limitBytes": tooLarge.Limit,
	})
	return true
}

package respond

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resumefit/internal/flows"
	"resumefit/internal/validation"
)

// MessageUnexpected is the only message exposed for unclassified failures.
const MessageUnexpected = "An unexpected error occurred."

// ActionError maps an analyze or generate failure onto the error envelope.
func ActionError(c *gin.Context, err error) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		Error(c, http.StatusBadRequest, "validation_error", "Invalid input.", gin.H{"fields": verr.Fields})
		return
	}

	var genErr *flows.GenerationError
	if errors.As(err, &genErr) {
		if genErr.Kind == flows.KindUnsupportedFormat {
			Error(c, http.StatusUnsupportedMediaType, "unsupported_format", genErr.Message(), gin.H{"flow": genErr.Flow})
			return
		}
		Error(c, http.StatusBadGateway, "generation_failed", genErr.Message(), gin.H{"flow": genErr.Flow})
		return
	}

	_ = c.Error(err)
	Error(c, http.StatusInternalServerError, "internal_error", MessageUnexpected, nil)
}

package generations

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"resumefit/internal/records"
	"resumefit/internal/shared/server/respond"
	"resumefit/internal/validation"
)

// maxGenerateBody caps a generation request; every field is free text.
const maxGenerateBody = 1 << 20

// Handler wires HTTP handlers to the generations service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches generation routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, generate ...gin.HandlerFunc) {
	rg.POST("/generations", append(generate, h.generate)...)
	rg.GET("/generations", h.listGenerations)
	rg.GET("/generations/:id", h.getGeneration)
}

func (h *Handler) generate(c *gin.Context) {
	var form validation.GenerateForm
	if !respond.BindJSON(c, maxGenerateBody, &form) {
		return
	}

	result, err := h.Svc.Generate(c.Request.Context(), form)
	if err != nil {
		respond.ActionError(c, err)
		return
	}
	if result.GenerationID != nil {
		c.Set("generationId", *result.GenerationID)
	}
	respond.OK(c, result)
}

func (h *Handler) getGeneration(c *gin.Context) {
	gen, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "generation not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch generation", nil)
		return
	}
	respond.OK(c, gen)
}

func (h *Handler) listGenerations(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	limit, offset = records.ClampPage(limit, offset)

	items, err := h.Svc.List(c.Request.Context(), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list generations", nil)
		return
	}
	respond.OK(c, gin.H{"items": items, "limit": limit, "offset": offset})
}

package analyses

import (
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"resumefit/internal/datauri"
	"resumefit/internal/extract"
	"resumefit/internal/records"
	"resumefit/internal/shared/server/respond"
	"resumefit/internal/shared/telemetry"
	"resumefit/internal/shared/util"
	"resumefit/internal/validation"
)

// multipartOverhead leaves room for the fields around the resume payload.
const multipartOverhead = 1 << 20

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, analyze ...gin.HandlerFunc) {
	rg.POST("/analyses", append(analyze, h.analyze)...)
	rg.GET("/analyses", h.listAnalyses)
	rg.GET("/analyses/:id", h.getAnalysis)
	rg.GET("/analyses/:id/resume", h.downloadResume)
}

func (h *Handler) analyze(c *gin.Context) {
	form, ok := h.bindForm(c)
	if !ok {
		return
	}

	result, err := h.Svc.Analyze(c.Request.Context(), form)
	if err != nil {
		respond.ActionError(c, err)
		return
	}
	if result.AnalysisID != nil {
		c.Set("analysisId", *result.AnalysisID)
	}
	respond.OK(c, result)
}

func (h *Handler) bindForm(c *gin.Context) (validation.AnalyzeForm, bool) {
	var form validation.AnalyzeForm
	maxBytes := h.Svc.Validator.Policy().MaxResumeBytes
	if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		limit := int64(base64.StdEncoding.EncodedLen(int(maxBytes))) + multipartOverhead
		ok := respond.BindJSON(c, limit, &form)
		return form, ok
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+multipartOverhead)

	form.JobDescription = c.PostForm("jobDescription")
	form.ResumeText = c.PostForm("resumeText")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		if respond.TooLarge(c, err) {
			return form, false
		}
		if errors.Is(err, http.ErrMissingFile) {
			return form, true
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "Unable to read the uploaded form.", nil)
		return form, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Unable to read the uploaded file.", nil)
		return form, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Unable to read the uploaded file.", nil)
		return form, false
	}

	mimeType := extract.NormalizeMIMEType(fileHeader.Header.Get("Content-Type"), fileHeader.Filename, data)
	form.ResumeDataURI = datauri.Encode(mimeType, data)
	form.FileName = fileHeader.Filename
	return form, true
}

func (h *Handler) getAnalysis(c *gin.Context) {
	analysis, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch analysis", nil)
		return
	}
	respond.OK(c, analysis)
}

func (h *Handler) downloadResume(c *gin.Context) {
	r, analysis, err := h.Svc.OpenResume(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
		case errors.Is(err, ErrNoArchivedResume):
			respond.Error(c, http.StatusNotFound, "not_found", "no archived resume for this analysis", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to open archived resume", nil)
		}
		return
	}
	defer r.Close()

	contentType := analysis.ResumeMIMEType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	name, err := util.SanitizeFileName(analysis.ResumeFileName)
	if err != nil {
		name = path.Base(analysis.ResumeStorageKey)
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, r); err != nil {
		telemetry.Warn("analysis.resume_download_failed", map[string]any{
			"analysis_id": analysis.ID,
			"error":       err,
		})
	}
}

func (h *Handler) listAnalyses(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	limit, offset = records.ClampPage(limit, offset)
	items, err := h.Svc.List(c.Request.Context(), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list analyses", nil)
		return
	}
	respond.OK(c, gin.H{"items": items, "limit": limit, "offset": offset})
}

package generations

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"resumefit/internal/flows"
	"resumefit/internal/llm"
	"resumefit/internal/records"
)

func newRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func postGenerate(t *testing.T, r http.Handler, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/generations", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandlerGenerate(t *testing.T) {
	router := newRouter(newService(&fakeGenerator{}, records.NewMemoryStore()))

	rec := postGenerate(t, router, validForm())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body Result
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.GenerationID == nil || !strings.HasPrefix(body.ResumeText, "# Ada Lovelace") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}

	get := httptest.NewRecorder()
	router.ServeHTTP(get, httptest.NewRequest(http.MethodGet, "/api/v1/generations/"+*body.GenerationID, nil))
	if get.Code != http.StatusOK {
		t.Fatalf("expected 200 on read back, got %d", get.Code)
	}

	list := httptest.NewRecorder()
	router.ServeHTTP(list, httptest.NewRequest(http.MethodGet, "/api/v1/generations", nil))
	if list.Code != http.StatusOK || !strings.Contains(list.Body.String(), *body.GenerationID) {
		t.Fatalf("expected listing to include id, got %s", list.Body.String())
	}
}

func TestHandlerGenerateValidationError(t *testing.T) {
	router := newRouter(newService(&fakeGenerator{}, records.NewMemoryStore()))

	form := validForm()
	form.FullName = "  "
	rec := postGenerate(t, router, form)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Full name is required.") {
		t.Fatalf("expected field message, got %s", rec.Body.String())
	}
}

func TestHandlerGenerateFailure(t *testing.T) {
	genErr := &flows.GenerationError{Kind: flows.KindGenerationFailed, Flow: flows.FlowGenerateResume, Err: llm.ErrInvalidOutput}
	router := newRouter(newService(&fakeGenerator{err: genErr}, records.NewMemoryStore()))

	rec := postGenerate(t, router, validForm())
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "generation_failed") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestHandlerGenerateNullIDWhenStoreFails(t *testing.T) {
	router := newRouter(newService(&fakeGenerator{}, failingStore{records.NewMemoryStore()}))

	rec := postGenerate(t, router, validForm())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"generationId":null`) {
		t.Fatalf("expected null generationId, got %s", rec.Body.String())
	}
}

func TestHandlerGetUnknownGeneration(t *testing.T) {
	router := newRouter(newService(&fakeGenerator{}, records.NewMemoryStore()))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/generations/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHandlerGenerateRejectsOversizedBody(t *testing.T) {
	g := &fakeGenerator{}
	router := newRouter(newService(g, records.NewMemoryStore()))

	form := validForm()
	form.Experience = strings.Repeat("x", maxGenerateBody+1)
	rec := postGenerate(t, router, form)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rec.Code)
	}
	if g.calls != 0 {
		t.Fatalf("expected no generator calls, got %d", g.calls)
	}
}

func TestHandlerListGenerationsClampsPaging(t *testing.T) {
	router := newRouter(newService(&fakeGenerator{}, records.NewMemoryStore()))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/generations?limit=1000&offset=-5", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Limit  int `json:"limit"`
		Offset int `json:"offset"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Limit != 100 || body.Offset != 0 {
		t.Fatalf("unexpected paging %s", rec.Body.String())
	}
}

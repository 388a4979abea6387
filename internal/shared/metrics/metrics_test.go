package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveFlowCountsByOutcome(t *testing.T) {
	before := testutil.ToFloat64(flowInvocations.WithLabelValues("extract_entities", OutcomeFailure))
	ObserveFlow("extract_entities", OutcomeFailure, 250*time.Millisecond)
	after := testutil.ToFloat64(flowInvocations.WithLabelValues("extract_entities", OutcomeFailure))
	if after-before != 1 {
		t.Fatalf("expected failure counter to grow by 1, got %v", after-before)
	}
}

func TestIncRecordWrite(t *testing.T) {
	before := testutil.ToFloat64(recordWrites.WithLabelValues("resume_analyses", OutcomeSuccess))
	IncRecordWrite("resume_analyses", OutcomeSuccess)
	after := testutil.ToFloat64(recordWrites.WithLabelValues("resume_analyses", OutcomeSuccess))
	if after-before != 1 {
		t.Fatalf("expected write counter to grow by 1, got %v", after-before)
	}
}

func TestHandlerExposesRouteMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/api/v1/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", Handler())

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	body := resp.Body.String()
	if !strings.Contains(body, `resumefit_http_requests_total{method="GET",path="/api/v1/health",status="200"}`) {
		t.Fatalf("expected request counter for health route, got:\n%s", body)
	}
}

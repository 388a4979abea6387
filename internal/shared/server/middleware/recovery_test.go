package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"resumefit/internal/shared/telemetry"
)

func panicRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID(), Recovery())
	router.GET("/boom", func(c *gin.Context) {
		panic("boom")
	})
	router.GET("/late", func(c *gin.Context) {
		c.String(http.StatusAccepted, "partial")
		panic("late boom")
	})
	return router
}

func panicLogLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var payload map[string]any
		if err := json.Unmarshal([]byte(line), &payload); err != nil {
			t.Fatalf("decode log json: %v", err)
		}
		if payload["msg"] == "request.panic" {
			return payload
		}
	}
	t.Fatalf("no request.panic line in %s", buf.String())
	return nil
}

func TestRecoveryReturnsErrorEnvelope(t *testing.T) {
	var buf bytes.Buffer
	telemetry.SetOutput(&buf)
	defer telemetry.SetOutput(nil)

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set("X-Request-Id", "req-panic")
	resp := httptest.NewRecorder()
	panicRouter().ServeHTTP(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Details struct {
				RequestID string `json:"requestId"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Error.Code != "internal_error" {
		t.Fatalf("expected internal_error, got %q", payload.Error.Code)
	}
	if payload.Error.Details.RequestID != "req-panic" {
		t.Fatalf("expected request id in details, got %q", payload.Error.Details.RequestID)
	}

	logged := panicLogLine(t, &buf)
	if logged["request_id"] != "req-panic" || logged["path"] != "/boom" || logged["panic"] != "boom" {
		t.Fatalf("unexpected panic log %v", logged)
	}
	if stack, _ := logged["stack"].(string); stack == "" {
		t.Fatalf("expected stack trace in panic log")
	}
}

func TestRecoveryKeepsCommittedResponse(t *testing.T) {
	var buf bytes.Buffer
	telemetry.SetOutput(&buf)
	defer telemetry.SetOutput(nil)

	resp := httptest.NewRecorder()
	panicRouter().ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/late", nil))

	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected committed status 202, got %d", resp.Code)
	}
	if resp.Body.String() != "partial" {
		t.Fatalf("expected no error envelope appended, got %q", resp.Body.String())
	}
	if logged := panicLogLine(t, &buf); logged["path"] != "/late" {
		t.Fatalf("unexpected panic log %v", logged)
	}
}

package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"resumefit/internal/llm"
)

func TestIsGPT5(t *testing.T) {
	tests := []struct {
		name  string
		model string
		want  bool
	}{
		{name: "gpt5", model: "gpt-5", want: true},
		{name: "gpt5 variant", model: "gpt-5-mini", want: true},
		{name: "gpt5 uppercase", model: " GPT-5o ", want: true},
		{name: "gpt4", model: "gpt-4o", want: false},
		{name: "empty", model: "", want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := isGPT5(tt.model); got != tt.want {
				t.Fatalf("isGPT5(%q) = %v, want %v", tt.model, got, tt.want)
			}
		})
	}
}

type recorder struct {
	mu     sync.Mutex
	bodies []map[string]any
}

func (r *recorder) add(body map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bodies = append(r.bodies, body)
}

func (r *recorder) all() []map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]map[string]any(nil), r.bodies...)
}

func newServer(t *testing.T, rec *recorder, replies ...string) *httptest.Server {
	t.Helper()
	var mu sync.Mutex
	call := 0
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		rec.add(payload)

		mu.Lock()
		idx := call
		call++
		mu.Unlock()
		if idx >= len(replies) {
			idx = len(replies) - 1
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(replies[idx]))
	}))
}

func chatReply(content string) string {
	encoded, _ := json.Marshal(content)
	return `{"choices":[{"message":{"role":"assistant","content":` + string(encoded) + `}}],"usage":{"prompt_tokens":3,"completion_tokens":4,"total_tokens":7}}`
}

func TestGenerateReturnsJSON(t *testing.T) {
	rec := &recorder{}
	server := newServer(t, rec, chatReply(`{"skills":["Go"]}`))
	defer server.Close()

	client, err := NewClient("test-key", "gpt-4o-mini", server.URL, time.Second)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	out, err := client.Generate(context.Background(), llm.Request{
		Operation: "extract",
		System:    "extract entities",
		Prompt:    "resume goes here",
		Schema: &llm.Schema{
			Type:       llm.TypeObject,
			Properties: map[string]*llm.Schema{"skills": {Type: llm.TypeArray, Items: &llm.Schema{Type: llm.TypeString}}},
			Required:   []string{"skills"},
		},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if string(out) != `{"skills":["Go"]}` {
		t.Fatalf("unexpected output %s", out)
	}

	bodies := rec.all()
	if len(bodies) != 1 {
		t.Fatalf("expected 1 request, got %d", len(bodies))
	}
	if bodies[0]["temperature"] != float64(0) {
		t.Fatalf("expected temperature 0, got %v", bodies[0]["temperature"])
	}
	format, _ := bodies[0]["response_format"].(map[string]any)
	if format["type"] != "json_object" {
		t.Fatalf("expected json_object response format, got %v", bodies[0]["response_format"])
	}
	messages, _ := bodies[0]["messages"].([]any)
	system, _ := messages[0].(map[string]any)
	if !strings.Contains(system["content"].(string), `"skills"`) {
		t.Fatalf("expected schema in system prompt, got %v", system["content"])
	}
}

func TestGenerateOmitsTemperatureForGPT5(t *testing.T) {
	rec := &recorder{}
	server := newServer(t, rec, chatReply(`{}`))
	defer server.Close()

	client, err := NewClient("test-key", "gpt-5-mini", server.URL, time.Second)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.Generate(context.Background(), llm.Request{Prompt: "p"}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, hasTemp := rec.all()[0]["temperature"]; hasTemp {
		t.Fatalf("expected temperature to be omitted for gpt-5 models")
	}
}

func TestGenerateRepairsInvalidJSON(t *testing.T) {
	rec := &recorder{}
	server := newServer(t, rec, chatReply(`not json at all`), chatReply(`{"fixed":true}`))
	defer server.Close()

	client, err := NewClient("test-key", "gpt-4o", server.URL, time.Second)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	out, err := client.Generate(context.Background(), llm.Request{Prompt: "p"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if string(out) != `{"fixed":true}` {
		t.Fatalf("unexpected output %s", out)
	}
	bodies := rec.all()
	if len(bodies) != 2 {
		t.Fatalf("expected repair call, got %d requests", len(bodies))
	}
	messages, _ := bodies[1]["messages"].([]any)
	system, _ := messages[0].(map[string]any)
	if system["content"] != systemPromptFixJSON {
		t.Fatalf("expected fix prompt, got %v", system["content"])
	}
}

func TestGenerateStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit"}}`))
	}))
	defer server.Close()

	client, err := NewClient("test-key", "gpt-4o", server.URL, time.Second)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	_, err = client.Generate(context.Background(), llm.Request{Prompt: "p"})
	var statusErr *llm.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Code != http.StatusTooManyRequests || statusErr.Message != "slow down" {
		t.Fatalf("unexpected status error %+v", statusErr)
	}
	if !llm.ShouldRetry(err) {
		t.Fatalf("expected 429 to be retryable")
	}
}

func TestGenerateUnsupportedMedia(t *testing.T) {
	client, err := NewClient("test-key", "gpt-4o", "http://127.0.0.1:0", time.Second)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	_, err = client.Generate(context.Background(), llm.Request{
		Prompt: "p",
		Media:  &llm.Media{MIMEType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}},
	})
	if !errors.Is(err, llm.ErrUnsupportedMedia) {
		t.Fatalf("expected ErrUnsupportedMedia, got %v", err)
	}
}

func TestNewClientRequiresKeyAndModel(t *testing.T) {
	if _, err := NewClient("", "gpt-4o", "", 0); err == nil {
		t.Fatalf("expected missing key error")
	}
	if _, err := NewClient("key", " ", "", 0); err == nil {
		t.Fatalf("expected missing model error")
	}
}

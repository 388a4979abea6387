package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"resumefit/internal/llm"
	"resumefit/internal/shared/telemetry"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"

	systemPromptFixJSON = "You are a JSON repair tool. Return only valid JSON that matches the schema exactly."
)

// Client implements llm.Provider using OpenAI Chat Completions.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a new OpenAI client. An empty baseURL targets api.openai.com.
func NewClient(apiKey, model, baseURL string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for OpenAI")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		apiKey:     apiKey,
		model:      model,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Name implements llm.Provider.
func (c *Client) Name() string { return "openai" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    *float32       `json:"temperature,omitempty"`
	ResponseFormat responseFormat `json:"response_format"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage *chatUsage `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Generate implements llm.Provider. Attachments are converted to text first
// since chat completions only accept text for documents.
func (c *Client) Generate(ctx context.Context, req llm.Request) (json.RawMessage, error) {
	docText, err := llm.MediaAsText(ctx, req.Media)
	if err != nil {
		return nil, err
	}

	system := buildSystemPrompt(req.System, req.Schema)
	user := req.Prompt
	if docText != "" {
		user = user + "\n\nResume document:\n" + docText
	}

	raw, err := c.complete(ctx, req.Operation, []chatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	})
	if err != nil {
		return nil, err
	}
	if out, err := llm.DecodeOutput(raw); err == nil {
		return out, nil
	}

	raw, err = c.complete(ctx, req.Operation, []chatMessage{
		{Role: "system", Content: systemPromptFixJSON},
		{Role: "user", Content: fixUserPrompt(raw, req.Schema)},
	})
	if err != nil {
		return nil, err
	}
	return llm.DecodeOutput(raw)
}

func (c *Client) complete(ctx context.Context, operation string, messages []chatMessage) (string, error) {
	reqBody := chatRequest{
		Model:          c.model,
		Messages:       messages,
		ResponseFormat: responseFormat{Type: "json_object"},
	}
	if !isGPT5(c.model) {
		temp := float32(0)
		reqBody.Temperature = &temp
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return "", fmt.Errorf("openai request timeout: %w", err)
		}
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		if resp.StatusCode >= 400 {
			return "", &llm.StatusError{Provider: "openai", Code: resp.StatusCode, Message: strings.TrimSpace(string(body))}
		}
		return "", fmt.Errorf("openai response parse: %w", err)
	}
	if resp.StatusCode >= 400 {
		msg := http.StatusText(resp.StatusCode)
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return "", &llm.StatusError{Provider: "openai", Code: resp.StatusCode, Message: msg}
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("openai error: %s (%s)", parsed.Error.Message, parsed.Error.Type)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("openai response missing choices")
	}
	logUsage(c.model, operation, parsed.Usage)

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", llm.ErrEmptyOutput
	}
	return content, nil
}

func buildSystemPrompt(system string, schema *llm.Schema) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(system))
	if b.Len() > 0 {
		b.WriteString("\n\n")
	}
	b.WriteString("Respond with JSON only. No markdown. Never omit keys.")
	if schema != nil {
		encoded, err := json.Marshal(schema.JSONSchema())
		if err == nil {
			b.WriteString(" Output must match this JSON Schema exactly:\n")
			b.Write(encoded)
		}
	}
	return b.String()
}

func fixUserPrompt(raw string, schema *llm.Schema) string {
	var b strings.Builder
	if schema != nil {
		if encoded, err := json.Marshal(schema.JSONSchema()); err == nil {
			b.WriteString("Schema:\n")
			b.Write(encoded)
			b.WriteString("\n\n")
		}
	}
	b.WriteString("Fix this into valid JSON:\n")
	b.WriteString(raw)
	return b.String()
}

func logUsage(model, operation string, usage *chatUsage) {
	fields := map[string]any{
		"provider":  "openai",
		"model":     model,
		"operation": operation,
	}
	if usage != nil {
		fields["prompt_tokens"] = usage.PromptTokens
		fields["completion_tokens"] = usage.CompletionTokens
		fields["total_tokens"] = usage.TotalTokens
	}
	telemetry.Info("llm.response", fields)
}

// gpt-5 models reject an explicit temperature.
func isGPT5(model string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(model)), "gpt-5")
}

var _ llm.Provider = (*Client)(nil)

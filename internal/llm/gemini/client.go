package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"resumefit/internal/extract"
	"resumefit/internal/llm"
	"resumefit/internal/shared/telemetry"
)

// Client implements llm.Provider on the Gemini API.
type Client struct {
	model  string
	models *genai.Models
}

// Options configures a Client.
type Options struct {
	APIKey string
	Model  string
	// BaseURL overrides the API endpoint. Empty uses the SDK default.
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient constructs a Gemini-backed provider.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.Model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for Gemini")
	}
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	cc := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if opts.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Client{model: opts.Model, models: client.Models}, nil
}

// Name implements llm.Provider.
func (c *Client) Name() string { return "gemini" }

// Generate implements llm.Provider.
func (c *Client) Generate(ctx context.Context, req llm.Request) (json.RawMessage, error) {
	parts, err := buildParts(ctx, req)
	if err != nil {
		return nil, err
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0),
		ResponseMIMEType: "application/json",
		ResponseSchema:   toGenaiSchema(req.Schema),
	}
	if strings.TrimSpace(req.System) != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	resp, err := c.models.GenerateContent(ctx, c.model, []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}, cfg)
	if err != nil {
		return nil, mapError(err)
	}
	logUsage(c.model, req.Operation, resp)
	return llm.DecodeOutput(resp.Text())
}

// buildParts attaches PDFs and plain text natively and converts DOCX to text,
// which the Gemini API does not accept inline.
func buildParts(ctx context.Context, req llm.Request) ([]*genai.Part, error) {
	var parts []*genai.Part
	if m := req.Media; m != nil {
		mime := extract.NormalizeMIMEType(m.MIMEType, m.FileName, m.Data)
		switch {
		case mime == extract.MIMEPDF, strings.HasPrefix(mime, "text/"), strings.HasPrefix(mime, "image/"):
			parts = append(parts, genai.NewPartFromBytes(m.Data, mime))
		case mime == extract.MIMEDOCX:
			text, err := llm.MediaAsText(ctx, m)
			if err != nil {
				return nil, err
			}
			parts = append(parts, genai.NewPartFromText("Resume document:\n"+text))
		default:
			return nil, fmt.Errorf("%w: %s", llm.ErrUnsupportedMedia, mime)
		}
	}
	parts = append(parts, genai.NewPartFromText(req.Prompt))
	return parts, nil
}

func mapError(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	msg := strings.ToLower(apiErr.Message)
	if apiErr.Code == http.StatusBadRequest && (strings.Contains(msg, "mime") || strings.Contains(msg, "unsupported")) {
		return fmt.Errorf("%w: %s", llm.ErrUnsupportedMedia, apiErr.Message)
	}
	return &llm.StatusError{Provider: "gemini", Code: apiErr.Code, Message: apiErr.Message}
}

func toGenaiSchema(s *llm.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:             genaiType(s.Type),
		Description:      s.Description,
		Required:         append([]string(nil), s.Required...),
		Enum:             append([]string(nil), s.Enum...),
		Minimum:          s.Minimum,
		Maximum:          s.Maximum,
		Items:            toGenaiSchema(s.Items),
		PropertyOrdering: append([]string(nil), s.Order...),
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGenaiSchema(prop)
		}
	}
	return out
}

func genaiType(t llm.Type) genai.Type {
	switch t {
	case llm.TypeObject:
		return genai.TypeObject
	case llm.TypeArray:
		return genai.TypeArray
	case llm.TypeNumber:
		return genai.TypeNumber
	case llm.TypeBoolean:
		return genai.TypeBoolean
	default:
		return genai.TypeString
	}
}

func logUsage(model, operation string, resp *genai.GenerateContentResponse) {
	fields := map[string]any{
		"provider":  "gemini",
		"model":     model,
		"operation": operation,
	}
	if resp != nil && resp.UsageMetadata != nil {
		fields["prompt_tokens"] = resp.UsageMetadata.PromptTokenCount
		fields["completion_tokens"] = resp.UsageMetadata.CandidatesTokenCount
		fields["total_tokens"] = resp.UsageMetadata.TotalTokenCount
	}
	telemetry.Info("llm.response", fields)
}

var _ llm.Provider = (*Client)(nil)

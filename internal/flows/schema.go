package flows

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"resumefit/internal/llm"
)

var stringList = &llm.Schema{Type: llm.TypeArray, Items: &llm.Schema{Type: llm.TypeString}}

var entitiesSchema = &llm.Schema{
	Type: llm.TypeObject,
	Properties: map[string]*llm.Schema{
		"skills":     withDescription(stringList, "Skills listed in the resume."),
		"experience": withDescription(stringList, "Work experiences listed in the resume."),
		"education":  withDescription(stringList, "Educational experiences listed in the resume."),
	},
	Order:    []string{"skills", "experience", "education"},
	Required: []string{"skills", "experience", "education"},
}

var scoringSchema = &llm.Schema{
	Type: llm.TypeObject,
	Properties: map[string]*llm.Schema{
		"fitScore": {
			Type:        llm.TypeNumber,
			Description: "How well the resume fits the job description, from 0 to 1.",
			Minimum:     llm.Float(0),
			Maximum:     llm.Float(1),
		},
		"justification":          {Type: llm.TypeString, Description: "Why the resume received this score."},
		"suggestedRoles":         withDescription(stringList, "3 to 5 alternative job titles based on the resume."),
		"improvementSuggestions": withDescription(stringList, "Actionable edits to better match the job description."),
	},
	Order:    []string{"fitScore", "justification", "suggestedRoles", "improvementSuggestions"},
	Required: []string{"fitScore", "justification", "suggestedRoles", "improvementSuggestions"},
}

var generationSchema = &llm.Schema{
	Type: llm.TypeObject,
	Properties: map[string]*llm.Schema{
		"resumeText": {Type: llm.TypeString, Description: "The resume in Markdown."},
	},
	Required: []string{"resumeText"},
}

func withDescription(s *llm.Schema, desc string) *llm.Schema {
	c := *s
	c.Description = desc
	return &c
}

// outputLoaders hold relaxed validators: fields may be missing or null and
// numeric bounds are enforced by normalization instead.
var outputLoaders = map[string]gojsonschema.JSONLoader{
	FlowExtractEntities: gojsonschema.NewGoLoader(relaxed(entitiesSchema)),
	FlowScoreJobFit:     gojsonschema.NewGoLoader(relaxed(scoringSchema)),
	FlowGenerateResume:  gojsonschema.NewGoLoader(relaxed(generationSchema)),
}

func relaxed(s *llm.Schema) map[string]any {
	out := map[string]any{"type": []any{string(s.Type), "null"}}
	if len(s.Properties) > 0 {
		props := make(map[string]any, len(s.Properties))
		for name, prop := range s.Properties {
			props[name] = relaxed(prop)
		}
		out["properties"] = props
	}
	if s.Items != nil {
		out["items"] = relaxed(s.Items)
	}
	if s.Type == llm.TypeObject {
		out["type"] = "object"
	}
	return out
}

// checkOutput validates raw against the flow's output shape.
func checkOutput(flow string, raw json.RawMessage) error {
	loader, ok := outputLoaders[flow]
	if !ok {
		return fmt.Errorf("no output schema for flow %q", flow)
	}
	result, err := gojsonschema.Validate(loader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", llm.ErrInvalidOutput, err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", llm.ErrInvalidOutput, strings.Join(msgs, "; "))
}

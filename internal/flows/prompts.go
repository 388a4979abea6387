package flows

import (
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

// Each template file defines a "system" and a "prompt" template.
var promptSets = map[string]*template.Template{
	FlowExtractEntities: mustLoad("extract_entities.tmpl"),
	FlowScoreJobFit:     mustLoad("job_fit_scoring.tmpl"),
	FlowGenerateResume:  mustLoad("generate_resume.tmpl"),
}

func mustLoad(name string) *template.Template {
	return template.Must(template.New(name).ParseFS(promptFS, "prompts/"+name))
}

func render(flow string, data any) (system string, prompt string, err error) {
	set, ok := promptSets[flow]
	if !ok {
		return "", "", fmt.Errorf("no prompt for flow %q", flow)
	}
	var sys, body strings.Builder
	if err := set.ExecuteTemplate(&sys, "system", data); err != nil {
		return "", "", fmt.Errorf("render %s system: %w", flow, err)
	}
	if err := set.ExecuteTemplate(&body, "prompt", data); err != nil {
		return "", "", fmt.Errorf("render %s prompt: %w", flow, err)
	}
	return strings.TrimSpace(sys.String()), strings.TrimSpace(body.String()), nil
}

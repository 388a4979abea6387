package flows

import "resumefit/internal/llm"

const (
	FlowExtractEntities = "extract_entities"
	FlowScoreJobFit     = "score_job_fit"
	FlowGenerateResume  = "generate_resume"
)

// ResumeInput carries the resume in at least one representation.
// When both are set the document takes precedence.
type ResumeInput struct {
	Text     string
	Document *llm.Media
}

func (r ResumeInput) empty() bool {
	return r.Document == nil && r.Text == ""
}

// EntityExtraction is the output of ExtractEntities.
type EntityExtraction struct {
	Skills     []string `json:"skills"`
	Experience []string `json:"experience"`
	Education  []string `json:"education"`
}

// FitScoring is the output of ScoreJobFit.
type FitScoring struct {
	FitScore               float64  `json:"fitScore"`
	Justification          string   `json:"justification"`
	SuggestedRoles         []string `json:"suggestedRoles"`
	ImprovementSuggestions []string `json:"improvementSuggestions"`
}

// GenerationInput describes the resume to write.
type GenerationInput struct {
	FullName             string `json:"fullName"`
	ContactInfo          string `json:"contactInfo"`
	Skills               string `json:"skills"`
	Experience           string `json:"experience"`
	Education            string `json:"education"`
	TargetJobDescription string `json:"targetJobDescription,omitempty"`
	Tone                 string `json:"tone"`
}

// GeneratedResume is the output of GenerateResume.
type GeneratedResume struct {
	ResumeText string `json:"resumeText"`
}

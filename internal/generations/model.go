package generations

import (
	"time"

	"resumefit/internal/flows"
)

// Result is returned to the caller of Generate.
type Result struct {
	ResumeText   string   `json:"resumeText"`
	GenerationID *string  `json:"generationId"`
	Warnings     []string `json:"warnings,omitempty"`
}

// Document is the persisted form of a generation: the request and its output.
type Document struct {
	Input  flows.GenerationInput `json:"input"`
	Output flows.GeneratedResume `json:"output"`
}

// Generation is a stored generation read back from the record store.
type Generation struct {
	ID string `json:"id"`
	Document
	CreatedAt time.Time `json:"createdAt"`
}

const warningNotSaved = "The generated resume could not be saved and has no id."

package analyses

import (
	"time"

	"resumefit/internal/flows"
)

// Result is returned to the caller of Analyze.
type Result struct {
	Entities   flows.EntityExtraction `json:"entities"`
	Scoring    flows.FitScoring       `json:"scoring"`
	AnalysisID *string                `json:"analysisId"`
	Warnings   []string               `json:"warnings,omitempty"`
}

// Document is the persisted form of an analysis.
type Document struct {
	JobDescription   string                 `json:"jobDescription"`
	ResumeSource     string                 `json:"resumeSource"`
	ResumeMIMEType   string                 `json:"resumeMimeType,omitempty"`
	ResumeFileName   string                 `json:"resumeFileName,omitempty"`
	ResumeStorageKey string                 `json:"resumeStorageKey,omitempty"`
	Entities         flows.EntityExtraction `json:"entities"`
	Scoring          flows.FitScoring       `json:"scoring"`
}

// Analysis is a stored analysis read back from the record store.
type Analysis struct {
	ID string `json:"id"`
	Document
	CreatedAt time.Time `json:"createdAt"`
}

const (
	SourceFile = "file"
	SourceText = "text"
)

const (
	warningNotSaved    = "The analysis could not be saved and has no id."
	warningNotArchived = "The resume file could not be archived."
)

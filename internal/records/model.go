package records

import (
	"encoding/json"
	"time"
)

const (
	CollectionAnalyses    = "resume_analyses"
	CollectionGenerations = "generated_resumes"
)

// Record is a persisted document. Records are append-only.
type Record struct {
	ID         string          `json:"id"`
	Collection string          `json:"collection"`
	Document   json.RawMessage `json:"document"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// Decode unmarshals the stored document into dst.
func (r Record) Decode(dst any) error {
	return json.Unmarshal(r.Document, dst)
}

func validCollection(name string) bool {
	return name == CollectionAnalyses || name == CollectionGenerations
}

package flows

import (
	"math"
	"strings"
)

const (
	maxSuggestedRoles    = 5
	defaultJustification = "Analysis could not be completed."
)

// rawScoring mirrors FitScoring with a nullable score so a missing value can be told apart from 0.
type rawScoring struct {
	FitScore               *float64 `json:"fitScore"`
	Justification          string   `json:"justification"`
	SuggestedRoles         []string `json:"suggestedRoles"`
	ImprovementSuggestions []string `json:"improvementSuggestions"`
}

func normalizeEntities(in EntityExtraction) EntityExtraction {
	return EntityExtraction{
		Skills:     cleanList(in.Skills),
		Experience: cleanList(in.Experience),
		Education:  cleanList(in.Education),
	}
}

func normalizeScoring(in rawScoring) FitScoring {
	out := FitScoring{
		FitScore:               normalizeScore(in.FitScore),
		Justification:          strings.TrimSpace(in.Justification),
		SuggestedRoles:         cleanList(in.SuggestedRoles),
		ImprovementSuggestions: cleanList(in.ImprovementSuggestions),
	}
	if out.Justification == "" {
		out.Justification = defaultJustification
	}
	if len(out.SuggestedRoles) > maxSuggestedRoles {
		out.SuggestedRoles = out.SuggestedRoles[:maxSuggestedRoles]
	}
	return out
}

// normalizeScore maps a missing score to 0, reads values in (1,100] as
// percentages and clamps the result to [0,1].
func normalizeScore(v *float64) float64 {
	if v == nil || math.IsNaN(*v) {
		return 0
	}
	score := *v
	if score > 1 && score <= 100 {
		score /= 100
	}
	return math.Max(0, math.Min(1, score))
}

// cleanList trims entries, drops blanks and never returns nil.
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// normalizeMarkdown strips a surrounding ```markdown fence some models add.
func normalizeMarkdown(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		return ""
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

package flows

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"resumefit/internal/llm"
	"resumefit/internal/shared/metrics"
	"resumefit/internal/shared/telemetry"
)

// Service runs the AI flows against a provider.
type Service struct {
	provider llm.Provider
	now      func() time.Time
}

// NewService returns a flow runner backed by provider.
func NewService(provider llm.Provider) *Service {
	return &Service{provider: provider, now: time.Now}
}

// ExtractEntities pulls skills, experience and education from a resume.
func (s *Service) ExtractEntities(ctx context.Context, in ResumeInput) (EntityExtraction, error) {
	var out EntityExtraction
	if in.empty() {
		return out, &GenerationError{Kind: KindGenerationFailed, Flow: FlowExtractEntities, Err: ErrNoResume}
	}
	data := struct{ ResumeText string }{ResumeText: resumeText(in)}
	if err := s.run(ctx, FlowExtractEntities, data, in.Document, entitiesSchema, &out); err != nil {
		return EntityExtraction{}, err
	}
	return normalizeEntities(out), nil
}

// ScoreJobFit scores a resume against a job description.
func (s *Service) ScoreJobFit(ctx context.Context, in ResumeInput, jobDescription string) (FitScoring, error) {
	var out rawScoring
	if in.empty() {
		return FitScoring{}, &GenerationError{Kind: KindGenerationFailed, Flow: FlowScoreJobFit, Err: ErrNoResume}
	}
	data := struct{ ResumeText, JobDescription string }{ResumeText: resumeText(in), JobDescription: jobDescription}
	if err := s.run(ctx, FlowScoreJobFit, data, in.Document, scoringSchema, &out); err != nil {
		return FitScoring{}, err
	}
	return normalizeScoring(out), nil
}

// GenerateResume writes a Markdown resume from the given details.
func (s *Service) GenerateResume(ctx context.Context, in GenerationInput) (GeneratedResume, error) {
	var out GeneratedResume
	if err := s.run(ctx, FlowGenerateResume, in, nil, generationSchema, &out); err != nil {
		return GeneratedResume{}, err
	}
	out.ResumeText = normalizeMarkdown(out.ResumeText)
	if out.ResumeText == "" {
		return GeneratedResume{}, &GenerationError{Kind: KindGenerationFailed, Flow: FlowGenerateResume, Err: llm.ErrEmptyOutput}
	}
	return out, nil
}

func (s *Service) run(ctx context.Context, flow string, data any, media *llm.Media, schema *llm.Schema, dst any) (err error) {
	start := s.now()
	defer func() {
		outcome := metrics.OutcomeSuccess
		fields := map[string]any{
			"flow":        flow,
			"provider":    s.provider.Name(),
			"duration_ms": time.Since(start).Milliseconds(),
		}
		if err != nil {
			outcome = metrics.OutcomeFailure
			fields["error"] = err
			telemetry.Warn("flow.failed", fields)
		} else {
			telemetry.Info("flow.complete", fields)
		}
		metrics.ObserveFlow(flow, outcome, time.Since(start))
	}()

	system, prompt, err := render(flow, data)
	if err != nil {
		return classify(flow, err)
	}
	raw, err := s.provider.Generate(ctx, llm.Request{
		Operation: flow,
		System:    system,
		Prompt:    prompt,
		Media:     media,
		Schema:    schema,
	})
	if err != nil {
		return classify(flow, err)
	}
	if len(raw) == 0 {
		return classify(flow, llm.ErrEmptyOutput)
	}
	if err := checkOutput(flow, raw); err != nil {
		return classify(flow, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return classify(flow, fmt.Errorf("%w: %v", llm.ErrInvalidOutput, err))
	}
	return nil
}

// resumeText returns the inline text only when no document is attached.
func resumeText(in ResumeInput) string {
	if in.Document != nil {
		return ""
	}
	return in.Text
}

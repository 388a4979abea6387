package generations

import (
	"context"
	"errors"
	"fmt"

	"resumefit/internal/flows"
	"resumefit/internal/records"
	"resumefit/internal/validation"
)

// Generator writes a resume from structured input.
type Generator interface {
	GenerateResume(ctx context.Context, in flows.GenerationInput) (flows.GeneratedResume, error)
}

// Service orchestrates resume generation.
type Service struct {
	Validator *validation.Validator
	Generator Generator
	Records   *records.Service
}

// Generate validates form, generates the resume once and persists input and
// output together. A persistence failure yields a nil id.
func (s *Service) Generate(ctx context.Context, form validation.GenerateForm) (Result, error) {
	req, err := s.Validator.Generate(form)
	if err != nil {
		return Result{}, err
	}

	in := flows.GenerationInput{
		FullName:             req.FullName,
		ContactInfo:          req.ContactInfo,
		Skills:               req.Skills,
		Experience:           req.Experience,
		Education:            req.Education,
		TargetJobDescription: req.TargetJobDescription,
		Tone:                 req.Tone,
	}
	out, err := s.Generator.GenerateResume(ctx, in)
	if err != nil {
		return Result{}, classify(err)
	}

	result := Result{ResumeText: out.ResumeText}
	result.GenerationID = s.Records.Save(ctx, records.CollectionGenerations, Document{Input: in, Output: out})
	if result.GenerationID == nil {
		result.Warnings = append(result.Warnings, warningNotSaved)
	}
	return result, nil
}

// Get returns a stored generation.
func (s *Service) Get(ctx context.Context, id string) (Generation, error) {
	rec, err := s.Records.Get(ctx, records.CollectionGenerations, id)
	if err != nil {
		return Generation{}, err
	}
	return fromRecord(rec)
}

// List returns stored generations newest-first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Generation, error) {
	recs, err := s.Records.List(ctx, records.CollectionGenerations, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]Generation, 0, len(recs))
	for _, rec := range recs {
		g, err := fromRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

func fromRecord(rec records.Record) (Generation, error) {
	g := Generation{ID: rec.ID, CreatedAt: rec.CreatedAt}
	if err := rec.Decode(&g.Document); err != nil {
		return Generation{}, fmt.Errorf("decode generation %s: %w", rec.ID, err)
	}
	return g, nil
}

func classify(err error) error {
	var genErr *flows.GenerationError
	if errors.As(err, &genErr) {
		return genErr
	}
	return fmt.Errorf("%w: %w", ErrUnexpected, err)
}

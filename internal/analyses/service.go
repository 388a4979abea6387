package analyses

import (
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"resumefit/internal/flows"
	"resumefit/internal/llm"
	"resumefit/internal/records"
	"resumefit/internal/validation"
)

// Flows runs the two analysis flows.
type Flows interface {
	ExtractEntities(ctx context.Context, in flows.ResumeInput) (flows.EntityExtraction, error)
	ScoreJobFit(ctx context.Context, in flows.ResumeInput, jobDescription string) (flows.FitScoring, error)
}

// Service orchestrates resume analyses.
type Service struct {
	Validator *validation.Validator
	Flows     Flows
	Records   *records.Service
	// Archive is optional; nil disables archiving of uploaded files.
	Archive *Archiver
}

// Analyze validates form, runs extraction and scoring concurrently and
// persists the combined result. A persistence failure yields a nil id.
func (s *Service) Analyze(ctx context.Context, form validation.AnalyzeForm) (Result, error) {
	req, err := s.Validator.Analyze(form)
	if err != nil {
		return Result{}, err
	}

	in := flows.ResumeInput{Text: req.ResumeText}
	if req.Document != nil {
		in.Document = &llm.Media{
			MIMEType: req.Document.MIMEType,
			FileName: req.Document.FileName,
			Data:     req.Document.Data,
		}
	}

	var (
		entities flows.EntityExtraction
		scoring  flows.FitScoring
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		entities, err = s.Flows.ExtractEntities(gctx, in)
		return err
	})
	g.Go(func() error {
		var err error
		scoring, err = s.Flows.ScoreJobFit(gctx, in, req.JobDescription)
		return err
	})
	if err := g.Wait(); err != nil {
		return Result{}, classify(err)
	}

	result := Result{Entities: entities, Scoring: scoring}
	doc := Document{
		JobDescription: req.JobDescription,
		ResumeSource:   SourceText,
		Entities:       entities,
		Scoring:        scoring,
	}
	if req.Document != nil {
		doc.ResumeSource = SourceFile
		doc.ResumeMIMEType = req.Document.MIMEType
		doc.ResumeFileName = req.Document.FileName
		if s.Archive != nil {
			key, err := s.Archive.Archive(ctx, req.Document)
			if err != nil {
				result.Warnings = append(result.Warnings, warningNotArchived)
			}
			doc.ResumeStorageKey = key
		}
	}

	result.AnalysisID = s.Records.Save(ctx, records.CollectionAnalyses, doc)
	if result.AnalysisID == nil {
		result.Warnings = append(result.Warnings, warningNotSaved)
	}
	return result, nil
}

// Get returns a stored analysis.
func (s *Service) Get(ctx context.Context, id string) (Analysis, error) {
	rec, err := s.Records.Get(ctx, records.CollectionAnalyses, id)
	if err != nil {
		return Analysis{}, err
	}
	return fromRecord(rec)
}

// OpenResume returns the archived resume file of an analysis together with the
// stored analysis, whose ResumeMIMEType describes the stream.
func (s *Service) OpenResume(ctx context.Context, id string) (io.ReadCloser, Analysis, error) {
	analysis, err := s.Get(ctx, id)
	if err != nil {
		return nil, Analysis{}, err
	}
	if s.Archive == nil || analysis.ResumeStorageKey == "" {
		return nil, analysis, ErrNoArchivedResume
	}
	r, err := s.Archive.Open(ctx, analysis.ResumeStorageKey)
	if err != nil {
		return nil, analysis, err
	}
	return r, analysis, nil
}

// List returns stored analyses newest-first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Analysis, error) {
	recs, err := s.Records.List(ctx, records.CollectionAnalyses, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]Analysis, 0, len(recs))
	for _, rec := range recs {
		a, err := fromRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func fromRecord(rec records.Record) (Analysis, error) {
	a := Analysis{ID: rec.ID, CreatedAt: rec.CreatedAt}
	if err := rec.Decode(&a.Document); err != nil {
		return Analysis{}, fmt.Errorf("decode analysis %s: %w", rec.ID, err)
	}
	return a, nil
}

func classify(err error) error {
	var genErr *flows.GenerationError
	if errors.As(err, &genErr) {
		return genErr
	}
	return fmt.Errorf("%w: %w", ErrUnexpected, err)
}

package analyses

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"resumefit/internal/datauri"
	"resumefit/internal/flows"
	"resumefit/internal/llm"
	"resumefit/internal/records"
	"resumefit/internal/validation"
)

var jobDescription = strings.Repeat("We need a senior Go engineer for payments. ", 2)

type fakeFlows struct {
	extractErr error
	scoreErr   error
	calls      atomic.Int32
	// barrier, when set, makes each flow wait until both have started.
	barrier *sync.WaitGroup

	mu       sync.Mutex
	inputs   []flows.ResumeInput
	lastJD   string
	canceled atomic.Bool
}

func (f *fakeFlows) wait(ctx context.Context) error {
	if f.barrier == nil {
		return nil
	}
	f.barrier.Done()
	done := make(chan struct{})
	go func() {
		f.barrier.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-time.After(2 * time.Second):
		return errors.New("flows did not run concurrently")
	case <-ctx.Done():
		f.canceled.Store(true)
		return ctx.Err()
	}
}

func (f *fakeFlows) ExtractEntities(ctx context.Context, in flows.ResumeInput) (flows.EntityExtraction, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.inputs = append(f.inputs, in)
	f.mu.Unlock()
	if err := f.wait(ctx); err != nil {
		return flows.EntityExtraction{}, err
	}
	if f.extractErr != nil {
		return flows.EntityExtraction{}, f.extractErr
	}
	return flows.EntityExtraction{Skills: []string{"Go"}, Experience: []string{}, Education: []string{}}, nil
}

func (f *fakeFlows) ScoreJobFit(ctx context.Context, in flows.ResumeInput, jd string) (flows.FitScoring, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.lastJD = jd
	f.mu.Unlock()
	if f.scoreErr != nil {
		return flows.FitScoring{}, f.scoreErr
	}
	if err := f.wait(ctx); err != nil {
		return flows.FitScoring{}, err
	}
	return flows.FitScoring{FitScore: 0.8, Justification: "good", SuggestedRoles: []string{"SRE"}, ImprovementSuggestions: []string{}}, nil
}

type failingStore struct {
	*records.MemoryStore
}

func (failingStore) Insert(ctx context.Context, collection string, document json.RawMessage) (records.Record, error) {
	return records.Record{}, errors.New("store unavailable")
}

type memObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func (m *memObjects) Put(ctx context.Context, key, contentType string, r io.Reader, size int64) error {
	if m.err != nil {
		return m.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *memObjects) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return io.NopCloser(bytes.NewReader(m.objects[key])), nil
}

func newService(f Flows, store records.Store) *Service {
	return &Service{
		Validator: validation.New(validation.DefaultPolicy()),
		Flows:     f,
		Records:   records.NewService(store),
	}
}

func pdfForm() validation.AnalyzeForm {
	return validation.AnalyzeForm{
		ResumeDataURI:  datauri.Encode("application/pdf", []byte("%PDF-1.4 resume")),
		JobDescription: jobDescription,
	}
}

func TestAnalyzeRunsFlowsConcurrentlyAndPersists(t *testing.T) {
	var barrier sync.WaitGroup
	barrier.Add(2)
	f := &fakeFlows{barrier: &barrier}
	store := records.NewMemoryStore()
	svc := newService(f, store)

	result, err := svc.Analyze(context.Background(), pdfForm())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if result.AnalysisID == nil {
		t.Fatalf("expected analysis id")
	}
	if result.Scoring.FitScore != 0.8 || len(result.Entities.Skills) != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(result.Warnings) != 0 {
		t.Fatalf("unexpected warnings %v", result.Warnings)
	}
	if f.lastJD != strings.TrimSpace(jobDescription) {
		t.Fatalf("expected trimmed job description, got %q", f.lastJD)
	}
	if f.inputs[0].Document == nil || f.inputs[0].Document.MIMEType != "application/pdf" {
		t.Fatalf("expected pdf document input, got %+v", f.inputs[0])
	}

	stored, err := svc.Get(context.Background(), *result.AnalysisID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.JobDescription != strings.TrimSpace(jobDescription) || stored.ResumeSource != SourceFile {
		t.Fatalf("unexpected stored analysis %+v", stored)
	}
	if stored.CreatedAt.IsZero() {
		t.Fatalf("expected createdAt")
	}
}

func TestAnalyzeTwiceYieldsDistinctIDs(t *testing.T) {
	svc := newService(&fakeFlows{}, records.NewMemoryStore())

	first, err := svc.Analyze(context.Background(), pdfForm())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	second, err := svc.Analyze(context.Background(), pdfForm())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if *first.AnalysisID == *second.AnalysisID {
		t.Fatalf("expected distinct ids")
	}

	list, err := svc.List(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != *second.AnalysisID {
		t.Fatalf("expected newest first, got %+v", list)
	}
}

func TestAnalyzeStoreFailureStillReturnsResults(t *testing.T) {
	svc := newService(&fakeFlows{}, failingStore{records.NewMemoryStore()})

	result, err := svc.Analyze(context.Background(), pdfForm())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if result.AnalysisID != nil {
		t.Fatalf("expected nil id, got %q", *result.AnalysisID)
	}
	if result.Scoring.FitScore != 0.8 {
		t.Fatalf("expected results despite store failure")
	}
	if len(result.Warnings) != 1 || result.Warnings[0] != warningNotSaved {
		t.Fatalf("unexpected warnings %v", result.Warnings)
	}
}

func TestAnalyzeValidationFailureSkipsFlows(t *testing.T) {
	f := &fakeFlows{}
	svc := newService(f, records.NewMemoryStore())

	_, err := svc.Analyze(context.Background(), validation.AnalyzeForm{JobDescription: "short"})
	var verr *validation.Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if f.calls.Load() != 0 {
		t.Fatalf("expected no flow calls, got %d", f.calls.Load())
	}
}

func TestAnalyzeFailsWhenEitherFlowFails(t *testing.T) {
	var barrier sync.WaitGroup
	barrier.Add(2)
	genErr := &flows.GenerationError{Kind: flows.KindUnsupportedFormat, Flow: flows.FlowScoreJobFit, Err: llm.ErrUnsupportedMedia}
	f := &fakeFlows{scoreErr: genErr, barrier: &barrier}
	store := records.NewMemoryStore()
	svc := newService(f, store)

	_, err := svc.Analyze(context.Background(), pdfForm())
	var got *flows.GenerationError
	if !errors.As(err, &got) || got.Kind != flows.KindUnsupportedFormat {
		t.Fatalf("expected unsupported format error, got %v", err)
	}
	if !f.canceled.Load() {
		t.Fatalf("expected sibling flow to be canceled")
	}
	list, _ := store.List(context.Background(), records.CollectionAnalyses, 10, 0)
	if len(list) != 0 {
		t.Fatalf("expected nothing persisted, got %d records", len(list))
	}
}

func TestAnalyzeWrapsUnexpectedErrors(t *testing.T) {
	svc := newService(&fakeFlows{extractErr: errors.New("nil pointer somewhere")}, records.NewMemoryStore())

	_, err := svc.Analyze(context.Background(), pdfForm())
	if !errors.Is(err, ErrUnexpected) {
		t.Fatalf("expected ErrUnexpected, got %v", err)
	}
}

func TestAnalyzeArchivesUploads(t *testing.T) {
	objects := &memObjects{objects: map[string][]byte{}}
	svc := newService(&fakeFlows{}, records.NewMemoryStore())
	svc.Archive = &Archiver{Store: objects, Now: func() time.Time { return time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC) }}

	form := pdfForm()
	form.FileName = "cv.pdf"
	result, err := svc.Analyze(context.Background(), form)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	stored, err := svc.Get(context.Background(), *result.AnalysisID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !strings.HasPrefix(stored.ResumeStorageKey, "resumes/2025/02/03/") || !strings.HasSuffix(stored.ResumeStorageKey, "_cv.pdf") {
		t.Fatalf("unexpected storage key %q", stored.ResumeStorageKey)
	}
	if string(objects.objects[stored.ResumeStorageKey]) != "%PDF-1.4 resume" {
		t.Fatalf("expected archived bytes")
	}
}

func TestAnalyzeArchiveFailureIsNonFatal(t *testing.T) {
	svc := newService(&fakeFlows{}, records.NewMemoryStore())
	svc.Archive = &Archiver{Store: &memObjects{err: errors.New("bucket missing")}}

	result, err := svc.Analyze(context.Background(), pdfForm())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if result.AnalysisID == nil {
		t.Fatalf("expected record to be saved")
	}
	if len(result.Warnings) != 1 || result.Warnings[0] != warningNotArchived {
		t.Fatalf("unexpected warnings %v", result.Warnings)
	}
}

func TestAnalyzeTextResumeIsNotArchived(t *testing.T) {
	objects := &memObjects{objects: map[string][]byte{}}
	f := &fakeFlows{}
	svc := newService(f, records.NewMemoryStore())
	svc.Archive = &Archiver{Store: objects}

	text := strings.Repeat("Jane Doe, backend engineer with Go. ", 3)
	result, err := svc.Analyze(context.Background(), validation.AnalyzeForm{ResumeText: text, JobDescription: jobDescription})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(objects.objects) != 0 {
		t.Fatalf("expected no archived objects")
	}
	if f.inputs[0].Document != nil || f.inputs[0].Text == "" {
		t.Fatalf("expected text input, got %+v", f.inputs[0])
	}
	stored, _ := svc.Get(context.Background(), *result.AnalysisID)
	if stored.ResumeSource != SourceText {
		t.Fatalf("expected text source, got %q", stored.ResumeSource)
	}
}

package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/caden/captionator/internal/apperr"
	"github.com/caden/captionator/internal/config"
	"github.com/caden/captionator/internal/domain"
	"github.com/caden/captionator/internal/logger"
)

type fakeLocationStore struct {
	byAddress map[string]*domain.Location
	creates   []*domain.Location
	upserts   []*domain.Location
}

func (f *fakeLocationStore) FindByAddress(ctx context.Context, address string) (*domain.Location, error) {
	if f.byAddress == nil {
		return nil, nil
	}
	return f.byAddress[address], nil
}

func (f *fakeLocationStore) Create(ctx context.Context, loc *domain.Location) error {
	f.creates = append(f.creates, loc)
	if f.byAddress == nil {
		f.byAddress = map[string]*domain.Location{}
	}
	f.byAddress[loc.Address] = loc
	return nil
}

func (f *fakeLocationStore) Upsert(ctx context.Context, loc *domain.Location) error {
	f.upserts = append(f.upserts, loc)
	if f.byAddress == nil {
		f.byAddress = map[string]*domain.Location{}
	}
	f.byAddress[loc.Address] = loc
	return nil
}

type fakeResearcher struct {
	research *domain.LocaleResearch
	err      error
	calls    int
	lastCtx  context.Context
}

func (f *fakeResearcher) ResearchAddress(ctx context.Context, address string) (*domain.LocaleResearch, error) {
	f.calls++
	f.lastCtx = ctx
	return f.research, f.err
}

type fakeAnalyzer struct {
	analysis  string
	mediaType string
	err       error
}

func (f *fakeAnalyzer) AnalyzeMedia(ctx context.Context, path, filename, videoDescription string) (string, string, error) {
	return f.analysis, f.mediaType, f.err
}

type fakeWriter struct {
	caption     string
	err         error
	regenerated bool
	lastPrev    string
}

func (f *fakeWriter) Generate(ctx context.Context, in *GenerateInput) (string, error) {
	return f.caption, f.err
}

func (f *fakeWriter) Regenerate(ctx context.Context, in *GenerateInput, previousCaption string) (string, error) {
	f.regenerated = true
	f.lastPrev = previousCaption
	return f.caption, f.err
}

type fakeScorer struct {
	score *domain.QualityScore
}

func (f *fakeScorer) Score(ctx context.Context, caption, goal, location, mediaAnalysis string) *domain.QualityScore {
	return f.score
}

func testPipelineInput() *PipelineInput {
	return &PipelineInput{
		MediaPath:     "/tmp/photo.jpg",
		MediaFilename: "photo.jpg",
		Goal:          "Promote weekend passes",
		Address:       "10 Park Ln, Dayton, OH",
		Platform:      "Instagram",
	}
}

func daytonResearch() *domain.LocaleResearch {
	return &domain.LocaleResearch{
		City:      "Dayton",
		State:     "OH",
		Narrative: "Locals love the riverfront",
		IsRural:   false,
	}
}

func TestPipeline_GenerateCaption_NewLocation(t *testing.T) {
	store := &fakeLocationStore{}
	researcher := &fakeResearcher{research: daytonResearch()}
	writer := &fakeWriter{caption: "Dayton, let's ride!"}
	svc := NewPipelineService(
		&fakeCompleter{configured: true},
		store,
		researcher,
		&fakeAnalyzer{analysis: "Families on the zip line", mediaType: MediaTypeImage},
		writer,
		&fakeScorer{score: &domain.QualityScore{OverallScore: 88, QualityTier: TierGood}},
	)

	result, err := svc.GenerateCaption(context.Background(), testPipelineInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Caption != "Dayton, let's ride!" {
		t.Errorf("unexpected caption %q", result.Caption)
	}
	if result.LocationInfo.City != "Dayton" || result.LocationInfo.State != "OH" {
		t.Errorf("unexpected location info %+v", result.LocationInfo)
	}
	if result.MediaType != MediaTypeImage {
		t.Errorf("unexpected media type %q", result.MediaType)
	}
	if result.QualityScore == nil || result.QualityScore.OverallScore != 88 {
		t.Errorf("unexpected quality score %+v", result.QualityScore)
	}
	if !strings.Contains(result.Reasoning.LocalResearchSummary, "Dayton, OH") {
		t.Errorf("unexpected research summary %q", result.Reasoning.LocalResearchSummary)
	}

	if researcher.calls != 1 {
		t.Errorf("expected 1 research call, got %d", researcher.calls)
	}
	if got := logger.GetFieldString(researcher.lastCtx, logger.FieldMediaType); got != MediaTypeImage {
		t.Errorf("expected media_type field on research context, got %q", got)
	}
	if len(store.creates) != 1 {
		t.Fatalf("expected 1 create, got %d", len(store.creates))
	}
	created := store.creates[0]
	if created.Address != "10 Park Ln, Dayton, OH" || created.Research != "Locals love the riverfront" {
		t.Errorf("unexpected created location %+v", created)
	}
	if writer.regenerated {
		t.Error("expected Generate, not Regenerate")
	}
}

func TestPipeline_GenerateCaption_CachedLocation(t *testing.T) {
	cached := &domain.Location{
		Address:  "10 Park Ln, Dayton, OH",
		City:     "Dayton",
		State:    "OH",
		Research: "Cached research narrative",
	}
	store := &fakeLocationStore{byAddress: map[string]*domain.Location{cached.Address: cached}}
	researcher := &fakeResearcher{research: daytonResearch()}
	svc := NewPipelineService(
		&fakeCompleter{configured: true},
		store,
		researcher,
		&fakeAnalyzer{analysis: "analysis", mediaType: MediaTypeImage},
		&fakeWriter{caption: "caption"},
		&fakeScorer{score: &domain.QualityScore{}},
	)

	result, err := svc.GenerateCaption(context.Background(), testPipelineInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if researcher.calls != 0 {
		t.Errorf("expected no research for a cached address, got %d calls", researcher.calls)
	}
	if len(store.creates) != 0 {
		t.Errorf("expected no create for a cached address, got %d", len(store.creates))
	}
	if result.LocationInfo.FullResearch != "Cached research narrative" {
		t.Errorf("expected cached research in result, got %q", result.LocationInfo.FullResearch)
	}
}

func TestPipeline_GenerateCaption_CreateRaceReusesWinner(t *testing.T) {
	winner := &domain.Location{
		Address:  "10 Park Ln, Dayton, OH",
		City:     "Dayton",
		State:    "OH",
		Research: "Winner's research",
	}
	svc := NewPipelineService(
		&fakeCompleter{configured: true},
		&racingLocationStore{winner: winner},
		&fakeResearcher{research: daytonResearch()},
		&fakeAnalyzer{analysis: "analysis", mediaType: MediaTypeImage},
		&fakeWriter{caption: "caption"},
		&fakeScorer{score: &domain.QualityScore{}},
	)

	result, err := svc.GenerateCaption(context.Background(), testPipelineInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.LocationInfo.FullResearch != "Winner's research" {
		t.Errorf("expected the concurrent winner's row, got %q", result.LocationInfo.FullResearch)
	}
}

// racingLocationStore simulates a concurrent insert: the first lookup
// misses, Create fails on the unique index, and the re-read finds the
// winner's row.
type racingLocationStore struct {
	winner  *domain.Location
	lookups int
}

func (r *racingLocationStore) FindByAddress(ctx context.Context, address string) (*domain.Location, error) {
	r.lookups++
	if r.lookups == 1 {
		return nil, nil
	}
	return r.winner, nil
}

func (r *racingLocationStore) Create(ctx context.Context, loc *domain.Location) error {
	return errors.New("UNIQUE constraint failed: locations.address")
}

func (r *racingLocationStore) Upsert(ctx context.Context, loc *domain.Location) error {
	return nil
}

func TestPipeline_RegenerateCaption(t *testing.T) {
	writer := &fakeWriter{caption: "a different caption"}
	svc := NewPipelineService(
		&fakeCompleter{configured: true},
		&fakeLocationStore{},
		&fakeResearcher{research: daytonResearch()},
		&fakeAnalyzer{analysis: "analysis", mediaType: MediaTypeImage},
		writer,
		&fakeScorer{score: &domain.QualityScore{}},
	)

	result, err := svc.RegenerateCaption(context.Background(), testPipelineInput(), "the old caption")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !writer.regenerated {
		t.Error("expected Regenerate to be used")
	}
	if writer.lastPrev != "the old caption" {
		t.Errorf("expected previous caption to pass through, got %q", writer.lastPrev)
	}
	if result.Caption != "a different caption" {
		t.Errorf("unexpected caption %q", result.Caption)
	}
}

func TestPipeline_FailsFastWhenUnconfigured(t *testing.T) {
	researcher := &fakeResearcher{research: daytonResearch()}
	svc := NewPipelineService(
		&fakeCompleter{configured: false},
		&fakeLocationStore{},
		researcher,
		&fakeAnalyzer{analysis: "analysis", mediaType: MediaTypeImage},
		&fakeWriter{caption: "caption"},
		&fakeScorer{score: &domain.QualityScore{}},
	)

	_, err := svc.GenerateCaption(context.Background(), testPipelineInput())
	if err == nil {
		t.Fatal("expected error")
	}
	if apperr.KindOf(err) != apperr.KindConfiguration {
		t.Errorf("expected configuration error, got kind %q", apperr.KindOf(err))
	}
	if researcher.calls != 0 {
		t.Errorf("expected no research when unconfigured, got %d calls", researcher.calls)
	}
}

func TestPipeline_VideoWithoutDescriptionFailsBeforeUpstream(t *testing.T) {
	// Wire the real media service so the extension dispatch is exercised.
	llm := &fakeCompleter{configured: true}
	media := NewMediaService(llm, &config.OpenAIConfig{VisionModel: "gpt-4o"})
	svc := NewPipelineService(
		llm,
		&fakeLocationStore{},
		&fakeResearcher{research: daytonResearch()},
		media,
		&fakeWriter{caption: "caption"},
		&fakeScorer{score: &domain.QualityScore{}},
	)

	in := testPipelineInput()
	in.MediaPath = "/tmp/clip.mp4"
	in.MediaFilename = "clip.mp4"
	in.VideoDescription = ""

	_, err := svc.GenerateCaption(context.Background(), in)
	if err == nil {
		t.Fatal("expected error")
	}
	if apperr.KindOf(err) != apperr.KindInvalidInput {
		t.Errorf("expected invalid input error, got kind %q", apperr.KindOf(err))
	}
	if len(llm.requests) != 0 {
		t.Errorf("expected no upstream calls, got %d", len(llm.requests))
	}
}

func TestPipeline_ScoringFailureNeverAborts(t *testing.T) {
	fallback := &domain.QualityScore{
		OverallScore:   75,
		QualityTier:    TierGood,
		Recommendation: recommendReview,
		Error:          "scoring degraded",
	}
	svc := NewPipelineService(
		&fakeCompleter{configured: true},
		&fakeLocationStore{},
		&fakeResearcher{research: daytonResearch()},
		&fakeAnalyzer{analysis: "analysis", mediaType: MediaTypeImage},
		&fakeWriter{caption: "caption"},
		&fakeScorer{score: fallback},
	)

	result, err := svc.GenerateCaption(context.Background(), testPipelineInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.QualityScore.Error != "scoring degraded" {
		t.Errorf("expected degraded score to flow through, got %+v", result.QualityScore)
	}
}

func TestPipeline_ResearchLocation(t *testing.T) {
	store := &fakeLocationStore{}
	svc := NewPipelineService(
		&fakeCompleter{configured: true},
		store,
		&fakeResearcher{research: daytonResearch()},
		&fakeAnalyzer{},
		&fakeWriter{},
		&fakeScorer{},
	)

	loc, err := svc.ResearchLocation(context.Background(), "10 Park Ln, Dayton, OH")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.City != "Dayton" || loc.State != "OH" {
		t.Errorf("unexpected location %+v", loc)
	}
	if len(store.upserts) != 1 {
		t.Errorf("expected 1 upsert, got %d", len(store.upserts))
	}
}

func TestPipeline_ResearchLocation_InvalidAddress(t *testing.T) {
	svc := NewPipelineService(
		&fakeCompleter{configured: true},
		&fakeLocationStore{},
		&fakeResearcher{err: apperr.New(apperr.KindInvalidInput, "could not parse address")},
		&fakeAnalyzer{},
		&fakeWriter{},
		&fakeScorer{},
	)

	_, err := svc.ResearchLocation(context.Background(), "gibberish")
	if err == nil {
		t.Fatal("expected error")
	}
	if apperr.KindOf(err) != apperr.KindInvalidInput {
		t.Errorf("expected invalid input error, got kind %q", apperr.KindOf(err))
	}
}

package service

import (
	"context"
	"fmt"

	"github.com/caden/captionator/internal/apperr"
	"github.com/caden/captionator/internal/domain"
	"github.com/caden/captionator/internal/logger"
)

// locationStore is the slice of the location repository the pipeline
// needs.
type locationStore interface {
	FindByAddress(ctx context.Context, address string) (*domain.Location, error)
	Create(ctx context.Context, loc *domain.Location) error
	Upsert(ctx context.Context, loc *domain.Location) error
}

// addressResearcher resolves an address to locale research.
type addressResearcher interface {
	ResearchAddress(ctx context.Context, address string) (*domain.LocaleResearch, error)
}

// mediaAnalyzer produces a description of uploaded media.
type mediaAnalyzer interface {
	AnalyzeMedia(ctx context.Context, path, filename, videoDescription string) (analysis, mediaType string, err error)
}

// captionWriter drafts and redrafts captions.
type captionWriter interface {
	Generate(ctx context.Context, in *GenerateInput) (string, error)
	Regenerate(ctx context.Context, in *GenerateInput, previousCaption string) (string, error)
}

// qualityScorer assesses a generated caption. Never fails.
type qualityScorer interface {
	Score(ctx context.Context, caption, goal, location, mediaAnalysis string) *domain.QualityScore
}

// PipelineInput is one caption generation request. MediaPath points at
// the temporary upload, whose lifecycle the handler owns.
type PipelineInput struct {
	MediaPath        string
	MediaFilename    string
	VideoDescription string
	Goal             string
	Address          string
	Platform         string
}

// LocationInfo is the location slice of a pipeline response.
type LocationInfo struct {
	City         string `json:"city"`
	State        string `json:"state"`
	IsRural      bool   `json:"is_rural"`
	FullResearch string `json:"full_research"`
}

// Reasoning is the human-readable breakdown of what the pipeline did.
type Reasoning struct {
	MediaConfirmation    string `json:"media_confirmation"`
	LocalResearchSummary string `json:"local_research_summary"`
	CaptionStrategy      string `json:"caption_strategy"`
}

// PipelineResult is the composed response of a generation request.
type PipelineResult struct {
	Caption       string               `json:"caption"`
	LocationInfo  LocationInfo         `json:"location_info"`
	MediaAnalysis string               `json:"media_analysis"`
	MediaType     string               `json:"media_type"`
	QualityScore  *domain.QualityScore `json:"quality_scores"`
	Reasoning     Reasoning            `json:"reasoning"`
}

// PipelineService sequences one generation request: analyze media,
// resolve the location (cache-checked), generate a caption, score it.
// The flow is strictly linear; no step calls back into an earlier one.
type PipelineService struct {
	llm       Completer
	locations locationStore
	research  addressResearcher
	media     mediaAnalyzer
	captions  captionWriter
	scorer    qualityScorer
}

// NewPipelineService wires the caption generation pipeline.
func NewPipelineService(
	llm Completer,
	locations locationStore,
	research addressResearcher,
	media mediaAnalyzer,
	captions captionWriter,
	scorer qualityScorer,
) *PipelineService {
	return &PipelineService{
		llm:       llm,
		locations: locations,
		research:  research,
		media:     media,
		captions:  captions,
		scorer:    scorer,
	}
}

// GenerateCaption runs the full pipeline for a new caption.
func (s *PipelineService) GenerateCaption(ctx context.Context, in *PipelineInput) (*PipelineResult, error) {
	return s.run(ctx, in, "")
}

// RegenerateCaption runs the pipeline demanding a materially different
// angle from previousCaption.
func (s *PipelineService) RegenerateCaption(ctx context.Context, in *PipelineInput, previousCaption string) (*PipelineResult, error) {
	return s.run(ctx, in, previousCaption)
}

func (s *PipelineService) run(ctx context.Context, in *PipelineInput, previousCaption string) (*PipelineResult, error) {
	// Fail fast before any work when no credential is configured.
	if !s.llm.Configured() {
		return nil, apperr.New(apperr.KindConfiguration,
			"AI API key not configured; set OPENAI_API_KEY in environment")
	}

	analysis, mediaType, err := s.media.AnalyzeMedia(ctx, in.MediaPath, in.MediaFilename, in.VideoDescription)
	if err != nil {
		return nil, err
	}
	ctx = logger.WithField(ctx, logger.FieldMediaType, mediaType)
	logger.CtxInfo(ctx, "Analyzed %s upload: %s", mediaType, in.MediaFilename)

	loc, err := s.resolveLocation(ctx, in.Address)
	if err != nil {
		return nil, err
	}

	genInput := &GenerateInput{
		Goal:          in.Goal,
		Platform:      in.Platform,
		MediaAnalysis: analysis,
		Research: &domain.LocaleResearch{
			City:      loc.City,
			State:     loc.State,
			Narrative: loc.Research,
			IsRural:   loc.IsRural,
		},
	}

	var caption string
	if previousCaption != "" {
		caption, err = s.captions.Regenerate(ctx, genInput, previousCaption)
	} else {
		caption, err = s.captions.Generate(ctx, genInput)
	}
	if err != nil {
		return nil, err
	}

	// Scoring failure degrades to the fallback score; it never aborts
	// the request.
	score := s.scorer.Score(ctx, caption, in.Goal,
		fmt.Sprintf("%s, %s", loc.City, loc.State), analysis)

	return &PipelineResult{
		Caption: caption,
		LocationInfo: LocationInfo{
			City:         loc.City,
			State:        loc.State,
			IsRural:      loc.IsRural,
			FullResearch: loc.Research,
		},
		MediaAnalysis: analysis,
		MediaType:     mediaType,
		QualityScore:  score,
		Reasoning: Reasoning{
			MediaConfirmation: fmt.Sprintf("Analyzed %s: %s...",
				mediaType, truncate(analysis, 200)),
			LocalResearchSummary: fmt.Sprintf("Researched %s, %s: %s...",
				loc.City, loc.State, truncate(loc.Research, 300)),
			CaptionStrategy: fmt.Sprintf("Created localized caption for %s targeting %s, %s audience with goal: %s",
				in.Platform, loc.City, loc.State, in.Goal),
		},
	}, nil
}

// resolveLocation returns the cached location for an exact address match
// or researches and persists a new one. Two concurrent first-time
// requests may both research; the unique address index is the final
// arbiter, and the loser of the insert race re-reads the winner's row.
func (s *PipelineService) resolveLocation(ctx context.Context, address string) (*domain.Location, error) {
	cached, err := s.locations.FindByAddress(ctx, address)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "failed to look up location cache", err)
	}
	if cached != nil {
		logger.CtxInfo(ctx, "Using cached research for %s, %s", cached.City, cached.State)
		return cached, nil
	}

	research, err := s.research.ResearchAddress(ctx, address)
	if err != nil {
		return nil, err
	}

	loc := &domain.Location{
		Address:        address,
		City:           research.City,
		State:          research.State,
		IsRural:        research.IsRural,
		Research:       research.Narrative,
		ChamberInfo:    research.Narrative,
		GovernmentInfo: research.Narrative,
	}

	if err := s.locations.Create(ctx, loc); err != nil {
		// A duplicate key means a concurrent request cached the address
		// first; use its row.
		existing, readErr := s.locations.FindByAddress(ctx, address)
		if readErr == nil && existing != nil {
			logger.CtxInfo(ctx, "Concurrent research for %q already cached; reusing", address)
			return existing, nil
		}
		return nil, apperr.Wrap(apperr.KindPersistence, "failed to save researched location", err)
	}

	logger.CtxInfo(ctx, "Saved location: %s, %s", loc.City, loc.State)
	return loc, nil
}

// ResearchLocation force-(re)researches an address and upserts the
// cache, returning the stored row.
func (s *PipelineService) ResearchLocation(ctx context.Context, address string) (*domain.Location, error) {
	if !s.llm.Configured() {
		return nil, apperr.New(apperr.KindConfiguration,
			"AI API key not configured; set OPENAI_API_KEY in environment")
	}

	research, err := s.research.ResearchAddress(ctx, address)
	if err != nil {
		return nil, err
	}

	loc := &domain.Location{
		Address:        address,
		City:           research.City,
		State:          research.State,
		IsRural:        research.IsRural,
		Research:       research.Narrative,
		ChamberInfo:    research.Narrative,
		GovernmentInfo: research.Narrative,
	}
	if err := s.locations.Upsert(ctx, loc); err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "failed to upsert researched location", err)
	}

	stored, err := s.locations.FindByAddress(ctx, address)
	if err != nil || stored == nil {
		// Upsert succeeded; fall back to the in-memory row.
		return loc, nil
	}
	return stored, nil
}

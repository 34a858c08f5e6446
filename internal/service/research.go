package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/caden/captionator/internal/apperr"
	"github.com/caden/captionator/internal/config"
	"github.com/caden/captionator/internal/domain"
	"github.com/caden/captionator/internal/logger"
	"github.com/caden/captionator/internal/prompts"
)

// Search radii in miles, chosen by the rurality classification.
const (
	ruralSearchRadius = 15
	urbanSearchRadius = 10
)

// ResearchService produces locale research narratives for city/state
// pairs. Research is best-effort enrichment: upstream failures degrade
// to a short placeholder instead of failing the caller.
type ResearchService struct {
	llm           Completer
	parser        *AddressParser
	model         string
	fallbackModel string
	maxTokens     int
}

// NewResearchService creates a research service.
func NewResearchService(llm Completer, parser *AddressParser, cfg *config.OpenAIConfig) *ResearchService {
	maxTokens := cfg.ResearchMaxTokens
	if maxTokens <= 0 {
		maxTokens = 2500
	}
	return &ResearchService{
		llm:           llm,
		parser:        parser,
		model:         cfg.Model,
		fallbackModel: cfg.FallbackModel,
		maxTokens:     maxTokens,
	}
}

// Research requests a long-form local-knowledge narrative for the given
// city and state. On upstream failure it returns a placeholder string.
func (s *ResearchService) Research(ctx context.Context, city, state string) string {
	text, err := s.llm.CompleteWithFallback(ctx, &CompletionRequest{
		Model: s.model,
		Messages: []Message{
			TextMessage(RoleSystem, prompts.ResearchSystemPrompt),
			TextMessage(RoleUser, fmt.Sprintf(prompts.ResearchUserPrompt, city, state)),
		},
		MaxTokens:   s.maxTokens,
		Temperature: 0.5,
	}, s.fallbackModel)
	if err != nil {
		logger.CtxError(ctx, "Locale research failed for %s, %s: %v", city, state, err)
		return fmt.Sprintf("Basic information for %s, %s", city, state)
	}
	return text
}

// ResearchAddress parses an address and researches its locale. An
// unparseable address is a client input error; research itself never
// fails.
func (s *ResearchService) ResearchAddress(ctx context.Context, address string) (*domain.LocaleResearch, error) {
	city, state, ok := s.parser.Parse(ctx, address)
	if !ok {
		return nil, apperr.New(apperr.KindInvalidInput,
			"could not parse city and state from address: "+address)
	}

	logger.CtxInfo(ctx, "Researching location: %s, %s", city, state)
	narrative := s.Research(ctx, city, state)
	isRural := classifyRural(narrative)

	radius := urbanSearchRadius
	if isRural {
		radius = ruralSearchRadius
	}

	return &domain.LocaleResearch{
		City:         city,
		State:        state,
		Narrative:    narrative,
		IsRural:      isRural,
		SearchRadius: radius,
	}, nil
}

// classifyRural labels a narrative rural when it contains "rural" and
// not "suburban". A deliberately crude keyword heuristic; best-effort
// label, not a guaranteed classification.
func classifyRural(narrative string) bool {
	lower := strings.ToLower(narrative)
	return strings.Contains(lower, "rural") && !strings.Contains(lower, "suburban")
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/caden/captionator/internal/config"
	"github.com/caden/captionator/internal/domain"
	"github.com/caden/captionator/internal/logger"
	"github.com/caden/captionator/internal/prompts"
)

// analysisCharBudget bounds how much media analysis is embedded in the
// scoring prompt.
const analysisCharBudget = 300

// Quality tier labels derived from the overall score.
const (
	TierExcellent = "Excellent"
	TierGood      = "Good"
	TierFair      = "Fair"
	TierNeedsWork = "Needs Improvement"

	fallbackScore   = 75
	recommendReview = "Review"
)

// ScorerService requests a structured multi-dimension quality score for
// a generated caption. Scoring is never fatal: any request or parse
// failure degrades to a fixed neutral fallback.
type ScorerService struct {
	llm   Completer
	model string
}

// NewScorerService creates a quality scorer.
func NewScorerService(llm Completer, cfg *config.OpenAIConfig) *ScorerService {
	return &ScorerService{llm: llm, model: cfg.Model}
}

// scoreResponse is the strict JSON shape the model is instructed to return.
type scoreResponse struct {
	BrandConsistency int      `json:"brand_consistency"`
	LocalRelevance   int      `json:"local_relevance"`
	GoalAlignment    int      `json:"goal_alignment"`
	OverallQuality   int      `json:"overall_quality"`
	OverallScore     int      `json:"overall_score"`
	Issues           []string `json:"issues"`
	Strengths        []string `json:"strengths"`
	Recommendation   string   `json:"recommendation"`
}

// Score requests a quality assessment of the caption. It never fails;
// the returned score is the fallback set (annotated with the error) when
// the request or parse fails.
func (s *ScorerService) Score(ctx context.Context, caption, goal, location, mediaAnalysis string) *domain.QualityScore {
	prompt := fmt.Sprintf(prompts.ScoringPrompt,
		caption, goal, location, truncate(mediaAnalysis, analysisCharBudget), location, goal)

	text, err := s.llm.Complete(ctx, &CompletionRequest{
		Model: s.model,
		Messages: []Message{
			TextMessage(RoleUser, prompt),
		},
		MaxTokens:   400,
		Temperature: 0.2,
	})
	if err != nil {
		logger.CtxWarn(ctx, "Quality scoring request failed: %v", err)
		return fallbackQualityScore(err)
	}

	var parsed scoreResponse
	if err := json.Unmarshal([]byte(stripCodeFences(text)), &parsed); err != nil {
		logger.CtxWarn(ctx, "Quality scoring returned unparseable JSON: %v", err)
		return fallbackQualityScore(err)
	}

	return &domain.QualityScore{
		BrandConsistency: parsed.BrandConsistency,
		LocalRelevance:   parsed.LocalRelevance,
		GoalAlignment:    parsed.GoalAlignment,
		OverallQuality:   parsed.OverallQuality,
		OverallScore:     parsed.OverallScore,
		Issues:           capList(parsed.Issues, 3),
		Strengths:        capList(parsed.Strengths, 3),
		Recommendation:   parsed.Recommendation,
		QualityTier:      QualityTier(parsed.OverallScore),
	}
}

// QualityTier derives the tier label from an overall score.
func QualityTier(overallScore int) string {
	switch {
	case overallScore >= 90:
		return TierExcellent
	case overallScore >= 80:
		return TierGood
	case overallScore >= 70:
		return TierFair
	default:
		return TierNeedsWork
	}
}

// fallbackQualityScore is the fixed neutral score set used when scoring
// degrades, annotated with the cause.
func fallbackQualityScore(err error) *domain.QualityScore {
	return &domain.QualityScore{
		BrandConsistency: fallbackScore,
		LocalRelevance:   fallbackScore,
		GoalAlignment:    fallbackScore,
		OverallQuality:   fallbackScore,
		OverallScore:     fallbackScore,
		Issues:           []string{"Could not analyze automatically"},
		Strengths:        []string{"Manual review recommended"},
		Recommendation:   recommendReview,
		QualityTier:      TierGood,
		Error:            err.Error(),
	}
}

// stripCodeFences removes surrounding markdown code-fence markup from a
// model response so the JSON inside can be parsed.
func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.Index(text, "```json"); idx != -1 {
		text = text[idx+len("```json"):]
		if end := strings.Index(text, "```"); end != -1 {
			text = text[:end]
		}
	} else if idx := strings.Index(text, "```"); idx != -1 {
		text = text[idx+len("```"):]
		if end := strings.Index(text, "```"); end != -1 {
			text = text[:end]
		}
	}
	return strings.TrimSpace(text)
}

func capList(items []string, max int) []string {
	if len(items) > max {
		return items[:max]
	}
	return items
}

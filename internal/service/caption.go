package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/caden/captionator/internal/apperr"
	"github.com/caden/captionator/internal/config"
	"github.com/caden/captionator/internal/domain"
	"github.com/caden/captionator/internal/prompts"
)

// researchCharBudget bounds how much research narrative is embedded in a
// generation prompt, to respect model context limits.
const researchCharBudget = 500

// GenerateInput carries everything a caption generation needs.
type GenerateInput struct {
	Goal          string
	Platform      string
	MediaAnalysis string
	Research      *domain.LocaleResearch
}

// ChatEditInput carries a conversational caption edit request.
type ChatEditInput struct {
	CurrentCaption string
	Instruction    string
	History        []domain.ChatMessage
	City           string
	State          string
	Goal           string
	Platform       string
}

// CaptionService drafts social media captions under the static brand
// voice policy.
type CaptionService struct {
	llm           Completer
	voice         *prompts.BrandVoice
	model         string
	fallbackModel string
}

// NewCaptionService creates a caption generation service.
func NewCaptionService(llm Completer, voice *prompts.BrandVoice, cfg *config.OpenAIConfig) *CaptionService {
	return &CaptionService{
		llm:           llm,
		voice:         voice,
		model:         cfg.Model,
		fallbackModel: cfg.FallbackModel,
	}
}

// Generate requests a novel caption. Failures after model fallback
// surface as typed upstream errors, never as caption text.
func (s *CaptionService) Generate(ctx context.Context, in *GenerateInput) (string, error) {
	return s.llm.CompleteWithFallback(ctx, &CompletionRequest{
		Model: s.model,
		Messages: []Message{
			TextMessage(RoleSystem, prompts.CaptionSystemPrompt),
			TextMessage(RoleUser, s.buildGeneratePrompt(in)),
		},
		MaxTokens:   800,
		Temperature: 0.9,
	}, s.fallbackModel)
}

// Regenerate requests a materially different caption for the same goal,
// locale and media, supplying the previous caption for contrast.
func (s *CaptionService) Regenerate(ctx context.Context, in *GenerateInput, previousCaption string) (string, error) {
	return s.llm.CompleteWithFallback(ctx, &CompletionRequest{
		Model: s.model,
		Messages: []Message{
			TextMessage(RoleSystem, prompts.RegenerateSystemPrompt),
			TextMessage(RoleUser, s.buildRegeneratePrompt(in, previousCaption)),
		},
		MaxTokens:   800,
		Temperature: 1.0,
	}, s.fallbackModel)
}

// ChatEdit applies a natural-language instruction to an existing caption,
// replaying the validated dialogue history so multi-turn refinement keeps
// its context.
func (s *CaptionService) ChatEdit(ctx context.Context, in *ChatEditInput) (string, error) {
	history, err := validateHistory(in.History)
	if err != nil {
		return "", err
	}

	messages := make([]Message, 0, len(history)+2)
	messages = append(messages, TextMessage(RoleSystem, s.buildChatSystemPrompt(in)))
	messages = append(messages, history...)
	messages = append(messages, TextMessage(RoleUser, in.Instruction))

	text, err := s.llm.CompleteWithFallback(ctx, &CompletionRequest{
		Model:       s.model,
		Messages:    messages,
		MaxTokens:   500,
		Temperature: 0.7,
	}, s.fallbackModel)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// validateHistory checks each history turn for a recognized role and
// non-empty content before it is replayed to the model.
func validateHistory(history []domain.ChatMessage) ([]Message, error) {
	out := make([]Message, 0, len(history))
	for i, msg := range history {
		if msg.Role != RoleUser && msg.Role != RoleAssistant {
			return nil, apperr.New(apperr.KindInvalidInput,
				fmt.Sprintf("chat history entry %d has unrecognized role %q", i, msg.Role))
		}
		if strings.TrimSpace(msg.Content) == "" {
			return nil, apperr.New(apperr.KindInvalidInput,
				fmt.Sprintf("chat history entry %d has empty content", i))
		}
		out = append(out, TextMessage(msg.Role, msg.Content))
	}
	return out, nil
}

func (s *CaptionService) buildGeneratePrompt(in *GenerateInput) string {
	r := in.Research
	areaType := "Urban"
	if r.IsRural {
		areaType = "Rural"
	}

	return fmt.Sprintf(`You are a social media copywriter creating a %s caption for a family adventure park in %s, %s.

**POST GOAL:** %s

**MEDIA ANALYSIS:**
%s

**LOCAL AREA RESEARCH:**
%s
Area Type: %s

%s

**PLATFORM GUIDANCE:**
%s

**YOUR TASK:**
Create an authentic, localized social media caption that:
1. Achieves the stated goal
2. Reflects the local community's culture and vibe (not generic!)
3. Uses language that resonates with %s, %s residents
4. Matches the media content and tone
5. Feels personal and community-focused, NOT like a corporate template
6. Optimized for %s

Make it sound like it was written BY someone from %s, FOR people in %s.

Generate the caption now:`,
		in.Platform, r.City, r.State,
		in.Goal,
		in.MediaAnalysis,
		truncate(r.Narrative, researchCharBudget),
		areaType,
		s.voice.PromptBlock(),
		s.voice.PlatformGuidance(in.Platform),
		r.City, r.State,
		in.Platform,
		r.City, r.City)
}

func (s *CaptionService) buildRegeneratePrompt(in *GenerateInput, previousCaption string) string {
	r := in.Research
	return fmt.Sprintf(`You previously created this caption for a family adventure park in %s, %s:

"%s"

Now create a DIFFERENT version that:
- Has a different tone/approach and a different hook
- Uses different local references
- Has different wording while maintaining the same goal
- Still feels authentic to %s, %s

**POST GOAL:** %s
**MEDIA ANALYSIS:** %s
**LOCAL INFO:** %s
**PLATFORM:** %s

%s

Create a fresh, alternative caption now:`,
		r.City, r.State,
		previousCaption,
		r.City, r.State,
		in.Goal,
		in.MediaAnalysis,
		truncate(r.Narrative, researchCharBudget),
		in.Platform,
		s.voice.PromptBlock())
}

func (s *CaptionService) buildChatSystemPrompt(in *ChatEditInput) string {
	return fmt.Sprintf(`You are a caption editing assistant for a family adventure park.

ORIGINAL CONTEXT:
- Location: %s, %s
- Post Goal: %s
- Platform: %s

Your job is to help refine social media captions based on user requests.
- Keep the local, authentic voice
- Maintain relevance to the location and goal
- Follow the user's editing instructions precisely
- Be conversational and helpful

CURRENT CAPTION:
%s

The user will ask you to modify this caption. Make the requested changes and return ONLY the updated caption text, nothing else.`,
		orUnknown(in.City), orUnknown(in.State), orUnknown(in.Goal), orUnknown(in.Platform),
		in.CurrentCaption)
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}

// truncate bounds s to at most n bytes, cutting at a rune boundary.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

package prompts

import (
	"fmt"
	"strings"
)

// BrandVoice is the static brand-voice policy every caption must satisfy.
// It is configuration, not computed state: the same ruleset applies to
// every location the brand operates.
type BrandVoice struct {
	Tone             []string
	Dos              []string
	Donts            []string
	RequiredElements []string
	CaptionLength    map[string]string
	HashtagStrategy  map[string]string
	EmojiUsage       string
	Punctuation      string
}

// DefaultBrandVoice returns the adventure-park brand voice ruleset.
func DefaultBrandVoice() *BrandVoice {
	return &BrandVoice{
		Tone: []string{
			"Energetic and enthusiastic",
			"Family-friendly and inclusive",
			"Authentic and community-focused",
			"Fun but professional",
			"Locally aware, not generic",
		},
		Dos: []string{
			"Use local references and community events",
			"Emphasize family fun and safety",
			"Mention specific attractions (trampolines, warrior course, etc.)",
			"Include clear call-to-action",
			"Use emojis sparingly and appropriately",
			"Highlight what makes this location special",
		},
		Donts: []string{
			"Generic location-swap language ('Planning a BIRTHDAY BLAST?')",
			"Excessive exclamation points (max 2 per caption)",
			"Corporate jargon or overly formal language",
			"Mentioning competitors",
			"Making false promises about availability or pricing",
			"Using slang that might not resonate with all demographics",
		},
		RequiredElements: []string{
			"Must mention the specific city/area",
			"Must relate to the posted image/video content",
			"Must have a clear call-to-action (book, visit, call, etc.)",
			"Must align with the stated goal",
		},
		CaptionLength: map[string]string{
			"Facebook":  "150-250 characters optimal, can go longer for storytelling",
			"Instagram": "100-150 characters + hashtags",
		},
		HashtagStrategy: map[string]string{
			"Facebook":  "2-3 hashtags max, integrated naturally",
			"Instagram": "5-10 hashtags, mix of brand and local tags",
		},
		EmojiUsage:  "1-3 per caption, relevant to content",
		Punctuation: "Conversational but not excessive",
	}
}

// PromptBlock renders the policy as a prompt section enforcing brand voice.
func (b *BrandVoice) PromptBlock() string {
	var sb strings.Builder

	sb.WriteString("**BRAND VOICE REQUIREMENTS:**\n\n")
	sb.WriteString("TONE: " + strings.Join(b.Tone, ", ") + "\n\n")

	sb.WriteString("YOU MUST:\n")
	for _, rule := range b.Dos {
		sb.WriteString("- " + rule + "\n")
	}

	sb.WriteString("\nNEVER:\n")
	for _, rule := range b.Donts {
		sb.WriteString("- " + rule + "\n")
	}

	sb.WriteString("\nREQUIRED:\n")
	for _, rule := range b.RequiredElements {
		sb.WriteString("- " + rule + "\n")
	}

	sb.WriteString("\nThis is NOT negotiable - violating these guidelines makes the caption unusable.\n")
	return sb.String()
}

// PlatformGuidance renders length/hashtag/emoji guidance for a platform.
// Unknown platforms get the Facebook defaults.
func (b *BrandVoice) PlatformGuidance(platform string) string {
	length, ok := b.CaptionLength[platform]
	if !ok {
		length = b.CaptionLength["Facebook"]
	}
	hashtags, ok := b.HashtagStrategy[platform]
	if !ok {
		hashtags = b.HashtagStrategy["Facebook"]
	}
	return fmt.Sprintf("Caption length: %s\nHashtags: %s\nEmoji usage: %s\nPunctuation: %s",
		length, hashtags, b.EmojiUsage, b.Punctuation)
}

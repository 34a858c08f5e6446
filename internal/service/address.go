package service

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/caden/captionator/internal/logger"
	"github.com/caden/captionator/internal/prompts"
)

// stateAbbreviations maps lowercase full state names to their 2-letter
// postal abbreviations.
var stateAbbreviations = map[string]string{
	"alabama": "AL", "alaska": "AK", "arizona": "AZ", "arkansas": "AR", "california": "CA",
	"colorado": "CO", "connecticut": "CT", "delaware": "DE", "florida": "FL", "georgia": "GA",
	"hawaii": "HI", "idaho": "ID", "illinois": "IL", "indiana": "IN", "iowa": "IA",
	"kansas": "KS", "kentucky": "KY", "louisiana": "LA", "maine": "ME", "maryland": "MD",
	"massachusetts": "MA", "michigan": "MI", "minnesota": "MN", "mississippi": "MS", "missouri": "MO",
	"montana": "MT", "nebraska": "NE", "nevada": "NV", "new hampshire": "NH", "new jersey": "NJ",
	"new mexico": "NM", "new york": "NY", "north carolina": "NC", "north dakota": "ND", "ohio": "OH",
	"oklahoma": "OK", "oregon": "OR", "pennsylvania": "PA", "rhode island": "RI", "south carolina": "SC",
	"south dakota": "SD", "tennessee": "TN", "texas": "TX", "utah": "UT", "vermont": "VT",
	"virginia": "VA", "washington": "WA", "west virginia": "WV", "wisconsin": "WI", "wyoming": "WY",
}

var (
	// "123 Main St, Springfield, IL 62701"
	cityAbbrevPattern = regexp.MustCompile(`,\s*([^,]+),\s*([A-Z]{2})\s*\d*`)

	// "123 Main St, Springfield, Illinois 62701"
	cityFullStatePattern = regexp.MustCompile(`,\s*([^,]+),\s*([A-Za-z\s]+?)\s*\d*$`)

	// "Springfield, IL 62701" with no leading comma structure
	trailingAbbrevPattern = regexp.MustCompile(`([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+)*),\s*([A-Z]{2})\s*\d*$`)

	// One end-anchored pattern per known state name, for addresses that
	// carry a full state name without the comma structure above.
	stateNamePatterns = compileStateNamePatterns()
)

type stateNamePattern struct {
	abbr    string
	pattern *regexp.Regexp
}

func compileStateNamePatterns() []stateNamePattern {
	names := make([]string, 0, len(stateAbbreviations))
	for name := range stateAbbreviations {
		names = append(names, name)
	}
	sort.Strings(names)

	patterns := make([]stateNamePattern, 0, len(names))
	for _, name := range names {
		patterns = append(patterns, stateNamePattern{
			abbr: stateAbbreviations[name],
			pattern: regexp.MustCompile(`(?i)([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+)?)\s*,\s*` +
				regexp.QuoteMeta(name) + `\s*\d*$`),
		})
	}
	return patterns
}

// AddressParser extracts city/state from free-text addresses using
// layered regex patterns with a model-based extraction fallback.
// Cheap deterministic patterns run first so the common cases never cost
// an API call.
type AddressParser struct {
	llm   Completer
	model string
}

// NewAddressParser creates an address parser. llm may be nil, in which
// case the model fallback is skipped.
func NewAddressParser(llm Completer, model string) *AddressParser {
	return &AddressParser{llm: llm, model: model}
}

// Parse extracts the city and state from an address string. ok is false
// when every strategy fails; city and state are then empty.
func (p *AddressParser) Parse(ctx context.Context, address string) (city, state string, ok bool) {
	// Strategy 1: comma-separated city followed by a 2-letter code
	if m := cityAbbrevPattern.FindStringSubmatch(address); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), true
	}

	// Strategy 2: comma-separated city followed by a free-text state name
	if m := cityFullStatePattern.FindStringSubmatch(address); m != nil {
		city := strings.TrimSpace(m[1])
		stateFull := strings.ToLower(strings.TrimSpace(m[2]))
		if abbr, found := stateAbbreviations[stateFull]; found {
			return city, abbr, true
		}
		// Unknown state names pass through uppercased (accepted imprecision)
		return city, strings.ToUpper(strings.TrimSpace(m[2])), true
	}

	// Strategy 3: a known state name anchored at end-of-string, with one
	// or two capitalized words immediately before the comma as the city
	for _, sp := range stateNamePatterns {
		if m := sp.pattern.FindStringSubmatch(address); m != nil {
			return strings.TrimSpace(m[1]), sp.abbr, true
		}
	}

	// Strategy 4: capitalized city and bare 2-letter code at end-of-string
	if m := trailingAbbrevPattern.FindStringSubmatch(address); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), true
	}

	// Strategy 5: single low-token model extraction
	if p.llm != nil && p.llm.Configured() {
		if city, state, ok := p.parseWithModel(ctx, address); ok {
			return city, state, true
		}
	}

	return "", "", false
}

// parseWithModel asks the model for a strict "City, ST" reply and
// accepts it only when splitting on the first comma yields exactly two
// parts.
func (p *AddressParser) parseWithModel(ctx context.Context, address string) (string, string, bool) {
	text, err := p.llm.Complete(ctx, &CompletionRequest{
		Model: p.model,
		Messages: []Message{
			TextMessage(RoleUser, fmt.Sprintf(prompts.AddressExtractionPrompt, address)),
		},
		MaxTokens:   20,
		Temperature: 0,
	})
	if err != nil {
		logger.CtxWarn(ctx, "Model address extraction failed: %v", err)
		return "", "", false
	}

	text = strings.Trim(strings.TrimSpace(text), `"`)
	parts := strings.SplitN(text, ",", 3)
	if len(parts) != 2 {
		return "", "", false
	}
	city := strings.TrimSpace(parts[0])
	state := strings.TrimSpace(parts[1])
	if city == "" || state == "" {
		return "", "", false
	}
	return city, state, true
}

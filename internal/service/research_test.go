package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/caden/captionator/internal/apperr"
	"github.com/caden/captionator/internal/config"
)

func TestClassifyRural(t *testing.T) {
	tests := []struct {
		name      string
		narrative string
		want      bool
	}{
		{"explicitly rural", "A rural farming community in the heartland", true},
		{"rural uppercase", "This RURAL area is known for county fairs", true},
		{"suburban overrides rural", "A suburban area with some rural outskirts", false},
		{"urban only", "A dense urban downtown core", false},
		{"no markers", "A friendly town with a lively main street", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyRural(tt.narrative); got != tt.want {
				t.Errorf("classifyRural(%q) = %v, want %v", tt.narrative, got, tt.want)
			}
		})
	}
}

func TestResearchService_ResearchAddress(t *testing.T) {
	tests := []struct {
		name       string
		narrative  string
		wantRural  bool
		wantRadius int
	}{
		{
			name:       "rural locale widens radius",
			narrative:  "A quiet rural community surrounded by farmland",
			wantRural:  true,
			wantRadius: 15,
		},
		{
			name:       "urban locale keeps default radius",
			narrative:  "A bustling suburban area near the metro",
			wantRural:  false,
			wantRadius: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &fakeCompleter{
				configured: true,
				complete: func(req *CompletionRequest) (string, error) {
					return tt.narrative, nil
				},
			}
			svc := NewResearchService(llm, NewAddressParser(nil, ""), &config.OpenAIConfig{
				Model:         "primary",
				FallbackModel: "backup",
			})

			research, err := svc.ResearchAddress(context.Background(), "10 Park Ln, Dayton, OH 45402")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if research.City != "Dayton" || research.State != "OH" {
				t.Errorf("expected Dayton, OH, got %s, %s", research.City, research.State)
			}
			if research.Narrative != tt.narrative {
				t.Errorf("expected narrative to carry model output, got %q", research.Narrative)
			}
			if research.IsRural != tt.wantRural {
				t.Errorf("IsRural = %v, want %v", research.IsRural, tt.wantRural)
			}
			if research.SearchRadius != tt.wantRadius {
				t.Errorf("SearchRadius = %d, want %d", research.SearchRadius, tt.wantRadius)
			}
		})
	}
}

func TestResearchService_ResearchAddress_Unparseable(t *testing.T) {
	llm := &fakeCompleter{configured: false}
	svc := NewResearchService(llm, NewAddressParser(nil, ""), &config.OpenAIConfig{})

	_, err := svc.ResearchAddress(context.Background(), "nowhere in particular")
	if err == nil {
		t.Fatal("expected error")
	}
	if apperr.KindOf(err) != apperr.KindInvalidInput {
		t.Errorf("expected invalid input error, got kind %q", apperr.KindOf(err))
	}
	if len(llm.requests) != 0 {
		t.Errorf("expected no research calls for an unparseable address, got %d", len(llm.requests))
	}
}

func TestResearchService_Research_DegradesOnUpstreamFailure(t *testing.T) {
	llm := &fakeCompleter{
		configured: true,
		complete: func(req *CompletionRequest) (string, error) {
			return "", errors.New("upstream unavailable")
		},
	}
	svc := NewResearchService(llm, NewAddressParser(nil, ""), &config.OpenAIConfig{Model: "primary"})

	narrative := svc.Research(context.Background(), "Dayton", "OH")
	if !strings.Contains(narrative, "Dayton, OH") {
		t.Errorf("expected placeholder narrative naming the locale, got %q", narrative)
	}
}

func TestResearchService_Research_RequestShape(t *testing.T) {
	llm := &fakeCompleter{
		configured: true,
		complete: func(req *CompletionRequest) (string, error) {
			return "narrative", nil
		},
	}
	svc := NewResearchService(llm, NewAddressParser(nil, ""), &config.OpenAIConfig{
		Model:             "primary",
		ResearchMaxTokens: 2500,
	})

	svc.Research(context.Background(), "Dayton", "OH")

	if len(llm.requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(llm.requests))
	}
	req := llm.requests[0]
	if req.MaxTokens != 2500 {
		t.Errorf("expected max tokens 2500, got %d", req.MaxTokens)
	}
	if req.Temperature != 0.5 {
		t.Errorf("expected temperature 0.5, got %f", req.Temperature)
	}
	if len(req.Messages) != 2 || req.Messages[0].Role != RoleSystem {
		t.Errorf("expected system + user messages, got %+v", req.Messages)
	}
}

package service

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/caden/captionator/internal/apperr"
	"github.com/caden/captionator/internal/config"
)

func TestMediaType(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"clip.mp4", MediaTypeVideo},
		{"CLIP.MOV", MediaTypeVideo},
		{"promo.webm", MediaTypeVideo},
		{"photo.jpg", MediaTypeImage},
		{"photo.png", MediaTypeImage},
		{"animation.gif", MediaTypeImage},
		{"noextension", MediaTypeImage},
	}

	for _, tt := range tests {
		if got := MediaType(tt.filename); got != tt.want {
			t.Errorf("MediaType(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}

func TestMimeTypeForFile(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"a.png", "image/png"},
		{"a.gif", "image/gif"},
		{"a.webp", "image/webp"},
		{"a.jpg", "image/jpeg"},
		{"a.jpeg", "image/jpeg"},
		{"a.unknown", "image/jpeg"},
	}

	for _, tt := range tests {
		if got := mimeTypeForFile(tt.path); got != tt.want {
			t.Errorf("mimeTypeForFile(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestAnalyzeMedia_VideoRequiresDescription(t *testing.T) {
	llm := &fakeCompleter{configured: true}
	svc := NewMediaService(llm, &config.OpenAIConfig{VisionModel: "gpt-4o"})

	_, mediaType, err := svc.AnalyzeMedia(context.Background(), "/tmp/clip.mp4", "clip.mp4", "")
	if err == nil {
		t.Fatal("expected error")
	}
	if apperr.KindOf(err) != apperr.KindInvalidInput {
		t.Errorf("expected invalid input error, got kind %q", apperr.KindOf(err))
	}
	if mediaType != MediaTypeVideo {
		t.Errorf("expected media type video, got %q", mediaType)
	}
	if len(llm.requests) != 0 {
		t.Errorf("expected no upstream calls, got %d", len(llm.requests))
	}
}

func TestAnalyzeMedia_VideoUsesDescription(t *testing.T) {
	llm := &fakeCompleter{configured: true}
	svc := NewMediaService(llm, &config.OpenAIConfig{VisionModel: "gpt-4o"})

	analysis, mediaType, err := svc.AnalyzeMedia(context.Background(),
		"/tmp/clip.mp4", "clip.mp4", "Kids racing go-karts at dusk")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mediaType != MediaTypeVideo {
		t.Errorf("expected media type video, got %q", mediaType)
	}
	if !strings.Contains(analysis, "Kids racing go-karts at dusk") {
		t.Errorf("expected analysis to carry the description, got %q", analysis)
	}
	if len(llm.requests) != 0 {
		t.Errorf("expected no upstream calls for video, got %d", len(llm.requests))
	}
}

func TestAnalyzeMedia_Image(t *testing.T) {
	path := writeTestPNG(t)

	llm := &fakeCompleter{
		configured: true,
		complete: func(req *CompletionRequest) (string, error) {
			return "A small test image", nil
		},
	}
	svc := NewMediaService(llm, &config.OpenAIConfig{VisionModel: "vision-model"})

	analysis, mediaType, err := svc.AnalyzeMedia(context.Background(), path, filepath.Base(path), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mediaType != MediaTypeImage {
		t.Errorf("expected media type image, got %q", mediaType)
	}
	if analysis != "A small test image" {
		t.Errorf("unexpected analysis %q", analysis)
	}

	if len(llm.requests) != 1 {
		t.Fatalf("expected 1 vision call, got %d", len(llm.requests))
	}
	req := llm.requests[0]
	if req.Model != "vision-model" {
		t.Errorf("expected vision model, got %q", req.Model)
	}
	if req.MaxTokens != 500 {
		t.Errorf("expected max tokens 500, got %d", req.MaxTokens)
	}
}

func TestAnalyzeMedia_ImageReadFailure(t *testing.T) {
	llm := &fakeCompleter{configured: true}
	svc := NewMediaService(llm, &config.OpenAIConfig{VisionModel: "gpt-4o"})

	_, _, err := svc.AnalyzeMedia(context.Background(), "/nonexistent/photo.jpg", "photo.jpg", "")
	if err == nil {
		t.Fatal("expected error")
	}
	if apperr.KindOf(err) != apperr.KindInvalidInput {
		t.Errorf("expected invalid input error, got kind %q", apperr.KindOf(err))
	}
}

func TestSniffImage(t *testing.T) {
	path := writeTestPNG(t)

	info := SniffImage(path)
	if info.Format != "png" {
		t.Errorf("expected format png, got %q", info.Format)
	}
	if info.Width != 4 || info.Height != 2 {
		t.Errorf("expected 4x2, got %dx%d", info.Width, info.Height)
	}

	if got := SniffImage("/nonexistent/file.png"); got != (ImageInfo{}) {
		t.Errorf("expected zero info for missing file, got %+v", got)
	}
}

func writeTestPNG(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create test image: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 4, 2))); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return path
}

package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/caden/captionator/internal/apperr"
	"github.com/caden/captionator/internal/config"
	"github.com/caden/captionator/internal/logger"
	"github.com/caden/captionator/internal/prompts"

	// Register decoders so ImageInfo can sniff uploaded image formats.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// Recognized media kinds.
const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

// videoExtensions is the recognized set of video file extensions; any
// other extension is treated as an image.
var videoExtensions = map[string]bool{
	".mp4": true, ".mov": true, ".avi": true, ".mkv": true,
	".webm": true, ".flv": true, ".wmv": true, ".m4v": true,
}

// MediaService analyzes uploaded media. Images go to a vision-capable
// model; videos use the caller-supplied description in place of AI
// analysis.
type MediaService struct {
	llm         Completer
	visionModel string
}

// NewMediaService creates a media analysis service.
func NewMediaService(llm Completer, cfg *config.OpenAIConfig) *MediaService {
	return &MediaService{
		llm:         llm,
		visionModel: cfg.VisionModel,
	}
}

// IsVideoFile reports whether the filename carries a recognized video
// extension.
func IsVideoFile(filename string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(filename))]
}

// MediaType returns "video" or "image" for a filename.
func MediaType(filename string) string {
	if IsVideoFile(filename) {
		return MediaTypeVideo
	}
	return MediaTypeImage
}

// ImageInfo holds sniffed image metadata. Best-effort: a zero value is
// returned when the file cannot be decoded.
type ImageInfo struct {
	Width  int
	Height int
	Format string
}

// SniffImage decodes the image header to report dimensions and format.
// Decode failure is non-fatal; the vision model sees the raw bytes
// regardless.
func SniffImage(path string) ImageInfo {
	f, err := os.Open(path)
	if err != nil {
		return ImageInfo{}
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return ImageInfo{}
	}
	return ImageInfo{Width: cfg.Width, Height: cfg.Height, Format: format}
}

// AnalyzeImage sends the image to the vision model with the fixed
// five-point analysis prompt and returns the description text.
func (s *MediaService) AnalyzeImage(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", apperr.Wrap(apperr.KindInvalidInput, "failed to read uploaded image", err)
	}

	if info := SniffImage(path); info.Format != "" {
		logger.CtxDebug(ctx, "Analyzing %s image %dx%d", info.Format, info.Width, info.Height)
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s",
		mimeTypeForFile(path), base64.StdEncoding.EncodeToString(data))

	return s.llm.Complete(ctx, &CompletionRequest{
		Model: s.visionModel,
		Messages: []Message{
			VisionMessage(prompts.ImageAnalysisPrompt, dataURL),
		},
		MaxTokens: 500,
	})
}

// AnalyzeMedia dispatches on file extension. Images are analyzed by the
// vision model. For videos the caller-supplied description is mandatory
// and is used as the analysis directly; a missing description is a
// client input error raised before any upstream call.
func (s *MediaService) AnalyzeMedia(ctx context.Context, path, filename, videoDescription string) (analysis, mediaType string, err error) {
	mediaType = MediaType(filename)

	if mediaType == MediaTypeVideo {
		desc := strings.TrimSpace(videoDescription)
		if desc == "" {
			return "", mediaType, apperr.New(apperr.KindInvalidInput,
				"video uploads require a video_description describing the video content")
		}
		return "Video content (user description): " + desc, mediaType, nil
	}

	analysis, err = s.AnalyzeImage(ctx, path)
	return analysis, mediaType, err
}

// mimeTypeForFile maps an image file extension to its MIME type,
// defaulting to JPEG.
func mimeTypeForFile(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

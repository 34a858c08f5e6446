package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/caden/captionator/internal/apperr"
	"github.com/caden/captionator/internal/domain"
	"github.com/caden/captionator/internal/logger"
	"github.com/caden/captionator/internal/service"
)

// captionPipeline is the pipeline slice the caption handler needs.
type captionPipeline interface {
	GenerateCaption(ctx context.Context, in *service.PipelineInput) (*service.PipelineResult, error)
	RegenerateCaption(ctx context.Context, in *service.PipelineInput, previousCaption string) (*service.PipelineResult, error)
}

// captionEditor applies conversational edits to an existing caption.
type captionEditor interface {
	ChatEdit(ctx context.Context, in *service.ChatEditInput) (string, error)
}

// captionStore persists saved captions.
type captionStore interface {
	Create(ctx context.Context, caption *domain.Caption) error
	List(ctx context.Context, offset, limit int) ([]domain.Caption, error)
	Count(ctx context.Context) (int64, error)
}

// CaptionHandler handles caption generation, editing and persistence
// endpoints.
type CaptionHandler struct {
	pipeline  captionPipeline
	editor    captionEditor
	captions  captionStore
	uploadDir string
}

// NewCaptionHandler creates a caption handler.
func NewCaptionHandler(pipeline captionPipeline, editor captionEditor, captions captionStore, uploadDir string) *CaptionHandler {
	return &CaptionHandler{
		pipeline:  pipeline,
		editor:    editor,
		captions:  captions,
		uploadDir: uploadDir,
	}
}

// GenerateCaption handles POST /api/v1/generate-caption.
// Multipart: media file, goal, address, platform, optional
// video_description (mandatory for video uploads).
func (h *CaptionHandler) GenerateCaption(c *gin.Context) {
	in, cleanup, err := h.bindPipelineInput(c)
	if err != nil {
		respondError(c, err)
		return
	}
	defer cleanup()

	result, err := h.pipeline.GenerateCaption(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// RegenerateCaption handles POST /api/v1/regenerate-caption. Same inputs
// as generation plus previous_caption.
func (h *CaptionHandler) RegenerateCaption(c *gin.Context) {
	previous := strings.TrimSpace(c.PostForm("previous_caption"))
	if previous == "" {
		respondError(c, apperr.New(apperr.KindInvalidInput, "previous_caption is required"))
		return
	}

	in, cleanup, err := h.bindPipelineInput(c)
	if err != nil {
		respondError(c, err)
		return
	}
	defer cleanup()

	result, err := h.pipeline.RegenerateCaption(c.Request.Context(), in, previous)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// chatEditRequest binds the chat edit form. ChatHistory is a
// JSON-encoded array of {role, content} turns.
type chatEditRequest struct {
	CurrentCaption string `form:"current_caption"`
	Instruction    string `form:"instruction"`
	ChatHistory    string `form:"chat_history"`
	City           string `form:"city"`
	State          string `form:"state"`
	Goal           string `form:"goal"`
	Platform       string `form:"platform"`
}

// ChatEditCaption handles POST /api/v1/chat-edit-caption.
func (h *CaptionHandler) ChatEditCaption(c *gin.Context) {
	var req chatEditRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, apperr.Wrap(apperr.KindInvalidInput, "invalid chat edit request", err))
		return
	}
	if strings.TrimSpace(req.CurrentCaption) == "" || strings.TrimSpace(req.Instruction) == "" {
		respondError(c, apperr.New(apperr.KindInvalidInput, "current_caption and instruction are required"))
		return
	}

	var history []domain.ChatMessage
	if strings.TrimSpace(req.ChatHistory) != "" {
		if err := json.Unmarshal([]byte(req.ChatHistory), &history); err != nil {
			respondError(c, apperr.Wrap(apperr.KindInvalidInput, "chat_history is not a valid JSON message array", err))
			return
		}
	}

	caption, err := h.editor.ChatEdit(c.Request.Context(), &service.ChatEditInput{
		CurrentCaption: req.CurrentCaption,
		Instruction:    req.Instruction,
		History:        history,
		City:           req.City,
		State:          req.State,
		Goal:           req.Goal,
		Platform:       req.Platform,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"caption": caption})
}

// SaveCaption handles POST /api/v1/save-caption.
func (h *CaptionHandler) SaveCaption(c *gin.Context) {
	goal := strings.TrimSpace(c.PostForm("goal"))
	caption := strings.TrimSpace(c.PostForm("caption"))
	if goal == "" || caption == "" {
		respondError(c, apperr.New(apperr.KindInvalidInput, "goal and caption are required"))
		return
	}

	record := &domain.Caption{Goal: goal, Caption: caption}
	if err := h.captions.Create(c.Request.Context(), record); err != nil {
		respondError(c, apperr.Wrap(apperr.KindPersistence, "failed to save caption", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Caption saved successfully",
		"id":      record.ID,
	})
}

// ListCaptions handles GET /api/v1/captions?skip=&limit=.
func (h *CaptionHandler) ListCaptions(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	captions, err := h.captions.List(c.Request.Context(), skip, limit)
	if err != nil {
		respondError(c, apperr.Wrap(apperr.KindPersistence, "failed to list captions", err))
		return
	}
	total, err := h.captions.Count(c.Request.Context())
	if err != nil {
		respondError(c, apperr.Wrap(apperr.KindPersistence, "failed to count captions", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"captions": captions,
		"total":    total,
	})
}

// bindPipelineInput validates the multipart generation form, persists
// the upload under a unique temp name, and returns a cleanup func that
// removes the temp file exactly once on every path.
func (h *CaptionHandler) bindPipelineInput(c *gin.Context) (*service.PipelineInput, func(), error) {
	goal := strings.TrimSpace(c.PostForm("goal"))
	address := strings.TrimSpace(c.PostForm("address"))
	platform := strings.TrimSpace(c.PostForm("platform"))
	if goal == "" || address == "" || platform == "" {
		return nil, nil, apperr.New(apperr.KindInvalidInput, "goal, address and platform are required")
	}

	// Downstream pipeline logs carry the address and platform.
	ctx := logger.SetAddress(c.Request.Context(), address)
	ctx = logger.SetPlatform(ctx, platform)
	c.Request = c.Request.WithContext(ctx)

	media, err := c.FormFile("media")
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.KindInvalidInput, "media file is required", err)
	}

	if err := os.MkdirAll(h.uploadDir, 0755); err != nil {
		return nil, nil, apperr.Wrap(apperr.KindPersistence, "failed to create upload directory", err)
	}

	path := filepath.Join(h.uploadDir, uuid.New().String()+"_"+filepath.Base(media.Filename))
	if err := c.SaveUploadedFile(media, path); err != nil {
		return nil, nil, apperr.Wrap(apperr.KindPersistence, "failed to persist uploaded media", err)
	}

	cleanup := func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.CtxWarn(c.Request.Context(), "Failed to remove temp upload %s: %v", path, err)
		}
	}

	return &service.PipelineInput{
		MediaPath:        path,
		MediaFilename:    media.Filename,
		VideoDescription: c.PostForm("video_description"),
		Goal:             goal,
		Address:          address,
		Platform:         platform,
	}, cleanup, nil
}

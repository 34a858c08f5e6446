package service

import (
	"context"
	"fmt"
	"time"

	"github.com/caden/captionator/internal/apperr"
	"github.com/caden/captionator/internal/config"
	"github.com/caden/captionator/internal/logger"
	"github.com/go-resty/resty/v2"
)

// Chat message roles accepted by the completion API.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single chat turn. Content is either a plain string or a
// multi-part list (text + image) for vision requests.
type Message struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type textContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type imageContent struct {
	Type     string   `json:"type"`
	ImageURL imageURL `json:"image_url"`
}

type imageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

// TextMessage builds a plain text chat turn.
func TextMessage(role, text string) Message {
	return Message{Role: role, Content: text}
}

// VisionMessage builds a user turn carrying a text prompt plus an
// embedded image data URL.
func VisionMessage(text, dataURL string) Message {
	return Message{
		Role: RoleUser,
		Content: []interface{}{
			textContent{Type: "text", Text: text},
			imageContent{
				Type: "image_url",
				ImageURL: imageURL{
					URL:    dataURL,
					Detail: "auto",
				},
			},
		},
	}
}

// CompletionRequest describes a single chat completion call.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float32
}

// Completer is the narrow interface services use to reach the AI
// provider. The provider is opaque: messages in, generated text out.
type Completer interface {
	Complete(ctx context.Context, req *CompletionRequest) (string, error)
	CompleteWithFallback(ctx context.Context, req *CompletionRequest, fallbackModel string) (string, error)
	Configured() bool
}

// OpenAI-compatible Chat Completion API request/response structures
type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float32   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// LLMClient is a resty-based client for an OpenAI-compatible chat
// completion endpoint.
type LLMClient struct {
	client     *resty.Client
	endpoint   string
	configured bool
}

// NewLLMClient creates a chat completion client from configuration.
func NewLLMClient(cfg *config.OpenAIConfig) *LLMClient {
	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")
	// Bound each outbound call; retry transient transport errors
	client.SetTimeout(60 * time.Second)
	client.SetRetryCount(2)
	client.SetRetryWaitTime(500 * time.Millisecond)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	return &LLMClient{
		client:     client,
		endpoint:   baseURL + "/chat/completions",
		configured: cfg.Configured(),
	}
}

// Configured reports whether an API credential is present.
func (c *LLMClient) Configured() bool {
	return c.configured
}

// Complete issues a single chat completion call and returns the
// generated text.
func (c *LLMClient) Complete(ctx context.Context, req *CompletionRequest) (string, error) {
	if !c.configured {
		return "", apperr.New(apperr.KindConfiguration,
			"AI API key not configured; set OPENAI_API_KEY in environment")
	}

	body := chatRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}

	var resp chatResponse
	httpResp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&resp).
		Post(c.endpoint)

	if err != nil {
		return "", apperr.Wrap(apperr.KindUpstream, "chat completion request failed", err)
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		errorMsg := fmt.Sprintf("HTTP %d", httpResp.StatusCode())
		if resp.Error != nil {
			errorMsg = fmt.Sprintf("HTTP %d: %s", httpResp.StatusCode(), resp.Error.Message)
		} else if len(httpResp.Body()) > 0 {
			errorMsg = fmt.Sprintf("HTTP %d: %s", httpResp.StatusCode(), string(httpResp.Body()))
		}
		return "", apperr.New(apperr.KindUpstream, "chat completion API returned error: "+errorMsg)
	}

	if resp.Error != nil {
		return "", apperr.New(apperr.KindUpstream, "chat completion API error: "+resp.Error.Message)
	}

	if len(resp.Choices) == 0 {
		return "", apperr.New(apperr.KindUpstream,
			fmt.Sprintf("no choices in chat completion response (status %d)", httpResp.StatusCode()))
	}

	return resp.Choices[0].Message.Content, nil
}

// CompleteWithFallback issues a completion against the request's model
// and, on failure, retries once on fallbackModel with the same messages.
// Configuration errors are never retried.
func (c *LLMClient) CompleteWithFallback(ctx context.Context, req *CompletionRequest, fallbackModel string) (string, error) {
	text, err := c.Complete(ctx, req)
	if err == nil {
		return text, nil
	}
	if apperr.KindOf(err) == apperr.KindConfiguration || fallbackModel == "" || fallbackModel == req.Model {
		return "", err
	}

	logger.With(logger.Fields{logger.FieldModel: fallbackModel}).
		Warn(ctx, "Model %s failed, falling back to %s: %v", req.Model, fallbackModel, err)

	fallbackReq := *req
	fallbackReq.Model = fallbackModel
	text, fbErr := c.Complete(ctx, &fallbackReq)
	if fbErr != nil {
		return "", apperr.Wrap(apperr.KindUpstream,
			fmt.Sprintf("both %s and fallback %s failed", req.Model, fallbackModel), fbErr)
	}
	return text, nil
}

// Package gemini adapts Google's Gemini API to the advice gateway's Upstream
// interface.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/edgard/wellnessbot/internal/advice"
)

// Config holds the settings for the Gemini upstream.
type Config struct {
	APIKey         string
	Temperature    float32
	MaxOutputToken int32
	RequestTimeout time.Duration
}

type generateFunc func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// Client sends single-turn completion requests to Gemini. It makes exactly one
// call per Generate; retries and model fallback belong to the gateway.
type Client struct {
	generate      generateFunc
	log           *slog.Logger
	contentConfig *genai.GenerateContentConfig
	timeout       time.Duration
}

var _ advice.Upstream = (*Client)(nil)

// NewClient creates a Gemini client for the Gemini API backend.
func NewClient(ctx context.Context, cfg Config, log *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	c := newClient(gi.Models.GenerateContent, cfg, log)
	c.log.Info("Gemini client initialized", "temperature", cfg.Temperature, "timeout", cfg.RequestTimeout)
	return c, nil
}

func newClient(generate generateFunc, cfg Config, log *slog.Logger) *Client {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	temperature := cfg.Temperature
	baseCfg := &genai.GenerateContentConfig{
		Temperature: &temperature,
		SafetySettings: []*genai.SafetySetting{
			{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
			{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
			{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
			{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
		},
	}
	if cfg.MaxOutputToken > 0 {
		baseCfg.MaxOutputTokens = cfg.MaxOutputToken
	}
	return &Client{
		generate:      generate,
		log:           log.With("component", "gemini_client"),
		contentConfig: baseCfg,
		timeout:       cfg.RequestTimeout,
	}
}

// Generate runs one completion against req.Model. API failures are returned
// as *advice.UpstreamError so the gateway can classify them by status.
func (c *Client) Generate(ctx context.Context, req advice.Request) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	copyCfg := *c.contentConfig
	if req.SystemInstruction != "" {
		copyCfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.SystemInstruction}}}
	}
	contents := []*genai.Content{genai.NewContentFromText(req.Prompt, genai.RoleUser)}

	c.log.DebugContext(ctx, "Calling Gemini", "model", req.Model, "prompt_length", len(req.Prompt))
	resp, err := c.generate(ctx, req.Model, contents, &copyCfg)
	if err != nil {
		return "", translateError(err)
	}
	return c.extractText(ctx, req.Model, resp)
}

// translateError lifts the SDK's API error into an UpstreamError. Other
// errors, including context errors, pass through unchanged.
func translateError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &advice.UpstreamError{StatusCode: apiErr.Code, Status: apiErr.Status, Message: apiErr.Message, Err: err}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &advice.UpstreamError{StatusCode: apiErrPtr.Code, Status: apiErrPtr.Status, Message: apiErrPtr.Message, Err: err}
	}
	return err
}

func (c *Client) extractText(ctx context.Context, model string, resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("gemini returned no response")
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		reason := fmt.Sprintf("%v", resp.PromptFeedback.BlockReason)
		if resp.PromptFeedback.BlockReasonMessage != "" {
			reason = resp.PromptFeedback.BlockReasonMessage
		}
		c.log.WarnContext(ctx, "Gemini request blocked", "model", model, "reason", reason)
		return "", &advice.UpstreamError{StatusCode: 400, Status: "BLOCKED", Message: "blocked by safety filter: " + reason}
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		finishReason := "unknown"
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != genai.FinishReasonUnspecified {
			finishReason = fmt.Sprintf("%v", resp.Candidates[0].FinishReason)
		}
		c.log.WarnContext(ctx, "Gemini response missing content", "model", model, "finish_reason", finishReason)
		return "", fmt.Errorf("gemini returned no content, finish reason: %s", finishReason)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("gemini returned empty text")
	}
	return text, nil
}

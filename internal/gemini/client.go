// Package gemini implements the generation client on top of Google's Gemini
// API. It exposes a single operation that turns one flattened prompt into
// one text reply.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/edgard/hubermanchat/internal/config"
	errs "github.com/edgard/hubermanchat/internal/errors"
)

// ServiceName identifies the generation service in AuthErrors.
const ServiceName = "gemini"

// Client defines the generation operation used by the interaction loop.
type Client interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// contentGenerator is the part of the genai SDK the client depends on.
// *genai.Models satisfies it.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type sdkClient struct {
	models        contentGenerator
	log           *slog.Logger
	contentConfig *genai.GenerateContentConfig
	modelName     string
}

// NewClient creates a new Gemini client with the provided configuration.
// It only builds the SDK client, credentials are checked on the first call.
func NewClient(ctx context.Context, cfg config.GeminiConfig, log *slog.Logger) (Client, error) {
	if cfg.APIKey == "" {
		return nil, errs.NewConfigError("gemini API key is required", nil)
	}

	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errs.NewGenerationError("failed to create genai client", err)
	}

	c := newClient(gi.Models, cfg, log)
	c.log.Info("Gemini client initialized successfully", "model", cfg.Model)
	return c, nil
}

func newClient(models contentGenerator, cfg config.GeminiConfig, log *slog.Logger) *sdkClient {
	if log == nil {
		log = slog.Default()
	}

	baseCfg := &genai.GenerateContentConfig{}
	if cfg.Temperature != nil {
		temperature := *cfg.Temperature
		baseCfg.Temperature = &temperature
	}

	return &sdkClient{
		models:        models,
		log:           log.With("component", "gemini_client"),
		contentConfig: baseCfg,
		modelName:     cfg.Model,
	}
}

// Generate sends one flattened prompt and returns the reply text.
// Credential rejections are returned as AuthError, everything else as
// GenerationError.
func (c *sdkClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	prompt := BuildPrompt(systemPrompt, userPrompt)
	c.log.DebugContext(ctx, "Generating reply", "model", c.modelName, "prompt_length", len(prompt))

	copyCfg := *c.contentConfig
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	resp, err := c.models.GenerateContent(ctx, c.modelName, contents, &copyCfg)
	if err != nil {
		c.log.ErrorContext(ctx, "Gemini API call failed", "error", err)
		return "", classifyError(err)
	}

	return c.extractText(ctx, resp)
}

func (c *sdkClient) extractText(ctx context.Context, resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", errs.NewGenerationError("gemini returned no response", nil)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified && resp.PromptFeedback.BlockReason != "" {
		reasonMsg := string(resp.PromptFeedback.BlockReason)
		if resp.PromptFeedback.BlockReasonMessage != "" {
			reasonMsg = resp.PromptFeedback.BlockReasonMessage
		}
		c.log.ErrorContext(ctx, "Gemini request blocked", "reason", reasonMsg)
		return "", errs.NewGenerationError(fmt.Sprintf("request blocked by safety filter: %s", reasonMsg), nil)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		finishReason := "unknown"
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != genai.FinishReasonUnspecified && resp.Candidates[0].FinishReason != "" {
			finishReason = string(resp.Candidates[0].FinishReason)
		}
		c.log.WarnContext(ctx, "Gemini response missing candidates or content", "finish_reason", finishReason)
		return "", errs.NewGenerationError(fmt.Sprintf("gemini returned no content, finish reason: %s", finishReason), nil)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		c.log.WarnContext(ctx, "Gemini response has no text payload")
		return "", errs.NewGenerationError("gemini response has no text", nil)
	}

	return text, nil
}

// classifyError maps SDK failures onto the error taxonomy.
func classifyError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return errs.NewGenerationError("gemini request cancelled", err)
	}

	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		apiErr = *apiErrPtr
	default:
		return errs.NewGenerationError("gemini API call failed", err)
	}

	switch {
	case isAuthFailure(apiErr):
		return errs.NewAuthError(ServiceName, "gemini rejected the API key", err)
	case apiErr.Code == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED":
		return errs.NewGenerationError("gemini quota exhausted", err)
	default:
		return errs.NewGenerationError(fmt.Sprintf("gemini API call failed (code %d)", apiErr.Code), err)
	}
}

func isAuthFailure(apiErr genai.APIError) bool {
	switch {
	case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden:
		return true
	case apiErr.Status == "UNAUTHENTICATED" || apiErr.Status == "PERMISSION_DENIED":
		return true
	case apiErr.Code == http.StatusBadRequest && strings.Contains(strings.ToLower(apiErr.Message), "api key"):
		return true
	}
	return false
}

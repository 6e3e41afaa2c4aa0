package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"taskpilot/internal/apperror"
	"taskpilot/internal/config"
	"taskpilot/internal/logging"
	"taskpilot/internal/task"
)

// GeminiClient implements Backend for the Gemini API through the genai SDK.
type GeminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGeminiClient creates a client from provider settings. The key must be
// set; see RequireKey.
func NewGeminiClient(ctx context.Context, settings config.ProviderSettings, timeout time.Duration) (*GeminiClient, error) {
	if err := RequireKey(config.ProviderGemini, settings); err != nil {
		return nil, err
	}

	cc := &genai.ClientConfig{
		APIKey:     settings.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout},
	}
	if settings.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: settings.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, apperror.Provider("gemini", fmt.Errorf("failed to create GenAI client: %w", err))
	}

	return &GeminiClient{
		client:  client,
		model:   settings.Model,
		timeout: timeout,
	}, nil
}

func (c *GeminiClient) Provider() string { return config.ProviderGemini }
func (c *GeminiClient) Model() string    { return c.model }
func (c *GeminiClient) name() string     { return "Gemini" }

func (c *GeminiClient) OrganizeNotes(ctx context.Context, notes string, groupByCategory bool) ([]task.Task, error) {
	return organizeNotes(ctx, c, notes, groupByCategory)
}

func (c *GeminiClient) SuggestTitle(ctx context.Context, title, details string) (string, error) {
	return suggestTitle(ctx, c, title, details)
}

func (c *GeminiClient) StatusReport(ctx context.Context, completed, inProgress string) (StatusSummary, error) {
	return statusReport(ctx, c, completed, inProgress)
}

func (c *GeminiClient) TaskStatuses(ctx context.Context, items []task.StatusItem) ([]string, error) {
	return taskStatuses(ctx, c, items)
}

// complete sends the system and user prompts as one user turn and asks for
// a JSON response.
func (c *GeminiClient) complete(ctx context.Context, systemPrompt, userPrompt string, temperature float32) (string, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	timer := logging.StartTimer(logging.CategoryProvider, "gemini.complete")
	defer timer.Stop()
	logging.ProviderDebug("[Gemini] complete: model=%s system_len=%d user_len=%d", c.model, len(systemPrompt), len(userPrompt))

	temp := temperature
	resp, err := c.client.Models.GenerateContent(ctx,
		c.model,
		genai.Text(systemPrompt+"\n\n"+userPrompt),
		&genai.GenerateContentConfig{
			Temperature:      &temp,
			ResponseMIMEType: "application/json",
		},
	)
	if err != nil {
		logging.ProviderError("[Gemini] complete: %v", err)
		return "", apperror.Provider("gemini", fmt.Errorf("GenAI generate failed: %w", err))
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", apperror.ProviderMessage("gemini", "no candidates returned")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(sb.String()), nil
}

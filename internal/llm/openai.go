package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"taskpilot/internal/apperror"
	"taskpilot/internal/config"
	"taskpilot/internal/logging"
	"taskpilot/internal/task"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIClient implements Backend for the OpenAI chat completions API.
type OpenAIClient struct {
	apiKey     string
	baseURL    string
	model      string
	timeout    time.Duration
	httpClient *http.Client
}

// openAIMessage represents a chat message.
type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponseFormat struct {
	Type string `json:"type"`
}

// openAIRequest represents the chat completions request.
type openAIRequest struct {
	Model          string                `json:"model"`
	Messages       []openAIMessage       `json:"messages"`
	Temperature    float32               `json:"temperature"`
	ResponseFormat *openAIResponseFormat `json:"response_format,omitempty"`
}

// openAIResponse represents the chat completions response.
type openAIResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewOpenAIClient creates a client from provider settings. The key must be
// set; see RequireKey.
func NewOpenAIClient(settings config.ProviderSettings, timeout time.Duration) (*OpenAIClient, error) {
	if err := RequireKey(config.ProviderOpenAI, settings); err != nil {
		return nil, err
	}
	baseURL := strings.TrimRight(settings.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	return &OpenAIClient{
		apiKey:  settings.APIKey,
		baseURL: baseURL,
		model:   settings.Model,
		timeout: timeout,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

func (c *OpenAIClient) Provider() string { return config.ProviderOpenAI }
func (c *OpenAIClient) Model() string    { return c.model }
func (c *OpenAIClient) name() string     { return "OpenAI" }

func (c *OpenAIClient) OrganizeNotes(ctx context.Context, notes string, groupByCategory bool) ([]task.Task, error) {
	return organizeNotes(ctx, c, notes, groupByCategory)
}

func (c *OpenAIClient) SuggestTitle(ctx context.Context, title, details string) (string, error) {
	return suggestTitle(ctx, c, title, details)
}

func (c *OpenAIClient) StatusReport(ctx context.Context, completed, inProgress string) (StatusSummary, error) {
	return statusReport(ctx, c, completed, inProgress)
}

func (c *OpenAIClient) TaskStatuses(ctx context.Context, items []task.StatusItem) ([]string, error) {
	return taskStatuses(ctx, c, items)
}

// complete sends one chat completion in JSON mode and returns the message
// content.
func (c *OpenAIClient) complete(ctx context.Context, systemPrompt, userPrompt string, temperature float32) (string, error) {
	// Auto-apply timeout if context has no deadline
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	timer := logging.StartTimer(logging.CategoryProvider, "openai.complete")
	defer timer.Stop()
	logging.ProviderDebug("[OpenAI] complete: model=%s system_len=%d user_len=%d", c.model, len(systemPrompt), len(userPrompt))

	reqBody := openAIRequest{
		Model: c.model,
		Messages: []openAIMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature:    temperature,
		ResponseFormat: &openAIResponseFormat{Type: "json_object"},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", apperror.Provider("openai", fmt.Errorf("failed to marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return "", apperror.Provider("openai", fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.ProviderError("[OpenAI] complete: request failed: %v", err)
		return "", apperror.Provider("openai", fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperror.Provider("openai", fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logging.ProviderError("[OpenAI] complete: status %d", resp.StatusCode)
		return "", apperror.ProviderStatus("openai", resp.StatusCode, string(body))
	}

	var openaiResp openAIResponse
	if err := json.Unmarshal(body, &openaiResp); err != nil {
		return "", apperror.Provider("openai", fmt.Errorf("failed to parse response: %w", err))
	}
	if openaiResp.Error != nil {
		return "", apperror.ProviderMessage("openai", "API error: %s", openaiResp.Error.Message)
	}
	if len(openaiResp.Choices) == 0 {
		return "", apperror.ProviderMessage("openai", "no completion returned")
	}

	return strings.TrimSpace(openaiResp.Choices[0].Message.Content), nil
}

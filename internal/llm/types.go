// Package llm adapts remote text-generation providers to the four task
// operations taskpilot needs: organizing notes, suggesting a title, writing
// a team status report and writing per-task status lines.
//
// Every operation performs exactly one provider call and never retries.
// Failures come back as *apperror.Error values of KindProvider (or
// KindConfiguration for a missing credential); falling back to the
// heuristic is the caller's job.
package llm

import (
	"context"

	"taskpilot/internal/config"
	"taskpilot/internal/task"
)

// Backend is one configured provider.
type Backend interface {
	// Provider returns the provider name, e.g. "openai".
	Provider() string
	// Model returns the model identifier requests are sent to.
	Model() string

	// OrganizeNotes returns the provider's tasks as loosely decoded records
	// converted to task.Task. The caller sanitizes them.
	OrganizeNotes(ctx context.Context, notes string, groupByCategory bool) ([]task.Task, error)
	SuggestTitle(ctx context.Context, title, details string) (string, error)
	StatusReport(ctx context.Context, completed, inProgress string) (StatusSummary, error)
	// TaskStatuses returns one raw line per returned update, unnumbered.
	TaskStatuses(ctx context.Context, items []task.StatusItem) ([]string, error)
}

// StatusSummary is a two-section status report.
type StatusSummary struct {
	Completed  string `json:"completed"`
	InProgress string `json:"inProgress"`
}

// completer is the single transport primitive each provider implements.
type completer interface {
	complete(ctx context.Context, systemPrompt, userPrompt string, temperature float32) (string, error)
	// name is the short provider name used in error messages.
	name() string
}

var providerLabels = map[string]string{
	config.ProviderOpenAI: "OpenAI",
	config.ProviderGemini: "Google Gemini",
	config.ProviderMock:   "Heuristic",
	"heuristic":           "Heuristic",
}

// Label returns the human-readable label for a provider name.
func Label(provider string) string {
	if l, ok := providerLabels[provider]; ok {
		return l
	}
	return provider
}

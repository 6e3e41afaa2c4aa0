package organizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"taskpilot/internal/apperror"
	"taskpilot/internal/config"
	"taskpilot/internal/llm"
	"taskpilot/internal/logging"
	"taskpilot/internal/task"
)

type fakeBackend struct {
	tasks   []task.Task
	title   string
	summary llm.StatusSummary
	lines   []string
	err     error

	calls         int
	gotCompleted  string
	gotInProgress string
	gotItems      []task.StatusItem
}

func (f *fakeBackend) Provider() string { return config.ProviderOpenAI }
func (f *fakeBackend) Model() string    { return "fake-model" }

func (f *fakeBackend) OrganizeNotes(ctx context.Context, notes string, group bool) ([]task.Task, error) {
	f.calls++
	return f.tasks, f.err
}

func (f *fakeBackend) SuggestTitle(ctx context.Context, title, details string) (string, error) {
	f.calls++
	return f.title, f.err
}

func (f *fakeBackend) StatusReport(ctx context.Context, completed, inProgress string) (llm.StatusSummary, error) {
	f.calls++
	f.gotCompleted, f.gotInProgress = completed, inProgress
	return f.summary, f.err
}

func (f *fakeBackend) TaskStatuses(ctx context.Context, items []task.StatusItem) ([]string, error) {
	f.calls++
	f.gotItems = items
	return f.lines, f.err
}

func openAIConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.LLM.Provider = config.ProviderOpenAI
	cfg.LLM.OpenAI.APIKey = "test-key"
	return cfg
}

// newWithFake returns an orchestrator whose backend cache always builds fake.
func newWithFake(cfg *config.Config, fake *fakeBackend) (*Orchestrator, *int) {
	built := 0
	cache := llm.NewCache(func(ctx context.Context, provider string, s config.ProviderSettings, timeout time.Duration) (llm.Backend, error) {
		built++
		return fake, nil
	})
	return New(cfg, WithCache(cache)), &built
}

func observeWarnings(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.WarnLevel)
	t.Cleanup(logging.Replace(zap.New(core)))
	return logs
}

func TestValidateNotes(t *testing.T) {
	_, err := ValidateNotes("", 0)
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.EqualError(t, err, "Provide at least one task note.")

	_, err = ValidateNotes("  \n\t ", 0)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = ValidateNotes(strings.Repeat("a", 9000), 0)
	assert.ErrorIs(t, err, apperror.ErrPayloadTooLarge)
	assert.EqualError(t, err, "Notes payload is too long. Limit to 8,000 characters.")

	text, err := ValidateNotes("  "+strings.Repeat("a", 8000)+"  ", 0)
	require.NoError(t, err)
	assert.Len(t, text, 8000)

	// Length is counted in characters, not bytes.
	_, err = ValidateNotes(strings.Repeat("é", 8000), 0)
	assert.NoError(t, err)

	_, err = ValidateNotes("abcdef", 5)
	assert.ErrorIs(t, err, apperror.ErrPayloadTooLarge)
}

func TestOrganize_Mock(t *testing.T) {
	o := New(nil)

	org, err := o.Organize(context.Background(), "Finish PPT, check AWS logs, call client", true)
	require.NoError(t, err)

	assert.Equal(t, config.ProviderMock, org.Provider)
	assert.Equal(t, "Heuristic", org.ProviderLabel)
	assert.True(t, org.Grouped)
	assert.Empty(t, org.Warning)
	require.Len(t, org.Tasks, 3)
	assert.Equal(t, "Call client", org.Tasks[2].Title)
	assert.Equal(t, task.PriorityHigh, org.Tasks[2].Priority)
}

func TestOrganize_UnknownProviderUsesHeuristic(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LLM.Provider = "anthropic"

	org, err := New(cfg).Organize(context.Background(), "write report", false)
	require.NoError(t, err)
	assert.Equal(t, config.ProviderMock, org.Provider)
	assert.Len(t, org.Tasks, 1)
}

func TestOrganize_EmptyNotes(t *testing.T) {
	_, err := New(nil).Organize(context.Background(), "   ", true)
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestOrganize_TooLong(t *testing.T) {
	_, err := New(nil).Organize(context.Background(), strings.Repeat("x", 9000), true)
	assert.ErrorIs(t, err, apperror.ErrPayloadTooLarge)
}

func TestOrganize_MissingKeyIsConfigurationError(t *testing.T) {
	cfg := openAIConfig()
	cfg.LLM.OpenAI.APIKey = ""
	fake := &fakeBackend{}
	o, built := newWithFake(cfg, fake)

	_, err := o.Organize(context.Background(), "call client", true)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrConfiguration)
	assert.Equal(t, "OpenAI API key is not configured. Set OPENAI_API_KEY or switch MODEL_PROVIDER to mock.", err.Error())
	assert.Zero(t, *built)
	assert.Zero(t, fake.calls)
}

func TestOrganize_RemoteSuccess(t *testing.T) {
	fake := &fakeBackend{tasks: []task.Task{
		{Title: "  Ship release ", Priority: "high", Status: "done", Notes: []string{" a ", ""}},
		{Title: "", Category: " "},
	}}
	o, _ := newWithFake(openAIConfig(), fake)

	org, err := o.Organize(context.Background(), "ship it", false)
	require.NoError(t, err)

	assert.Equal(t, config.ProviderOpenAI, org.Provider)
	assert.Equal(t, "OpenAI", org.ProviderLabel)
	assert.Equal(t, "fake-model", org.Model)
	assert.False(t, org.Grouped)
	assert.Empty(t, org.Warning)

	require.Len(t, org.Tasks, 2)
	assert.Equal(t, "Ship release", org.Tasks[0].Title)
	assert.Equal(t, task.PriorityHigh, org.Tasks[0].Priority)
	assert.Equal(t, task.StatusCompleted, org.Tasks[0].Status)
	assert.Equal(t, []string{"a"}, org.Tasks[0].Notes)
	assert.Equal(t, task.DefaultTitle, org.Tasks[1].Title)
	assert.Equal(t, task.DefaultCategory, org.Tasks[1].Category)
	assert.Equal(t, task.PriorityMedium, org.Tasks[1].Priority)
}

func TestOrganize_RemoteFailureFallsBack(t *testing.T) {
	logs := observeWarnings(t)
	fake := &fakeBackend{err: apperror.ProviderStatus("openai", 500, "boom")}
	o, _ := newWithFake(openAIConfig(), fake)

	org, err := o.Organize(context.Background(), "Finish PPT, check AWS logs, call client", true)
	require.NoError(t, err)

	assert.Equal(t, config.ProviderOpenAI, org.Provider)
	assert.Equal(t, "OpenAI (fallback heuristics)", org.ProviderLabel)
	assert.Equal(t, "API request failed with status 500: boom", org.Warning)
	assert.Len(t, org.Tasks, 3)
	assert.Equal(t, 1, fake.calls)
	assert.Equal(t, 1, logs.FilterMessageSnippet("using heuristic fallback").Len())
}

func TestOrganize_ZeroTasksFallsBack(t *testing.T) {
	fake := &fakeBackend{tasks: []task.Task{}}
	o, _ := newWithFake(openAIConfig(), fake)

	org, err := o.Organize(context.Background(), "call client", true)
	require.NoError(t, err)
	assert.Equal(t, "Model returned no tasks.", org.Warning)
	assert.Equal(t, "OpenAI (fallback heuristics)", org.ProviderLabel)
	require.Len(t, org.Tasks, 1)
	assert.Equal(t, "Call client", org.Tasks[0].Title)
}

func TestOrganize_BackendBuildFailureFallsBack(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LLM.Provider = config.ProviderGemini
	cfg.LLM.Gemini.APIKey = "k"
	cache := llm.NewCache(func(ctx context.Context, provider string, s config.ProviderSettings, timeout time.Duration) (llm.Backend, error) {
		return nil, apperror.Provider("gemini", errors.New("dial failed"))
	})

	org, err := New(cfg, WithCache(cache)).Organize(context.Background(), "plan sprint", true)
	require.NoError(t, err)
	assert.Equal(t, "Google Gemini (fallback heuristics)", org.ProviderLabel)
	assert.Equal(t, "dial failed", org.Warning)
	assert.Len(t, org.Tasks, 1)
}

func TestOrganize_CapsTasks(t *testing.T) {
	tasks := make([]task.Task, 150)
	for i := range tasks {
		tasks[i] = task.Task{Title: fmt.Sprintf("task %d", i)}
	}
	o, _ := newWithFake(openAIConfig(), &fakeBackend{tasks: tasks})

	org, err := o.Organize(context.Background(), "many", true)
	require.NoError(t, err)
	assert.Len(t, org.Tasks, task.MaxTasks)
}

func TestOrganize_ReusesBackend(t *testing.T) {
	fake := &fakeBackend{tasks: []task.Task{{Title: "x"}}}
	o, built := newWithFake(openAIConfig(), fake)

	for i := 0; i < 3; i++ {
		_, err := o.Organize(context.Background(), "x", true)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, *built)
	assert.Equal(t, 3, fake.calls)
}

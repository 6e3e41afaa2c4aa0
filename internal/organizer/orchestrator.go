// Package organizer chooses between the configured remote model and the
// heuristic and turns either result into sanitized tasks.
//
// Provider failures never reach the caller. Every operation tries the
// configured backend once, logs a warning on failure and answers from the
// heuristic instead, recording the failure in the result's Warning. Only
// validation, payload size and missing credentials are returned as errors.
package organizer

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"taskpilot/internal/apperror"
	"taskpilot/internal/config"
	"taskpilot/internal/heuristic"
	"taskpilot/internal/llm"
	"taskpilot/internal/logging"
	"taskpilot/internal/task"
)

const (
	defaultMaxNotesLength = 8000
	defaultMaxStatusTasks = 50

	fallbackSuffix = " (fallback heuristics)"
)

var numberPrinter = message.NewPrinter(language.English)

// Orchestrator runs the organize pipeline and the ancillary text operations
// against the configured provider.
type Orchestrator struct {
	cfg      *config.Config
	backends *llm.Cache
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithCache shares a backend cache between orchestrators, or injects one
// built on a custom factory.
func WithCache(cache *llm.Cache) Option {
	return func(o *Orchestrator) {
		o.backends = cache
	}
}

// New creates an Orchestrator. A nil config means config.DefaultConfig().
func New(cfg *config.Config, opts ...Option) *Orchestrator {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	o := &Orchestrator{cfg: cfg}
	for _, opt := range opts {
		opt(o)
	}
	if o.backends == nil {
		o.backends = llm.NewCache(nil)
	}
	return o
}

// Provider returns the provider every call will try first.
func (o *Orchestrator) Provider() string {
	return o.cfg.LLM.ResolveProvider()
}

// ValidateNotes trims notes and checks them against the length limit,
// counted in characters. A non-positive limit means the default of 8000.
func ValidateNotes(notes string, limit int) (string, error) {
	if limit <= 0 {
		limit = defaultMaxNotesLength
	}
	text := strings.TrimSpace(notes)
	if text == "" {
		return "", apperror.Validation("organize", "Provide at least one task note.")
	}
	if utf8.RuneCountInString(text) > limit {
		return "", apperror.PayloadTooLarge("organize",
			"Notes payload is too long. Limit to %s characters.", numberPrinter.Sprintf("%d", limit))
	}
	return text, nil
}

// Organize converts notes into sanitized tasks.
func (o *Orchestrator) Organize(ctx context.Context, notes string, groupByCategory bool) (*task.Organization, error) {
	text, err := ValidateNotes(notes, o.cfg.Organizer.MaxNotesLength)
	if err != nil {
		return nil, err
	}

	timer := logging.StartTimer(logging.CategoryOrganizer, "organize")
	defer timer.StopWithThreshold(o.cfg.GetLLMTimeout())

	provider := o.Provider()
	var org task.Organization

	if provider == config.ProviderMock {
		org = heuristic.Organize(text, groupByCategory)
		org.Provider = provider
	} else {
		backend, err := o.backend(ctx, provider)
		if isConfiguration(err) {
			return nil, err
		}

		var model string
		var tasks []task.Task
		if err == nil {
			model = backend.Model()
			tasks, err = backend.OrganizeNotes(ctx, text, groupByCategory)
			if err == nil && len(tasks) == 0 {
				err = apperror.ProviderMessage("organize", "Model returned no tasks.")
			}
		}

		if err != nil {
			logging.OrganizerWarn("LLM provider %s failed, using heuristic fallback: %v", provider, err)
			org = heuristic.Organize(text, groupByCategory)
			org.ProviderLabel = llm.Label(provider) + fallbackSuffix
			org.Warning = err.Error()
		} else {
			org = task.Organization{
				Tasks:         tasks,
				Grouped:       groupByCategory,
				ProviderLabel: llm.Label(provider),
			}
		}
		org.Provider = provider
		org.Model = model
	}

	org.Tasks = task.SanitizeAll(org.Tasks)
	logging.Organizer("organized %d tasks via %s", len(org.Tasks), org.ProviderLabel)
	return &org, nil
}

// backend returns the cached backend for provider. A missing key is a
// configuration error and is never cached.
func (o *Orchestrator) backend(ctx context.Context, provider string) (llm.Backend, error) {
	settings := o.cfg.LLM.Settings(provider)
	if err := llm.RequireKey(provider, settings); err != nil {
		return nil, err
	}
	return o.backends.Get(ctx, provider, settings, o.cfg.GetLLMTimeout())
}

func (o *Orchestrator) maxStatusTasks() int {
	if o.cfg.Organizer.MaxStatusTasks > 0 {
		return o.cfg.Organizer.MaxStatusTasks
	}
	return defaultMaxStatusTasks
}

func isConfiguration(err error) bool {
	return err != nil && errors.Is(err, apperror.ErrConfiguration)
}

package llm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"taskpilot/internal/apperror"
	"taskpilot/internal/config"
	"taskpilot/internal/logging"
)

// RequireKey returns a configuration error when a remote provider has no
// API key. The mock provider never needs one.
func RequireKey(provider string, settings config.ProviderSettings) error {
	if settings.APIKey != "" {
		return nil
	}
	switch provider {
	case config.ProviderOpenAI:
		return apperror.Configuration("require_key", "OpenAI API key is not configured. Set OPENAI_API_KEY or switch MODEL_PROVIDER to mock.")
	case config.ProviderGemini:
		return apperror.Configuration("require_key", "Gemini API key is not configured. Set GEMINI_API_KEY or switch MODEL_PROVIDER to mock.")
	default:
		return nil
	}
}

// NewBackend creates a Backend for a remote provider.
func NewBackend(ctx context.Context, provider string, settings config.ProviderSettings, timeout time.Duration) (Backend, error) {
	switch provider {
	case config.ProviderOpenAI:
		c, err := NewOpenAIClient(settings, timeout)
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.ProviderGemini:
		c, err := NewGeminiClient(ctx, settings, timeout)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

// BackendFactory builds a backend; Cache uses NewBackend unless told otherwise.
type BackendFactory func(ctx context.Context, provider string, settings config.ProviderSettings, timeout time.Duration) (Backend, error)

// Cache reuses backends across calls with an identical configuration.
// It is safe for concurrent use.
type Cache struct {
	mu       sync.Mutex
	backends map[string]Backend
	factory  BackendFactory
}

// NewCache creates an empty cache. A nil factory means NewBackend.
func NewCache(factory BackendFactory) *Cache {
	if factory == nil {
		factory = NewBackend
	}
	return &Cache{
		backends: make(map[string]Backend),
		factory:  factory,
	}
}

// Get returns the cached backend for this configuration, building it on
// first use. Construction errors are not cached.
func (c *Cache) Get(ctx context.Context, provider string, settings config.ProviderSettings, timeout time.Duration) (Backend, error) {
	key := settings.Fingerprint(provider, timeout)

	c.mu.Lock()
	defer c.mu.Unlock()

	if b, ok := c.backends[key]; ok {
		return b, nil
	}

	b, err := c.factory(ctx, provider, settings, timeout)
	if err != nil {
		return nil, err
	}
	logging.ProviderDebug("backend cache: created %s client model=%s", provider, settings.Model)
	c.backends[key] = b
	return b, nil
}

// Len returns the number of cached backends.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.backends)
}

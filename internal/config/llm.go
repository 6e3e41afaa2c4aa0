package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Supported provider names.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderMock   = "mock"
)

// ValidProviders lists all supported model providers.
var ValidProviders = []string{ProviderOpenAI, ProviderGemini, ProviderMock}

// LLMConfig selects the remote model used to organize notes.
type LLMConfig struct {
	Provider string `yaml:"provider"` // openai, gemini, mock
	Timeout  string `yaml:"timeout"`

	OpenAI ProviderSettings `yaml:"openai"`
	Gemini ProviderSettings `yaml:"gemini"`
}

// ProviderSettings holds credentials and endpoint for one provider.
type ProviderSettings struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// ResolveProvider normalizes the configured provider. Anything unknown
// resolves to the mock provider.
func (c LLMConfig) ResolveProvider() string {
	p := strings.ToLower(strings.TrimSpace(c.Provider))
	for _, valid := range ValidProviders {
		if p == valid {
			return p
		}
	}
	return ProviderMock
}

// Settings returns the settings block for a provider. The mock provider has
// none.
func (c LLMConfig) Settings(provider string) ProviderSettings {
	switch provider {
	case ProviderOpenAI:
		return c.OpenAI
	case ProviderGemini:
		return c.Gemini
	default:
		return ProviderSettings{}
	}
}

// GetTimeout returns the per-call timeout, 20s when unset or invalid.
func (c LLMConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 20 * time.Second
	}
	return d
}

// Fingerprint identifies a client configuration. Two calls with the same
// fingerprint may share a client.
func (s ProviderSettings) Fingerprint(provider string, timeout time.Duration) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%s|%s", provider, s.APIKey, s.Model, s.BaseURL, timeout)
	return hex.EncodeToString(h.Sum(nil))
}

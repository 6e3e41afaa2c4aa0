package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is looked up in the working directory when no path is given.
const DefaultConfigFile = "taskpilot.yaml"

// Config holds all taskpilot configuration.
type Config struct {
	// Core settings
	Name string `yaml:"name"`

	// Remote model selection and credentials
	LLM LLMConfig `yaml:"llm"`

	// Task repository
	Store StoreConfig `yaml:"store"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`

	// Organizer limits
	Organizer OrganizerConfig `yaml:"organizer"`
}

// StoreConfig configures the SQLite task repository.
type StoreConfig struct {
	DatabasePath string `yaml:"database_path"`
	BusyTimeout  string `yaml:"busy_timeout"`
}

// OrganizerConfig bounds organizer input.
type OrganizerConfig struct {
	// Maximum note length in characters (default: 8000)
	MaxNotesLength int `yaml:"max_notes_length"`

	// Maximum tasks sent for per-task status generation (default: 50)
	MaxStatusTasks int `yaml:"max_status_tasks"`

	// Concurrent owners organized by the batch command (default: 4)
	BatchConcurrency int `yaml:"batch_concurrency"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name: "taskpilot",

		LLM: LLMConfig{
			Provider: ProviderMock,
			Timeout:  "20s",
			OpenAI: ProviderSettings{
				Model:   "gpt-4o-mini",
				BaseURL: "https://api.openai.com/v1",
			},
			Gemini: ProviderSettings{
				Model: "gemini-1.5-flash",
			},
		},

		Store: StoreConfig{
			DatabasePath: "data/taskpilot.db",
			BusyTimeout:  "5s",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},

		Organizer: OrganizerConfig{
			MaxNotesLength:   8000,
			MaxStatusTasks:   50,
			BatchConcurrency: 4,
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides apply in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if p := os.Getenv("MODEL_PROVIDER"); p != "" {
		c.LLM.Provider = p
	}

	// OpenAI
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.LLM.OpenAI.APIKey = key
	}
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		c.LLM.OpenAI.Model = model
	}
	if url := os.Getenv("OPENAI_BASE_URL"); url != "" {
		c.LLM.OpenAI.BaseURL = url
	}

	// Gemini
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.Gemini.APIKey = key
	}
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		c.LLM.Gemini.Model = model
	}
	if url := os.Getenv("GEMINI_BASE_URL"); url != "" {
		c.LLM.Gemini.BaseURL = url
	}

	// Plain integers are seconds.
	if timeout := os.Getenv("LLM_TIMEOUT"); timeout != "" {
		if secs, err := strconv.Atoi(timeout); err == nil {
			timeout = (time.Duration(secs) * time.Second).String()
		}
		c.LLM.Timeout = timeout
	}

	if path := os.Getenv("TASKPILOT_DB"); path != "" {
		c.Store.DatabasePath = path
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// GetLLMTimeout returns the per-call model timeout as a duration.
func (c *Config) GetLLMTimeout() time.Duration {
	return c.LLM.GetTimeout()
}

// GetBusyTimeout returns the SQLite busy timeout as a duration.
func (c *Config) GetBusyTimeout() time.Duration {
	d, err := time.ParseDuration(c.Store.BusyTimeout)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

// Validate validates the configuration.
//
// Unknown providers are not an error here; they resolve to the mock
// provider at request time.
func (c *Config) Validate() error {
	if c.LLM.Timeout != "" {
		if d, err := time.ParseDuration(c.LLM.Timeout); err != nil || d <= 0 {
			return fmt.Errorf("invalid llm timeout: %q", c.LLM.Timeout)
		}
	}
	if c.Organizer.MaxNotesLength <= 0 {
		return fmt.Errorf("organizer max_notes_length must be positive, got %d", c.Organizer.MaxNotesLength)
	}
	if c.Organizer.MaxStatusTasks <= 0 {
		return fmt.Errorf("organizer max_status_tasks must be positive, got %d", c.Organizer.MaxStatusTasks)
	}
	if c.Organizer.BatchConcurrency <= 0 {
		return fmt.Errorf("organizer batch_concurrency must be positive, got %d", c.Organizer.BatchConcurrency)
	}
	if c.Store.DatabasePath == "" {
		return fmt.Errorf("store database_path not configured (set TASKPILOT_DB)")
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("invalid logging format: %s (valid: json, console)", c.Logging.Format)
	}
	return nil
}

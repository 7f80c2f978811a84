package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/crmfind/internal/domain"
)

// Config holds the crmfind API configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	LLM      LLMConfig      `yaml:"llm"`
	Search   SearchConfig   `yaml:"search"`
	Auth     AuthConfig     `yaml:"auth"`
	Storage  StorageConfig  `yaml:"storage"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// LLMConfig holds completion provider settings.
type LLMConfig struct {
	Providers  map[string]ProviderConfig `yaml:"providers"`
	Completion CompletionConfig          `yaml:"completion"`
}

// ProviderConfig holds an OpenAI-compatible provider endpoint.
type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// CompletionConfig selects the provider and model used for search.
type CompletionConfig struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	TimeoutSec  int     `yaml:"timeout_sec"`
}

// SearchConfig holds search pipeline settings.
type SearchConfig struct {
	DealLimit    int `yaml:"deal_limit"`
	ContactLimit int `yaml:"contact_limit"`
	EventLimit   int `yaml:"event_limit"`

	CacheTTLSec      int `yaml:"cache_ttl_sec"`
	SweepIntervalSec int `yaml:"sweep_interval_sec"`

	HighValueMin         float64 `yaml:"high_value_min"`
	AtRiskProbabilityMax int     `yaml:"at_risk_probability_max"`
	StaleContactDays     int     `yaml:"stale_contact_days"`
	UpcomingEventDays    int     `yaml:"upcoming_event_days"`
}

// Thresholds converts the configured interpretation limits to domain form.
func (s *SearchConfig) Thresholds() domain.Thresholds {
	return domain.Thresholds{
		HighValueMin:         s.HighValueMin,
		AtRiskProbabilityMax: s.AtRiskProbabilityMax,
		StaleContactDays:     s.StaleContactDays,
		UpcomingEventDays:    s.UpcomingEventDays,
	}
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.LLM.Completion.Model == "" {
		c.LLM.Completion.Model = "gpt-4o-mini"
	}
	if c.LLM.Completion.MaxTokens <= 0 {
		c.LLM.Completion.MaxTokens = 2000
	}
	if c.LLM.Completion.TimeoutSec <= 0 {
		c.LLM.Completion.TimeoutSec = 30
	}
	if c.Search.DealLimit <= 0 {
		c.Search.DealLimit = 100
	}
	if c.Search.ContactLimit <= 0 {
		c.Search.ContactLimit = 100
	}
	if c.Search.EventLimit <= 0 {
		c.Search.EventLimit = 50
	}
	if c.Search.CacheTTLSec <= 0 {
		c.Search.CacheTTLSec = 300
	}
	if c.Search.SweepIntervalSec <= 0 {
		c.Search.SweepIntervalSec = 60
	}
	if c.Search.HighValueMin <= 0 {
		c.Search.HighValueMin = 50000
	}
	if c.Search.AtRiskProbabilityMax <= 0 {
		c.Search.AtRiskProbabilityMax = 30
	}
	if c.Search.StaleContactDays <= 0 {
		c.Search.StaleContactDays = 30
	}
	if c.Search.UpcomingEventDays <= 0 {
		c.Search.UpcomingEventDays = 7
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "crmfind:"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.LLM.Completion.Provider == "" {
		return fmt.Errorf("llm.completion.provider is required")
	}
	if _, ok := c.LLM.Providers[c.LLM.Completion.Provider]; !ok {
		return fmt.Errorf("llm.completion.provider %q is not defined in llm.providers",
			c.LLM.Completion.Provider)
	}
	if c.LLM.Completion.Temperature < 0 || c.LLM.Completion.Temperature > 2 {
		return fmt.Errorf("llm.completion.temperature must be between 0 and 2, got %v",
			c.LLM.Completion.Temperature)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}

package config

import "testing"

func validConfig() Config {
	return Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
		LLM: LLMConfig{
			Providers: map[string]ProviderConfig{
				"openai": {APIKey: "test-key"},
			},
			Completion: CompletionConfig{Provider: "openai", Model: "gpt-4o-mini"},
		},
	}
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingDatabaseAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing database addrs")
	}
}

func TestValidate_MissingProvider(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.Completion.Provider = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing completion provider")
	}
}

func TestValidate_UnknownProvider(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.Completion.Provider = "anthropic"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for undefined provider")
	}
	expected := `llm.completion.provider "anthropic" is not defined in llm.providers`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_TemperatureRange(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.Completion.Temperature = 2.5

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for out-of-range temperature")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.LLM.Completion.Model != "gpt-4o-mini" {
		t.Errorf("expected default model, got %q", cfg.LLM.Completion.Model)
	}
	if cfg.LLM.Completion.MaxTokens != 2000 {
		t.Errorf("expected MaxTokens=2000, got %d", cfg.LLM.Completion.MaxTokens)
	}
	if cfg.LLM.Completion.TimeoutSec != 30 {
		t.Errorf("expected TimeoutSec=30, got %d", cfg.LLM.Completion.TimeoutSec)
	}
	if cfg.Search.DealLimit != 100 || cfg.Search.ContactLimit != 100 || cfg.Search.EventLimit != 50 {
		t.Errorf("unexpected record caps: %d/%d/%d",
			cfg.Search.DealLimit, cfg.Search.ContactLimit, cfg.Search.EventLimit)
	}
	if cfg.Search.CacheTTLSec != 300 || cfg.Search.SweepIntervalSec != 60 {
		t.Errorf("unexpected cache defaults: %d/%d", cfg.Search.CacheTTLSec, cfg.Search.SweepIntervalSec)
	}
	if cfg.Storage.KeyPrefix != "crmfind:" {
		t.Errorf("expected default key prefix, got %q", cfg.Storage.KeyPrefix)
	}
}

func TestThresholds(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	th := cfg.Search.Thresholds()
	if th.HighValueMin != 50000 {
		t.Errorf("expected HighValueMin=50000, got %v", th.HighValueMin)
	}
	if th.AtRiskProbabilityMax != 30 {
		t.Errorf("expected AtRiskProbabilityMax=30, got %d", th.AtRiskProbabilityMax)
	}
	if th.StaleContactDays != 30 {
		t.Errorf("expected StaleContactDays=30, got %d", th.StaleContactDays)
	}
	if th.UpcomingEventDays != 7 {
		t.Errorf("expected UpcomingEventDays=7, got %d", th.UpcomingEventDays)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("CRMFIND_TEST_VAR", "from-env")

	got := string(expandEnvVars([]byte("key: ${CRMFIND_TEST_VAR}")))
	if got != "key: from-env" {
		t.Errorf("expected substitution, got %q", got)
	}

	got = string(expandEnvVars([]byte("key: ${CRMFIND_UNSET_VAR:-fallback}")))
	if got != "key: fallback" {
		t.Errorf("expected default value, got %q", got)
	}
}

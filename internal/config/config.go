// Package config loads service configuration from defaults, an optional config file
// and the environment.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. APEX_SERVER_PORT.
const EnvPrefix = "APEX"

// Config holds the full application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`
	Redis    RedisConfig    `yaml:"redis" mapstructure:"redis"`
	LLM      LLMConfig      `yaml:"llm" mapstructure:"llm"`
	Advisor  AdvisorConfig  `yaml:"advisor" mapstructure:"advisor"`
	Chat     ChatConfig     `yaml:"chat" mapstructure:"chat"`
	Catalog  CatalogConfig  `yaml:"catalog" mapstructure:"catalog"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// DatabaseConfig configures PostgreSQL. An empty URL disables account features.
type DatabaseConfig struct {
	URL string `yaml:"url" mapstructure:"url"`
}

// RedisConfig configures the recommendation cache. An empty URL uses an in-memory cache.
type RedisConfig struct {
	URL string `yaml:"url" mapstructure:"url"`
}

// LLMConfig selects the generative provider and its credentials.
type LLMConfig struct {
	Provider     string `yaml:"provider" mapstructure:"provider"`
	GeminiAPIKey string `yaml:"gemini_api_key" mapstructure:"gemini_api_key"`
	OpenAIAPIKey string `yaml:"openai_api_key" mapstructure:"openai_api_key"`
}

// AdvisorConfig controls the recommendation narrative and caching.
type AdvisorConfig struct {
	Narrative            bool `yaml:"narrative" mapstructure:"narrative"`
	NarrativeTimeoutSecs int  `yaml:"narrative_timeout_secs" mapstructure:"narrative_timeout_secs"`
	CacheTTLMinutes      int  `yaml:"cache_ttl_minutes" mapstructure:"cache_ttl_minutes"`
}

// ChatConfig controls the assistant.
type ChatConfig struct {
	TimeoutSecs int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxHistory  int `yaml:"max_history" mapstructure:"max_history"`
}

// CatalogConfig points at an alternative plan catalog. Empty uses the embedded one.
type CatalogConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// LogConfig configures zap.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// APIKey returns the key for the configured provider.
func (c LLMConfig) APIKey() string {
	if c.Provider == "openai" {
		return c.OpenAIAPIKey
	}
	return c.GeminiAPIKey
}

// Load reads configuration. path may name a JSON or YAML file; when empty, an
// optional apex.yaml in the working directory is used.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("apex")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Conventional names used by hosting platforms and SDKs.
	bindings := map[string][]string{
		"database.url":       {"APEX_DATABASE_URL", "DATABASE_URL"},
		"redis.url":          {"APEX_REDIS_URL", "REDIS_URL"},
		"llm.gemini_api_key": {"APEX_LLM_GEMINI_API_KEY", "GEMINI_API_KEY"},
		"llm.openai_api_key": {"APEX_LLM_OPENAI_API_KEY", "OPENAI_API_KEY"},
		"server.port":        {"APEX_SERVER_PORT", "PORT"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, eris.Wrapf(err, "config: bind %s", key)
		}
	}

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("database.url", "")
	v.SetDefault("redis.url", "")
	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.gemini_api_key", "")
	v.SetDefault("llm.openai_api_key", "")
	v.SetDefault("advisor.narrative", false)
	v.SetDefault("advisor.narrative_timeout_secs", 8)
	v.SetDefault("advisor.cache_ttl_minutes", 60)
	v.SetDefault("chat.timeout_secs", 20)
	v.SetDefault("chat.max_history", 10)
	v.SetDefault("catalog.path", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks value ranges. Missing credentials are not errors: features that
// need them are disabled instead.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return eris.Errorf("config: server.port must be 1-65535, got %d", c.Server.Port)
	}
	switch c.LLM.Provider {
	case "gemini", "openai":
	default:
		return eris.Errorf("config: llm.provider must be gemini or openai, got %q", c.LLM.Provider)
	}
	if c.Advisor.NarrativeTimeoutSecs < 1 || c.Advisor.NarrativeTimeoutSecs > 60 {
		return eris.Errorf("config: advisor.narrative_timeout_secs must be 1-60, got %d", c.Advisor.NarrativeTimeoutSecs)
	}
	if c.Advisor.CacheTTLMinutes < 0 {
		return eris.Errorf("config: advisor.cache_ttl_minutes must be non-negative, got %d", c.Advisor.CacheTTLMinutes)
	}
	if c.Chat.TimeoutSecs < 1 {
		return eris.Errorf("config: chat.timeout_secs must be positive, got %d", c.Chat.TimeoutSecs)
	}
	if c.Chat.MaxHistory < 1 || c.Chat.MaxHistory > 50 {
		return eris.Errorf("config: chat.max_history must be 1-50, got %d", c.Chat.MaxHistory)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return eris.Errorf("config: log.format must be json or console, got %q", c.Log.Format)
	}
	return nil
}

// Package config loads application settings from the environment and an
// optional providers YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Settings holds all runtime configuration. Values come from environment
// variables (a local .env file is honored) with sensible defaults.
type Settings struct {
	// Authentication
	AuthToken string `mapstructure:"auth_token"`

	// OpenAI API, supports both direct OpenAI and Azure OpenAI
	OpenAIAPIKey string `mapstructure:"openai_api_key"`

	// Azure OpenAI settings (used when the endpoint is set)
	AzureOpenAIEndpoint   string `mapstructure:"azure_openai_endpoint"`
	AzureOpenAIDeployment string `mapstructure:"azure_openai_deployment"`
	AzureOpenAIAPIVersion string `mapstructure:"azure_openai_api_version"`

	// Model IDs per role
	ResponderModel string `mapstructure:"responder_model"`
	RouterModel    string `mapstructure:"router_model"`

	// Orchestration strategy: "routed" or "iterative"
	Strategy string `mapstructure:"strategy"`

	// Rate limiting
	RateLimitEnabled     bool `mapstructure:"rate_limit_enabled"`
	ChatRateLimitPerHour int  `mapstructure:"chat_rate_limit_per_hour"`

	// Logging
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	LogFile   string `mapstructure:"log_file"`

	// Timeouts in seconds
	DefaultTimeout int `mapstructure:"default_timeout"`
	GeoAPITimeout  int `mapstructure:"geo_api_timeout"`

	// Server info
	ServerName    string `mapstructure:"server_name"`
	ServerVersion string `mapstructure:"server_version"`

	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`

	// Providers YAML file path
	ProvidersFile string `mapstructure:"providers_file"`
}

// AuthEnabled reports whether bearer-token authentication is configured.
func (s *Settings) AuthEnabled() bool {
	return s.AuthToken != ""
}

// ChatEnabled reports whether a model API key is configured.
func (s *Settings) ChatEnabled() bool {
	return s.OpenAIAPIKey != ""
}

// UseAzure reports whether Azure OpenAI should be used instead of OpenAI direct.
func (s *Settings) UseAzure() bool {
	return s.AzureOpenAIEndpoint != ""
}

// Load reads settings from the environment. A .env file in the working
// directory is loaded first if present.
func Load() (*Settings, error) {
	// Missing .env is fine, real environments set variables directly
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("auth_token", "")
	v.SetDefault("openai_api_key", "")
	v.SetDefault("azure_openai_endpoint", "")
	v.SetDefault("azure_openai_deployment", "gpt-4o")
	v.SetDefault("azure_openai_api_version", "2024-02-15-preview")
	v.SetDefault("responder_model", "gpt-4o")
	v.SetDefault("router_model", "gpt-4o-mini")
	v.SetDefault("strategy", "routed")
	v.SetDefault("rate_limit_enabled", false)
	v.SetDefault("chat_rate_limit_per_hour", 50)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("log_file", "")
	v.SetDefault("default_timeout", 30)
	v.SetDefault("geo_api_timeout", 60)
	v.SetDefault("server_name", "kulturarv")
	v.SetDefault("server_version", "1.0.0")
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 8000)
	v.SetDefault("providers_file", "")

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	switch s.Strategy {
	case "routed", "iterative":
	default:
		return nil, fmt.Errorf("unknown strategy: %q", s.Strategy)
	}

	return &s, nil
}

// Providers describes which retrieval providers are enabled.
type Providers struct {
	Enabled []string `mapstructure:"enabled_providers"`
}

// DefaultProviders enables every built-in provider.
func DefaultProviders() Providers {
	return Providers{Enabled: []string{"wikipedia", "snl", "kulturminner", "arcgis"}}
}

// LoadProviders reads the provider enablement YAML file. An empty path or a
// missing file yields the default set.
func LoadProviders(path string) (Providers, error) {
	if path == "" {
		return DefaultProviders(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		// Viper only reports ConfigFileNotFoundError when searching config
		// paths; with an explicit file the miss surfaces as fs.ErrNotExist.
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultProviders(), nil
		}
		return Providers{}, fmt.Errorf("failed to read providers file: %w", err)
	}

	var p Providers
	if err := v.Unmarshal(&p); err != nil {
		return Providers{}, fmt.Errorf("failed to unmarshal providers file: %w", err)
	}
	if len(p.Enabled) == 0 {
		return DefaultProviders(), nil
	}
	return p, nil
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is prepended to every environment variable read by Load
const EnvPrefix = "classifier"

// Config holds the application configuration
type Config struct {
	Server  ServerConfig
	LLM     LLMConfig
	Log     LogConfig
	Dataset DatasetConfig

	// Debug forces debug level console logging
	Debug bool `envconfig:"DEBUG" default:"false"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host         string        `default:"0.0.0.0"`
	Port         int           `default:"8080"`
	Mode         string        `default:"debug"`
	ReadTimeout  time.Duration `split_words:"true" default:"30s"`
	WriteTimeout time.Duration `split_words:"true" default:"120s"`
	CORSOrigins  []string      `envconfig:"CORS_ORIGINS" default:"*"`
}

// LLMConfig holds completion provider settings
type LLMConfig struct {
	Provider        string `default:"openai"`
	Model           string // empty selects the provider default
	BaseURL         string `split_words:"true"`
	OpenAIAPIKey    string `envconfig:"OPENAI_API_KEY"`
	AnthropicAPIKey string `envconfig:"ANTHROPIC_API_KEY"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `default:"info"`
	Format string `default:"json"`
	Output string `default:"stdout"`
}

// DatasetConfig holds settings for the offline dataset tooling
type DatasetConfig struct {
	Dir         string        `default:"datasets"`
	ResultsFile string        `split_words:"true" default:"results.txt"`
	HubURL      string        `split_words:"true" default:"https://datasets-server.huggingface.co"`
	HubToken    string        `envconfig:"HF_TOKEN"`
	HubTimeout  time.Duration `split_words:"true" default:"30s"`
	MaxRows     int           `split_words:"true" default:"5000"`
}

// Addr returns the listen address for the HTTP server
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// APIKey returns the key for the configured provider
func (l LLMConfig) APIKey() string {
	if strings.EqualFold(l.Provider, "anthropic") {
		return l.AnthropicAPIKey
	}
	return l.OpenAIAPIKey
}

// Load reads configuration from a .env file (if any) and the environment.
// Provider keys are accepted both prefixed (CLASSIFIER_LLM_OPENAI_API_KEY)
// and bare (OPENAI_API_KEY).
func Load() (*Config, error) {
	// A missing .env file is not an error
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	cfg.LLM.Provider = strings.ToLower(cfg.LLM.Provider)
	if cfg.Debug {
		cfg.Log.Level = "debug"
		cfg.Log.Format = "console"
	}

	return &cfg, nil
}

package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8000"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`
	// OpenAIBaseURL, when set, redirects API calls to an OpenAI-compatible
	// endpoint such as a local inference server.
	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL"`

	// Defaults applied when the request does not override them.
	DefaultModel       string  `envconfig:"DEFAULT_MODEL" default:"gpt-4o-mini"`
	DefaultSearchDepth int     `envconfig:"DEFAULT_SEARCH_DEPTH" default:"3"`
	DefaultCreativity  float32 `envconfig:"DEFAULT_CREATIVITY" default:"0.1"`

	// Per-call deadline for embedding, search and generation round-trips.
	ExternalCallTimeout time.Duration `envconfig:"EXTERNAL_CALL_TIMEOUT" default:"60s"`

	// EDGAR requires a descriptive User-Agent with a contact address.
	EdgarUserAgent string `envconfig:"EDGAR_USER_AGENT" default:"FinancialAgent contact@example.com"`

	CORSOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"finagent-filings"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("FINAGENT", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

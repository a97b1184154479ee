package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/finsight-labs/finrag/internal/domain"
	"github.com/finsight-labs/finrag/internal/llm"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"finrag-reports"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	// LLM provider selection: openai, azure, gemini, bedrock
	LLMProvider   string `envconfig:"LLM_PROVIDER" default:"openai"`
	OpenAIAPIKey  string `envconfig:"OPENAI_API_KEY"`
	AzureAPIKey   string `envconfig:"AZURE_API_KEY"`
	AzureEndpoint string `envconfig:"AZURE_ENDPOINT"`
	GeminiAPIKey  string `envconfig:"GEMINI_API_KEY"`
	BedrockRegion string `envconfig:"BEDROCK_REGION" default:"us-east-1"`
	AWSAccessKey  string `envconfig:"AWS_ACCESS_KEY_ID"`
	AWSSecretKey  string `envconfig:"AWS_SECRET_ACCESS_KEY"`

	EmbedModel     string `envconfig:"EMBED_MODEL"`
	ChatModel      string `envconfig:"CHAT_MODEL"`
	EmbedDimension int    `envconfig:"EMBED_DIMENSION" default:"1536"`

	ChunkSize    int `envconfig:"CHUNK_SIZE" default:"1000"`
	ChunkOverlap int `envconfig:"CHUNK_OVERLAP" default:"200"`

	// Ingest worker poll interval in seconds
	WorkerPollSeconds int `envconfig:"WORKER_POLL_SECONDS" default:"5"`

	SentryDSN string `envconfig:"SENTRY_DSN"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("FINRAG", &cfg); err != nil {
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

func (c *Config) HasSentry() bool {
	return c.SentryDSN != ""
}

// LLMConfig assembles the provider configuration for the selected provider
func (c *Config) LLMConfig() llm.Config {
	cfg := llm.Config{
		Provider:   domain.Provider(c.LLMProvider),
		EmbedModel: c.EmbedModel,
		ChatModel:  c.ChatModel,
		Dimensions: c.EmbedDimension,
	}

	switch cfg.Provider {
	case domain.ProviderAzure:
		cfg.APIKey = c.AzureAPIKey
		cfg.Endpoint = c.AzureEndpoint
	case domain.ProviderGemini:
		cfg.APIKey = c.GeminiAPIKey
	case domain.ProviderBedrock:
		cfg.Region = c.BedrockRegion
		cfg.AccessKeyID = c.AWSAccessKey
		cfg.SecretAccessKey = c.AWSSecretKey
	default:
		cfg.APIKey = c.OpenAIAPIKey
	}

	return cfg
}

package llm

import (
	"context"
	"fmt"

	"github.com/finsight-labs/finrag/internal/domain"
)

// Config selects and configures a provider. Credentials are held at
// runtime only and never written to storage.
type Config struct {
	Provider domain.Provider

	// OpenAI / Azure / Gemini
	APIKey string
	// Azure only
	Endpoint string
	// Bedrock only
	Region          string
	AccessKeyID     string
	SecretAccessKey string

	EmbedModel string
	ChatModel  string
	Dimensions int
}

// New builds the provider named by cfg.Provider.
func New(ctx context.Context, cfg Config) (Provider, error) {
	switch cfg.Provider {
	case domain.ProviderOpenAI:
		return NewOpenAIProvider(cfg.APIKey, cfg.EmbedModel, cfg.ChatModel, cfg.Dimensions)
	case domain.ProviderAzure:
		return NewAzureProvider(cfg.APIKey, cfg.Endpoint, cfg.EmbedModel, cfg.ChatModel, cfg.Dimensions)
	case domain.ProviderGemini:
		return NewGeminiProvider(cfg.APIKey, cfg.EmbedModel, cfg.ChatModel, cfg.Dimensions)
	case domain.ProviderBedrock:
		return NewBedrockProvider(ctx, BedrockConfig{
			Region:          cfg.Region,
			AccessKeyID:     cfg.AccessKeyID,
			SecretAccessKey: cfg.SecretAccessKey,
			EmbedModel:      cfg.EmbedModel,
			ChatModel:       cfg.ChatModel,
			Dimensions:      cfg.Dimensions,
		})
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedProvider, cfg.Provider)
}

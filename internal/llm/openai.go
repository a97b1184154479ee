package llm

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/finsight-labs/finrag/internal/domain"
)

const (
	defaultOpenAIEmbeddingModel = string(openai.SmallEmbedding3)
	defaultOpenAIChatModel      = openai.GPT4oMini
)

// OpenAIProvider serves embeddings and completions through the OpenAI
// API. It also backs the Azure variant, which differs only in client
// configuration.
type OpenAIProvider struct {
	client     *openai.Client
	name       domain.Provider
	embedModel string
	chatModel  string
	dimensions int
}

// NewOpenAIProvider creates an OpenAI-backed provider.
func NewOpenAIProvider(apiKey, embedModel, chatModel string, dimensions int) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	return newOpenAICompatible(openai.NewClient(apiKey), domain.ProviderOpenAI, embedModel, chatModel, dimensions), nil
}

// NewAzureProvider creates a provider for Azure OpenAI deployments.
// The model names double as deployment names, per Azure convention.
func NewAzureProvider(apiKey, endpoint, embedModel, chatModel string, dimensions int) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if endpoint == "" {
		return nil, errors.New("azure endpoint is required")
	}
	cfg := openai.DefaultAzureConfig(apiKey, endpoint)
	p := newOpenAICompatible(openai.NewClientWithConfig(cfg), domain.ProviderAzure, embedModel, chatModel, dimensions)
	return p, nil
}

func newOpenAICompatible(client *openai.Client, name domain.Provider, embedModel, chatModel string, dimensions int) *OpenAIProvider {
	if embedModel == "" {
		embedModel = defaultOpenAIEmbeddingModel
	}
	if chatModel == "" {
		chatModel = defaultOpenAIChatModel
	}
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}
	return &OpenAIProvider{
		client:     client,
		name:       name,
		embedModel: embedModel,
		chatModel:  chatModel,
		dimensions: dimensions,
	}
}

func (p *OpenAIProvider) Name() domain.Provider { return p.name }

func (p *OpenAIProvider) EmbeddingModel() string { return p.embedModel }

func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(p.embedModel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding data returned")
	}

	return validateEmbedding(resp.Data[0].Embedding, p.dimensions)
}

func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	messages := buildMessages(req)
	wire := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		wire = append(wire, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.chatModel,
		Messages:    wire,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("no completion choices returned")
	}

	return &CompletionResponse{
		Text:       resp.Choices[0].Message.Content,
		Model:      resp.Model,
		Provider:   p.name,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}

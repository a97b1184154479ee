package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/finsight-labs/finrag/internal/domain"
)

const (
	defaultBedrockEmbeddingModel = "amazon.titan-embed-text-v2:0"
	defaultBedrockChatModel      = "anthropic.claude-3-5-sonnet-20241022-v2:0"
)

// bedrockInvoker is the slice of the Bedrock runtime API this provider
// uses, factored out for tests.
type bedrockInvoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// BedrockConfig holds runtime credentials for AWS Bedrock. Credentials
// are used to build the client and never persisted.
type BedrockConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	EmbedModel      string
	ChatModel       string
	Dimensions      int
}

// BedrockProvider serves Titan embeddings and Anthropic completions
// through the AWS Bedrock runtime.
type BedrockProvider struct {
	client     bedrockInvoker
	embedModel string
	chatModel  string
	dimensions int
}

// NewBedrockProvider creates a Bedrock-backed provider.
func NewBedrockProvider(ctx context.Context, cfg BedrockConfig) (*BedrockProvider, error) {
	if cfg.Region == "" {
		return nil, fmt.Errorf("bedrock region is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return newBedrockProvider(bedrockruntime.NewFromConfig(awsCfg), cfg), nil
}

func newBedrockProvider(client bedrockInvoker, cfg BedrockConfig) *BedrockProvider {
	if cfg.EmbedModel == "" {
		cfg.EmbedModel = defaultBedrockEmbeddingModel
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = defaultBedrockChatModel
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = DefaultEmbeddingDimensions
	}
	return &BedrockProvider{
		client:     client,
		embedModel: cfg.EmbedModel,
		chatModel:  cfg.ChatModel,
		dimensions: cfg.Dimensions,
	}
}

func (p *BedrockProvider) Name() domain.Provider { return domain.ProviderBedrock }

func (p *BedrockProvider) EmbeddingModel() string { return p.embedModel }

type titanEmbedRequest struct {
	InputText  string `json:"inputText"`
	Dimensions int    `json:"dimensions,omitempty"`
}

type titanEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

func (p *BedrockProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	payload, err := json.Marshal(titanEmbedRequest{
		InputText:  text,
		Dimensions: p.dimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode embed request: %w", err)
	}

	out, err := p.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(p.embedModel),
		ContentType: aws.String("application/json"),
		Body:        payload,
	})
	if err != nil {
		return nil, fmt.Errorf("bedrock embed failed: %w", err)
	}

	var resp titanEmbedResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode embed response: %w", err)
	}

	return validateEmbedding(resp.Embedding, p.dimensions)
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeRequest struct {
	AnthropicVersion string          `json:"anthropic_version"`
	System           string          `json:"system,omitempty"`
	Messages         []claudeMessage `json:"messages"`
	MaxTokens        int             `json:"max_tokens"`
	Temperature      float32         `json:"temperature,omitempty"`
}

type claudeResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func (p *BedrockProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	var system string
	var messages []claudeMessage
	for _, m := range buildMessages(req) {
		if m.Role == RoleSystem {
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
			continue
		}
		messages = append(messages, claudeMessage{Role: string(m.Role), Content: m.Content})
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	payload, err := json.Marshal(claudeRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		System:           system,
		Messages:         messages,
		MaxTokens:        maxTokens,
		Temperature:      req.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode completion request: %w", err)
	}

	out, err := p.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(p.chatModel),
		ContentType: aws.String("application/json"),
		Body:        payload,
	})
	if err != nil {
		return nil, fmt.Errorf("bedrock completion failed: %w", err)
	}

	var resp claudeResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode completion response: %w", err)
	}
	if len(resp.Content) == 0 {
		return nil, fmt.Errorf("bedrock returned no content")
	}

	return &CompletionResponse{
		Text:       resp.Content[0].Text,
		Model:      p.chatModel,
		Provider:   domain.ProviderBedrock,
		TokensUsed: resp.Usage.InputTokens + resp.Usage.OutputTokens,
	}, nil
}

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/finsight-labs/finrag/internal/domain"
)

const (
	geminiBaseURL               = "https://generativelanguage.googleapis.com/v1beta/models"
	defaultGeminiEmbeddingModel = "text-embedding-004"
	defaultGeminiChatModel      = "gemini-2.0-flash"

	// text-embedding-004 produces 768-wide vectors.
	defaultGeminiDimensions = 768
)

// GeminiProvider talks to the Google Gemini REST API directly.
type GeminiProvider struct {
	apiKey     string
	embedModel string
	chatModel  string
	dimensions int
	baseURL    string
	client     *http.Client
}

// NewGeminiProvider creates a Gemini-backed provider.
func NewGeminiProvider(apiKey, embedModel, chatModel string, dimensions int) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if embedModel == "" {
		embedModel = defaultGeminiEmbeddingModel
	}
	if chatModel == "" {
		chatModel = defaultGeminiChatModel
	}
	if dimensions <= 0 {
		dimensions = defaultGeminiDimensions
	}
	return &GeminiProvider{
		apiKey:     apiKey,
		embedModel: embedModel,
		chatModel:  chatModel,
		dimensions: dimensions,
		baseURL:    geminiBaseURL,
		client:     &http.Client{},
	}, nil
}

func (p *GeminiProvider) Name() domain.Provider { return domain.ProviderGemini }

func (p *GeminiProvider) EmbeddingModel() string { return p.embedModel }

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	Temperature     float32 `json:"temperature"`
}

type geminiEmbedRequest struct {
	Content geminiContent `json:"content"`
}

type geminiEmbedResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
	Error *geminiError `json:"error,omitempty"`
}

type geminiGenerateRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiGenerateResponse struct {
	Candidates []struct {
		Content      *geminiContent `json:"content"`
		FinishReason string         `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata *struct {
		TotalTokenCount int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
	Error *geminiError `json:"error,omitempty"`
}

type geminiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

func (p *GeminiProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	body := geminiEmbedRequest{
		Content: geminiContent{Parts: []geminiPart{{Text: text}}},
	}

	var out geminiEmbedResponse
	url := fmt.Sprintf("%s/%s:embedContent?key=%s", p.baseURL, p.embedModel, p.apiKey)
	if err := p.post(ctx, url, body, &out); err != nil {
		return nil, err
	}
	if out.Error != nil {
		return nil, fmt.Errorf("gemini embed error %d: %s", out.Error.Code, out.Error.Message)
	}

	return validateEmbedding(out.Embedding.Values, p.dimensions)
}

func (p *GeminiProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	var systemParts []geminiPart
	var contents []geminiContent

	for _, m := range buildMessages(req) {
		switch m.Role {
		case RoleSystem:
			systemParts = append(systemParts, geminiPart{Text: m.Content})
		case RoleAssistant:
			contents = append(contents, geminiContent{Role: "model", Parts: []geminiPart{{Text: m.Content}}})
		default:
			contents = append(contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: m.Content}}})
		}
	}

	body := geminiGenerateRequest{
		Contents: contents,
		GenerationConfig: &geminiGenerationConfig{
			MaxOutputTokens: req.MaxTokens,
			Temperature:     req.Temperature,
		},
	}
	if len(systemParts) > 0 {
		body.SystemInstruction = &geminiContent{Parts: systemParts}
	}

	var out geminiGenerateResponse
	url := fmt.Sprintf("%s/%s:generateContent?key=%s", p.baseURL, p.chatModel, p.apiKey)
	if err := p.post(ctx, url, body, &out); err != nil {
		return nil, err
	}
	if out.Error != nil {
		return nil, fmt.Errorf("gemini completion error %d: %s", out.Error.Code, out.Error.Message)
	}
	if len(out.Candidates) == 0 || out.Candidates[0].Content == nil || len(out.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini returned no candidates")
	}

	tokens := 0
	if out.UsageMetadata != nil {
		tokens = out.UsageMetadata.TotalTokenCount
	}

	return &CompletionResponse{
		Text:       out.Candidates[0].Content.Parts[0].Text,
		Model:      p.chatModel,
		Provider:   domain.ProviderGemini,
		TokensUsed: tokens,
	}, nil
}

func (p *GeminiProvider) post(ctx context.Context, url string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read gemini response: %w", err)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode gemini response (status %d): %w", resp.StatusCode, err)
	}
	return nil
}

// Package llm abstracts embedding and completion providers behind a
// single capability interface.
package llm

import (
	"context"
	"errors"

	"github.com/finsight-labs/finrag/internal/domain"
)

const (
	// DefaultEmbeddingDimensions is the expected embedding width for the
	// default models of every supported provider.
	DefaultEmbeddingDimensions = 1536
)

var (
	// ErrEmptyText is returned when text to embed is empty
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrWrongDimensions is returned when an embedding has unexpected width
	ErrWrongDimensions = errors.New("embedding has wrong dimensions")
	// ErrNoAPIKey is returned when a provider's API key is not configured
	ErrNoAPIKey = errors.New("provider API key not configured")
)

// Role identifies the author of a chat message
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a chat conversation
type Message struct {
	Role    Role
	Content string
}

// CompletionRequest carries a chat completion request. Context holds
// retrieved document text; History holds prior conversation turns.
type CompletionRequest struct {
	Messages    []Message
	Context     string
	History     []Message
	MaxTokens   int
	Temperature float32
}

// CompletionResponse is the normalized completion result
type CompletionResponse struct {
	Text       string
	Model      string
	Provider   domain.Provider
	TokensUsed int
}

// Provider is the capability interface every backend implements.
type Provider interface {
	Name() domain.Provider
	EmbeddingModel() string
	Embed(ctx context.Context, text string) ([]float32, error)
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// buildMessages assembles the wire-order message list: system prompts,
// retrieved context, history, then the current turn.
func buildMessages(req CompletionRequest) []Message {
	out := make([]Message, 0, len(req.Messages)+len(req.History)+1)

	var rest []Message
	for _, m := range req.Messages {
		if m.Role == RoleSystem {
			out = append(out, m)
		} else {
			rest = append(rest, m)
		}
	}

	if req.Context != "" {
		out = append(out, Message{
			Role:    RoleSystem,
			Content: "Use the following document excerpts to answer:\n\n" + req.Context,
		})
	}

	out = append(out, req.History...)
	out = append(out, rest...)
	return out
}

// validateEmbedding enforces the provider's fixed embedding width.
func validateEmbedding(embedding []float32, want int) ([]float32, error) {
	if want <= 0 {
		want = DefaultEmbeddingDimensions
	}
	if len(embedding) != want {
		return nil, ErrWrongDimensions
	}
	return embedding, nil
}

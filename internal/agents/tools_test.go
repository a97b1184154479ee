package agents

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight-labs/finrag/internal/domain"
	"github.com/finsight-labs/finrag/internal/llm"
)

// scriptedProvider replays canned completions and records each request.
// The last response repeats once the script runs out.
type scriptedProvider struct {
	responses []string
	requests  []llm.CompletionRequest
}

func (p *scriptedProvider) Name() domain.Provider  { return domain.ProviderOpenAI }
func (p *scriptedProvider) EmbeddingModel() string { return "test-embed" }

func (p *scriptedProvider) Embed(_ context.Context, _ string) ([]float32, error) {
	return nil, nil
}

func (p *scriptedProvider) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.requests = append(p.requests, req)
	i := len(p.requests) - 1
	if i >= len(p.responses) {
		i = len(p.responses) - 1
	}
	return &llm.CompletionResponse{Text: p.responses[i]}, nil
}

func lastUserMessage(req llm.CompletionRequest) string {
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == llm.RoleUser {
			return req.Messages[i].Content
		}
	}
	return ""
}

func TestMetricsAgent_RunsRatioTool(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		`{"tool": "calculate_ratio", "args": {"numerator": 150, "denominator": 100, "ratio_name": "current"}}`,
		"The current ratio is 1.50, which indicates healthy liquidity.",
	}}
	agent := NewMetricsAgent(provider)

	answer, err := agent.Execute(context.Background(), "What is the current ratio?", "")

	require.NoError(t, err)
	assert.Equal(t, "The current ratio is 1.50, which indicates healthy liquidity.", answer)
	require.Len(t, provider.requests, 2)

	// first request advertises the tool protocol
	var prompts []string
	for _, m := range provider.requests[0].Messages {
		if m.Role == llm.RoleSystem {
			prompts = append(prompts, m.Content)
		}
	}
	assert.Contains(t, strings.Join(prompts, "\n"), "calculate_ratio")

	// second request carries the computed result back to the model
	assert.Contains(t, lastUserMessage(provider.requests[1]), "current: 1.50")
}

func TestTrendAgent_RunsGrowthTool(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		`{"tool": "analyze_growth_trend", "args": {"values": [100, 110, 121], "periods": ["Q1", "Q2", "Q3"]}}`,
		"Revenue grew 10% each quarter.",
	}}
	agent := NewTrendAgent(provider)

	answer, err := agent.Execute(context.Background(), "How is revenue trending?", "")

	require.NoError(t, err)
	assert.Equal(t, "Revenue grew 10% each quarter.", answer)
	require.Len(t, provider.requests, 2)

	result := lastUserMessage(provider.requests[1])
	assert.Contains(t, result, "Q1 to Q2: +10.00%")
	assert.Contains(t, result, "CAGR: +10.00%")
}

func TestToolAgent_PlainAnswerSkipsTools(t *testing.T) {
	provider := &scriptedProvider{responses: []string{"No calculation needed."}}
	agent := NewMetricsAgent(provider)

	answer, err := agent.Execute(context.Background(), "Summarize the filing.", "")

	require.NoError(t, err)
	assert.Equal(t, "No calculation needed.", answer)
	assert.Len(t, provider.requests, 1)
}

func TestToolAgent_FencedToolCall(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		"```json\n{\"tool\": \"compare_periods\", \"args\": {\"current_value\": 120, \"previous_value\": 100, \"metric_name\": \"Revenue\"}}\n```",
		"Revenue is up 20%.",
	}}
	agent := NewTrendAgent(provider)

	answer, err := agent.Execute(context.Background(), "Compare revenue.", "")

	require.NoError(t, err)
	assert.Equal(t, "Revenue is up 20%.", answer)
	require.Len(t, provider.requests, 2)
	assert.Contains(t, lastUserMessage(provider.requests[1]), "% Change: +20.00%")
}

func TestToolAgent_UnknownToolFedBack(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		`{"tool": "bogus_tool", "args": {}}`,
		"Answering without the tool.",
	}}
	agent := NewMetricsAgent(provider)

	answer, err := agent.Execute(context.Background(), "q", "")

	require.NoError(t, err)
	assert.Equal(t, "Answering without the tool.", answer)
	require.Len(t, provider.requests, 2)
	assert.Contains(t, lastUserMessage(provider.requests[1]), `Unknown tool "bogus_tool"`)
}

func TestToolAgent_BadArgsFedBack(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		`{"tool": "calculate_ratio", "args": {"numerator": "oops"}}`,
		"Answering without the tool.",
	}}
	agent := NewMetricsAgent(provider)

	_, err := agent.Execute(context.Background(), "q", "")

	require.NoError(t, err)
	require.Len(t, provider.requests, 2)
	assert.Contains(t, lastUserMessage(provider.requests[1]), "Tool calculate_ratio failed")
}

func TestToolAgent_RoundsAreCapped(t *testing.T) {
	call := `{"tool": "calculate_ratio", "args": {"numerator": 1, "denominator": 2, "ratio_name": "x"}}`
	provider := &scriptedProvider{responses: []string{call}}
	agent := NewMetricsAgent(provider)

	answer, err := agent.Execute(context.Background(), "q", "")

	require.NoError(t, err)
	assert.Len(t, provider.requests, maxToolRounds+1)
	assert.Equal(t, call, answer)
}

func TestParseToolCall_RejectsPlainText(t *testing.T) {
	_, ok := parseToolCall("The answer is 42.")
	assert.False(t, ok)

	_, ok = parseToolCall(`{"answer": "no tool field"}`)
	assert.False(t, ok)
}

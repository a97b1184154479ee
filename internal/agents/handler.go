package agents

import (
	"context"
	"fmt"
	"sync"

	"github.com/finsight-labs/finrag/internal/llm"
)

// Handler is one specialized analysis agent. Implementations keep
// per-conversation state; Reset clears it.
type Handler interface {
	Name() string
	Description() string
	Execute(ctx context.Context, query, contextText string) (string, error)
	Reset()
}

// maxToolRounds caps tool invocations per turn so a model that keeps
// calling tools cannot loop forever.
const maxToolRounds = 3

// promptAgent is the shared handler shape: a system prompt over an LLM
// provider plus an in-memory turn history. Handlers with tools resolve
// tool calls before recording the turn.
type promptAgent struct {
	name         string
	description  string
	systemPrompt string
	provider     llm.Provider
	tools        []tool

	mu      sync.Mutex
	history []llm.Message
}

func newPromptAgent(name, description, systemPrompt string, provider llm.Provider) *promptAgent {
	return &promptAgent{
		name:         name,
		description:  description,
		systemPrompt: systemPrompt,
		provider:     provider,
	}
}

func newToolAgent(name, description, systemPrompt string, provider llm.Provider, tools []tool) *promptAgent {
	a := newPromptAgent(name, description, systemPrompt, provider)
	a.tools = tools
	return a
}

func (a *promptAgent) Name() string { return a.name }

func (a *promptAgent) Description() string { return a.description }

// Execute runs one turn. When the model replies with a tool call, the
// tool result is fed back and the completion re-run, up to
// maxToolRounds. The turn is recorded in the handler history only when
// the final completion succeeds.
func (a *promptAgent) Execute(ctx context.Context, query, contextText string) (string, error) {
	a.mu.Lock()
	history := make([]llm.Message, len(a.history))
	copy(history, a.history)
	a.mu.Unlock()

	messages := []llm.Message{{Role: llm.RoleSystem, Content: a.systemPrompt}}
	if len(a.tools) > 0 {
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: toolInstructions(a.tools)})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: query})

	var answer string
	for round := 0; ; round++ {
		resp, err := a.provider.Complete(ctx, llm.CompletionRequest{
			Messages: messages,
			Context:  contextText,
			History:  history,
		})
		if err != nil {
			return "", fmt.Errorf("%s handler failed: %w", a.name, err)
		}

		call, ok := parseToolCall(resp.Text)
		if !ok || len(a.tools) == 0 || round >= maxToolRounds {
			answer = resp.Text
			break
		}

		messages = append(messages,
			llm.Message{Role: llm.RoleAssistant, Content: resp.Text},
			llm.Message{Role: llm.RoleUser, Content: a.runTool(call)},
		)
	}

	a.mu.Lock()
	a.history = append(a.history,
		llm.Message{Role: llm.RoleUser, Content: query},
		llm.Message{Role: llm.RoleAssistant, Content: answer},
	)
	a.mu.Unlock()

	return answer, nil
}

// runTool executes a parsed tool call. Failures are returned as text so
// the model can recover or answer without the tool.
func (a *promptAgent) runTool(call toolCall) string {
	for _, t := range a.tools {
		if t.name != call.Tool {
			continue
		}
		out, err := t.run(call.Args)
		if err != nil {
			return fmt.Sprintf("Tool %s failed: %v. Answer without it or correct the call.", call.Tool, err)
		}
		return fmt.Sprintf("Result of %s:\n%s\n\nUse this result to answer the original question.", call.Tool, out)
	}
	return fmt.Sprintf("Unknown tool %q. Answer without it.", call.Tool)
}

func (a *promptAgent) Reset() {
	a.mu.Lock()
	a.history = nil
	a.mu.Unlock()
}

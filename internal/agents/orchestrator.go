package agents

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/finsight-labs/finrag/internal/domain"
)

// ErrorAgent is reported as agent_used when execution fails before a
// handler produced an answer.
const ErrorAgent = "error"

// Result is the outcome of a single-handler execution.
type Result struct {
	Answer         string        `json:"answer"`
	AgentUsed      string        `json:"agent_used"`
	Success        bool          `json:"success"`
	RoutingUsed    bool          `json:"routing_used"`
	ProcessingTime time.Duration `json:"processing_time"`
	Error          string        `json:"error,omitempty"`
}

// MultiResult is the combined outcome of a multi-handler execution.
type MultiResult struct {
	Answer     string   `json:"answer"`
	AgentsUsed []string `json:"agents_used"`
	Success    bool     `json:"success"`
}

// Orchestrator dispatches queries to registered handlers, via the
// router or directly, and keeps an in-memory conversation log. One
// orchestrator serves one logical session; the log is guarded so the
// instance survives concurrent callers.
type Orchestrator struct {
	router   *Router
	handlers map[string]Handler

	mu  sync.Mutex
	log []domain.ConversationEntry
}

// NewOrchestrator registers the given handlers under their names.
func NewOrchestrator(router *Router, handlers ...Handler) *Orchestrator {
	byName := make(map[string]Handler, len(handlers))
	for _, h := range handlers {
		byName[h.Name()] = h
	}
	return &Orchestrator{router: router, handlers: byName}
}

// Execute answers a query with one handler. With useRouting the router
// picks the handler; a routed name with no registered handler is a
// reported failure, not a panic. Without routing the default handler
// answers unconditionally.
func (o *Orchestrator) Execute(ctx context.Context, query, contextText string, useRouting bool) Result {
	start := time.Now()

	agentName := DefaultAgent
	if useRouting {
		agentName = o.router.Route(query)
		log.Printf("query routed to %s (scores: %v)", agentName, o.router.Scores(query))
	}

	handler, ok := o.handlers[agentName]
	if !ok {
		return Result{
			Answer:         fmt.Sprintf("Error: agent %q not found", agentName),
			AgentUsed:      ErrorAgent,
			Success:        false,
			RoutingUsed:    useRouting,
			ProcessingTime: time.Since(start),
		}
	}

	answer, err := handler.Execute(ctx, query, contextText)
	if err != nil {
		return Result{
			Answer:         fmt.Sprintf("Error processing query: %v", err),
			AgentUsed:      ErrorAgent,
			Success:        false,
			RoutingUsed:    useRouting,
			ProcessingTime: time.Since(start),
			Error:          err.Error(),
		}
	}

	o.record(query, answer, agentName)

	return Result{
		Answer:         answer,
		AgentUsed:      agentName,
		Success:        true,
		RoutingUsed:    useRouting,
		ProcessingTime: time.Since(start),
	}
}

// ExecuteMulti answers a query with each named handler independently.
// A missing or failing handler fills its own section with an inline
// error and never aborts the others. Sections keep the caller's order.
func (o *Orchestrator) ExecuteMulti(ctx context.Context, query, contextText string, agentNames []string) MultiResult {
	sections := make([]string, 0, len(agentNames))
	used := make([]string, 0, len(agentNames))

	for _, name := range agentNames {
		handler, ok := o.handlers[name]
		if !ok {
			sections = append(sections, fmt.Sprintf("**%s:**\nError: agent %q not found", sectionTitle(name), name))
			continue
		}

		answer, err := handler.Execute(ctx, query, contextText)
		if err != nil {
			log.Printf("handler %s failed: %v", name, err)
			answer = fmt.Sprintf("Error: %v", err)
		}
		sections = append(sections, fmt.Sprintf("**%s:**\n%s", sectionTitle(name), answer))
		used = append(used, name)
	}

	answer := strings.Join(sections, "\n\n")
	o.record(query, answer, strings.Join(used, ","))

	return MultiResult{
		Answer:     answer,
		AgentsUsed: used,
		Success:    true,
	}
}

// Reset clears the conversation log and forwards the reset to every
// registered handler.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	o.log = nil
	o.mu.Unlock()

	for _, h := range o.handlers {
		h.Reset()
	}
}

// History returns a copy of the conversation log in call order.
func (o *Orchestrator) History() []domain.ConversationEntry {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]domain.ConversationEntry, len(o.log))
	copy(out, o.log)
	return out
}

// AgentInfo maps registered agent names to their descriptions.
func (o *Orchestrator) AgentInfo() map[string]string {
	info := make(map[string]string, len(o.handlers))
	for name, h := range o.handlers {
		info[name] = h.Description()
	}
	return info
}

// AgentNames lists the registered handler names, sorted.
func (o *Orchestrator) AgentNames() []string {
	names := make([]string, 0, len(o.handlers))
	for name := range o.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (o *Orchestrator) record(query, answer, agent string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.log = append(o.log, domain.ConversationEntry{
		Query:     query,
		Answer:    answer,
		Agent:     agent,
		Timestamp: time.Now().UTC(),
	})
}

// sectionTitle renders an agent name as a section header, e.g.
// "financial_metrics" -> "Financial Metrics".
func sectionTitle(name string) string {
	words := strings.Split(name, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

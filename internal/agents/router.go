// Package agents routes free-text queries to specialized analysis
// handlers and orchestrates their responses.
package agents

import "strings"

// DefaultAgent receives every query that no specialist clearly wins.
const DefaultAgent = "document_analysis"

// Well-known handler names.
const (
	AgentDocumentAnalysis = "document_analysis"
	AgentFinancialMetrics = "financial_metrics"
	AgentTrendAnalysis    = "trend_analysis"
)

// Router scores queries against per-agent keyword lists. Scoring is
// case-insensitive substring containment, no tokenization, so a
// keyword can match inside a larger word.
type Router struct {
	capabilities map[string][]string
	defaultAgent string
}

// NewRouter creates a router with the built-in capability table.
func NewRouter() *Router {
	return &Router{
		capabilities: map[string][]string{
			AgentDocumentAnalysis: {
				"find", "search", "locate", "extract", "show", "display",
				"document", "report", "statement", "balance sheet", "income",
			},
			AgentFinancialMetrics: {
				"calculate", "ratio", "metric", "roa", "roe", "liquidity",
				"profitability", "leverage", "debt", "equity", "margin",
			},
			AgentTrendAnalysis: {
				"trend", "growth", "change", "compare", "variance", "increase",
				"decrease", "over time", "yoy", "qoq", "seasonal",
			},
		},
		defaultAgent: DefaultAgent,
	}
}

// NewRouterWithCapabilities creates a router over a custom capability
// table. Keywords are matched lower-cased.
func NewRouterWithCapabilities(capabilities map[string][]string, defaultAgent string) *Router {
	if defaultAgent == "" {
		defaultAgent = DefaultAgent
	}
	return &Router{capabilities: capabilities, defaultAgent: defaultAgent}
}

// Route returns the agent name for a query. A unique maximum score
// wins; any tie for the maximum, including the all-zero case, resolves
// to the default agent.
func (r *Router) Route(query string) string {
	scores := r.Scores(query)

	best := r.defaultAgent
	bestScore := 0
	tied := false
	for agent, score := range scores {
		switch {
		case score > bestScore:
			best = agent
			bestScore = score
			tied = false
		case score == bestScore && score > 0 && agent != best:
			tied = true
		}
	}

	if bestScore == 0 || tied {
		return r.defaultAgent
	}
	return best
}

// Scores returns the per-agent keyword match counts for a query.
// Exposed so callers can log routing decisions.
func (r *Router) Scores(query string) map[string]int {
	lower := strings.ToLower(query)

	scores := make(map[string]int, len(r.capabilities))
	for agent, keywords := range r.capabilities {
		n := 0
		for _, kw := range keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				n++
			}
		}
		scores[agent] = n
	}
	return scores
}

// Agents lists the registered agent names.
func (r *Router) Agents() []string {
	names := make([]string, 0, len(r.capabilities))
	for name := range r.capabilities {
		names = append(names, name)
	}
	return names
}

package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/finsight-labs/finrag/internal/agents"
	"github.com/finsight-labs/finrag/internal/domain"
	"github.com/finsight-labs/finrag/internal/search"
)

// SearchEngineInterface ranks stored chunks against a query embedding.
type SearchEngineInterface interface {
	Search(ctx context.Context, query []float32, opts search.Options) ([]domain.SearchResult, error)
	HybridSearch(ctx context.Context, query []float32, opts search.Options) ([]domain.SearchResult, error)
}

// OrchestratorInterface dispatches a query to the agent handlers.
type OrchestratorInterface interface {
	Execute(ctx context.Context, query, contextText string, useRouting bool) agents.Result
	ExecuteMulti(ctx context.Context, query, contextText string, agentNames []string) agents.MultiResult
	Reset()
	History() []domain.ConversationEntry
	AgentInfo() map[string]string
}

// AskRequest is one question against the indexed corpus.
type AskRequest struct {
	Query        string
	ReportIDs    []string
	SectionTypes []string
	TopK         int
	Threshold    float64
	UseRouting   bool
	Agents       []string // non-empty selects multi-agent mode
	SessionID    string
}

// AskResponse is the answer plus its provenance.
type AskResponse struct {
	Answer         string                `json:"answer"`
	AgentUsed      string                `json:"agent_used"`
	AgentsUsed     []string              `json:"agents_used,omitempty"`
	Success        bool                  `json:"success"`
	Sources        []domain.SearchResult `json:"sources"`
	ProcessingTime time.Duration         `json:"processing_time"`
}

// QueryService answers questions by retrieving relevant chunks and
// handing them to the agent orchestrator.
type QueryService struct {
	embedder     Embedder
	engine       SearchEngineInterface
	orchestrator OrchestratorInterface
	auditRepo    AuditLogRepositoryInterface
	chatModel    string
}

func NewQueryService(embedder Embedder, engine SearchEngineInterface, orchestrator OrchestratorInterface, auditRepo AuditLogRepositoryInterface, chatModel string) *QueryService {
	return &QueryService{
		embedder:     embedder,
		engine:       engine,
		orchestrator: orchestrator,
		auditRepo:    auditRepo,
		chatModel:    chatModel,
	}
}

// Search runs a semantic search for a free-text query. A failing
// embedding call or search pass degrades to an empty result set.
func (s *QueryService) Search(ctx context.Context, query string, opts search.Options) ([]domain.SearchResult, error) {
	start := time.Now()

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		log.Printf("query embedding failed, returning no results: %v", err)
		s.audit(ctx, query, domain.QueryTypeSearch, 0, 0, start, false, err.Error(), "")
		return []domain.SearchResult{}, nil
	}

	var results []domain.SearchResult
	if len(opts.SectionTypes) > 0 {
		results, err = s.engine.HybridSearch(ctx, vec, opts)
	} else {
		results, err = s.engine.Search(ctx, vec, opts)
	}
	if err != nil {
		log.Printf("search failed, returning no results: %v", err)
		s.audit(ctx, query, domain.QueryTypeSearch, 0, 0, start, false, err.Error(), "")
		return []domain.SearchResult{}, nil
	}

	s.audit(ctx, query, domain.QueryTypeSearch, len(results), 0, start, true, "", "")
	return results, nil
}

// Ask retrieves context for the query and dispatches it to the agent
// layer. An empty retrieval is answered over "no relevant context",
// not treated as an error.
func (s *QueryService) Ask(ctx context.Context, req AskRequest) (*AskResponse, error) {
	start := time.Now()

	results, err := s.Search(ctx, req.Query, search.Options{
		TopK:         req.TopK,
		Threshold:    req.Threshold,
		ReportIDs:    req.ReportIDs,
		SectionTypes: req.SectionTypes,
	})
	if err != nil {
		return nil, err
	}

	contextText := BuildContext(results)

	if len(req.Agents) > 0 {
		multi := s.orchestrator.ExecuteMulti(ctx, req.Query, contextText, req.Agents)
		s.audit(ctx, req.Query, domain.QueryTypeAgent, len(results), len(multi.Answer), start, multi.Success, "", req.SessionID)
		return &AskResponse{
			Answer:         multi.Answer,
			AgentUsed:      strings.Join(multi.AgentsUsed, ","),
			AgentsUsed:     multi.AgentsUsed,
			Success:        multi.Success,
			Sources:        results,
			ProcessingTime: time.Since(start),
		}, nil
	}

	res := s.orchestrator.Execute(ctx, req.Query, contextText, req.UseRouting)
	s.audit(ctx, req.Query, domain.QueryTypeChat, len(results), len(res.Answer), start, res.Success, res.Error, req.SessionID)

	return &AskResponse{
		Answer:         res.Answer,
		AgentUsed:      res.AgentUsed,
		Success:        res.Success,
		Sources:        results,
		ProcessingTime: time.Since(start),
	}, nil
}

// Reset clears the session's conversation state.
func (s *QueryService) Reset() {
	s.orchestrator.Reset()
}

// History returns the session's conversation log.
func (s *QueryService) History() []domain.ConversationEntry {
	return s.orchestrator.History()
}

// AgentInfo lists the registered agents and what they do.
func (s *QueryService) AgentInfo() map[string]string {
	return s.orchestrator.AgentInfo()
}

func (s *QueryService) audit(ctx context.Context, query string, queryType domain.QueryType, chunksUsed, responseLength int, start time.Time, success bool, errMsg, sessionID string) {
	if s.auditRepo == nil {
		return
	}

	entry := &domain.AuditLog{
		QueryText:        query,
		QueryType:        queryType,
		ProviderName:     string(s.embedder.Name()),
		ProviderModel:    s.chatModel,
		ChunksUsed:       chunksUsed,
		ResponseLength:   responseLength,
		ProcessingTimeMS: float64(time.Since(start).Microseconds()) / 1000.0,
		Success:          success,
		ErrorMessage:     errMsg,
		SessionID:        sessionID,
	}
	if _, err := s.auditRepo.Create(ctx, entry); err != nil {
		// audit writes never fail the request
		log.Printf("failed to write audit log: %v", err)
	}
}

// BuildContext renders search results into the context block handed to
// the LLM, citing each source document.
func BuildContext(results []domain.SearchResult) string {
	if len(results) == 0 {
		return "No relevant information found in uploaded documents."
	}

	sections := make([]string, 0, len(results))
	for _, r := range results {
		sections = append(sections, fmt.Sprintf("From %s:\n%s", r.ReportFilename, r.Text))
	}
	return strings.Join(sections, "\n\n")
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/finsight-labs/finrag/internal/api"
	"github.com/finsight-labs/finrag/internal/domain"
	"github.com/finsight-labs/finrag/internal/search"
	"github.com/finsight-labs/finrag/internal/service"
)

type QueryService interface {
	Search(ctx context.Context, query string, opts search.Options) ([]domain.SearchResult, error)
	Ask(ctx context.Context, req service.AskRequest) (*service.AskResponse, error)
	Reset()
	History() []domain.ConversationEntry
	AgentInfo() map[string]string
}

type QueryHandler struct {
	svc QueryService
}

func NewQueryHandler(svc QueryService) *QueryHandler {
	return &QueryHandler{svc: svc}
}

type SearchRequest struct {
	Query        string   `json:"query"`
	ReportIDs    []string `json:"report_ids,omitempty"`
	SectionTypes []string `json:"section_types,omitempty"`
	TopK         int      `json:"top_k,omitempty"`
	Threshold    float64  `json:"threshold,omitempty"`
}

type SearchResultResponse struct {
	ChunkID        string  `json:"chunk_id"`
	ReportID       string  `json:"report_id"`
	ReportFilename string  `json:"report_filename"`
	Content        string  `json:"content"`
	ChunkIndex     int     `json:"chunk_index"`
	PageNumber     *int    `json:"page_number,omitempty"`
	SectionType    string  `json:"section_type,omitempty"`
	Similarity     float64 `json:"similarity"`
}

type AskRequest struct {
	Query        string   `json:"query"`
	ReportIDs    []string `json:"report_ids,omitempty"`
	SectionTypes []string `json:"section_types,omitempty"`
	TopK         int      `json:"top_k,omitempty"`
	Threshold    float64  `json:"threshold,omitempty"`
	UseRouting   bool     `json:"use_routing"`
	Agents       []string `json:"agents,omitempty"`
	SessionID    string   `json:"session_id,omitempty"`
}

type AskResponse struct {
	Answer           string                 `json:"answer"`
	AgentUsed        string                 `json:"agent_used"`
	AgentsUsed       []string               `json:"agents_used,omitempty"`
	Success          bool                   `json:"success"`
	Sources          []SearchResultResponse `json:"sources"`
	ProcessingTimeMS int64                  `json:"processing_time_ms"`
}

type ConversationEntryResponse struct {
	Query     string `json:"query"`
	Answer    string `json:"answer"`
	Agent     string `json:"agent"`
	Timestamp string `json:"timestamp"`
}

func searchResultsToResponse(results []domain.SearchResult) []SearchResultResponse {
	resp := make([]SearchResultResponse, 0, len(results))
	for _, res := range results {
		resp = append(resp, SearchResultResponse{
			ChunkID:        res.ChunkID,
			ReportID:       res.ReportID,
			ReportFilename: res.ReportFilename,
			Content:        res.Text,
			ChunkIndex:     res.ChunkIndex,
			PageNumber:     res.PageNumber,
			SectionType:    res.SectionType,
			Similarity:     res.Similarity,
		})
	}
	return resp
}

func (h *QueryHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		api.Error(w, http.StatusBadRequest, "query is required")
		return
	}

	results, err := h.svc.Search(r.Context(), req.Query, search.Options{
		TopK:         req.TopK,
		Threshold:    req.Threshold,
		ReportIDs:    req.ReportIDs,
		SectionTypes: req.SectionTypes,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, searchResultsToResponse(results))
}

func (h *QueryHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		api.Error(w, http.StatusBadRequest, "query is required")
		return
	}

	resp, err := h.svc.Ask(r.Context(), service.AskRequest{
		Query:        req.Query,
		ReportIDs:    req.ReportIDs,
		SectionTypes: req.SectionTypes,
		TopK:         req.TopK,
		Threshold:    req.Threshold,
		UseRouting:   req.UseRouting,
		Agents:       req.Agents,
		SessionID:    req.SessionID,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, AskResponse{
		Answer:           resp.Answer,
		AgentUsed:        resp.AgentUsed,
		AgentsUsed:       resp.AgentsUsed,
		Success:          resp.Success,
		Sources:          searchResultsToResponse(resp.Sources),
		ProcessingTimeMS: resp.ProcessingTime.Milliseconds(),
	})
}

func (h *QueryHandler) ResetConversation(w http.ResponseWriter, r *http.Request) {
	h.svc.Reset()
	api.Success(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *QueryHandler) History(w http.ResponseWriter, r *http.Request) {
	entries := h.svc.History()

	resp := make([]ConversationEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, ConversationEntryResponse{
			Query:     e.Query,
			Answer:    e.Answer,
			Agent:     e.Agent,
			Timestamp: e.Timestamp.Format("2006-01-02T15:04:05Z"),
		})
	}

	api.Success(w, http.StatusOK, resp)
}

func (h *QueryHandler) Agents(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, h.svc.AgentInfo())
}

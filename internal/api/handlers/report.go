package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/finsight-labs/finrag/internal/api"
	"github.com/finsight-labs/finrag/internal/domain"
	"github.com/finsight-labs/finrag/internal/service"
)

type ReportService interface {
	Get(ctx context.Context, id string) (*domain.Report, error)
	List(ctx context.Context, cursor string, limit int) (*service.ReportPageResult, error)
	Chunks(ctx context.Context, reportID string) ([]domain.Chunk, error)
	Delete(ctx context.Context, id string) error
}

type IngestService interface {
	CreateReport(ctx context.Context, filename, sourcePath string) (*domain.Report, error)
	Reindex(ctx context.Context, reportID, password string) (int, error)
}

// DocumentStore persists uploaded files and returns their source path
type DocumentStore interface {
	Save(ctx context.Context, filename string, body io.Reader) (string, error)
}

type ReportHandler struct {
	reports ReportService
	ingest  IngestService
	store   DocumentStore
}

func NewReportHandler(reports ReportService, ingest IngestService, store DocumentStore) *ReportHandler {
	return &ReportHandler{reports: reports, ingest: ingest, store: store}
}

type ReportResponse struct {
	ID                string `json:"id"`
	Filename          string `json:"filename"`
	FileType          string `json:"file_type"`
	UploadDate        string `json:"upload_date"`
	ProcessingStatus  string `json:"processing_status"`
	ErrorMessage      string `json:"error_message,omitempty"`
	EmbeddingProvider string `json:"embedding_provider,omitempty"`
	EmbeddingModel    string `json:"embedding_model,omitempty"`
	ChunksCreated     int    `json:"chunks_created"`
}

func reportToResponse(rep *domain.Report) *ReportResponse {
	return &ReportResponse{
		ID:                rep.ID,
		Filename:          rep.Filename,
		FileType:          string(rep.FileType),
		UploadDate:        rep.UploadDate.Format("2006-01-02T15:04:05Z"),
		ProcessingStatus:  string(rep.ProcessingStatus),
		ErrorMessage:      rep.ErrorMessage,
		EmbeddingProvider: rep.EmbeddingProvider,
		EmbeddingModel:    rep.EmbeddingModel,
		ChunksCreated:     rep.ChunksCreated,
	}
}

type ListReportsResponse struct {
	Reports    []*ReportResponse `json:"reports"`
	NextCursor string            `json:"next_cursor,omitempty"`
	HasMore    bool              `json:"has_more"`
}

type ChunkResponse struct {
	ID          string `json:"id"`
	ReportID    string `json:"report_id"`
	Content     string `json:"content"`
	ChunkIndex  int    `json:"chunk_index"`
	PageNumber  *int   `json:"page_number,omitempty"`
	SectionType string `json:"section_type,omitempty"`
}

type ReindexRequest struct {
	Password string `json:"password"`
}

type ReindexResponse struct {
	ReportID      string `json:"report_id"`
	ChunksCreated int    `json:"chunks_created"`
}

// Upload receives a multipart document, stores it, and registers a
// report for background ingestion.
func (h *ReportHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		api.Error(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	sourcePath, err := h.store.Save(r.Context(), header.Filename, file)
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "failed to store document")
		return
	}

	rep, err := h.ingest.CreateReport(r.Context(), header.Filename, sourcePath)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, reportToResponse(rep))
}

func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 100 {
			api.Error(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = parsed
	}

	page, err := h.reports.List(r.Context(), r.URL.Query().Get("cursor"), limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := ListReportsResponse{
		Reports:    make([]*ReportResponse, 0, len(page.Items)),
		NextCursor: page.NextCursor,
		HasMore:    page.HasMore,
	}
	for _, rep := range page.Items {
		resp.Reports = append(resp.Reports, reportToResponse(rep))
	}

	api.Success(w, http.StatusOK, resp)
}

func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	rep, err := h.reports.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, reportToResponse(rep))
}

func (h *ReportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.reports.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusNoContent, nil)
}

func (h *ReportHandler) Chunks(w http.ResponseWriter, r *http.Request) {
	chunks, err := h.reports.Chunks(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := make([]*ChunkResponse, 0, len(chunks))
	for _, c := range chunks {
		resp = append(resp, &ChunkResponse{
			ID:          c.ID,
			ReportID:    c.ReportID,
			Content:     c.Text,
			ChunkIndex:  c.ChunkIndex,
			PageNumber:  c.PageNumber,
			SectionType: c.SectionType,
		})
	}

	api.Success(w, http.StatusOK, resp)
}

// Reindex re-runs extraction and embedding for a report, replacing its
// chunks. The request body may carry a document password.
func (h *ReportHandler) Reindex(w http.ResponseWriter, r *http.Request) {
	var req ReindexRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.Error(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	id := chi.URLParam(r, "id")
	count, err := h.ingest.Reindex(r.Context(), id, req.Password)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, ReindexResponse{ReportID: id, ChunksCreated: count})
}

package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finsight-labs/finrag/internal/api"
	"github.com/finsight-labs/finrag/internal/api/handlers"
	"github.com/finsight-labs/finrag/internal/api/middleware"
)

type RouterConfig struct {
	ReportHandler *handlers.ReportHandler
	QueryHandler  *handlers.QueryHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// uploads carry whole documents
	const maxBodyBytes int64 = 50 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/reports", func(r chi.Router) {
		r.Post("/", cfg.ReportHandler.Upload)
		r.Get("/", cfg.ReportHandler.List)
		r.Get("/{id}", cfg.ReportHandler.Get)
		r.Delete("/{id}", cfg.ReportHandler.Delete)
		r.Get("/{id}/chunks", cfg.ReportHandler.Chunks)
		r.Post("/{id}/reindex", cfg.ReportHandler.Reindex)
	})

	r.Post("/search", cfg.QueryHandler.Search)
	r.Post("/ask", cfg.QueryHandler.Ask)

	r.Route("/conversation", func(r chi.Router) {
		r.Get("/history", cfg.QueryHandler.History)
		r.Post("/reset", cfg.QueryHandler.ResetConversation)
	})

	r.Get("/agents", cfg.QueryHandler.Agents)

	return r
}

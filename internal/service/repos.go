package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/finsight-labs/finrag/internal/domain"
	"github.com/finsight-labs/finrag/internal/pagination"
)

type ReportRepositoryInterface interface {
	Create(ctx context.Context, r *domain.Report) error
	GetByID(ctx context.Context, id string) (*domain.Report, error)
	List(ctx context.Context) ([]*domain.Report, error)
	ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*ReportPageResult, error)
	UpdateStatus(ctx context.Context, id string, status domain.ReportStatus, errorMessage string) error
	MarkIndexed(ctx context.Context, id string, chunksCreated int, provider, model string) error
	Delete(ctx context.Context, id string) error
}

type ChunkRepositoryInterface interface {
	InsertBatch(ctx context.Context, chunks []domain.Chunk) error
	DeleteByReport(ctx context.Context, reportID string) (int64, error)
	ListByReport(ctx context.Context, reportID string) ([]domain.Chunk, error)
	CountByReport(ctx context.Context, reportID string) (int, error)
}

type AuditLogRepositoryInterface interface {
	Create(ctx context.Context, entry *domain.AuditLog) (string, error)
}

type IngestJobRepositoryInterface interface {
	Create(ctx context.Context, job *domain.IngestJob) error
}

// ReportPageResult is one page of a cursor-paginated report listing.
type ReportPageResult struct {
	Items      []*domain.Report
	NextCursor string
	HasMore    bool
}

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}
